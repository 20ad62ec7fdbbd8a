package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/disdik-dki/anjab-api/internal/models"
	"github.com/disdik-dki/anjab-api/internal/sanitize"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
)

const dashboardCachePattern = "dashboard:*"

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	FindByNIK(ctx context.Context, nik string) (*models.Employee, error)
	Create(ctx context.Context, clean map[string]interface{}) (string, error)
	UpdateColumns(ctx context.Context, id string, clean map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	Options(ctx context.Context) (*models.FilterOptions, error)
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// EmployeeService implements registry reads and the administrator's
// direct mutations. Proposal-based edits live in ChangeRequestService.
type EmployeeService struct {
	repo     employeeRepository
	activity activityWriter
	cache    cacheInvalidator
	logger   *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, activity activityWriter, cache cacheInvalidator, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, activity: activity, cache: cache, logger: logger}
}

// List returns a page of records. Non-staff roles are scoped down to
// the records linked to their own account.
func (s *EmployeeService) List(ctx context.Context, claims *models.JWTClaims, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	if claims.Role == models.RoleGuruTendik {
		filter.OwnerUserID = claims.UserID
	}

	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 10
	}
	return employees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one record, enforcing ownership for non-staff roles.
func (s *EmployeeService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	if claims.Role == models.RoleGuruTendik {
		if employee.UserID == nil || *employee.UserID != claims.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this record")
		}
	}
	return employee, nil
}

// Create inserts a new record from an administrator payload. Unknown
// columns are dropped before the insert ever sees them.
func (s *EmployeeService) Create(ctx context.Context, claims *models.JWTClaims, payload map[string]interface{}) (*models.Employee, error) {
	clean := sanitize.Payload(payload)
	if len(clean) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no recognized columns in payload")
	}
	nik, ok := clean["nik"].(string)
	if !ok || nik == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nik is required")
	}
	if name, ok := clean["nama_pegawai"].(string); !ok || name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nama_pegawai is required")
	}

	if _, err := s.repo.FindByNIK(ctx, nik); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee with this NIK already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check NIK")
	}

	id, err := s.repo.Create(ctx, clean)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}

	s.recordActivity(ctx, claims, models.ActionCreateAnjab, fmt.Sprintf("Menambahkan data pegawai NIK %s", nik))
	s.invalidateDashboard(ctx)

	return s.repo.FindByID(ctx, id)
}

// Update applies an administrator's direct edit, bypassing the
// proposal workflow.
func (s *EmployeeService) Update(ctx context.Context, claims *models.JWTClaims, id string, payload map[string]interface{}) (*models.Employee, error) {
	clean := sanitize.Payload(payload)
	delete(clean, "nik")
	if len(clean) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no recognized columns in payload")
	}

	if err := s.repo.UpdateColumns(ctx, id, clean); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}

	s.recordActivity(ctx, claims, models.ActionUpdateAnjab, fmt.Sprintf("Mengubah data pegawai %s secara langsung", id))
	s.invalidateDashboard(ctx)

	return s.repo.FindByID(ctx, id)
}

// Delete removes a record permanently.
func (s *EmployeeService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}

	s.recordActivity(ctx, claims, models.ActionDeleteAnjab, fmt.Sprintf("Menghapus data pegawai %s (NIK %s)", employee.NamaPegawai, employee.NIK))
	s.invalidateDashboard(ctx)
	return nil
}

// Options returns distinct filter values for search widgets.
func (s *EmployeeService) Options(ctx context.Context) (*models.FilterOptions, error) {
	options, err := s.repo.Options(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load filter options")
	}
	return options, nil
}

func (s *EmployeeService) recordActivity(ctx context.Context, claims *models.JWTClaims, action, description string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Create(ctx, &models.ActivityLog{
		UserID:      &claims.UserID,
		Action:      action,
		Description: description,
	}); err != nil {
		s.logger.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

func (s *EmployeeService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
