package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/disdik-dki/anjab-api/internal/dto"
	"github.com/disdik-dki/anjab-api/internal/models"
	"github.com/disdik-dki/anjab-api/internal/repository"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
)

type userRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

type employeeLinker interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	LinkOwner(ctx context.Context, employeeID, userID string) error
}

type activityReader interface {
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
}

// UserService covers the administrator's account management surface.
type UserService struct {
	users     userRepository
	employees employeeLinker
	activity  activityWriter
	audit     activityReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users userRepository, employees employeeLinker, activity activityWriter, audit activityReader, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{
		users:     users,
		employees: employees,
		activity:  activity,
		audit:     audit,
		validator: validate,
		logger:    logger,
	}
}

// Create provisions an account. A GURU_TENDIK account must reference an
// existing employee record, which gets linked to the new account so the
// ownership checks have something to bite on.
func (s *UserService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid user payload")
	}

	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}

	role := models.UserRole(req.Role)
	if role == models.RoleGuruTendik && req.EmployeeID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "anjab_id is required for GURU_TENDIK accounts")
	}
	if req.EmployeeID != nil {
		employee, err := s.employees.FindByID(ctx, *req.EmployeeID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "linked employee not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load linked employee")
		}
		if employee.UserID != nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "employee is already linked to another account")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		EmployeeID:   req.EmployeeID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmployeeTaken) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "employee is already linked to another account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	if req.EmployeeID != nil {
		if err := s.employees.LinkOwner(ctx, *req.EmployeeID, user.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrConflict, "employee is already linked to another account")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link employee to account")
		}
	}

	if err := s.activity.Create(ctx, &models.ActivityLog{
		UserID:      &claims.UserID,
		Action:      models.ActionUserCreate,
		Description: fmt.Sprintf("Membuat akun %s dengan peran %s", user.Username, user.Role),
	}); err != nil {
		s.logger.Warn("failed to record account activity", zap.Error(err))
	}

	user.PasswordHash = ""
	return user, nil
}

// List pages through accounts.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 10
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// RecentActivity returns the newest audit entries for the admin panel.
func (s *UserService) RecentActivity(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	entries, err := s.audit.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity")
	}
	return entries, nil
}
