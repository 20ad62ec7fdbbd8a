package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/disdik-dki/anjab-api/internal/dto"
	"github.com/disdik-dki/anjab-api/internal/models"
	"github.com/disdik-dki/anjab-api/internal/repository"
	"github.com/disdik-dki/anjab-api/internal/sanitize"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
)

const (
	historyKindRequest  = "REQUEST"
	historyKindDecision = "DECISION"
)

type changeRequestRepository interface {
	CreatePending(ctx context.Context, request *models.ChangeRequest) error
	GetByID(ctx context.Context, id string) (*models.ChangeRequest, error)
	ListPending(ctx context.Context) ([]models.PendingChangeRequest, error)
	Decide(ctx context.Context, params repository.DecideParams) error
	History(ctx context.Context, employeeID string) ([]repository.HistoryRow, error)
	MarkRead(ctx context.Context, employeeID, userID string) error
}

type changeRequestEmployeeReader interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// ChangeRequestService runs the two-party review workflow: field-level
// edit proposals, their diff view, and the terminal decision.
type ChangeRequestService struct {
	requests  changeRequestRepository
	employees changeRequestEmployeeReader
	activity  activityWriter
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChangeRequestService constructs a ChangeRequestService.
func NewChangeRequestService(requests changeRequestRepository, employees changeRequestEmployeeReader, activity activityWriter, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ChangeRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChangeRequestService{
		requests:  requests,
		employees: employees,
		activity:  activity,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// Submit files a PENDING proposal against a record. The payload is
// whitelisted first; a payload that sanitizes to nothing is rejected
// rather than stored as an empty proposal.
func (s *ChangeRequestService) Submit(ctx context.Context, claims *models.JWTClaims, employeeID string, payload map[string]interface{}) (*models.ChangeRequest, error) {
	clean := sanitize.Payload(payload)
	delete(clean, "nik")
	if len(clean) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no recognized columns in payload")
	}

	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	if claims.Role == models.RoleGuruTendik {
		if employee.UserID == nil || *employee.UserID != claims.UserID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to propose changes for this record")
		}
	}

	changes, err := json.Marshal(clean)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode proposed changes")
	}

	request := &models.ChangeRequest{
		EmployeeID:  employeeID,
		RequestedBy: claims.UserID,
		Changes:     changes,
	}
	if err := s.requests.CreatePending(ctx, request); err != nil {
		if errors.Is(err, repository.ErrPendingExists) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a pending change request already exists for this record")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create change request")
	}

	s.recordActivity(ctx, claims, models.ActionRequestUpdate,
		fmt.Sprintf("Mengajukan perubahan data pegawai %s", employee.NamaPegawai))

	return request, nil
}

// ListPending returns all open requests for the review queue.
func (s *ChangeRequestService) ListPending(ctx context.Context) ([]models.PendingChangeRequest, error) {
	requests, err := s.requests.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending requests")
	}
	return requests, nil
}

// GetDiff builds the reviewer's field-by-field comparison. Values are
// compared after string normalization, so a numeric 5 proposed against
// a stored "5" reads as unchanged.
func (s *ChangeRequestService) GetDiff(ctx context.Context, id string) (*models.ChangeRequestDiff, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "change request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change request")
	}

	employee, err := s.employees.FindByID(ctx, request.EmployeeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee for request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	var proposed map[string]interface{}
	if err := json.Unmarshal(request.Changes, &proposed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode proposed changes")
	}
	proposed = sanitize.Payload(proposed)

	current := employee.ColumnValues()
	columns := make([]string, 0, len(proposed))
	for column := range proposed {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	fields := make([]models.FieldDiff, 0, len(columns))
	for _, column := range columns {
		currentValue := current[column]
		proposedValue := proposed[column]
		fields = append(fields, models.FieldDiff{
			Column:   column,
			Current:  currentValue,
			Proposed: proposedValue,
			Changed:  normalizeValue(currentValue) != normalizeValue(proposedValue),
		})
	}

	return &models.ChangeRequestDiff{
		Request:  request,
		Employee: employee,
		Proposed: proposed,
		Fields:   fields,
	}, nil
}

// Decide closes a pending request. On approval the stored payload is
// re-sanitized and applied to the employee in the same transaction as
// the status change; a request that is no longer PENDING is a conflict.
func (s *ChangeRequestService) Decide(ctx context.Context, claims *models.JWTClaims, id string, req dto.DecideChangeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "change request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change request")
	}
	if request.Status != models.ChangeRequestPending {
		return appErrors.Clone(appErrors.ErrConflict, "change request has already been processed")
	}

	status := models.ChangeRequestStatus(req.Decision)

	var clean map[string]interface{}
	if status == models.ChangeRequestApproved {
		var proposed map[string]interface{}
		if err := json.Unmarshal(request.Changes, &proposed); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode proposed changes")
		}
		clean = sanitize.Payload(proposed)
		delete(clean, "nik")
	}

	action := models.ActionVerifyApproved
	if status == models.ChangeRequestRejected {
		action = models.ActionVerifyRejected
	}
	var note *string
	if req.Note != "" {
		note = &req.Note
	}

	err = s.requests.Decide(ctx, repository.DecideParams{
		RequestID:  request.ID,
		EmployeeID: request.EmployeeID,
		Status:     status,
		AdminNote:  note,
		Clean:      clean,
		Log: &models.ActivityLog{
			UserID:      &claims.UserID,
			Action:      action,
			Description: fmt.Sprintf("Memproses pengajuan perubahan %s: %s", request.ID, status),
		},
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "change request has already been processed")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply decision")
	}

	if status == models.ChangeRequestApproved {
		s.invalidateDashboard(ctx)
	}
	return nil
}

// History assembles the submission/decision timeline for one record,
// newest event first, paginated in memory.
func (s *ChangeRequestService) History(ctx context.Context, employeeID string, page, size int) ([]models.ChangeHistoryEvent, *models.Pagination, error) {
	rows, err := s.requests.History(ctx, employeeID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change history")
	}

	events := make([]models.ChangeHistoryEvent, 0, len(rows)*2)
	for _, row := range rows {
		actor := ""
		if row.RequesterName != nil {
			actor = *row.RequesterName
		}
		events = append(events, models.ChangeHistoryEvent{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			Actor:     actor,
			Status:    string(models.ChangeRequestPending),
			Kind:      historyKindRequest,
		})
		if row.ProcessedAt != nil && row.Status != models.ChangeRequestPending {
			note := ""
			if row.AdminNote != nil {
				note = *row.AdminNote
			}
			events = append(events, models.ChangeHistoryEvent{
				ID:        row.ID,
				CreatedAt: *row.ProcessedAt,
				Status:    string(row.Status),
				AdminNote: note,
				Kind:      historyKindDecision,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	total := len(events)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return events[start:end], &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// MarkRead clears the proposer's decided-request notifications for one
// record.
func (s *ChangeRequestService) MarkRead(ctx context.Context, claims *models.JWTClaims, employeeID string) error {
	if err := s.requests.MarkRead(ctx, employeeID, claims.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark requests read")
	}
	return nil
}

func (s *ChangeRequestService) recordActivity(ctx context.Context, claims *models.JWTClaims, action, description string) {
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

func (s *ChangeRequestService) invalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

// normalizeValue flattens database and JSON representations of the
// same value onto one string so comparisons ignore type drift between
// a stored column and a JSON payload.
func normalizeValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case *string:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(*v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format("2006-01-02")
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
