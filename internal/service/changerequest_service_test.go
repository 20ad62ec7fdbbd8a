package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/disdik-dki/anjab-api/internal/dto"
	"github.com/disdik-dki/anjab-api/internal/models"
	"github.com/disdik-dki/anjab-api/internal/repository"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
)

type changeRepoStub struct {
	requests    map[string]*models.ChangeRequest
	pendingFor  map[string]bool
	history     []repository.HistoryRow
	lastDecide  repository.DecideParams
	decideError error
}

func newChangeRepoStub() *changeRepoStub {
	return &changeRepoStub{
		requests:   make(map[string]*models.ChangeRequest),
		pendingFor: make(map[string]bool),
	}
}

func (s *changeRepoStub) CreatePending(ctx context.Context, request *models.ChangeRequest) error {
	if s.pendingFor[request.EmployeeID] {
		return repository.ErrPendingExists
	}
	request.ID = "req-" + request.EmployeeID
	request.Status = models.ChangeRequestPending
	s.pendingFor[request.EmployeeID] = true
	s.requests[request.ID] = request
	return nil
}

func (s *changeRepoStub) GetByID(ctx context.Context, id string) (*models.ChangeRequest, error) {
	if request, ok := s.requests[id]; ok {
		copy := *request
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *changeRepoStub) ListPending(ctx context.Context) ([]models.PendingChangeRequest, error) {
	return nil, nil
}

func (s *changeRepoStub) Decide(ctx context.Context, params repository.DecideParams) error {
	s.lastDecide = params
	if s.decideError != nil {
		return s.decideError
	}
	if request, ok := s.requests[params.RequestID]; ok {
		request.Status = params.Status
		now := time.Now()
		request.ProcessedAt = &now
	}
	return nil
}

func (s *changeRepoStub) History(ctx context.Context, employeeID string) ([]repository.HistoryRow, error) {
	return s.history, nil
}

func (s *changeRepoStub) MarkRead(ctx context.Context, employeeID, userID string) error {
	return nil
}

type employeeReaderStub struct {
	employees map[string]*models.Employee
}

func (s *employeeReaderStub) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if employee, ok := s.employees[id]; ok {
		copy := *employee
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type activityStub struct {
	entries []*models.ActivityLog
}

func (s *activityStub) Create(ctx context.Context, entry *models.ActivityLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

func ownedEmployee(id, ownerID string) *models.Employee {
	return &models.Employee{
		ID:          id,
		NIK:         "3171234567890001",
		NamaPegawai: "BUDI SANTOSO",
		UserID:      &ownerID,
	}
}

func guruClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleGuruTendik}
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func TestChangeRequestServiceSubmitRejectsEmptyPayload(t *testing.T) {
	repo := newChangeRepoStub()
	employees := &employeeReaderStub{employees: map[string]*models.Employee{"emp-1": ownedEmployee("emp-1", "user-1")}}
	svc := NewChangeRequestService(repo, employees, &activityStub{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), guruClaims("user-1"), "emp-1", map[string]interface{}{
		"hacker_column": "x",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestServiceSubmitOwnershipAndConflict(t *testing.T) {
	repo := newChangeRepoStub()
	employees := &employeeReaderStub{employees: map[string]*models.Employee{"emp-1": ownedEmployee("emp-1", "user-1")}}
	activity := &activityStub{}
	svc := NewChangeRequestService(repo, employees, activity, nil, nil, nil)

	_, err := svc.Submit(context.Background(), guruClaims("intruder"), "emp-1", map[string]interface{}{
		"jabatan": "Guru Kelas",
	})
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	request, err := svc.Submit(context.Background(), guruClaims("user-1"), "emp-1", map[string]interface{}{
		"jabatan": "Guru Kelas",
		"nik":     "9999999999999999",
	})
	require.NoError(t, err)
	require.Equal(t, models.ChangeRequestPending, request.Status)
	require.Len(t, activity.entries, 1)

	// the stored payload never carries the natural identifier
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(request.Changes, &stored))
	require.NotContains(t, stored, "nik")

	_, err = svc.Submit(context.Background(), guruClaims("user-1"), "emp-1", map[string]interface{}{
		"jabatan": "Kepala Sekolah",
	})
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestServiceDiffNormalizesValues(t *testing.T) {
	repo := newChangeRepoStub()
	masaKerja := "5"
	owner := "user-1"
	employee := &models.Employee{
		ID:               "emp-1",
		NIK:              "3171234567890001",
		NamaPegawai:      "BUDI SANTOSO",
		MasaKerja:        &masaKerja,
		JamMengajarUtama: 24,
		UserID:           &owner,
	}
	employees := &employeeReaderStub{employees: map[string]*models.Employee{"emp-1": employee}}
	svc := NewChangeRequestService(repo, employees, &activityStub{}, nil, nil, nil)

	changes, err := json.Marshal(map[string]interface{}{
		"masa_kerja":         5,
		"jam_mengajar_utama": 30,
	})
	require.NoError(t, err)
	repo.requests["req-1"] = &models.ChangeRequest{
		ID:         "req-1",
		EmployeeID: "emp-1",
		Changes:    changes,
		Status:     models.ChangeRequestPending,
	}

	diff, err := svc.GetDiff(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, diff.Fields, 2)

	byColumn := make(map[string]models.FieldDiff)
	for _, field := range diff.Fields {
		byColumn[field.Column] = field
	}
	// numeric 5 against stored "5" reads as unchanged
	require.False(t, byColumn["masa_kerja"].Changed)
	require.True(t, byColumn["jam_mengajar_utama"].Changed)
}

func TestChangeRequestServiceDecideIsTerminal(t *testing.T) {
	repo := newChangeRepoStub()
	employees := &employeeReaderStub{employees: map[string]*models.Employee{"emp-1": ownedEmployee("emp-1", "user-1")}}
	svc := NewChangeRequestService(repo, employees, &activityStub{}, nil, nil, nil)

	changes, _ := json.Marshal(map[string]interface{}{"jabatan": "Guru Kelas", "bogus": 1})
	repo.requests["req-1"] = &models.ChangeRequest{
		ID:         "req-1",
		EmployeeID: "emp-1",
		Changes:    changes,
		Status:     models.ChangeRequestPending,
	}

	err := svc.Decide(context.Background(), adminClaims(), "req-1", dto.DecideChangeRequest{Decision: "APPROVED"})
	require.NoError(t, err)
	require.Equal(t, models.ChangeRequestApproved, repo.lastDecide.Status)
	require.Contains(t, repo.lastDecide.Clean, "jabatan")
	require.NotContains(t, repo.lastDecide.Clean, "bogus")

	// second decision hits the already-processed guard
	err = svc.Decide(context.Background(), adminClaims(), "req-1", dto.DecideChangeRequest{Decision: "REJECTED"})
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestServiceDecideRaceMapsToConflict(t *testing.T) {
	repo := newChangeRepoStub()
	employees := &employeeReaderStub{employees: map[string]*models.Employee{"emp-1": ownedEmployee("emp-1", "user-1")}}
	svc := NewChangeRequestService(repo, employees, &activityStub{}, nil, nil, nil)

	repo.requests["req-1"] = &models.ChangeRequest{
		ID:         "req-1",
		EmployeeID: "emp-1",
		Changes:    []byte(`{}`),
		Status:     models.ChangeRequestPending,
	}
	repo.decideError = sql.ErrNoRows

	err := svc.Decide(context.Background(), adminClaims(), "req-1", dto.DecideChangeRequest{Decision: "REJECTED"})
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestChangeRequestServiceHistoryTimeline(t *testing.T) {
	repo := newChangeRepoStub()
	employees := &employeeReaderStub{employees: map[string]*models.Employee{}}
	svc := NewChangeRequestService(repo, employees, &activityStub{}, nil, nil, nil)

	requester := "Budi"
	note := "ok"
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	decided := base.Add(2 * time.Hour)
	repo.history = []repository.HistoryRow{
		{
			ID:            "req-1",
			CreatedAt:     base,
			ProcessedAt:   &decided,
			Status:        models.ChangeRequestApproved,
			AdminNote:     &note,
			RequesterName: &requester,
		},
		{
			ID:            "req-2",
			CreatedAt:     base.Add(3 * time.Hour),
			Status:        models.ChangeRequestPending,
			RequesterName: &requester,
		},
	}

	events, pagination, err := svc.History(context.Background(), "emp-1", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, pagination.TotalCount)
	require.Len(t, events, 3)
	// newest first: the open submission, then the decision, then the original submission
	require.Equal(t, "req-2", events[0].ID)
	require.Equal(t, "DECISION", events[1].Kind)
	require.Equal(t, "ok", events[1].AdminNote)
	require.Equal(t, "REQUEST", events[2].Kind)

	// pagination slices the flattened timeline
	pageTwo, _, err := svc.History(context.Background(), "emp-1", 2, 2)
	require.NoError(t, err)
	require.Len(t, pageTwo, 1)
}
