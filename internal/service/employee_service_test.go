package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/disdik-dki/anjab-api/internal/models"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
)

type employeeRepoStub struct {
	employees  map[string]*models.Employee
	byNIK      map[string]*models.Employee
	lastFilter models.EmployeeFilter
	lastClean  map[string]interface{}
}

func newEmployeeRepoStub() *employeeRepoStub {
	return &employeeRepoStub{
		employees: make(map[string]*models.Employee),
		byNIK:     make(map[string]*models.Employee),
	}
}

func (s *employeeRepoStub) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	s.lastFilter = filter
	result := make([]models.Employee, 0, len(s.employees))
	for _, employee := range s.employees {
		result = append(result, *employee)
	}
	return result, len(result), nil
}

func (s *employeeRepoStub) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if employee, ok := s.employees[id]; ok {
		copy := *employee
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *employeeRepoStub) FindByNIK(ctx context.Context, nik string) (*models.Employee, error) {
	if employee, ok := s.byNIK[nik]; ok {
		copy := *employee
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *employeeRepoStub) Create(ctx context.Context, clean map[string]interface{}) (string, error) {
	s.lastClean = clean
	employee := &models.Employee{ID: "emp-new", NIK: clean["nik"].(string)}
	if name, ok := clean["nama_pegawai"].(string); ok {
		employee.NamaPegawai = name
	}
	s.employees[employee.ID] = employee
	s.byNIK[employee.NIK] = employee
	return employee.ID, nil
}

func (s *employeeRepoStub) UpdateColumns(ctx context.Context, id string, clean map[string]interface{}) error {
	if _, ok := s.employees[id]; !ok {
		return sql.ErrNoRows
	}
	s.lastClean = clean
	return nil
}

func (s *employeeRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.employees[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.employees, id)
	return nil
}

func (s *employeeRepoStub) Options(ctx context.Context) (*models.FilterOptions, error) {
	return &models.FilterOptions{Units: []string{"SDN Menteng 01"}}, nil
}

func TestEmployeeServiceListScopesNonStaff(t *testing.T) {
	repo := newEmployeeRepoStub()
	svc := NewEmployeeService(repo, &activityStub{}, nil, nil)

	_, _, err := svc.List(context.Background(), guruClaims("user-1"), models.EmployeeFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, "user-1", repo.lastFilter.OwnerUserID)

	_, _, err = svc.List(context.Background(), adminClaims(), models.EmployeeFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Empty(t, repo.lastFilter.OwnerUserID)
}

func TestEmployeeServiceGetEnforcesOwnership(t *testing.T) {
	repo := newEmployeeRepoStub()
	owner := "user-1"
	repo.employees["emp-1"] = &models.Employee{ID: "emp-1", NIK: "1", NamaPegawai: "BUDI", UserID: &owner}
	svc := NewEmployeeService(repo, &activityStub{}, nil, nil)

	_, err := svc.Get(context.Background(), guruClaims("intruder"), "emp-1")
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	employee, err := svc.Get(context.Background(), guruClaims("user-1"), "emp-1")
	require.NoError(t, err)
	require.Equal(t, "BUDI", employee.NamaPegawai)
}

func TestEmployeeServiceCreateValidation(t *testing.T) {
	repo := newEmployeeRepoStub()
	activity := &activityStub{}
	svc := NewEmployeeService(repo, activity, nil, nil)

	_, err := svc.Create(context.Background(), adminClaims(), map[string]interface{}{
		"unknown_column": "x",
	})
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), adminClaims(), map[string]interface{}{
		"nama_pegawai": "BUDI",
	})
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	employee, err := svc.Create(context.Background(), adminClaims(), map[string]interface{}{
		"nik":            "3171234567890001",
		"nama_pegawai":   "BUDI",
		"unknown_column": "dropped",
	})
	require.NoError(t, err)
	require.Equal(t, "3171234567890001", employee.NIK)
	require.NotContains(t, repo.lastClean, "unknown_column")
	require.Len(t, activity.entries, 1)

	// a second record with the same NIK is a conflict
	_, err = svc.Create(context.Background(), adminClaims(), map[string]interface{}{
		"nik":          "3171234567890001",
		"nama_pegawai": "BUDI LAIN",
	})
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEmployeeServiceUpdateStripsNaturalID(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.employees["emp-1"] = &models.Employee{ID: "emp-1", NIK: "1", NamaPegawai: "BUDI"}
	svc := NewEmployeeService(repo, &activityStub{}, nil, nil)

	_, err := svc.Update(context.Background(), adminClaims(), "emp-1", map[string]interface{}{
		"nik":     "2",
		"jabatan": "Kepala Sekolah",
	})
	require.NoError(t, err)
	require.NotContains(t, repo.lastClean, "nik")
	require.Contains(t, repo.lastClean, "jabatan")

	_, err = svc.Update(context.Background(), adminClaims(), "missing", map[string]interface{}{
		"jabatan": "Guru Kelas",
	})
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEmployeeServiceDeleteRecordsActivity(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.employees["emp-1"] = &models.Employee{ID: "emp-1", NIK: "1", NamaPegawai: "BUDI"}
	activity := &activityStub{}
	svc := NewEmployeeService(repo, activity, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), adminClaims(), "emp-1"))
	require.Len(t, activity.entries, 1)
	require.Equal(t, models.ActionDeleteAnjab, activity.entries[0].Action)

	err := svc.Delete(context.Background(), adminClaims(), "emp-1")
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
