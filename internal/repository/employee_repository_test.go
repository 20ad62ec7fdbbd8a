package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/disdik-dki/anjab-api/internal/models"
)

func newEmployeeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEmployeeRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()

	repo := NewEmployeeRepository(db)
	rows := sqlmock.NewRows([]string{"id", "nik", "nama_pegawai", "request_status", "pending_request_id"}).
		AddRow("emp-1", "3171234567890001", "BUDI SANTOSO", "PENDING", "req-1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.id, e.nik")).
		WithArgs("%budi%", "%sdn%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("%budi%", "%sdn%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	employees, total, err := repo.List(context.Background(), models.EmployeeFilter{
		Nama:         "budi",
		UnitKerja:    "sdn",
		Verification: models.VerificationPending,
		Page:         1,
		PageSize:     10,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, employees, 1)
	require.NotNil(t, employees[0].RequestStatus)
	require.Equal(t, "PENDING", *employees[0].RequestStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryCreateWhitelists(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()

	repo := NewEmployeeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employees")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Create(context.Background(), map[string]interface{}{
		"nik":          "3171234567890001",
		"nama_pegawai": "BUDI SANTOSO",
		"jabatan":      "Guru Kelas",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryUpdateColumnsNotFound(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()

	repo := NewEmployeeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateColumns(context.Background(), "missing", map[string]interface{}{
		"jabatan": "Guru Kelas",
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryLinkOwnerAlreadyLinked(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()

	repo := NewEmployeeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees SET user_id")).
		WithArgs("user-1", "emp-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LinkOwner(context.Background(), "emp-1", "user-1")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryOptions(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()

	repo := NewEmployeeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT unit_kerja_nama")).
		WillReturnRows(sqlmock.NewRows([]string{"unit_kerja_nama"}).AddRow("SDN Menteng 01"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT jabatan")).
		WillReturnRows(sqlmock.NewRows([]string{"jabatan"}).AddRow("Guru Kelas"))

	options, err := repo.Options(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"SDN Menteng 01"}, options.Units)
	require.Equal(t, []string{"Guru Kelas"}, options.Jabatans)
	require.NoError(t, mock.ExpectationsWereMet())
}
