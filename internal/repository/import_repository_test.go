package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/disdik-dki/anjab-api/internal/models"
)

func newImportRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func importRow(nik, name string) models.ImportRow {
	return models.ImportRow{NIK: nik, NamaPegawai: &name}
}

func TestImportRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newImportRepoMock(t)
	defer cleanup()

	repo := NewImportRepository(db, 500)
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE staging_anjab_[0-9a-f]+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO staging_anjab_[0-9a-f]+`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees e SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employees")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_logs")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	userID := "admin-1"
	inserted, updated, err := repo.BulkUpsert(context.Background(),
		[]models.ImportRow{
			importRow("3171234567890001", "BUDI SANTOSO"),
			importRow("3171234567890002", "SITI AMINAH"),
		},
		&models.ActivityLog{UserID: &userID, Action: models.ActionUploadExcel, Description: "upload"})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	require.Equal(t, 1, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRepositoryBulkUpsertBatches(t *testing.T) {
	db, mock, cleanup := newImportRepoMock(t)
	defer cleanup()

	// batch size of 2 forces two staging inserts for three rows
	repo := NewImportRepository(db, 2)
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE staging_anjab_[0-9a-f]+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO staging_anjab_[0-9a-f]+`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO staging_anjab_[0-9a-f]+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees e SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employees")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	inserted, updated, err := repo.BulkUpsert(context.Background(),
		[]models.ImportRow{
			importRow("1", "A"), importRow("2", "B"), importRow("3", "C"),
		}, nil)
	require.NoError(t, err)
	require.Equal(t, 3, inserted)
	require.Equal(t, 0, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRepositoryBulkUpsertEmpty(t *testing.T) {
	db, mock, cleanup := newImportRepoMock(t)
	defer cleanup()

	repo := NewImportRepository(db, 500)
	inserted, updated, err := repo.BulkUpsert(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Zero(t, inserted)
	require.Zero(t, updated)
	require.NoError(t, mock.ExpectationsWereMet())
}
