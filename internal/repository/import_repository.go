package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/disdik-dki/anjab-api/internal/models"
)

// stagingColumns is the fixed column order shared by the temp table
// DDL, the batched inserts, and the merge statements.
var stagingColumns = []string{
	"nik", "nama_pegawai", "nrk", "nip", "golongan",
	"tmt_unit_kerja", "jabatan", "tmt_eselon", "tmt_cpns",
	"tanggal_lahir", "tempat_lahir", "masa_kerja", "status_pegawai",
	"jenis_kelamin", "agama", "jenjang", "unit_kerja_nama", "skpd",
}

// mergeUpdateColumns are the only columns a re-import may refresh on an
// existing record; manually curated fields stay untouched.
var mergeUpdateColumns = []string{
	"nama_pegawai", "nrk", "nip", "golongan",
	"tmt_unit_kerja", "jabatan", "unit_kerja_nama", "status_pegawai",
}

// ImportRepository merges cleaned spreadsheet rows into the registry
// through a per-invocation staging table.
type ImportRepository struct {
	db        *sqlx.DB
	batchSize int
}

// NewImportRepository constructs the repository. batchSize bounds the
// multi-row insert into staging.
func NewImportRepository(db *sqlx.DB, batchSize int) *ImportRepository {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &ImportRepository{db: db, batchSize: batchSize}
}

// BulkUpsert stages all rows, updates existing employees keyed by NIK
// and inserts the rest, all inside one transaction. The staging table
// name carries a random suffix so concurrent imports never collide, and
// ON COMMIT DROP disposes of it either way.
func (r *ImportRepository) BulkUpsert(ctx context.Context, rows []models.ImportRow, log *models.ActivityLog) (inserted, updated int, err error) {
	if len(rows) == 0 {
		return 0, 0, nil
	}

	table, err := stagingTableName()
	if err != nil {
		return 0, 0, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ddl := fmt.Sprintf(`CREATE TEMP TABLE %s (
	nik TEXT NOT NULL,
	nama_pegawai TEXT,
	nrk TEXT,
	nip TEXT,
	golongan TEXT,
	tmt_unit_kerja DATE,
	jabatan TEXT,
	tmt_eselon DATE,
	tmt_cpns DATE,
	tanggal_lahir DATE,
	tempat_lahir TEXT,
	masa_kerja TEXT,
	status_pegawai TEXT,
	jenis_kelamin TEXT,
	agama TEXT,
	jenjang TEXT,
	unit_kerja_nama TEXT,
	skpd TEXT
) ON COMMIT DROP`, table)
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return 0, 0, fmt.Errorf("create staging table: %w", err)
	}

	for start := 0; start < len(rows); start += r.batchSize {
		end := start + r.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insertStagingBatch(ctx, tx, table, rows[start:end]); err != nil {
			return 0, 0, err
		}
	}

	updated, err = mergeExisting(ctx, tx, table)
	if err != nil {
		return 0, 0, err
	}
	inserted, err = insertNew(ctx, tx, table)
	if err != nil {
		return 0, 0, err
	}

	if log != nil {
		if err := insertActivityLogTx(ctx, tx, log); err != nil {
			return 0, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit import tx: %w", err)
	}
	return inserted, updated, nil
}

func insertStagingBatch(ctx context.Context, tx *sqlx.Tx, table string, batch []models.ImportRow) error {
	placeholders := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch)*len(stagingColumns))
	for _, row := range batch {
		marks := make([]string, 0, len(stagingColumns))
		for _, value := range []interface{}{
			row.NIK, row.NamaPegawai, row.NRK, row.NIP, row.Golongan,
			row.TMTUnitKerja, row.Jabatan, row.TMTEselon, row.TMTCPNS,
			row.TanggalLahir, row.TempatLahir, row.MasaKerja, row.StatusPegawai,
			row.JenisKelamin, row.Agama, row.Jenjang, row.UnitKerjaNama, row.SKPD,
		} {
			args = append(args, value)
			marks = append(marks, fmt.Sprintf("$%d", len(args)))
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+")")
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(stagingColumns, ", "), strings.Join(placeholders, ", "))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("stage import batch: %w", err)
	}
	return nil
}

func mergeExisting(ctx context.Context, tx *sqlx.Tx, table string) (int, error) {
	setParts := make([]string, 0, len(mergeUpdateColumns)+1)
	for _, col := range mergeUpdateColumns {
		setParts = append(setParts, fmt.Sprintf("%s = COALESCE(s.%s, e.%s)", col, col, col))
	}
	setParts = append(setParts, "updated_at = NOW()")
	query := fmt.Sprintf(`UPDATE employees e SET %s FROM %s s WHERE e.nik = s.nik`,
		strings.Join(setParts, ", "), table)
	result, err := tx.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("merge existing employees: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check merge rows: %w", err)
	}
	return int(rows), nil
}

func insertNew(ctx context.Context, tx *sqlx.Tx, table string) (int, error) {
	cols := strings.Join(stagingColumns, ", ")
	selects := make([]string, len(stagingColumns))
	for i, col := range stagingColumns {
		// employees.nama_pegawai is NOT NULL; a nameless sheet row still
		// creates the record, just with an empty display name.
		if col == "nama_pegawai" {
			selects[i] = "COALESCE(s.nama_pegawai, '')"
			continue
		}
		selects[i] = "s." + col
	}
	selectCols := strings.Join(selects, ", ")
	query := fmt.Sprintf(`INSERT INTO employees (%s, created_at)
	SELECT DISTINCT ON (s.nik) %s, NOW()
	FROM %s s
	WHERE NOT EXISTS (SELECT 1 FROM employees e WHERE e.nik = s.nik)`,
		cols, selectCols, table)
	result, err := tx.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("insert new employees: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check insert rows: %w", err)
	}
	return int(rows), nil
}

func stagingTableName() (string, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate staging suffix: %w", err)
	}
	return "staging_anjab_" + hex.EncodeToString(buf[:]), nil
}
