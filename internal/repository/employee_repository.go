package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/disdik-dki/anjab-api/internal/models"
	"github.com/disdik-dki/anjab-api/internal/sanitize"
)

// pendingStatusSubquery exposes an open change request on each row
// without storing it; the UI shows records as awaiting verification.
const pendingStatusSubquery = `(SELECT status FROM change_requests WHERE employee_id = e.id AND status = 'PENDING' LIMIT 1)`

const pendingIDSubquery = `(SELECT id FROM change_requests WHERE employee_id = e.id AND status = 'PENDING' LIMIT 1)`

const employeeColumns = `e.id, e.nik, e.nip, e.nrk, e.nuptk, e.nama_pegawai, e.tanggal_lahir, e.tempat_lahir,
       e.jenis_kelamin, e.agama, e.status_pegawai, e.golongan, e.jabatan, e.unit_kerja_nama, e.unit_kerja_kecamatan,
       e.skpd, e.tmt_unit_kerja, e.tmt_eselon, e.tmt_cpns, e.masa_kerja, e.jenjang, e.ijazah, e.alamat_jalan,
       e.kelurahan, e.kecamatan_domisili, e.kota_kabupaten, e.mata_pelajaran_diajarkan, e.bidang_studi_sertifikasi,
       e.tugas_tambahan, e.jam_mengajar_utama, e.besaran_gaji, e.estimasi_pensiun_tahun, e.user_id, e.created_at, e.updated_at`

// EmployeeRepository manages persistence for employee records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// List returns employees matching filters along with total count.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	base := "FROM employees e WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.OwnerUserID != "" {
		conditions = append(conditions, fmt.Sprintf("e.user_id = $%d", len(args)+1))
		args = append(args, filter.OwnerUserID)
	}
	if filter.Nama != "" {
		conditions = append(conditions, fmt.Sprintf("e.nama_pegawai ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Nama+"%")
	}
	if filter.NIP != "" {
		conditions = append(conditions, fmt.Sprintf("(e.nip ILIKE $%d OR e.nrk ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.NIP+"%")
	}
	if filter.UnitKerja != "" {
		conditions = append(conditions, fmt.Sprintf("e.unit_kerja_nama ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.UnitKerja+"%")
	}
	if filter.Jabatan != "" {
		conditions = append(conditions, fmt.Sprintf("e.jabatan ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Jabatan+"%")
	}
	if filter.StatusPegawai != "" {
		conditions = append(conditions, fmt.Sprintf("e.status_pegawai = $%d", len(args)+1))
		args = append(args, filter.StatusPegawai)
	}
	switch filter.Verification {
	case models.VerificationPending:
		conditions = append(conditions, pendingStatusSubquery+" = 'PENDING'")
	case models.VerificationVerified:
		conditions = append(conditions, pendingStatusSubquery+" IS NULL")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"nama_pegawai":    "e.nama_pegawai",
		"nip":             "e.nip",
		"nrk":             "e.nrk",
		"golongan":        "e.golongan",
		"jabatan":         "e.jabatan",
		"unit_kerja_nama": "e.unit_kerja_nama",
		"status_pegawai":  "e.status_pegawai",
		"created_at":      "e.created_at",
		"updated_at":      "e.updated_at",
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	var orderClause string
	if filter.SortBy == "status_verifikasi" {
		orderClause = fmt.Sprintf("ORDER BY request_status %s NULLS LAST", order)
	} else {
		column, ok := allowedSorts[filter.SortBy]
		if !ok {
			column = "e.nama_pegawai"
		}
		orderClause = fmt.Sprintf("ORDER BY %s %s", column, order)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 10
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s, %s AS request_status, %s AS pending_request_id %s %s LIMIT %d OFFSET %d",
		employeeColumns, pendingStatusSubquery, pendingIDSubquery, base, orderClause, size, offset)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	return employees, total, nil
}

// FindByID fetches an employee by internal identifier.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s, %s AS request_status, %s AS pending_request_id FROM employees e WHERE e.id = $1",
		employeeColumns, pendingStatusSubquery, pendingIDSubquery)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByNIK fetches an employee by the natural identifier.
func (r *EmployeeRepository) FindByNIK(ctx context.Context, nik string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s, %s AS request_status, %s AS pending_request_id FROM employees e WHERE e.nik = $1",
		employeeColumns, pendingStatusSubquery, pendingIDSubquery)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, nik); err != nil {
		return nil, err
	}
	return &employee, nil
}

// Create inserts a new employee from a whitelist-filtered column map and
// returns the generated identifier.
func (r *EmployeeRepository) Create(ctx context.Context, clean map[string]interface{}) (string, error) {
	cols := sortedWhitelistedColumns(clean)
	if len(cols) == 0 {
		return "", fmt.Errorf("create employee: no columns to insert")
	}

	id := uuid.NewString()
	names := make([]string, 0, len(cols)+2)
	placeholders := make([]string, 0, len(cols)+2)
	args := make([]interface{}, 0, len(cols)+1)

	names = append(names, "id")
	placeholders = append(placeholders, "$1")
	args = append(args, id)

	for _, col := range cols {
		args = append(args, clean[col])
		names = append(names, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}
	names = append(names, "created_at")
	placeholders = append(placeholders, "NOW()")

	query := fmt.Sprintf("INSERT INTO employees (%s) VALUES (%s)",
		strings.Join(names, ", "), strings.Join(placeholders, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("create employee: %w", err)
	}
	return id, nil
}

// UpdateColumns applies a partial update built strictly from
// whitelist-filtered columns. Returns sql.ErrNoRows when the record is
// missing.
func (r *EmployeeRepository) UpdateColumns(ctx context.Context, id string, clean map[string]interface{}) error {
	cols := sortedWhitelistedColumns(clean)
	if len(cols) == 0 {
		return fmt.Errorf("update employee: no columns to update")
	}

	setParts := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols)+1)
	for _, col := range cols {
		args = append(args, clean[col])
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	setParts = append(setParts, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE employees SET %s WHERE id = $%d", strings.Join(setParts, ", "), len(args)+1)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check employee update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an employee record.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check employee delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Options lists distinct unit and position names for autocompletion.
func (r *EmployeeRepository) Options(ctx context.Context) (*models.FilterOptions, error) {
	var units []string
	if err := r.db.SelectContext(ctx, &units,
		"SELECT DISTINCT unit_kerja_nama FROM employees WHERE unit_kerja_nama IS NOT NULL ORDER BY unit_kerja_nama ASC"); err != nil {
		return nil, fmt.Errorf("list unit options: %w", err)
	}
	var jabatans []string
	if err := r.db.SelectContext(ctx, &jabatans,
		"SELECT DISTINCT jabatan FROM employees WHERE jabatan IS NOT NULL ORDER BY jabatan ASC"); err != nil {
		return nil, fmt.Errorf("list jabatan options: %w", err)
	}
	return &models.FilterOptions{Units: units, Jabatans: jabatans}, nil
}

// LinkOwner binds a user account to an employee record. Fails with
// sql.ErrNoRows when the record is missing or already owned.
func (r *EmployeeRepository) LinkOwner(ctx context.Context, employeeID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE employees SET user_id = $1, updated_at = NOW() WHERE id = $2 AND user_id IS NULL", userID, employeeID)
	if err != nil {
		return fmt.Errorf("link employee owner: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check employee link rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// sortedWhitelistedColumns re-checks the whitelist at the SQL boundary
// and fixes column order so generated statements are deterministic.
func sortedWhitelistedColumns(clean map[string]interface{}) []string {
	cols := make([]string, 0, len(clean))
	for col := range clean {
		if sanitize.Allowed(col) {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	return cols
}
