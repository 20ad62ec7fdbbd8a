package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/disdik-dki/anjab-api/internal/models"
)

// pensionAgeExpr derives the statutory retirement age per role: 60 for
// teaching and principal positions, 58 for administrative staff.
const pensionAgeExpr = `CASE WHEN jabatan ILIKE '%Guru%' OR jabatan ILIKE '%Kepala Sekolah%' THEN 60 ELSE 58 END`

// DashboardRepository computes registry-wide aggregates.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountTeachers returns the headcount of teaching positions.
func (r *DashboardRepository) CountTeachers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM employees WHERE jabatan ILIKE '%Guru%' OR jabatan ILIKE '%Kepala Sekolah%'"); err != nil {
		return 0, fmt.Errorf("count teachers: %w", err)
	}
	return count, nil
}

// CountStaff returns the headcount of non-teaching positions.
func (r *DashboardRepository) CountStaff(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM employees WHERE jabatan IS NULL OR (jabatan NOT ILIKE '%Guru%' AND jabatan NOT ILIKE '%Kepala Sekolah%')"); err != nil {
		return 0, fmt.Errorf("count staff: %w", err)
	}
	return count, nil
}

// PensionProjection buckets employees by retirement year over the
// window [fromYear, fromYear+5].
func (r *DashboardRepository) PensionProjection(ctx context.Context, fromYear int) ([]models.PensionYearCount, error) {
	query := fmt.Sprintf(`SELECT EXTRACT(YEAR FROM tanggal_lahir)::int + %s AS tahun_pensiun, COUNT(*) AS count
	FROM employees
	WHERE tanggal_lahir IS NOT NULL
	  AND EXTRACT(YEAR FROM tanggal_lahir)::int + %s BETWEEN $1 AND $2
	GROUP BY tahun_pensiun
	ORDER BY tahun_pensiun`, pensionAgeExpr, pensionAgeExpr)
	var buckets []models.PensionYearCount
	if err := r.db.SelectContext(ctx, &buckets, query, fromYear, fromYear+5); err != nil {
		return nil, fmt.Errorf("pension projection: %w", err)
	}
	return buckets, nil
}

// PensionDetail lists the employees retiring in one projection year.
func (r *DashboardRepository) PensionDetail(ctx context.Context, year int) ([]models.PensionEmployee, error) {
	query := fmt.Sprintf(`SELECT nama_pegawai, nip, jabatan, unit_kerja_nama
	FROM employees
	WHERE tanggal_lahir IS NOT NULL
	  AND EXTRACT(YEAR FROM tanggal_lahir)::int + %s = $1
	ORDER BY nama_pegawai`, pensionAgeExpr)
	var employees []models.PensionEmployee
	if err := r.db.SelectContext(ctx, &employees, query, year); err != nil {
		return nil, fmt.Errorf("pension detail: %w", err)
	}
	return employees, nil
}

// KecamatanStats groups headcount by work-unit district.
func (r *DashboardRepository) KecamatanStats(ctx context.Context) ([]models.UnitCount, error) {
	const query = `SELECT unit_kerja_kecamatan, COUNT(*) AS count
	FROM employees
	WHERE unit_kerja_kecamatan IS NOT NULL AND unit_kerja_kecamatan <> ''
	GROUP BY unit_kerja_kecamatan
	ORDER BY count DESC`
	var stats []models.UnitCount
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("kecamatan stats: %w", err)
	}
	return stats, nil
}
