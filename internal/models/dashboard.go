package models

import "time"

// PensionYearCount is one bucket of the retirement projection.
type PensionYearCount struct {
	Year  int `db:"tahun_pensiun" json:"year"`
	Count int `db:"count" json:"count"`
}

// UnitCount groups headcount by work-unit district.
type UnitCount struct {
	Kecamatan string `db:"unit_kerja_kecamatan" json:"kecamatan"`
	Count     int    `db:"count" json:"count"`
}

// DashboardStats aggregates registry statistics for the landing page.
type DashboardStats struct {
	TotalGuru         int                `json:"total_guru"`
	TotalTendik       int                `json:"total_tendik"`
	PensionProjection []PensionYearCount `json:"pension_projection"`
	KecamatanStats    []UnitCount        `json:"kecamatan_stats"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// NotificationCounts carries the per-role badge counters.
type NotificationCounts struct {
	Pending int `json:"pending"`
	Unread  int `json:"unread"`
}

// PensionEmployee is a projection row for a given retirement year.
type PensionEmployee struct {
	NamaPegawai   string  `db:"nama_pegawai" json:"nama_pegawai"`
	NIP           *string `db:"nip" json:"nip,omitempty"`
	Jabatan       *string `db:"jabatan" json:"jabatan,omitempty"`
	UnitKerjaNama *string `db:"unit_kerja_nama" json:"unit_kerja_nama,omitempty"`
}
