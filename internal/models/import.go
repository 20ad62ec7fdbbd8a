package models

import "time"

// ImportRow is one spreadsheet row after cleaning, ready for staging.
// Only NIK is mandatory; everything else may be absent and will not
// overwrite existing data on merge.
type ImportRow struct {
	NIK           string
	NamaPegawai   *string
	NRK           *string
	NIP           *string
	Golongan      *string
	TMTUnitKerja  *time.Time
	Jabatan       *string
	TMTEselon     *time.Time
	TMTCPNS       *time.Time
	TanggalLahir  *time.Time
	TempatLahir   *string
	MasaKerja     *string
	StatusPegawai *string
	JenisKelamin  *string
	Agama         *string
	Jenjang       *string
	UnitKerjaNama *string
	SKPD          *string
}
