package models

import "time"

// Employee is one row of the job-analysis registry. NIK is the natural
// identifier used to reconcile spreadsheet imports; ID stays internal.
type Employee struct {
	ID                     string     `db:"id" json:"id"`
	NIK                    string     `db:"nik" json:"nik"`
	NIP                    *string    `db:"nip" json:"nip,omitempty"`
	NRK                    *string    `db:"nrk" json:"nrk,omitempty"`
	NUPTK                  *string    `db:"nuptk" json:"nuptk,omitempty"`
	NamaPegawai            string     `db:"nama_pegawai" json:"nama_pegawai"`
	TanggalLahir           *time.Time `db:"tanggal_lahir" json:"tanggal_lahir,omitempty"`
	TempatLahir            *string    `db:"tempat_lahir" json:"tempat_lahir,omitempty"`
	JenisKelamin           *string    `db:"jenis_kelamin" json:"jenis_kelamin,omitempty"`
	Agama                  *string    `db:"agama" json:"agama,omitempty"`
	StatusPegawai          *string    `db:"status_pegawai" json:"status_pegawai,omitempty"`
	Golongan               *string    `db:"golongan" json:"golongan,omitempty"`
	Jabatan                *string    `db:"jabatan" json:"jabatan,omitempty"`
	UnitKerjaNama          *string    `db:"unit_kerja_nama" json:"unit_kerja_nama,omitempty"`
	UnitKerjaKecamatan     *string    `db:"unit_kerja_kecamatan" json:"unit_kerja_kecamatan,omitempty"`
	SKPD                   *string    `db:"skpd" json:"skpd,omitempty"`
	TMTUnitKerja           *time.Time `db:"tmt_unit_kerja" json:"tmt_unit_kerja,omitempty"`
	TMTEselon              *time.Time `db:"tmt_eselon" json:"tmt_eselon,omitempty"`
	TMTCPNS                *time.Time `db:"tmt_cpns" json:"tmt_cpns,omitempty"`
	MasaKerja              *string    `db:"masa_kerja" json:"masa_kerja,omitempty"`
	Jenjang                *string    `db:"jenjang" json:"jenjang,omitempty"`
	Ijazah                 *string    `db:"ijazah" json:"ijazah,omitempty"`
	AlamatJalan            *string    `db:"alamat_jalan" json:"alamat_jalan,omitempty"`
	Kelurahan              *string    `db:"kelurahan" json:"kelurahan,omitempty"`
	KecamatanDomisili      *string    `db:"kecamatan_domisili" json:"kecamatan_domisili,omitempty"`
	KotaKabupaten          *string    `db:"kota_kabupaten" json:"kota_kabupaten,omitempty"`
	MataPelajaranDiajarkan *string    `db:"mata_pelajaran_diajarkan" json:"mata_pelajaran_diajarkan,omitempty"`
	BidangStudiSertifikasi *string    `db:"bidang_studi_sertifikasi" json:"bidang_studi_sertifikasi,omitempty"`
	TugasTambahan          *string    `db:"tugas_tambahan" json:"tugas_tambahan,omitempty"`
	JamMengajarUtama       int        `db:"jam_mengajar_utama" json:"jam_mengajar_utama"`
	BesaranGaji            int64      `db:"besaran_gaji" json:"besaran_gaji"`
	EstimasiPensiunTahun   int        `db:"estimasi_pensiun_tahun" json:"estimasi_pensiun_tahun"`
	UserID                 *string    `db:"user_id" json:"user_id,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              *time.Time `db:"updated_at" json:"updated_at,omitempty"`

	// Computed by subquery, not stored.
	RequestStatus    *string `db:"request_status" json:"request_status,omitempty"`
	PendingRequestID *string `db:"pending_request_id" json:"pending_request_id,omitempty"`
}

// ColumnValues exposes the editable columns keyed by column name, for
// building before/after comparisons against a proposed payload.
func (e *Employee) ColumnValues() map[string]interface{} {
	return map[string]interface{}{
		"nik":                      e.NIK,
		"nip":                      e.NIP,
		"nrk":                      e.NRK,
		"nuptk":                    e.NUPTK,
		"nama_pegawai":             e.NamaPegawai,
		"tanggal_lahir":            e.TanggalLahir,
		"tempat_lahir":             e.TempatLahir,
		"jenis_kelamin":            e.JenisKelamin,
		"agama":                    e.Agama,
		"status_pegawai":           e.StatusPegawai,
		"golongan":                 e.Golongan,
		"jabatan":                  e.Jabatan,
		"unit_kerja_nama":          e.UnitKerjaNama,
		"unit_kerja_kecamatan":     e.UnitKerjaKecamatan,
		"skpd":                     e.SKPD,
		"tmt_unit_kerja":           e.TMTUnitKerja,
		"tmt_eselon":               e.TMTEselon,
		"tmt_cpns":                 e.TMTCPNS,
		"masa_kerja":               e.MasaKerja,
		"jenjang":                  e.Jenjang,
		"ijazah":                   e.Ijazah,
		"alamat_jalan":             e.AlamatJalan,
		"kelurahan":                e.Kelurahan,
		"kecamatan_domisili":       e.KecamatanDomisili,
		"kota_kabupaten":           e.KotaKabupaten,
		"mata_pelajaran_diajarkan": e.MataPelajaranDiajarkan,
		"bidang_studi_sertifikasi": e.BidangStudiSertifikasi,
		"tugas_tambahan":           e.TugasTambahan,
		"jam_mengajar_utama":       e.JamMengajarUtama,
		"besaran_gaji":             e.BesaranGaji,
		"estimasi_pensiun_tahun":   e.EstimasiPensiunTahun,
	}
}

// VerificationStatus filters list queries by pending-request presence.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
)

// EmployeeFilter captures filtering criteria for listing employees.
type EmployeeFilter struct {
	Nama          string
	NIP           string
	UnitKerja     string
	Jabatan       string
	StatusPegawai string
	Verification  VerificationStatus
	OwnerUserID   string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// FilterOptions lists distinct values used by search autocompletion.
type FilterOptions struct {
	Units    []string `json:"units"`
	Jabatans []string `json:"jabatans"`
}
