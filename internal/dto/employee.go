package dto

// EmployeeQuery binds the employee list filters.
type EmployeeQuery struct {
	Nama          string `form:"nama"`
	NIP           string `form:"nip"`
	UnitKerja     string `form:"unit_kerja"`
	Jabatan       string `form:"jabatan"`
	StatusPegawai string `form:"status_pegawai"`
	Verification  string `form:"status_verifikasi"`
	Page          int    `form:"page,default=1"`
	PageSize      int    `form:"limit,default=10"`
	SortBy        string `form:"sortBy,default=nama_pegawai"`
	SortOrder     string `form:"sortOrder,default=ASC"`
}

// EmployeePayload is a raw column map from a form submission. Keys are
// filtered against the editable-column whitelist before any write.
type EmployeePayload map[string]interface{}

// ExportQuery binds the export snapshot filters.
type ExportQuery struct {
	Nama         string `form:"nama"`
	NIP          string `form:"nip"`
	UnitKerja    string `form:"unit_kerja"`
	Verification string `form:"status_verifikasi"`
	Format       string `form:"format,default=xlsx"`
}
