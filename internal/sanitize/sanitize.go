// Package sanitize guards every dynamically built employee write. Column
// names from callers are only ever used after passing the closed
// whitelist below; anything else is dropped before SQL construction.
package sanitize

// editableColumns is the full set of employee columns a form submission
// or change-request payload may touch.
var editableColumns = map[string]struct{}{
	"nik":                      {},
	"nip":                      {},
	"nrk":                      {},
	"nuptk":                    {},
	"nama_pegawai":             {},
	"tanggal_lahir":            {},
	"tempat_lahir":             {},
	"jenis_kelamin":            {},
	"agama":                    {},
	"status_pegawai":           {},
	"golongan":                 {},
	"jabatan":                  {},
	"unit_kerja_nama":          {},
	"unit_kerja_kecamatan":     {},
	"skpd":                     {},
	"tmt_unit_kerja":           {},
	"tmt_eselon":               {},
	"tmt_cpns":                 {},
	"masa_kerja":               {},
	"jenjang":                  {},
	"ijazah":                   {},
	"alamat_jalan":             {},
	"kelurahan":                {},
	"kecamatan_domisili":       {},
	"kota_kabupaten":           {},
	"mata_pelajaran_diajarkan": {},
	"bidang_studi_sertifikasi": {},
	"tugas_tambahan":           {},
	"jam_mengajar_utama":       {},
	"besaran_gaji":             {},
	"estimasi_pensiun_tahun":   {},
}

// numericColumns default to zero instead of NULL when cleared, so
// downstream arithmetic never trips over missing values.
var numericColumns = map[string]struct{}{
	"jam_mengajar_utama":     {},
	"besaran_gaji":           {},
	"estimasi_pensiun_tahun": {},
}

// Allowed reports whether col may appear in a dynamically built write.
func Allowed(col string) bool {
	_, ok := editableColumns[col]
	return ok
}

// Numeric reports whether col takes 0 rather than NULL when emptied.
func Numeric(col string) bool {
	_, ok := numericColumns[col]
	return ok
}

// Payload filters the input down to whitelisted columns and normalises
// empty strings: NULL for text and date columns, 0 for numeric ones.
// Whitespace-only strings count as empty. Non-string values pass through
// untouched; the database enforces their types.
func Payload(input map[string]interface{}) map[string]interface{} {
	clean := make(map[string]interface{}, len(input))
	for col, value := range input {
		if !Allowed(col) {
			continue
		}
		clean[col] = normalize(col, value)
	}
	return clean
}

func normalize(col string, value interface{}) interface{} {
	s, ok := value.(string)
	if !ok {
		return value
	}
	if !isBlank(s) {
		return s
	}
	if Numeric(col) {
		return 0
	}
	return nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
