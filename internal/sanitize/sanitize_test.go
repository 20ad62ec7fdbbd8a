package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadDropsUnknownColumns(t *testing.T) {
	clean := Payload(map[string]interface{}{
		"nama_pegawai":       "Budi",
		"id":                 "injected",
		"request_status":     "PENDING",
		"pending_request_id": "x",
		"user_id":            "someone-else",
		"created_at":         "2020-01-01",
		"password_hash":      "nope",
		"jabatan; DROP":      "x",
	})

	require.Equal(t, map[string]interface{}{"nama_pegawai": "Budi"}, clean)
}

func TestPayloadEmptyStringToNull(t *testing.T) {
	clean := Payload(map[string]interface{}{
		"tanggal_lahir": "",
		"alamat_jalan":  "   ",
		"jabatan":       "GURU",
	})

	require.Len(t, clean, 3)
	require.Nil(t, clean["tanggal_lahir"])
	require.Nil(t, clean["alamat_jalan"])
	require.Equal(t, "GURU", clean["jabatan"])
}

func TestPayloadNumericDefaultsToZero(t *testing.T) {
	clean := Payload(map[string]interface{}{
		"besaran_gaji":           "",
		"jam_mengajar_utama":     "",
		"estimasi_pensiun_tahun": "",
	})

	require.Equal(t, 0, clean["besaran_gaji"])
	require.Equal(t, 0, clean["jam_mengajar_utama"])
	require.Equal(t, 0, clean["estimasi_pensiun_tahun"])
}

func TestPayloadKeepsNonStringValues(t *testing.T) {
	clean := Payload(map[string]interface{}{
		"besaran_gaji":       float64(4500000),
		"jam_mengajar_utama": float64(24),
		"nama_pegawai":       "Siti",
		"tugas_tambahan":     nil,
	})

	require.Equal(t, float64(4500000), clean["besaran_gaji"])
	require.Equal(t, float64(24), clean["jam_mengajar_utama"])
	require.Nil(t, clean["tugas_tambahan"])
}

func TestPayloadEmptyInput(t *testing.T) {
	require.Empty(t, Payload(nil))
	require.Empty(t, Payload(map[string]interface{}{"bogus": "x"}))
}
