package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/disdik-dki/anjab-api/internal/dto"
	"github.com/disdik-dki/anjab-api/internal/models"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
)

// Spreadsheet column positions, fixed by the distribution template.
const (
	colNRK          = 1
	colNamaPegawai  = 2
	colNIP          = 3
	colGolongan     = 4
	colTMTUnitKerja = 5
	colJabatan      = 7
	colTMTEselon    = 8
	colTMTCPNS      = 9
	colTanggalLahir = 10
	colTempatLahir  = 11
	colMasaKerja    = 12
	colStatus       = 13
	colJenisKelamin = 14
	colAgama        = 15
	colJenjang      = 16
	colUnitKerja    = 17
	colSKPD         = 18
	colNIK          = 19
)

var templateHeaders = []string{
	"No", "NRK", "NAMA PEGAWAI", "NIP", "GOLONGAN", "TMT UNIT KERJA",
	"ESELON", "JABATAN", "TMT ESELON", "TMT CPNS", "TANGGAL LAHIR",
	"TEMPAT LAHIR", "MASA KERJA", "STATUS PEGAWAI", "JENIS KELAMIN",
	"AGAMA", "JENJANG", "UNIT KERJA", "SKPD", "NIK",
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006", "2/1/2006"}

type importMerger interface {
	BulkUpsert(ctx context.Context, rows []models.ImportRow, log *models.ActivityLog) (inserted, updated int, err error)
}

// ImportService turns an uploaded workbook into registry rows. Rows
// that fail natural-identifier cleaning are reported back per row and
// never block the rest of the file.
type ImportService struct {
	merger importMerger
	logger *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(merger importMerger, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{merger: merger, logger: logger}
}

// ProcessUpload parses the first sheet of the workbook and merges the
// valid rows in one transaction.
func (s *ImportService) ProcessUpload(ctx context.Context, claims *models.JWTClaims, reader io.Reader) (*dto.ImportResult, error) {
	workbook, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is not a readable Excel workbook")
	}
	defer workbook.Close() //nolint:errcheck

	sheet := workbook.GetSheetName(0)
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read worksheet rows")
	}
	if len(rows) < 2 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "worksheet has no data rows")
	}

	var (
		parsed    []models.ImportRow
		rowErrors []string
	)
	for i, row := range rows[1:] {
		rowNumber := i + 2

		name := strings.TrimSpace(cellAt(row, colNamaPegawai))
		rawNIK := cellAt(row, colNIK)
		if name == "" && strings.TrimSpace(rawNIK) == "" {
			continue
		}

		nik := cleanNaturalID(rawNIK)
		if nik == "" {
			label := name
			if label == "" {
				label = "Tanpa Nama"
			}
			rowErrors = append(rowErrors, fmt.Sprintf("Baris %d: %s (NIK Kosong/Format Salah)", rowNumber, label))
			continue
		}

		parsed = append(parsed, models.ImportRow{
			NIK:           nik,
			NamaPegawai:   cleanCell(row, colNamaPegawai),
			NRK:           cleanCell(row, colNRK),
			NIP:           cleanCell(row, colNIP),
			Golongan:      cleanCell(row, colGolongan),
			TMTUnitKerja:  parseDate(cellAt(row, colTMTUnitKerja)),
			Jabatan:       cleanCell(row, colJabatan),
			TMTEselon:     parseDate(cellAt(row, colTMTEselon)),
			TMTCPNS:       parseDate(cellAt(row, colTMTCPNS)),
			TanggalLahir:  parseDate(cellAt(row, colTanggalLahir)),
			TempatLahir:   cleanCell(row, colTempatLahir),
			MasaKerja:     cleanCell(row, colMasaKerja),
			StatusPegawai: cleanCell(row, colStatus),
			JenisKelamin:  cleanCell(row, colJenisKelamin),
			Agama:         cleanCell(row, colAgama),
			Jenjang:       cleanCell(row, colJenjang),
			UnitKerjaNama: cleanCell(row, colUnitKerja),
			SKPD:          cleanCell(row, colSKPD),
		})
	}

	parsed = dedupeByNIK(parsed)

	log := &models.ActivityLog{
		UserID:      &claims.UserID,
		Action:      models.ActionUploadExcel,
		Description: fmt.Sprintf("Mengunggah file Excel: %d baris valid, %d baris gagal", len(parsed), len(rowErrors)),
	}
	inserted, updated, err := s.merger.BulkUpsert(ctx, parsed, log)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to merge imported rows")
	}

	return &dto.ImportResult{
		Message:    fmt.Sprintf("Import selesai: %d baru, %d diperbarui", inserted, updated),
		Processed:  inserted + updated,
		Inserted:   inserted,
		Updated:    updated,
		ErrorCount: len(rowErrors),
		Errors:     rowErrors,
	}, nil
}

// Template renders the distribution workbook: the fixed header row plus
// one annotated example row.
func (s *ImportService) Template() ([]byte, error) {
	workbook := excelize.NewFile()
	defer workbook.Close() //nolint:errcheck

	sheet := workbook.GetSheetName(0)
	if err := workbook.SetSheetRow(sheet, "A1", &templateHeaders); err != nil {
		return nil, fmt.Errorf("write template header: %w", err)
	}
	example := []interface{}{
		1, "123456", "BUDI SANTOSO", "196801011990031001", "III/c", "2015-01-01",
		"-", "Guru Kelas", "", "1990-03-01", "1968-01-01",
		"Jakarta", "30 Tahun", "PNS", "L",
		"Islam", "S1", "SDN Menteng 01", "Dinas Pendidikan", "3171234567890001",
	}
	if err := workbook.SetSheetRow(sheet, "A2", &example); err != nil {
		return nil, fmt.Errorf("write template example row: %w", err)
	}

	buffer, err := workbook.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render template workbook: %w", err)
	}
	return buffer.Bytes(), nil
}

// dedupeByNIK collapses repeated NIKs so the file's last row for a
// person is the one applied, regardless of how the database orders the
// staged rows.
func dedupeByNIK(rows []models.ImportRow) []models.ImportRow {
	if len(rows) < 2 {
		return rows
	}
	index := make(map[string]int, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if at, ok := index[row.NIK]; ok {
			out[at] = row
			continue
		}
		index[row.NIK] = len(out)
		out = append(out, row)
	}
	return out
}

func cellAt(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return row[index]
}

// cleanCell nulls blank and dash-placeholder cells so the COALESCE
// merge leaves existing column values alone.
func cleanCell(row []string, index int) *string {
	value := strings.TrimSpace(cellAt(row, index))
	if value == "" || value == "-" {
		return nil
	}
	return &value
}

// cleanNaturalID strips spreadsheet artifacts from an identity number.
// A value rendered in scientific notation is unrecoverable and treated
// as invalid.
func cleanNaturalID(raw string) string {
	cleaned := strings.NewReplacer("'", "", "`", "", " ", "", "\t", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return ""
	}
	if strings.Contains(strings.ToUpper(cleaned), "E+") {
		return ""
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return cleaned
}

// parseDate accepts both Excel date serials and the textual layouts the
// offices actually type in.
func parseDate(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return &parsed
		}
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}
	return nil
}
