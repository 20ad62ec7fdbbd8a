package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/disdik-dki/anjab-api/internal/dto"
	"github.com/disdik-dki/anjab-api/internal/models"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
	"github.com/disdik-dki/anjab-api/pkg/export"
)

// exportColumns fixes the column order of every rendered snapshot.
var exportColumns = []struct {
	Header string
	Value  func(e *models.Employee) string
}{
	{"NIK", func(e *models.Employee) string { return e.NIK }},
	{"NIP", func(e *models.Employee) string { return derefString(e.NIP) }},
	{"NRK", func(e *models.Employee) string { return derefString(e.NRK) }},
	{"Nama Pegawai", func(e *models.Employee) string { return e.NamaPegawai }},
	{"Jenis Kelamin", func(e *models.Employee) string { return derefString(e.JenisKelamin) }},
	{"Tanggal Lahir", func(e *models.Employee) string { return formatDate(e.TanggalLahir) }},
	{"Golongan", func(e *models.Employee) string { return derefString(e.Golongan) }},
	{"Jabatan", func(e *models.Employee) string { return derefString(e.Jabatan) }},
	{"Status Pegawai", func(e *models.Employee) string { return derefString(e.StatusPegawai) }},
	{"Unit Kerja", func(e *models.Employee) string { return derefString(e.UnitKerjaNama) }},
	{"Kecamatan", func(e *models.Employee) string { return derefString(e.UnitKerjaKecamatan) }},
	{"SKPD", func(e *models.Employee) string { return derefString(e.SKPD) }},
	{"Jenjang", func(e *models.Employee) string { return derefString(e.Jenjang) }},
	{"Masa Kerja", func(e *models.Employee) string { return derefString(e.MasaKerja) }},
	{"Estimasi Pensiun", func(e *models.Employee) string { return strconv.Itoa(e.EstimasiPensiunTahun) }},
}

// ExportFile is a rendered snapshot ready for download.
type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ExportService renders filtered registry snapshots as spreadsheet,
// CSV, or PDF downloads.
type ExportService struct {
	repo   employeeRepository
	xlsx   *export.XLSXExporter
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(repo employeeRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:   repo,
		xlsx:   export.NewXLSXExporter(),
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Export snapshots the registry under the given filters, sorted by
// employee name, and renders it in the requested format.
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*ExportFile, error) {
	filter := models.EmployeeFilter{
		Nama:         query.Nama,
		NIP:          query.NIP,
		UnitKerja:    query.UnitKerja,
		Verification: models.VerificationStatus(query.Verification),
		Page:         1,
		PageSize:     100,
		SortBy:       "nama_pegawai",
		SortOrder:    "ASC",
	}

	// Drain all pages; the repository caps a single page at 100 rows.
	var all []models.Employee
	for {
		employees, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot employees")
		}
		all = append(all, employees...)
		if len(all) >= total || len(employees) == 0 {
			break
		}
		filter.Page++
	}

	dataset := buildDataset(all)
	stamp := time.Now().Format("20060102")

	switch query.Format {
	case "", "xlsx":
		content, err := s.xlsx.Render(dataset, "Data Pegawai")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx export")
		}
		return &ExportFile{
			FileName:    "data-anjab-" + stamp + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}, nil
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{
			FileName:    "data-anjab-" + stamp + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		content, err := s.pdf.Render(dataset, "Data Analisis Jabatan Pegawai")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{
			FileName:    "data-anjab-" + stamp + ".pdf",
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+query.Format)
	}
}

func buildDataset(employees []models.Employee) export.Dataset {
	headers := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		headers[i] = col.Header
	}
	rows := make([]map[string]string, 0, len(employees))
	for i := range employees {
		row := make(map[string]string, len(exportColumns))
		for _, col := range exportColumns {
			row[col.Header] = col.Value(&employees[i])
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format("2006-01-02")
}
