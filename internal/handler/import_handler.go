package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/disdik-dki/anjab-api/internal/dto"
	"github.com/disdik-dki/anjab-api/internal/models"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
	"github.com/disdik-dki/anjab-api/pkg/response"
)

type importService interface {
	ProcessUpload(ctx context.Context, claims *models.JWTClaims, reader io.Reader) (*dto.ImportResult, error)
	Template() ([]byte, error)
}

type importObserver interface {
	RecordImport(inserted, updated, failed int)
}

// ImportHandler accepts spreadsheet uploads and serves the blank
// distribution template.
type ImportHandler struct {
	service        importService
	metrics        importObserver
	maxUploadBytes int64
}

// NewImportHandler constructs the handler.
func NewImportHandler(service importService, metrics importObserver, maxUploadBytes int64) *ImportHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &ImportHandler{service: service, metrics: metrics, maxUploadBytes: maxUploadBytes}
}

// Upload godoc
// @Summary Import employee records from an Excel workbook
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook (.xlsx)"
// @Success 200 {object} response.Envelope
// @Router /import [post]
func (h *ImportHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file field is required"))
		return
	}
	if header.Size > h.maxUploadBytes {
		response.Error(c, appErrors.ErrFileTooLarge)
		return
	}
	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" && ext != ".xlsm" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only .xlsx uploads are accepted"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	result, err := h.service.ProcessUpload(c.Request.Context(), claims, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordImport(result.Inserted, result.Updated, result.ErrorCount)
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Template godoc
// @Summary Download the blank import template
// @Tags Import
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200
// @Router /import/template [get]
func (h *ImportHandler) Template(c *gin.Context) {
	content, err := h.service.Template()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build template"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="template-anjab.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
