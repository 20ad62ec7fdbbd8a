package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/disdik-dki/anjab-api/internal/dto"
	"github.com/disdik-dki/anjab-api/internal/models"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
	"github.com/disdik-dki/anjab-api/pkg/response"
)

type employeeService interface {
	List(ctx context.Context, claims *models.JWTClaims, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error)
	Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Employee, error)
	Create(ctx context.Context, claims *models.JWTClaims, payload map[string]interface{}) (*models.Employee, error)
	Update(ctx context.Context, claims *models.JWTClaims, id string, payload map[string]interface{}) (*models.Employee, error)
	Delete(ctx context.Context, claims *models.JWTClaims, id string) error
	Options(ctx context.Context) (*models.FilterOptions, error)
}

type changeSubmitter interface {
	Submit(ctx context.Context, claims *models.JWTClaims, employeeID string, payload map[string]interface{}) (*models.ChangeRequest, error)
}

// EmployeeHandler exposes REST endpoints for the registry.
type EmployeeHandler struct {
	service employeeService
	changes changeSubmitter
}

// NewEmployeeHandler constructs the handler.
func NewEmployeeHandler(service employeeService, changes changeSubmitter) *EmployeeHandler {
	return &EmployeeHandler{service: service, changes: changes}
}

// List godoc
// @Summary List employee records
// @Tags Employees
// @Produce json
// @Param nama query string false "Name fragment"
// @Param nip query string false "NIP or NRK fragment"
// @Param unit_kerja query string false "Work unit"
// @Param status_verifikasi query string false "PENDING or VERIFIED"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.EmployeeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid list query"))
		return
	}

	employees, pagination, err := h.service.List(c.Request.Context(), claims, models.EmployeeFilter{
		Nama:          query.Nama,
		NIP:           query.NIP,
		UnitKerja:     query.UnitKerja,
		Jabatan:       query.Jabatan,
		StatusPegawai: query.StatusPegawai,
		Verification:  models.VerificationStatus(query.Verification),
		Page:          query.Page,
		PageSize:      query.PageSize,
		SortBy:        query.SortBy,
		SortOrder:     query.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, pagination)
}

// Get godoc
// @Summary Get one employee record
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	employee, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Create godoc
// @Summary Create an employee record
// @Tags Employees
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.EmployeePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid employee payload"))
		return
	}
	employee, err := h.service.Create(c.Request.Context(), claims, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// Update godoc
// @Summary Update an employee record
// @Description Administrators write directly; other roles file a change request for review.
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.EmployeePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid employee payload"))
		return
	}

	if claims.Role == models.RoleAdmin {
		employee, err := h.service.Update(c.Request.Context(), claims, c.Param("id"), payload)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, employee, nil)
		return
	}

	request, err := h.changes.Submit(c.Request.Context(), claims, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, request, nil, map[string]interface{}{
		"message": "Perubahan diajukan dan menunggu persetujuan admin",
	})
}

// Delete godoc
// @Summary Delete an employee record
// @Tags Employees
// @Param id path string true "Employee ID"
// @Success 204
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Options godoc
// @Summary Distinct filter values for search widgets
// @Tags Employees
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /employees/options [get]
func (h *EmployeeHandler) Options(c *gin.Context) {
	options, err := h.service.Options(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}
