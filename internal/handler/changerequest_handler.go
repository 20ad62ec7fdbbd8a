package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/disdik-dki/anjab-api/internal/dto"
	"github.com/disdik-dki/anjab-api/internal/models"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
	"github.com/disdik-dki/anjab-api/pkg/response"
)

type changeRequestService interface {
	Submit(ctx context.Context, claims *models.JWTClaims, employeeID string, payload map[string]interface{}) (*models.ChangeRequest, error)
	ListPending(ctx context.Context) ([]models.PendingChangeRequest, error)
	GetDiff(ctx context.Context, id string) (*models.ChangeRequestDiff, error)
	Decide(ctx context.Context, claims *models.JWTClaims, id string, req dto.DecideChangeRequest) error
	History(ctx context.Context, employeeID string, page, size int) ([]models.ChangeHistoryEvent, *models.Pagination, error)
	MarkRead(ctx context.Context, claims *models.JWTClaims, employeeID string) error
}

// ChangeRequestHandler exposes the review workflow endpoints.
type ChangeRequestHandler struct {
	service changeRequestService
}

// NewChangeRequestHandler constructs the handler.
func NewChangeRequestHandler(service changeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{service: service}
}

// Submit godoc
// @Summary Propose field edits for a record
// @Tags Changes
// @Accept json
// @Produce json
// @Param payload body dto.SubmitChangeRequest true "Target record and proposed columns"
// @Success 201 {object} response.Envelope
// @Router /changes [post]
func (h *ChangeRequestHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SubmitChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.EmployeeID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "anjab_id and changes are required"))
		return
	}
	request, err := h.service.Submit(c.Request.Context(), claims, req.EmployeeID, req.Changes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, request, nil, map[string]interface{}{
		"message": "Perubahan diajukan dan menunggu persetujuan admin",
	})
}

// List godoc
// @Summary List change requests by status
// @Tags Changes
// @Produce json
// @Param status query string false "Request status" default(pending)
// @Success 200 {object} response.Envelope
// @Router /changes [get]
func (h *ChangeRequestHandler) List(c *gin.Context) {
	if status := c.DefaultQuery("status", "pending"); !strings.EqualFold(status, "pending") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only status=pending is supported"))
		return
	}
	requests, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Diff godoc
// @Summary Field-by-field review view for one request
// @Tags Changes
// @Produce json
// @Param id path string true "Change request ID"
// @Success 200 {object} response.Envelope
// @Router /changes/{id} [get]
func (h *ChangeRequestHandler) Diff(c *gin.Context) {
	diff, err := h.service.GetDiff(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, diff, nil)
}

// Decide godoc
// @Summary Approve or reject a change request
// @Tags Changes
// @Accept json
// @Produce json
// @Param id path string true "Change request ID"
// @Param payload body dto.DecideChangeRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /changes/{id}/decide [post]
func (h *ChangeRequestHandler) Decide(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.DecideChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}
	if err := h.service.Decide(c.Request.Context(), claims, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Pengajuan telah diproses"}, nil)
}

// History godoc
// @Summary Submission and decision timeline for one record
// @Tags Changes
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/history [get]
func (h *ChangeRequestHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	events, pagination, err := h.service.History(c.Request.Context(), c.Param("id"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// MarkRead godoc
// @Summary Mark decided requests for a record as seen
// @Tags Changes
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/mark-read [put]
func (h *ChangeRequestHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "Notifikasi ditandai terbaca"}, nil)
}
