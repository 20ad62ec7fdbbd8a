package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/disdik-dki/anjab-api/internal/models"
	appErrors "github.com/disdik-dki/anjab-api/pkg/errors"
	"github.com/disdik-dki/anjab-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	PensionDetail(ctx context.Context, year int) ([]models.PensionEmployee, error)
	Notifications(ctx context.Context, claims *models.JWTClaims) (*models.NotificationCounts, error)
}

// DashboardHandler serves aggregate statistics and notification badges.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary Landing-page statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// PensionDetail godoc
// @Summary Employees retiring in a given year
// @Tags Dashboard
// @Produce json
// @Param year path int true "Projection year"
// @Success 200 {object} response.Envelope
// @Router /dashboard/pension-detail/{year} [get]
func (h *DashboardHandler) PensionDetail(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be a number"))
		return
	}
	employees, err := h.service.PensionDetail(c.Request.Context(), year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, nil)
}

// Notifications godoc
// @Summary Per-role notification badge counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/notifications [get]
func (h *DashboardHandler) Notifications(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	counts, err := h.service.Notifications(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}
