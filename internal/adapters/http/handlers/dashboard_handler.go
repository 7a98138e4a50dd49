package handlers

import (
	"strings"

	"rfid-attendance/internal/adapters/http/middleware"
	"rfid-attendance/internal/core/services"
	"rfid-attendance/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Summary returns today's dashboard counters
// @Summary Dashboard counters
// @Description Today's attendance, butaw, boundary and paid counts plus live drivers
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /attendance/summary [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.Summary(c.Context(), subject)
	if err != nil {
		return attendanceError(c, "Failed to get dashboard summary", err)
	}
	return response.Success(c, "Dashboard summary retrieved", data)
}

// Analytics returns the active records with collected and owed totals
// @Summary Attendance analytics
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /attendance/analytics [get]
func (h *DashboardHandler) Analytics(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.Analytics(c.Context(), subject)
	if err != nil {
		return attendanceError(c, "Failed to get analytics", err)
	}
	return response.Success(c, "Analytics retrieved", data)
}

// Transaction returns what a driver still owes
// @Summary Driver transaction summary
// @Description Sums every unpaid record of the driver
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param driver_id path string true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /attendance/transactions/{driver_id} [get]
func (h *DashboardHandler) Transaction(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	driverID := strings.TrimSpace(c.Params("driver_id"))
	if driverID == "" {
		return response.BadRequest(c, "Driver ID is required")
	}

	data, err := h.dashboardService.Transaction(c.Context(), subject, driverID)
	if err != nil {
		return attendanceError(c, "Failed to get transaction", err)
	}
	return response.Success(c, "Transaction retrieved", data)
}
