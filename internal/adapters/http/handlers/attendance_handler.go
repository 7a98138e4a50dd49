package handlers

import (
	"errors"
	"log"
	"strings"

	"rfid-attendance/internal/adapters/http/middleware"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/core/services"
	"rfid-attendance/internal/pkg/pagination"
	"rfid-attendance/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AttendanceHandler serves the administrator attendance dashboard
type AttendanceHandler struct {
	attendance *services.AttendanceService
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(attendance *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// RecordRequest identifies one attendance record of a driver
type RecordRequest struct {
	ID       uint   `json:"id"`
	DriverID string `json:"driver_id"`
}

// DriverRequest identifies a driver
type DriverRequest struct {
	DriverID string `json:"driver_id"`
}

// attendanceError maps attendance failures onto JSON responses
func attendanceError(c *fiber.Ctx, fallback string, err error) error {
	switch {
	case errors.Is(err, domain.ErrDriverNotFound):
		return response.NotFound(c, "Driver not found")
	case errors.Is(err, domain.ErrAttendanceNotFound):
		return response.NotFound(c, "Attendance record not found")
	case errors.Is(err, domain.ErrNotYetPaid):
		return response.BadRequest(c, "NotYetPaid")
	case errors.Is(err, domain.ErrNoActiveRecord):
		return response.BadRequest(c, "Driver has no open attendance record")
	case errors.Is(err, domain.ErrRecordNotLatest):
		return response.Conflict(c, "Attendance record is not the driver's latest")
	case errors.Is(err, domain.ErrAlreadyIn), errors.Is(err, domain.ErrAttendanceConflict):
		return response.Conflict(c, "Attendance already recorded for today")
	default:
		log.Printf("❌ %s: %v", fallback, err)
		return response.InternalServerError(c, fallback)
	}
}

// ============================================================
// GET /api/v1/attendance?page=
// ============================================================

// List returns today's and still-open records
// @Summary Attendance dashboard
// @Description Records created today or still open, newest first, 10 per page
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Success 200 {object} response.Response
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.Fixed(c, services.AttendancePageSize)
	records, total, err := h.attendance.AttendanceData(c.Context(), subject, params)
	if err != nil {
		return attendanceError(c, "Failed to get attendance", err)
	}

	return response.Success(c, "Attendance retrieved", pagination.NewResponse(records, params, total))
}

// ============================================================
// GET /api/v1/attendance/pending-logout/:driver_id
// ============================================================

// PendingLogout returns the driver's paid open record awaiting logout
// @Summary Record awaiting logout approval
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param driver_id path string true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /attendance/pending-logout/{driver_id} [get]
func (h *AttendanceHandler) PendingLogout(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	driverID := strings.TrimSpace(c.Params("driver_id"))
	if driverID == "" {
		return response.BadRequest(c, "Driver ID is required")
	}

	record, err := h.attendance.PendingLogout(c.Context(), subject, driverID)
	if err != nil {
		return attendanceError(c, "Failed to get pending logout", err)
	}
	return response.Success(c, "Pending logout retrieved", record)
}

// ============================================================
// PATCH /api/v1/attendance/complete-logout
// ============================================================

// CompleteLogout approves a kiosk logout request
// @Summary Complete logout
// @Description Closes the driver's latest paid record and answers the waiting kiosk
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordRequest true "Record"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /attendance/complete-logout [patch]
func (h *AttendanceHandler) CompleteLogout(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.ID == 0 || req.DriverID == "" {
		return response.BadRequest(c, "Attendance ID and driver ID are required")
	}

	record, err := h.attendance.CompleteLogout(c.Context(), subject, req.ID, req.DriverID)
	if err != nil {
		return attendanceError(c, "Failed to complete logout", err)
	}
	return response.Success(c, "Logout completed", record)
}

// ============================================================
// Manual overrides
// ============================================================

// ManualTimeIn records a missed time-in
// @Summary Manual time-in
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DriverRequest true "Driver"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /attendance/manual-time-in [post]
func (h *AttendanceHandler) ManualTimeIn(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req DriverRequest
	if err := c.BodyParser(&req); err != nil || req.DriverID == "" {
		return response.BadRequest(c, "Driver ID is required")
	}

	record, err := h.attendance.ManualTimeIn(c.Context(), subject, req.DriverID)
	if err != nil {
		return attendanceError(c, "Failed to record time-in", err)
	}
	return response.Created(c, "Time-in recorded", record)
}

// ManualTimeOut records a missed time-out
// @Summary Manual time-out
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DriverRequest true "Driver"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /attendance/manual-time-out [post]
func (h *AttendanceHandler) ManualTimeOut(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req DriverRequest
	if err := c.BodyParser(&req); err != nil || req.DriverID == "" {
		return response.BadRequest(c, "Driver ID is required")
	}

	record, err := h.attendance.ManualTimeOut(c.Context(), subject, req.DriverID)
	if err != nil {
		return attendanceError(c, "Failed to record time-out", err)
	}
	return response.Success(c, "Time-out recorded", record)
}
