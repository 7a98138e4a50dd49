package handlers

import (
	"errors"
	"log"

	"rfid-attendance/internal/adapters/http/middleware"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/core/services"
	"rfid-attendance/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler records daily dues
type PaymentHandler struct {
	payments *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Butaw records the butaw fee
// @Summary Pay butaw
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordRequest true "Record"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/butaw [patch]
func (h *PaymentHandler) Butaw(c *fiber.Ctx) error {
	return h.apply(c, services.PaymentButaw)
}

// Boundary records the boundary fee
// @Summary Pay boundary
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordRequest true "Record"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/boundary [patch]
func (h *PaymentHandler) Boundary(c *fiber.Ctx) error {
	return h.apply(c, services.PaymentBoundary)
}

// Both records butaw and boundary at once
// @Summary Pay both dues
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordRequest true "Record"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/both [patch]
func (h *PaymentHandler) Both(c *fiber.Ctx) error {
	return h.apply(c, services.PaymentBoth)
}

func (h *PaymentHandler) apply(c *fiber.Ctx, kind services.PaymentKind) error {
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

	record, err := h.payments.Apply(c.Context(), subject, kind, req.ID, req.DriverID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAttendanceNotFound):
			return response.NotFound(c, "Attendance record not found")
		case errors.Is(err, domain.ErrPaymentNotApplicable):
			return response.Conflict(c, "Payment does not apply to this record")
		default:
			log.Printf("❌ Payment %s failed: %v", kind, err)
			return response.InternalServerError(c, "Failed to record payment")
		}
	}
	return response.Success(c, "Payment recorded", record)
}
