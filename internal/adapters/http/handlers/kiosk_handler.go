package handlers

import (
	"errors"
	"log"
	"strings"

	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/core/services"
	"rfid-attendance/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Kiosk wire tokens. Firmware matches these byte for byte.
const (
	tokenNotFound      = "NotFound"
	tokenNotReg        = "NotReg"
	tokenNotAllow      = "NotAllow"
	tokenAlreadyIn     = "AlreadyIn"
	tokenNoRec         = "NoRec"
	tokenNoPay         = "NoPay"
	tokenNoIDs         = "NoIDs"
	tokenNoCardID      = "NoCardID"
	tokenTimeout       = "Timeout"
	tokenNoDevice      = "NoDevice"
	tokenNoCardFound   = "NoCardFound"
	tokenCardExists    = "CardAlreadyExist"
	tokenRegistered    = "Registered"
	tokenInternalError = "Internal Error"
)

// KioskHandler serves the plain-text endpoints used by kiosk firmware
type KioskHandler struct {
	attendance *services.AttendanceService
	broker     *services.LogoutBroker
	devices    *services.DeviceService
}

// NewKioskHandler creates a new kiosk handler
func NewKioskHandler(attendance *services.AttendanceService, broker *services.LogoutBroker, devices *services.DeviceService) *KioskHandler {
	return &KioskHandler{
		attendance: attendance,
		broker:     broker,
		devices:    devices,
	}
}

// TapRequest carries a card tap. Kiosks send it as JSON, a form or a query string.
type TapRequest struct {
	CardID   string `json:"card_id" form:"card_id" query:"card_id"`
	DeviceID string `json:"device_id" form:"device_id" query:"device_id"`
}

func parseTap(c *fiber.Ctx) TapRequest {
	var req TapRequest
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&req)
	}
	if req.CardID == "" {
		req.CardID = c.Query("card_id")
	}
	if req.DeviceID == "" {
		req.DeviceID = c.Query("device_id")
	}
	req.CardID = strings.TrimSpace(req.CardID)
	req.DeviceID = strings.TrimSpace(req.DeviceID)
	return req
}

// tapError maps a tap failure onto its token. Identity failures answer 200
// so the kiosk shows them instead of retrying.
func tapError(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrCardNotFound):
		return response.Text(c, fiber.StatusOK, tokenNotFound)
	case errors.Is(err, domain.ErrDeviceNotRegistered):
		return response.Text(c, fiber.StatusOK, tokenNotReg)
	case errors.Is(err, domain.ErrDeviceMismatch):
		return response.Text(c, fiber.StatusOK, tokenNotAllow)
	case errors.Is(err, domain.ErrAlreadyIn):
		return response.Text(c, fiber.StatusForbidden, tokenAlreadyIn)
	case errors.Is(err, domain.ErrNoActiveRecord):
		return response.Text(c, fiber.StatusBadRequest, tokenNoRec)
	case errors.Is(err, domain.ErrNotPaid):
		return response.Text(c, fiber.StatusBadRequest, tokenNoPay)
	default:
		log.Printf("❌ Kiosk %s failed: %v", op, err)
		return response.Text(c, fiber.StatusInternalServerError, tokenInternalError)
	}
}

// ============================================================
// GET /api/v1/kiosk/check-status
// ============================================================

// CheckStatus reports the attendance status of a card
// @Summary Card attendance status
// @Description Returns "<status>|id:<dev_id>" or a bare NotFound/NotReg token
// @Tags Kiosk
// @Produce plain
// @Param card_id query string true "Card ID"
// @Success 200 {string} string
// @Router /kiosk/check-status [get]
func (h *KioskHandler) CheckStatus(c *fiber.Ctx) error {
	cardID := parseTap(c).CardID
	if cardID == "" {
		return response.Text(c, fiber.StatusBadRequest, tokenNoCardID)
	}

	result, err := h.attendance.StatusFor(c.Context(), cardID)
	if err != nil {
		return tapError(c, "check-status", err)
	}
	return response.Text(c, fiber.StatusOK, result.Status+"|id:"+result.DevID)
}

// ============================================================
// GET|POST /api/v1/kiosk/time-in
// ============================================================

// TimeIn opens a work session for the tapped card
// @Summary Kiosk time-in
// @Tags Kiosk
// @Accept json
// @Produce plain
// @Param body body TapRequest true "Card tap"
// @Success 200 {string} string "In|<full_name>"
// @Failure 400 {string} string "NoIDs"
// @Failure 403 {string} string "AlreadyIn"
// @Router /kiosk/time-in [post]
func (h *KioskHandler) TimeIn(c *fiber.Ctx) error {
	req := parseTap(c)
	if req.CardID == "" || req.DeviceID == "" {
		return response.Text(c, fiber.StatusBadRequest, tokenNoIDs)
	}

	record, err := h.attendance.TimeIn(c.Context(), req.CardID, req.DeviceID)
	if err != nil {
		return tapError(c, "time-in", err)
	}
	return response.Text(c, fiber.StatusOK, "In|"+record.FullName)
}

// ============================================================
// GET|POST /api/v1/kiosk/request-logout (long-held)
// ============================================================

// RequestLogout holds the request until an administrator completes the
// logout or the wait window closes
// @Summary Kiosk logout request
// @Tags Kiosk
// @Accept json
// @Produce plain
// @Param body body TapRequest true "Card tap"
// @Success 200 {string} string "Out|<full_name>"
// @Failure 400 {string} string "NoRec, NoPay or NoIDs"
// @Failure 408 {string} string "Timeout"
// @Router /kiosk/request-logout [post]
func (h *KioskHandler) RequestLogout(c *fiber.Ctx) error {
	req := parseTap(c)
	if req.CardID == "" || req.DeviceID == "" {
		return response.Text(c, fiber.StatusBadRequest, tokenNoIDs)
	}

	pending, err := h.broker.Begin(c.Context(), req.CardID, req.DeviceID)
	if err != nil {
		return tapError(c, "request-logout", err)
	}

	outcome := h.broker.Await(c.Context(), pending)
	if outcome.Result != services.LogoutCompleted {
		return response.Text(c, fiber.StatusRequestTimeout, tokenTimeout)
	}
	return response.Text(c, fiber.StatusOK, "Out|"+outcome.FullName)
}

// ============================================================
// Card registration
// ============================================================

// GetDevice returns the device waiting for a card
// @Summary Device awaiting card registration
// @Tags Kiosk
// @Produce plain
// @Success 200 {string} string "<dev_id> or NoDevice"
// @Router /kiosk/get-device [get]
func (h *KioskHandler) GetDevice(c *fiber.Ctx) error {
	devID, err := h.devices.NextDeviceToRegister(c.Context())
	if err != nil {
		log.Printf("❌ Kiosk get-device failed: %v", err)
		return response.Text(c, fiber.StatusInternalServerError, tokenInternalError)
	}
	if devID == "" {
		return response.Text(c, fiber.StatusOK, tokenNoDevice)
	}
	return response.Text(c, fiber.StatusOK, devID)
}

// RegisterCard binds a card to the driver of a device
// @Summary Register RFID card
// @Tags Kiosk
// @Accept json
// @Produce plain
// @Param body body TapRequest true "Card and device"
// @Success 200 {string} string "Registered"
// @Failure 400 {string} string "NotFound or CardAlreadyExist"
// @Failure 404 {string} string "NoCardFound"
// @Router /kiosk/register-rfid [post]
func (h *KioskHandler) RegisterCard(c *fiber.Ctx) error {
	req := parseTap(c)
	if req.CardID == "" || req.DeviceID == "" {
		return response.Text(c, fiber.StatusBadRequest, tokenNotFound)
	}

	err := h.devices.RegisterCard(c.Context(), req.CardID, req.DeviceID)
	switch {
	case err == nil:
		return response.Text(c, fiber.StatusOK, tokenRegistered)
	case errors.Is(err, domain.ErrDeviceNotFound):
		return response.Text(c, fiber.StatusNotFound, tokenNoCardFound)
	case errors.Is(err, domain.ErrCardAlreadyExists):
		return response.Text(c, fiber.StatusBadRequest, tokenCardExists)
	default:
		log.Printf("❌ Kiosk register-rfid failed: %v", err)
		return response.Text(c, fiber.StatusInternalServerError, tokenInternalError)
	}
}
