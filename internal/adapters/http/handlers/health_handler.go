package handlers

import (
	"rfid-attendance/internal/config"
	"rfid-attendance/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	hub    *services.SSEHub
	broker *services.LogoutBroker
	ping   func() error
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(hub *services.SSEHub, broker *services.LogoutBroker) *HealthHandler {
	return &HealthHandler{
		hub:    hub,
		broker: broker,
		ping:   config.HealthCheck,
	}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	mode := ""
	if config.AppConfig != nil {
		mode = config.AppConfig.AppMode
	}
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 RFID Attendance API v1.0 is running",
		"mode":    mode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Database, real-time sessions and waiting kiosks
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	status, dbStatus, code := "ok", "healthy", fiber.StatusOK
	if err := h.ping(); err != nil {
		status, dbStatus, code = "degraded", "unhealthy", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
		},
		"sse_clients":     h.hub.GetClientCount(),
		"pending_logouts": h.broker.Pending(),
	})
}
