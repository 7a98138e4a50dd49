package handlers

import (
	"errors"
	"log"

	"rfid-attendance/internal/adapters/http/middleware"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/core/services"
	"rfid-attendance/internal/pkg/pagination"
	"rfid-attendance/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DriverHandler handles driver onboarding endpoints
type DriverHandler struct {
	drivers *services.DriverService
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(drivers *services.DriverService) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

func driverError(c *fiber.Ctx, fallback string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, "Driver ID and device ID are required")
	case errors.Is(err, domain.ErrInvalidDeviceMode):
		return response.BadRequest(c, "Invalid device mode")
	case errors.Is(err, domain.ErrDriverNotFound):
		return response.NotFound(c, "Driver not found")
	case errors.Is(err, domain.ErrDriverAlreadyExists):
		return response.Conflict(c, "Driver ID or device already in use")
	default:
		log.Printf("❌ %s: %v", fallback, err)
		return response.InternalServerError(c, fallback)
	}
}

// List lists drivers
// @Summary List drivers
// @Tags Drivers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /drivers [get]
func (h *DriverHandler) List(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c)
	drivers, total, err := h.drivers.List(c.Context(), subject, params.Offset, params.Limit)
	if err != nil {
		return driverError(c, "Failed to list drivers", err)
	}
	return response.Success(c, "Drivers retrieved", pagination.NewResponse(drivers, params, total))
}

// Get returns one driver
// @Summary Get driver
// @Tags Drivers
// @Produce json
// @Security BearerAuth
// @Param driver_id path string true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{driver_id} [get]
func (h *DriverHandler) Get(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	driver, err := h.drivers.Get(c.Context(), subject, c.Params("driver_id"))
	if err != nil {
		return driverError(c, "Failed to get driver", err)
	}
	return response.Success(c, "Driver retrieved", driver)
}

// Create onboards a driver
// @Summary Create driver
// @Tags Drivers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateDriverInput true "Driver"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /drivers [post]
func (h *DriverHandler) Create(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateDriverInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	driver, err := h.drivers.Create(c.Context(), subject, &input)
	if err != nil {
		return driverError(c, "Failed to create driver", err)
	}
	return response.Created(c, "Driver created", driver)
}

// Update changes a driver
// @Summary Update driver
// @Tags Drivers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param driver_id path string true "Driver ID"
// @Param body body services.UpdateDriverInput true "Fields"
// @Success 200 {object} response.Response
// @Router /drivers/{driver_id} [patch]
func (h *DriverHandler) Update(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateDriverInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	driver, err := h.drivers.Update(c.Context(), subject, c.Params("driver_id"), &input)
	if err != nil {
		return driverError(c, "Failed to update driver", err)
	}
	return response.Success(c, "Driver updated", driver)
}

// Delete soft-deletes a driver
// @Summary Delete driver
// @Tags Drivers
// @Produce json
// @Security BearerAuth
// @Param driver_id path string true "Driver ID"
// @Success 200 {object} response.Response
// @Router /drivers/{driver_id} [delete]
func (h *DriverHandler) Delete(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.drivers.Delete(c.Context(), subject, c.Params("driver_id")); err != nil {
		return driverError(c, "Failed to delete driver", err)
	}
	return response.Success(c, "Driver deleted", nil)
}
