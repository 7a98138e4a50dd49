package handlers

import (
	"errors"
	"log"
	"strconv"

	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/core/services"
	"rfid-attendance/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles super-admin account management
type AdminHandler struct {
	admins *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admins *services.AdminService) *AdminHandler {
	return &AdminHandler{admins: admins}
}

// AssignDriverRequest links a driver to an admin
type AssignDriverRequest struct {
	DriverID string `json:"driver_id"`
}

// List lists admins
// @Summary List admins
// @Tags Admins
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /admins [get]
func (h *AdminHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	result, err := h.admins.ListAdmins(c.Context(), page, limit)
	if err != nil {
		log.Printf("❌ List admins: %v", err)
		return response.InternalServerError(c, "Failed to list admins")
	}
	return response.Success(c, "Admins retrieved", result)
}

// Create creates an admin
// @Summary Create admin
// @Tags Admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateAdminInput true "Admin"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admins [post]
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var input services.CreateAdminInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Username == "" || input.Email == "" {
		return response.BadRequest(c, "Username and email are required")
	}

	admin, err := h.admins.CreateAdmin(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWeakPassword):
			return response.BadRequest(c, "Password must be at least 8 characters")
		case errors.Is(err, services.ErrInvalidRole):
			return response.BadRequest(c, "Invalid role")
		case errors.Is(err, services.ErrAdminAlreadyExists):
			return response.Conflict(c, "Username or email already exists")
		default:
			log.Printf("❌ Create admin: %v", err)
			return response.InternalServerError(c, "Failed to create admin")
		}
	}
	return response.Created(c, "Admin created", admin)
}

// AssignDriver links a driver to an admin's tenancy
// @Summary Assign driver to admin
// @Tags Admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Admin ID"
// @Param body body AssignDriverRequest true "Driver"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admins/{id}/drivers [post]
func (h *AdminHandler) AssignDriver(c *fiber.Ctx) error {
	adminID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid admin ID")
	}

	var req AssignDriverRequest
	if err := c.BodyParser(&req); err != nil || req.DriverID == "" {
		return response.BadRequest(c, "Driver ID is required")
	}

	err = h.admins.AssignDriver(c.Context(), uint(adminID), req.DriverID)
	switch {
	case err == nil:
		return response.Success(c, "Driver assigned", nil)
	case errors.Is(err, services.ErrAdminNotFound):
		return response.NotFound(c, "Admin not found")
	case errors.Is(err, domain.ErrDriverNotFound):
		return response.NotFound(c, "Driver not found")
	default:
		log.Printf("❌ Assign driver: %v", err)
		return response.InternalServerError(c, "Failed to assign driver")
	}
}
