package middleware

import (
	"errors"
	"strings"

	"rfid-attendance/internal/config"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/jwt"
	"rfid-attendance/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalAdminID  = "adminID"
	LocalUsername = "username"
	LocalRole     = "role"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(LocalAdminID, claims.AdminID)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// extractToken reads the access token from the cookie, then the Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// SuperAdminOnly allows only the super-admin role
func SuperAdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleSuperAdmin)
}

// AnyAdmin allows both admin roles
func AnyAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleSuperAdmin, domain.RoleAdmin)
}

// GetSubject returns the tenant identity set by AuthMiddleware
func GetSubject(c *fiber.Ctx) (domain.Subject, bool) {
	id, ok := c.Locals(LocalAdminID).(uint)
	if !ok || id == 0 {
		return domain.Subject{}, false
	}
	role, _ := c.Locals(LocalRole).(string)
	return domain.Subject{ID: id, Role: role}, true
}
