package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"rfid-attendance/internal/config"
	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthApp() *fiber.App {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		subject, ok := GetSubject(c)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(strconv.FormatUint(uint64(subject.ID), 10) + ":" + subject.Role)
	}
	app.Get("/any", AuthMiddleware(cfg), AnyAdmin(), whoami)
	app.Get("/super", AuthMiddleware(cfg), SuperAdminOnly(), whoami)
	return app
}

func token(t *testing.T, id uint, role string, minutes int) string {
	t.Helper()
	tok, err := jwt.GenerateAccessToken(id, "user", role, testSecret, minutes)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	app := newAuthApp()

	tests := []struct {
		name     string
		path     string
		bearer   string
		cookie   string
		wantCode int
	}{
		{name: "no token", path: "/any", wantCode: http.StatusUnauthorized},
		{name: "garbage token", path: "/any", bearer: "garbage", wantCode: http.StatusUnauthorized},
		{name: "expired token", path: "/any", bearer: token(t, 2, domain.RoleAdmin, -1), wantCode: http.StatusUnauthorized},
		{name: "admin via bearer", path: "/any", bearer: token(t, 2, domain.RoleAdmin, 5), wantCode: http.StatusOK},
		{name: "admin via cookie", path: "/any", cookie: token(t, 2, domain.RoleAdmin, 5), wantCode: http.StatusOK},
		{name: "admin on super route", path: "/super", bearer: token(t, 2, domain.RoleAdmin, 5), wantCode: http.StatusForbidden},
		{name: "super-admin on super route", path: "/super", bearer: token(t, 1, domain.RoleSuperAdmin, 5), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.bearer != "" {
			req.Header.Set("Authorization", "Bearer "+tt.bearer)
		}
		if tt.cookie != "" {
			req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
		}

		resp, err := app.Test(req)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.wantCode, resp.StatusCode, tt.name)
	}
}
