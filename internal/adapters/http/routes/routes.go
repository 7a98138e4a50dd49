package routes

import (
	"time"

	"rfid-attendance/internal/adapters/http/handlers"
	"rfid-attendance/internal/adapters/http/middleware"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/config"
	"rfid-attendance/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Realtime is the process-wide coordination state shared with main
type Realtime struct {
	Hub      *services.SSEHub
	Waiters  *services.WaiterRegistry
	Notifier services.EventNotifier
}

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, rt Realtime) {
	// Initialize repositories
	adminRepo := repositories.NewAdminRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	driverRepo := repositories.NewDriverRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)

	// Initialize services
	authService := services.NewAuthService(adminRepo, refreshTokenRepo, cfg)
	adminService := services.NewAdminService(adminRepo, driverRepo)
	driverService := services.NewDriverService(driverRepo, rt.Notifier)
	attendanceService := services.NewAttendanceService(driverRepo, attendanceRepo, rt.Waiters, rt.Notifier)
	logoutBroker := services.NewLogoutBroker(
		attendanceService,
		rt.Waiters,
		rt.Notifier,
		time.Duration(cfg.Attendance.LogoutWaitSeconds)*time.Second,
	)
	deviceService := services.NewDeviceService(driverRepo, rt.Notifier)
	paymentService := services.NewPaymentService(attendanceRepo, rt.Notifier)
	dashboardService := services.NewDashboardService(driverRepo, attendanceRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(rt.Hub, logoutBroker)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	adminHandler := handlers.NewAdminHandler(adminService)
	driverHandler := handlers.NewDriverHandler(driverService)
	kioskHandler := handlers.NewKioskHandler(attendanceService, logoutBroker, deviceService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	eventHandler := handlers.NewEventHandler(rt.Hub)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	apiV1 := app.Group("/api/v1")

	// Kiosk routes (device firmware, plain text, no session)
	kioskRoutes := apiV1.Group("/kiosk")
	kioskRoutes.Use(middleware.NoCacheHeaders())
	kioskRoutes.Use(middleware.KioskRateLimiter(cfg.Attendance.KioskRateLimit))
	setupKioskRoutes(kioskRoutes, kioskHandler)

	// Auth routes (public)
	setupAuthRoutes(apiV1.Group("/auth"), authHandler, cfg)

	// Everything below requires an admin session
	auth := middleware.AuthMiddleware(cfg)

	apiV1.Get("/events", auth, middleware.AnyAdmin(), eventHandler.Stream)

	attendanceRoutes := apiV1.Group("/attendance", auth, middleware.AnyAdmin())
	setupAttendanceRoutes(attendanceRoutes, attendanceHandler, dashboardHandler)

	paymentRoutes := apiV1.Group("/payments", auth, middleware.AnyAdmin())
	setupPaymentRoutes(paymentRoutes, paymentHandler)

	driverRoutes := apiV1.Group("/drivers", auth, middleware.AnyAdmin())
	setupDriverRoutes(driverRoutes, driverHandler)

	adminRoutes := apiV1.Group("/admins", auth, middleware.SuperAdminOnly())
	setupAdminRoutes(adminRoutes, adminHandler)
}

// setupKioskRoutes configures kiosk routes. Firmware uses both verbs.
func setupKioskRoutes(router fiber.Router, handler *handlers.KioskHandler) {
	router.Get("/check-status", handler.CheckStatus)
	router.Post("/check-status", handler.CheckStatus)
	router.Get("/time-in", handler.TimeIn)
	router.Post("/time-in", handler.TimeIn)
	router.Get("/request-logout", handler.RequestLogout)
	router.Post("/request-logout", handler.RequestLogout)
	router.Get("/get-device", handler.GetDevice)
	router.Post("/register-rfid", handler.RegisterCard)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

func setupAttendanceRoutes(router fiber.Router, handler *handlers.AttendanceHandler, dashboard *handlers.DashboardHandler) {
	router.Get("/", handler.List)
	router.Get("/summary", dashboard.Summary)
	router.Get("/analytics", dashboard.Analytics)
	router.Get("/transactions/:driver_id", dashboard.Transaction)
	router.Get("/pending-logout/:driver_id", handler.PendingLogout)
	router.Patch("/complete-logout", handler.CompleteLogout)
	router.Post("/manual-time-in", handler.ManualTimeIn)
	router.Post("/manual-time-out", handler.ManualTimeOut)
}

func setupPaymentRoutes(router fiber.Router, handler *handlers.PaymentHandler) {
	router.Patch("/butaw", handler.Butaw)
	router.Patch("/boundary", handler.Boundary)
	router.Patch("/both", handler.Both)
}

func setupDriverRoutes(router fiber.Router, handler *handlers.DriverHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Get("/:driver_id", handler.Get)
	router.Patch("/:driver_id", handler.Update)
	router.Delete("/:driver_id", handler.Delete)
}

// setupAdminRoutes configures admin management routes (super-admin only)
func setupAdminRoutes(router fiber.Router, handler *handlers.AdminHandler) {
	router.Get("/", handler.List)
	router.Post("/", handler.Create)
	router.Post("/:id/drivers", handler.AssignDriver)
}
