package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rfid-attendance/internal/adapters/broadcast"
	"rfid-attendance/internal/adapters/http/middleware"
	"rfid-attendance/internal/adapters/http/routes"
	"rfid-attendance/internal/adapters/persistence/models"
	"rfid-attendance/internal/adapters/persistence/repositories"
	"rfid-attendance/internal/config"
	"rfid-attendance/internal/core/services"
	"rfid-attendance/internal/pkg/timeutil"

	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"

	_ "rfid-attendance/docs" // Swagger docs
)

// @title RFID Attendance API
// @version 1.0
// @description Kiosk card-tap attendance with payment-gated, admin-confirmed logout.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if err := timeutil.UseZone(cfg.Attendance.BusinessTZ); err != nil {
		log.Fatalf("❌ Failed to load business timezone: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	if err := config.NewSeeder(db, cfg.Seed).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Real-time fan-out: local SSE hub, then optional relay and audit sinks
	hub := services.NewSSEHub(repositories.NewDriverRepository(db))
	waiters := services.NewWaiterRegistry()
	sinks := services.Notifiers{hub}

	if cfg.RedisEnabled() {
		rdb, err := broadcast.ConnectRedis(ctx, &goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, 10)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()

		relay := broadcast.NewRedisRelay(rdb, cfg.Redis.Channel, hub, waiters)
		defer relay.Close()
		go relay.Run(ctx)
		sinks = append(sinks, relay)
	}

	if cfg.KafkaEnabled() {
		if err := broadcast.EnsureTopic(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, 10); err != nil {
			log.Printf("⚠️ Kafka audit disabled: %v", err)
		} else {
			audit := broadcast.NewKafkaAudit(cfg.Kafka.Brokers, cfg.Kafka.Topic)
			defer audit.Close()
			sinks = append(sinks, audit)
		}
	}

	// Scheduled jobs
	cronService := services.NewCronService(
		repositories.NewAttendanceRepository(db),
		repositories.NewRefreshTokenRepository(db),
		sinks,
		cfg.Attendance.ReminderCron,
	)
	if err := cronService.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron: %v", err)
	}
	defer cronService.Stop()

	// Kiosk logout requests are held for the wait window, so writes must outlast it
	holdFor := time.Duration(cfg.Attendance.LogoutWaitSeconds)*time.Second + 15*time.Second

	app := fiber.New(fiber.Config{
		AppName:      "RFID Attendance API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
		ReadTimeout:  holdFor,
		WriteTimeout: holdFor,
	})

	middleware.Setup(app, cfg)

	routes.Setup(app, db, cfg, routes.Realtime{
		Hub:      hub,
		Waiters:  waiters,
		Notifier: sinks,
	})

	go gracefulShutdown(app, stop)

	log.Printf("🚀 Server starting on port %s [MODE: %s, TZ: %s]", cfg.Port, cfg.AppMode, timeutil.Location())
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, stop context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(45 * time.Second); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	stop()
	log.Println("✅ Server stopped gracefully")
}
