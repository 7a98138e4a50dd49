package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode    string
	Port       string
	Database   DatabaseConfig
	JWT        JWTConfig
	Cookie     CookieConfig
	Attendance AttendanceConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Seed       SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// AttendanceConfig holds kiosk and business-day settings
type AttendanceConfig struct {
	LogoutWaitSeconds int
	ReminderCron      string
	BusinessTZ        string
	KioskRateLimit    int
}

// RedisConfig holds the cross-instance relay settings. Empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// KafkaConfig holds the audit stream settings. No brokers disables it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// SeedConfig holds the first super-admin account
type SeedConfig struct {
	Username string
	Email    string
	Password string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:    appMode,
		Port:       getEnv("PORT", "3000"),
		Database:   loadDatabaseConfig(appMode),
		JWT:        loadJWTConfig(appMode),
		Cookie:     loadCookieConfig(appMode),
		Attendance: loadAttendanceConfig(),
		Redis:      loadRedisConfig(appMode),
		Kafka:      loadKafkaConfig(appMode),
		Seed:       loadSeedConfig(),
	}

	if config.IsProd() && config.JWT.Secret == defaultJWTSecret {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

func prefixFor(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := prefixFor(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "rfid_attendance"),
	}
}

const defaultJWTSecret = "default_secret"

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := prefixFor(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 15),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(prefixFor(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadAttendanceConfig() AttendanceConfig {
	return AttendanceConfig{
		LogoutWaitSeconds: getEnvInt("LOGOUT_WAIT_SECONDS", 30),
		ReminderCron:      getEnv("REMINDER_CRON", "0 17 * * *"),
		BusinessTZ:        getEnv("BUSINESS_TZ", "Asia/Manila"),
		KioskRateLimit:    getEnvInt("KIOSK_RATE_LIMIT", 120),
	}
}

func loadRedisConfig(mode string) RedisConfig {
	prefix := prefixFor(mode)

	return RedisConfig{
		Addr:     getEnv(prefix+"REDIS_ADDR", ""),
		Password: getEnv(prefix+"REDIS_PASSWORD", ""),
		DB:       getEnvInt(prefix+"REDIS_DB", 0),
		Channel:  getEnv("REDIS_CHANNEL", "rfid-attendance:events"),
	}
}

func loadKafkaConfig(mode string) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(getEnv(prefixFor(mode)+"KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return KafkaConfig{
		Brokers: brokers,
		Topic:   getEnv("KAFKA_TOPIC", "attendance.events"),
	}
}

func loadSeedConfig() SeedConfig {
	return SeedConfig{
		Username: getEnv("SUPERADMIN_USERNAME", "superadmin"),
		Email:    getEnv("SUPERADMIN_EMAIL", "superadmin@localhost"),
		Password: getEnv("SUPERADMIN_PASSWORD", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// RedisEnabled reports whether the cross-instance relay is configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// KafkaEnabled reports whether the audit stream is configured
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:5173"
	}
	return origins
}
