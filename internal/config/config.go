package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode   string
	Port      string
	LogLevel  string
	Database  DatabaseConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	Booking   BookingConfig
	Cron      CronConfig
	RateLimit RateLimitConfig
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

// CookieConfig holds refresh-token cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// RedisConfig holds the optional slot cache connection; empty Addr disables it
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SMTPConfig holds the optional mail relay; empty Host disables email
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// BookingConfig holds salon booking rules
type BookingConfig struct {
	Timezone         string
	Location         *time.Location
	ReminderLead     time.Duration
	SlotCacheTTL     time.Duration
	MinDurationMins  int
	CancelNoticeMins int
}

// CronConfig holds scheduled job specs (robfig/cron syntax)
type CronConfig struct {
	ReminderSpec     string
	ReconcileSpec    string
	TokenCleanupSpec string
}

// RateLimitConfig holds API rate limit settings
type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	_ = godotenv.Load()

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	booking, err := loadBookingConfig()
	if err != nil {
		return nil, err
	}

	// Build config based on APP_MODE
	config := &Config{
		AppMode:   appMode,
		Port:      getEnv("PORT", "5000"),
		LogLevel:  getEnv("LOG_LEVEL", ""),
		Database:  loadDatabaseConfig(appMode),
		JWT:       loadJWTConfig(appMode),
		Cookie:    loadCookieConfig(appMode),
		Redis:     loadRedisConfig(),
		SMTP:      loadSMTPConfig(),
		Booking:   booking,
		Cron:      loadCronConfig(),
		RateLimit: loadRateLimitConfig(),
	}

	if config.IsProd() && (config.JWT.Secret == defaultJWTSecret || config.JWT.RefreshSecret == defaultRefreshSecret) {
		return nil, fmt.Errorf("PROD_JWT_SECRET and PROD_JWT_REFRESH_SECRET must be set in prod mode")
	}

	// Set global config
	AppConfig = config

	return config, nil
}

const (
	defaultJWTSecret     = "default_secret"
	defaultRefreshSecret = "default_refresh_secret"
)

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "eclat_salon"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultRefreshSecret),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 15),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func loadSMTPConfig() SMTPConfig {
	user := getEnv("EMAIL_USER", "")
	return SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnvInt("SMTP_PORT", 587),
		Username: user,
		Password: getEnv("EMAIL_PASS", ""),
		From:     getEnv("EMAIL_FROM", user),
	}
}

func loadBookingConfig() (BookingConfig, error) {
	tz := getEnv("SALON_TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return BookingConfig{}, fmt.Errorf("invalid SALON_TIMEZONE %q: %w", tz, err)
	}
	return BookingConfig{
		Timezone:         tz,
		Location:         loc,
		ReminderLead:     time.Duration(getEnvInt("REMINDER_LEAD_HOURS", 24)) * time.Hour,
		SlotCacheTTL:     time.Duration(getEnvInt("SLOT_CACHE_TTL_SECONDS", 60)) * time.Second,
		MinDurationMins:  5,
		CancelNoticeMins: getEnvInt("CANCEL_NOTICE_MINUTES", 0),
	}, nil
}

func loadCronConfig() CronConfig {
	return CronConfig{
		ReminderSpec:     getEnv("CRON_REMINDER_SPEC", "0 * * * *"),
		ReconcileSpec:    getEnv("CRON_RECONCILE_SPEC", "30 3 * * *"),
		TokenCleanupSpec: getEnv("CRON_TOKEN_CLEANUP_SPEC", "0 4 * * *"),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Max:    getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
		Window: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 15*60*1000)) * time.Millisecond,
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable, falling back on parse errors
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

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		// Default production origins
		return "https://eclatsalon.com"
	}
	return origins
}

// AccessTokenTTL is the access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenMins) * time.Minute
}

// RefreshTokenTTL is the refresh token lifetime
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTokenDays) * 24 * time.Hour
}

// CancelNotice is how far ahead of the start a client may still cancel; zero disables the rule
func (b BookingConfig) CancelNotice() time.Duration {
	return time.Duration(b.CancelNoticeMins) * time.Minute
}
