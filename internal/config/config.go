package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	SMTP         SMTPConfig
	Storage      StorageConfig
	CheckIn      CheckInConfig
	Mock         MockConfig
	RateLimit    RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	// StoreDriver selects the repository implementation: "memory" or "postgres".
	StoreDriver string
	SeedDemo    bool
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether Google login is configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

// CheckInConfig holds QR token and check-in rules.
type CheckInConfig struct {
	TokenSecret   string
	QuotaPeriod   string
	QuotaTimezone string
	// Cooldown is the minimum interval between two check-ins of the same user at the same partner. Zero disables it.
	Cooldown time.Duration
}

// MockConfig controls the simulated network latency of the mock backend mode.
type MockConfig struct {
	LatencyEnabled bool
	LatencyMin     time.Duration
	LatencyMax     time.Duration
}

type RateLimitConfig struct {
	PerSecond int
	Burst     int
	// TrustProxy keys buckets on X-Forwarded-For. Enable only behind a proxy that overwrites it.
	TrustProxy bool
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	QuotaPeriodCalendarMonth = "calendar_month"
	QuotaPeriodRolling30d    = "rolling_30d"
)

// Load reads the given env file (if it exists) and builds the configuration from the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "wellpass"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	seedDemo, err := strconv.ParseBool(getEnv("SEED_DEMO_DATA", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_DEMO_DATA: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		StoreDriver: getEnv("STORE_DRIVER", StoreMemory),
		SeedDemo:    seedDemo,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@wellpass.local"),
		FromName: getEnv("SMTP_FROM_NAME", "Wellpass"),
	}

	config.Storage = StorageConfig{
		Type:     getEnv("STORAGE_TYPE", "local"),
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "http://localhost:8080/uploads"),
	}

	// Check-in configuration
	cooldown, err := time.ParseDuration(getEnv("CHECKIN_COOLDOWN", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKIN_COOLDOWN: %w", err)
	}
	config.CheckIn = CheckInConfig{
		TokenSecret:   getEnv("QR_TOKEN_SECRET", ""),
		QuotaPeriod:   getEnv("QUOTA_PERIOD", QuotaPeriodCalendarMonth),
		QuotaTimezone: getEnv("QUOTA_TIMEZONE", "UTC"),
		Cooldown:      cooldown,
	}

	// Mock backend latency
	latencyEnabled, err := strconv.ParseBool(getEnv("MOCK_LATENCY_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_LATENCY_ENABLED: %w", err)
	}
	latencyMin, err := time.ParseDuration(getEnv("MOCK_LATENCY_MIN", "200ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_LATENCY_MIN: %w", err)
	}
	latencyMax, err := time.ParseDuration(getEnv("MOCK_LATENCY_MAX", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_LATENCY_MAX: %w", err)
	}
	config.Mock = MockConfig{
		LatencyEnabled: latencyEnabled,
		LatencyMin:     latencyMin,
		LatencyMax:     latencyMax,
	}

	perSecond, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_SECOND", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_SECOND: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}
	trustProxy, err := strconv.ParseBool(getEnv("RATE_LIMIT_TRUST_PROXY", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_TRUST_PROXY: %w", err)
	}
	config.RateLimit = RateLimitConfig{PerSecond: perSecond, Burst: burst, TrustProxy: trustProxy}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.App.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreMemory, StorePostgres)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.CheckIn.TokenSecret == "" {
		return fmt.Errorf("QR_TOKEN_SECRET is required")
	}
	if c.CheckIn.TokenSecret == c.JWT.Secret {
		return fmt.Errorf("QR_TOKEN_SECRET must differ from JWT_SECRET_KEY")
	}
	switch c.CheckIn.QuotaPeriod {
	case QuotaPeriodCalendarMonth, QuotaPeriodRolling30d:
	default:
		return fmt.Errorf("QUOTA_PERIOD must be %q or %q", QuotaPeriodCalendarMonth, QuotaPeriodRolling30d)
	}
	if _, err := time.LoadLocation(c.CheckIn.QuotaTimezone); err != nil {
		return fmt.Errorf("invalid QUOTA_TIMEZONE: %w", err)
	}
	if c.CheckIn.Cooldown < 0 {
		return fmt.Errorf("CHECKIN_COOLDOWN must not be negative")
	}
	if c.Mock.LatencyMin < 0 || c.Mock.LatencyMax < c.Mock.LatencyMin {
		return fmt.Errorf("MOCK_LATENCY_MIN/MAX must satisfy 0 <= min <= max")
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive")
	}
	if c.OAuth2Google.Enabled() {
		if c.OAuth2Google.RedirectURL == "" {
			return fmt.Errorf("REDIRECT_URL is required")
		}
		if len(c.OAuth2Google.Scopes) == 0 {
			return fmt.Errorf("SCOPES is required")
		}
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
