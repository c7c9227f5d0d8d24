package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Paste    PasteConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" required:"true"`
	Host string `envconfig:"SERVER_HOST" required:"true"`
	// BaseURL prefixes share links. Empty means "derive from the Host header".
	BaseURL         string        `envconfig:"SERVER_BASE_URL"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" required:"true"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" required:"true"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" required:"true"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" required:"true"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base URL must be an absolute http(s) URL, got %q", c.BaseURL)
		}
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	return nil
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" required:"true"`
	Port        string `envconfig:"DB_PORT" required:"true"`
	User        string `envconfig:"DB_USER" required:"true"`
	Password    string `envconfig:"DB_PASSWORD" required:"true"`
	Name        string `envconfig:"DB_NAME" required:"true"`
	SSLMode     string `envconfig:"DB_SSLMODE" required:"true"`
	MaxConns    int32  `envconfig:"DB_MAX_CONNS" required:"true"`
	MinConns    int32  `envconfig:"DB_MIN_CONNS" required:"true"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.User == "" {
		return fmt.Errorf("user cannot be empty")
	}
	if c.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max connections must be positive")
	}
	if c.MinConns <= 0 {
		return fmt.Errorf("min connections must be positive")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min connections (%d) cannot be greater than max connections (%d)", c.MinConns, c.MaxConns)
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("invalid SSL mode: %s (must be one of: disable, require, verify-ca, verify-full)", c.SSLMode)
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" required:"true"`   // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" required:"true"` // debug, info, warn, error
	// TestMode lets clients pin the request clock with X-Test-Now-Ms.
	TestMode bool `envconfig:"TEST_MODE" default:"false"`
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.TestMode && c.Environment == "production" {
		return fmt.Errorf("test mode cannot be enabled in production")
	}
	return nil
}

// PasteConfig holds paste id and view-cap settings.
type PasteConfig struct {
	IDStrategy   string `envconfig:"PASTE_ID_STRATEGY" default:"base62"` // base62, uuidv4, uuidv7
	IDLength     int    `envconfig:"PASTE_ID_LENGTH" default:"10"`       // base62 only
	IDMaxRetries int    `envconfig:"PASTE_ID_MAX_RETRIES" default:"3"`
	// LenientViewCap tolerates concurrent counted reads overshooting max_views.
	LenientViewCap bool `envconfig:"PASTE_LENIENT_VIEW_CAP" default:"false"`
}

// Validate validates the paste configuration.
func (c *PasteConfig) Validate() error {
	switch c.IDStrategy {
	case "base62":
		if c.IDLength < 8 || c.IDLength > 64 {
			return fmt.Errorf("id length must be between 8 and 64, got %d", c.IDLength)
		}
	case "uuidv4", "uuidv7":
	default:
		return fmt.Errorf("invalid id strategy: %s (must be one of: base62, uuidv4, uuidv7)", c.IDStrategy)
	}

	if c.IDMaxRetries < 1 {
		return fmt.Errorf("id max retries must be at least 1")
	}
	return nil
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled        bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Path           string `envconfig:"METRICS_PATH" default:"/metrics"`
	ServiceName    string `envconfig:"SERVICE_NAME" default:"pastebin"`
	ServiceVersion string `envconfig:"SERVICE_VERSION" default:"dev"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("metrics path must start with /, got %q", c.Path)
	}
	if c.Path == "/" || c.Path == "/api" || strings.HasPrefix(c.Path, "/api/") || strings.HasPrefix(c.Path, "/p/") {
		return fmt.Errorf("metrics path %q collides with application routes", c.Path)
	}
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required when metrics are enabled")
	}
	return nil
}

// Load loads configuration from environment variables only.
// .env files are loaded by the app package before this runs.
func Load() (*Config, error) {
	cfg := &Config{}

	sections := []struct {
		name    string
		section interface{ Validate() error }
	}{
		{"Server", &cfg.Server},
		{"Database", &cfg.Database},
		{"App", &cfg.App},
		{"Paste", &cfg.Paste},
		{"Metrics", &cfg.Metrics},
	}

	for _, s := range sections {
		if err := envconfig.Process("", s.section); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
		if err := s.section.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s config: %w", s.name, err)
		}
	}

	return cfg, nil
}
