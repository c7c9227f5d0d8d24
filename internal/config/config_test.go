package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func baseEnv() map[string]string {
	return map[string]string{
		"SERVER_PORT":             "8080",
		"SERVER_HOST":             "0.0.0.0",
		"SERVER_READ_TIMEOUT":     "10s",
		"SERVER_WRITE_TIMEOUT":    "10s",
		"SERVER_IDLE_TIMEOUT":     "120s",
		"SERVER_SHUTDOWN_TIMEOUT": "30s",

		"DB_HOST":      "localhost",
		"DB_PORT":      "5432",
		"DB_USER":      "testuser",
		"DB_PASSWORD":  "testpass",
		"DB_NAME":      "testdb",
		"DB_SSLMODE":   "disable",
		"DB_MAX_CONNS": "25",
		"DB_MIN_CONNS": "5",

		"APP_ENV":   "test",
		"LOG_LEVEL": "debug",
	}
}

// setEnv sets the given variables and unsets every other known one, so
// values from the host environment cannot leak in. envconfig treats a set
// but empty variable as present, which would bypass defaults.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	known := []string{
		"SERVER_PORT", "SERVER_HOST", "SERVER_BASE_URL", "SERVER_READ_TIMEOUT",
		"SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"DB_MAX_CONNS", "DB_MIN_CONNS", "DB_AUTO_MIGRATE",
		"APP_ENV", "LOG_LEVEL", "TEST_MODE",
		"PASTE_ID_STRATEGY", "PASTE_ID_LENGTH", "PASTE_ID_MAX_RETRIES", "PASTE_LENIENT_VIEW_CAP",
		"METRICS_ENABLED", "METRICS_PATH", "SERVICE_NAME", "SERVICE_VERSION",
	}
	for _, key := range known {
		value, ok := env[key]
		t.Setenv(key, value)
		if !ok {
			_ = os.Unsetenv(key)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, baseEnv())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "" {
		t.Errorf("Server.BaseURL = %q, want empty", cfg.Server.BaseURL)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 10s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("Database.MaxConns = %d, want 25", cfg.Database.MaxConns)
	}
	if !cfg.Database.AutoMigrate {
		t.Error("Database.AutoMigrate = false, want true")
	}
	if cfg.App.TestMode {
		t.Error("App.TestMode = true, want false")
	}
	if cfg.Paste.IDStrategy != "base62" || cfg.Paste.IDLength != 10 || cfg.Paste.IDMaxRetries != 3 {
		t.Errorf("Paste = %+v, want base62/10/3", cfg.Paste)
	}
	if cfg.Paste.LenientViewCap {
		t.Error("Paste.LenientViewCap = true, want false")
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" || cfg.Metrics.ServiceName != "pastebin" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoad_Overrides(t *testing.T) {
	env := baseEnv()
	env["SERVER_BASE_URL"] = "https://paste.example.com"
	env["DB_AUTO_MIGRATE"] = "false"
	env["TEST_MODE"] = "true"
	env["PASTE_ID_STRATEGY"] = "uuidv7"
	env["PASTE_ID_MAX_RETRIES"] = "5"
	env["PASTE_LENIENT_VIEW_CAP"] = "true"
	env["METRICS_ENABLED"] = "false"
	env["SERVICE_VERSION"] = "1.2.3"
	setEnv(t, env)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.BaseURL != "https://paste.example.com" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Database.AutoMigrate {
		t.Error("Database.AutoMigrate = true, want false")
	}
	if !cfg.App.TestMode {
		t.Error("App.TestMode = false, want true")
	}
	if cfg.Paste.IDStrategy != "uuidv7" || cfg.Paste.IDMaxRetries != 5 || !cfg.Paste.LenientViewCap {
		t.Errorf("Paste = %+v", cfg.Paste)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false")
	}
	if cfg.Metrics.ServiceVersion != "1.2.3" {
		t.Errorf("Metrics.ServiceVersion = %q, want 1.2.3", cfg.Metrics.ServiceVersion)
	}
}

func TestLoad_MissingRequiredVariable(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "SERVER_READ_TIMEOUT", "DB_HOST", "DB_NAME", "APP_ENV", "LOG_LEVEL"} {
		t.Run(key, func(t *testing.T) {
			env := baseEnv()
			delete(env, key)
			setEnv(t, env)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should fail when %s is missing", key)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name        string
		envVar      string
		value       string
		errContains string
	}{
		{"invalid duration", "SERVER_READ_TIMEOUT", "invalid", "Server"},
		{"relative base url", "SERVER_BASE_URL", "paste.example.com", "base URL"},
		{"invalid int", "DB_MAX_CONNS", "not-a-number", "Database"},
		{"invalid ssl mode", "DB_SSLMODE", "prefer", "SSL mode"},
		{"invalid bool", "TEST_MODE", "maybe", "App"},
		{"invalid environment", "APP_ENV", "qa", "environment"},
		{"unknown id strategy", "PASTE_ID_STRATEGY", "snowflake", "id strategy"},
		{"short base62 id", "PASTE_ID_LENGTH", "4", "id length"},
		{"long base62 id", "PASTE_ID_LENGTH", "65", "id length"},
		{"zero retries", "PASTE_ID_MAX_RETRIES", "0", "retries"},
		{"relative metrics path", "METRICS_PATH", "metrics", "metrics path"},
		{"metrics path under api", "METRICS_PATH", "/api/metrics", "collides"},
		{"metrics path at root", "METRICS_PATH", "/", "collides"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := baseEnv()
			env[tt.envVar] = tt.value
			setEnv(t, env)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() should fail when %s=%q", tt.envVar, tt.value)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestAppConfig_TestModeRejectedInProduction(t *testing.T) {
	c := AppConfig{Environment: "production", LogLevel: "info", TestMode: true}
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() should reject test mode in production")
	}

	c.TestMode = false
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestPasteConfig_UUIDIgnoresLength(t *testing.T) {
	c := PasteConfig{IDStrategy: "uuidv4", IDLength: 0, IDMaxRetries: 1}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestMetricsConfig_DisabledSkipsChecks(t *testing.T) {
	c := MetricsConfig{Enabled: false, Path: "bogus"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host:     "testhost",
		Port:     "5432",
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		SSLMode:  "disable",
	}

	expected := "host=testhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	if got := db.ConnectionString(); got != expected {
		t.Errorf("ConnectionString() = %s, want %s", got, expected)
	}
}
