package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sundayezeilo/pastebin/internal/config"
	"github.com/sundayezeilo/pastebin/internal/db/migrations"
	db "github.com/sundayezeilo/pastebin/internal/db/sqlc"
	"github.com/sundayezeilo/pastebin/internal/idgen"
	"github.com/sundayezeilo/pastebin/internal/metrics"
	"github.com/sundayezeilo/pastebin/internal/paste"
	"github.com/sundayezeilo/pastebin/internal/server"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DBPool  *pgxpool.Pool
	Server  *server.Server
	Handler *paste.Handler
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"service", cfg.Metrics.ServiceName,
		"version", cfg.Metrics.ServiceVersion,
	)

	dbPool, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, dbPool); err != nil {
			dbPool.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	ids, err := idgen.New(idgen.Strategy(cfg.Paste.IDStrategy), cfg.Paste.IDLength)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.SetBuildInfo(cfg.Metrics.ServiceName, cfg.Metrics.ServiceVersion)
	}

	handler := NewHandler(db.New(dbPool), ids, cfg, logger)
	srv := server.New(cfg, logger, handler, dbPool)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"id_strategy", cfg.Paste.IDStrategy,
		"lenient_view_cap", cfg.Paste.LenientViewCap,
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		DBPool:  dbPool,
		Server:  srv,
		Handler: handler,
	}, nil
}

// NewHandler builds the paste repository, service and HTTP handler on top
// of the given queries.
func NewHandler(queries *db.Queries, ids idgen.Generator, cfg *config.Config, logger *slog.Logger) *paste.Handler {
	repo := paste.NewRepository(queries, &paste.RepositoryConfig{
		IDGenerator:  ids,
		IDMaxRetries: cfg.Paste.IDMaxRetries,
	})
	svc := paste.NewService(repo, &paste.ServiceConfig{
		LenientViewCap: cfg.Paste.LenientViewCap,
	})
	return paste.NewHandler(paste.HandlerConfig{
		Service:  svc,
		Logger:   logger,
		BaseURL:  cfg.Server.BaseURL,
		TestMode: cfg.App.TestMode,
	})
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// connectDatabase establishes a connection to the PostgreSQL database.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")

	return pool, nil
}
