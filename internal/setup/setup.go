package setup

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/robalyx/overseer/internal/database"
	"github.com/robalyx/overseer/internal/database/service"
	"github.com/robalyx/overseer/internal/export"
	"github.com/robalyx/overseer/internal/redis"
	"github.com/robalyx/overseer/internal/setup/config"
	"github.com/robalyx/overseer/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config     // Application configuration
	Logger       *zap.Logger        // Main application logger
	DBLogger     *zap.Logger        // Database-specific logger
	DB           database.Client    // Database connection pool
	RedisManager *redis.Manager     // Redis connection manager, may be disabled
	Exporter     service.Exporter   // Archive writer used before cleanup
	LogManager   *telemetry.Manager // Log management system

	shutdownTracing func(context.Context)
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
// Pending migrations are applied automatically so the schema always exists.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType) (*App, error) {
	// Load app configuration
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Data, log and export directories are created up front
	for _, dir := range []string{cfg.Common.Debug.LogDir, cfg.Worker.Export.Dir} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, &cfg.Common.Debug)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("dir", configDir))

	shutdownTracing := telemetry.SetupTracing(&cfg.Common.Uptrace, logger)

	// Redis is optional; without it sessions live in memory
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)
	if !redisManager.Enabled() {
		logger.Info("Redis disabled, using in-memory sessions")
	}

	db, err := database.NewConnection(ctx, &cfg.Common.Database, dbLogger.Named("database"), true)
	if err != nil {
		shutdownTracing(ctx)
		return nil, err
	}

	exporter, err := export.New(cfg.Worker.Export.Dir, cfg.Worker.Export.Formats, logger)
	if err != nil {
		db.Close()
		shutdownTracing(ctx)
		return nil, err
	}

	// Bundle all initialized components
	return &App{
		Config:          cfg,
		Logger:          logger,
		DBLogger:        dbLogger.Named("database"),
		DB:              db,
		RedisManager:    redisManager,
		Exporter:        exporter,
		LogManager:      logManager,
		shutdownTracing: shutdownTracing,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(ctx context.Context) {
	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	// Flush pending spans
	if s.shutdownTracing != nil {
		s.shutdownTracing(ctx)
	}

	// Close database connections
	if err := s.DB.Close(); err != nil {
		log.Printf("Failed to close database connection: %v", err)
	}

	// Close Redis connections last as other components might need it during cleanup
	s.RedisManager.Close()
}
