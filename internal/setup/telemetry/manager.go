package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/robalyx/overseer/internal/setup/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceType identifies the process writing logs.
type ServiceType int

const (
	ServiceBot ServiceType = iota
	ServiceCLI
	ServiceDB
)

// sessionLayout names run directories so that they sort chronologically.
const sessionLayout = "2006-01-02_15-04-05"

// String returns the component name used for log directories.
func (s ServiceType) String() string {
	switch s {
	case ServiceBot:
		return "bot"
	case ServiceCLI:
		return "cli"
	case ServiceDB:
		return "db"
	default:
		return "unknown"
	}
}

// Manager owns the log directory of one process run. Every run gets a fresh
// directory under <log_dir>/<service>_logs and only the newest runs are kept.
type Manager struct {
	service    ServiceType
	instanceID string
	baseDir    string
	runDir     string
	level      zapcore.Level
	keep       int
}

// NewManager creates a log manager for the given service.
// An unknown level falls back to info.
func NewManager(service ServiceType, cfg *config.Debug) *Manager {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	return &Manager{
		service:    service,
		instanceID: uuid.NewString(),
		baseDir:    filepath.Join(cfg.LogDir, service.String()+"_logs"),
		level:      level,
		keep:       max(cfg.MaxLogsToKeep, 1),
	}
}

// GetLoggers opens the run directory and returns the main logger, which also
// writes to stderr, and the database logger, which only writes to its file.
func (lm *Manager) GetLoggers() (*zap.Logger, *zap.Logger, error) {
	if err := lm.startRun(); err != nil {
		return nil, nil, err
	}

	mainLogger, err := lm.fileLogger("main.log", true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	dbLogger, err := lm.fileLogger("database.log", false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database logger: %w", err)
	}

	fields := []zap.Field{
		zap.String("component", lm.service.String()),
		zap.String("instance_id", lm.instanceID),
	}

	return mainLogger.With(fields...), dbLogger.With(fields...), nil
}

// GetWorkerLogger returns a logger writing to <name>.log in the run directory.
// Logging is discarded if the file cannot be opened.
func (lm *Manager) GetWorkerLogger(name string) *zap.Logger {
	if lm.runDir == "" {
		if err := lm.startRun(); err != nil {
			return zap.NewNop()
		}
	}

	logger, err := lm.fileLogger(name+".log", false)
	if err != nil {
		return zap.NewNop()
	}

	return logger.Named(name).With(zap.String("instance_id", lm.instanceID))
}

// startRun prunes old runs and creates the directory for this one.
func (lm *Manager) startRun() error {
	if err := os.MkdirAll(lm.baseDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := lm.prune(); err != nil {
		return fmt.Errorf("failed to prune old log runs: %w", err)
	}

	lm.runDir = filepath.Join(lm.baseDir, time.Now().Format(sessionLayout))
	if err := os.MkdirAll(lm.runDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	return nil
}

// prune removes the oldest run directories so that, including the run about
// to start, at most keep remain.
func (lm *Manager) prune() error {
	entries, err := os.ReadDir(lm.baseDir)
	if err != nil {
		return err
	}

	var runs []string
	for _, entry := range entries {
		if entry.IsDir() {
			runs = append(runs, entry.Name())
		}
	}

	if len(runs) < lm.keep {
		return nil
	}

	slices.Sort(runs)

	for _, name := range runs[:len(runs)-lm.keep+1] {
		if err := os.RemoveAll(filepath.Join(lm.baseDir, name)); err != nil {
			return err
		}
	}

	return nil
}

// fileLogger builds a console-encoded logger appending to a file in the run
// directory, teed to stderr when requested.
func (lm *Manager) fileLogger(fileName string, stderr bool) (*zap.Logger, error) {
	path := filepath.Join(lm.runDir, fileName)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	core := zapcore.NewCore(encoder, zapcore.AddSync(file), lm.level)
	if stderr {
		core = zapcore.NewTee(core, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lm.level))
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
