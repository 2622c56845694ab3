package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrMissingBotToken       = errors.New("bot token is required")
	ErrMissingAdminID        = errors.New("admin telegram id is required")
	ErrUnsupportedDriver     = errors.New("unsupported database driver")
	ErrInvalidTimezone       = errors.New("invalid display timezone")
	ErrInvalidLogLevel       = errors.New("invalid log level")
)

// EnvPrefix is the prefix of environment variables that override config values.
// A double underscore separates nesting levels, e.g. OVERSEER_BOT__TOKEN.
const EnvPrefix = "OVERSEER_"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentBotVersion    = 1
	CurrentWorkerVersion = 1
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig `koanf:"common"`
	Bot    BotConfig    `koanf:"bot"`
	Worker WorkerConfig `koanf:"worker"`
}

// CommonConfig contains configuration shared between the bot and the CLI tools.
type CommonConfig struct {
	// Version of the common config.
	Version  int      `koanf:"version"`
	Debug    Debug    `koanf:"debug"`
	Retry    Retry    `koanf:"retry"`
	Database Database `koanf:"database"`
	Redis    Redis    `koanf:"redis"`
	Uptrace  Uptrace  `koanf:"uptrace"`
}

// BotConfig contains Telegram bot specific configuration.
type BotConfig struct {
	// Version of the bot config.
	Version int `koanf:"version"`
	// Telegram bot API token.
	Token string `koanf:"token"`
	// Telegram id of the single administrator.
	AdminTelegramID int64 `koanf:"admin_telegram_id"`
	// IANA timezone used when rendering timestamps to the admin.
	Timezone string `koanf:"timezone"`
	// Long polling timeout in seconds.
	PollTimeout int `koanf:"poll_timeout"`
	// Number of updates handled at the same time.
	MaxConcurrentUpdates int `koanf:"max_concurrent_updates"`
	// Conversation state lifetime in minutes.
	SessionTTL int `koanf:"session_ttl"`
}

// WorkerConfig contains scheduler and archival configuration.
type WorkerConfig struct {
	// Version of the worker config.
	Version int `koanf:"version"`
	// Cron expression for the deadline reminder sweep.
	ReminderSchedule string `koanf:"reminder_schedule"`
	// Cron expression for the cleanup check.
	CleanupSchedule string `koanf:"cleanup_schedule"`
	// IANA timezone the schedules are evaluated in. Empty uses the process-local zone.
	Timezone string `koanf:"timezone"`
	// Days after completion before a task becomes eligible for archival.
	RetentionDays int `koanf:"retention_days"`
	// Minimum days between two automatic cleanups.
	CleanupIntervalDays int `koanf:"cleanup_interval_days"`
	// Number of reminders delivered at the same time.
	ReminderConcurrency int `koanf:"reminder_concurrency"`
	// Export configuration.
	Export Export `koanf:"export"`
}

// Debug contains logging configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Base directory for log sessions.
	LogDir string `koanf:"log_dir"`
}

// Retry contains retry configuration for outbound Telegram requests.
type Retry struct {
	// Maximum number of retry attempts.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial delay between retries in milliseconds.
	Delay int `koanf:"delay"`
	// Maximum delay between retries in milliseconds.
	MaxDelay int `koanf:"max_delay"`
}

// Database contains relational store configuration.
type Database struct {
	// Driver is either "sqlite" or "postgres".
	Driver string `koanf:"driver"`
	// SQLite database file, used by the sqlite driver.
	Path         string `koanf:"path"`
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	DBName       string `koanf:"db_name"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle connection lifetime in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	// Turn off client-side caching for servers without RESP3 tracking.
	DisableCache bool `koanf:"disable_cache"`
}

// Uptrace contains tracing configuration. Tracing is disabled when DSN is empty.
type Uptrace struct {
	DSN            string `koanf:"dsn"`
	ServiceName    string `koanf:"service_name"`
	ServiceVersion string `koanf:"service_version"`
}

// Export contains archival output configuration.
type Export struct {
	// Directory that receives export artifacts.
	Dir string `koanf:"dir"`
	// Extra formats written beside the text report ("csv", "sqlite").
	Formats []string `koanf:"formats"`
}

// Location resolves the configured display timezone.
func (c *BotConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Location resolves the timezone of the job schedules, falling back to the
// process-local zone when none is configured.
func (c *WorkerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Retention is how long completed tasks are kept before archival.
func (c *WorkerConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// CleanupInterval is the minimum time between two automatic cleanups.
func (c *WorkerConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalDays) * 24 * time.Hour
}

// DefaultConfigPaths returns the directories searched for config files.
func DefaultConfigPaths() []string {
	paths := []string{".overseer", "/etc/overseer/config", "/app/config", "config", "."}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append([]string{homeDir + "/.overseer/config"}, paths...)
	}

	return paths
}

// LoadConfig loads the configuration from the default search paths.
func LoadConfig() (*Config, string, error) {
	return LoadConfigFrom(DefaultConfigPaths())
}

// LoadConfigFrom loads common, bot and worker config files from the first path
// that contains each of them, then overlays OVERSEER_* environment variables.
func LoadConfigFrom(configPaths []string) (*Config, string, error) {
	k := koanf.New(".")

	// Load all config files
	var usedConfigPath string

	configFiles := []string{"common", "bot", "worker"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)
			if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
				configLoaded = true

				if usedConfigPath == "" {
					usedConfigPath = path
				}

				break
			}
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	// Environment variables take precedence over files
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("bot", config.Bot.Version, CurrentBotVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("worker", config.Worker.Version, CurrentWorkerVersion); err != nil {
		return nil, "", err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// Validate checks that required values are present and well formed.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return ErrMissingBotToken
	}

	if c.Bot.AdminTelegramID == 0 {
		return ErrMissingAdminID
	}

	switch c.Common.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Common.Database.Driver)
	}

	if _, err := time.LoadLocation(c.Bot.Timezone); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTimezone, err)
	}

	if c.Worker.Timezone != "" {
		if _, err := time.LoadLocation(c.Worker.Timezone); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTimezone, err)
		}
	}

	if _, err := zapcore.ParseLevel(c.Common.Debug.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Common.Debug.LogLevel)
	}

	return nil
}

// applyDefaults fills values that were left empty in the config files.
func (c *Config) applyDefaults() {
	if c.Common.Debug.LogLevel == "" {
		c.Common.Debug.LogLevel = "info"
	}
	if c.Common.Debug.MaxLogsToKeep <= 0 {
		c.Common.Debug.MaxLogsToKeep = 10
	}
	if c.Common.Debug.LogDir == "" {
		c.Common.Debug.LogDir = "logs"
	}
	if c.Common.Retry.MaxRetries == 0 {
		c.Common.Retry.MaxRetries = 3
	}
	if c.Common.Retry.Delay <= 0 {
		c.Common.Retry.Delay = 500
	}
	if c.Common.Retry.MaxDelay <= 0 {
		c.Common.Retry.MaxDelay = 5000
	}
	if c.Common.Database.Driver == "" {
		c.Common.Database.Driver = DriverSQLite
	}
	if c.Common.Database.Path == "" {
		c.Common.Database.Path = "data/overseer.db"
	}
	if c.Bot.Timezone == "" {
		c.Bot.Timezone = "Europe/Minsk"
	}
	if c.Bot.PollTimeout <= 0 {
		c.Bot.PollTimeout = 60
	}
	if c.Bot.MaxConcurrentUpdates <= 0 {
		c.Bot.MaxConcurrentUpdates = 1
	}
	if c.Bot.SessionTTL <= 0 {
		c.Bot.SessionTTL = 60
	}
	if c.Worker.ReminderSchedule == "" {
		c.Worker.ReminderSchedule = "0 9 * * *"
	}
	if c.Worker.CleanupSchedule == "" {
		c.Worker.CleanupSchedule = "0 3 * * *"
	}
	if c.Worker.RetentionDays <= 0 {
		c.Worker.RetentionDays = 7
	}
	if c.Worker.CleanupIntervalDays <= 0 {
		c.Worker.CleanupIntervalDays = 7
	}
	if c.Worker.ReminderConcurrency <= 0 {
		c.Worker.ReminderConcurrency = 4
	}
	if c.Worker.Export.Dir == "" {
		c.Worker.Export.Dir = "exports"
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
		)
	}

	return nil
}
