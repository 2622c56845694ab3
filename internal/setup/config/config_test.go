package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/overseer/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	commonTOML = `
[common]
version = 1

[common.database]
driver = "sqlite"
path = "test.db"
`
	botTOML = `
[bot]
version = 1
token = "file-token"
admin_telegram_id = 42
`
	workerTOML = `
[worker]
version = 1
retention_days = 14

[worker.export]
formats = ["csv", "sqlite"]
`
)

// writeConfigDir writes the three config files into a temporary directory.
func writeConfigDir(t *testing.T, common, bot, worker string) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"common.toml": common,
		"bot.toml":    bot,
		"worker.toml": worker,
	}

	for name, content := range files {
		if content == "" {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	return dir
}

func TestLoadConfigFrom(t *testing.T) {
	dir := writeConfigDir(t, commonTOML, botTOML, workerTOML)

	cfg, usedPath, err := config.LoadConfigFrom([]string{filepath.Join(dir, "missing"), dir})
	require.NoError(t, err)

	assert.Equal(t, dir, usedPath)
	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, int64(42), cfg.Bot.AdminTelegramID)
	assert.Equal(t, config.DriverSQLite, cfg.Common.Database.Driver)
	assert.Equal(t, "test.db", cfg.Common.Database.Path)
	assert.Equal(t, 14, cfg.Worker.RetentionDays)
	assert.Equal(t, []string{"csv", "sqlite"}, cfg.Worker.Export.Formats)

	// Defaults fill what the files leave empty
	assert.Equal(t, "info", cfg.Common.Debug.LogLevel)
	assert.Equal(t, "Europe/Minsk", cfg.Bot.Timezone)
	assert.Equal(t, "0 9 * * *", cfg.Worker.ReminderSchedule)
	assert.Equal(t, "0 3 * * *", cfg.Worker.CleanupSchedule)
	assert.Same(t, time.Local, cfg.Worker.Location())
	assert.Equal(t, 7, cfg.Worker.CleanupIntervalDays)
	assert.Equal(t, "exports", cfg.Worker.Export.Dir)
	assert.Equal(t, 1, cfg.Bot.MaxConcurrentUpdates)
}

func TestLoadConfigFrom_EnvOverrides(t *testing.T) {
	dir := writeConfigDir(t, commonTOML, botTOML, workerTOML)

	t.Setenv("OVERSEER_BOT__TOKEN", "env-token")
	t.Setenv("OVERSEER_BOT__ADMIN_TELEGRAM_ID", "1001")
	t.Setenv("OVERSEER_COMMON__DEBUG__LOG_LEVEL", "debug")

	cfg, _, err := config.LoadConfigFrom([]string{dir})
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, int64(1001), cfg.Bot.AdminTelegramID)
	assert.Equal(t, "debug", cfg.Common.Debug.LogLevel)
}

func TestLoadConfigFrom_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		common  string
		bot     string
		worker  string
		wantErr error
	}{
		{
			name:    "missing worker file",
			common:  commonTOML,
			bot:     botTOML,
			wantErr: config.ErrConfigFileNotFound,
		},
		{
			name:    "missing version",
			common:  "[common]\n",
			bot:     botTOML,
			worker:  workerTOML,
			wantErr: config.ErrConfigVersionMissing,
		},
		{
			name:    "version mismatch",
			common:  commonTOML,
			bot:     "[bot]\nversion = 2\n",
			worker:  workerTOML,
			wantErr: config.ErrConfigVersionMismatch,
		},
		{
			name:    "missing token",
			common:  commonTOML,
			bot:     "[bot]\nversion = 1\nadmin_telegram_id = 1\n",
			worker:  workerTOML,
			wantErr: config.ErrMissingBotToken,
		},
		{
			name:    "missing admin",
			common:  commonTOML,
			bot:     "[bot]\nversion = 1\ntoken = \"x\"\n",
			worker:  workerTOML,
			wantErr: config.ErrMissingAdminID,
		},
		{
			name:    "unsupported driver",
			common:  "[common]\nversion = 1\n[common.database]\ndriver = \"mysql\"\n",
			bot:     botTOML,
			worker:  workerTOML,
			wantErr: config.ErrUnsupportedDriver,
		},
		{
			name:    "invalid timezone",
			common:  commonTOML,
			bot:     botTOML + "timezone = \"Nowhere/Void\"\n",
			worker:  workerTOML,
			wantErr: config.ErrInvalidTimezone,
		},
		{
			name:    "invalid schedule timezone",
			common:  commonTOML,
			bot:     botTOML,
			worker:  "[worker]\nversion = 1\ntimezone = \"Nowhere/Void\"\n",
			wantErr: config.ErrInvalidTimezone,
		},
		{
			name:    "invalid log level",
			common:  "[common]\nversion = 1\n[common.debug]\nlog_level = \"loud\"\n",
			bot:     botTOML,
			worker:  workerTOML,
			wantErr: config.ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeConfigDir(t, tt.common, tt.bot, tt.worker)

			_, _, err := config.LoadConfigFrom([]string{dir})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWorkerLocation(t *testing.T) {
	t.Parallel()

	local := config.WorkerConfig{}
	assert.Same(t, time.Local, local.Location())

	minsk := config.WorkerConfig{Timezone: "Europe/Minsk"}
	assert.Equal(t, "Europe/Minsk", minsk.Location().String())
}
