package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robalyx/overseer/internal/setup/config"
	"github.com/robalyx/overseer/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerGetLoggers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	manager := telemetry.NewManager(telemetry.ServiceBot, &config.Debug{
		LogLevel:      "debug",
		MaxLogsToKeep: 3,
		LogDir:        dir,
	})

	logger, dbLogger, err := manager.GetLoggers()
	require.NoError(t, err)

	logger.Info("hello")
	dbLogger.Debug("select 1")
	manager.GetWorkerLogger("reminder_worker").Info("sweep")

	runs, err := os.ReadDir(filepath.Join(dir, "bot_logs"))
	require.NoError(t, err)
	require.Len(t, runs, 1)

	files, err := os.ReadDir(filepath.Join(dir, "bot_logs", runs[0].Name()))
	require.NoError(t, err)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	assert.ElementsMatch(t, []string{"main.log", "database.log", "reminder_worker.log"}, names)
}

func TestManagerPrunesOldRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "cli_logs")
	for _, name := range []string{"2025-01-01_00-00-00", "2025-01-02_00-00-00", "2025-01-03_00-00-00"} {
		require.NoError(t, os.MkdirAll(filepath.Join(base, name), os.ModePerm))
	}

	manager := telemetry.NewManager(telemetry.ServiceCLI, &config.Debug{
		LogLevel:      "info",
		MaxLogsToKeep: 2,
		LogDir:        dir,
	})

	_, _, err := manager.GetLoggers()
	require.NoError(t, err)

	runs, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "2025-01-03_00-00-00", runs[0].Name())
}
