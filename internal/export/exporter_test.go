package export_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dbTypes "github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func sampleTasks() []*dbTypes.Task {
	completedAt := time.Date(2025, 10, 8, 14, 30, 0, 0, time.UTC)

	return []*dbTypes.Task{
		{
			ID:          1,
			Manager:     &dbTypes.User{TelegramID: 55, FirstName: "Anna"},
			Text:        "Call the supplier",
			Deadline:    time.Date(2025, 10, 9, 23, 59, 59, 0, time.UTC),
			CompletedAt: &completedAt,
		},
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "nested", "exports")
	clock := func() time.Time { return time.Date(2025, 10, 18, 3, 0, 0, 0, time.UTC) }

	exporter, err := export.New(outDir, []string{"csv", "sqlite"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	exporter.WithClock(clock)

	first, err := exporter.Export(context.Background(), sampleTasks())
	require.NoError(t, err)
	second, err := exporter.Export(context.Background(), sampleTasks())
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(first))
	assert.NotEqual(t, first, second, "exports in the same second get distinct names")

	name := filepath.Base(first)
	assert.True(t, strings.HasPrefix(name, "completed_tasks_20251018_030000_"), name)
	assert.Equal(t, ".txt", filepath.Ext(name))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Manager: Anna")

	base := strings.TrimSuffix(first, ".txt")
	assert.FileExists(t, base+".csv")
	assert.FileExists(t, base+".db")
}

func TestExportRemovesIncompleteArchive(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()

	exporter, err := export.New(outDir, []string{"csv", "sqlite"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	// The text and csv copies accept duplicate ids but the sqlite copy
	// rejects them, so the last format fails after two files exist.
	tasks := append(sampleTasks(), sampleTasks()...)

	path, err := exporter.Export(context.Background(), tasks)
	require.Error(t, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportUnwritableDirectory(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	exporter, err := export.New(filepath.Join(blocker, "exports"), nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = exporter.Export(context.Background(), sampleTasks())
	require.Error(t, err)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := export.New(t.TempDir(), []string{"binary"}, zaptest.NewLogger(t))
	require.ErrorIs(t, err, export.ErrUnsupportedFormat)
}
