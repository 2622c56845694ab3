package text_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/overseer/internal/export/text"
	"github.com/robalyx/overseer/internal/export/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 10, 18, 3, 0, 0, 0, time.UTC)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	completedAt := time.Date(2025, 10, 8, 14, 30, 0, 0, time.UTC)
	records := []*types.ExportRecord{
		{
			TaskID:      3,
			ManagerName: "Anna",
			Text:        "Call the supplier",
			Deadline:    time.Date(2025, 10, 9, 23, 59, 59, 0, time.UTC),
			CompletedAt: &completedAt,
		},
		{
			TaskID:      4,
			ManagerName: "N/A",
			Text:        "Send invoices",
			Deadline:    time.Date(2025, 10, 9, 23, 59, 59, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, text.New(fixedClock).Write(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "COMPLETED TASKS (Exported: 18.10.2025 03:00:00)")
	assert.Contains(t, out, "Manager: Anna\nTask: Call the supplier\n")
	assert.Contains(t, out, "Completed: 08.10.2025 14:30:00")
	assert.Contains(t, out, "Deadline: 09.10.2025 23:59:59")
	assert.Contains(t, out, "Completed: N/A")
	assert.NotContains(t, out, "No tasks to export.")
}

func TestWriteEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, text.New(fixedClock).Write(&buf, nil))
	assert.Contains(t, buf.String(), "No tasks to export.")
}

func TestExportRefusesToOverwrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

	err := text.New(fixedClock).Export(path, nil)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(data))
}
