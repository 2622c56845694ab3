package text

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/robalyx/overseer/internal/export/types"
)

const (
	// TimeLayout is how timestamps appear in the report.
	TimeLayout = "02.01.2006 15:04:05"

	ruleWidth = 60
)

// Exporter writes human-readable archive reports.
type Exporter struct {
	now func() time.Time
}

// New creates a new text exporter stamping reports with the given clock.
func New(now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{now: now}
}

// Export writes the report to path, failing if the file already exists.
// A report that could not be written completely is removed.
func (e *Exporter) Export(path string, records []*types.ExportRecord) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := e.Write(file, records); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	return nil
}

// Write renders the report to w.
func (e *Exporter) Write(w io.Writer, records []*types.ExportRecord) error {
	buf := bufio.NewWriter(w)
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(buf, rule)
	fmt.Fprintf(buf, "COMPLETED TASKS (Exported: %s)\n", e.now().Format(TimeLayout))
	fmt.Fprintln(buf, rule)
	fmt.Fprintln(buf)

	if len(records) == 0 {
		fmt.Fprintln(buf, "No tasks to export.")
	}

	for _, record := range records {
		completedAt := "N/A"
		if record.CompletedAt != nil {
			completedAt = record.CompletedAt.Format(TimeLayout)
		}

		fmt.Fprintf(buf, "Task #%d\n", record.TaskID)
		fmt.Fprintf(buf, "Manager: %s\n", record.ManagerName)
		fmt.Fprintf(buf, "Task: %s\n", record.Text)
		fmt.Fprintf(buf, "Deadline: %s\n", record.Deadline.Format(TimeLayout))
		fmt.Fprintf(buf, "Completed: %s\n", completedAt)
		fmt.Fprintln(buf, strings.Repeat("-", ruleWidth))
		fmt.Fprintln(buf)
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
