package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robalyx/overseer/internal/export/types"
)

// Header is the first row of every csv archive.
var Header = []string{ //nolint:gochecknoglobals // -
	"task_id", "manager", "manager_telegram_id", "text", "deadline", "created_at", "completed_at",
}

// Exporter handles exporting archived tasks to csv files.
type Exporter struct{}

// New creates a new csv exporter instance.
func New() *Exporter {
	return &Exporter{}
}

// Export writes records to a new csv file at path. The file is removed when
// any write, including the final close, fails.
func (e *Exporter) Export(path string, records []*types.ExportRecord) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}

	if err := write(file, records); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close csv file: %w", err)
	}

	return nil
}

func write(file *os.File, records []*types.ExportRecord) error {
	writer := csv.NewWriter(file)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, record := range records {
		completedAt := ""
		if record.CompletedAt != nil {
			completedAt = record.CompletedAt.UTC().Format(time.RFC3339)
		}

		if err := writer.Write([]string{
			strconv.FormatInt(record.TaskID, 10),
			record.ManagerName,
			strconv.FormatInt(record.ManagerTelegramID, 10),
			record.Text,
			record.Deadline.UTC().Format(time.RFC3339),
			record.CreatedAt.UTC().Format(time.RFC3339),
			completedAt,
		}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv file: %w", err)
	}

	return nil
}
