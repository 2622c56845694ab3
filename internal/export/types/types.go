package types

import (
	"time"

	dbTypes "github.com/robalyx/overseer/internal/database/types"
)

// ExportRecord is one archived task.
type ExportRecord struct {
	TaskID            int64
	ManagerName       string
	ManagerTelegramID int64
	Text              string
	Deadline          time.Time
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// FromTasks converts tasks with loaded managers into export records.
func FromTasks(tasks []*dbTypes.Task) []*ExportRecord {
	records := make([]*ExportRecord, len(tasks))
	for i, task := range tasks {
		record := &ExportRecord{
			TaskID:      task.ID,
			ManagerName: task.ManagerName(),
			Text:        task.Text,
			Deadline:    task.Deadline,
			CreatedAt:   task.CreatedAt,
			CompletedAt: task.CompletedAt,
		}
		if task.Manager != nil {
			record.ManagerTelegramID = task.Manager.TelegramID
		}
		records[i] = record
	}

	return records
}
