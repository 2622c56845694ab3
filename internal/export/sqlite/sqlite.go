package sqlite

import (
	"fmt"
	"time"

	"github.com/robalyx/overseer/internal/export/types"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Exporter handles exporting archived tasks to standalone SQLite databases.
type Exporter struct{}

// New creates a new SQLite exporter instance.
func New() *Exporter {
	return &Exporter{}
}

// Export writes records to a new SQLite database at path.
func (e *Exporter) Export(path string, records []*types.ExportRecord) (err error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer conn.Close()

	err = sqlitex.ExecuteScript(conn, `
		CREATE TABLE archived_tasks (
			task_id INTEGER PRIMARY KEY,
			manager TEXT NOT NULL,
			manager_telegram_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			deadline TEXT NOT NULL,
			created_at TEXT NOT NULL,
			completed_at TEXT
		);
	`, nil)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer endFn(&err)

	for _, record := range records {
		var completedAt any
		if record.CompletedAt != nil {
			completedAt = record.CompletedAt.UTC().Format(time.RFC3339)
		}

		err = sqlitex.Execute(conn,
			`INSERT INTO archived_tasks
				(task_id, manager, manager_telegram_id, text, deadline, created_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					record.TaskID,
					record.ManagerName,
					record.ManagerTelegramID,
					record.Text,
					record.Deadline.UTC().Format(time.RFC3339),
					record.CreatedAt.UTC().Format(time.RFC3339),
					completedAt,
				},
			})
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return nil
}
