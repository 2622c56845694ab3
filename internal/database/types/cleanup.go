package types

import (
	"time"

	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// CleanupLog records the latest archival run. Only the newest row is ever read.
type CleanupLog struct {
	bun.BaseModel `bun:"table:cleanup_logs,alias:cl"`

	ID              int64            `bun:",pk,autoincrement" json:"id"`
	LastCleanupDate time.Time        `bun:",notnull"          json:"lastCleanupDate"`
	TasksDeleted    int              `bun:",notnull"          json:"tasksDeleted"`
	CleanupType     enum.CleanupType `bun:",notnull"          json:"cleanupType"`
}

// CleanupResult summarizes one archive-and-purge run.
type CleanupResult struct {
	Found       int
	Deleted     int
	ArchivePath string
	Log         *CleanupLog
}
