package types

import (
	"time"

	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// Task represents a deadlined assignment owned by a manager.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID                 int64           `bun:",pk,autoincrement"                 json:"id"`
	ManagerID          int64           `bun:",notnull"                          json:"managerId"`
	Manager            *User           `bun:"rel:belongs-to,join:manager_id=id" json:"manager,omitempty"`
	Text               string          `bun:",notnull"                          json:"text"`
	Deadline           time.Time       `bun:",notnull"                          json:"deadline"`
	Status             enum.TaskStatus `bun:",notnull,default:'active'"         json:"status"`
	CompletedAt        *time.Time      `bun:"completed_at"                      json:"completedAt,omitempty"`
	NotCompletedReason string          `bun:",nullzero"                         json:"notCompletedReason,omitempty"`
	CreatedAt          time.Time       `bun:",notnull"                          json:"createdAt"`
	UpdatedAt          time.Time       `bun:",notnull"                          json:"updatedAt"`
}

// ManagerName returns the display name of the owning manager when loaded.
func (t *Task) ManagerName() string {
	if t.Manager == nil {
		return "N/A"
	}
	return t.Manager.DisplayName()
}
