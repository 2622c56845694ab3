package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			// Manager task lists and statistics
			`CREATE INDEX IF NOT EXISTS idx_tasks_manager_status ON tasks (manager_id, status)`,
			// Reminder sweep
			`CREATE INDEX IF NOT EXISTS idx_tasks_status_deadline ON tasks (status, deadline)`,
			// Retention window lookup
			`CREATE INDEX IF NOT EXISTS idx_tasks_status_completed_at ON tasks (status, completed_at)`,
			`CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks (created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role)`,
			`CREATE INDEX IF NOT EXISTS idx_group_members_group_status ON group_members (group_id, status)`,
		}

		for _, index := range indexes {
			if _, err := db.NewRaw(index).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		indexes := []string{
			"idx_tasks_manager_status",
			"idx_tasks_status_deadline",
			"idx_tasks_status_completed_at",
			"idx_tasks_created_at",
			"idx_users_role",
			"idx_group_members_group_status",
		}

		for _, index := range indexes {
			if _, err := db.NewRaw("DROP INDEX IF EXISTS " + index).Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop index %s: %w", index, err)
			}
		}

		return nil
	})
}
