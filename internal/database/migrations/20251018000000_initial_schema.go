package migrations

import (
	"context"
	"fmt"

	"github.com/robalyx/overseer/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		tables := []struct {
			model       any
			foreignKeys []string
		}{
			{(*types.User)(nil), nil},
			{(*types.Task)(nil), []string{
				`("manager_id") REFERENCES "users" ("id") ON DELETE CASCADE`,
			}},
			{(*types.GroupAnalytics)(nil), nil},
			{(*types.GroupMember)(nil), []string{
				`("group_id") REFERENCES "group_analytics" ("id") ON DELETE CASCADE`,
			}},
			{(*types.CleanupLog)(nil), nil},
		}

		for _, table := range tables {
			query := db.NewCreateTable().
				Model(table.model).
				IfNotExists()

			for _, fk := range table.foreignKeys {
				query = query.ForeignKey(fk)
			}

			if _, err := query.Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table %T: %w", table.model, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.CleanupLog)(nil),
			(*types.GroupMember)(nil),
			(*types.GroupAnalytics)(nil),
			(*types.Task)(nil),
			(*types.User)(nil),
		}

		for _, model := range models {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
