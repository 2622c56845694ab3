package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/robalyx/overseer/internal/database"
	"github.com/robalyx/overseer/internal/database/migrations"
	"github.com/robalyx/overseer/internal/setup/config"
	"github.com/robalyx/overseer/internal/setup/telemetry"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// ErrMigrationName is returned when create is called without exactly one name.
var ErrMigrationName = errors.New("expected exactly one migration name")

// schemaTool runs migration commands against the configured store.
type schemaTool struct {
	db       *bun.DB
	migrator *migrate.Migrator
	logger   *zap.Logger
}

func main() {
	tool := &schemaTool{}

	app := &cli.Command{
		Name:  "overseer-db",
		Usage: "Manage the overseer database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "directory holding common.toml, bot.toml and worker.toml",
			},
		},
		Before: tool.open,
		After:  tool.close,
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending migrations",
				Action: tool.migrate,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent migration group",
				Action: tool.rollback,
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they are applied",
				Action: tool.status,
			},
			{
				Name:      "create",
				Usage:     "Scaffold a new Go migration",
				ArgsUsage: "NAME",
				Action:    tool.create,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// open loads the configuration and connects to the database.
func (t *schemaTool) open(ctx context.Context, c *cli.Command) (context.Context, error) {
	paths := config.DefaultConfigPaths()
	if dir := c.String("config"); dir != "" {
		paths = []string{dir}
	}

	cfg, _, err := config.LoadConfigFrom(paths)
	if err != nil {
		return ctx, fmt.Errorf("failed to load config: %w", err)
	}

	t.logger, _, err = telemetry.NewManager(telemetry.ServiceDB, &cfg.Common.Debug).GetLoggers()
	if err != nil {
		return ctx, fmt.Errorf("failed to create logger: %w", err)
	}

	t.db, err = database.Open(ctx, &cfg.Common.Database, t.logger)
	if err != nil {
		return ctx, fmt.Errorf("failed to connect to database: %w", err)
	}

	t.migrator = migrate.NewMigrator(t.db, migrations.Migrations, migrate.WithMarkAppliedOnSuccess(true))

	return ctx, t.migrator.Init(ctx)
}

func (t *schemaTool) close(context.Context, *cli.Command) error {
	if t.logger != nil {
		_ = t.logger.Sync()
	}

	if t.db == nil {
		return nil
	}

	return t.db.Close()
}

func (t *schemaTool) migrate(ctx context.Context, _ *cli.Command) error {
	group, err := t.migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}

	if group.IsZero() {
		t.logger.Info("Schema is up to date")
		return nil
	}

	t.logger.Info("Applied migrations",
		zap.Int64("group_id", group.ID),
		zap.Int("count", len(group.Migrations)))

	return nil
}

func (t *schemaTool) rollback(ctx context.Context, _ *cli.Command) error {
	group, err := t.migrator.Rollback(ctx)
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	if group.IsZero() {
		t.logger.Info("Nothing to roll back")
		return nil
	}

	t.logger.Info("Rolled back migrations",
		zap.Int64("group_id", group.ID),
		zap.Int("count", len(group.Migrations)))

	return nil
}

func (t *schemaTool) status(ctx context.Context, _ *cli.Command) error {
	ms, err := t.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	for _, m := range ms {
		t.logger.Info("Migration",
			zap.String("name", m.Name),
			zap.String("comment", m.Comment),
			zap.Bool("applied", m.IsApplied()),
			zap.Int64("group_id", m.GroupID))
	}

	t.logger.Info("Summary",
		zap.Int("total", len(ms)),
		zap.Int("pending", len(ms.Unapplied())))

	return nil
}

func (t *schemaTool) create(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return ErrMigrationName
	}

	mf, err := t.migrator.CreateGoMigration(ctx, c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	t.logger.Info("Created migration", zap.String("path", mf.Path))

	return nil
}
