package purge

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/overseer/internal/database"
	"github.com/robalyx/overseer/internal/database/service"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/robalyx/overseer/internal/setup"
	"go.uber.org/zap"
)

// Worker archives and deletes old completed tasks on a weekly cadence.
type Worker struct {
	db        database.Client
	exporter  service.Exporter
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// New creates a purge worker.
func New(app *setup.App, logger *zap.Logger) *Worker {
	return &Worker{
		db:        app.DB,
		exporter:  app.Exporter,
		retention: app.Config.Worker.Retention(),
		interval:  app.Config.Worker.CleanupInterval(),
		now:       time.Now,
		logger:    logger.Named("purge_worker"),
	}
}

// WithClock replaces the time source.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

// Run performs an automatic cleanup when none was logged yet or the logged
// one is at least the cleanup interval old. It returns nil when not due.
func (w *Worker) Run(ctx context.Context) (*types.CleanupResult, error) {
	now := w.now()

	due, err := w.db.Service().Cleanup().IsDue(ctx, now, w.interval)
	if err != nil {
		return nil, fmt.Errorf("failed to check cleanup schedule: %w", err)
	}

	if !due {
		w.logger.Info("Skipping automatic cleanup, last cleanup was recent")
		return nil, nil //nolint:nilnil // not due is not an error
	}

	result, err := w.db.Service().Cleanup().Run(ctx, w.exporter, enum.CleanupTypeAuto, now, w.retention)
	if err != nil {
		return nil, err
	}

	if result.Found == 0 {
		w.logger.Info("No old completed tasks found")
	}

	return result, nil
}
