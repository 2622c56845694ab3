package reminder

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robalyx/overseer/internal/bot/interfaces"
	"github.com/robalyx/overseer/internal/bot/views/manager"
	"github.com/robalyx/overseer/internal/database"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/setup"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Result summarizes one reminder sweep.
type Result struct {
	Due    int
	Sent   int
	Failed int
}

// String renders the result for status reports.
func (r *Result) String() string {
	return fmt.Sprintf("%d due, %d sent, %d failed", r.Due, r.Sent, r.Failed)
}

// Worker reminds managers of active tasks due today.
type Worker struct {
	db          database.Client
	messenger   interfaces.Messenger
	concurrency int
	now         func() time.Time
	logger      *zap.Logger
}

// New creates a reminder worker.
func New(app *setup.App, messenger interfaces.Messenger, logger *zap.Logger) *Worker {
	return &Worker{
		db:          app.DB,
		messenger:   messenger,
		concurrency: max(app.Config.Worker.ReminderConcurrency, 1),
		now:         time.Now,
		logger:      logger.Named("reminder_worker"),
	}
}

// WithClock replaces the time source.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

// Run sends one reminder per task due today. A failed delivery is logged and
// does not stop the other reminders.
func (w *Worker) Run(ctx context.Context) (*Result, error) {
	tasks, err := w.db.Service().Task().GetDueToday(ctx, w.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks due today: %w", err)
	}

	result := &Result{Due: len(tasks)}
	if len(tasks) == 0 {
		w.logger.Info("No tasks due today")
		return result, nil
	}

	var sent, failed atomic.Int64

	p := pool.New().WithMaxGoroutines(w.concurrency)
	for _, task := range tasks {
		p.Go(func() {
			if err := w.remind(ctx, task); err != nil {
				failed.Add(1)
				w.logger.Error("Failed to send deadline reminder",
					zap.Int64("task_id", task.ID),
					zap.Int64("manager_id", task.ManagerID),
					zap.Error(err))
				return
			}

			sent.Add(1)
			w.logger.Info("Sent deadline reminder",
				zap.Int64("task_id", task.ID),
				zap.Int64("manager_telegram_id", task.Manager.TelegramID))
		})
	}
	p.Wait()

	result.Sent = int(sent.Load())
	result.Failed = int(failed.Load())

	return result, nil
}

func (w *Worker) remind(ctx context.Context, task *types.Task) error {
	if task.Manager == nil {
		return fmt.Errorf("task %d has no manager loaded", task.ID)
	}

	_, err := w.messenger.Send(ctx, task.Manager.TelegramID, manager.Reminder(task))
	return err
}
