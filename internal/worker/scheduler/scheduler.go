package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/overseer/internal/bot/interfaces"
	"github.com/robalyx/overseer/internal/redis"
	"github.com/robalyx/overseer/internal/setup"
	"github.com/robalyx/overseer/internal/setup/telemetry"
	"github.com/robalyx/overseer/internal/worker/core"
	"github.com/robalyx/overseer/internal/worker/purge"
	"github.com/robalyx/overseer/internal/worker/reminder"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	// ReminderJob sends deadline reminders for tasks due today.
	ReminderJob = "reminder"
	// CleanupJob archives and deletes old completed tasks.
	CleanupJob = "cleanup"
)

var ErrUnknownJob = errors.New("unknown job")

// job is a named unit of scheduled work returning a short summary.
type job struct {
	name     string
	spec     string
	run      func(ctx context.Context) (string, error)
	reporter *core.StatusReporter
	logger   *zap.Logger
}

// Scheduler runs the reminder and cleanup jobs on their cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]*job
	monitor *core.Monitor
	logger  *zap.Logger
}

// New creates a scheduler for the configured jobs.
func New(app *setup.App, messenger interfaces.Messenger) (*Scheduler, error) {
	logger := app.Logger.Named("scheduler")

	monitor, err := newMonitor(app, logger)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(app.Config.Worker.Location()),
			cron.WithLogger(cronLogger{logger.Sugar()}),
			cron.WithChain(
				cron.Recover(cronLogger{logger.Sugar()}),
				cron.SkipIfStillRunning(cronLogger{logger.Sugar()}),
			),
		),
		jobs:    make(map[string]*job),
		monitor: monitor,
		logger:  logger,
	}

	reminderWorker := reminder.New(app, messenger, jobLogger(app, ReminderJob))
	purgeWorker := purge.New(app, jobLogger(app, CleanupJob))

	if err := s.add(ReminderJob, app.Config.Worker.ReminderSchedule, func(ctx context.Context) (string, error) {
		result, err := reminderWorker.Run(ctx)
		if err != nil {
			return "", err
		}
		return result.String(), nil
	}); err != nil {
		return nil, err
	}

	if err := s.add(CleanupJob, app.Config.Worker.CleanupSchedule, func(ctx context.Context) (string, error) {
		result, err := purgeWorker.Run(ctx)
		switch {
		case err != nil:
			return "", err
		case result == nil:
			return "not due", nil
		default:
			return fmt.Sprintf("%d found, %d deleted", result.Found, result.Deleted), nil
		}
	}); err != nil {
		return nil, err
	}

	return s, nil
}

// newMonitor stores job statuses in Redis when it is configured.
func newMonitor(app *setup.App, logger *zap.Logger) (*core.Monitor, error) {
	if !app.RedisManager.Enabled() {
		return core.NewMonitor(nil, logger), nil
	}

	client, err := app.RedisManager.GetClient(redis.WorkerStatusDBIndex)
	if err != nil {
		return nil, err
	}

	return core.NewMonitor(client, logger), nil
}

// jobLogger gives each job its own log file when a log manager is available.
func jobLogger(app *setup.App, name string) *zap.Logger {
	if app.LogManager == nil {
		return app.Logger
	}
	return app.LogManager.GetWorkerLogger(name + "_worker")
}

func (s *Scheduler) add(name, spec string, run func(context.Context) (string, error)) error {
	j := &job{
		name:     name,
		spec:     spec,
		run:      run,
		reporter: core.NewStatusReporter(s.monitor, name, s.logger),
		logger:   s.logger.With(zap.String("job", name)),
	}

	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}

	s.jobs[name] = j

	return nil
}

// Monitor returns the job status monitor.
func (s *Scheduler) Monitor() *core.Monitor {
	return s.monitor
}

// Start runs the jobs on schedule until ctx is done, then waits for running
// jobs to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	entries := make(map[cron.EntryID]string, len(s.jobs))

	for _, j := range s.jobs {
		id, err := s.cron.AddFunc(j.spec, func() { _ = s.execute(ctx, j) })
		if err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", j.name, err)
		}
		entries[id] = j.name
	}

	s.cron.Start()

	for _, entry := range s.cron.Entries() {
		s.logger.Info("Scheduled job",
			zap.String("job", entries[entry.ID]),
			zap.Time("next_run", entry.Next))
	}

	<-ctx.Done()

	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()

	return nil
}

// Trigger runs a job immediately, outside of its schedule.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	return s.execute(ctx, j)
}

// execute runs a job inside a span and records its status.
func (s *Scheduler) execute(ctx context.Context, j *job) error {
	ctx, span := telemetry.Tracer().Start(ctx, "worker."+j.name)
	defer span.End()

	start := time.Now()
	j.reporter.Begin(ctx)
	j.logger.Info("Job started")

	summary, err := j.run(ctx)

	j.reporter.Finish(ctx, summary, err)
	span.SetAttributes(attribute.String("job.summary", summary))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		j.logger.Error("Job failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return err
	}

	j.logger.Info("Job finished",
		zap.String("summary", summary),
		zap.Duration("duration", time.Since(start)))

	return nil
}

// cronLogger adapts zap to the cron logger interface.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
