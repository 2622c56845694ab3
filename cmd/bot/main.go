package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robalyx/overseer/internal/bot"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/robalyx/overseer/internal/setup"
	"github.com/robalyx/overseer/internal/setup/telemetry"
	"github.com/robalyx/overseer/internal/telegram"
	"github.com/robalyx/overseer/internal/worker/scheduler"
	"github.com/robalyx/overseer/pkg/utils"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:   "overseer",
		Usage:  "Telegram bot for task assignment and group membership tracking",
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Start the bot and the scheduled jobs",
				Action: runBot,
			},
			{
				Name:   "cleanup",
				Usage:  "Archive and delete old completed tasks now",
				Action: runCleanup,
			},
			{
				Name:   "remind",
				Usage:  "Send reminders for tasks due today",
				Action: runRemind,
			},
			{
				Name:   "status",
				Usage:  "Show the latest run of each scheduled job",
				Action: showStatus,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

// runBot polls Telegram and runs the scheduler until interrupted.
func runBot(ctx context.Context, _ *cli.Command) error {
	app, err := setup.InitializeApp(ctx, telemetry.ServiceBot)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(context.Background())

	client, err := newClient(app)
	if err != nil {
		return err
	}

	sessionManager, err := bot.NewSessionManager(app)
	if err != nil {
		return err
	}

	sched, err := scheduler.New(app, client)
	if err != nil {
		return err
	}

	telegramBot := bot.New(app, client, sessionManager)

	app.Logger.Info("Bot has been started. Waiting for interrupt signal to gracefully shutdown...",
		zap.String("username", client.Username()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return telegramBot.Run(gctx, client.Updates(gctx))
	})
	g.Go(func() error {
		return sched.Start(gctx)
	})

	return g.Wait()
}

// runCleanup performs a manual cleanup from the shell.
func runCleanup(ctx context.Context, _ *cli.Command) error {
	app, err := setup.InitializeApp(ctx, telemetry.ServiceCLI)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(context.Background())

	result, err := app.DB.Service().Cleanup().Run(
		ctx, app.Exporter, enum.CleanupTypeManual, time.Now(), app.Config.Worker.Retention(),
	)
	if err != nil {
		return err
	}

	if result.Found == 0 {
		app.Logger.Info("No completed tasks older than the retention period",
			zap.Int("retention_days", app.Config.Worker.RetentionDays))
		return nil
	}

	app.Logger.Info("Cleanup finished",
		zap.Int("deleted", result.Deleted),
		zap.String("archive", result.ArchivePath))

	return nil
}

// runRemind performs one reminder sweep.
func runRemind(ctx context.Context, _ *cli.Command) error {
	app, err := setup.InitializeApp(ctx, telemetry.ServiceCLI)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(context.Background())

	client, err := newClient(app)
	if err != nil {
		return err
	}

	sched, err := scheduler.New(app, client)
	if err != nil {
		return err
	}

	return sched.Trigger(ctx, scheduler.ReminderJob)
}

// showStatus logs the stored job statuses.
func showStatus(ctx context.Context, _ *cli.Command) error {
	app, err := setup.InitializeApp(ctx, telemetry.ServiceCLI)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Cleanup(context.Background())

	sched, err := scheduler.New(app, nil)
	if err != nil {
		return err
	}

	if !sched.Monitor().Enabled() {
		app.Logger.Info("Job statuses are only kept when Redis is configured")
		return nil
	}

	statuses, err := sched.Monitor().GetAllStatuses(ctx)
	if err != nil {
		return err
	}

	if len(statuses) == 0 {
		app.Logger.Info("No job has reported yet")
	}

	for _, status := range statuses {
		app.Logger.Info("Job status",
			zap.String("job", status.Job),
			zap.Bool("running", status.Running),
			zap.Bool("healthy", status.IsHealthy),
			zap.String("message", status.Message),
			zap.Time("started_at", status.StartedAt),
			zap.Duration("duration", status.Duration))
	}

	return nil
}

func newClient(app *setup.App) (*telegram.Client, error) {
	retry := app.Config.Common.Retry

	return telegram.New(
		app.Config.Bot.Token,
		app.Config.Bot.PollTimeout,
		utils.GetTelegramRetryOptions(retry.MaxRetries, retry.Delay, retry.MaxDelay),
		app.Logger,
	)
}
