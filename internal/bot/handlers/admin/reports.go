package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/bot/views/admin"
	"github.com/robalyx/overseer/internal/bot/views/chart"
	"github.com/robalyx/overseer/internal/bot/views/group"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"go.uber.org/zap"
)

// showAllTasks lists tasks newest first up to the listing limit.
func (l *Layout) showAllTasks(ctx context.Context, hc *handlers.Context) error {
	tasks, total, err := l.db.Service().Task().GetAllTasks(ctx, constants.AllTasksLimit)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	return hc.Reply(ctx, l.messenger, admin.NewAllTasksBuilder(tasks, total).Build())
}

// showRating shows managers ranked by completion.
func (l *Layout) showRating(ctx context.Context, hc *handlers.Context) error {
	stats, err := l.db.Service().Task().GetRankedStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get manager rating: %w", err)
	}

	return hc.Reply(ctx, l.messenger, admin.NewRatingBuilder(stats).Build())
}

// sendRatingChart posts the rating as a bar chart image.
func (l *Layout) sendRatingChart(ctx context.Context, hc *handlers.Context) error {
	stats, err := l.db.Service().Task().GetRankedStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get manager rating: %w", err)
	}

	buf, err := chart.NewLeaderboardBuilder(stats).Build()
	if errors.Is(err, chart.ErrNoManagers) {
		return hc.Reply(ctx, l.messenger, admin.NewRatingBuilder(nil).Build())
	}
	if err != nil {
		return err
	}

	return l.messenger.SendPhoto(ctx, hc.ChatID, "rating.png", buf.Bytes(), "🏆 <b>Manager rating</b>")
}

// showRoster lists managers alphabetically.
func (l *Layout) showRoster(ctx context.Context, hc *handlers.Context) error {
	stats, err := l.db.Service().Task().GetRoster(ctx)
	if err != nil {
		return fmt.Errorf("failed to get employees: %w", err)
	}

	return hc.Reply(ctx, l.messenger, admin.NewRosterBuilder(stats).Build())
}

// cleanup archives and deletes old completed tasks without waiting for the schedule.
func (l *Layout) cleanup(ctx context.Context, hc *handlers.Context) error {
	now := l.now()

	result, err := l.db.Service().Cleanup().Run(
		ctx, l.exporter, enum.CleanupTypeManual, now, l.workerCfg.Retention(),
	)
	if err != nil {
		return fmt.Errorf("failed to clean up tasks: %w", err)
	}

	if result.Found == 0 {
		summary, err := l.db.Service().Cleanup().GetCompletedSummary(ctx)
		if err != nil {
			return fmt.Errorf("failed to summarize completed tasks: %w", err)
		}

		return hc.Reply(ctx, l.messenger, admin.CleanupNothing(summary, l.workerCfg.RetentionDays, now))
	}

	if err := hc.Reply(ctx, l.messenger, admin.CleanupDone(result)); err != nil {
		return err
	}

	if err := l.messenger.SendDocument(ctx, hc.ChatID, result.ArchivePath, "💾 Archived tasks"); err != nil {
		l.logger.Warn("Failed to send archive", zap.String("path", result.ArchivePath), zap.Error(err))
	}

	return nil
}

// showGroupAnalysis refreshes member counts and shows churn per group.
func (l *Layout) showGroupAnalysis(ctx context.Context, hc *handlers.Context) error {
	reports, err := l.db.Service().Membership().GetReports(ctx, l.messenger)
	if err != nil {
		return fmt.Errorf("failed to build group reports: %w", err)
	}

	return hc.Reply(ctx, l.messenger, group.NewAnalysisBuilder(reports, l.botCfg.Location()).Build())
}
