package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/overseer/internal/database/dbretry"
	"github.com/robalyx/overseer/internal/database/models"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Exporter writes an archive of tasks and returns where it was written.
type Exporter interface {
	Export(ctx context.Context, tasks []*types.Task) (string, error)
}

// CleanupService archives and purges completed tasks.
type CleanupService struct {
	db           *bun.DB
	taskModel    *models.TaskModel
	cleanupModel *models.CleanupModel
	logger       *zap.Logger
}

// NewCleanup creates a new cleanup service.
func NewCleanup(
	db *bun.DB, taskModel *models.TaskModel, cleanupModel *models.CleanupModel, logger *zap.Logger,
) *CleanupService {
	return &CleanupService{
		db:           db,
		taskModel:    taskModel,
		cleanupModel: cleanupModel,
		logger:       logger.Named("cleanup_service"),
	}
}

// GetLatest returns the newest cleanup log, or nil when cleanup never ran.
func (s *CleanupService) GetLatest(ctx context.Context) (*types.CleanupLog, error) {
	return s.cleanupModel.GetLatest(ctx)
}

// IsDue reports whether the scheduled cleanup should run: either no cleanup
// was ever logged or at least interval has passed since the logged one.
func (s *CleanupService) IsDue(ctx context.Context, now time.Time, interval time.Duration) (bool, error) {
	latest, err := s.cleanupModel.GetLatest(ctx)
	if err != nil {
		return false, err
	}

	if latest == nil {
		return true, nil
	}

	return now.Sub(latest.LastCleanupDate) >= interval, nil
}

// GetCandidates returns completed tasks finished before now minus retention,
// oldest first, with their managers loaded.
func (s *CleanupService) GetCandidates(
	ctx context.Context, now time.Time, retention time.Duration,
) ([]*types.Task, error) {
	return s.taskModel.GetCompletedBefore(ctx, now.Add(-retention), true)
}

// Commit deletes the archived tasks and records the run in one transaction.
func (s *CleanupService) Commit(
	ctx context.Context, ids []int64, cleanupType enum.CleanupType, now time.Time,
) (int, *types.CleanupLog, error) {
	var (
		deleted int
		log     *types.CleanupLog
	)

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		var err error

		deleted, err = s.taskModel.DeleteByIDs(ctx, tx, ids)
		if err != nil {
			return err
		}

		log, err = s.cleanupModel.UpsertLatest(ctx, tx, deleted, cleanupType, now)

		return err
	})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to commit cleanup: %w", err)
	}

	return deleted, log, nil
}

// Run archives and then deletes every completed task past the retention
// window. Nothing is deleted and the log is left alone when there is nothing
// to clean or when the export fails.
func (s *CleanupService) Run(
	ctx context.Context, exporter Exporter, cleanupType enum.CleanupType, now time.Time, retention time.Duration,
) (*types.CleanupResult, error) {
	tasks, err := s.GetCandidates(ctx, now, retention)
	if err != nil {
		return nil, err
	}

	result := &types.CleanupResult{Found: len(tasks)}
	if len(tasks) == 0 {
		s.logger.Info("No completed tasks to clean up",
			zap.String("type", cleanupType.String()))
		return result, nil
	}

	path, err := exporter.Export(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to export tasks: %w", err)
	}
	result.ArchivePath = path

	ids := make([]int64, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}

	result.Deleted, result.Log, err = s.Commit(ctx, ids, cleanupType, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Cleaned up completed tasks",
		zap.String("type", cleanupType.String()),
		zap.Int("deleted", result.Deleted),
		zap.String("archive", path))

	return result, nil
}

// GetCompletedSummary reports how many completed tasks are stored and when the oldest finished.
func (s *CleanupService) GetCompletedSummary(ctx context.Context) (*types.CompletedSummary, error) {
	return s.taskModel.GetCompletedSummary(ctx)
}
