package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/robalyx/overseer/internal/database/models"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// MinTaskTextLength is the shortest accepted task body after trimming.
	MinTaskTextLength = 3
	// MinReasonLength is the shortest accepted reason for a missed task.
	MinReasonLength = 5
)

var (
	ErrTaskTextTooShort  = errors.New("task text is too short")
	ErrReasonTooShort    = errors.New("reason is too short")
	ErrDeadlineNotFuture = errors.New("deadline must be after today")
	ErrNotAManager       = errors.New("user is not a manager")
)

// TaskService handles task lifecycle and statistics.
type TaskService struct {
	model     *models.TaskModel
	userModel *models.UserModel
	logger    *zap.Logger
}

// NewTask creates a new task service.
func NewTask(model *models.TaskModel, userModel *models.UserModel, logger *zap.Logger) *TaskService {
	return &TaskService{
		model:     model,
		userModel: userModel,
		logger:    logger.Named("task_service"),
	}
}

// EndOfDay returns 23:59:59 UTC on the calendar date of t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, time.UTC)
}

// IsFutureDate reports whether deadline falls on a calendar date after the UTC date of now.
func IsFutureDate(deadline, now time.Time) bool {
	return EndOfDay(deadline).After(EndOfDay(now.UTC()))
}

// CreateTask assigns a new active task to a manager. The deadline is
// normalized to the end of its day and must fall after today.
func (s *TaskService) CreateTask(
	ctx context.Context, managerID int64, text string, deadline time.Time,
) (*types.Task, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < MinTaskTextLength {
		return nil, ErrTaskTextTooShort
	}

	now := time.Now().UTC()
	if !IsFutureDate(deadline, now) {
		return nil, ErrDeadlineNotFuture
	}

	manager, err := s.userModel.GetByID(ctx, managerID)
	if err != nil {
		return nil, err
	}

	if manager.Role != enum.RoleManager {
		return nil, ErrNotAManager
	}

	task := &types.Task{
		ManagerID: managerID,
		Manager:   manager,
		Text:      text,
		Deadline:  EndOfDay(deadline),
		Status:    enum.TaskStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.model.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("Task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("manager_telegram_id", manager.TelegramID),
		zap.Time("deadline", task.Deadline))

	return task, nil
}

// CompleteTask marks a task completed. Completing an already completed task
// stamps a new completion time.
func (s *TaskService) CompleteTask(ctx context.Context, taskID int64) (*types.Task, error) {
	task, err := s.model.Complete(ctx, taskID, time.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task completed", zap.Int64("task_id", taskID))

	return task, nil
}

// RescheduleTask records why a task was missed and returns it to active with a new deadline.
func (s *TaskService) RescheduleTask(
	ctx context.Context, taskID int64, deadline time.Time, reason string,
) (*types.Task, error) {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < MinReasonLength {
		return nil, ErrReasonTooShort
	}

	now := time.Now()
	if !IsFutureDate(deadline, now) {
		return nil, ErrDeadlineNotFuture
	}

	task, err := s.model.Reschedule(ctx, taskID, EndOfDay(deadline), reason, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task rescheduled",
		zap.Int64("task_id", taskID),
		zap.Time("deadline", task.Deadline))

	return task, nil
}

// GetTask retrieves a task with its manager.
func (s *TaskService) GetTask(ctx context.Context, taskID int64) (*types.Task, error) {
	return s.model.GetByID(ctx, taskID)
}

// GetActiveTasks returns a manager's active tasks, nearest deadline first.
func (s *TaskService) GetActiveTasks(ctx context.Context, managerID int64) ([]*types.Task, error) {
	return s.model.GetActiveByManager(ctx, managerID)
}

// GetAllTasks returns up to limit tasks, newest first, and the total number of tasks.
func (s *TaskService) GetAllTasks(ctx context.Context, limit int) ([]*types.Task, int, error) {
	return s.model.GetAll(ctx, limit)
}

// GetDueToday returns active tasks whose deadline falls on the UTC calendar date of now.
func (s *TaskService) GetDueToday(ctx context.Context, now time.Time) ([]*types.Task, error) {
	y, m, d := now.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	return s.model.GetActiveDueBetween(ctx, start, start.Add(24*time.Hour))
}

// GetCompletedOlderThan returns completed tasks finished more than retention ago.
func (s *TaskService) GetCompletedOlderThan(
	ctx context.Context, now time.Time, retention time.Duration, withManager bool,
) ([]*types.Task, error) {
	return s.model.GetCompletedBefore(ctx, now.Add(-retention), withManager)
}

// DeleteTasks removes the given tasks and returns how many were deleted.
func (s *TaskService) DeleteTasks(ctx context.Context, ids []int64) (int, error) {
	return s.model.Delete(ctx, ids)
}

// GetRankedStats returns manager statistics ordered by completion percentage
// and then by completed count.
func (s *TaskService) GetRankedStats(ctx context.Context) ([]*types.ManagerStats, error) {
	stats, err := s.getStats(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Percentage != stats[j].Percentage {
			return stats[i].Percentage > stats[j].Percentage
		}
		return stats[i].Completed > stats[j].Completed
	})

	return stats, nil
}

// GetRoster returns manager statistics ordered alphabetically by display name.
func (s *TaskService) GetRoster(ctx context.Context) ([]*types.ManagerStats, error) {
	stats, err := s.getStats(ctx)
	if err != nil {
		return nil, err
	}

	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(stats, func(i, j int) bool {
		return col.CompareString(stats[i].Name, stats[j].Name) < 0
	})

	return stats, nil
}

// getStats loads the per-manager counts and fills in the completion percentage.
func (s *TaskService) getStats(ctx context.Context) ([]*types.ManagerStats, error) {
	stats, err := s.model.GetManagerCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get manager statistics: %w", err)
	}

	for _, stat := range stats {
		stat.Percentage = CompletionPercentage(stat.Completed, stat.Total)
	}

	return stats, nil
}

// CompletionPercentage returns completed/total as a percentage rounded to two decimals.
func CompletionPercentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}

	return math.Round(float64(completed)/float64(total)*100*100) / 100
}
