package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/overseer/internal/database/dbretry"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// TaskModel handles database operations for tasks.
type TaskModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewTask creates a new task model.
func NewTask(db *bun.DB, logger *zap.Logger) *TaskModel {
	return &TaskModel{
		db:     db,
		logger: logger.Named("db_task"),
	}
}

// Create inserts a new task and fills its generated id.
func (r *TaskModel) Create(ctx context.Context, task *types.Task) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewInsert().
			Model(task).
			Returning("id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		r.logger.Debug("Created task",
			zap.Int64("task_id", task.ID),
			zap.Int64("manager_id", task.ManagerID),
			zap.Time("deadline", task.Deadline))

		return nil
	})
}

// GetByID retrieves a task with its manager.
func (r *TaskModel) GetByID(ctx context.Context, id int64) (*types.Task, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Task, error) {
		return r.getByID(ctx, r.db, id)
	})
}

// getByID loads a task through the given connection or transaction.
func (r *TaskModel) getByID(ctx context.Context, idb bun.IDB, id int64) (*types.Task, error) {
	var task types.Task

	err := idb.NewSelect().
		Model(&task).
		Relation("Manager").
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &task, nil
}

// GetActiveByManager retrieves a manager's active tasks ordered by deadline.
func (r *TaskModel) GetActiveByManager(ctx context.Context, managerID int64) ([]*types.Task, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Task, error) {
		var tasks []*types.Task

		err := r.db.NewSelect().
			Model(&tasks).
			Where("manager_id = ?", managerID).
			Where("status = ?", enum.TaskStatusActive).
			Order("deadline ASC", "id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get active tasks: %w", err)
		}

		return tasks, nil
	})
}

// GetAll retrieves the newest tasks with their managers along with the total count.
// A limit of zero returns every task.
func (r *TaskModel) GetAll(ctx context.Context, limit int) ([]*types.Task, int, error) {
	type result struct {
		tasks []*types.Task
		total int
	}

	res, err := dbretry.Operation(ctx, func(ctx context.Context) (*result, error) {
		var tasks []*types.Task

		query := r.db.NewSelect().
			Model(&tasks).
			Relation("Manager").
			Order("t.created_at DESC", "t.id DESC")

		if limit > 0 {
			query = query.Limit(limit)
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to get tasks: %w", err)
		}

		total, err := r.db.NewSelect().Model((*types.Task)(nil)).Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count tasks: %w", err)
		}

		return &result{tasks: tasks, total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	return res.tasks, res.total, nil
}

// GetActiveDueBetween retrieves active tasks with deadlines in [start, end) with their managers.
func (r *TaskModel) GetActiveDueBetween(ctx context.Context, start, end time.Time) ([]*types.Task, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Task, error) {
		var tasks []*types.Task

		err := r.db.NewSelect().
			Model(&tasks).
			Relation("Manager").
			Where("t.status = ?", enum.TaskStatusActive).
			Where("t.deadline >= ?", start.UTC()).
			Where("t.deadline < ?", end.UTC()).
			Order("t.deadline ASC", "t.id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tasks due: %w", err)
		}

		return tasks, nil
	})
}

// GetCompletedBefore retrieves completed tasks whose completion time is before cutoff,
// oldest first. The manager relation is loaded when withManager is set.
func (r *TaskModel) GetCompletedBefore(
	ctx context.Context, cutoff time.Time, withManager bool,
) ([]*types.Task, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Task, error) {
		var tasks []*types.Task

		query := r.db.NewSelect().
			Model(&tasks).
			Where("t.status = ?", enum.TaskStatusCompleted).
			Where("t.completed_at IS NOT NULL").
			Where("t.completed_at < ?", cutoff.UTC()).
			Order("t.completed_at ASC", "t.id ASC")

		if withManager {
			query = query.Relation("Manager")
		}

		if err := query.Scan(ctx); err != nil {
			return nil, fmt.Errorf("failed to get completed tasks: %w", err)
		}

		return tasks, nil
	})
}

// GetCompletedSummary counts completed tasks and finds the oldest completion time.
func (r *TaskModel) GetCompletedSummary(ctx context.Context) (*types.CompletedSummary, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.CompletedSummary, error) {
		count, err := r.db.NewSelect().
			Model((*types.Task)(nil)).
			Where("status = ?", enum.TaskStatusCompleted).
			Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count completed tasks: %w", err)
		}

		summary := &types.CompletedSummary{Count: count}
		if count == 0 {
			return summary, nil
		}

		var oldest types.Task

		err = r.db.NewSelect().
			Model(&oldest).
			Where("status = ?", enum.TaskStatusCompleted).
			Where("completed_at IS NOT NULL").
			Order("completed_at ASC").
			Limit(1).
			Scan(ctx)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to get oldest completed task: %w", err)
		}

		summary.OldestAt = oldest.CompletedAt

		return summary, nil
	})
}

// Complete marks a task completed at the given time.
func (r *TaskModel) Complete(ctx context.Context, id int64, now time.Time) (*types.Task, error) {
	var task *types.Task

	err := dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		completedAt := now.UTC()

		res, err := tx.NewUpdate().
			Model((*types.Task)(nil)).
			Set("status = ?", enum.TaskStatusCompleted).
			Set("completed_at = ?", completedAt).
			Set("updated_at = ?", completedAt).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}

		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return types.ErrTaskNotFound
		}

		task, err = r.getByID(ctx, tx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Completed task", zap.Int64("task_id", id))

	return task, nil
}

// Reschedule returns a task to active with a new deadline and the reason it was missed.
// The completion time is cleared so that only completed tasks carry one.
func (r *TaskModel) Reschedule(
	ctx context.Context, id int64, deadline time.Time, reason string, now time.Time,
) (*types.Task, error) {
	var task *types.Task

	err := dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*types.Task)(nil)).
			Set("deadline = ?", deadline.UTC()).
			Set("not_completed_reason = ?", reason).
			Set("status = ?", enum.TaskStatusActive).
			Set("completed_at = NULL").
			Set("updated_at = ?", now.UTC()).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to reschedule task: %w", err)
		}

		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return types.ErrTaskNotFound
		}

		task, err = r.getByID(ctx, tx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Rescheduled task",
		zap.Int64("task_id", id),
		zap.Time("deadline", deadline))

	return task, nil
}

// Delete removes the given tasks outside of any transaction.
func (r *TaskModel) Delete(ctx context.Context, ids []int64) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		return r.DeleteByIDs(ctx, r.db, ids)
	})
}

// DeleteByIDs removes the given tasks through idb and returns how many rows were deleted.
func (r *TaskModel) DeleteByIDs(ctx context.Context, idb bun.IDB, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := idb.NewDelete().
		Model((*types.Task)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted tasks: %w", err)
	}

	r.logger.Debug("Deleted tasks",
		zap.Int("requested", len(ids)),
		zap.Int64("deleted", affected))

	return int(affected), nil
}

// managerStatsRow is the raw aggregate scanned from the statistics query.
type managerStatsRow struct {
	UserID       int64  `bun:"user_id"`
	TelegramID   int64  `bun:"telegram_id"`
	FirstName    string `bun:"first_name"`
	Username     string `bun:"username"`
	Completed    int    `bun:"completed"`
	NotCompleted int    `bun:"not_completed"`
	Active       int    `bun:"active"`
	Total        int    `bun:"total"`
}

// GetManagerCounts aggregates task counts per manager, including managers without tasks.
// Percentages and ordering are left to the caller.
func (r *TaskModel) GetManagerCounts(ctx context.Context) ([]*types.ManagerStats, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ManagerStats, error) {
		var rows []managerStatsRow

		err := r.db.NewSelect().
			TableExpr("users AS u").
			ColumnExpr("u.id AS user_id, u.telegram_id, u.first_name, u.username").
			ColumnExpr("COALESCE(SUM(CASE WHEN t.status = ? THEN 1 ELSE 0 END), 0) AS completed",
				enum.TaskStatusCompleted).
			ColumnExpr("COALESCE(SUM(CASE WHEN t.status = ? THEN 1 ELSE 0 END), 0) AS not_completed",
				enum.TaskStatusNotCompleted).
			ColumnExpr("COALESCE(SUM(CASE WHEN t.status = ? THEN 1 ELSE 0 END), 0) AS active",
				enum.TaskStatusActive).
			ColumnExpr("COUNT(t.id) AS total").
			Join("LEFT JOIN tasks AS t ON t.manager_id = u.id").
			Where("u.role = ?", enum.RoleManager).
			GroupExpr("u.id, u.telegram_id, u.first_name, u.username").
			OrderExpr("u.id ASC").
			Scan(ctx, &rows)
		if err != nil {
			return nil, fmt.Errorf("failed to get manager statistics: %w", err)
		}

		stats := make([]*types.ManagerStats, 0, len(rows))
		for _, row := range rows {
			stats = append(stats, &types.ManagerStats{
				UserID:       row.UserID,
				TelegramID:   row.TelegramID,
				Name:         types.DisplayName(row.FirstName, row.Username, row.TelegramID),
				Completed:    row.Completed,
				NotCompleted: row.NotCompleted,
				Active:       row.Active,
				Total:        row.Total,
			})
		}

		return stats, nil
	})
}
