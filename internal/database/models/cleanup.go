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

// CleanupModel handles database operations for the cleanup log.
type CleanupModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewCleanup creates a new cleanup model.
func NewCleanup(db *bun.DB, logger *zap.Logger) *CleanupModel {
	return &CleanupModel{
		db:     db,
		logger: logger.Named("db_cleanup"),
	}
}

// GetLatest retrieves the newest cleanup log row, returning nil when none exists.
func (r *CleanupModel) GetLatest(ctx context.Context) (*types.CleanupLog, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.CleanupLog, error) {
		return r.getLatest(ctx, r.db)
	})
}

func (r *CleanupModel) getLatest(ctx context.Context, idb bun.IDB) (*types.CleanupLog, error) {
	var log types.CleanupLog

	err := idb.NewSelect().
		Model(&log).
		Order("id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // no cleanup has run yet
		}
		return nil, fmt.Errorf("failed to get latest cleanup log: %w", err)
	}

	return &log, nil
}

// UpsertLatest overwrites the newest cleanup log row, inserting the first one
// when the table is empty.
func (r *CleanupModel) UpsertLatest(
	ctx context.Context, idb bun.IDB, deleted int, cleanupType enum.CleanupType, now time.Time,
) (*types.CleanupLog, error) {
	log, err := r.getLatest(ctx, idb)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = &types.CleanupLog{}
	}

	log.LastCleanupDate = now.UTC()
	log.TasksDeleted = deleted
	log.CleanupType = cleanupType

	if log.ID == 0 {
		_, err = idb.NewInsert().
			Model(log).
			Returning("id").
			Exec(ctx)
	} else {
		_, err = idb.NewUpdate().
			Model(log).
			Column("last_cleanup_date", "tasks_deleted", "cleanup_type").
			WherePK().
			Exec(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to save cleanup log: %w", err)
	}

	r.logger.Debug("Saved cleanup log",
		zap.Int64("id", log.ID),
		zap.Int("deleted", deleted),
		zap.String("type", cleanupType.String()))

	return log, nil
}
