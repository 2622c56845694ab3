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

// GroupModel handles database operations for group analytics and members.
type GroupModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewGroup creates a new group model.
func NewGroup(db *bun.DB, logger *zap.Logger) *GroupModel {
	return &GroupModel{
		db:     db,
		logger: logger.Named("db_group"),
	}
}

// RunInTx runs fn in a retried transaction.
func (r *GroupModel) RunInTx(ctx context.Context, fn func(context.Context, bun.Tx) error) error {
	return dbretry.Transaction(ctx, r.db, fn)
}

// GetOrCreate returns the analytics row for a group, creating it when absent.
// A non-empty title replaces the stored one.
func (r *GroupModel) GetOrCreate(
	ctx context.Context, idb bun.IDB, groupID int64, title string, now time.Time,
) (*types.GroupAnalytics, error) {
	analytics := &types.GroupAnalytics{
		GroupID:     groupID,
		GroupTitle:  title,
		LastUpdated: now.UTC(),
		CreatedAt:   now.UTC(),
	}

	query := idb.NewInsert().
		Model(analytics).
		Returning("*")

	if title != "" {
		query = query.On("CONFLICT (group_id) DO UPDATE").
			Set("group_title = EXCLUDED.group_title")
	} else {
		// A no-op update still returns the existing row
		query = query.On("CONFLICT (group_id) DO UPDATE").
			Set("group_id = EXCLUDED.group_id")
	}

	if _, err := query.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to get or create group analytics: %w", err)
	}

	return analytics, nil
}

// GetByGroupID retrieves the analytics row of a Telegram group.
func (r *GroupModel) GetByGroupID(ctx context.Context, groupID int64) (*types.GroupAnalytics, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.GroupAnalytics, error) {
		var analytics types.GroupAnalytics

		err := r.db.NewSelect().
			Model(&analytics).
			Where("group_id = ?", groupID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrGroupNotFound
			}
			return nil, fmt.Errorf("failed to get group analytics: %w", err)
		}

		return &analytics, nil
	})
}

// GetAll retrieves every tracked group.
func (r *GroupModel) GetAll(ctx context.Context) ([]*types.GroupAnalytics, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.GroupAnalytics, error) {
		var groups []*types.GroupAnalytics

		err := r.db.NewSelect().
			Model(&groups).
			Order("id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get groups: %w", err)
		}

		return groups, nil
	})
}

// SaveCounters persists the counters and last-updated time of an analytics row.
func (r *GroupModel) SaveCounters(ctx context.Context, idb bun.IDB, analytics *types.GroupAnalytics) error {
	_, err := idb.NewUpdate().
		Model(analytics).
		Column("total_members", "left_members", "kicked_members", "last_updated").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update group counters: %w", err)
	}

	r.logger.Debug("Updated group counters",
		zap.Int64("group_id", analytics.GroupID),
		zap.Int("total", analytics.TotalMembers),
		zap.Int("left", analytics.LeftMembers),
		zap.Int("kicked", analytics.KickedMembers))

	return nil
}

// UpdateTotal stores a refreshed member count.
func (r *GroupModel) UpdateTotal(ctx context.Context, id int64, total int) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := r.db.NewUpdate().
			Model((*types.GroupAnalytics)(nil)).
			Set("total_members = ?", total).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update group total: %w", err)
		}

		return nil
	})
}

// GetMember retrieves the stored member row, returning nil when it does not exist.
func (r *GroupModel) GetMember(
	ctx context.Context, idb bun.IDB, analyticsID, telegramID int64,
) (*types.GroupMember, error) {
	var member types.GroupMember

	err := idb.NewSelect().
		Model(&member).
		Where("group_id = ?", analyticsID).
		Where("telegram_id = ?", telegramID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil //nolint:nilnil // absence is a valid state
		}
		return nil, fmt.Errorf("failed to get group member: %w", err)
	}

	return &member, nil
}

// SaveMember inserts or updates a member row keyed by (group, telegram id).
// The caller provides the complete row state.
func (r *GroupModel) SaveMember(ctx context.Context, idb bun.IDB, member *types.GroupMember) error {
	_, err := idb.NewInsert().
		Model(member).
		On("CONFLICT (group_id, telegram_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("first_name = EXCLUDED.first_name").
		Set("status = EXCLUDED.status").
		Set("left_at = EXCLUDED.left_at").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save group member: %w", err)
	}

	return nil
}

// GetDepartedMembers retrieves members marked as left or kicked, most recent first.
func (r *GroupModel) GetDepartedMembers(ctx context.Context, analyticsID int64) ([]*types.GroupMember, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.GroupMember, error) {
		var members []*types.GroupMember

		err := r.db.NewSelect().
			Model(&members).
			Where("group_id = ?", analyticsID).
			Where("status IN (?)", bun.In([]enum.MemberStatus{enum.MemberStatusLeft, enum.MemberStatusKicked})).
			Order("updated_at DESC", "id DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get departed members: %w", err)
		}

		return members, nil
	})
}

// CountMembersByStatus counts stored member rows of a group per status.
func (r *GroupModel) CountMembersByStatus(ctx context.Context, analyticsID int64) (map[enum.MemberStatus]int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (map[enum.MemberStatus]int, error) {
		var rows []struct {
			Status enum.MemberStatus `bun:"status"`
			Count  int               `bun:"count"`
		}

		err := r.db.NewSelect().
			Model((*types.GroupMember)(nil)).
			ColumnExpr("status, COUNT(*) AS count").
			Where("group_id = ?", analyticsID).
			GroupExpr("status").
			Scan(ctx, &rows)
		if err != nil {
			return nil, fmt.Errorf("failed to count group members: %w", err)
		}

		counts := make(map[enum.MemberStatus]int, len(rows))
		for _, row := range rows {
			counts[row.Status] = row.Count
		}

		return counts, nil
	})
}
