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

// UserModel handles database operations for bot users.
type UserModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUser creates a new user model.
func NewUser(db *bun.DB, logger *zap.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger.Named("db_user"),
	}
}

// Upsert inserts the user or refreshes the name fields of an existing one.
// The role of an existing user is never changed.
func (r *UserModel) Upsert(ctx context.Context, identity types.Identity, role enum.Role) (*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		user := &types.User{
			TelegramID: identity.TelegramID,
			Username:   identity.Username,
			FirstName:  identity.FirstName,
			LastName:   identity.LastName,
			Role:       role,
			CreatedAt:  time.Now().UTC(),
		}

		_, err := r.db.NewInsert().
			Model(user).
			On("CONFLICT (telegram_id) DO UPDATE").
			Set("username = EXCLUDED.username").
			Set("first_name = EXCLUDED.first_name").
			Set("last_name = EXCLUDED.last_name").
			Returning("*").
			Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert user: %w", err)
		}

		r.logger.Debug("Upserted user",
			zap.Int64("telegram_id", user.TelegramID),
			zap.String("role", user.Role.String()))

		return user, nil
	})
}

// GetByID retrieves a user by its local id.
func (r *UserModel) GetByID(ctx context.Context, id int64) (*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		var user types.User

		err := r.db.NewSelect().
			Model(&user).
			Where("id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		return &user, nil
	})
}

// GetByTelegramID retrieves a user by Telegram id.
func (r *UserModel) GetByTelegramID(ctx context.Context, telegramID int64) (*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		var user types.User

		err := r.db.NewSelect().
			Model(&user).
			Where("telegram_id = ?", telegramID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to get user by telegram id: %w", err)
		}

		return &user, nil
	})
}

// GetByRole retrieves all users with the given role in registration order.
func (r *UserModel) GetByRole(ctx context.Context, role enum.Role) ([]*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.User, error) {
		var users []*types.User

		err := r.db.NewSelect().
			Model(&users).
			Where("role = ?", role).
			Order("id ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get users by role: %w", err)
		}

		return users, nil
	})
}
