package service

import (
	"context"
	"fmt"

	"github.com/robalyx/overseer/internal/database/models"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"go.uber.org/zap"
)

// UserService handles user-related business logic.
type UserService struct {
	model  *models.UserModel
	logger *zap.Logger
}

// NewUser creates a new user service.
func NewUser(model *models.UserModel, logger *zap.Logger) *UserService {
	return &UserService{
		model:  model,
		logger: logger.Named("user_service"),
	}
}

// Resolve returns the stored user for a platform identity, registering it on
// first contact. The configured admin id becomes admin, everyone else a manager.
// Name fields are refreshed on every call while the role stays fixed.
func (s *UserService) Resolve(ctx context.Context, identity types.Identity, adminID int64) (*types.User, error) {
	role := enum.RoleManager
	if identity.TelegramID == adminID {
		role = enum.RoleAdmin
	}

	user, err := s.model.Upsert(ctx, identity, role)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	return user, nil
}

// GetManagers returns every registered manager.
func (s *UserService) GetManagers(ctx context.Context) ([]*types.User, error) {
	return s.model.GetByRole(ctx, enum.RoleManager)
}
