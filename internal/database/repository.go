package database

import (
	"github.com/robalyx/overseer/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	user    *models.UserModel
	task    *models.TaskModel
	group   *models.GroupModel
	cleanup *models.CleanupModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		user:    models.NewUser(db, logger),
		task:    models.NewTask(db, logger),
		group:   models.NewGroup(db, logger),
		cleanup: models.NewCleanup(db, logger),
	}
}

// User returns the user model repository.
func (r *Repository) User() *models.UserModel {
	return r.user
}

// Task returns the task model repository.
func (r *Repository) Task() *models.TaskModel {
	return r.task
}

// Group returns the group model repository.
func (r *Repository) Group() *models.GroupModel {
	return r.group
}

// Cleanup returns the cleanup log model repository.
func (r *Repository) Cleanup() *models.CleanupModel {
	return r.cleanup
}
