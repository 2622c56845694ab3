package database

import (
	"github.com/robalyx/overseer/internal/database/service"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	user       *service.UserService
	task       *service.TaskService
	membership *service.MembershipService
	cleanup    *service.CleanupService
}

// NewService creates a new service instance with all services.
func NewService(db *bun.DB, repository *Repository, logger *zap.Logger) *Service {
	userModel := repository.User()
	taskModel := repository.Task()

	return &Service{
		user:       service.NewUser(userModel, logger),
		task:       service.NewTask(taskModel, userModel, logger),
		membership: service.NewMembership(repository.Group(), logger),
		cleanup:    service.NewCleanup(db, taskModel, repository.Cleanup(), logger),
	}
}

// User returns the user service.
func (s *Service) User() *service.UserService {
	return s.user
}

// Task returns the task service.
func (s *Service) Task() *service.TaskService {
	return s.task
}

// Membership returns the membership service.
func (s *Service) Membership() *service.MembershipService {
	return s.membership
}

// Cleanup returns the cleanup service.
func (s *Service) Cleanup() *service.CleanupService {
	return s.cleanup
}
