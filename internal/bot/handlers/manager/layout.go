package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/bot/interfaces"
	"github.com/robalyx/overseer/internal/bot/utils"
	"github.com/robalyx/overseer/internal/bot/views/manager"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/database"
	"github.com/robalyx/overseer/internal/database/service"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/robalyx/overseer/internal/setup"
	"github.com/robalyx/overseer/internal/telegram"
	"go.uber.org/zap"
)

// Layout handles a manager's task list and the reschedule conversation.
type Layout struct {
	db        database.Client
	messenger interfaces.Messenger
	now       func() time.Time
	logger    *zap.Logger
}

// New creates the manager layout.
func New(app *setup.App, messenger interfaces.Messenger) *Layout {
	return &Layout{
		db:        app.DB,
		messenger: messenger,
		now:       time.Now,
		logger:    app.Logger.Named("manager_menu"),
	}
}

// HandleCallback processes task list and task action buttons.
func (l *Layout) HandleCallback(ctx context.Context, hc *handlers.Context) error {
	data := hc.Data()
	if data != constants.ManagerMyTasks &&
		!strings.HasPrefix(data, constants.TaskPrefix) &&
		!strings.HasPrefix(data, constants.TasksPagePrefix) {
		return handlers.ErrNotHandled
	}

	if hc.IsAdmin {
		return hc.Reply(ctx, l.messenger, menu.WithMenu(menu.AccessDenied(), true))
	}

	switch {
	case data == constants.ManagerMyTasks:
		hc.Session.Reset()
		return l.showTasks(ctx, hc, 0)
	case strings.HasPrefix(data, constants.TasksPagePrefix):
		page, ok := utils.ParseID(data, constants.TasksPagePrefix)
		if !ok {
			return handlers.ErrNotHandled
		}
		return l.showTasks(ctx, hc, int(page))
	case strings.HasPrefix(data, constants.TaskCompletePrefix):
		return l.complete(ctx, hc)
	case strings.HasPrefix(data, constants.TaskNotCompletePrefix):
		return l.startReschedule(ctx, hc)
	default:
		return l.showTask(ctx, hc)
	}
}

// HandleText processes the reason and new deadline steps.
func (l *Layout) HandleText(ctx context.Context, hc *handlers.Context) error {
	switch hc.Session.State() {
	case session.StateAwaitingReason:
		return l.receiveReason(ctx, hc)
	case session.StateAwaitingNewDeadline:
		return l.receiveNewDeadline(ctx, hc)
	default:
		return handlers.ErrNotHandled
	}
}

// showTasks renders one page of the manager's active tasks.
func (l *Layout) showTasks(ctx context.Context, hc *handlers.Context, page int) error {
	tasks, err := l.db.Service().Task().GetActiveTasks(ctx, hc.User.ID)
	if err != nil {
		return fmt.Errorf("failed to list active tasks: %w", err)
	}

	page = manager.ClampPage(page, len(tasks))
	session.TasksPage.Set(hc.Session, page)

	return hc.Reply(ctx, l.messenger, manager.NewTaskListBuilder(tasks, page).Build())
}

// showTask shows one task with its actions.
func (l *Layout) showTask(ctx context.Context, hc *handlers.Context) error {
	task, err := l.ownedActiveTask(ctx, hc, constants.TaskPrefix)
	if err != nil || task == nil {
		return err
	}

	return hc.Reply(ctx, l.messenger, manager.TaskDetails(task))
}

// complete marks the task as done.
func (l *Layout) complete(ctx context.Context, hc *handlers.Context) error {
	task, err := l.ownedActiveTask(ctx, hc, constants.TaskCompletePrefix)
	if err != nil || task == nil {
		return err
	}

	hc.Session.Reset()

	completed, err := l.db.Service().Task().CompleteTask(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	return hc.Reply(ctx, l.messenger, manager.TaskCompleted(completed))
}

// startReschedule remembers the task and asks for the reason.
func (l *Layout) startReschedule(ctx context.Context, hc *handlers.Context) error {
	task, err := l.ownedActiveTask(ctx, hc, constants.TaskNotCompletePrefix)
	if err != nil || task == nil {
		return err
	}

	hc.Session.Reset()
	session.RescheduleTaskID.Set(hc.Session, task.ID)
	hc.Session.SetState(session.StateAwaitingReason)

	return hc.Reply(ctx, l.messenger, manager.ReasonPrompt())
}

// receiveReason validates the reason and asks for the new deadline.
func (l *Layout) receiveReason(ctx context.Context, hc *handlers.Context) error {
	reason := strings.TrimSpace(hc.Text())
	if len([]rune(reason)) < service.MinReasonLength {
		return hc.Reply(ctx, l.messenger, manager.ReasonTooShort(service.MinReasonLength))
	}

	session.RescheduleReason.Set(hc.Session, reason)
	hc.Session.SetState(session.StateAwaitingNewDeadline)

	return hc.Reply(ctx, l.messenger, manager.NewDeadlinePrompt())
}

// receiveNewDeadline stores the reason and the new deadline.
func (l *Layout) receiveNewDeadline(ctx context.Context, hc *handlers.Context) error {
	deadline, err := utils.ParseDeadline(hc.Text(), l.now())
	if err != nil {
		return hc.Reply(ctx, l.messenger, &telegram.Response{Text: menu.DeadlineError(err)})
	}

	taskID := session.RescheduleTaskID.Get(hc.Session)
	reason := session.RescheduleReason.Get(hc.Session)
	hc.Session.Reset()

	// The task may have changed while the conversation was open
	task, err := l.loadOwnedActive(ctx, hc, taskID)
	if err != nil || task == nil {
		return err
	}

	updated, err := l.db.Service().Task().RescheduleTask(ctx, task.ID, deadline, reason)
	if err != nil {
		return fmt.Errorf("failed to reschedule task: %w", err)
	}

	return hc.Reply(ctx, l.messenger, manager.Rescheduled(updated))
}

// ownedActiveTask parses the task id from the callback data and loads it.
// A nil task with a nil error means the unavailable reply was already sent.
func (l *Layout) ownedActiveTask(ctx context.Context, hc *handlers.Context, prefix string) (*types.Task, error) {
	taskID, ok := utils.ParseID(hc.Data(), prefix)
	if !ok {
		return nil, hc.Reply(ctx, l.messenger, manager.TaskUnavailable())
	}

	return l.loadOwnedActive(ctx, hc, taskID)
}

func (l *Layout) loadOwnedActive(ctx context.Context, hc *handlers.Context, taskID int64) (*types.Task, error) {
	task, err := l.db.Service().Task().GetTask(ctx, taskID)
	if err != nil && !errors.Is(err, types.ErrTaskNotFound) {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if task == nil || task.ManagerID != hc.User.ID || task.Status != enum.TaskStatusActive {
		l.logger.Debug("Task unavailable to manager",
			zap.Int64("task_id", taskID),
			zap.Int64("user_id", hc.User.ID))
		return nil, hc.Reply(ctx, l.messenger, manager.TaskUnavailable())
	}

	return task, nil
}
