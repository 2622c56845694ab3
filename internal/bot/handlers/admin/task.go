package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/bot/utils"
	"github.com/robalyx/overseer/internal/bot/views/admin"
	managerView "github.com/robalyx/overseer/internal/bot/views/manager"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/database/service"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/telegram"
	pkgutils "github.com/robalyx/overseer/pkg/utils"
	"go.uber.org/zap"
)

// startAddTask shows the manager picker.
func (l *Layout) startAddTask(ctx context.Context, hc *handlers.Context) error {
	hc.Session.Reset()

	managers, err := l.db.Service().User().GetManagers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list managers: %w", err)
	}

	if len(managers) == 0 {
		return hc.Reply(ctx, l.messenger, admin.NoManagers())
	}

	return hc.Reply(ctx, l.messenger, admin.ManagerPicker(managers))
}

// selectManager stores the chosen manager and asks for the task text.
func (l *Layout) selectManager(ctx context.Context, hc *handlers.Context) error {
	managerID, ok := utils.ParseID(hc.Data(), constants.SelectManagerPrefix)
	if !ok {
		return handlers.ErrNotHandled
	}

	hc.Session.Reset()
	session.DraftManagerID.Set(hc.Session, managerID)
	hc.Session.SetState(session.StateAwaitingTaskText)

	return hc.Reply(ctx, l.messenger, admin.TextPrompt())
}

// cancel aborts the conversation.
func (l *Layout) cancel(ctx context.Context, hc *handlers.Context) error {
	hc.Session.Reset()
	return hc.Reply(ctx, l.messenger, admin.Cancelled())
}

// receiveText validates the task body and asks for the deadline.
func (l *Layout) receiveText(ctx context.Context, hc *handlers.Context) error {
	text := pkgutils.CompressWhitespacePreserveNewlines(hc.Text())
	if len([]rune(text)) < service.MinTaskTextLength {
		return hc.Reply(ctx, l.messenger, admin.TextTooShort(service.MinTaskTextLength))
	}

	session.DraftText.Set(hc.Session, text)
	hc.Session.SetState(session.StateAwaitingDeadline)

	return hc.Reply(ctx, l.messenger, admin.DeadlinePrompt())
}

// receiveDeadline creates the task and notifies its manager.
func (l *Layout) receiveDeadline(ctx context.Context, hc *handlers.Context) error {
	deadline, err := utils.ParseDeadline(hc.Text(), l.now())
	if err != nil {
		return hc.Reply(ctx, l.messenger, &telegram.Response{
			Text:     menu.DeadlineError(err),
			Keyboard: admin.CancelKeyboard(),
		})
	}

	managerID := session.DraftManagerID.Get(hc.Session)
	text := session.DraftText.Get(hc.Session)

	task, err := l.db.Service().Task().CreateTask(ctx, managerID, text, deadline)
	switch {
	case errors.Is(err, types.ErrUserNotFound), errors.Is(err, service.ErrNotAManager):
		hc.Session.Reset()
		return hc.Reply(ctx, l.messenger, menu.WithMenu("❌ The selected manager is no longer available.", true))
	case errors.Is(err, service.ErrDeadlineNotFuture):
		return hc.Reply(ctx, l.messenger, &telegram.Response{
			Text:     menu.DeadlineError(err),
			Keyboard: admin.CancelKeyboard(),
		})
	case err != nil:
		return fmt.Errorf("failed to create task: %w", err)
	}

	hc.Session.Reset()

	if err := hc.Reply(ctx, l.messenger, admin.TaskCreated(task)); err != nil {
		return err
	}

	// The task exists even when the manager cannot be reached
	if _, err := l.messenger.Send(ctx, task.Manager.TelegramID, managerView.Assigned(task)); err != nil {
		l.logger.Warn("Failed to notify manager about new task",
			zap.Int64("task_id", task.ID),
			zap.Int64("manager_telegram_id", task.Manager.TelegramID),
			zap.Error(err))
	}

	return nil
}
