package admin

import (
	"context"
	"strings"
	"time"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/bot/interfaces"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/database"
	"github.com/robalyx/overseer/internal/database/service"
	"github.com/robalyx/overseer/internal/setup"
	"github.com/robalyx/overseer/internal/setup/config"
	"go.uber.org/zap"
)

// Layout handles the administrator's menu and the add-task conversation.
type Layout struct {
	db        database.Client
	messenger interfaces.Messenger
	exporter  service.Exporter
	botCfg    *config.BotConfig
	workerCfg *config.WorkerConfig
	now       func() time.Time
	logger    *zap.Logger
}

// New creates the admin layout.
func New(app *setup.App, messenger interfaces.Messenger) *Layout {
	return &Layout{
		db:        app.DB,
		messenger: messenger,
		exporter:  app.Exporter,
		botCfg:    &app.Config.Bot,
		workerCfg: &app.Config.Worker,
		now:       time.Now,
		logger:    app.Logger.Named("admin_menu"),
	}
}

// HandleCallback processes admin menu buttons.
func (l *Layout) HandleCallback(ctx context.Context, hc *handlers.Context) error {
	data := hc.Data()
	if !isAdminData(data) {
		return handlers.ErrNotHandled
	}

	if !hc.IsAdmin {
		l.logger.Warn("Manager pressed an admin button",
			zap.Int64("telegram_id", hc.User.TelegramID),
			zap.String("data", data))
		return hc.Reply(ctx, l.messenger, menu.WithMenu(menu.AccessDenied(), false))
	}

	switch {
	case data == constants.AdminAddTask:
		return l.startAddTask(ctx, hc)
	case strings.HasPrefix(data, constants.SelectManagerPrefix):
		return l.selectManager(ctx, hc)
	case data == constants.AdminCancel:
		return l.cancel(ctx, hc)
	case data == constants.AdminAllTasks:
		return l.showAllTasks(ctx, hc)
	case data == constants.AdminRating:
		return l.showRating(ctx, hc)
	case data == constants.AdminRatingChart:
		return l.sendRatingChart(ctx, hc)
	case data == constants.AdminAllEmployees:
		return l.showRoster(ctx, hc)
	case data == constants.AdminCleanup:
		return l.cleanup(ctx, hc)
	case data == constants.AdminGroupAnalysis:
		return l.showGroupAnalysis(ctx, hc)
	}

	return handlers.ErrNotHandled
}

// HandleText processes the add-task conversation steps.
func (l *Layout) HandleText(ctx context.Context, hc *handlers.Context) error {
	switch hc.Session.State() {
	case session.StateAwaitingTaskText, session.StateAwaitingDeadline:
	default:
		return handlers.ErrNotHandled
	}

	if !hc.IsAdmin {
		hc.Session.Reset()
		return hc.Reply(ctx, l.messenger, menu.WithMenu(menu.AccessDenied(), false))
	}

	if hc.Session.State() == session.StateAwaitingTaskText {
		return l.receiveText(ctx, hc)
	}
	return l.receiveDeadline(ctx, hc)
}

func isAdminData(data string) bool {
	return strings.HasPrefix(data, "admin_") || strings.HasPrefix(data, constants.SelectManagerPrefix)
}
