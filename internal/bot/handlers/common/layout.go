package common

import (
	"context"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/bot/interfaces"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/setup"
	"go.uber.org/zap"
)

// Layout handles commands and navigation shared by both roles.
type Layout struct {
	messenger interfaces.Messenger
	logger    *zap.Logger
}

// New creates the common layout.
func New(app *setup.App, messenger interfaces.Messenger) *Layout {
	return &Layout{
		messenger: messenger,
		logger:    app.Logger.Named("common_menu"),
	}
}

// HandleCommand processes slash commands. Unknown commands show the menu.
func (l *Layout) HandleCommand(ctx context.Context, hc *handlers.Context) error {
	hc.Session.Reset()

	switch hc.Message.Command {
	case constants.StartCommand:
		l.logger.Info("Received /start",
			zap.Int64("telegram_id", hc.User.TelegramID),
			zap.Bool("is_admin", hc.IsAdmin))
		return hc.Reply(ctx, l.messenger, menu.Welcome(hc.IsAdmin))
	case constants.CancelCommand:
		return hc.Reply(ctx, l.messenger, menu.WithMenu("❌ Action cancelled.", hc.IsAdmin))
	default:
		return hc.Reply(ctx, l.messenger, menu.Main(hc.IsAdmin))
	}
}

// HandleCallback processes the back-to-menu button.
func (l *Layout) HandleCallback(ctx context.Context, hc *handlers.Context) error {
	if hc.Data() != constants.BackToMenu {
		return handlers.ErrNotHandled
	}

	hc.Session.Reset()
	return hc.Reply(ctx, l.messenger, menu.Main(hc.IsAdmin))
}

// HandleText answers text sent outside of any conversation with the menu.
func (l *Layout) HandleText(ctx context.Context, hc *handlers.Context) error {
	return hc.Reply(ctx, l.messenger, menu.WithMenu("Use the menu below 👇", hc.IsAdmin))
}
