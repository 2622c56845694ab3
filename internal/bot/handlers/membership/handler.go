package membership

import (
	"context"

	"github.com/robalyx/overseer/internal/bot/interfaces"
	"github.com/robalyx/overseer/internal/database"
	"github.com/robalyx/overseer/internal/setup"
	"github.com/robalyx/overseer/internal/telegram"
	"go.uber.org/zap"
)

// Handler applies group membership updates to the analytics tables.
type Handler struct {
	db        database.Client
	messenger interfaces.Messenger
	logger    *zap.Logger
}

// New creates the membership handler.
func New(app *setup.App, messenger interfaces.Messenger) *Handler {
	return &Handler{
		db:        app.DB,
		messenger: messenger,
		logger:    app.Logger.Named("membership_handler"),
	}
}

// Handle processes one membership update. Updates about the bot itself
// register the group when the bot joins; removals of the bot are only logged.
func (h *Handler) Handle(ctx context.Context, update *telegram.MemberUpdate) error {
	event := update.Event

	if update.Self {
		switch {
		case event.NewStatus.IsPresent() && event.OldStatus.IsGone():
			_, err := h.db.Service().Membership().HandleBotAdded(ctx, event.GroupID, event.GroupTitle, h.messenger)
			return err
		case event.NewStatus.IsGone():
			h.logger.Info("Bot removed from group",
				zap.Int64("group_id", event.GroupID),
				zap.String("title", event.GroupTitle),
				zap.String("status", string(event.NewStatus)))
		}
		return nil
	}

	_, err := h.db.Service().Membership().HandleMemberUpdate(ctx, event, h.messenger)
	return err
}
