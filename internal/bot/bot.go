package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/bot/handlers/admin"
	"github.com/robalyx/overseer/internal/bot/handlers/common"
	"github.com/robalyx/overseer/internal/bot/handlers/manager"
	"github.com/robalyx/overseer/internal/bot/handlers/membership"
	"github.com/robalyx/overseer/internal/bot/interfaces"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/redis"
	"github.com/robalyx/overseer/internal/setup"
	"github.com/robalyx/overseer/internal/setup/telemetry"
	"github.com/robalyx/overseer/internal/telegram"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Bot routes Telegram updates to the layouts.
// Private messages and button presses go through the role layouts while
// group membership updates go to the membership handler.
type Bot struct {
	app            *setup.App
	messenger      interfaces.Messenger
	sessionManager *session.Manager
	commonLayout   *common.Layout
	layouts        []handlers.Layout
	membership     *membership.Handler
	logger         *zap.Logger
}

// New creates a bot that replies through messenger.
func New(app *setup.App, messenger interfaces.Messenger, sessionManager *session.Manager) *Bot {
	commonLayout := common.New(app, messenger)

	return &Bot{
		app:            app,
		messenger:      messenger,
		sessionManager: sessionManager,
		commonLayout:   commonLayout,
		// Order matters: role layouts claim their states first and the
		// common layout answers whatever is left.
		layouts: []handlers.Layout{
			admin.New(app, messenger),
			manager.New(app, messenger),
			commonLayout,
		},
		membership: membership.New(app, messenger),
		logger:     app.Logger.Named("bot"),
	}
}

// NewSessionManager stores conversations in Redis when it is configured,
// and in process memory otherwise.
func NewSessionManager(app *setup.App) (*session.Manager, error) {
	ttl := time.Duration(app.Config.Bot.SessionTTL) * time.Minute

	if !app.RedisManager.Enabled() {
		return session.NewManager(session.NewMemoryStore(), ttl, app.Logger), nil
	}

	client, err := app.RedisManager.GetClient(redis.SessionDBIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}

	return session.NewManager(session.NewRedisStore(client), ttl, app.Logger), nil
}

// Run handles updates until the channel closes. Up to the configured number
// of updates are handled at the same time; in-flight updates finish before
// Run returns.
func (b *Bot) Run(ctx context.Context, updates <-chan *telegram.Update) error {
	p := pool.New().WithMaxGoroutines(max(b.app.Config.Bot.MaxConcurrentUpdates, 1))

	b.logger.Info("Bot started",
		zap.Int("max_concurrent_updates", b.app.Config.Bot.MaxConcurrentUpdates))

	for update := range updates {
		p.Go(func() {
			b.HandleUpdate(ctx, update)
		})
	}

	p.Wait()
	b.logger.Info("Bot stopped")

	return nil
}

// HandleUpdate processes a single update. Failures are logged and reported
// to the user; they never stop the bot.
func (b *Bot) HandleUpdate(ctx context.Context, update *telegram.Update) {
	ctx, span := telemetry.Tracer().Start(ctx, "bot.update", trace.WithAttributes(
		attribute.String("update.kind", update.Kind()),
		attribute.Int("update.id", update.ID),
		attribute.Int64("update.sender_id", update.SenderID()),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic in update handler",
				zap.String("kind", update.Kind()),
				zap.Any("panic", r),
				zap.Stack("stack"))
			span.SetStatus(codes.Error, "panic")
		}

		b.logger.Debug("Update handled",
			zap.String("kind", update.Kind()),
			zap.Int("update_id", update.ID),
			zap.Duration("duration", time.Since(start)))
	}()

	var err error

	switch {
	case update.Member != nil:
		err = b.membership.Handle(ctx, update.Member)
	case update.Message != nil:
		err = b.handleMessage(ctx, update.Message)
	case update.Callback != nil:
		err = b.handleCallback(ctx, update.Callback)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.logger.Error("Failed to handle update",
			zap.String("kind", update.Kind()),
			zap.Int64("sender_id", update.SenderID()),
			zap.Error(err))
	}
}

// handleMessage processes a private text message or command.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if !msg.Private {
		return nil
	}

	hc, err := b.newContext(ctx, msg.ChatID, msg.From)
	if err != nil {
		return err
	}
	hc.Message = msg

	if msg.Command != "" {
		err = b.commonLayout.HandleCommand(ctx, hc)
	} else {
		err = b.dispatch(ctx, hc, handlers.Layout.HandleText)
	}

	return b.finish(ctx, hc, err)
}

// handleCallback processes an inline button press.
func (b *Bot) handleCallback(ctx context.Context, cb *telegram.Callback) error {
	// Stop the client's loading indicator before doing any work
	if err := b.messenger.AnswerCallback(ctx, cb.ID, ""); err != nil {
		b.logger.Warn("Failed to answer callback", zap.Error(err))
	}

	hc, err := b.newContext(ctx, cb.ChatID, cb.From)
	if err != nil {
		return err
	}
	hc.Callback = cb

	err = b.dispatch(ctx, hc, handlers.Layout.HandleCallback)
	if errors.Is(err, handlers.ErrNotHandled) {
		b.logger.Debug("Unknown callback data", zap.String("data", cb.Data))
		err = hc.Reply(ctx, b.messenger, menu.Main(hc.IsAdmin))
	}

	return b.finish(ctx, hc, err)
}

// dispatch offers the update to each layout until one claims it.
func (b *Bot) dispatch(
	ctx context.Context, hc *handlers.Context, handle func(handlers.Layout, context.Context, *handlers.Context) error,
) error {
	for _, layout := range b.layouts {
		err := handle(layout, ctx, hc)
		if !errors.Is(err, handlers.ErrNotHandled) {
			return err
		}
	}

	return handlers.ErrNotHandled
}

// newContext resolves the sender and loads their conversation.
func (b *Bot) newContext(ctx context.Context, chatID int64, from types.Identity) (*handlers.Context, error) {
	user, err := b.app.DB.Service().User().Resolve(ctx, from, b.app.Config.Bot.AdminTelegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	s, err := b.sessionManager.Get(ctx, chatID, user.TelegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return &handlers.Context{
		User:    user,
		IsAdmin: user.IsAdmin(),
		ChatID:  chatID,
		Session: s,
	}, nil
}

// finish reports a handler failure to the user and persists the session.
func (b *Bot) finish(ctx context.Context, hc *handlers.Context, err error) error {
	if err != nil {
		hc.Session.Reset()

		if replyErr := hc.Reply(ctx, b.messenger, menu.Error(hc.IsAdmin)); replyErr != nil {
			b.logger.Warn("Failed to send error reply", zap.Error(replyErr))
		}
	}

	if saveErr := hc.Session.Save(ctx); saveErr != nil {
		return errors.Join(err, fmt.Errorf("failed to save session: %w", saveErr))
	}

	return err
}
