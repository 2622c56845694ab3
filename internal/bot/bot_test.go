package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/robalyx/overseer/internal/bot"
	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/handlers/handlertest"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/robalyx/overseer/internal/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	adminIdentity   = types.Identity{TelegramID: handlertest.AdminID, FirstName: "Boss"}
	managerIdentity = types.Identity{TelegramID: 2, FirstName: "Anna", Username: "anna"}
)

func newBot(t *testing.T) (*bot.Bot, *handlertest.Messenger, *handlertest.Exporter) {
	t.Helper()

	app, exporter := handlertest.NewApp(t)
	app.Config.Bot.MaxConcurrentUpdates = 1
	messenger := handlertest.NewMessenger()
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour, zaptest.NewLogger(t))

	return bot.New(app, messenger, sessions), messenger, exporter
}

func message(from types.Identity, text, command string) *telegram.Update {
	return &telegram.Update{Message: &telegram.Message{
		ChatID:  from.TelegramID,
		Private: true,
		From:    from,
		Text:    text,
		Command: command,
	}}
}

func callback(from types.Identity, data string) *telegram.Update {
	return &telegram.Update{Callback: &telegram.Callback{
		ID:        "cb-" + data,
		ChatID:    from.TelegramID,
		MessageID: 7,
		From:      from,
		Data:      data,
	}}
}

func TestStartRegistersRoles(t *testing.T) {
	t.Parallel()

	b, messenger, _ := newBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, message(adminIdentity, "/start", constants.StartCommand))
	b.HandleUpdate(ctx, message(managerIdentity, "/start", constants.StartCommand))

	adminReplies := messenger.SentTo(adminIdentity.TelegramID)
	require.Len(t, adminReplies, 1)
	assert.Contains(t, adminReplies[0].Text, "administrator")
	assert.Equal(t, constants.AdminAddTask, adminReplies[0].Keyboard[0][0].Data)

	managerReplies := messenger.SentTo(managerIdentity.TelegramID)
	require.Len(t, managerReplies, 1)
	assert.Equal(t, constants.ManagerMyTasks, managerReplies[0].Keyboard[0][0].Data)
}

func TestConversationSurvivesUpdates(t *testing.T) {
	t.Parallel()

	b, messenger, _ := newBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, message(managerIdentity, "/start", constants.StartCommand))
	b.HandleUpdate(ctx, message(adminIdentity, "/start", constants.StartCommand))

	b.HandleUpdate(ctx, callback(adminIdentity, constants.AdminAddTask))
	picker := messenger.Last(t)
	require.NotEmpty(t, picker.Keyboard)

	b.HandleUpdate(ctx, callback(adminIdentity, picker.Keyboard[0][0].Data))
	b.HandleUpdate(ctx, message(adminIdentity, "Check the stock", ""))
	b.HandleUpdate(ctx, message(adminIdentity, time.Now().UTC().AddDate(0, 0, 1).Format(constants.DateLayout), ""))

	assert.Contains(t, messenger.Last(t).Text, "Task created")
	assert.Len(t, messenger.Answered, 2)

	notices := messenger.SentTo(managerIdentity.TelegramID)
	require.Len(t, notices, 2)
	assert.Contains(t, notices[1].Text, "Check the stock")
}

func TestIgnoresGroupMessages(t *testing.T) {
	t.Parallel()

	b, messenger, _ := newBot(t)

	update := message(managerIdentity, "hello", "")
	update.Message.Private = false
	update.Message.ChatID = -100

	b.HandleUpdate(context.Background(), update)
	assert.Empty(t, messenger.Sent)
}

func TestUnknownCallbackShowsMenu(t *testing.T) {
	t.Parallel()

	b, messenger, _ := newBot(t)

	b.HandleUpdate(context.Background(), callback(managerIdentity, "something_else"))
	require.Len(t, messenger.Edited, 1)
	assert.Contains(t, messenger.Edited[0].Response.Text, "Main menu")
}

func TestRunDrainsUpdates(t *testing.T) {
	t.Parallel()

	b, messenger, _ := newBot(t)

	updates := make(chan *telegram.Update, 2)
	updates <- &telegram.Update{Member: &telegram.MemberUpdate{
		Self: true,
		Event: types.MemberEvent{
			GroupID:    -100,
			GroupTitle: "Sales",
			OldStatus:  enum.ChatMemberStatusLeft,
			NewStatus:  enum.ChatMemberStatusMember,
		},
	}}
	updates <- message(managerIdentity, "/start", constants.StartCommand)
	close(updates)

	require.NoError(t, b.Run(context.Background(), updates))
	assert.Len(t, messenger.SentTo(managerIdentity.TelegramID), 1)
}
