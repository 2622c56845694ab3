package common_test

import (
	"context"
	"testing"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/bot/handlers/common"
	"github.com/robalyx/overseer/internal/bot/handlers/handlertest"
	"github.com/robalyx/overseer/internal/database/dbtest"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCommand(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := common.New(app, messenger)
	ctx := context.Background()

	adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
	manager := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)

	tests := []struct {
		name     string
		command  string
		wantText string
	}{
		{name: "start", command: constants.StartCommand, wantText: "Welcome"},
		{name: "cancel", command: constants.CancelCommand, wantText: "cancelled"},
		{name: "unknown", command: "help", wantText: "main menu"},
	}

	for _, tt := range tests {
		s := handlertest.NewSession(t, adminUser)
		s.SetState(session.StateAwaitingTaskText)

		require.NoError(t, layout.HandleCommand(ctx, handlertest.Command(adminUser, s, tt.command)), tt.name)
		assert.Equal(t, session.StateNone, s.State(), tt.name)
		assert.Contains(t, messenger.Last(t).Text, tt.wantText, tt.name)
	}

	// The keyboard depends on the role
	s := handlertest.NewSession(t, manager)
	require.NoError(t, layout.HandleCommand(ctx, handlertest.Command(manager, s, constants.StartCommand)))
	assert.Equal(t, constants.ManagerMyTasks, messenger.Last(t).Keyboard[0][0].Data)
}

func TestHandleCallback(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := common.New(app, messenger)
	ctx := context.Background()

	manager := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
	s := handlertest.NewSession(t, manager)

	err := layout.HandleCallback(ctx, handlertest.Callback(manager, s, constants.AdminRating))
	require.ErrorIs(t, err, handlers.ErrNotHandled)

	s.SetState(session.StateAwaitingReason)
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(manager, s, constants.BackToMenu)))
	assert.Equal(t, session.StateNone, s.State())
	require.Len(t, messenger.Edited, 1)
}
