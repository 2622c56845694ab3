package manager_test

import (
	"context"
	"testing"
	"time"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/bot/handlers/handlertest"
	"github.com/robalyx/overseer/internal/bot/handlers/manager"
	"github.com/robalyx/overseer/internal/bot/utils"
	"github.com/robalyx/overseer/internal/database"
	"github.com/robalyx/overseer/internal/database/dbtest"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTask(t *testing.T, db database.Client, managerID int64, text string) *types.Task {
	t.Helper()

	task, err := db.Service().Task().CreateTask(context.Background(), managerID, text, time.Now().AddDate(0, 0, 3))
	require.NoError(t, err)

	return task
}

func TestTaskList(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := manager.New(app, messenger)
	ctx := context.Background()

	user := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
	for range constants.TasksPerPage + 2 {
		createTask(t, app.DB, user.ID, "Visit the client")
	}

	s := handlertest.NewSession(t, user)
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(user, s, constants.ManagerMyTasks)))
	assert.Contains(t, messenger.Last(t).Text, "Your active tasks (12)")

	next := utils.WithID(constants.TasksPagePrefix, 1)
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(user, s, next)))
	assert.Equal(t, 1, session.TasksPage.Get(s))
	assert.Contains(t, messenger.Last(t).Text, "11. ")

	// Out of range pages are clamped
	require.NoError(t, layout.HandleCallback(ctx,
		handlertest.Callback(user, s, utils.WithID(constants.TasksPagePrefix, 9))))
	assert.Equal(t, 1, session.TasksPage.Get(s))
}

func TestCompleteTask(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := manager.New(app, messenger)
	ctx := context.Background()

	owner := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
	other := dbtest.CreateUser(t, app.DB, 3, "Oleg", enum.RoleManager)
	task := createTask(t, app.DB, owner.ID, "Send the invoice")
	data := utils.WithID(constants.TaskCompletePrefix, task.ID)

	// Someone else's task is unavailable
	otherSession := handlertest.NewSession(t, other)
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(other, otherSession, data)))
	assert.Contains(t, messenger.Last(t).Text, "not found or no longer active")

	s := handlertest.NewSession(t, owner)
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(owner, s, data)))
	assert.Contains(t, messenger.Last(t).Text, "marked as completed")

	stored, err := app.DB.Service().Task().GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TaskStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)

	// Pressing the stale button again does nothing
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(owner, s, data)))
	assert.Contains(t, messenger.Last(t).Text, "not found or no longer active")
}

func TestRescheduleFlow(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := manager.New(app, messenger)
	ctx := context.Background()

	owner := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
	task := createTask(t, app.DB, owner.ID, "Order supplies")
	s := handlertest.NewSession(t, owner)

	require.NoError(t, layout.HandleCallback(ctx,
		handlertest.Callback(owner, s, utils.WithID(constants.TaskNotCompletePrefix, task.ID))))
	assert.Equal(t, session.StateAwaitingReason, s.State())
	assert.Equal(t, task.ID, session.RescheduleTaskID.Get(s))

	require.NoError(t, layout.HandleText(ctx, handlertest.Text(owner, s, "late")))
	assert.Equal(t, session.StateAwaitingReason, s.State())
	assert.Contains(t, messenger.Last(t).Text, "at least 5 characters")

	require.NoError(t, layout.HandleText(ctx, handlertest.Text(owner, s, "Supplier was closed")))
	assert.Equal(t, session.StateAwaitingNewDeadline, s.State())

	require.NoError(t, layout.HandleText(ctx, handlertest.Text(owner, s, "01.01.2000")))
	assert.Equal(t, session.StateAwaitingNewDeadline, s.State())
	assert.Contains(t, messenger.Last(t).Text, "in the future")

	deadline := time.Now().UTC().AddDate(0, 0, 10)
	require.NoError(t, layout.HandleText(ctx, handlertest.Text(owner, s, deadline.Format(constants.DateLayout))))
	assert.Equal(t, session.StateNone, s.State())
	assert.Contains(t, messenger.Last(t).Text, "Deadline updated")

	stored, err := app.DB.Service().Task().GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.TaskStatusActive, stored.Status)
	assert.Equal(t, "Supplier was closed", stored.NotCompletedReason)
	assert.Equal(t, deadline.Format(constants.DateLayout), utils.FormatDate(stored.Deadline))
}

func TestManagerLayoutIgnoresForeignUpdates(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := manager.New(app, messenger)
	ctx := context.Background()

	owner := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
	s := handlertest.NewSession(t, owner)

	err := layout.HandleCallback(ctx, handlertest.Callback(owner, s, constants.AdminRating))
	require.ErrorIs(t, err, handlers.ErrNotHandled)

	err = layout.HandleText(ctx, handlertest.Text(owner, s, "hello"))
	require.ErrorIs(t, err, handlers.ErrNotHandled)

	adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
	adminSession := handlertest.NewSession(t, adminUser)
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(adminUser, adminSession, constants.ManagerMyTasks)))
	assert.Empty(t, messenger.SentTo(adminUser.TelegramID))
	assert.Contains(t, messenger.Last(t).Text, "administrator only")
}
