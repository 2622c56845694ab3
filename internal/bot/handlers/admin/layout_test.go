package admin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/handlers"
	"github.com/robalyx/overseer/internal/bot/handlers/admin"
	"github.com/robalyx/overseer/internal/bot/handlers/handlertest"
	"github.com/robalyx/overseer/internal/bot/utils"
	"github.com/robalyx/overseer/internal/database/dbtest"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTaskFlow(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := admin.New(app, messenger)
	ctx := context.Background()

	adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
	manager := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
	s := handlertest.NewSession(t, adminUser)

	// Manager picker
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(adminUser, s, constants.AdminAddTask)))
	picker := messenger.Last(t)
	require.Len(t, picker.Keyboard, 2)
	assert.Equal(t, utils.WithID(constants.SelectManagerPrefix, manager.ID), picker.Keyboard[0][0].Data)

	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(adminUser, s, picker.Keyboard[0][0].Data)))
	assert.Equal(t, session.StateAwaitingTaskText, s.State())

	// Text shorter than the minimum is rejected without leaving the step
	require.NoError(t, layout.HandleText(ctx, handlertest.Text(adminUser, s, " ab ")))
	assert.Equal(t, session.StateAwaitingTaskText, s.State())
	assert.Contains(t, messenger.Last(t).Text, "at least 3 characters")

	require.NoError(t, layout.HandleText(ctx, handlertest.Text(adminUser, s, "Prepare   the report")))
	assert.Equal(t, session.StateAwaitingDeadline, s.State())

	// Bad and past dates keep asking
	require.NoError(t, layout.HandleText(ctx, handlertest.Text(adminUser, s, "tomorrow")))
	assert.Contains(t, messenger.Last(t).Text, "Wrong date format")
	require.NoError(t, layout.HandleText(ctx, handlertest.Text(adminUser, s, "31.02.2099")))
	assert.Contains(t, messenger.Last(t).Text, "Invalid date")

	today := time.Now().UTC().Format(constants.DateLayout)
	require.NoError(t, layout.HandleText(ctx, handlertest.Text(adminUser, s, today)))
	assert.Contains(t, messenger.Last(t).Text, "in the future")
	assert.Equal(t, session.StateAwaitingDeadline, s.State())

	deadline := time.Now().UTC().AddDate(0, 0, 5)
	require.NoError(t, layout.HandleText(ctx, handlertest.Text(adminUser, s, deadline.Format(constants.DateLayout))))
	assert.Equal(t, session.StateNone, s.State())
	assert.Contains(t, messenger.Last(t).Text, "Task created")

	tasks, err := app.DB.Service().Task().GetActiveTasks(ctx, manager.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Prepare the report", tasks[0].Text)
	assert.Equal(t, 23, tasks[0].Deadline.UTC().Hour())

	notices := messenger.SentTo(manager.TelegramID)
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Text, "New task")
}

func TestAddTaskNotificationFailureKeepsTask(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := admin.New(app, messenger)
	ctx := context.Background()

	adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
	manager := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
	messenger.FailChats[manager.TelegramID] = errors.New("bot was blocked by the user")

	s := handlertest.NewSession(t, adminUser)
	session.DraftManagerID.Set(s, manager.ID)
	session.DraftText.Set(s, "Call the supplier")
	s.SetState(session.StateAwaitingDeadline)

	deadline := time.Now().UTC().AddDate(0, 0, 2).Format(constants.DateLayout)
	require.NoError(t, layout.HandleText(ctx, handlertest.Text(adminUser, s, deadline)))
	assert.Contains(t, messenger.Last(t).Text, "Task created")

	tasks, err := app.DB.Service().Task().GetActiveTasks(ctx, manager.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestAddTaskWithoutManagers(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := admin.New(app, messenger)

	adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
	s := handlertest.NewSession(t, adminUser)

	require.NoError(t, layout.HandleCallback(context.Background(),
		handlertest.Callback(adminUser, s, constants.AdminAddTask)))
	assert.Contains(t, messenger.Last(t).Text, "No managers available")
}

func TestAdminButtonsRejectManagers(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := admin.New(app, messenger)
	ctx := context.Background()

	manager := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
	s := handlertest.NewSession(t, manager)

	for _, data := range []string{constants.AdminAddTask, constants.AdminCleanup, "select_manager_1"} {
		require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(manager, s, data)))
		assert.Contains(t, messenger.Last(t).Text, "administrator only")
	}

	err := layout.HandleCallback(ctx, handlertest.Callback(manager, s, constants.ManagerMyTasks))
	require.ErrorIs(t, err, handlers.ErrNotHandled)

	err = layout.HandleText(ctx, handlertest.Text(manager, s, "hello"))
	require.ErrorIs(t, err, handlers.ErrNotHandled)
}

func TestCancel(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := admin.New(app, messenger)

	adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
	s := handlertest.NewSession(t, adminUser)
	s.SetState(session.StateAwaitingTaskText)

	require.NoError(t, layout.HandleCallback(context.Background(),
		handlertest.Callback(adminUser, s, constants.AdminCancel)))
	assert.Equal(t, session.StateNone, s.State())
	assert.Contains(t, messenger.Last(t).Text, "cancelled")
}

func TestManualCleanup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("nothing old enough", func(t *testing.T) {
		t.Parallel()

		app, exporter := handlertest.NewApp(t)
		messenger := handlertest.NewMessenger()
		layout := admin.New(app, messenger)

		adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
		manager := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
		insertCompleted(t, app.DB.Model().Task().Create, manager.ID, time.Now().AddDate(0, 0, -2))

		s := handlertest.NewSession(t, adminUser)
		require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(adminUser, s, constants.AdminCleanup)))

		assert.Contains(t, messenger.Last(t).Text, "No completed tasks older than 7 days")
		assert.Contains(t, messenger.Last(t).Text, "Completed tasks stored: 1")
		assert.Zero(t, exporter.Exported)
		assert.Empty(t, messenger.Documents)
	})

	t.Run("archives and deletes", func(t *testing.T) {
		t.Parallel()

		app, exporter := handlertest.NewApp(t)
		messenger := handlertest.NewMessenger()
		layout := admin.New(app, messenger)

		adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
		manager := dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
		insertCompleted(t, app.DB.Model().Task().Create, manager.ID, time.Now().AddDate(0, 0, -10))

		s := handlertest.NewSession(t, adminUser)
		require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(adminUser, s, constants.AdminCleanup)))

		assert.Contains(t, messenger.Last(t).Text, "Tasks deleted: 1")
		assert.Equal(t, 1, exporter.Exported)
		require.Len(t, messenger.Documents, 1)
		assert.Equal(t, exporter.Path, messenger.Documents[0].Name)

		latest, err := app.DB.Service().Cleanup().GetLatest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, enum.CleanupTypeManual, latest.CleanupType)
		assert.Equal(t, 1, latest.TasksDeleted)
	})
}

func TestRatingChart(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	layout := admin.New(app, messenger)
	ctx := context.Background()

	adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
	s := handlertest.NewSession(t, adminUser)

	// No managers yet falls back to the text rating
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(adminUser, s, constants.AdminRatingChart)))
	assert.Empty(t, messenger.Photos)

	dbtest.CreateUser(t, app.DB, 2, "Anna", enum.RoleManager)
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(adminUser, s, constants.AdminRatingChart)))
	require.Len(t, messenger.Photos, 1)
	assert.Positive(t, messenger.Photos[0].Size)
}

func TestGroupAnalysis(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	messenger.Count = 42
	layout := admin.New(app, messenger)
	ctx := context.Background()

	adminUser := dbtest.CreateUser(t, app.DB, handlertest.AdminID, "Boss", enum.RoleAdmin)
	_, err := app.DB.Service().Membership().HandleBotAdded(ctx, -100, "Sales team", messenger)
	require.NoError(t, err)

	s := handlertest.NewSession(t, adminUser)
	require.NoError(t, layout.HandleCallback(ctx, handlertest.Callback(adminUser, s, constants.AdminGroupAnalysis)))

	text := messenger.Last(t).Text
	assert.Contains(t, text, "Sales team")
	assert.Contains(t, text, "42")
}

func insertCompleted(
	t *testing.T, create func(context.Context, *types.Task) error, managerID int64, completedAt time.Time,
) {
	t.Helper()

	completedAt = completedAt.UTC()
	require.NoError(t, create(context.Background(), &types.Task{
		ManagerID:   managerID,
		Text:        "Archive me",
		Deadline:    completedAt,
		Status:      enum.TaskStatusCompleted,
		CompletedAt: &completedAt,
		CreatedAt:   completedAt,
		UpdatedAt:   completedAt,
	}))
}
