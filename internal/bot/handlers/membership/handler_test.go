package membership_test

import (
	"context"
	"testing"

	"github.com/robalyx/overseer/internal/bot/handlers/handlertest"
	"github.com/robalyx/overseer/internal/bot/handlers/membership"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/robalyx/overseer/internal/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groupID int64 = -1001

func memberUpdate(memberID, initiatorID int64, from, to enum.ChatMemberStatus, self bool) *telegram.MemberUpdate {
	return &telegram.MemberUpdate{
		Self: self,
		Event: types.MemberEvent{
			GroupID:     groupID,
			GroupTitle:  "Sales team",
			Member:      types.Identity{TelegramID: memberID, FirstName: "Ivan"},
			InitiatorID: initiatorID,
			OldStatus:   from,
			NewStatus:   to,
		},
	}
}

func TestHandle(t *testing.T) {
	t.Parallel()

	app, _ := handlertest.NewApp(t)
	messenger := handlertest.NewMessenger()
	messenger.Count = 10
	handler := membership.New(app, messenger)
	ctx := context.Background()

	// Bot joins the group
	require.NoError(t, handler.Handle(ctx,
		memberUpdate(99, 1, enum.ChatMemberStatusLeft, enum.ChatMemberStatusAdministrator, true)))

	group, err := app.DB.Model().Group().GetByGroupID(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 10, group.TotalMembers)
	assert.Equal(t, "Sales team", group.GroupTitle)

	// An admin removes a member: reported as left, stored as kicked
	messenger.Count = 9
	require.NoError(t, handler.Handle(ctx,
		memberUpdate(5, 1, enum.ChatMemberStatusMember, enum.ChatMemberStatusLeft, false)))

	// Another member leaves on their own
	messenger.Count = 8
	require.NoError(t, handler.Handle(ctx,
		memberUpdate(6, 6, enum.ChatMemberStatusMember, enum.ChatMemberStatusLeft, false)))

	group, err = app.DB.Model().Group().GetByGroupID(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 8, group.TotalMembers)
	assert.Equal(t, 1, group.KickedMembers)
	assert.Equal(t, 1, group.LeftMembers)

	// Bot removal changes nothing
	require.NoError(t, handler.Handle(ctx,
		memberUpdate(99, 1, enum.ChatMemberStatusAdministrator, enum.ChatMemberStatusKicked, true)))

	group, err = app.DB.Model().Group().GetByGroupID(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, 1, group.KickedMembers)
	assert.Equal(t, 1, group.LeftMembers)
}
