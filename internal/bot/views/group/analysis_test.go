package group_test

import (
	"strings"
	"testing"
	"time"

	"github.com/robalyx/overseer/internal/bot/views/group"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
)

func TestAnalysisBuild(t *testing.T) {
	t.Parallel()

	left := make([]*types.GroupMember, 0, 7)
	for i := range 7 {
		left = append(left, &types.GroupMember{
			TelegramID: int64(100 + i),
			FirstName:  "Member",
			Status:     enum.MemberStatusLeft,
		})
	}
	left[0].Username = "first"

	report := &types.GroupReport{
		Group: &types.GroupAnalytics{
			GroupID:       -1001,
			GroupTitle:    "Sales <team>",
			TotalMembers:  40,
			LeftMembers:   7,
			KickedMembers: 1,
			LastUpdated:   time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		},
		Left:   left,
		Kicked: []*types.GroupMember{{TelegramID: 555, Status: enum.MemberStatusKicked}},
	}

	resp := group.NewAnalysisBuilder([]*types.GroupReport{report}, time.FixedZone("", 3*60*60)).Build()

	assert.Contains(t, resp.Text, "<b>Sales &lt;team&gt;</b>")
	assert.Contains(t, resp.Text, "👥 Total members: 40")
	assert.Contains(t, resp.Text, "@first, Member (ID: 101)")
	assert.Contains(t, resp.Text, " and 2 more")
	assert.Contains(t, resp.Text, "ID: 555")
	assert.Contains(t, resp.Text, "10.03.2025 12:30 (UTC+3)")
	assert.Equal(t, 5, strings.Count(resp.Text, "Member (ID:")+strings.Count(resp.Text, "@first"))
}

func TestAnalysisBuildEmpty(t *testing.T) {
	t.Parallel()

	resp := group.NewAnalysisBuilder(nil, time.UTC).Build()
	assert.Contains(t, resp.Text, "No groups tracked yet")
	assert.NotEmpty(t, resp.Keyboard)
}
