package types

import (
	"time"

	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// GroupAnalytics tracks membership churn counters for one Telegram group.
type GroupAnalytics struct {
	bun.BaseModel `bun:"table:group_analytics,alias:ga"`

	ID            int64     `bun:",pk,autoincrement" json:"id"`
	GroupID       int64     `bun:",unique,notnull"   json:"groupId"`
	GroupTitle    string    `bun:",nullzero"         json:"groupTitle,omitempty"`
	TotalMembers  int       `bun:",notnull"          json:"totalMembers"`
	LeftMembers   int       `bun:",notnull"          json:"leftMembers"`
	KickedMembers int       `bun:",notnull"          json:"kickedMembers"`
	LastUpdated   time.Time `bun:",notnull"          json:"lastUpdated"`
	CreatedAt     time.Time `bun:",notnull"          json:"createdAt"`
}

// Title returns the group title or a fallback built from the group id.
func (g *GroupAnalytics) Title() string {
	if g.GroupTitle != "" {
		return g.GroupTitle
	}
	return "Group " + formatID(g.GroupID)
}

// GroupMember is the stored membership state of one member in one group.
type GroupMember struct {
	bun.BaseModel `bun:"table:group_members,alias:gm"`

	ID         int64             `bun:",pk,autoincrement"            json:"id"`
	GroupID    int64             `bun:",notnull,unique:group_member" json:"groupId"`
	TelegramID int64             `bun:",notnull,unique:group_member" json:"telegramId"`
	Username   string            `bun:",nullzero"                    json:"username,omitempty"`
	FirstName  string            `bun:",nullzero"                    json:"firstName,omitempty"`
	Status     enum.MemberStatus `bun:",notnull,default:'active'"    json:"status"`
	LeftAt     *time.Time        `bun:"left_at"                      json:"leftAt,omitempty"`
	UpdatedAt  time.Time         `bun:",notnull"                     json:"updatedAt"`
}

// Label returns the name shown for the member in group reports.
func (m *GroupMember) Label() string {
	switch {
	case m.Username != "":
		return "@" + m.Username
	case m.FirstName != "":
		return m.FirstName + " (ID: " + formatID(m.TelegramID) + ")"
	default:
		return "ID: " + formatID(m.TelegramID)
	}
}

// GroupReport is a group's counters with its departed members.
type GroupReport struct {
	Group  *GroupAnalytics
	Left   []*GroupMember
	Kicked []*GroupMember
}

// MemberEvent is a membership change delivered by the chat platform.
type MemberEvent struct {
	GroupID     int64
	GroupTitle  string
	Member      Identity
	InitiatorID int64
	OldStatus   enum.ChatMemberStatus
	NewStatus   enum.ChatMemberStatus
}

// MemberChange describes what reconciliation did with a MemberEvent.
type MemberChange struct {
	Group   *GroupAnalytics
	Member  *GroupMember
	Prior   enum.MemberStatus
	Status  enum.MemberStatus
	Changed bool
}
