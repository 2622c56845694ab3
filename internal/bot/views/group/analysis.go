package group

import (
	"fmt"
	"strings"
	"time"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/telegram"
)

// AnalysisBuilder creates the membership report of all tracked groups.
type AnalysisBuilder struct {
	reports  []*types.GroupReport
	location *time.Location
}

// NewAnalysisBuilder creates a builder rendering timestamps in loc.
func NewAnalysisBuilder(reports []*types.GroupReport, loc *time.Location) *AnalysisBuilder {
	return &AnalysisBuilder{reports: reports, location: loc}
}

// Build renders the report.
func (b *AnalysisBuilder) Build() *telegram.Response {
	if len(b.reports) == 0 {
		return &telegram.Response{
			Text: "📊 <b>TELEGRAM GROUP ANALYSIS</b>\n\n" +
				"No groups tracked yet.\n" +
				"Add the bot to a group as an administrator to start collecting data.",
			Keyboard: menu.BackKeyboard(),
		}
	}

	var sb strings.Builder
	sb.WriteString("📊 <b>TELEGRAM GROUP ANALYSIS</b>\n\n")

	for _, report := range b.reports {
		group := report.Group

		fmt.Fprintf(&sb, "<b>%s</b>\n", telegram.Escape(group.Title()))
		fmt.Fprintf(&sb, "👥 Total members: %d\n", group.TotalMembers)
		fmt.Fprintf(&sb, "🚪 Left: %d\n", group.LeftMembers)
		fmt.Fprintf(&sb, "👢 Kicked: %d\n", group.KickedMembers)

		if len(report.Left) > 0 {
			fmt.Fprintf(&sb, "\n🚪 <b>Members who left:</b>\n%s\n", memberNames(report.Left))
		}

		if len(report.Kicked) > 0 {
			fmt.Fprintf(&sb, "\n👢 <b>Kicked members:</b>\n%s\n", memberNames(report.Kicked))
		}

		updated := group.LastUpdated.In(b.location)
		fmt.Fprintf(&sb, "\n🕐 Updated: %s (%s)\n\n",
			updated.Format(constants.DateTimeLayout), zoneLabel(updated))
	}

	return &telegram.Response{
		Text:     strings.TrimRight(sb.String(), "\n"),
		Keyboard: menu.BackKeyboard(),
	}
}

// memberNames joins the first few member labels and counts the rest.
func memberNames(members []*types.GroupMember) string {
	shown := members
	if len(shown) > constants.GroupNamesShown {
		shown = shown[:constants.GroupNamesShown]
	}

	names := make([]string, len(shown))
	for i, m := range shown {
		names[i] = telegram.Escape(m.Label())
	}

	text := strings.Join(names, ", ")
	if rest := len(members) - len(shown); rest > 0 {
		text += fmt.Sprintf(" and %d more", rest)
	}

	return text
}

// zoneLabel names the timezone of t, falling back to its UTC offset.
func zoneLabel(t time.Time) string {
	name, offset := t.Zone()
	if name != "" && (name[0] < '0' || name[0] > '9') && name[0] != '+' && name[0] != '-' {
		return name
	}
	return fmt.Sprintf("UTC%+d", offset/3600)
}
