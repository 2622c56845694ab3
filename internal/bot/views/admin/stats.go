package admin

import (
	"fmt"
	"strings"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/telegram"
)

// RatingBuilder creates the ranked manager leaderboard.
type RatingBuilder struct {
	stats []*types.ManagerStats
}

// NewRatingBuilder creates a builder for stats already in rank order.
func NewRatingBuilder(stats []*types.ManagerStats) *RatingBuilder {
	return &RatingBuilder{stats: stats}
}

// Build renders the leaderboard.
func (b *RatingBuilder) Build() *telegram.Response {
	if len(b.stats) == 0 {
		return &telegram.Response{Text: "❌ No managers to rank yet.", Keyboard: menu.BackKeyboard()}
	}

	var sb strings.Builder
	sb.WriteString("🏆 <b>MANAGER RATING</b>\n\n")

	for i, stat := range b.stats {
		fmt.Fprintf(&sb, "%s <b>%s</b>\n", rankDisplay(i+1), telegram.Escape(stat.Name))
		fmt.Fprintf(&sb, "   ✅ Completed: %d\n", stat.Completed)
		fmt.Fprintf(&sb, "   ❌ Not completed: %d\n", stat.NotCompleted)
		fmt.Fprintf(&sb, "   📊 Completion: %s%%\n", formatPercentage(stat.Percentage))
		fmt.Fprintf(&sb, "   📋 Total tasks: %d\n\n", stat.Total)
	}

	kb := telegram.Keyboard{}.
		Row(telegram.NewButton("📈 Chart", constants.AdminRatingChart)).
		Row(menu.BackKeyboard()[0]...)

	return &telegram.Response{Text: strings.TrimRight(sb.String(), "\n"), Keyboard: kb}
}

// RosterBuilder creates the alphabetical employee listing.
type RosterBuilder struct {
	stats []*types.ManagerStats
}

// NewRosterBuilder creates a builder for stats already in alphabetical order.
func NewRosterBuilder(stats []*types.ManagerStats) *RosterBuilder {
	return &RosterBuilder{stats: stats}
}

// Build renders the roster.
func (b *RosterBuilder) Build() *telegram.Response {
	if len(b.stats) == 0 {
		return &telegram.Response{Text: "❌ No employees yet.", Keyboard: menu.BackKeyboard()}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 <b>ALL EMPLOYEES (%d)</b>\n\n", len(b.stats))

	for _, stat := range b.stats {
		fmt.Fprintf(&sb, "<b>%s</b>\n", telegram.Escape(stat.Name))
		fmt.Fprintf(&sb, "   ✅ Completed: %d\n", stat.Completed)
		fmt.Fprintf(&sb, "   ❌ Not completed: %d\n", stat.NotCompleted)
		fmt.Fprintf(&sb, "   🟡 Active: %d\n", stat.Active)
		fmt.Fprintf(&sb, "   📊 Completion: %s%%\n", formatPercentage(stat.Percentage))
		fmt.Fprintf(&sb, "   📋 Total tasks: %d\n\n", stat.Total)
	}

	return &telegram.Response{Text: strings.TrimRight(sb.String(), "\n"), Keyboard: menu.BackKeyboard()}
}

// rankDisplay returns a medal for the top three and the position otherwise.
func rankDisplay(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

// formatPercentage prints up to two decimals without trailing zeros.
func formatPercentage(p float64) string {
	s := fmt.Sprintf("%.2f", p)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
