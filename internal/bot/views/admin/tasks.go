package admin

import (
	"fmt"
	"strings"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/utils"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/telegram"
	pkgutils "github.com/robalyx/overseer/pkg/utils"
)

// AllTasksBuilder creates the listing of every task.
type AllTasksBuilder struct {
	tasks []*types.Task
	total int
}

// NewAllTasksBuilder creates a builder for a page of tasks out of total.
func NewAllTasksBuilder(tasks []*types.Task, total int) *AllTasksBuilder {
	return &AllTasksBuilder{tasks: tasks, total: total}
}

// Build renders the listing.
func (b *AllTasksBuilder) Build() *telegram.Response {
	if b.total == 0 {
		return &telegram.Response{Text: "📋 No tasks yet.", Keyboard: menu.BackKeyboard()}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>All tasks (%d):</b>\n\n", b.total)

	for _, task := range b.tasks {
		fmt.Fprintf(&sb, "%s <b>#%d</b> | %s\n   %s\n   📅 %s | Status: %s\n\n",
			task.Status.Glyph(),
			task.ID,
			telegram.Escape(task.ManagerName()),
			telegram.Escape(pkgutils.Truncate(pkgutils.CompressAllWhitespace(task.Text), constants.AllTasksTextLength)),
			utils.FormatDate(task.Deadline),
			task.Status,
		)
	}

	if rest := b.total - len(b.tasks); rest > 0 {
		fmt.Fprintf(&sb, "... and %d more tasks", rest)
	}

	return &telegram.Response{
		Text:     strings.TrimRight(sb.String(), "\n"),
		Keyboard: menu.BackKeyboard(),
	}
}
