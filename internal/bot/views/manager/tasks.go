package manager

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

// TaskListBuilder creates the paginated list of a manager's active tasks.
type TaskListBuilder struct {
	tasks []*types.Task
	page  int
}

// NewTaskListBuilder creates a builder for the given zero-based page.
func NewTaskListBuilder(tasks []*types.Task, page int) *TaskListBuilder {
	return &TaskListBuilder{tasks: tasks, page: ClampPage(page, len(tasks))}
}

// ClampPage keeps page within the pages available for count tasks.
func ClampPage(page, count int) int {
	last := 0
	if count > 0 {
		last = (count - 1) / constants.TasksPerPage
	}
	return max(0, min(page, last))
}

// Build renders the list.
func (b *TaskListBuilder) Build() *telegram.Response {
	if len(b.tasks) == 0 {
		return &telegram.Response{Text: "✅ You have no active tasks!", Keyboard: menu.BackKeyboard()}
	}

	start := b.page * constants.TasksPerPage
	end := min(start+constants.TasksPerPage, len(b.tasks))

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>Your active tasks (%d):</b>\n\n", len(b.tasks))

	kb := telegram.Keyboard{}
	for i, task := range b.tasks[start:end] {
		fmt.Fprintf(&sb, "%d. %s (until %s)\n",
			start+i+1,
			telegram.Escape(pkgutils.Truncate(pkgutils.CompressAllWhitespace(task.Text), constants.AllTasksTextLength)),
			utils.FormatDate(task.Deadline),
		)

		kb = kb.Row(telegram.NewButton(
			fmt.Sprintf("📌 %s (until %s)",
				pkgutils.Truncate(pkgutils.CompressAllWhitespace(task.Text), constants.TaskButtonLength),
				utils.FormatDate(task.Deadline)),
			utils.WithID(constants.TaskPrefix, task.ID),
		))
	}

	var nav []telegram.Button
	if b.page > 0 {
		nav = append(nav, telegram.NewButton("◀️", utils.WithID(constants.TasksPagePrefix, int64(b.page-1))))
	}
	if end < len(b.tasks) {
		nav = append(nav, telegram.NewButton("▶️", utils.WithID(constants.TasksPagePrefix, int64(b.page+1))))
	}

	kb = kb.Row(nav...).Row(menu.BackKeyboard()[0]...)

	return &telegram.Response{Text: strings.TrimRight(sb.String(), "\n"), Keyboard: kb}
}

// ActionsKeyboard holds the complete and not-complete buttons of a task.
func ActionsKeyboard(taskID int64) telegram.Keyboard {
	return telegram.Keyboard{}.
		Row(
			telegram.NewButton("✅ DONE", utils.WithID(constants.TaskCompletePrefix, taskID)),
			telegram.NewButton("❌ NOT DONE", utils.WithID(constants.TaskNotCompletePrefix, taskID)),
		).
		Row(telegram.NewButton("◀️ Back to tasks", constants.ManagerMyTasks))
}

// TaskDetails shows one task with its actions.
func TaskDetails(task *types.Task) *telegram.Response {
	return &telegram.Response{
		Text: fmt.Sprintf("📌 <b>Task #%d</b>\n\n<b>Text:</b> %s\n<b>Deadline:</b> %s\n\nChoose an action:",
			task.ID, telegram.Escape(task.Text), utils.FormatDate(task.Deadline)),
		Keyboard: ActionsKeyboard(task.ID),
	}
}

// TaskUnavailable is shown for tasks that are missing, foreign or no longer active.
func TaskUnavailable() *telegram.Response {
	return &telegram.Response{Text: "❌ Task not found or no longer active.", Keyboard: menu.ManagerKeyboard()}
}

// TaskCompleted confirms a completed task.
func TaskCompleted(task *types.Task) *telegram.Response {
	return &telegram.Response{
		Text:     fmt.Sprintf("✅ Task #%d marked as completed!\n\n📌 %s", task.ID, telegram.Escape(task.Text)),
		Keyboard: menu.ManagerKeyboard(),
	}
}

// ReasonPrompt asks why the task was not completed.
func ReasonPrompt() *telegram.Response {
	return &telegram.Response{Text: "📝 Why was the task not completed? Enter the reason:"}
}

// ReasonTooShort rejects a reason below the minimum length.
func ReasonTooShort(minLength int) *telegram.Response {
	return &telegram.Response{
		Text: fmt.Sprintf("❌ The reason must be at least %d characters. Try again:", minLength),
	}
}

// NewDeadlinePrompt asks for the rescheduled deadline.
func NewDeadlinePrompt() *telegram.Response {
	return &telegram.Response{
		Text: "📅 Enter the new deadline in <b>DD.MM.YYYY</b> format (for example, 25.12.2025):",
	}
}

// Rescheduled confirms the new deadline.
func Rescheduled(task *types.Task) *telegram.Response {
	return &telegram.Response{
		Text: fmt.Sprintf("✅ Deadline updated!\n\n📅 New deadline: %s\n📝 Reason: %s\n\nThe task is active again.",
			utils.FormatDate(task.Deadline), telegram.Escape(task.NotCompletedReason)),
		Keyboard: menu.ManagerKeyboard(),
	}
}
