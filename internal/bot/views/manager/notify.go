package manager

import (
	"fmt"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/utils"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/telegram"
)

// Assigned notifies a manager about a new task.
func Assigned(task *types.Task) *telegram.Response {
	return &telegram.Response{
		Text: fmt.Sprintf("🆕 <b>New task!</b>\n\n📌 <b>Task:</b> %s\n📅 <b>Deadline:</b> %s",
			telegram.Escape(task.Text), utils.FormatDate(task.Deadline)),
		Keyboard: ActionsKeyboard(task.ID),
	}
}

// Reminder warns a manager about a task due today.
func Reminder(task *types.Task) *telegram.Response {
	return &telegram.Response{
		Text: fmt.Sprintf("⏰ <b>Deadline reminder!</b>\n\n📌 <b>Task:</b> %s\n📅 <b>Deadline:</b> %s\n\n"+
			"Please mark the task as done.",
			telegram.Escape(task.Text), task.Deadline.UTC().Format(constants.DateTimeLayout)),
		Keyboard: ActionsKeyboard(task.ID),
	}
}
