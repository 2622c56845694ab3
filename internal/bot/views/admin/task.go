package admin

import (
	"fmt"

	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/bot/utils"
	"github.com/robalyx/overseer/internal/bot/views/menu"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/telegram"
)

// CancelKeyboard aborts the add-task conversation.
func CancelKeyboard() telegram.Keyboard {
	return telegram.Keyboard{}.
		Row(telegram.NewButton("◀️ Cancel", constants.AdminCancel))
}

// ManagerPicker lists managers that can receive a task.
func ManagerPicker(managers []*types.User) *telegram.Response {
	kb := telegram.Keyboard{}
	for _, manager := range managers {
		kb = kb.Row(telegram.NewButton(
			manager.DisplayName(),
			utils.WithID(constants.SelectManagerPrefix, manager.ID),
		))
	}

	return &telegram.Response{
		Text:     "👤 Choose a manager for the task:",
		Keyboard: kb.Row(CancelKeyboard()[0]...),
	}
}

// NoManagers is shown when nobody can be assigned a task.
func NoManagers() *telegram.Response {
	return menu.WithMenu("❌ No managers available!", true)
}

// TextPrompt asks for the task body.
func TextPrompt() *telegram.Response {
	return &telegram.Response{Text: "📝 Enter the task text:", Keyboard: CancelKeyboard()}
}

// TextTooShort rejects a task body below the minimum length.
func TextTooShort(minLength int) *telegram.Response {
	return &telegram.Response{
		Text:     fmt.Sprintf("❌ The task text must be at least %d characters. Try again:", minLength),
		Keyboard: CancelKeyboard(),
	}
}

// DeadlinePrompt asks for the task deadline.
func DeadlinePrompt() *telegram.Response {
	return &telegram.Response{
		Text:     "📅 Enter the deadline in <b>DD.MM.YYYY</b> format (for example, 25.12.2025):",
		Keyboard: CancelKeyboard(),
	}
}

// TaskCreated confirms a new task.
func TaskCreated(task *types.Task) *telegram.Response {
	return menu.WithMenu(fmt.Sprintf(
		"✅ Task created!\n\n📌 Text: %s\n📅 Deadline: %s\n👤 Manager: %s",
		telegram.Escape(task.Text),
		utils.FormatDate(task.Deadline),
		telegram.Escape(task.ManagerName()),
	), true)
}

// Cancelled confirms an aborted conversation.
func Cancelled() *telegram.Response {
	return menu.WithMenu("❌ Action cancelled.", true)
}
