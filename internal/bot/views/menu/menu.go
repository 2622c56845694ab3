package menu

import (
	"github.com/robalyx/overseer/internal/bot/constants"
	"github.com/robalyx/overseer/internal/telegram"
)

// AdminKeyboard is the administrator's main menu.
func AdminKeyboard() telegram.Keyboard {
	return telegram.Keyboard{}.
		Row(telegram.NewButton("1️⃣ ADD TASK", constants.AdminAddTask)).
		Row(telegram.NewButton("2️⃣ ALL TASKS", constants.AdminAllTasks)).
		Row(telegram.NewButton("3️⃣ TELEGRAM GROUP ANALYSIS", constants.AdminGroupAnalysis)).
		Row(telegram.NewButton("4️⃣ MANAGER RATING", constants.AdminRating)).
		Row(telegram.NewButton("5️⃣ CLEAN UP COMPLETED TASKS", constants.AdminCleanup)).
		Row(telegram.NewButton("6️⃣ ALL EMPLOYEES", constants.AdminAllEmployees))
}

// ManagerKeyboard is a manager's main menu.
func ManagerKeyboard() telegram.Keyboard {
	return telegram.Keyboard{}.
		Row(telegram.NewButton("📋 My tasks", constants.ManagerMyTasks))
}

// BackKeyboard holds a single button returning to the main menu.
func BackKeyboard() telegram.Keyboard {
	return telegram.Keyboard{}.
		Row(telegram.NewButton("◀️ Back", constants.BackToMenu))
}

// Keyboard returns the main menu for the user's role.
func Keyboard(isAdmin bool) telegram.Keyboard {
	if isAdmin {
		return AdminKeyboard()
	}
	return ManagerKeyboard()
}

// Welcome is the reply to /start.
func Welcome(isAdmin bool) *telegram.Response {
	text := "👋 Welcome!\n\nChoose an action:"
	if isAdmin {
		text = "👋 Welcome, administrator!\n\nChoose an action:"
	}
	return &telegram.Response{Text: text, Keyboard: Keyboard(isAdmin)}
}

// Main is shown when returning to the menu.
func Main(isAdmin bool) *telegram.Response {
	text := "👋 Main menu"
	if isAdmin {
		text = "👋 Administrator main menu"
	}
	return &telegram.Response{Text: text, Keyboard: Keyboard(isAdmin)}
}

// WithMenu prefixes a notice to the role's main menu.
func WithMenu(text string, isAdmin bool) *telegram.Response {
	return &telegram.Response{Text: text, Keyboard: Keyboard(isAdmin)}
}

// Error is the generic failure reply.
func Error(isAdmin bool) *telegram.Response {
	return WithMenu("❌ Something went wrong. Please try again later.", isAdmin)
}
