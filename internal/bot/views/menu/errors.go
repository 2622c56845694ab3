package menu

import (
	"errors"

	"github.com/robalyx/overseer/internal/bot/utils"
	"github.com/robalyx/overseer/internal/database/service"
)

// DeadlineError explains why a typed deadline was rejected.
func DeadlineError(err error) string {
	switch {
	case errors.Is(err, service.ErrDeadlineNotFuture):
		return "❌ The date must be in the future! Try again:"
	case errors.Is(err, utils.ErrInvalidDate):
		return "❌ Invalid date! Use the <b>DD.MM.YYYY</b> format (for example, 25.12.2025)"
	default:
		return "❌ Wrong date format! Use the <b>DD.MM.YYYY</b> format (for example, 25.12.2025)"
	}
}

// AccessDenied is shown when a manager presses an admin-only button.
func AccessDenied() string {
	return "⛔ This action is available to the administrator only."
}
