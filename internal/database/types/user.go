package types

import (
	"strconv"
	"time"

	"github.com/robalyx/overseer/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// User represents a Telegram account known to the bot.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID         int64     `bun:",pk,autoincrement"        json:"id"`
	TelegramID int64     `bun:",unique,notnull"          json:"telegramId"`
	Username   string    `bun:",nullzero"                json:"username,omitempty"`
	FirstName  string    `bun:",nullzero"                json:"firstName,omitempty"`
	LastName   string    `bun:",nullzero"                json:"lastName,omitempty"`
	Role       enum.Role `bun:",notnull,default:'manager'" json:"role"`
	CreatedAt  time.Time `bun:",notnull"                 json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == enum.RoleAdmin
}

// DisplayName returns the first name, falling back to the username and then the Telegram id.
func (u *User) DisplayName() string {
	return DisplayName(u.FirstName, u.Username, u.TelegramID)
}

// DisplayName builds the name shown for a Telegram identity.
func DisplayName(firstName, username string, telegramID int64) string {
	switch {
	case firstName != "":
		return firstName
	case username != "":
		return username
	default:
		return "ID: " + strconv.FormatInt(telegramID, 10)
	}
}

// Identity is the platform-provided identity of whoever sent an update.
type Identity struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}
