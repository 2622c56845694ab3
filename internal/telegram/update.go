package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/database/types/enum"
)

// AllowedUpdates lists the update kinds requested from the Bot API.
// Chat member updates are only delivered when asked for explicitly.
var AllowedUpdates = []string{ //nolint:gochecknoglobals // -
	tgbotapi.UpdateTypeMessage,
	tgbotapi.UpdateTypeCallbackQuery,
	tgbotapi.UpdateTypeMyChatMember,
	tgbotapi.UpdateTypeChatMember,
}

// Message is a text message sent to the bot.
type Message struct {
	ChatID    int64
	MessageID int
	Private   bool
	From      types.Identity
	Text      string
	// Command is the bot command without the slash, empty for plain text.
	Command string
}

// Callback is an inline button press.
type Callback struct {
	ID        string
	ChatID    int64
	MessageID int
	From      types.Identity
	Data      string
}

// MemberUpdate is a membership change inside a group.
type MemberUpdate struct {
	Event types.MemberEvent
	// Self is set when the change concerns the bot's own membership.
	Self bool
}

// Update is a platform update reduced to the parts the bot handles.
// Exactly one of the pointer fields is set.
type Update struct {
	ID       int
	Message  *Message
	Callback *Callback
	Member   *MemberUpdate
}

// Kind names the update type for logs and traces.
func (u *Update) Kind() string {
	switch {
	case u.Message != nil:
		return tgbotapi.UpdateTypeMessage
	case u.Callback != nil:
		return tgbotapi.UpdateTypeCallbackQuery
	case u.Member != nil && u.Member.Self:
		return tgbotapi.UpdateTypeMyChatMember
	case u.Member != nil:
		return tgbotapi.UpdateTypeChatMember
	default:
		return "unknown"
	}
}

// SenderID returns the Telegram id of whoever caused the update.
func (u *Update) SenderID() int64 {
	switch {
	case u.Message != nil:
		return u.Message.From.TelegramID
	case u.Callback != nil:
		return u.Callback.From.TelegramID
	case u.Member != nil:
		return u.Member.Event.InitiatorID
	default:
		return 0
	}
}

// Convert reduces a Bot API update. It returns false for updates the bot ignores.
func Convert(u tgbotapi.Update) (*Update, bool) {
	switch {
	case u.Message != nil:
		msg := u.Message
		if msg.From == nil || msg.Chat == nil || msg.From.IsBot {
			return nil, false
		}

		return &Update{
			ID: u.UpdateID,
			Message: &Message{
				ChatID:    msg.Chat.ID,
				MessageID: msg.MessageID,
				Private:   msg.Chat.IsPrivate(),
				From:      identity(msg.From),
				Text:      strings.TrimSpace(msg.Text),
				Command:   msg.Command(),
			},
		}, true

	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if cb.From == nil {
			return nil, false
		}

		callback := &Callback{
			ID:   cb.ID,
			From: identity(cb.From),
			Data: cb.Data,
		}
		if cb.Message != nil && cb.Message.Chat != nil {
			callback.ChatID = cb.Message.Chat.ID
			callback.MessageID = cb.Message.MessageID
		} else {
			callback.ChatID = cb.From.ID
		}

		return &Update{ID: u.UpdateID, Callback: callback}, true

	case u.MyChatMember != nil:
		return memberUpdate(u.UpdateID, u.MyChatMember, true)

	case u.ChatMember != nil:
		return memberUpdate(u.UpdateID, u.ChatMember, false)
	}

	return nil, false
}

// memberUpdate converts a chat member update of a group or supergroup.
func memberUpdate(id int, cm *tgbotapi.ChatMemberUpdated, self bool) (*Update, bool) {
	if !cm.Chat.IsGroup() && !cm.Chat.IsSuperGroup() {
		return nil, false
	}

	if cm.NewChatMember.User == nil {
		return nil, false
	}

	return &Update{
		ID: id,
		Member: &MemberUpdate{
			Self: self,
			Event: types.MemberEvent{
				GroupID:     cm.Chat.ID,
				GroupTitle:  cm.Chat.Title,
				Member:      identity(cm.NewChatMember.User),
				InitiatorID: cm.From.ID,
				OldStatus:   enum.ChatMemberStatus(cm.OldChatMember.Status),
				NewStatus:   enum.ChatMemberStatus(cm.NewChatMember.Status),
			},
		},
	}, true
}

func identity(u *tgbotapi.User) types.Identity {
	return types.Identity{
		TelegramID: u.ID,
		Username:   u.UserName,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}
