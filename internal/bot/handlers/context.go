package handlers

import (
	"context"
	"errors"

	"github.com/robalyx/overseer/internal/bot/core/session"
	"github.com/robalyx/overseer/internal/bot/interfaces"
	"github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/telegram"
)

// ErrNotHandled is returned by a layout that does not recognize an update.
var ErrNotHandled = errors.New("update not handled")

// Context carries the resolved sender of one update to the handlers.
type Context struct {
	User    *types.User
	IsAdmin bool
	ChatID  int64
	Session *session.Session

	// Exactly one of Message and Callback is set.
	Message  *telegram.Message
	Callback *telegram.Callback
}

// Text returns the message text, or an empty string for callbacks.
func (c *Context) Text() string {
	if c.Message == nil {
		return ""
	}
	return c.Message.Text
}

// Data returns the callback data, or an empty string for messages.
func (c *Context) Data() string {
	if c.Callback == nil {
		return ""
	}
	return c.Callback.Data
}

// Reply edits the message a callback came from, or sends a new message.
func (c *Context) Reply(ctx context.Context, m interfaces.Messenger, resp *telegram.Response) error {
	if c.Callback != nil && c.Callback.MessageID != 0 {
		return m.Edit(ctx, c.ChatID, c.Callback.MessageID, resp)
	}

	_, err := m.Send(ctx, c.ChatID, resp)
	return err
}

// Layout handles a group of related callbacks and conversation states.
type Layout interface {
	// HandleCallback processes button presses, returning ErrNotHandled for foreign data.
	HandleCallback(ctx context.Context, hc *Context) error
	// HandleText processes a message for the current conversation state,
	// returning ErrNotHandled when the state belongs to another layout.
	HandleText(ctx context.Context, hc *Context) error
}
