package interfaces

import (
	"context"

	"github.com/robalyx/overseer/internal/telegram"
)

// Messenger delivers messages through the chat platform.
type Messenger interface {
	Send(ctx context.Context, chatID int64, resp *telegram.Response) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, resp *telegram.Response) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	SendPhoto(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	SendDocument(ctx context.Context, chatID int64, path, caption string) error
	MemberCount(ctx context.Context, groupID int64) (int, error)
}
