package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robalyx/overseer/pkg/utils"
	"go.uber.org/zap"
)

// Client wraps the Bot API with retries and the bot's own types.
type Client struct {
	api         *tgbotapi.BotAPI
	retry       utils.RetryOptions
	pollTimeout int
	logger      *zap.Logger
}

// New connects to the Bot API and verifies the token.
func New(token string, pollTimeout int, retry utils.RetryOptions, logger *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	logger = logger.Named("telegram")
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	return &Client{
		api:         api,
		retry:       retry,
		pollTimeout: pollTimeout,
		logger:      logger,
	}, nil
}

// Username returns the bot account's username.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Updates starts long polling. The channel closes once ctx is done.
func (c *Client) Updates(ctx context.Context) <-chan *Update {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.pollTimeout
	u.AllowedUpdates = AllowedUpdates

	raw := c.api.GetUpdatesChan(u)
	out := make(chan *Update)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				c.api.StopReceivingUpdates()
				return
			case update, ok := <-raw:
				if !ok {
					return
				}

				converted, ok := Convert(update)
				if !ok {
					continue
				}

				select {
				case out <- converted:
				case <-ctx.Done():
					c.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()

	return out
}

// Send posts a new HTML message and returns its id.
func (c *Client) Send(ctx context.Context, chatID int64, resp *Response) (int, error) {
	msg := tgbotapi.NewMessage(chatID, resp.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup := resp.Keyboard.Markup(); markup != nil {
		msg.ReplyMarkup = markup
	}

	sent, err := c.send(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}

	return sent.MessageID, nil
}

// Edit replaces the text and keyboard of a message sent by the bot.
func (c *Client) Edit(ctx context.Context, chatID int64, messageID int, resp *Response) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, resp.Text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = resp.Keyboard.Markup()

	if _, err := c.send(ctx, edit); err != nil {
		if isNotModified(err) {
			return nil
		}
		return fmt.Errorf("failed to edit message %d in %d: %w", messageID, chatID, err)
	}

	return nil
}

// AnswerCallback acknowledges a button press, optionally with a toast text.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := utils.WithRetry(ctx, func() (*tgbotapi.APIResponse, error) {
		resp, err := c.api.Request(tgbotapi.NewCallback(callbackID, text))
		return resp, classify(err)
	}, c.retry)
	if err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}

	return nil
}

// SendPhoto uploads an image from memory.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML

	if _, err := c.send(ctx, photo); err != nil {
		return fmt.Errorf("failed to send photo to %d: %w", chatID, err)
	}

	return nil
}

// SendDocument uploads a file from disk.
func (c *Client) SendDocument(ctx context.Context, chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	doc.ParseMode = tgbotapi.ModeHTML

	if _, err := c.send(ctx, doc); err != nil {
		return fmt.Errorf("failed to send document to %d: %w", chatID, err)
	}

	return nil
}

// MemberCount returns the current number of members of a group.
func (c *Client) MemberCount(ctx context.Context, groupID int64) (int, error) {
	count, err := utils.WithRetry(ctx, func() (int, error) {
		count, err := c.api.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: groupID},
		})
		return count, classify(err)
	}, c.retry)
	if err != nil {
		return 0, fmt.Errorf("failed to get member count of %d: %w", groupID, err)
	}

	return count, nil
}

// send delivers a chattable with retries on transient failures.
func (c *Client) send(ctx context.Context, chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	return utils.WithRetry(ctx, func() (tgbotapi.Message, error) {
		msg, err := c.api.Send(chattable)
		if err != nil {
			c.logger.Debug("Bot API request failed", zap.Error(err))
		}
		return msg, classify(err)
	}, c.retry)
}

// classify marks client errors as permanent so only rate limits,
// server errors and network failures are retried.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return err
		}
		return utils.Permanent(err)
	}

	return err
}

// isNotModified reports the error returned when an edit would not change the message.
func isNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified")
}
