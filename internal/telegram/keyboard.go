package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Button is an inline keyboard button carrying callback data.
type Button struct {
	Text string
	Data string
}

// Keyboard is a grid of inline buttons, one slice per row.
type Keyboard [][]Button

// Response is a message body with an optional inline keyboard.
type Response struct {
	Text     string
	Keyboard Keyboard
}

// NewButton creates a callback button.
func NewButton(text, data string) Button {
	return Button{Text: text, Data: data}
}

// Row appends a row of buttons and returns the keyboard.
func (k Keyboard) Row(buttons ...Button) Keyboard {
	if len(buttons) == 0 {
		return k
	}
	return append(k, buttons)
}

// Markup converts the keyboard into the Bot API representation.
// An empty keyboard yields nil so that no markup is attached.
func (k Keyboard) Markup() *tgbotapi.InlineKeyboardMarkup {
	if len(k) == 0 {
		return nil
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(k))
	for _, row := range k {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// Escape escapes user supplied text for HTML formatted messages.
func Escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}
