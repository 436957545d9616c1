package telegram

import (
	"errors"

	"gopkg.in/telebot.v3"
)

// ErrSend marks a failed outbound Telegram message. The poll loop logs
// these and moves on; a failed send must never stop the next cycle.
var ErrSend = errors.New("telegram send failed")

// Client defines an interface for sending messages via a Telegram bot.
// This keeps the application logic decoupled from the bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
