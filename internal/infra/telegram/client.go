// internal/infra/telegram/client.go
package telegram

import (
	"fmt"

	domainTelegram "homework_notification_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the domain Client interface using the
// gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the specified recipient. Any
// transport failure is wrapped in ErrSend so callers can recognize it
// without depending on telebot error types.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}

	recipient := &telebot.User{ID: recipientChatID}
	if _, err := tba.bot.Send(recipient, text, options); err != nil {
		return fmt.Errorf("%w: %v", domainTelegram.ErrSend, err)
	}
	return nil
}
