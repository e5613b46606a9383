package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"autoblogger/internal/ports"
)

// TelegramNotifier posts completion notices to a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

var _ ports.Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier authenticates the bot against the API.
func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	if botToken == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram notifier misconfigured")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Send posts the subject and body as one message. The ctx is accepted for
// interface symmetry; the underlying client manages its own timeouts.
func (n *TelegramNotifier) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, subject+"\n\n"+body)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
