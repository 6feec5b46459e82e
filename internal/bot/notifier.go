package bot

import (
	"context"
	"fmt"

	"fx-sentiment/internal/domain"

	"github.com/charmbracelet/log"
	tele "gopkg.in/telebot.v3"
)

// Sender is satisfied by *tele.Bot.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramNotifier posts alert events to a single chat.
type TelegramNotifier struct {
	sender Sender
	chat   tele.ChatID
}

func NewTelegramNotifier(sender Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chat: tele.ChatID(chatID)}
}

func (n *TelegramNotifier) Notify(ctx context.Context, event domain.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.sender.Send(n.chat, FormatAlert(event)); err != nil {
		return fmt.Errorf("send telegram alert: %w", err)
	}
	log.Info("Alert delivered", "kind", event.Kind, "chat", int64(n.chat))
	return nil
}

// LogNotifier only logs alerts. Used when no alert chat is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event domain.AlertEvent) error {
	log.Warn(event.Title, "kind", event.Kind, "message", event.Message)
	return nil
}

func FormatAlert(event domain.AlertEvent) string {
	return fmt.Sprintf("%s\n%s", event.Title, event.Message)
}
