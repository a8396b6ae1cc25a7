package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/romanzzaa/plex-monitor/internal/domain"
	"github.com/romanzzaa/plex-monitor/pkg/degrade"
)

// Notifier - уведомления в настроенный чат (и тему, если задана).
// Ошибка отправки логируется и превращается в delivered=false.
type Notifier struct {
	sender  domain.MessageSender
	chatID  string
	topicID int
	logger  *slog.Logger
}

func NewNotifier(sender domain.MessageSender, chatID string, topicID int, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		chatID:  chatID,
		topicID: topicID,
		logger:  logger.With("component", "notifier"),
	}
}

func (n *Notifier) Notify(ctx context.Context, text string) bool {
	msg := domain.Message{Destination: n.chatID, Text: text, ThreadID: n.topicID}

	return degrade.Attempt(
		func() (bool, error) {
			if err := n.sender.Send(ctx, msg); err != nil {
				return false, fmt.Errorf("%w: %w", domain.ErrNotifierSendFailure, err)
			}
			return true, nil
		},
		func(err error) bool {
			n.logger.Error("Failed to send notification",
				slog.String("chat_id", n.chatID),
				slog.Int("topic_id", n.topicID),
				slog.String("error", err.Error()))
			return false
		},
	).Value
}

func (n *Notifier) Enabled() bool {
	return true
}

// DisabledNotifier используется, когда нет токена или chat_id.
// Причина логируется один раз при создании, дальше сообщения молча отбрасываются.
type DisabledNotifier struct{}

func NewDisabledNotifier(reason string, logger *slog.Logger) DisabledNotifier {
	logger.Error("Telegram notifications disabled",
		slog.String("reason", reason),
		slog.String("error", domain.ErrNotifierDisabled.Error()))
	return DisabledNotifier{}
}

func (DisabledNotifier) Notify(context.Context, string) bool { return false }

func (DisabledNotifier) Enabled() bool { return false }
