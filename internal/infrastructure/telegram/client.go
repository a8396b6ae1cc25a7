package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/romanzzaa/plex-monitor/internal/domain"
)

const (
	DefaultSendTimeout = 10 * time.Second
	longPollTimeout    = 25 // секунд, параметр timeout для getUpdates
	retryDelay         = 3 * time.Second
)

// requester - то, что нам нужно от *tgbotapi.BotAPI
type requester interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// Client работает с Bot API через MakeRequest: так можно передать message_thread_id,
// которого нет в типизированных конфигах библиотеки.
type Client struct {
	api    requester // отправка, таймаут sendTimeout
	poller requester // long polling, таймаут больше longPollTimeout
	logger *slog.Logger

	retryDelay time.Duration
}

// NewClient авторизует бота (getMe). Пустой endpoint означает публичный Bot API.
func NewClient(token, endpoint string, sendTimeout time.Duration, logger *slog.Logger) (*Client, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: sendTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	bot.Debug = false

	pollBot := *bot
	pollBot.Client = &http.Client{Timeout: longPollTimeout*time.Second + sendTimeout}

	logger = logger.With("component", "telegram")
	logger.Info("Telegram bot authorized", slog.String("username", bot.Self.UserName))

	return &Client{
		api:        bot,
		poller:     &pollBot,
		logger:     logger,
		retryDelay: retryDelay,
	}, nil
}

// Send отправляет HTML-сообщение. ThreadID != 0 адресует тему форума.
func (c *Client) Send(ctx context.Context, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := tgbotapi.Params{}
	params.AddNonEmpty("chat_id", msg.Destination)
	params.AddNonEmpty("text", msg.Text)
	params.AddNonEmpty("parse_mode", tgbotapi.ModeHTML)
	params.AddNonZero("message_thread_id", msg.ThreadID)

	if _, err := c.api.MakeRequest("sendMessage", params); err != nil {
		return err
	}

	c.logger.Debug("Message sent",
		slog.String("chat_id", msg.Destination),
		slog.Int("thread_id", msg.ThreadID))
	return nil
}

// --- Updates (long polling) ---

type update struct {
	UpdateID int      `json:"update_id"`
	Message  *message `json:"message"`
}

// message дополняет tgbotapi.Message полями тем форума
type message struct {
	tgbotapi.Message
	MessageThreadID int  `json:"message_thread_id"`
	IsTopicMessage  bool `json:"is_topic_message"`
}

// Updates запускает long polling. Канал закрывается после отмены ctx.
func (c *Client) Updates(ctx context.Context) <-chan domain.InboundMessage {
	out := make(chan domain.InboundMessage, 100)

	go func() {
		defer close(out)

		offset := 0
		for ctx.Err() == nil {
			updates, err := c.getUpdates(offset)
			if err != nil {
				c.logger.Error("Failed to get updates", slog.String("error", err.Error()))
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.retryDelay):
				}
				continue
			}

			for _, u := range updates {
				if u.UpdateID >= offset {
					offset = u.UpdateID + 1
				}
				in, ok := toInbound(u.Message)
				if !ok {
					continue
				}
				select {
				case out <- in:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

func (c *Client) getUpdates(offset int) ([]update, error) {
	params := tgbotapi.Params{}
	params.AddNonZero("offset", offset)
	params.AddNonZero("timeout", longPollTimeout)
	params["allowed_updates"] = `["message"]`

	resp, err := c.poller.MakeRequest("getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}

func toInbound(m *message) (domain.InboundMessage, bool) {
	if m == nil || m.Chat == nil {
		return domain.InboundMessage{}, false
	}

	in := domain.InboundMessage{
		ChatID:   strconv.FormatInt(m.Chat.ID, 10),
		ThreadID: m.MessageThreadID,
		IsTopic:  m.IsTopicMessage,
		Text:     m.Text,
	}
	if m.From != nil {
		in.FromID = m.From.ID
	}
	if m.Message.IsCommand() {
		in.Command = m.Message.Command()
	}
	return in, true
}
