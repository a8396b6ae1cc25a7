package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/romanzzaa/plex-monitor/internal/domain"
)

const helpText = "Доступные команды:\n/price - текущая цена PLEX в Jita"

// PriceService - свежая цена в обход кэша (реализует *usecase.AdminService)
type PriceService interface {
	CurrentPrice(ctx context.Context) (domain.PriceQuote, error)
}

// UpdateSource - поток входящих сообщений (реализует *telegram.Client)
type UpdateSource interface {
	Updates(ctx context.Context) <-chan domain.InboundMessage
}

type Handler struct {
	prices  PriceService
	sender  domain.MessageSender
	updates UpdateSource
	logger  *slog.Logger

	wg sync.WaitGroup
}

func NewHandler(prices PriceService, sender domain.MessageSender, updates UpdateSource, logger *slog.Logger) *Handler {
	return &Handler{
		prices:  prices,
		sender:  sender,
		updates: updates,
		logger:  logger.With("component", "bot"),
	}
}

// Start читает обновления до отмены ctx и дожидается обработчиков, которые уже запущены.
// Незавершённый long poll не держит остановку: выходим сразу по ctx.Done.
func (h *Handler) Start(ctx context.Context) {
	h.logger.Info("Listening for commands")
	defer h.logger.Info("Command listener stopped")
	defer h.wg.Wait()

	updates := h.updates.Updates(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-updates:
			if !ok {
				return
			}
			h.wg.Add(1)
			go func() {
				defer h.wg.Done()
				h.handleMessage(ctx, msg)
			}()
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg domain.InboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in command handler",
				slog.String("chat_id", msg.ChatID),
				slog.String("error", fmt.Sprint(r)))
			h.reply(ctx, msg, domain.FormatCommandError(domain.ErrInternal))
		}
	}()

	switch msg.Command {
	case "price":
		h.cmdPrice(ctx, msg)
	case "start", "help":
		h.reply(ctx, msg, helpText)
	}
}

// --- Commands ---

func (h *Handler) cmdPrice(ctx context.Context, msg domain.InboundMessage) {
	h.logger.Info("Price command",
		slog.String("chat_id", msg.ChatID),
		slog.Int("thread_id", msg.ThreadID),
		slog.Int64("from_id", msg.FromID))

	quote, err := h.prices.CurrentPrice(ctx)
	if err != nil {
		h.logger.Warn("Price command failed", slog.String("error", err.Error()))
		h.reply(ctx, msg, domain.FormatCommandError(err))
		return
	}

	h.reply(ctx, msg, domain.FormatPriceCard(quote))
}

// --- Helpers ---

func (h *Handler) reply(ctx context.Context, msg domain.InboundMessage, text string) {
	if err := h.sender.Send(ctx, msg.ReplyTo(text)); err != nil {
		h.logger.Error("Failed to send reply",
			slog.String("chat_id", msg.ChatID),
			slog.String("error", err.Error()))
	}
}
