package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/romanzzaa/plex-monitor/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPriceService struct {
	mock.Mock
}

func (m *MockPriceService) CurrentPrice(ctx context.Context) (domain.PriceQuote, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.PriceQuote), args.Error(1)
}

type panicPrices struct{}

func (panicPrices) CurrentPrice(context.Context) (domain.PriceQuote, error) {
	panic("boom")
}

type recordingSender struct {
	mu   sync.Mutex
	sent []domain.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) Sent() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.sent...)
}

// chanSource отдаёт заранее заданные сообщения и закрывает канал
type chanSource []domain.InboundMessage

func (c chanSource) Updates(context.Context) <-chan domain.InboundMessage {
	ch := make(chan domain.InboundMessage, len(c))
	for _, m := range c {
		ch <- m
	}
	close(ch)
	return ch
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var jitaQuote = domain.PriceQuote{
	Price:      decimal.RequireFromString("4123456.7"),
	Currency:   domain.Currency,
	Location:   "Jita IV - Moon 4 - Caldari Navy Assembly Plant",
	CapturedAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	Source:     "EVE ESI API",
}

func run(t *testing.T, prices PriceService, sender *recordingSender, msgs ...domain.InboundMessage) {
	t.Helper()
	h := NewHandler(prices, sender, chanSource(msgs), discardLogger())

	done := make(chan struct{})
	go func() {
		h.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not finish")
	}
}

func TestHandler_PriceInThread(t *testing.T) {
	prices := new(MockPriceService)
	prices.On("CurrentPrice", mock.Anything).Return(jitaQuote, nil).Once()
	sender := &recordingSender{}

	run(t, prices, sender, domain.InboundMessage{
		ChatID: "-100123", ThreadID: 42, IsTopic: true, Text: "/price", Command: "price",
	})

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "-100123", sent[0].Destination)
	assert.Equal(t, 42, sent[0].ThreadID)
	assert.Contains(t, sent[0].Text, "4,123,456.70 ISK")
	assert.Contains(t, sent[0].Text, "Caldari Navy Assembly Plant")
	prices.AssertExpectations(t)
}

func TestHandler_PriceTopLevel(t *testing.T) {
	prices := new(MockPriceService)
	prices.On("CurrentPrice", mock.Anything).Return(jitaQuote, nil)
	sender := &recordingSender{}

	// reply_to без темы: thread id не переносится
	run(t, prices, sender, domain.InboundMessage{ChatID: "555", ThreadID: 7, Command: "price"})

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "555", sent[0].Destination)
	assert.Zero(t, sent[0].ThreadID)
}

func TestHandler_PriceErrorReply(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{name: "upstream", err: fmt.Errorf("%w: status 502", domain.ErrUpstreamUnavailable), reason: "рынок EVE ESI недоступен"},
		{name: "no liquidity", err: domain.ErrNoLiquidity, reason: "нет ордеров на продажу PLEX"},
		{name: "internal", err: errors.New("nil pointer somewhere"), reason: "внутренняя ошибка"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices := new(MockPriceService)
			prices.On("CurrentPrice", mock.Anything).Return(domain.PriceQuote{}, tt.err)
			sender := &recordingSender{}

			run(t, prices, sender, domain.InboundMessage{ChatID: "1", ThreadID: 9, IsTopic: true, Command: "price"})

			sent := sender.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, 9, sent[0].ThreadID)
			assert.Contains(t, sent[0].Text, tt.reason)
			assert.NotContains(t, sent[0].Text, "502")
			assert.NotContains(t, sent[0].Text, "nil pointer")
		})
	}
}

func TestHandler_PanicBecomesReply(t *testing.T) {
	sender := &recordingSender{}

	run(t, panicPrices{}, sender, domain.InboundMessage{ChatID: "1", Command: "price"})

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "внутренняя ошибка")
}

func TestHandler_SendFailureIsSwallowed(t *testing.T) {
	prices := new(MockPriceService)
	prices.On("CurrentPrice", mock.Anything).Return(jitaQuote, nil)
	sender := &recordingSender{err: errors.New("telegram: 429")}

	run(t, prices, sender,
		domain.InboundMessage{ChatID: "1", Command: "price"},
		domain.InboundMessage{ChatID: "2", Command: "price"},
	)

	assert.Len(t, sender.Sent(), 2)
}

func TestHandler_IgnoresPlainText(t *testing.T) {
	prices := new(MockPriceService)
	sender := &recordingSender{}

	run(t, prices, sender,
		domain.InboundMessage{ChatID: "1", Text: "сколько стоит plex?"},
		domain.InboundMessage{ChatID: "1", Text: "/unknown", Command: "unknown"},
	)

	assert.Empty(t, sender.Sent())
	prices.AssertNotCalled(t, "CurrentPrice", mock.Anything)
}

func TestHandler_Help(t *testing.T) {
	sender := &recordingSender{}

	run(t, new(MockPriceService), sender, domain.InboundMessage{ChatID: "1", Command: "start"})

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Text, "/price")
}
