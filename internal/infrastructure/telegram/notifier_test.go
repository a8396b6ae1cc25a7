package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/romanzzaa/plex-monitor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var errSend = errors.New("connection reset by peer")

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func TestNotifier_Delivered(t *testing.T) {
	sender := new(MockSender)
	want := domain.Message{Destination: "-100500", Text: "price", ThreadID: 3}
	sender.On("Send", mock.Anything, want).Return(nil).Once()

	n := NewNotifier(sender, "-100500", 3, discardLogger())

	assert.True(t, n.Notify(context.Background(), "price"))
	assert.True(t, n.Enabled())
	sender.AssertExpectations(t)
}

func TestNotifier_SendFailure(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(errSend)

	n := NewNotifier(sender, "1", 0, discardLogger())

	assert.False(t, n.Notify(context.Background(), "price"))
	assert.False(t, n.Notify(context.Background(), "again"))
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestNotifier_OverRealClient(t *testing.T) {
	f := &fakeBotAPI{}
	c := newTestClient(t, f)
	n := NewNotifier(c, "-100500", 9, discardLogger())

	assert.True(t, n.Notify(context.Background(), "🚀 started"))

	sent := f.Sent()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "9", sent[0].Get("message_thread_id"))
	}
}

func TestDisabledNotifier(t *testing.T) {
	n := NewDisabledNotifier("TELEGRAM_TOKEN is not set", discardLogger())

	assert.False(t, n.Enabled())
	assert.False(t, n.Notify(context.Background(), "anything"))
}
