package domain

import "context"

// PriceSource - источник рыночной цены (EVE ESI)
type PriceSource interface {
	// Лучший (минимальный) ордер на продажу с названием локации.
	// Ошибки: ErrUpstreamUnavailable, ErrNoLiquidity.
	FetchBestSellOrder(ctx context.Context, q MarketQuery) (PriceQuote, error)
}

// MessageSender - отправка сообщения в произвольный чат/тему
type MessageSender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier - уведомления в настроенный чат. Никогда не возвращает ошибку:
// вызывающий код только узнает, доставлено ли сообщение.
type Notifier interface {
	Notify(ctx context.Context, text string) (delivered bool)
	Enabled() bool
}
