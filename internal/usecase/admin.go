package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/romanzzaa/plex-monitor/internal/domain"
	"github.com/romanzzaa/plex-monitor/internal/worker"
)

// PhaseReporter - фаза цикла опроса (реализует *worker.Poller)
type PhaseReporter interface {
	Phase() domain.LoopPhase
}

// Status - ответ на запрос статуса
type Status struct {
	domain.MonitorStatus
	TelegramConnected bool
}

// AdminService - административные операции над монитором.
// Status читает только State, CurrentPrice всегда ходит в PriceSource.
type AdminService struct {
	state    *worker.State
	loop     PhaseReporter
	source   domain.PriceSource
	notifier domain.Notifier
	query    domain.MarketQuery
	logger   *slog.Logger
}

func NewAdminService(
	state *worker.State,
	loop PhaseReporter,
	source domain.PriceSource,
	notifier domain.Notifier,
	query domain.MarketQuery,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		state:    state,
		loop:     loop,
		source:   source,
		notifier: notifier,
		query:    query,
		logger:   logger.With("component", "admin"),
	}
}

func (s *AdminService) Status() Status {
	snap := s.state.Read()
	return Status{
		MonitorStatus: domain.MonitorStatus{
			Phase:       s.loop.Phase(),
			Interval:    snap.Interval,
			LastPrice:   snap.LastPrice,
			LastUpdated: snap.LastUpdated,
		},
		TelegramConnected: s.notifier.Enabled(),
	}
}

// CurrentPrice - свежая цена в обход State. Кэш не читается и не обновляется.
func (s *AdminService) CurrentPrice(ctx context.Context) (quote domain.PriceQuote, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic while fetching current price", slog.String("error", fmt.Sprint(r)))
			quote, err = domain.PriceQuote{}, domain.ErrInternal
		}
	}()

	quote, err = s.source.FetchBestSellOrder(ctx, s.query)
	if err == nil {
		return quote, nil
	}

	s.logger.Warn("Fresh price request failed", slog.String("error", err.Error()))

	if errors.Is(err, domain.ErrUpstreamUnavailable) || errors.Is(err, domain.ErrNoLiquidity) {
		return domain.PriceQuote{}, err
	}
	if ctx.Err() != nil {
		return domain.PriceQuote{}, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return domain.PriceQuote{}, fmt.Errorf("%w: %w", domain.ErrInternal, err)
}

// SetInterval нормализует единицы и меняет интервал. Подтверждение в Telegram - best effort.
func (s *AdminService) SetInterval(ctx context.Context, req domain.IntervalChangeRequest) (time.Duration, error) {
	d, err := req.Normalize()
	if err != nil {
		return 0, err
	}

	if err := s.state.SetInterval(d); err != nil {
		s.logger.Warn("Interval change rejected",
			slog.Int64("requested_seconds", int64(d/time.Second)),
			slog.String("error", err.Error()))
		return 0, err
	}

	s.logger.Info("Interval changed", slog.Int64("seconds", int64(d/time.Second)))

	if !s.notifier.Notify(ctx, domain.FormatIntervalChanged(d)) {
		s.logger.Warn("Interval change confirmation was not delivered")
	}

	return d, nil
}
