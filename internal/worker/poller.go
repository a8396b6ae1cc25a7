package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/romanzzaa/plex-monitor/internal/domain"
)

// Poller - фоновый цикл: запрос цены -> запись в State -> уведомление -> сон.
type Poller struct {
	state    *State
	source   domain.PriceSource
	notifier domain.Notifier
	query    domain.MarketQuery
	logger   *slog.Logger

	phase atomic.Value // domain.LoopPhase
	done  chan struct{}

	after func(time.Duration) <-chan time.Time
	now   func() time.Time
}

func NewPoller(
	state *State,
	source domain.PriceSource,
	notifier domain.Notifier,
	query domain.MarketQuery,
	logger *slog.Logger,
) *Poller {
	p := &Poller{
		state:    state,
		source:   source,
		notifier: notifier,
		query:    query,
		logger:   logger.With("component", "poller"),
		done:     make(chan struct{}),
		after:    time.After,
		now:      time.Now,
	}
	p.phase.Store(domain.PhaseRunning)
	return p
}

func (p *Poller) Phase() domain.LoopPhase {
	return p.phase.Load().(domain.LoopPhase)
}

// Done закрывается, когда Run полностью завершился.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Stop: Running -> Stopping. Цикл заметит флаг в начале следующей итерации.
func (p *Poller) Stop() {
	p.state.RequestStop()
	p.phase.CompareAndSwap(domain.PhaseRunning, domain.PhaseStopping)
}

// Run блокируется до остановки: Stop() либо отмена ctx (отмена прерывает и ожидание).
func (p *Poller) Run(ctx context.Context) error {
	defer close(p.done)
	defer p.phase.Store(domain.PhaseStopped)

	p.logger.Info("Starting poll loop",
		slog.Int64("region_id", p.query.RegionID),
		slog.Int64("type_id", p.query.TypeID),
		slog.Duration("interval", p.state.Read().Interval))

	for {
		if !p.state.Read().Active {
			p.logger.Info("Stop requested, leaving poll loop")
			return nil
		}
		if ctx.Err() != nil {
			p.phase.Store(domain.PhaseStopping)
			p.logger.Info("Context cancelled, leaving poll loop")
			return nil
		}

		p.RunCycle(ctx)

		// Интервал читаем прямо перед сном, а не в начале цикла
		interval := p.state.Read().Interval
		p.logger.Info("Waiting for next cycle", slog.Duration("interval", interval))

		select {
		case <-p.after(interval):
		case <-ctx.Done():
			p.phase.Store(domain.PhaseStopping)
			p.logger.Info("Context cancelled during sleep, leaving poll loop")
			return nil
		}
	}
}

// RunCycle выполняет одну итерацию. Никакая ошибка (и даже panic) не выходит наружу.
func (p *Poller) RunCycle(ctx context.Context) {
	log := p.logger.With(slog.String("cycle_id", uuid.NewString()))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Poll cycle panicked", slog.String("error", fmt.Sprint(r)))
			p.notifier.Notify(ctx, domain.FormatFetchWarning(domain.ErrInternal, p.now()))
		}
	}()

	log.Info("Poll cycle started")

	quote, err := p.source.FetchBestSellOrder(ctx, p.query)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("Fetch aborted by shutdown")
			return
		}
		log.Warn("Failed to fetch price", slog.String("error", err.Error()))
		if !p.notifier.Notify(ctx, domain.FormatFetchWarning(err, p.now())) {
			log.Warn("Failure warning was not delivered")
		}
		return
	}

	p.state.RecordPrice(quote.Price, quote.CapturedAt)

	log.Info("Price updated",
		slog.String("price", quote.Price.String()),
		slog.String("location", quote.Location))

	if !p.notifier.Notify(ctx, domain.FormatPriceCard(quote)) {
		log.Warn("Price update was not delivered")
	}
}
