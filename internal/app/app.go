package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/romanzzaa/plex-monitor/internal/api"
	"github.com/romanzzaa/plex-monitor/internal/bot"
	"github.com/romanzzaa/plex-monitor/internal/config"
	"github.com/romanzzaa/plex-monitor/internal/domain"
	"github.com/romanzzaa/plex-monitor/internal/infrastructure/esi"
	"github.com/romanzzaa/plex-monitor/internal/infrastructure/telegram"
	"github.com/romanzzaa/plex-monitor/internal/usecase"
	"github.com/romanzzaa/plex-monitor/internal/worker"
)

// App владеет всеми компонентами и их временем жизни.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	state    *worker.State
	market   *esi.Client
	notifier domain.Notifier
	poller   *worker.Poller
	admin    *usecase.AdminService
	server   *api.Server
	commands *bot.Handler // nil, если Telegram отключён
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	state, err := worker.NewState(cfg.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("init state: %w", err)
	}

	market := esi.NewClient(cfg.ESI.BaseURL,
		esi.WithTimeout(cfg.ESI.Timeout),
		esi.WithMaxPages(cfg.ESI.MaxPages),
		esi.WithLogger(logger))

	a := &App{
		cfg:    cfg,
		logger: logger.With("component", "app"),
		state:  state,
		market: market,
	}

	tg := a.initTelegram()

	query := cfg.MarketQuery()
	a.poller = worker.NewPoller(state, market, a.notifier, query, logger)
	a.admin = usecase.NewAdminService(state, a.poller, market, a.notifier, query, logger)
	a.server = api.NewServer(cfg.HTTPAddr, a.admin, logger)
	if tg != nil {
		a.commands = bot.NewHandler(a.admin, tg, tg, logger)
	}

	return a, nil
}

// initTelegram: без Telegram монитор продолжает работать, уведомления просто отключены.
func (a *App) initTelegram() *telegram.Client {
	if !a.cfg.TelegramEnabled() {
		a.notifier = telegram.NewDisabledNotifier("TELEGRAM_TOKEN or TELEGRAM_CHAT_ID is not set", a.logger)
		return nil
	}

	client, err := telegram.NewClient(a.cfg.Telegram.Token, a.cfg.Telegram.APIEndpoint, telegram.DefaultSendTimeout, a.logger)
	if err != nil {
		a.notifier = telegram.NewDisabledNotifier(err.Error(), a.logger)
		return nil
	}

	a.notifier = telegram.NewNotifier(client, a.cfg.Telegram.ChatID, a.cfg.Telegram.TopicID, a.logger)
	return client
}

// Handler - HTTP-фасад без сетевого слушателя
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Run блокируется до отмены ctx (или падения HTTP-сервера) и возвращается
// только после остановки всех компонентов.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting PLEX monitor",
		slog.String("env", a.cfg.Env),
		slog.String("http_addr", a.cfg.HTTPAddr),
		slog.Duration("interval", a.state.Read().Interval),
		slog.Bool("telegram", a.notifier.Enabled()))

	if !a.notifier.Notify(ctx, domain.FormatStartup()) {
		a.logger.Warn("Startup notification was not delivered")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.poller.Run(gctx)
	})
	if a.commands != nil {
		g.Go(func() error {
			a.commands.Start(gctx)
			return nil
		})
	}
	g.Go(func() error {
		return a.server.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		a.shutdown()
		return nil
	})

	err := g.Wait()

	// HTTP-сессию ESI закрываем только когда её никто не использует
	a.market.Close()
	a.logger.Info("PLEX monitor stopped")
	return err
}

// shutdown: остановить цикл, погасить слушатель, дождаться цикла.
func (a *App) shutdown() {
	a.logger.Info("Shutting down")
	a.poller.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}

	select {
	case <-a.poller.Done():
	case <-ctx.Done():
		a.logger.Error("Poll loop did not stop in time", slog.Duration("timeout", a.cfg.ShutdownTimeout))
	}
}

func (a *App) Status() usecase.Status {
	return a.admin.Status()
}
