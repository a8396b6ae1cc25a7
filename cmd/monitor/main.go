package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/romanzzaa/plex-monitor/internal/app"
	"github.com/romanzzaa/plex-monitor/internal/config"
)

func main() {
	envFile := pflag.String("env-file", ".env", "path to an optional .env file")
	addr := pflag.String("addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	pflag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}

	// Validate уже проверил LOG_LEVEL
	level, _ := cfg.SlogLevel()
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	monitor, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to init monitor", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := monitor.Run(ctx); err != nil {
		logger.Error("monitor stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Monitor stopped gracefully")
}
