package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/romanzzaa/plex-monitor/internal/domain"
)

// Config - глобальная конфигурация монитора
type Config struct {
	Env             string        `envconfig:"ENV" default:"local"` // "local", "prod"
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:"0.0.0.0:8000"`
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"900s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`

	Telegram TelegramConfig `envconfig:"TELEGRAM"`
	ESI      ESIConfig      `envconfig:"ESI"`
}

type TelegramConfig struct {
	Token       string `envconfig:"TOKEN"`
	ChatID      string `envconfig:"CHAT_ID"`
	TopicID     int    `envconfig:"TOPIC_ID" default:"0"` // 0 - без темы
	APIEndpoint string `envconfig:"API_ENDPOINT" default:"https://api.telegram.org/bot%s/%s"`
}

type ESIConfig struct {
	BaseURL  string        `envconfig:"BASE_URL" default:"https://esi.evetech.net/latest"`
	RegionID int64         `envconfig:"REGION_ID" default:"10000002"` // The Forge
	TypeID   int64         `envconfig:"TYPE_ID" default:"44992"`      // PLEX
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"10s"`
	MaxPages int           `envconfig:"MAX_PAGES" default:"10"`
}

// Load читает .env (если он есть) и переменные окружения.
// Переменные окружения процесса имеют приоритет над файлом.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.PollInterval < domain.MinInterval {
		return fmt.Errorf("POLL_INTERVAL must be at least %s, got %s", domain.MinInterval, c.PollInterval)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.ESI.BaseURL == "" {
		return errors.New("ESI_BASE_URL is required")
	}
	if c.ESI.RegionID <= 0 || c.ESI.TypeID <= 0 {
		return errors.New("ESI_REGION_ID and ESI_TYPE_ID must be positive")
	}
	if c.ESI.Timeout <= 0 {
		return errors.New("ESI_TIMEOUT must be positive")
	}
	if c.ESI.MaxPages < 1 {
		return errors.New("ESI_MAX_PAGES must be at least 1")
	}
	if c.Telegram.TopicID < 0 {
		return errors.New("TELEGRAM_TOPIC_ID must not be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// TelegramEnabled - без токена или chat id уведомления отключены, монитор работает дальше
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != ""
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func (c *Config) MarketQuery() domain.MarketQuery {
	return domain.MarketQuery{RegionID: c.ESI.RegionID, TypeID: c.ESI.TypeID}
}
