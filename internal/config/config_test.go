package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTPAddr)
	assert.Equal(t, 900*time.Second, cfg.PollInterval)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://esi.evetech.net/latest", cfg.ESI.BaseURL)
	assert.EqualValues(t, 10000002, cfg.ESI.RegionID)
	assert.EqualValues(t, 44992, cfg.ESI.TypeID)
	assert.Equal(t, 10*time.Second, cfg.ESI.Timeout)
	assert.Equal(t, 10, cfg.ESI.MaxPages)
	assert.Zero(t, cfg.Telegram.TopicID)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100500")
	t.Setenv("TELEGRAM_TOPIC_ID", "17")
	t.Setenv("POLL_INTERVAL", "10m")
	t.Setenv("ESI_MAX_PAGES", "3")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, "-100500", cfg.Telegram.ChatID)
	assert.Equal(t, 17, cfg.Telegram.TopicID)
	assert.Equal(t, 10*time.Minute, cfg.PollInterval)
	assert.Equal(t, 3, cfg.ESI.MaxPages)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=127.0.0.1:9000\nESI_TYPE_ID=29668\n"), 0o600))

	// godotenv не перезаписывает уже заданные переменные
	t.Setenv("ESI_TYPE_ID", "44992")
	t.Cleanup(func() { os.Unsetenv("HTTP_ADDR") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.EqualValues(t, 44992, cfg.ESI.TypeID)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{name: "interval below floor", key: "POLL_INTERVAL", value: "60s"},
		{name: "interval not a duration", key: "POLL_INTERVAL", value: "soon"},
		{name: "zero pages", key: "ESI_MAX_PAGES", value: "0"},
		{name: "negative region", key: "ESI_REGION_ID", value: "-1"},
		{name: "bad log level", key: "LOG_LEVEL", value: "loud"},
		{name: "negative topic", key: "TELEGRAM_TOPIC_ID", value: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestConfig_MarketQuery(t *testing.T) {
	cfg := Config{ESI: ESIConfig{RegionID: 10000043, TypeID: 44992}}

	q := cfg.MarketQuery()
	assert.EqualValues(t, 10000043, q.RegionID)
	assert.EqualValues(t, 44992, q.TypeID)
}
