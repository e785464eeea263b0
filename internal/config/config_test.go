package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, ModePolling, cfg.BotMode)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, "gpt-4o", cfg.Model())
	assert.Equal(t, float32(0.2), cfg.Temperature)
	assert.Equal(t, 10*time.Second, cfg.InactivityTimeout)
	assert.Empty(t, cfg.DatabaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BOT_MODE", "Webhook")
	t.Setenv("WEBHOOK_URL", "https://example.com/telegram/webhook")
	t.Setenv("LLM_PROVIDER", "OLLAMA")
	t.Setenv("OLLAMA_MODEL", "qwen2.5")
	t.Setenv("SYNTH_INACTIVITY_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SYNTH_TEMPERATURE", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeWebhook, cfg.BotMode)
	assert.Equal(t, "qwen2.5", cfg.Model())
	assert.Equal(t, 3*time.Second, cfg.InactivityTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Zero(t, cfg.Temperature)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("SYNTH_INACTIVITY_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		BotMode:              ModeWebhook,
		LLMProvider:          "claude",
		Temperature:          -0.5,
		InactivityTimeout:    0,
		MaxConcurrentUpdates: 1,
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, err.Error(), "WEBHOOK_URL")
	assert.Contains(t, err.Error(), "LLM_PROVIDER")
	assert.Contains(t, err.Error(), "SYNTH_TEMPERATURE")
	assert.Contains(t, err.Error(), "SYNTH_INACTIVITY_TIMEOUT")
}
