// Package config loads configuration from environment variables and .env files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Bot modes
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// LLM providers
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config holds all configuration for the bot
type Config struct {
	// Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramAPIURL string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	BotMode        string `env:"BOT_MODE" envDefault:"polling"`
	WebhookURL     string `env:"WEBHOOK_URL"`
	WebhookSecret  string `env:"WEBHOOK_SECRET"`

	// Auth
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// LLM
	LLMProvider   string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	OllamaURL     string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL" envDefault:"llama3.2"`

	// Synthesis
	Temperature          float32       `env:"SYNTH_TEMPERATURE" envDefault:"0.2"`
	InactivityTimeout    time.Duration `env:"SYNTH_INACTIVITY_TIMEOUT" envDefault:"10s"`
	MaxConcurrentUpdates int           `env:"MAX_CONCURRENT_UPDATES" envDefault:"8"`

	// PostgreSQL. Empty keeps the theme archive in memory.
	DatabaseURL string `env:"DATABASE_URL"`
}

// Load loads configuration from .env file (if present) and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.BotMode = strings.ToLower(cfg.BotMode)
	cfg.LLMProvider = strings.ToLower(cfg.LLMProvider)
	return cfg, nil
}

// Model returns the chat model for the configured provider.
func (c *Config) Model() string {
	if c.LLMProvider == ProviderOllama {
		return c.OllamaModel
	}
	return c.OpenAIModel
}

// Validate checks the settings the bot needs to run.
func (c *Config) Validate() error {
	var errs []error
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	switch c.BotMode {
	case ModePolling:
	case ModeWebhook:
		if c.WebhookURL == "" {
			errs = append(errs, errors.New("WEBHOOK_URL is required in webhook mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown BOT_MODE %q", c.BotMode))
	}
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderOllama:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, errors.New("SYNTH_TEMPERATURE must be between 0 and 2"))
	}
	if c.InactivityTimeout <= 0 {
		errs = append(errs, errors.New("SYNTH_INACTIVITY_TIMEOUT must be positive"))
	}
	if c.MaxConcurrentUpdates <= 0 {
		errs = append(errs, errors.New("MAX_CONCURRENT_UPDATES must be positive"))
	}
	return errors.Join(errs...)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
