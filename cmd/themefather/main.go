package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/knoguchi/themefather/internal/config"
	"github.com/knoguchi/themefather/internal/llm"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "themefather",
		Short:         "Telegram bot that designs chat themes with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newSynthCmd())
	return root
}

// setup loads configuration and installs a JSON logger writing to logOut as the default.
func setup(logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return cfg, nil
}

// newStreamer builds the chat client for the configured provider.
func newStreamer(cfg *config.Config) (llm.ChatStreamer, error) {
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		slog.Info("initialized Ollama LLM", "model", cfg.OllamaModel)
		return llm.NewOllamaClient(
			llm.WithBaseURL(cfg.OllamaURL),
			llm.WithModel(cfg.OllamaModel),
		), nil
	default:
		client, err := llm.NewOpenAIClient(llm.WithOpenAIBaseURL(cfg.OpenAIBaseURL))
		if err != nil {
			return nil, err
		}
		slog.Info("initialized OpenAI LLM", "model", cfg.OpenAIModel)
		return client, nil
	}
}

