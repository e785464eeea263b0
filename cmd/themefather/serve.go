package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/knoguchi/themefather/internal/bot"
	"github.com/knoguchi/themefather/internal/config"
	"github.com/knoguchi/themefather/internal/memory"
	"github.com/knoguchi/themefather/internal/repository"
	"github.com/knoguchi/themefather/internal/repository/postgres"
	"github.com/knoguchi/themefather/internal/server"
	"github.com/knoguchi/themefather/internal/session"
	"github.com/knoguchi/themefather/internal/synth"
	"github.com/knoguchi/themefather/internal/telegram"
	"github.com/knoguchi/themefather/internal/theme"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(os.Stdout)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting theme bot",
		"mode", cfg.BotMode,
		"http_port", cfg.HTTPPort,
		"provider", cfg.LLMProvider,
		"environment", cfg.Environment,
	)

	templates := theme.NewStore()
	if missing := templates.Missing(); len(missing) > 0 {
		slog.Warn("templates missing, requests for these platforms will fail", "platforms", missing)
	}

	streamer, err := newStreamer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	synthesizer := synth.New(templates, streamer, synth.Config{
		Model:             cfg.Model(),
		Temperature:       cfg.Temperature,
		InactivityTimeout: cfg.InactivityTimeout,
		Logger:            slog.Default(),
	})

	readiness := map[string]server.ReadinessCheck{}

	// Theme archive: PostgreSQL when configured, otherwise in memory
	var archive repository.ThemeRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		archive = postgres.NewThemeRepo(db)
		readiness["database"] = db.Ping
		slog.Info("connected to PostgreSQL")
	} else {
		mem := memory.DefaultStore()
		defer mem.Close()
		archive = mem
		slog.Info("using in-memory theme archive")
	}

	tg, err := telegram.NewClient(cfg.TelegramToken,
		telegram.WithAPIURL(cfg.TelegramAPIURL),
		telegram.WithLogger(slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("failed to create Telegram client: %w", err)
	}
	if err := tg.SetCommands(ctx, bot.BotCommands()); err != nil {
		slog.Warn("failed to register command menu", "error", err)
	}

	b := bot.New(session.NewStore(), synthesizer, tg, bot.Config{
		MaxConcurrent: cfg.MaxConcurrentUpdates,
		Archive:       archive,
		Logger:        slog.Default(),
	})
	defer b.Close()
	tg.OnUpdate(b.HandleUpdate)

	httpCfg := server.HTTPServerConfig{
		Port:        cfg.HTTPPort,
		Logger:      slog.Default(),
		Archive:     archive,
		AdminAPIKey: cfg.AdminAPIKey,
		Readiness:   readiness,
	}
	if cfg.BotMode == config.ModeWebhook {
		httpCfg.Webhook = tg.WebhookHandler()
		httpCfg.WebhookSecret = cfg.WebhookSecret
	}
	httpServer, err := server.NewHTTPServer(httpCfg)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}

	errCh := make(chan error, 2)

	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	updatesDone := make(chan struct{})

	switch cfg.BotMode {
	case config.ModeWebhook:
		if err := tg.SetWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
		slog.Info("webhook registered", "url", cfg.WebhookURL)
		go func() {
			defer close(updatesDone)
			tg.ServeWebhook(ctx)
		}()
	default:
		// getUpdates is refused while a webhook is set
		if err := tg.DeleteWebhook(ctx); err != nil {
			slog.Warn("failed to delete webhook", "error", err)
		}
		go func() {
			defer close(updatesDone)
			tg.Poll(ctx)
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown HTTP server", "error", err)
	}

	stop()
	<-updatesDone
	b.Close()
	slog.Info("bot stopped")
	return nil
}
