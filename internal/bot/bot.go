package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/knoguchi/themefather/internal/metrics"
	"github.com/knoguchi/themefather/internal/prompt"
	"github.com/knoguchi/themefather/internal/repository"
	"github.com/knoguchi/themefather/internal/session"
	"github.com/knoguchi/themefather/internal/synth"
	"github.com/knoguchi/themefather/internal/telegram"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrent bounds the number of syntheses running at once.
const DefaultMaxConcurrent = 16

// Sender delivers text to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Synthesizer generates a theme for a completed request.
type Synthesizer interface {
	Synthesize(ctx context.Context, state session.State, observer synth.Observer) (*synth.Output, error)
}

// Config configures a Bot.
type Config struct {
	// MaxConcurrent bounds in-flight syntheses. A description arriving when
	// every slot is taken is turned away with a busy notice.
	MaxConcurrent int

	// MessageLimit is the longest text the Sender accepts.
	MessageLimit int

	// Archive stores generated themes. Optional.
	Archive repository.ThemeRepository

	Logger *slog.Logger
}

// Bot handles chat events.
//
// State changes happen synchronously in Handle, in event order. Syntheses run
// in the background under the bot's own context so that a webhook request
// can return before the theme is ready.
type Bot struct {
	sessions *session.Store
	synth    Synthesizer
	sender   Sender
	archive  repository.ThemeRepository
	limit    int
	logger   *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	jobs    *errgroup.Group
	closing sync.Once
}

// New creates a Bot. The sessions store is owned by the caller.
func New(sessions *session.Store, synthesizer Synthesizer, sender Sender, cfg Config) *Bot {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.MessageLimit <= 0 {
		cfg.MessageLimit = DefaultMessageLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	jobs := &errgroup.Group{}
	jobs.SetLimit(cfg.MaxConcurrent)

	ctx, cancel := context.WithCancel(context.Background())

	return &Bot{
		sessions: sessions,
		synth:    synthesizer,
		sender:   sender,
		archive:  cfg.Archive,
		limit:    cfg.MessageLimit,
		logger:   cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
		jobs:     jobs,
	}
}

// Handle processes one event.
func (b *Bot) Handle(ctx context.Context, ev Event) {
	if ev.IsCommand() {
		metrics.UpdatesTotal.WithLabelValues("command").Inc()
		b.HandleCommand(ctx, ev)
		return
	}
	metrics.UpdatesTotal.WithLabelValues("text").Inc()
	b.HandleText(ctx, ev)
}

// HandleCommand applies a command to the user's state and replies.
func (b *Bot) HandleCommand(ctx context.Context, ev Event) {
	logger := b.logger.With("user_id", ev.UserID, "command", ev.Command)

	switch ev.Command {
	case CommandStart:
		b.sessions.Reset(ev.UserID)
		b.send(ctx, ev.ChatID, prompt.WelcomeMessage)
	case CommandReset:
		b.sessions.Reset(ev.UserID)
		b.send(ctx, ev.ChatID, prompt.ResetMessage)
	default:
		p, ok := ev.Command.Platform()
		if !ok {
			logger.Debug("unknown command")
			b.send(ctx, ev.ChatID, prompt.WelcomeMessage)
			return
		}
		b.sessions.SelectPlatform(ev.UserID, p)
		logger.Info("platform selected", "platform", p)
		b.send(ctx, ev.ChatID, prompt.PlatformPrompt(p))
	}

	metrics.ActiveRequests.Set(float64(b.sessions.Len()))
}

// HandleText records a description for a user who selected a platform and
// starts the synthesis in the background. Text from idle users is ignored.
// HandleText never waits for a synthesis slot.
func (b *Bot) HandleText(ctx context.Context, ev Event) {
	state, ticket, ok := b.sessions.Describe(ev.UserID, ev.Text)
	if !ok {
		b.logger.Debug("ignoring text without an open request", "user_id", ev.UserID)
		return
	}

	started := b.jobs.TryGo(func() error {
		defer func() {
			b.sessions.Finish(ev.UserID, ticket)
			metrics.ActiveRequests.Set(float64(b.sessions.Len()))
		}()
		b.runSynthesis(b.ctx, ev, state)
		return nil
	})
	if started {
		return
	}

	b.logger.Warn("synthesis slots exhausted, rejecting request", "user_id", ev.UserID, "platform", state.Platform)
	metrics.SynthesisTotal.WithLabelValues(state.Platform.String(), metrics.OutcomeBusy).Inc()
	b.sessions.Finish(ev.UserID, ticket)
	metrics.ActiveRequests.Set(float64(b.sessions.Len()))
	b.send(ctx, ev.ChatID, prompt.BusyMessage)
}

func (b *Bot) runSynthesis(ctx context.Context, ev Event, state session.State) {
	logger := b.logger.With("user_id", ev.UserID, "platform", state.Platform)

	b.deliver(ctx, ev.ChatID, prompt.Acknowledgement(state.Platform))

	out, err := b.synth.Synthesize(ctx, state, nil)
	if err != nil {
		logger.Error("error synthesizing theme", "error", err)
		b.deliver(ctx, ev.ChatID, prompt.FailureMessage)
		return
	}
	logger.Debug("theme received", "chunks", out.Chunks, "synthesis_id", out.ID)

	b.store(ctx, ev, out)

	if strings.TrimSpace(out.Theme) == "" {
		b.deliver(ctx, ev.ChatID, prompt.EmptyThemeMessage)
		return
	}
	for _, part := range SplitMessage(out.Theme, b.limit) {
		if !b.deliver(ctx, ev.ChatID, part) {
			return
		}
	}
}

func (b *Bot) store(ctx context.Context, ev Event, out *synth.Output) {
	if b.archive == nil {
		return
	}
	err := b.archive.Save(ctx, &repository.ThemeRecord{
		ID:          out.ID,
		UserID:      ev.UserID,
		ChatID:      ev.ChatID,
		Platform:    out.Platform.String(),
		Description: out.Description,
		Theme:       out.Theme,
		Partial:     out.Partial,
		DurationMS:  out.Duration.Milliseconds(),
	})
	if err != nil {
		b.logger.Warn("failed to archive theme", "error", err, "synthesis_id", out.ID)
	}
}

// deliver sends like send, but when Telegram rate-limits the chat it waits
// the requested time and tries once more. Only background jobs use it.
func (b *Bot) deliver(ctx context.Context, chatID int64, text string) bool {
	err := b.sender.Send(ctx, chatID, text)
	if wait, limited := telegram.RetryAfter(err); limited {
		b.logger.Warn("rate limited, retrying", "chat_id", chatID, "retry_after", wait)
		select {
		case <-ctx.Done():
			return b.fail(chatID, ctx.Err())
		case <-time.After(wait):
		}
		err = b.sender.Send(ctx, chatID, text)
	}
	if err != nil {
		return b.fail(chatID, err)
	}
	return true
}

func (b *Bot) fail(chatID int64, err error) bool {
	metrics.SendErrors.Inc()
	b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	return false
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) bool {
	if err := b.sender.Send(ctx, chatID, text); err != nil {
		return b.fail(chatID, err)
	}
	return true
}

// Wait blocks until all running syntheses have finished.
func (b *Bot) Wait() {
	_ = b.jobs.Wait()
}

// Close cancels running syntheses and waits for them to return.
func (b *Bot) Close() {
	b.closing.Do(b.cancel)
	b.Wait()
}
