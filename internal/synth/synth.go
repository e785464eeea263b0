// Package synth turns a completed theme request into a generated theme by
// streaming a templated completion from the model.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/knoguchi/themefather/internal/llm"
	"github.com/knoguchi/themefather/internal/metrics"
	"github.com/knoguchi/themefather/internal/prompt"
	"github.com/knoguchi/themefather/internal/session"
	"github.com/knoguchi/themefather/internal/theme"
)

const (
	// DefaultModel is the model used for every synthesis.
	DefaultModel = llm.ModelGPT4o

	// DefaultTemperature keeps output close to the template format.
	DefaultTemperature = 0.2

	// DefaultInactivityTimeout is the longest gap allowed between received chunks.
	DefaultInactivityTimeout = 10 * time.Second
)

var (
	// ErrIncompleteRequest is returned when the state lacks a platform or description.
	ErrIncompleteRequest = errors.New("synth: request needs a platform and a description")

	// ErrTemplateNotFound is returned when no template exists for the platform.
	ErrTemplateNotFound = errors.New("synth: template not found")

	// ErrStreamTimedOut is returned when no content arrived before the inactivity window elapsed.
	ErrStreamTimedOut = errors.New("synth: completion stream timed out before any content")
)

// TemplateSource resolves platform template keys to template text.
type TemplateSource interface {
	Get(platform string) (string, bool)
}

// Observer receives content fragments as they arrive.
type Observer func(fragment string)

// Output is the result of a successful synthesis.
type Output struct {
	ID          uuid.UUID
	Platform    theme.Platform
	Theme       string
	Description string

	// Partial is set when the stream stalled after some content was received.
	Partial bool

	Chunks   int
	Duration time.Duration
}

// Config holds tunables for a Synthesizer. Zero values take the defaults,
// except Temperature, where zero is a valid setting and a negative value
// selects DefaultTemperature.
type Config struct {
	Model             string
	Temperature       float32
	InactivityTimeout time.Duration
	Logger            *slog.Logger
}

// Synthesizer drives template-constrained completions.
type Synthesizer struct {
	templates   TemplateSource
	streamer    llm.ChatStreamer
	model       string
	temperature float32
	inactivity  time.Duration
	logger      *slog.Logger
}

// New creates a Synthesizer.
func New(templates TemplateSource, streamer llm.ChatStreamer, cfg Config) *Synthesizer {
	s := &Synthesizer{
		templates:   templates,
		streamer:    streamer,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		inactivity:  cfg.InactivityTimeout,
		logger:      cfg.Logger,
	}
	if s.model == "" {
		s.model = DefaultModel
	}
	if s.temperature < 0 {
		s.temperature = DefaultTemperature
	}
	if s.inactivity <= 0 {
		s.inactivity = DefaultInactivityTimeout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Synthesize generates a theme for a completed request. observer may be nil.
//
// The call succeeds on an explicit end marker or a closed stream with
// whatever was accumulated, and on an inactivity timeout if some content was
// received. Stream errors discard the partial content.
func (s *Synthesizer) Synthesize(ctx context.Context, state session.State, observer Observer) (*Output, error) {
	if !state.Complete() {
		return nil, ErrIncompleteRequest
	}

	out := &Output{
		ID:          uuid.New(),
		Platform:    state.Platform,
		Description: *state.Description,
	}
	logger := s.logger.With("synthesis_id", out.ID, "platform", state.Platform)
	start := time.Now()

	tmpl, ok := s.templates.Get(state.Platform.TemplateKey())
	if !ok {
		logger.Error("no template for platform", "template_key", state.Platform.TemplateKey())
		s.record(state.Platform, metrics.OutcomeError, start)
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, state.Platform)
	}

	logger.Info("starting synthesis", "model", s.model, "description_len", len(out.Description))

	text, chunks, partial, err := s.consume(ctx, llm.ChatRequest{
		Model:       s.model,
		Messages:    prompt.Build(tmpl, out.Description),
		Temperature: s.temperature,
	}, observer)
	out.Duration = time.Since(start)
	out.Chunks = chunks

	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, ErrStreamTimedOut) {
			outcome = metrics.OutcomeTimeout
		}
		s.record(state.Platform, outcome, start)
		logger.Error("synthesis failed", "error", err, "chunks", chunks, "duration", out.Duration)
		return nil, err
	}

	out.Theme = text
	out.Partial = partial

	outcome := metrics.OutcomeSuccess
	if partial {
		outcome = metrics.OutcomePartial
	}
	s.record(state.Platform, outcome, start)
	metrics.ThemeBytes.Observe(float64(len(text)))

	logger.Info("synthesis finished",
		"partial", partial,
		"chunks", chunks,
		"theme_len", len(text),
		"duration", out.Duration,
	)
	return out, nil
}

// consume reads the stream until it ends, errors, or stalls.
func (s *Synthesizer) consume(ctx context.Context, req llm.ChatRequest, observer Observer) (string, int, bool, error) {
	// Cancelling streamCtx on return stops the reader goroutine and closes
	// the connection when we stop early.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := s.streamer.Stream(streamCtx, req)
	if err != nil {
		return "", 0, false, fmt.Errorf("opening completion stream: %w", err)
	}

	timer := time.NewTimer(s.inactivity)
	defer timer.Stop()

	var acc strings.Builder
	received := 0

	for {
		select {
		case chunk, ok := <-stream:
			if !ok {
				return acc.String(), received, false, nil
			}
			if chunk.Error != nil {
				return "", received, false, fmt.Errorf("reading completion stream: %w", chunk.Error)
			}

			received++
			metrics.StreamChunks.Inc()
			timer.Reset(s.inactivity)

			if chunk.Token != "" {
				acc.WriteString(chunk.Token)
				if observer != nil {
					observer(chunk.Token)
				}
			}
			if chunk.Done {
				return acc.String(), received, false, nil
			}

		case <-timer.C:
			if acc.Len() == 0 {
				return "", received, false, ErrStreamTimedOut
			}
			return acc.String(), received, true, nil

		case <-ctx.Done():
			return "", received, false, ctx.Err()
		}
	}
}

func (s *Synthesizer) record(p theme.Platform, outcome string, start time.Time) {
	metrics.SynthesisTotal.WithLabelValues(p.String(), outcome).Inc()
	metrics.SynthesisDuration.WithLabelValues(p.String()).Observe(time.Since(start).Seconds())
}
