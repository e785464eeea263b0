package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/knoguchi/themefather/internal/config"
	"github.com/knoguchi/themefather/internal/llm"
	"github.com/knoguchi/themefather/internal/prompt"
	"github.com/knoguchi/themefather/internal/session"
	"github.com/knoguchi/themefather/internal/synth"
	"github.com/knoguchi/themefather/internal/theme"
	"github.com/spf13/cobra"
)

type synthOptions struct {
	platform string
	noStream bool
}

func newSynthCmd() *cobra.Command {
	opts := &synthOptions{}

	cmd := &cobra.Command{
		Use:   "synth <description>",
		Short: "Generate one theme and print it to stdout",
		Example: `  themefather synth --platform ios "deep ocean blues with coral accents"
  themefather synth --platform android --no-stream "solarized light"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Logs go to stderr so stdout carries only the theme
			cfg, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runSynth(cmd.Context(), cmd.OutOrStdout(), cfg, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&opts.platform, "platform", "p", "ios", "target platform: ios, android, macos or windows")
	cmd.Flags().BoolVar(&opts.noStream, "no-stream", false, "wait for the whole theme instead of printing tokens as they arrive")
	return cmd
}

func runSynth(ctx context.Context, w io.Writer, cfg *config.Config, opts *synthOptions, description string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	p, ok := theme.ParsePlatform(opts.platform)
	if !ok {
		return fmt.Errorf("unknown platform %q", opts.platform)
	}

	streamer, err := newStreamer(cfg)
	if err != nil {
		return err
	}
	templates := theme.NewStore()

	// The OpenAI client can answer in one response
	if client, ok := streamer.(*llm.OpenAIClient); ok && opts.noStream {
		template, found := templates.Get(p.TemplateKey())
		if !found {
			return fmt.Errorf("%w: %s", synth.ErrTemplateNotFound, p)
		}
		text, err := client.Complete(ctx, llm.ChatRequest{
			Model:       cfg.Model(),
			Messages:    prompt.Build(template, description),
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, text)
		return err
	}

	s := synth.New(templates, streamer, synth.Config{
		Model:             cfg.Model(),
		Temperature:       cfg.Temperature,
		InactivityTimeout: cfg.InactivityTimeout,
	})

	var observer synth.Observer
	if !opts.noStream {
		observer = func(token string) { io.WriteString(w, token) }
	}

	out, err := s.Synthesize(ctx, session.State{Platform: p, Description: &description}, observer)
	if err != nil {
		return err
	}
	if opts.noStream {
		io.WriteString(w, out.Theme)
	}
	_, err = fmt.Fprintln(w)
	return err
}
