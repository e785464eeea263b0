// Package telegram connects the bot to the Telegram Bot API through
// github.com/go-telegram/bot: update delivery by long polling or webhook,
// the command menu, and plain-text replies.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// DefaultPollTimeout is the long-poll timeout passed to getUpdates.
const DefaultPollTimeout = 50 * time.Second

// UpdateHandler processes one update. Updates are handled one at a time in
// the order Telegram delivers them.
type UpdateHandler func(ctx context.Context, u *models.Update)

// Client wraps a go-telegram bot. Errors it returns never contain the token.
type Client struct {
	api     *tgbot.Bot
	token   string
	handler UpdateHandler
	logger  *slog.Logger
}

type options struct {
	apiURL      string
	httpClient  *http.Client
	pollTimeout time.Duration
	skipGetMe   bool
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithAPIURL sets a custom Bot API server URL.
func WithAPIURL(url string) Option {
	return func(o *options) {
		o.apiURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets the HTTP client and long-poll timeout. The client's own
// timeout must exceed pollTimeout.
func WithHTTPClient(pollTimeout time.Duration, client *http.Client) Option {
	return func(o *options) {
		o.pollTimeout = pollTimeout
		o.httpClient = client
	}
}

// WithoutTokenCheck skips the getMe call made at construction.
func WithoutTokenCheck() Option {
	return func(o *options) {
		o.skipGetMe = true
	}
}

// WithLogger sets the logger for polling and webhook errors.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewClient creates a client for the bot identified by token. Unless
// WithoutTokenCheck is given, the token is verified with getMe.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("telegram: bot token is required")
	}

	o := options{pollTimeout: DefaultPollTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.pollTimeout + 30*time.Second}
	}

	c := &Client{token: token, logger: o.logger}

	botOpts := []tgbot.Option{
		tgbot.WithDefaultHandler(c.dispatch),
		tgbot.WithErrorsHandler(c.logError),
		tgbot.WithHTTPClient(o.pollTimeout, o.httpClient),
		// one worker, handlers inline: per-user event order is preserved
		tgbot.WithWorkers(1),
		tgbot.WithNotAsyncHandlers(),
	}
	if o.apiURL != "" {
		botOpts = append(botOpts, tgbot.WithServerURL(o.apiURL))
	}
	if o.skipGetMe {
		botOpts = append(botOpts, tgbot.WithSkipGetMe())
	}

	api, err := tgbot.New(token, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("telegram: creating bot: %w", redact(err, token))
	}
	c.api = api
	return c, nil
}

// OnUpdate sets the handler for inbound updates. Call it before Poll or
// ServeWebhook.
func (c *Client) OnUpdate(h UpdateHandler) {
	c.handler = h
}

// Poll long-polls for updates until ctx is cancelled.
func (c *Client) Poll(ctx context.Context) {
	c.logger.Info("starting update polling")
	c.api.Start(ctx)
	c.logger.Info("update polling stopped")
}

// ServeWebhook processes updates received by WebhookHandler until ctx is
// cancelled.
func (c *Client) ServeWebhook(ctx context.Context) {
	c.api.StartWebhook(ctx)
}

// WebhookHandler decodes updates posted by Telegram. ServeWebhook must be
// running for them to be handled.
func (c *Client) WebhookHandler() http.Handler {
	return c.api.WebhookHandler()
}

// Send sends plain text to a chat.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	_, err := c.api.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	return c.wrap("sendMessage", err)
}

// SetCommands replaces the bot's command menu.
func (c *Client) SetCommands(ctx context.Context, commands []models.BotCommand) error {
	_, err := c.api.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{Commands: commands})
	return c.wrap("setMyCommands", err)
}

// SetWebhook registers url for update delivery. secret, when set, is echoed
// by Telegram in the X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	_, err := c.api.SetWebhook(ctx, &tgbot.SetWebhookParams{
		URL:         url,
		SecretToken: secret,
	})
	return c.wrap("setWebhook", err)
}

// DeleteWebhook removes the webhook so long polling can be used.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := c.api.DeleteWebhook(ctx, &tgbot.DeleteWebhookParams{})
	return c.wrap("deleteWebhook", err)
}

// RetryAfter reports how long Telegram asked the caller to wait when err is
// a rate-limit rejection.
func RetryAfter(err error) (time.Duration, bool) {
	var tooMany *tgbot.TooManyRequestsError
	if errors.As(err, &tooMany) {
		return time.Duration(tooMany.RetryAfter) * time.Second, true
	}
	return 0, false
}

func (c *Client) dispatch(ctx context.Context, _ *tgbot.Bot, u *models.Update) {
	if c.handler == nil || u == nil {
		return
	}
	c.handler(ctx, u)
}

func (c *Client) logError(err error) {
	c.logger.Warn("telegram error", "error", redact(err, c.token))
}

func (c *Client) wrap(method string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("telegram: %s: %w", method, redact(err, c.token))
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

// redact hides the token, which request URLs carry, from err's message.
func redact(err error, token string) error {
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<token>"), err: err}
}
