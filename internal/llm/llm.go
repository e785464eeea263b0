// Package llm provides streaming chat-completion clients.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Roles used in chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest configures a chat-completion call.
type ChatRequest struct {
	// Model selects the model (e.g., "gpt-4o").
	Model string

	// Messages is the ordered conversation sent to the model.
	Messages []Message

	// Temperature controls randomness in generation (0.0 = deterministic, 1.0 = creative).
	Temperature float32
}

// StreamChunk represents one item of a streamed completion.
//
// A chunk is either a content fragment (Token, possibly empty when the
// server sent a delta without content), the end marker (Done), or a
// terminal Error.
type StreamChunk struct {
	// Token contains the generated text fragment. Zero-length tokens are valid.
	Token string

	// Done indicates the server sent its explicit end-of-stream marker.
	Done bool

	// Error contains any error that occurred during streaming.
	Error error
}

// ChatStreamer opens streaming chat completions.
type ChatStreamer interface {
	// Stream sends the request and returns a channel that yields chunks as
	// they are parsed. The channel is closed after a Done chunk, after an
	// Error chunk, or when the response body ends. Cancelling ctx stops the
	// reader and releases the connection.
	Stream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error)
}

// ErrMissingCredential is returned when no API key is available.
var ErrMissingCredential = errors.New("llm: missing API credential")

// RequestError is returned when the completion endpoint answers with a non-2xx status.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("llm: request failed (status %d): %s", e.StatusCode, e.Body)
}

// ParseError is returned when a stream frame carries malformed JSON.
type ParseError struct {
	Payload string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llm: parsing stream chunk %q: %v", e.Payload, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
