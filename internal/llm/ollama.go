package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// DefaultOllamaBaseURL is the default Ollama API endpoint.
	DefaultOllamaBaseURL = "http://localhost:11434"

	// DefaultOllamaModel is used when a request leaves Model empty.
	DefaultOllamaModel = "llama3.2"
)

// OllamaClient implements ChatStreamer using Ollama's chat API.
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
	model      string
}

// OllamaOption is a functional option for configuring OllamaClient.
type OllamaOption func(*OllamaClient)

// WithBaseURL sets a custom base URL for the Ollama API.
func WithBaseURL(url string) OllamaOption {
	return func(c *OllamaClient) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) OllamaOption {
	return func(c *OllamaClient) {
		c.httpClient = client
	}
}

// WithModel sets the default model for the client.
func WithModel(model string) OllamaOption {
	return func(c *OllamaClient) {
		c.model = model
	}
}

// NewOllamaClient creates a new Ollama client with the given options.
func NewOllamaClient(opts ...OllamaOption) *OllamaClient {
	c := &OllamaClient{
		baseURL:    DefaultOllamaBaseURL,
		httpClient: &http.Client{},
		model:      DefaultOllamaModel,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type ollamaChatRequest struct {
	Model    string                 `json:"model"`
	Messages []Message              `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message    Message `json:"message"`
	Done       bool    `json:"done"`
	DoneReason string  `json:"done_reason,omitempty"`
}

// Stream sends the chat request and streams NDJSON response lines as chunks.
func (c *OllamaClient) Stream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	reqBody := ollamaChatRequest{
		Model:    model,
		Messages: req.Messages,
		Stream:   true,
		Options:  map[string]interface{}{"temperature": req.Temperature},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	chunks := make(chan StreamChunk)

	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)

		for {
			line, err := reader.ReadBytes('\n')
			line = bytes.TrimSpace(line)

			if len(line) > 0 {
				var streamResp ollamaChatResponse
				if jerr := json.Unmarshal(line, &streamResp); jerr != nil {
					select {
					case <-ctx.Done():
					case chunks <- StreamChunk{Error: &ParseError{Payload: string(line), Err: jerr}}:
					}
					return
				}

				chunk := StreamChunk{
					Token: streamResp.Message.Content,
					Done:  streamResp.Done,
				}

				select {
				case <-ctx.Done():
					return
				case chunks <- chunk:
				}

				if streamResp.Done {
					return
				}
			}

			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					select {
					case <-ctx.Done():
					case chunks <- StreamChunk{Error: fmt.Errorf("reading stream: %w", err)}:
					}
				}
				return
			}
		}
	}()

	return chunks, nil
}

// Ensure OllamaClient implements ChatStreamer.
var _ ChatStreamer = (*OllamaClient)(nil)
