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
	"os"
	"strings"
	"time"
)

const (
	// DefaultOpenAIBaseURL is the default OpenAI API endpoint.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// APIKeyEnv is the environment variable holding the bearer token.
	APIKeyEnv = "OPENAI_API_KEY"

	// ModelGPT4o and ModelGPT4oMini are the models the bot knows about.
	ModelGPT4o     = "gpt-4o"
	ModelGPT4oMini = "gpt-4o-mini"

	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// OpenAIClient implements ChatStreamer against an OpenAI-compatible
// chat-completions endpoint using server-sent events.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// OpenAIOption is a functional option for configuring OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithOpenAIBaseURL sets a custom base URL (e.g., a proxy or compatible gateway).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithOpenAIHTTPClient sets a custom HTTP client.
func WithOpenAIHTTPClient(client *http.Client) OpenAIOption {
	return func(c *OpenAIClient) {
		c.httpClient = client
	}
}

// WithAPIKey overrides the key read from the environment.
func WithAPIKey(key string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.apiKey = key
	}
}

// NewOpenAIClient creates a client. The API key is read from OPENAI_API_KEY
// unless WithAPIKey is given; ErrMissingCredential is returned when it is empty.
func NewOpenAIClient(opts ...OpenAIOption) (*OpenAIClient, error) {
	c := &OpenAIClient{
		baseURL: DefaultOpenAIBaseURL,
		apiKey:  os.Getenv(APIKeyEnv),
		// No overall timeout: streams are bounded by the caller's context.
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.apiKey == "" {
		return nil, ErrMissingCredential
	}

	return c, nil
}

type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

type openAIChunk struct {
	Choices []struct {
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type openAIResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Stream opens a streaming chat completion.
func (c *OpenAIClient) Stream(ctx context.Context, req ChatRequest) (<-chan StreamChunk, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}

	chunks := make(chan StreamChunk)

	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		send := func(chunk StreamChunk) bool {
			select {
			case <-ctx.Done():
				return false
			case chunks <- chunk:
				return true
			}
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				chunk, ok, perr := parseFrame(strings.TrimRight(line, "\r\n"))
				if perr != nil {
					send(StreamChunk{Error: perr})
					return
				}
				if ok {
					if !send(chunk) || chunk.Done {
						return
					}
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					send(StreamChunk{Error: fmt.Errorf("reading stream: %w", err)})
				}
				return
			}
		}
	}()

	return chunks, nil
}

// Complete runs a non-streaming chat completion and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("llm: no completion choices returned")
	}
	return result.Choices[0].Message.Content, nil
}

// do sends the request and returns the response when the status is 2xx.
func (c *OpenAIClient) do(ctx context.Context, req ChatRequest, stream bool) (*http.Response, error) {
	body, err := json.Marshal(openAIRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errBody, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			return nil, fmt.Errorf("reading error body (status %d, after %s): %w", resp.StatusCode, time.Since(start), rerr)
		}
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(errBody)}
	}

	return resp, nil
}

// parseFrame interprets one line of the event stream. ok is false for
// lines that carry no chunk (comments, other fields, empty data).
func parseFrame(line string) (chunk StreamChunk, ok bool, err error) {
	if !strings.HasPrefix(line, dataPrefix) {
		return StreamChunk{}, false, nil
	}

	payload := line[len(dataPrefix):]
	if payload == "" {
		return StreamChunk{}, false, nil
	}
	if payload == doneSentinel {
		return StreamChunk{Done: true}, true, nil
	}

	var parsed openAIChunk
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return StreamChunk{}, false, &ParseError{Payload: payload, Err: err}
	}

	if len(parsed.Choices) > 0 && parsed.Choices[0].Delta.Content != nil {
		return StreamChunk{Token: *parsed.Choices[0].Delta.Content}, true, nil
	}
	return StreamChunk{}, true, nil
}

// Ensure OpenAIClient implements ChatStreamer.
var _ ChatStreamer = (*OpenAIClient)(nil)
