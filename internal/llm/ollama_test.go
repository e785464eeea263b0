package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.True(t, req.Stream)
		assert.Len(t, req.Messages, 2)
		assert.Equal(t, float64(0), req.Options["temperature"])

		io.WriteString(w, `{"message":{"role":"assistant","content":"bg: "}}`+"\n")
		io.WriteString(w, `{"message":{"role":"assistant","content":"#101010"}}`+"\n")
		io.WriteString(w, `{"message":{"role":"assistant","content":""},"done":true}`+"\n")
	}))
	defer srv.Close()

	client := NewOllamaClient(WithBaseURL(srv.URL+"/"), WithModel("mistral"))
	ch, err := client.Stream(context.Background(), ChatRequest{
		Messages: []Message{{Role: RoleSystem, Content: "s"}, {Role: RoleUser, Content: "u"}},
	})
	require.NoError(t, err)

	chunks, err := collect(t, ch)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "bg: ", chunks[0].Token)
	assert.Equal(t, "#101010", chunks[1].Token)
	assert.True(t, chunks[2].Done)
}

func TestOllamaStream_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaClient(WithBaseURL(srv.URL)).Stream(context.Background(), ChatRequest{})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
}
