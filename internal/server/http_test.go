package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/knoguchi/themefather/internal/auth"
	"github.com/knoguchi/themefather/internal/memory"
	"github.com/knoguchi/themefather/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg HTTPServerConfig) http.Handler {
	t.Helper()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewHTTPServer(cfg)
	require.NoError(t, err)
	return s.Handler()
}

func do(h http.Handler, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, HTTPServerConfig{})

	rec := do(h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = do(h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness(t *testing.T) {
	h := newTestServer(t, HTTPServerConfig{Readiness: map[string]ReadinessCheck{
		"ok": func(context.Context) error { return nil },
	}})
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/readyz", "", nil).Code)

	h = newTestServer(t, HTTPServerConfig{Readiness: map[string]ReadinessCheck{
		"database": func(context.Context) error { return errors.New("connection refused") },
	}})
	rec := do(h, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestWebhookRoute(t *testing.T) {
	called := 0
	webhook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
		w.WriteHeader(http.StatusOK)
	})
	h := newTestServer(t, HTTPServerConfig{Webhook: webhook, WebhookSecret: "s"})

	rec := do(h, http.MethodPost, WebhookPath, "{}", map[string]string{auth.WebhookSecretHeader: "s"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPost, WebhookPath, "{}", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodGet, WebhookPath, "", map[string]string{auth.WebhookSecretHeader: "s"})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	assert.Equal(t, 1, called)
}

func TestListThemes(t *testing.T) {
	archive := memory.NewStore(10, 0)
	defer archive.Close()
	ctx := context.Background()
	id := uuid.New()
	require.NoError(t, archive.Save(ctx, &repository.ThemeRecord{
		ID: id, UserID: 5, Platform: "iOS", Description: "dark", Theme: "bg: #000000",
	}))

	h := newTestServer(t, HTTPServerConfig{Archive: archive, AdminAPIKey: "admin"})
	key := map[string]string{auth.APIKeyHeader: "admin"}

	rec := do(h, http.MethodGet, "/v1/users/5/themes", "", key)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Themes []themeResponse `json:"themes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Themes, 1)
	assert.Equal(t, id.String(), body.Themes[0].ID)
	assert.Equal(t, "bg: #000000", body.Themes[0].Theme)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/v1/users/abc/themes", "", key).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/v1/users/5/themes?limit=0", "", key).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/v1/users/5/themes", "", nil).Code)
}
