package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

func testClient(t *testing.T, handler http.HandlerFunc) *client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return &client{
		log:        log.With("service", "GeminiClient"),
		baseURL:    srv.URL,
		apiKey:     "test-key",
		httpClient: srv.Client(),
		maxRetries: 2,
		baseDelay:  time.Millisecond,
	}
}

func modelReply(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func TestGenerateJSONDecodesPayload(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "models/flash-tier") {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("mime type = %q", req.GenerationConfig.ResponseMimeType)
		}
		w.Write([]byte(modelReply(`{"summary":"sorting works","verified":true}`)))
	})

	var out struct {
		Summary  string `json:"summary"`
		Verified bool   `json:"verified"`
	}
	schema := map[string]any{"type": "object"}
	err := c.GenerateJSON(context.Background(), "summarize", schema, Options{Model: "flash-tier"}, &out)
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out.Summary != "sorting works" || !out.Verified {
		t.Fatalf("out = %+v", out)
	}
}

func TestGenerateJSONRequiresModelAndSchema(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request issued without model/schema validation")
	})
	var out any
	if err := c.GenerateJSON(context.Background(), "p", map[string]any{}, Options{}, &out); err == nil {
		t.Fatalf("missing model accepted")
	}
	if err := c.GenerateJSON(context.Background(), "p", nil, Options{Model: "m"}, &out); err == nil {
		t.Fatalf("missing schema accepted")
	}
}

func TestGenerateTextJoinsParts(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "first "},
					{"text": "second"},
				}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	text, err := c.GenerateText(context.Background(), "explain", Options{Model: "pro-tier"})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "first second" {
		t.Fatalf("text = %q", text)
	}
}

func TestRetryRecoversAfterServerError(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(modelReply("recovered")))
	})

	text, err := c.GenerateText(context.Background(), "p", Options{Model: "m"})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "recovered" {
		t.Fatalf("text = %q", text)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryBudgetExhausted(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.GenerateText(context.Background(), "p", Options{Model: "m"})
	if err == nil {
		t.Fatalf("exhausted retries reported success")
	}
	var httpErr *geminiHTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %v", err)
	}
	// initial attempt plus maxRetries
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	})

	if _, err := c.GenerateText(context.Background(), "p", Options{Model: "m"}); err == nil {
		t.Fatalf("bad request reported success")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestNewClientReadsEnvConfig(t *testing.T) {
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "30")
	t.Setenv("GEMINI_MAX_RETRIES", "5")

	iface, err := NewClient(log)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c := iface.(*client)
	if c.maxRetries != 5 {
		t.Fatalf("maxRetries = %d, want 5", c.maxRetries)
	}
	if c.httpClient.Timeout != 30*time.Second {
		t.Fatalf("timeout = %v, want 30s", c.httpClient.Timeout)
	}

	t.Setenv("GEMINI_TIMEOUT_SECONDS", "soon")
	t.Setenv("GEMINI_MAX_RETRIES", "-1")

	iface, err = NewClient(log)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c = iface.(*client)
	if c.maxRetries != 2 {
		t.Fatalf("maxRetries = %d, want default 2", c.maxRetries)
	}
	if c.httpClient.Timeout != 120*time.Second {
		t.Fatalf("timeout = %v, want default 120s", c.httpClient.Timeout)
	}
}
