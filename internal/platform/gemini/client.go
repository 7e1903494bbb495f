package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/veristudy/veristudy-backend/internal/platform/logger"
	"github.com/veristudy/veristudy-backend/internal/utils"
)

// Client is the generation engine the pipeline depends on. GenerateJSON asks
// for a structured payload constrained by a response schema and decodes it
// into out; GenerateText returns plain prose. Both run the configured retry
// budget internally, so callers see only the final error.
type Client interface {
	GenerateJSON(ctx context.Context, prompt string, schema map[string]any, opts Options, out any) error
	GenerateText(ctx context.Context, prompt string, opts Options) (string, error)
}

// Options select the model tier and sampling knobs for a single call.
// The model string is the escalation axis: verification retries pass a
// stronger tier here and nothing else changes.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	baseURL := os.Getenv("GEMINI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	timeoutSec := utils.GetEnvAsInt("GEMINI_TIMEOUT_SECONDS", 120, log)
	if timeoutSec <= 0 {
		timeoutSec = 120
	}
	maxRetries := utils.GetEnvAsInt("GEMINI_MAX_RETRIES", 2, log)
	if maxRetries < 0 {
		maxRetries = 2
	}
	return &client{
		log:        log.With("service", "GeminiClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
		baseDelay:  400 * time.Millisecond,
	}, nil
}

type geminiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *geminiHTTPError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	var httpErr *geminiHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// +/- 20% jitter around base
func jitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	v := low + rand.Float64()*2*delta
	return time.Duration(v * float64(time.Second))
}

type generationConfig struct {
	Temperature      float64        `json:"temperature,omitempty"`
	MaxOutputTokens  int            `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseJsonSchema,omitempty"`
}

type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Role  string        `json:"role"`
	Parts []contentPart `json:"parts"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []contentPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func buildRequest(prompt string, cfg *generationConfig) generateRequest {
	return generateRequest{
		Contents: []content{
			{Role: "user", Parts: []contentPart{{Text: prompt}}},
		},
		GenerationConfig: cfg,
	}
}

func (c *client) doOnce(ctx context.Context, url string, body any) ([]byte, *http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp, &geminiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, resp, nil
}

func (c *client) do(ctx context.Context, model string, cfg *generationConfig, prompt string) (*generateResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	payload := buildRequest(prompt, cfg)
	backoff := c.baseDelay

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		raw, resp, err := c.doOnce(ctx, url, payload)
		if err == nil {
			var out generateResponse
			if uErr := json.Unmarshal(raw, &out); uErr != nil {
				return nil, fmt.Errorf("gemini decode error: %w", uErr)
			}
			return &out, nil
		}
		if !isRetryableErr(err) || attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := backoff
		if resp != nil {
			if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("Gemini request retrying",
			"model", model,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}
}

func joinParts(resp *generateResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (c *client) GenerateJSON(ctx context.Context, prompt string, schema map[string]any, opts Options, out any) error {
	if opts.Model == "" {
		return errors.New("model required")
	}
	if schema == nil {
		return errors.New("schema required")
	}
	cfg := &generationConfig{
		Temperature:      opts.Temperature,
		MaxOutputTokens:  opts.MaxOutputTokens,
		ResponseMimeType: "application/json",
		ResponseSchema:   schema,
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxOutputTokens == 0 {
		cfg.MaxOutputTokens = 2048
	}
	resp, err := c.do(ctx, opts.Model, cfg, prompt)
	if err != nil {
		return err
	}
	text := joinParts(resp)
	if text == "" {
		return fmt.Errorf("empty JSON response from gemini model %s", opts.Model)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to parse model JSON: %w; text=%s", err, text)
	}
	return nil
}

func (c *client) GenerateText(ctx context.Context, prompt string, opts Options) (string, error) {
	if opts.Model == "" {
		return "", errors.New("model required")
	}
	cfg := &generationConfig{
		Temperature:     opts.Temperature,
		MaxOutputTokens: opts.MaxOutputTokens,
	}
	resp, err := c.do(ctx, opts.Model, cfg, prompt)
	if err != nil {
		return "", err
	}
	return joinParts(resp), nil
}
