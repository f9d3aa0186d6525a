package llm

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
	"strconv"
	"strings"
	"time"

	"github.com/seo-insight/backend/config"
	"github.com/seo-insight/backend/logging"
)

// TextGenerator is the single operation the analysis pipeline needs from a
// text-generation provider. Implementations return the raw completion text;
// callers are responsible for locating any JSON inside it.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	log        *logging.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

// NewClient builds a Client from the environment. LLM_API_KEY is required;
// LLM_BASE_URL, LLM_MODEL, LLM_TIMEOUT_SECONDS and LLM_MAX_RETRIES are
// optional.
func NewClient(log *logging.Logger) (*Client, error) {
	apiKey := config.Get("LLM_API_KEY", "")
	if apiKey == "" {
		return nil, fmt.Errorf("missing LLM_API_KEY")
	}

	timeoutSec := config.Int("LLM_TIMEOUT_SECONDS", 60)

	return &Client{
		log:        log.With("service", "LLMClient"),
		baseURL:    config.Get("LLM_BASE_URL", "https://api.openai.com"),
		apiKey:     apiKey,
		model:      config.Get("LLM_MODEL", "gpt-4o-mini"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: config.Int("LLM_MAX_RETRIES", 3),
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var hErr *httpError
	if errors.As(err, &hErr) {
		return hErr.StatusCode == http.StatusRequestTimeout ||
			hErr.StatusCode == http.StatusTooManyRequests ||
			hErr.StatusCode >= 500
	}
	return false
}

// jitter spreads sleeps by +/-20% so concurrent retries don't align.
func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := 0.2 * base.Seconds()
	v := base.Seconds() - delta + rand.Float64()*2*delta
	return time.Duration(v * float64(time.Second))
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends the prompt as a single user message and returns the first
// choice's text. Retries with capped exponential backoff on timeouts, 429s
// and 5xx responses, honoring Retry-After when present.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{Model: c.model, Temperature: 0.2}
	req.Messages = append(req.Messages, struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: "user", Content: prompt})

	backoff := time.Second
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, req)
		if err == nil {
			var parsed chatResponse
			if uErr := json.Unmarshal(raw, &parsed); uErr != nil {
				return "", fmt.Errorf("decode llm response: %w", uErr)
			}
			if len(parsed.Choices) == 0 {
				return "", fmt.Errorf("llm response had no choices")
			}
			return parsed.Choices[0].Message.Content, nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == c.maxRetries {
			return "", err
		}

		sleep := backoff
		if resp != nil {
			if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
				if secs, pErr := strconv.Atoi(ra); pErr == nil && secs > 0 {
					sleep = time.Duration(secs) * time.Second
				}
			}
		}
		if sleep > 10*time.Second {
			sleep = 10 * time.Second
		}
		sleep = jitter(sleep)

		c.log.Warn("llm request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleep.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(sleep):
		}
		backoff *= 2
	}

	return "", lastErr
}

func (c *Client) doOnce(ctx context.Context, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}
