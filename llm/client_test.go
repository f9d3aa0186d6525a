package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-insight/backend/logging"
)

const chatReply = `{"choices": [{"message": {"content": "hello from the model"}}]}`

func newTestClient(baseURL string, maxRetries int) *Client {
	return &Client{
		log:        logging.NewNop(),
		baseURL:    baseURL,
		apiKey:     "test-key",
		model:      "test-model",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		maxRetries: maxRetries,
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(chatReply))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, 0).Generate(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello from the model", got)
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(chatReply))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL, 2).Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello from the model", got)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestGenerateHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.Write([]byte(chatReply))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL, 0).Generate(ctx, "prompt")
	assert.Error(t, err)
}
