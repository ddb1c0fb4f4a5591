package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/jobdash/pkg/llm"
	"github.com/artem13815/jobdash/pkg/logging"
)

type fakeServer struct {
	tagsStatus   atomic.Int32
	failFirst    atomic.Int32
	tagCalls     atomic.Int32
	genCalls     atomic.Int32
	lastRequest  atomic.Value
	responseText string
}

func newFakeServer(t *testing.T, responseText string) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{responseText: responseText}
	fs.tagsStatus.Store(http.StatusOK)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		fs.tagCalls.Add(1)
		status := int(fs.tagsStatus.Load())
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "llama3:8b"}, {"name": "mistral:7b"}},
		})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		n := fs.genCalls.Add(1)
		var req generateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		fs.lastRequest.Store(req)
		if n <= fs.failFirst.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"model loading"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Model: req.Model, Response: fs.responseText, Done: true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return fs, srv
}

func newTestClient(host string) *Client {
	return New(Options{
		Host:        host,
		Model:       "llama3:8b",
		Timeout:     2 * time.Second,
		MaxRetries:  3,
		Temperature: 0.1,
		MaxTokens:   1000,
		BackoffBase: time.Millisecond,
		BackoffCap:  5 * time.Millisecond,
		Logger:      logging.Discard(),
	})
}

func TestGenerate_SendsOllamaPayload(t *testing.T) {
	fs, srv := newFakeServer(t, "  hello there \n")
	c := newTestClient(srv.URL)

	out := c.Generate(context.Background(), llm.Request{Prompt: "p", SystemPrompt: "s", MaxTokens: 42})

	assert.Equal(t, "hello there", out)
	req := fs.lastRequest.Load().(generateRequest)
	assert.Equal(t, "llama3:8b", req.Model)
	assert.Equal(t, "p", req.Prompt)
	assert.Equal(t, "s", req.System)
	assert.False(t, req.Stream)
	assert.Equal(t, 42, req.Options.NumPredict)
	assert.InDelta(t, 0.1, req.Options.Temperature, 1e-9)
	assert.InDelta(t, 0.9, req.Options.TopP, 1e-9)
	assert.InDelta(t, 1.1, req.Options.RepeatPenalty, 1e-9)
}

func TestGenerate_RetriesTransientFailures(t *testing.T) {
	fs, srv := newFakeServer(t, "ok")
	fs.failFirst.Store(2)
	c := newTestClient(srv.URL)

	out := c.Generate(context.Background(), llm.Request{Prompt: "p"})

	assert.Equal(t, "ok", out)
	assert.EqualValues(t, 3, fs.genCalls.Load())
}

func TestGenerate_DegradesToEmptyAfterMaxRetries(t *testing.T) {
	fs, srv := newFakeServer(t, "never")
	fs.failFirst.Store(100)
	c := newTestClient(srv.URL)

	out := c.Generate(context.Background(), llm.Request{Prompt: "p"})

	assert.Empty(t, out)
	assert.EqualValues(t, 3, fs.genCalls.Load())
}

func TestGenerate_UnavailableServerSkipsGeneration(t *testing.T) {
	fs, srv := newFakeServer(t, "ok")
	fs.tagsStatus.Store(http.StatusServiceUnavailable)
	c := newTestClient(srv.URL)

	assert.Empty(t, c.Generate(context.Background(), llm.Request{Prompt: "p"}))
	assert.EqualValues(t, 0, fs.genCalls.Load())
}

func TestGenerate_ConnectionRefused(t *testing.T) {
	_, srv := newFakeServer(t, "ok")
	host := srv.URL
	srv.Close()
	c := newTestClient(host)

	assert.NotPanics(t, func() {
		assert.Empty(t, c.Generate(context.Background(), llm.Request{Prompt: "p"}))
	})
	assert.False(t, c.Available(context.Background()))
}

func TestAvailable_CachedUntilInvalidated(t *testing.T) {
	fs, srv := newFakeServer(t, "ok")
	c := newTestClient(srv.URL)
	ctx := context.Background()

	require.True(t, c.Available(ctx))
	require.True(t, c.Available(ctx))
	assert.EqualValues(t, 1, fs.tagCalls.Load())

	fs.tagsStatus.Store(http.StatusBadGateway)
	assert.True(t, c.Available(ctx), "cached probe result")

	c.Invalidate()
	assert.False(t, c.Available(ctx))
	assert.EqualValues(t, 2, fs.tagCalls.Load())
}

func TestListModels(t *testing.T) {
	_, srv := newFakeServer(t, "ok")
	c := newTestClient(srv.URL)

	names, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3:8b", "mistral:7b"}, names)
}
