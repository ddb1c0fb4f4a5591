package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/artem13815/jobdash/pkg/llm"
)

const (
	defaultHost  = "http://localhost:11434"
	defaultModel = "llama3:8b"
	probeTimeout = 10 * time.Second
)

// Options configures Client. Zero values fall back to sane defaults.
type Options struct {
	Host        string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Temperature float64
	MaxTokens   int
	// First backoff step; doubles per retry and is capped at BackoffCap.
	BackoffBase time.Duration
	BackoffCap  time.Duration
	Logger      *slog.Logger
}

// Client talks to a local Ollama server (/api/generate, /api/tags).
type Client struct {
	host        string
	model       string
	maxRetries  int
	temperature float64
	maxTokens   int
	backoffBase time.Duration
	backoffCap  time.Duration
	log         *slog.Logger
	httpDo      *http.Client

	mu        sync.Mutex
	available *bool
}

var _ llm.Generator = (*Client)(nil)

func New(opts Options) *Client {
	if opts.Host == "" {
		opts.Host = defaultHost
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 300 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.BackoffCap <= 0 {
		opts.BackoffCap = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		host:        strings.TrimRight(opts.Host, "/"),
		model:       opts.Model,
		maxRetries:  opts.MaxRetries,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		backoffBase: opts.BackoffBase,
		backoffCap:  opts.BackoffCap,
		log:         opts.Logger.With("component", "ollama"),
		httpDo: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

type generateOptions struct {
	NumPredict    int     `json:"num_predict"`
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func (c *Client) Model() string { return c.model }

// Generate returns the raw model text or "" when the server is unavailable
// or every attempt failed. Failures are logged, never returned.
func (c *Client) Generate(ctx context.Context, req llm.Request) string {
	if !c.Available(ctx) {
		c.log.Warn("ollama is not available, skipping generation")
		return ""
	}
	body := generateRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		System: req.SystemPrompt,
		Stream: false,
		Options: generateOptions{
			NumPredict:    c.maxTokens,
			Temperature:   c.temperature,
			TopP:          0.9,
			RepeatPenalty: 1.1,
		},
	}
	if req.MaxTokens > 0 {
		body.Options.NumPredict = req.MaxTokens
	}
	if req.Temperature > 0 {
		body.Options.Temperature = req.Temperature
	}
	data, err := json.Marshal(body)
	if err != nil {
		c.log.Error("marshal generate request", "err", err)
		return ""
	}

	var out string
	attempt := 0
	backoff := retry.NewExponential(c.backoffBase)
	backoff = retry.WithCappedDuration(c.backoffCap, backoff)
	backoff = retry.WithMaxRetries(uint64(c.maxRetries-1), backoff)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		text, err := c.post(ctx, "/api/generate", data)
		if err != nil {
			c.log.Warn("generate attempt failed", "attempt", attempt, "max", c.maxRetries, "err", err)
			return retry.RetryableError(err)
		}
		out = text
		return nil
	})
	if err != nil {
		c.log.Error("generate failed after retries", "attempts", attempt, "err", err)
		return ""
	}
	return strings.TrimSpace(out)
}

func (c *Client) post(ctx context.Context, path string, data []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var errMap map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errMap)
		return "", fmt.Errorf("ollama http %d: %v", resp.StatusCode, errMap)
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return out.Response, nil
}

// Available reports the cached result of the /api/tags probe, probing on
// first use or after Invalidate.
func (c *Client) Available(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.available != nil {
		return *c.available
	}
	_, err := c.listModels(ctx)
	ok := err == nil
	if ok {
		c.log.Info("connected to ollama", "host", c.host, "model", c.model)
	} else {
		c.log.Warn("ollama probe failed, llm features disabled", "host", c.host, "err", err)
	}
	c.available = &ok
	return ok
}

func (c *Client) Invalidate() {
	c.mu.Lock()
	c.available = nil
	c.mu.Unlock()
}

// ListModels returns model names installed on the server.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	return c.listModels(ctx)
}

func (c *Client) listModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama tags http %d", resp.StatusCode)
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
