package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Request is a single completion call.
type Request struct {
	Prompt       string
	SystemPrompt string
	// Zero values mean "use client defaults".
	MaxTokens   int
	Temperature float64
}

// Generator hides the concrete model server from the domain.
//
// Generate never fails loudly: transport problems are retried and logged
// inside the implementation, and an empty string is returned when nothing
// usable came back. Every caller must have a fallback path for "".
type Generator interface {
	Generate(ctx context.Context, req Request) string
	Available(ctx context.Context) bool
	// Invalidate drops the cached availability probe.
	Invalidate()
	Model() string
}

var ErrNoJSON = errors.New("llm response contains no parsable JSON object")

// ParseJSON decodes raw into v. When raw is not valid JSON as a whole it
// retries with the substring between the first '{' and the last '}'.
func ParseJSON(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	i := strings.Index(raw, "{")
	j := strings.LastIndex(raw, "}")
	if i < 0 || j <= i {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(raw[i:j+1]), v); err != nil {
		return errors.Join(ErrNoJSON, err)
	}
	return nil
}

// AskYesNo sends a yes/no question. ok is false when the model gave no answer.
func AskYesNo(ctx context.Context, g Generator, system, prompt string) (yes bool, ok bool) {
	if g == nil {
		return false, false
	}
	resp := g.Generate(ctx, Request{Prompt: prompt, SystemPrompt: system, MaxTokens: 10, Temperature: 0.1})
	resp = strings.ToUpper(strings.TrimSpace(resp))
	if resp == "" {
		return false, false
	}
	return strings.Contains(resp, "YES"), true
}
