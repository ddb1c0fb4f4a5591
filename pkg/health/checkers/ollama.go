package checkers

import (
	"context"
	"errors"

	"github.com/artem13815/jobdash/pkg/llm"
)

var ErrLLMUnavailable = errors.New("llm gateway unavailable")

type OllamaChecker struct {
	gen llm.Generator
}

func NewOllamaChecker(gen llm.Generator) *OllamaChecker {
	return &OllamaChecker{gen: gen}
}

func (c *OllamaChecker) Name() string { return "ollama" }

func (c *OllamaChecker) Optional() bool { return true }

func (c *OllamaChecker) Check(ctx context.Context) error {
	if !c.gen.Available(ctx) {
		return ErrLLMUnavailable
	}
	return nil
}
