package grouping

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/artem13815/jobdash/pkg/llm"
)

// Comparer decides whether two postings share a company and a role.
type Comparer interface {
	SameCompany(ctx context.Context, a, b string) bool
	SameTitle(ctx context.Context, a, b string) bool
}

// RuleComparer is the offline tier.
type RuleComparer struct{}

func (RuleComparer) SameCompany(_ context.Context, a, b string) bool { return similarCompanies(a, b) }
func (RuleComparer) SameTitle(_ context.Context, a, b string) bool { return similarTitles(a, b) }

const companySystemPrompt = `You are an expert at comparing company names. Determine if two company names refer to the same company, accounting for:
- Different legal suffixes (GmbH, Ltd, Inc, etc.)
- Abbreviations vs full names
- Minor spelling differences

Respond with only "YES" if they are the same company, or "NO" if they are different companies.`

const titleSystemPrompt = `You are an expert at comparing job titles. Determine if two job titles represent the same type of position, even if worded differently.

Consider these as SIMILAR:
- "Software Engineer" and "Software Developer"
- "Frontend Developer" and "Front-end Engineer"
- "DevOps Engineer" and "DevOps Specialist"
- "System Administrator" and "Systemadministrator"

Consider these as DIFFERENT:
- "Software Engineer" and "Data Scientist"
- "Frontend Developer" and "Backend Developer"
- "Junior Developer" and "Senior Developer" (different seniority levels are NOT the same position)

Respond with only "YES" if they are similar positions, or "NO" if they are different.`

// LLMComparer asks the model and falls back to the rules whenever the model
// is unavailable or silent.
type LLMComparer struct {
	gen   llm.Generator
	rules RuleComparer
	log   *slog.Logger
}

func NewLLMComparer(gen llm.Generator, log *slog.Logger) *LLMComparer {
	if log == nil {
		log = slog.Default()
	}
	return &LLMComparer{gen: gen, log: log}
}

// SameCompany consults the model only when the rules say "different".
func (c *LLMComparer) SameCompany(ctx context.Context, a, b string) bool {
	if c.rules.SameCompany(ctx, a, b) {
		return true
	}
	if a == "" || b == "" || !c.available(ctx) {
		return false
	}
	prompt := fmt.Sprintf("Are these the same company?\n\nCompany 1: %q\nCompany 2: %q\n\nAre they the same company?", a, b)
	yes, ok := llm.AskYesNo(ctx, c.gen, companySystemPrompt, prompt)
	if !ok {
		c.log.Debug("company comparison fell back to rules", "a", a, "b", b)
		return false
	}
	return yes
}

func (c *LLMComparer) SameTitle(ctx context.Context, a, b string) bool {
	if !c.available(ctx) {
		return c.rules.SameTitle(ctx, a, b)
	}
	prompt := fmt.Sprintf("Compare these two job titles:\n\nTitle 1: %q\nTitle 2: %q\n\nAre these similar positions?", a, b)
	yes, ok := llm.AskYesNo(ctx, c.gen, titleSystemPrompt, prompt)
	if !ok {
		c.log.Debug("title comparison fell back to rules", "a", a, "b", b)
		return c.rules.SameTitle(ctx, a, b)
	}
	return yes
}

func (c *LLMComparer) available(ctx context.Context) bool {
	return c.gen != nil && c.gen.Available(ctx)
}
