package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/resume"
)

var (
	ErrLLMUnavailable = errors.New("llm is not available")
	ErrEmptyResponse  = errors.New("llm returned an empty response")
)

// Analyzer produces the decision record for one posting.
type Analyzer interface {
	Analyze(ctx context.Context, rec job.Record, cv resume.CandidateProfile) (job.Analysis, error)
}

// FallbackAnalyzer tries Primary and answers from Secondary when Primary
// fails, panics or runs out of time. It never returns an error.
type FallbackAnalyzer struct {
	Primary   Analyzer
	Secondary Analyzer
	Log       *slog.Logger
}

func NewFallbackAnalyzer(primary, secondary Analyzer, log *slog.Logger) *FallbackAnalyzer {
	if log == nil {
		log = slog.Default()
	}
	return &FallbackAnalyzer{Primary: primary, Secondary: secondary, Log: log}
}

func (f *FallbackAnalyzer) Analyze(ctx context.Context, rec job.Record, cv resume.CandidateProfile) (job.Analysis, error) {
	if f.Primary != nil {
		a, err := safeAnalyze(ctx, f.Primary, rec, cv)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrLLMUnavailable) {
			f.Log.Warn("primary analysis failed, using fallback", "url", rec.URL, "title", rec.Title, "err", err)
		}
		return f.secondary(ctx, rec, cv, err), nil
	}
	return f.secondary(ctx, rec, cv, nil), nil
}

func (f *FallbackAnalyzer) secondary(ctx context.Context, rec job.Record, cv resume.CandidateProfile, cause error) job.Analysis {
	var (
		a   job.Analysis
		err = errors.New("no secondary analyzer")
	)
	if f.Secondary != nil {
		a, err = safeAnalyze(ctx, f.Secondary, rec, cv)
	}
	if err != nil {
		f.Log.Error("fallback analysis failed", "url", rec.URL, "err", err)
		a = neutralAnalysis(rec, time.Now().UTC())
	}
	// a model that is simply down is degraded mode, not an error
	if cause != nil && !errors.Is(cause, ErrLLMUnavailable) {
		a.Metadata.Error = cause.Error()
	}
	return a
}

// safeAnalyze turns a panic into an error.
func safeAnalyze(ctx context.Context, an Analyzer, rec job.Record, cv resume.CandidateProfile) (a job.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer panicked: %v", r)
		}
	}()
	return an.Analyze(ctx, rec, cv)
}

// ApplyLocation copies the model-extracted location onto the record.
func ApplyLocation(rec job.Record, a job.Analysis) job.Record {
	if a.Source != job.SourceLLM {
		return rec
	}
	if loc := a.LocationAnalysis.ExtractedLocation; loc != "" && loc != "unknown" {
		rec.Location = loc
	}
	return rec
}
