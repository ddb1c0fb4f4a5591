package analysis

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/llm"
	"github.com/artem13815/jobdash/pkg/resume"
	"github.com/artem13815/jobdash/pkg/workerpool"
)

// Cache stores finished analyses by job URL.
type Cache interface {
	Get(ctx context.Context, url string) (job.Analysis, bool)
	Set(ctx context.Context, url string, a job.Analysis)
}

// BatchAnalyzer runs the analyzer over many postings on the shared pool.
type BatchAnalyzer struct {
	analyzer Analyzer
	fallback Analyzer
	pool     *workerpool.Pool
	cache    Cache
	gen      llm.Generator
	stats    *Stats
	log      *slog.Logger
}

// NewBatchAnalyzer wires the model-backed path with its heuristic fallback.
// gen and cache may be nil.
func NewBatchAnalyzer(gen llm.Generator, cats Categories, pool *workerpool.Pool, cache Cache, log *slog.Logger) *BatchAnalyzer {
	if log == nil {
		log = slog.Default()
	}
	heuristic := NewHeuristicAnalyzer(cats)
	var primary Analyzer
	if gen != nil {
		primary = NewLLMAnalyzer(gen, cats, log)
	}
	return &BatchAnalyzer{
		analyzer: NewFallbackAnalyzer(primary, heuristic, log),
		fallback: heuristic,
		pool:     pool,
		cache:    cache,
		gen:      gen,
		stats:    newStats(),
		log:      log,
	}
}

// Analyze runs one posting synchronously, using the cache.
func (b *BatchAnalyzer) Analyze(ctx context.Context, rec job.Record, cv resume.CandidateProfile) job.Analyzed {
	start := time.Now()
	a, cached := b.analyzeOne(ctx, rec, cv)
	b.stats.record(a, time.Since(start), a.Metadata.Error != "", cached)
	return job.Analyzed{Record: ApplyLocation(rec, a), Analysis: a}
}

// AnalyzeBatch analyzes every record; one failing posting never affects the
// others. The result is ordered by total score, best first.
func (b *BatchAnalyzer) AnalyzeBatch(ctx context.Context, records []job.Record, cv resume.CandidateProfile) []job.Analyzed {
	if len(records) == 0 {
		return []job.Analyzed{}
	}
	b.log.Info("batch analysis started", "jobs", len(records), "workers", b.pool.Width(), "cv_loaded", cv.Loaded())

	type outcome struct {
		analysis job.Analysis
		cached   bool
		took     time.Duration
	}

	out := make([]job.Analyzed, 0, len(records))
	results := workerpool.Run(ctx, b.pool, len(records), func(ctx context.Context, i int) (outcome, error) {
		start := time.Now()
		a, cached := b.analyzeOne(ctx, records[i], cv)
		return outcome{analysis: a, cached: cached, took: time.Since(start)}, nil
	})

	for r := range results {
		rec := records[r.Index]
		o := r.Value
		failed := o.analysis.Metadata.Error != ""
		if r.Err != nil {
			// timed out or cancelled: the worker is abandoned
			b.log.Warn("job analysis failed, using heuristic", "url", rec.URL, "title", rec.Title, "timed_out", r.TimedOut, "err", r.Err)
			o.analysis, _ = b.fallback.Analyze(context.WithoutCancel(ctx), rec, cv)
			o.analysis.Metadata.Error = r.Err.Error()
			failed = true
		}
		b.stats.record(o.analysis, o.took, failed, o.cached)
		b.log.Debug("job analyzed", "title", rec.Title, "total_score", o.analysis.Composite.TotalScore, "source", o.analysis.Source)
		out = append(out, job.Analyzed{Record: ApplyLocation(rec, o.analysis), Analysis: o.analysis})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalScore() > out[j].TotalScore() })
	b.log.Info("batch analysis finished", "jobs", len(out))
	return out
}

func (b *BatchAnalyzer) analyzeOne(ctx context.Context, rec job.Record, cv resume.CandidateProfile) (job.Analysis, bool) {
	if b.cache != nil && rec.Key() != "" {
		if a, ok := b.cache.Get(ctx, rec.Key()); ok {
			return a, true
		}
	}
	a, _ := b.analyzer.Analyze(ctx, rec, cv)
	// heuristic results are not cached so a recovered model gets a retry
	if b.cache != nil && rec.Key() != "" && a.Source == job.SourceLLM {
		b.cache.Set(ctx, rec.Key(), a)
	}
	return a, false
}

func (b *BatchAnalyzer) Stats(ctx context.Context) StatsSnapshot {
	s := b.stats.snapshot()
	if b.gen != nil {
		s.ModelName = b.gen.Model()
		s.Available = b.gen.Available(ctx)
	}
	return s
}
