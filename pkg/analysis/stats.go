package analysis

import (
	"sync"
	"time"

	"github.com/artem13815/jobdash/pkg/job"
)

// Stats accumulates over the life of a BatchAnalyzer.
type Stats struct {
	mu                sync.Mutex
	jobsProcessed     int
	errors            int
	fallbacks         int
	cacheHits         int
	highQuality       int
	languageBreakdown map[string]int
	locationBreakdown map[string]int
	totalTime         time.Duration
}

type StatsSnapshot struct {
	JobsProcessed        int            `json:"jobs_processed"`
	Errors               int            `json:"errors"`
	Fallbacks            int            `json:"fallbacks"`
	CacheHits            int            `json:"cache_hits"`
	HighQualityJobs      int            `json:"high_quality_jobs"`
	LanguageBreakdown    map[string]int `json:"language_breakdown"`
	LocationBreakdown    map[string]int `json:"location_breakdown"`
	AvgProcessingSeconds float64        `json:"avg_processing_seconds"`
	ModelName            string         `json:"model_name"`
	Available            bool           `json:"available"`
}

func newStats() *Stats {
	return &Stats{languageBreakdown: map[string]int{}, locationBreakdown: map[string]int{}}
}

func (s *Stats) record(a job.Analysis, took time.Duration, failed, cached bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobsProcessed++
	s.totalTime += took
	if failed {
		s.errors++
	}
	if cached {
		s.cacheHits++
	}
	if a.Source == job.SourceHeuristic {
		s.fallbacks++
	}
	if a.JobQuality.OverallQuality >= 7 {
		s.highQuality++
	}
	s.languageBreakdown[string(a.LanguageAnalysis.PrimaryLanguage)]++
	loc := a.LocationAnalysis.ExtractedLocation
	if loc == "" {
		loc = "unknown"
	}
	s.locationBreakdown[loc]++
}

func (s *Stats) snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := StatsSnapshot{
		JobsProcessed:     s.jobsProcessed,
		Errors:            s.errors,
		Fallbacks:         s.fallbacks,
		CacheHits:         s.cacheHits,
		HighQualityJobs:   s.highQuality,
		LanguageBreakdown: make(map[string]int, len(s.languageBreakdown)),
		LocationBreakdown: make(map[string]int, len(s.locationBreakdown)),
	}
	for k, v := range s.languageBreakdown {
		out.LanguageBreakdown[k] = v
	}
	for k, v := range s.locationBreakdown {
		out.LocationBreakdown[k] = v
	}
	if s.jobsProcessed > 0 {
		out.AvgProcessingSeconds = s.totalTime.Seconds() / float64(s.jobsProcessed)
	}
	return out
}
