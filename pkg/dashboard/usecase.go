package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/jobdash/pkg/analysis"
	"github.com/artem13815/jobdash/pkg/export"
	"github.com/artem13815/jobdash/pkg/grouping"
	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/ranking"
	"github.com/artem13815/jobdash/pkg/resume"
)

// storedPage bounds a single read of the job table.
const storedPage = 500

// UseCase is what the HTTP layer and the scheduler call.
type UseCase interface {
	Ingest(ctx context.Context, records []job.Record) (IngestResult, error)
	ListJobs(ctx context.Context, f job.Filter) ([]job.Stored, int, error)
	Group(ctx context.Context, records []job.Record, useLLM bool) (GroupResult, error)
	Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResult, error)
	Ranked(ctx context.Context, c ranking.Criteria) ([]job.Analyzed, error)
	Export(ctx context.Context, c ranking.Criteria, w io.Writer) error
	ReanalyzePending(ctx context.Context, limit int) (int, error)
}

type IngestResult struct {
	Received  int      `json:"received"`
	Changed   int      `json:"changed"`
	Unchanged int      `json:"unchanged"`
	Failed    []string `json:"failed,omitempty"`
}

type GroupResult struct {
	Groups  []grouping.Group `json:"groups"`
	Summary grouping.Summary `json:"summary"`
	Mode    string           `json:"mode"`
}

// AnalyzeRequest analyzes the posted jobs, or stored ones when Jobs is empty.
type AnalyzeRequest struct {
	Jobs        []job.Record `json:"jobs"`
	OnlyPending bool         `json:"only_pending"`
	Limit       int          `json:"limit"`
}

type AnalyzeResult struct {
	RunID    uuid.UUID              `json:"run_id"`
	Analyzed int                    `json:"analyzed"`
	Jobs     []job.Analyzed         `json:"jobs"`
	Stats    analysis.StatsSnapshot `json:"stats"`
	Took     float64                `json:"took_seconds"`
}

// IgnoreList supplies the URLs the owner has hidden.
type IgnoreList interface {
	IgnoredURLs(ctx context.Context) (map[string]struct{}, error)
}

type Service struct {
	repo      job.Repository
	ignored   IgnoreList
	cv        *resume.Store
	batch     *analysis.BatchAnalyzer
	rules     *grouping.Engine
	llmGroups *grouping.Engine
	log       *slog.Logger
}

var _ UseCase = (*Service)(nil)

// NewService wires the pipeline. llmGroups may be nil; rule grouping is then
// used for every mode.
func NewService(repo job.Repository, cv *resume.Store, batch *analysis.BatchAnalyzer,
	rules, llmGroups *grouping.Engine, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if llmGroups == nil {
		llmGroups = rules
	}
	return &Service{
		repo:      repo,
		cv:        cv,
		batch:     batch,
		rules:     rules,
		llmGroups: llmGroups,
		log:       log.With("component", "dashboard"),
	}
}

// Ingest upserts every record in input order, so a repeated URL keeps its
// last version. A bad record is reported in Failed and does not stop the
// rest.
func (s *Service) Ingest(ctx context.Context, records []job.Record) (IngestResult, error) {
	res := IngestResult{Received: len(records)}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		changed, err := s.repo.UpsertJob(ctx, rec)
		switch {
		case err != nil:
			s.log.Warn("job upsert failed", "url", rec.URL, "err", err)
			res.Failed = append(res.Failed, rec.URL)
		case changed:
			res.Changed++
		default:
			res.Unchanged++
		}
	}
	s.log.Info("jobs ingested", "received", res.Received, "changed", res.Changed, "failed", len(res.Failed))
	return res, nil
}

func (s *Service) ListJobs(ctx context.Context, f job.Filter) ([]job.Stored, int, error) {
	jobs, err := s.repo.GetJobs(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}
	return jobs, total, nil
}

func (s *Service) Group(ctx context.Context, records []job.Record, useLLM bool) (GroupResult, error) {
	if len(records) == 0 {
		stored, err := s.allStored(ctx, job.Filter{})
		if err != nil {
			return GroupResult{}, err
		}
		records = recordsOf(stored)
	}
	engine, mode := s.rules, "rules"
	if useLLM {
		engine, mode = s.llmGroups, "llm"
	}
	groups := engine.Group(ctx, records)
	return GroupResult{Groups: groups, Summary: grouping.Summarize(groups), Mode: mode}, nil
}

// Analyze runs the batch and persists every analysis whose job is stored.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (AnalyzeResult, error) {
	start := time.Now()
	runID := uuid.New()
	records := req.Jobs
	if len(records) == 0 {
		stored, err := s.allStored(ctx, job.Filter{OnlyPending: req.OnlyPending, Limit: req.Limit})
		if err != nil {
			return AnalyzeResult{}, err
		}
		records = recordsOf(stored)
	} else if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}
	log := s.log.With("run_id", runID)
	log.Info("analysis run started", "jobs", len(records))

	analyzed := s.batch.AnalyzeBatch(ctx, records, s.cv.Current())
	for _, a := range analyzed {
		if err := s.repo.SaveAnalysis(ctx, a.Record.URL, a.Analysis); err != nil {
			if errors.Is(err, job.ErrNotFound) {
				continue
			}
			log.Warn("analysis not saved", "url", a.Record.URL, "err", err)
		}
	}
	took := time.Since(start)
	log.Info("analysis run finished", "jobs", len(analyzed), "took", took)
	return AnalyzeResult{
		RunID:    runID,
		Analyzed: len(analyzed),
		Jobs:     analyzed,
		Stats:    s.batch.Stats(ctx),
		Took:     took.Seconds(),
	}, nil
}

// WithIgnoreList enables Criteria.ExcludeIgnored.
func (s *Service) WithIgnoreList(l IgnoreList) *Service {
	s.ignored = l
	return s
}

func (s *Service) Ranked(ctx context.Context, c ranking.Criteria) ([]job.Analyzed, error) {
	if c.ExcludeIgnored && s.ignored != nil {
		hidden, err := s.ignored.IgnoredURLs(ctx)
		if err != nil {
			return nil, fmt.Errorf("load ignored jobs: %w", err)
		}
		c.Ignored = hidden
	}
	stored, err := s.allStored(ctx, job.Filter{OnlyAnalyzed: true})
	if err != nil {
		return nil, err
	}
	analyzed := make([]job.Analyzed, 0, len(stored))
	for _, st := range stored {
		analyzed = append(analyzed, job.Analyzed{Record: st.Record, Analysis: *st.Analysis})
	}
	return ranking.FilterAndRank(analyzed, c), nil
}

// Export writes the ranked jobs and the rule-based groups of all stored jobs.
func (s *Service) Export(ctx context.Context, c ranking.Criteria, w io.Writer) error {
	ranked, err := s.Ranked(ctx, c)
	if err != nil {
		return err
	}
	groups, err := s.Group(ctx, nil, false)
	if err != nil {
		return err
	}
	return export.Write(w, export.Report{
		GeneratedAt: time.Now(),
		Jobs:        ranked,
		Groups:      groups.Groups,
		Summary:     groups.Summary,
		CVSource:    s.cv.Current().Source,
	})
}

// ReanalyzePending analyzes up to limit stored jobs that have no analysis.
func (s *Service) ReanalyzePending(ctx context.Context, limit int) (int, error) {
	res, err := s.Analyze(ctx, AnalyzeRequest{OnlyPending: true, Limit: limit})
	if err != nil {
		return 0, err
	}
	return res.Analyzed, nil
}

// allStored pages through the repository; f.Limit caps the total.
func (s *Service) allStored(ctx context.Context, f job.Filter) ([]job.Stored, error) {
	want := f.Limit
	var out []job.Stored
	for {
		page := job.Filter{
			Source:       f.Source,
			Company:      f.Company,
			Search:       f.Search,
			OnlyAnalyzed: f.OnlyAnalyzed,
			OnlyPending:  f.OnlyPending,
			Limit:        storedPage,
			Offset:       f.Offset,
		}
		if want > 0 && want-len(out) < storedPage {
			page.Limit = want - len(out)
		}
		// nothing is saved while paging, so offsets stay stable
		page.Offset += len(out)
		rows, err := s.repo.GetJobs(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("load stored jobs: %w", err)
		}
		out = append(out, rows...)
		if len(rows) < page.Limit || (want > 0 && len(out) >= want) {
			return out, nil
		}
	}
}

func recordsOf(stored []job.Stored) []job.Record {
	out := make([]job.Record, 0, len(stored))
	for _, st := range stored {
		out = append(out, st.Record)
	}
	return out
}
