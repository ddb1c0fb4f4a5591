package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/llm"
	"github.com/artem13815/jobdash/pkg/resume"
)

const analysisMaxTokens = 2000

// LLMAnalyzer asks the model for the whole analysis in one call.
type LLMAnalyzer struct {
	gen  llm.Generator
	cats Categories
	log  *slog.Logger
	now  func() time.Time
}

func NewLLMAnalyzer(gen llm.Generator, cats Categories, log *slog.Logger) *LLMAnalyzer {
	if log == nil {
		log = slog.Default()
	}
	return &LLMAnalyzer{gen: gen, cats: cats, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, rec job.Record, cv resume.CandidateProfile) (job.Analysis, error) {
	if a.gen == nil || !a.gen.Available(ctx) {
		return job.Analysis{}, ErrLLMUnavailable
	}
	raw := a.gen.Generate(ctx, llm.Request{
		Prompt:       buildPrompt(rec, cv, a.cats),
		SystemPrompt: systemPrompt,
		MaxTokens:    analysisMaxTokens,
	})
	if strings.TrimSpace(raw) == "" {
		return job.Analysis{}, ErrEmptyResponse
	}
	var resp llmResponse
	if err := llm.ParseJSON(raw, &resp); err != nil {
		a.log.Debug("analysis response is not JSON", "url", rec.URL, "response", truncateRunes(raw, 200))
		return job.Analysis{}, fmt.Errorf("parse analysis: %w", err)
	}

	out := resp.toAnalysis(rec)
	out.Source = job.SourceLLM
	out.Metadata = job.Metadata{ProcessedAt: a.now(), ModelUsed: a.gen.Model()}
	Finalize(&out)
	return out, nil
}

// llmResponse mirrors the prompt schema loosely: models quote numbers and
// booleans, use alternative keys and send nulls.
type llmResponse struct {
	FilteringDecision struct {
		ShouldInclude     *flexBool   `json:"should_include"`
		RejectionReason   *string     `json:"rejection_reason"`
		QualityAssessment string      `json:"quality_assessment"`
		RelevanceScore    *flexNumber `json:"relevance_score"`
	} `json:"filtering_decision"`
	LanguageAnalysis struct {
		PrimaryLanguage    string     `json:"primary_language"`
		Confidence         flexNumber `json:"confidence"`
		LanguageConfidence flexNumber `json:"language_confidence"`
		IsSpam             flexBool   `json:"is_spam"`
	} `json:"language_analysis"`
	LocationAnalysis struct {
		ExtractedLocation string   `json:"extracted_location"`
		IsRemote          flexBool `json:"is_remote"`
		IsHybrid          flexBool `json:"is_hybrid"`
		LocationType      string   `json:"location_type"`
	} `json:"location_analysis"`
	JobClassification struct {
		Category           string     `json:"category"`
		Seniority          string     `json:"seniority"`
		ExperienceRequired flexNumber `json:"experience_required"`
		Technologies       []string   `json:"technologies"`
	} `json:"job_classification"`
	CVMatching struct {
		OverallMatchScore   *flexNumber `json:"overall_match_score"`
		MatchingSkills      []string    `json:"matching_skills"`
		MissingSkills       []string    `json:"missing_skills"`
		ApplicationPriority string      `json:"application_priority"`
	} `json:"cv_matching"`
	JobQuality struct {
		OverallQuality *flexNumber `json:"overall_quality"`
		RedFlags       []string    `json:"red_flags"`
		GreenFlags     []string    `json:"green_flags"`
	} `json:"job_quality"`
}

func (r llmResponse) toAnalysis(rec job.Record) job.Analysis {
	var a job.Analysis

	fd := r.FilteringDecision
	a.FilteringDecision.ShouldInclude = fd.ShouldInclude == nil || bool(*fd.ShouldInclude)
	if fd.RejectionReason != nil {
		if reason := strings.TrimSpace(*fd.RejectionReason); reason != "" && !strings.EqualFold(reason, "null") {
			a.FilteringDecision.RejectionReason = &reason
		}
	}
	a.FilteringDecision.RelevanceScore = numberOr(fd.RelevanceScore, 50, 0, 100)

	la := r.LanguageAnalysis
	a.LanguageAnalysis.PrimaryLanguage = job.ParseLanguage(la.PrimaryLanguage)
	conf := la.Confidence
	if conf == 0 {
		conf = la.LanguageConfidence
	}
	a.LanguageAnalysis.Confidence = job.ClampFloat(float64(conf), 0, 100)
	a.LanguageAnalysis.IsSpam = bool(la.IsSpam) || strings.EqualFold(strings.TrimSpace(fd.QualityAssessment), "spam")

	loc := r.LocationAnalysis
	a.LocationAnalysis.ExtractedLocation = strings.TrimSpace(loc.ExtractedLocation)
	if a.LocationAnalysis.ExtractedLocation == "" {
		a.LocationAnalysis.ExtractedLocation = strings.TrimSpace(rec.Location)
	}
	a.LocationAnalysis.IsRemote = bool(loc.IsRemote)
	a.LocationAnalysis.IsHybrid = bool(loc.IsHybrid)
	switch {
	case strings.TrimSpace(loc.LocationType) != "":
		a.LocationAnalysis.LocationType = job.ParseLocationType(loc.LocationType)
	case a.LocationAnalysis.IsRemote:
		a.LocationAnalysis.LocationType = job.LocationRemote
	case a.LocationAnalysis.IsHybrid:
		a.LocationAnalysis.LocationType = job.LocationHybrid
	default:
		a.LocationAnalysis.LocationType = job.LocationOnsite
	}
	switch a.LocationAnalysis.LocationType {
	case job.LocationRemote:
		a.LocationAnalysis.IsRemote = true
	case job.LocationHybrid:
		a.LocationAnalysis.IsHybrid = true
	}

	jc := r.JobClassification
	a.JobClassification.Category = strings.TrimSpace(jc.Category)
	a.JobClassification.Seniority = strings.TrimSpace(jc.Seniority)
	a.JobClassification.ExperienceRequired = job.ClampFloat(float64(jc.ExperienceRequired), 0, 50)
	a.JobClassification.Technologies = jc.Technologies

	cm := r.CVMatching
	a.CVMatching.OverallMatchScore = numberOr(cm.OverallMatchScore, 50, 0, 100)
	a.CVMatching.MatchingSkills = cm.MatchingSkills
	a.CVMatching.MissingSkills = cm.MissingSkills
	a.CVMatching.ApplicationPriority = job.ParsePriority(cm.ApplicationPriority)

	q := r.JobQuality
	a.JobQuality.OverallQuality = numberOr(q.OverallQuality, 5, 0, 10)
	a.JobQuality.RedFlags = q.RedFlags
	a.JobQuality.GreenFlags = q.GreenFlags
	return a
}

func numberOr(n *flexNumber, def, lo, hi int) int {
	if n == nil {
		return def
	}
	return job.ClampFloat(float64(*n), lo, hi)
}

// flexNumber accepts 7, 7.5, "7", "85%" and null.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return nil
	}
	// "0-100" style echoes of the schema
	if i := strings.IndexAny(s[1:], "-/"); i >= 0 {
		s = s[:i+1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	*n = flexNumber(f)
	return nil
}

// flexBool accepts true, "true", "yes" and null.
type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case bool:
		*v = flexBool(x)
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "1":
			*v = true
		default:
			*v = false
		}
	case float64:
		*v = x != 0
	}
	return nil
}
