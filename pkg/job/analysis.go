package job

import (
	"math"
	"sort"
	"strings"
	"time"
)

type Language string

const (
	LanguageGerman  Language = "german"
	LanguageEnglish Language = "english"
	LanguageMixed   Language = "mixed"
	LanguageOther   Language = "other"
	LanguageUnknown Language = "unknown"
)

// ParseLanguage maps free-form model output onto the known vocabulary.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "german", "de", "deutsch":
		return LanguageGerman
	case "english", "en", "englisch":
		return LanguageEnglish
	case "mixed", "bilingual":
		return LanguageMixed
	case "", "unknown":
		return LanguageUnknown
	default:
		return LanguageOther
	}
}

type LocationType string

const (
	LocationRemote   LocationType = "remote"
	LocationHybrid   LocationType = "hybrid"
	LocationOnsite   LocationType = "onsite"
	LocationFlexible LocationType = "flexible"
)

func ParseLocationType(s string) LocationType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "remote":
		return LocationRemote
	case "hybrid":
		return LocationHybrid
	case "flexible":
		return LocationFlexible
	default:
		return LocationOnsite
	}
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityVeryHigh Priority = "very-high"
)

func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "very-high", "very high", "veryhigh":
		return PriorityVeryHigh
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyHigh      Urgency = "high"
	UrgencyMedium    Urgency = "medium"
	UrgencyLow       Urgency = "low"
)

// Source tells whether an analysis came from the model or from heuristics.
type Source string

const (
	SourceLLM       Source = "llm"
	SourceHeuristic Source = "heuristic"
)

type FilteringDecision struct {
	ShouldInclude   bool    `json:"should_include"`
	RejectionReason *string `json:"rejection_reason"`
	RelevanceScore  int     `json:"relevance_score"`
}

type LanguageAnalysis struct {
	PrimaryLanguage Language `json:"primary_language"`
	Confidence      int      `json:"confidence"`
	IsSpam          bool     `json:"is_spam"`
}

type LocationAnalysis struct {
	ExtractedLocation string       `json:"extracted_location"`
	IsRemote          bool         `json:"is_remote"`
	IsHybrid          bool         `json:"is_hybrid"`
	LocationType      LocationType `json:"location_type"`
}

type JobClassification struct {
	Category           string   `json:"category"`
	Seniority          string   `json:"seniority"`
	ExperienceRequired int      `json:"experience_required"`
	Technologies       []string `json:"technologies"`
}

type CVMatching struct {
	OverallMatchScore   int      `json:"overall_match_score"`
	MatchingSkills      []string `json:"matching_skills"`
	MissingSkills       []string `json:"missing_skills"`
	ApplicationPriority Priority `json:"application_priority"`
}

type JobQuality struct {
	OverallQuality int      `json:"overall_quality"`
	RedFlags       []string `json:"red_flags"`
	GreenFlags     []string `json:"green_flags"`
}

type Composite struct {
	TotalScore         int     `json:"total_score"`
	ApplicationUrgency Urgency `json:"application_urgency"`
	JobAttractiveness  int     `json:"job_attractiveness"`
}

type Labels struct {
	WorkArrangement string `json:"work_arrangement"`
	QualityLabel    string `json:"quality_label"`
}

type Metadata struct {
	ProcessedAt time.Time `json:"processed_at"`
	ModelUsed   string    `json:"model_used"`
	// Error keeps the reason the primary analyzer was bypassed.
	Error string `json:"error,omitempty"`
}

// Analysis is the full decision record for one posting.
type Analysis struct {
	FilteringDecision FilteringDecision `json:"filtering_decision"`
	LanguageAnalysis  LanguageAnalysis  `json:"language_analysis"`
	LocationAnalysis  LocationAnalysis  `json:"location_analysis"`
	JobClassification JobClassification `json:"job_classification"`
	CVMatching        CVMatching        `json:"cv_matching"`
	JobQuality        JobQuality        `json:"job_quality"`

	Source    Source    `json:"source"`
	Composite Composite `json:"composite_scores"`
	Labels    Labels    `json:"labels"`
	Metadata  Metadata  `json:"processing_metadata"`
}

// Clamp forces every score into its range and replaces unset enums and nil
// sets with neutral values.
func (a *Analysis) Clamp() {
	a.FilteringDecision.RelevanceScore = clampInt(a.FilteringDecision.RelevanceScore, 0, 100)
	a.LanguageAnalysis.Confidence = clampInt(a.LanguageAnalysis.Confidence, 0, 100)
	a.JobClassification.ExperienceRequired = clampInt(a.JobClassification.ExperienceRequired, 0, 50)
	a.CVMatching.OverallMatchScore = clampInt(a.CVMatching.OverallMatchScore, 0, 100)
	a.JobQuality.OverallQuality = clampInt(a.JobQuality.OverallQuality, 0, 10)
	a.Composite.TotalScore = clampInt(a.Composite.TotalScore, 0, 100)
	a.Composite.JobAttractiveness = clampInt(a.Composite.JobAttractiveness, 0, 100)

	if a.LanguageAnalysis.PrimaryLanguage == "" {
		a.LanguageAnalysis.PrimaryLanguage = LanguageUnknown
	}
	if a.LocationAnalysis.LocationType == "" {
		a.LocationAnalysis.LocationType = LocationOnsite
	}
	if a.CVMatching.ApplicationPriority == "" {
		a.CVMatching.ApplicationPriority = PriorityLow
	}
	if a.Composite.ApplicationUrgency == "" {
		a.Composite.ApplicationUrgency = UrgencyLow
	}
	if strings.TrimSpace(a.JobClassification.Category) == "" {
		a.JobClassification.Category = "unknown"
	}
	if strings.TrimSpace(a.JobClassification.Seniority) == "" {
		a.JobClassification.Seniority = "unknown"
	}
	a.JobClassification.Technologies = NormalizeSet(a.JobClassification.Technologies)
	a.CVMatching.MatchingSkills = NormalizeSet(a.CVMatching.MatchingSkills)
	a.CVMatching.MissingSkills = NormalizeSet(a.CVMatching.MissingSkills)
	if a.JobQuality.RedFlags == nil {
		a.JobQuality.RedFlags = []string{}
	}
	if a.JobQuality.GreenFlags == nil {
		a.JobQuality.GreenFlags = []string{}
	}
}

// NormalizeSet lowercases, trims, dedupes and sorts; never returns nil.
func NormalizeSet(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat rounds a model-provided number into [lo, hi]; NaN maps to lo.
func ClampFloat(v float64, lo, hi int) int {
	if math.IsNaN(v) {
		return lo
	}
	v = math.Round(v)
	if v <= float64(lo) {
		return lo
	}
	if v >= float64(hi) {
		return hi
	}
	return int(v)
}
