package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/artem13815/jobdash/pkg/grouping"
	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/nlp"
	"github.com/artem13815/jobdash/pkg/resume"
)

var (
	germanWords = nlp.WordSet(
		"der", "die", "das", "und", "für", "mit", "wir", "sie", "ihre", "eine", "einen", "bei", "zur", "zum", "oder",
		"entwickler", "ingenieur", "mitarbeiter", "kenntnisse", "erfahrung",
	)
	englishWords = nlp.WordSet(
		"the", "and", "or", "with", "for", "we", "you", "our", "your", "of", "to", "are", "is",
		"developer", "engineer", "experience", "skills",
	)

	remoteKeywords = []string{"remote", "home office", "homeoffice", "work from home", "fully remote", "100% remote"}
	hybridKeywords = []string{"hybrid", "mobiles arbeiten", "mobile work", "teilweise remote", "partly remote"}

	spamKeywords = []string{
		"mlm", "multi-level", "pyramid", "get rich", "passive income", "unlimited earning",
		"unbegrenztes einkommen", "upfront fee", "investment required", "commission only",
		"nur provision", "whatsapp", "telegram",
	}

	reYearsRequired = regexp.MustCompile(`(?i)(\d{1,2})\s*\+?\s*(?:years?|yrs|jahre?n?)`)
)

// HeuristicAnalyzer is the offline, lower-fidelity analyzer. It never fails.
type HeuristicAnalyzer struct {
	cats Categories
	now  func() time.Time
}

func NewHeuristicAnalyzer(cats Categories) *HeuristicAnalyzer {
	return &HeuristicAnalyzer{cats: cats, now: func() time.Time { return time.Now().UTC() }}
}

func (h *HeuristicAnalyzer) Analyze(_ context.Context, rec job.Record, cv resume.CandidateProfile) (job.Analysis, error) {
	text := rec.Title + " " + rec.Description
	var a job.Analysis

	verdict := h.cats.Classify(rec.Title)
	a.FilteringDecision.ShouldInclude = !verdict.Rejected
	switch {
	case verdict.Rejected:
		reason := fmt.Sprintf("title matches rejected category %s (%s)", verdict.Category, verdict.Keyword)
		a.FilteringDecision.RejectionReason = &reason
		a.FilteringDecision.RelevanceScore = 10
	case verdict.Accepted:
		a.FilteringDecision.RelevanceScore = 80
	default:
		a.FilteringDecision.RelevanceScore = 50
	}

	lang, conf := guessLanguage(text)
	a.LanguageAnalysis.PrimaryLanguage = lang
	a.LanguageAnalysis.Confidence = conf
	redFlags := matchedKeywords(text, spamKeywords)
	a.LanguageAnalysis.IsSpam = len(redFlags) > 0

	a.LocationAnalysis = guessLocation(rec)

	a.JobClassification = job.JobClassification{
		Category:           verdict.Category,
		Seniority:          seniorityLabel(rec.Title),
		ExperienceRequired: yearsRequired(rec.Description),
		Technologies:       resume.JobSkills(rec.Title, rec.Description),
	}

	matching, missing := resume.MatchSkills(cv, rec.Title, rec.Description)
	a.CVMatching = job.CVMatching{
		OverallMatchScore:   50,
		MatchingSkills:      matching,
		MissingSkills:       missing,
		ApplicationPriority: job.PriorityMedium,
	}
	if verdict.Rejected {
		a.CVMatching.ApplicationPriority = job.PriorityLow
	}

	a.JobQuality = job.JobQuality{
		OverallQuality: 5,
		RedFlags:       redFlags,
		GreenFlags:     greenFlags(rec, a.LocationAnalysis),
	}

	a.Source = job.SourceHeuristic
	a.Metadata = job.Metadata{ProcessedAt: h.now(), ModelUsed: "heuristic"}
	Finalize(&a)
	return a, nil
}

// guessLanguage compares whole-word stopword hits; a tie is unknown.
func guessLanguage(text string) (job.Language, int) {
	de := nlp.CountWords(text, germanWords)
	en := nlp.CountWords(text, englishWords)
	if de == en {
		return job.LanguageUnknown, 50
	}
	diff, total := de-en, de+en
	lang := job.LanguageGerman
	if diff < 0 {
		lang, diff = job.LanguageEnglish, -diff
	}
	return lang, 50 + 40*diff/total
}

func guessLocation(rec job.Record) job.LocationAnalysis {
	loc := job.LocationAnalysis{
		ExtractedLocation: strings.TrimSpace(rec.Location),
		LocationType:      job.LocationOnsite,
	}
	if loc.ExtractedLocation == "" {
		loc.ExtractedLocation = "unknown"
	}
	text := rec.Title + " " + rec.Location + " " + rec.Description
	switch {
	case nlp.ContainsAny(text, hybridKeywords):
		loc.IsHybrid = true
		loc.LocationType = job.LocationHybrid
	case nlp.ContainsAny(text, remoteKeywords):
		loc.IsRemote = true
		loc.LocationType = job.LocationRemote
	}
	return loc
}

func seniorityLabel(title string) string {
	lvl := grouping.Seniority(title)
	if lvl == "" {
		return "unknown"
	}
	return strings.ToUpper(lvl[:1]) + lvl[1:]
}

func yearsRequired(description string) int {
	m := reYearsRequired.FindStringSubmatch(description)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func matchedKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			out = append(out, k)
		}
	}
	return out
}

func greenFlags(rec job.Record, loc job.LocationAnalysis) []string {
	var out []string
	if strings.TrimSpace(rec.SalaryText()) != "" {
		out = append(out, "salary disclosed")
	}
	if loc.IsRemote || loc.IsHybrid {
		out = append(out, "flexible work arrangement")
	}
	if nlp.ContainsAny(rec.Description, []string{"weiterbildung", "training budget", "certification", "zertifizierung"}) {
		out = append(out, "training offered")
	}
	return out
}

// neutralAnalysis is the last resort when no analyzer produced anything.
func neutralAnalysis(rec job.Record, now time.Time) job.Analysis {
	a := job.Analysis{
		FilteringDecision: job.FilteringDecision{ShouldInclude: true, RelevanceScore: 50},
		LanguageAnalysis:  job.LanguageAnalysis{PrimaryLanguage: job.LanguageUnknown, Confidence: 50},
		LocationAnalysis:  guessLocation(rec),
		CVMatching:        job.CVMatching{OverallMatchScore: 50, ApplicationPriority: job.PriorityMedium},
		JobQuality:        job.JobQuality{OverallQuality: 5},
		Source:            job.SourceHeuristic,
		Metadata:          job.Metadata{ProcessedAt: now, ModelUsed: "heuristic"},
	}
	Finalize(&a)
	return a
}
