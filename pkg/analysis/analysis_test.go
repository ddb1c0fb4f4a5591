package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/llm"
	"github.com/artem13815/jobdash/pkg/logging"
	"github.com/artem13815/jobdash/pkg/resume"
	"github.com/artem13815/jobdash/pkg/workerpool"
)

type fakeGen struct {
	up    bool
	reply func(ctx context.Context, req llm.Request) string
}

func (g *fakeGen) Generate(ctx context.Context, req llm.Request) string {
	if g.reply == nil {
		return ""
	}
	return g.reply(ctx, req)
}
func (g *fakeGen) Available(context.Context) bool { return g.up }
func (g *fakeGen) Invalidate() {}
func (g *fakeGen) Model() string { return "llama3:8b" }

type panicAnalyzer struct{}

func (panicAnalyzer) Analyze(context.Context, job.Record, resume.CandidateProfile) (job.Analysis, error) {
	panic("boom")
}

const llmReply = `Sure, here is the analysis:
{
  "filtering_decision": {"should_include": true, "rejection_reason": null, "relevance_score": 150},
  "language_analysis": {"primary_language": "English", "confidence": "90", "is_spam": false},
  "location_analysis": {"extracted_location": "Berlin, Germany", "is_remote": false, "is_hybrid": "true", "location_type": ""},
  "job_classification": {"category": "System Administration", "seniority": "Senior", "experience_required": 5, "technologies": ["Linux", "linux", "Ansible"]},
  "cv_matching": {"overall_match_score": 85, "matching_skills": ["linux"], "missing_skills": null, "application_priority": "high"},
  "job_quality": {"overall_quality": "8", "red_flags": [], "green_flags": ["salary disclosed"]}
}
Let me know if you need more.`

func sysadmin(url string) job.Record {
	return job.Record{
		Title:       "Senior Linux System Administrator",
		Company:     "Acme GmbH",
		Location:    "Germany",
		URL:         url,
		Source:      "stepstone",
		Description: "We are looking for an engineer with Linux and Ansible experience and the will to automate.",
	}
}

func cvProfile() resume.CandidateProfile {
	return resume.BuildProfile("Skills: Linux, Ansible, Docker, Bash\n\nSystem Administrator | Acme | 01-2020 TO 01-2023 | Berlin\n")
}

func TestLLMAnalyzer_ParsesWrappedJSON(t *testing.T) {
	var seen llm.Request
	gen := &fakeGen{up: true, reply: func(_ context.Context, req llm.Request) string {
		seen = req
		return llmReply
	}}
	a, err := NewLLMAnalyzer(gen, DefaultCategories(), logging.Discard()).Analyze(context.Background(), sysadmin("u1"), cvProfile())
	require.NoError(t, err)

	assert.Equal(t, job.SourceLLM, a.Source)
	assert.Equal(t, "llama3:8b", a.Metadata.ModelUsed)
	assert.True(t, a.FilteringDecision.ShouldInclude)
	assert.Nil(t, a.FilteringDecision.RejectionReason)
	assert.Equal(t, 100, a.FilteringDecision.RelevanceScore)
	assert.Equal(t, job.LanguageEnglish, a.LanguageAnalysis.PrimaryLanguage)
	assert.Equal(t, 90, a.LanguageAnalysis.Confidence)
	assert.True(t, a.LocationAnalysis.IsHybrid)
	assert.Equal(t, job.LocationHybrid, a.LocationAnalysis.LocationType)
	assert.Equal(t, []string{"ansible", "linux"}, a.JobClassification.Technologies)
	assert.Equal(t, []string{}, a.CVMatching.MissingSkills)
	assert.Equal(t, 8, a.JobQuality.OverallQuality)

	// round(85*0.5 + 8*10*0.3 + 10*0.2) = round(68.5)
	assert.Equal(t, 69, a.Composite.TotalScore)
	assert.Equal(t, job.UrgencyHigh, a.Composite.ApplicationUrgency)
	assert.Equal(t, 80, a.Composite.JobAttractiveness)
	assert.Equal(t, "Hybrid", a.Labels.WorkArrangement)
	assert.Equal(t, "Excellent", a.Labels.QualityLabel)

	assert.Equal(t, systemPrompt, seen.SystemPrompt)
	assert.Contains(t, seen.Prompt, "Job Title: Senior Linux System Administrator")
	assert.Contains(t, seen.Prompt, "- Sales")
	assert.Contains(t, seen.Prompt, "- System Administration (any type or seniority)")

	rec := ApplyLocation(sysadmin("u1"), a)
	assert.Equal(t, "Berlin, Germany", rec.Location)
}

func TestLLMAnalyzer_TruncatesDescription(t *testing.T) {
	var prompt string
	gen := &fakeGen{up: true, reply: func(_ context.Context, req llm.Request) string {
		prompt = req.Prompt
		return llmReply
	}}
	rec := sysadmin("u1")
	rec.Description = strings.Repeat("ü", 5000)
	_, err := NewLLMAnalyzer(gen, DefaultCategories(), logging.Discard()).Analyze(context.Background(), rec, resume.Empty())
	require.NoError(t, err)

	assert.Equal(t, maxDescriptionRunes, strings.Count(prompt, "ü"))
	assert.Contains(t, prompt, "CV not loaded")
}

func TestLLMAnalyzer_Errors(t *testing.T) {
	ctx := context.Background()
	cats := DefaultCategories()

	_, err := NewLLMAnalyzer(&fakeGen{up: false}, cats, logging.Discard()).Analyze(ctx, sysadmin("u"), resume.Empty())
	assert.ErrorIs(t, err, ErrLLMUnavailable)

	_, err = NewLLMAnalyzer(&fakeGen{up: true}, cats, logging.Discard()).Analyze(ctx, sysadmin("u"), resume.Empty())
	assert.ErrorIs(t, err, ErrEmptyResponse)

	garbage := &fakeGen{up: true, reply: func(context.Context, llm.Request) string { return "I cannot help with that" }}
	_, err = NewLLMAnalyzer(garbage, cats, logging.Discard()).Analyze(ctx, sysadmin("u"), resume.Empty())
	assert.ErrorIs(t, err, llm.ErrNoJSON)
}

func TestFallbackAnalyzer_DegradesWhenModelUnavailable(t *testing.T) {
	cats := DefaultCategories()
	f := NewFallbackAnalyzer(NewLLMAnalyzer(&fakeGen{up: false}, cats, logging.Discard()), NewHeuristicAnalyzer(cats), logging.Discard())

	records := []job.Record{
		sysadmin("u1"),
		{Title: "Sales Representative", URL: "u2"},
		{Title: "", Description: "", URL: "u3"},
		{Title: "Systemadministrator (m/w/d)", Description: "Wir suchen einen Mitarbeiter für die IT und das Netzwerk.", URL: "u4"},
	}
	allowed := []job.Language{job.LanguageGerman, job.LanguageEnglish, job.LanguageUnknown}
	for _, r := range records {
		a, err := f.Analyze(context.Background(), r, resume.Empty())
		require.NoError(t, err)
		assert.Equal(t, job.SourceHeuristic, a.Source, r.URL)
		assert.Equal(t, "heuristic", a.Metadata.ModelUsed)
		assert.Empty(t, a.Metadata.Error)
		assert.Contains(t, allowed, a.LanguageAnalysis.PrimaryLanguage)
		assert.Equal(t, 50, a.CVMatching.OverallMatchScore)
		assert.Equal(t, 5, a.JobQuality.OverallQuality)
		assert.NotEmpty(t, a.LocationAnalysis.LocationType)
		assert.NotEmpty(t, a.JobClassification.Category)
		assert.NotNil(t, a.JobClassification.Technologies)
		assert.NotNil(t, a.JobQuality.RedFlags)
		assert.NotEmpty(t, a.Composite.ApplicationUrgency)
		assert.NotEmpty(t, a.Labels.QualityLabel)
	}
}

func TestBatchAnalyzer_ModelDownIsFallbackNotError(t *testing.T) {
	b := NewBatchAnalyzer(&fakeGen{up: false}, DefaultCategories(), workerpool.New(2, time.Second), nil, logging.Discard())
	out := b.AnalyzeBatch(context.Background(), []job.Record{sysadmin("u1"), sysadmin("u2"), sysadmin("u3")}, resume.Empty())
	require.Len(t, out, 3)

	st := b.Stats(context.Background())
	assert.Equal(t, 3, st.JobsProcessed)
	assert.Equal(t, 3, st.Fallbacks)
	assert.Equal(t, 0, st.Errors)
	assert.False(t, st.Available)
}

func TestFallbackAnalyzer_RecoversPanic(t *testing.T) {
	f := NewFallbackAnalyzer(panicAnalyzer{}, NewHeuristicAnalyzer(DefaultCategories()), logging.Discard())
	a, err := f.Analyze(context.Background(), sysadmin("u1"), resume.Empty())
	require.NoError(t, err)
	assert.Equal(t, job.SourceHeuristic, a.Source)
	assert.Contains(t, a.Metadata.Error, "panicked")
}

func TestFallbackAnalyzer_NoAnalyzersStillAnswers(t *testing.T) {
	f := NewFallbackAnalyzer(nil, nil, logging.Discard())
	a, err := f.Analyze(context.Background(), sysadmin("u1"), resume.Empty())
	require.NoError(t, err)
	assert.Equal(t, 50, a.CVMatching.OverallMatchScore)
	assert.Equal(t, "Germany", a.LocationAnalysis.ExtractedLocation)
}

func TestGuessLanguage_WholeWords(t *testing.T) {
	en := "We are a leading provider of cloud solutions. Under the guidance of our team leader you will " +
		"work with Linux servers in order to scale our platform for every service provider."
	lang, conf := guessLanguage(en)
	assert.Equal(t, job.LanguageEnglish, lang)
	assert.Greater(t, conf, 50)

	de := "Wir suchen Verstärkung für unser Team. Erfahrung mit Linux und Kenntnisse in Ansible sind ein Plus."
	lang, conf = guessLanguage(de)
	assert.Equal(t, job.LanguageGerman, lang)
	assert.Greater(t, conf, 50)

	lang, conf = guessLanguage("Kubernetes Linux")
	assert.Equal(t, job.LanguageUnknown, lang)
	assert.Equal(t, 50, conf)
}

func TestHeuristic_GermanDescription(t *testing.T) {
	rec := job.Record{
		Title:       "Systemadministrator Linux",
		Location:    "Hamburg",
		Description: "Die Firma sucht einen Mitarbeiter für die Betreuung der Server und das Netzwerk. Der Einsatz ist hybrid und die Arbeit ist spannend.",
		URL:         "u1",
	}
	a, err := NewHeuristicAnalyzer(DefaultCategories()).Analyze(context.Background(), rec, resume.Empty())
	require.NoError(t, err)

	assert.Equal(t, job.LanguageGerman, a.LanguageAnalysis.PrimaryLanguage)
	assert.Greater(t, a.LanguageAnalysis.Confidence, 50)
	assert.True(t, a.FilteringDecision.ShouldInclude)
	assert.Equal(t, "System Administration", a.JobClassification.Category)
	assert.Equal(t, job.LocationHybrid, a.LocationAnalysis.LocationType)
	assert.Equal(t, "Hamburg", a.LocationAnalysis.ExtractedLocation)
	assert.Equal(t, job.PriorityMedium, a.CVMatching.ApplicationPriority)
}

func TestHeuristic_SalesRepresentativeIsRejected(t *testing.T) {
	rec := job.Record{Title: "Sales Representative", Description: "Sell our products to the customers and grow the region.", URL: "u1"}
	a, err := NewHeuristicAnalyzer(DefaultCategories()).Analyze(context.Background(), rec, resume.Empty())
	require.NoError(t, err)

	assert.False(t, a.FilteringDecision.ShouldInclude)
	require.NotNil(t, a.FilteringDecision.RejectionReason)
	assert.Contains(t, *a.FilteringDecision.RejectionReason, "Sales")
	assert.Equal(t, job.PriorityLow, a.CVMatching.ApplicationPriority)
	assert.NotContains(t, []job.Urgency{job.UrgencyImmediate, job.UrgencyHigh}, a.Composite.ApplicationUrgency)
}

func TestHeuristic_SpamAndCVMatch(t *testing.T) {
	rec := job.Record{
		Title:       "DevOps Engineer",
		Description: "Passive income guaranteed! Contact us on WhatsApp. You need Kubernetes and Linux with 3+ years experience.",
		URL:         "u1",
	}
	a, err := NewHeuristicAnalyzer(DefaultCategories()).Analyze(context.Background(), rec, cvProfile())
	require.NoError(t, err)

	assert.True(t, a.LanguageAnalysis.IsSpam)
	assert.Contains(t, a.JobQuality.RedFlags, "passive income")
	assert.Contains(t, a.CVMatching.MatchingSkills, "linux")
	assert.Contains(t, a.CVMatching.MissingSkills, "kubernetes")
	assert.Equal(t, 3, a.JobClassification.ExperienceRequired)
}

func TestComputeComposite_UrgencyTiers(t *testing.T) {
	mk := func(cv, q int, lang job.Language, p job.Priority) job.Analysis {
		var a job.Analysis
		a.CVMatching.OverallMatchScore = cv
		a.JobQuality.OverallQuality = q
		a.LanguageAnalysis.PrimaryLanguage = lang
		a.CVMatching.ApplicationPriority = p
		return a
	}
	cases := []struct {
		a     job.Analysis
		total int
		urg   job.Urgency
	}{
		// 50 + 30 + 2
		{mk(100, 10, job.LanguageGerman, job.PriorityVeryHigh), 82, job.UrgencyImmediate},
		{mk(100, 10, job.LanguageGerman, job.PriorityMedium), 82, job.UrgencyHigh},
		{mk(100, 10, job.LanguageOther, job.PriorityLow), 80, job.UrgencyMedium},
		{mk(60, 6, job.LanguageEnglish, job.PriorityHigh), 50, job.UrgencyMedium},
		{mk(30, 3, job.LanguageUnknown, job.PriorityHigh), 24, job.UrgencyLow},
		{mk(0, 0, job.LanguageUnknown, job.PriorityLow), 0, job.UrgencyLow},
	}
	for i, c := range cases {
		got := ComputeComposite(c.a)
		assert.Equal(t, c.total, got.TotalScore, i)
		assert.Equal(t, c.urg, got.ApplicationUrgency, i)
	}
}

func TestFinalize_ScoreBounds(t *testing.T) {
	for _, v := range []int{-500, -1, 0, 5, 11, 101, 10000} {
		var a job.Analysis
		a.FilteringDecision.RelevanceScore = v
		a.LanguageAnalysis.Confidence = v
		a.CVMatching.OverallMatchScore = v
		a.JobQuality.OverallQuality = v
		a.JobClassification.ExperienceRequired = v
		Finalize(&a)

		assert.True(t, between(a.FilteringDecision.RelevanceScore, 0, 100))
		assert.True(t, between(a.LanguageAnalysis.Confidence, 0, 100))
		assert.True(t, between(a.CVMatching.OverallMatchScore, 0, 100))
		assert.True(t, between(a.JobQuality.OverallQuality, 0, 10))
		assert.True(t, between(a.Composite.TotalScore, 0, 100))
		assert.True(t, between(a.Composite.JobAttractiveness, 0, 100))
		assert.GreaterOrEqual(t, a.JobClassification.ExperienceRequired, 0)
	}
}

func between(v, lo, hi int) bool { return v >= lo && v <= hi }

type mapCache struct {
	mu   sync.Mutex
	data map[string]job.Analysis
}

func (c *mapCache) Get(_ context.Context, url string) (job.Analysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.data[url]
	return a, ok
}

func (c *mapCache) Set(_ context.Context, url string, a job.Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[url] = a
}

func TestBatchAnalyzer_IsolatesFailuresAndSorts(t *testing.T) {
	gen := &fakeGen{up: true, reply: func(ctx context.Context, req llm.Request) string {
		switch {
		case strings.Contains(req.Prompt, "Job Title: Slow"):
			<-ctx.Done()
			return ""
		case strings.Contains(req.Prompt, "Job Title: Broken"):
			return "not json"
		default:
			return llmReply
		}
	}}
	cache := &mapCache{data: map[string]job.Analysis{}}
	b := NewBatchAnalyzer(gen, DefaultCategories(), workerpool.New(3, 100*time.Millisecond), cache, logging.Discard())

	records := []job.Record{
		{Title: "Slow Admin", URL: "slow"},
		sysadmin("good-1"),
		{Title: "Broken Admin", URL: "broken"},
		sysadmin("good-2"),
	}
	out := b.AnalyzeBatch(context.Background(), records, cvProfile())
	require.Len(t, out, 4)

	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].TotalScore(), out[i].TotalScore())
	}
	byURL := map[string]job.Analyzed{}
	for _, a := range out {
		byURL[a.Record.URL] = a
	}
	assert.Equal(t, job.SourceLLM, byURL["good-1"].Analysis.Source)
	assert.Equal(t, "Berlin, Germany", byURL["good-1"].Record.Location)
	assert.Equal(t, job.SourceHeuristic, byURL["slow"].Analysis.Source)
	assert.NotEmpty(t, byURL["slow"].Analysis.Metadata.Error)
	assert.Equal(t, job.SourceHeuristic, byURL["broken"].Analysis.Source)

	assert.Len(t, cache.data, 2, "only model results are cached")

	st := b.Stats(context.Background())
	assert.Equal(t, 4, st.JobsProcessed)
	assert.Equal(t, 2, st.Fallbacks)
	assert.Equal(t, 2, st.Errors)
	assert.Equal(t, 2, st.HighQualityJobs)
	assert.Equal(t, 2, st.LanguageBreakdown["english"])
	assert.Equal(t, "llama3:8b", st.ModelName)

	again := b.AnalyzeBatch(context.Background(), []job.Record{sysadmin("good-1")}, cvProfile())
	require.Len(t, again, 1)
	assert.Equal(t, 1, b.Stats(context.Background()).CacheHits)
}

func TestBatchAnalyzer_Empty(t *testing.T) {
	b := NewBatchAnalyzer(nil, DefaultCategories(), workerpool.New(2, 0), nil, logging.Discard())
	assert.Empty(t, b.AnalyzeBatch(context.Background(), nil, resume.Empty()))
}

func TestLoadCategories(t *testing.T) {
	def, err := LoadCategories("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCategories(), def)

	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
domain: Data Engineering
accept:
  - name: Data Engineering
    keywords: [data engineer, etl]
`), 0o600))

	c, err := LoadCategories(path)
	require.NoError(t, err)
	assert.Equal(t, "Data Engineering", c.Domain)
	require.Len(t, c.Accept, 1)
	assert.Equal(t, DefaultCategories().Reject, c.Reject)

	v := c.Classify("Senior Data Engineer (m/w/d)")
	assert.True(t, v.Accepted)
	assert.Equal(t, "Data Engineering", v.Category)
	assert.True(t, c.Classify("Sales Manager").Rejected)

	_, err = LoadCategories(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
