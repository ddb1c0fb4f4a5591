package grouping

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/llm"
	"github.com/artem13815/jobdash/pkg/logging"
)

type scriptedGenerator struct {
	up    bool
	reply string
	calls atomic.Int32
}

func (g *scriptedGenerator) Generate(context.Context, llm.Request) string {
	g.calls.Add(1)
	return g.reply
}
func (g *scriptedGenerator) Available(context.Context) bool { return g.up }
func (g *scriptedGenerator) Invalidate() {}
func (g *scriptedGenerator) Model() string { return "fake" }

func rec(title, company, location, source string) job.Record {
	return job.Record{
		Title:    title,
		Company:  company,
		Location: location,
		Source:   source,
		URL:      fmt.Sprintf("https://jobs.example/%s/%s/%s", company, title, location),
	}
}

func withSalary(r job.Record, s string) job.Record {
	r.Salary = &s
	return r
}

func TestEngine_SynonymTitleAndSuffixCompanyMerge(t *testing.T) {
	e := NewEngine(RuleComparer{}, logging.Discard())
	groups := e.Group(context.Background(), []job.Record{
		rec("Senior Software Engineer", "Acme GmbH", "Berlin", "stepstone"),
		rec("Senior Software Developer", "ACME", "Munich", "linkedin"),
	})

	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, "acme_gmbh_software_engineer", g.ID)
	assert.Equal(t, "software engineer", g.NormalizedTitle)
	assert.Equal(t, []string{"Berlin", "Munich"}, g.Cities)
	assert.Equal(t, []string{"linkedin", "stepstone"}, g.Platforms)
	assert.Equal(t, 2, g.TotalPositions)
	assert.Nil(t, g.AvgSalary)
}

func TestEngine_Partition(t *testing.T) {
	records := []job.Record{
		rec("System Administrator (m/w/d)", "Netz AG", "Hamburg", "indeed"),
		rec("Frontend Developer", "Acme", "Berlin", "stepstone"),
		rec("Backend Developer", "Acme", "Berlin", "stepstone"),
		rec("Systemadministrator Linux", "Netz", "Bremen", "xing"),
		rec("Junior Developer", "Acme", "Berlin", "indeed"),
		rec("Senior Developer", "Acme", "Berlin", "indeed"),
		rec("Frontend Developer", "Other Corp", "Köln", "indeed"),
		rec("System Administrator", "Netz AG", "Kiel", "linkedin"),
		rec("Frontend Engineer", "Acme GmbH", "Potsdam", "linkedin"),
	}
	groups := NewEngine(nil, logging.Discard()).Group(context.Background(), records)

	seen := map[string]int{}
	total := 0
	for _, g := range groups {
		assert.Equal(t, len(g.MemberJobs), g.TotalPositions)
		for _, m := range g.MemberJobs {
			seen[m.URL]++
			total++
		}
	}
	assert.Equal(t, len(records), total)
	assert.Len(t, seen, len(records))
	for url, n := range seen {
		assert.Equal(t, 1, n, url)
	}

	byID := map[string]Group{}
	for _, g := range groups {
		byID[g.ID] = g
	}
	require.Contains(t, byID, "acme_frontend_developer")
	assert.Equal(t, 2, byID["acme_frontend_developer"].TotalPositions)
	require.Contains(t, byID, "netz_ag_system_administrator")
	assert.Equal(t, []string{"Hamburg", "Kiel"}, byID["netz_ag_system_administrator"].Cities)
	assert.Contains(t, byID, "acme_backend_developer")
	assert.Contains(t, byID, "acme_developer")
	assert.Contains(t, byID, "acme_developer_2", "junior and senior stay apart")
}

func TestEngine_EmptyInput(t *testing.T) {
	groups := NewEngine(nil, logging.Discard()).Group(context.Background(), nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestEngine_AverageSalarySkipsUnparsable(t *testing.T) {
	records := []job.Record{
		withSalary(rec("DevOps Engineer", "Acme", "Berlin", "a"), "50k - 60k €"),
		withSalary(rec("DevOps Engineer", "Acme", "Hamburg", "b"), "€60.000 - €70.000"),
		withSalary(rec("DevOps Engineer", "Acme", "Munich", "c"), "negotiable"),
	}
	groups := NewEngine(nil, logging.Discard()).Group(context.Background(), records)
	require.Len(t, groups, 1)
	require.NotNil(t, groups[0].AvgSalary)
	assert.Equal(t, "€55,000 - €65,000", *groups[0].AvgSalary)
}

func TestNormalizeTitle(t *testing.T) {
	cases := map[string]string{
		"Senior Software Engineer (m/w/d)":   "software engineer",
		"Lead DevOps Engineer (all genders)": "devops engineer",
		"  System   Administrator  m/f/d ":   "system administrator",
		"Principal Cloud Architect - w/m/d":  "cloud architect",
		"Junior":                             "unknown",
		"":                                   "unknown",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTitle(in), in)
	}
}

func TestSimilarTitles(t *testing.T) {
	assert.True(t, similarTitles("Senior Software Engineer", "Senior Software Developer"))
	assert.True(t, similarTitles("Linux System Administrator", "System Administrator Linux (m/w/d)"))
	assert.True(t, similarTitles("Engineering Manager", "Engineering Lead"))
	assert.False(t, similarTitles("Frontend Developer", "Backend Developer"))
	assert.False(t, similarTitles("Junior Developer", "Senior Developer"))
	assert.False(t, similarTitles("Software Engineer", "Data Scientist"))
}

func TestSimilarCompanies(t *testing.T) {
	assert.True(t, similarCompanies("Acme GmbH", "ACME"))
	assert.True(t, similarCompanies("Deutsche Telekom AG", "deutsche telekom"))
	assert.True(t, similarCompanies("Smith & Sons Ltd", "Smith Sons"))
	assert.True(t, similarCompanies("Microsft", "Microsoft"))
	assert.False(t, similarCompanies("Siemens", "Bosch"))
	assert.False(t, similarCompanies("", ""))
}

func TestParseSalaryRange(t *testing.T) {
	cases := []struct {
		in     string
		lo, hi float64
		ok     bool
	}{
		{"55.000 - 65.000 EUR", 55000, 65000, true},
		{"€55k - €65k", 55000, 65000, true},
		{"45-55k € brutto", 45000, 55000, true},
		{"up to 70k", 70000, 70000, true},
		{"ab 50.000 €", 50000, 50000, true},
		{"Starting from €45,000", 45000, 45000, true},
		{"competitive", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, c := range cases {
		lo, hi, ok := ParseSalaryRange(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.InDelta(t, c.lo, lo, 0.01, c.in)
		assert.InDelta(t, c.hi, hi, 0.01, c.in)
	}
}

func TestLLMComparer_Unavailable_UsesRules(t *testing.T) {
	gen := &scriptedGenerator{up: false, reply: "NO"}
	c := NewLLMComparer(gen, logging.Discard())
	ctx := context.Background()

	assert.True(t, c.SameCompany(ctx, "Acme GmbH", "ACME"))
	assert.True(t, c.SameTitle(ctx, "Senior Software Engineer", "Senior Software Developer"))
	assert.Zero(t, gen.calls.Load())
}

func TestLLMComparer_CompanyAsksOnlyWhenRulesDisagree(t *testing.T) {
	gen := &scriptedGenerator{up: true, reply: "YES"}
	c := NewLLMComparer(gen, logging.Discard())
	ctx := context.Background()

	assert.True(t, c.SameCompany(ctx, "Acme GmbH", "ACME"))
	assert.Zero(t, gen.calls.Load())

	assert.True(t, c.SameCompany(ctx, "Alphabet", "Google"))
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestLLMComparer_TitleTrustsModel(t *testing.T) {
	gen := &scriptedGenerator{up: true, reply: "NO"}
	c := NewLLMComparer(gen, logging.Discard())
	assert.False(t, c.SameTitle(context.Background(), "Senior Software Engineer", "Senior Software Developer"))

	gen.reply = ""
	assert.True(t, c.SameTitle(context.Background(), "Senior Software Engineer", "Senior Software Developer"))
}

func TestSummarize(t *testing.T) {
	groups := NewEngine(nil, logging.Discard()).Group(context.Background(), []job.Record{
		rec("DevOps Engineer", "Acme", "Berlin", "a"),
		rec("DevOps Engineer", "Acme", "Hamburg", "b"),
		rec("DevOps Engineer", "Acme", "Hamburg", "c"),
		rec("Data Analyst", "Beta", "Berlin", "a"),
	})
	s := Summarize(groups)

	assert.Equal(t, 2, s.TotalGroups)
	assert.Equal(t, 4, s.TotalJobs)
	assert.InDelta(t, 2.0, s.AvgJobsPerGroup, 1e-9)
	require.NotEmpty(t, s.TopCompanies)
	assert.Equal(t, NameCount{Name: "Acme", Count: 3}, s.TopCompanies[0])
	assert.Equal(t, []NameCount{{"Berlin", 4}, {"Hamburg", 3}}, s.TopCities)

	empty := Summarize(nil)
	assert.Zero(t, empty.TotalGroups)
	assert.Empty(t, empty.TopCities)
}
