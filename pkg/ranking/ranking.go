package ranking

import (
	"sort"
	"strings"

	"github.com/artem13815/jobdash/pkg/job"
)

// Criteria filters analyzed jobs. Empty optional lists disable their check.
// RequiredTechnologies keeps a job that mentions any one of them.
type Criteria struct {
	MinCVMatch  int            `json:"min_cv_match"`
	MinQuality  int            `json:"min_quality"`
	Languages   []job.Language `json:"languages"`
	ExcludeSpam bool           `json:"exclude_spam"`
	MaxResults  int            `json:"max_results"`

	Categories           []string `json:"categories,omitempty"`
	Seniority            []string `json:"seniority,omitempty"`
	RequiredTechnologies []string `json:"required_technologies,omitempty"`
	WorkArrangement      []string `json:"work_arrangement,omitempty"`
	ExcludeRejected      bool     `json:"exclude_rejected,omitempty"`
	ExcludeIgnored       bool     `json:"exclude_ignored,omitempty"`

	// Ignored holds the hidden job URLs; only consulted with ExcludeIgnored.
	Ignored map[string]struct{} `json:"-"`
}

func DefaultCriteria() Criteria {
	return Criteria{
		MinCVMatch:  30,
		MinQuality:  5,
		Languages:   []job.Language{job.LanguageGerman, job.LanguageEnglish},
		ExcludeSpam: true,
		MaxResults:  50,
	}
}

// FilterAndRank keeps the jobs passing every criterion, orders them by total
// score (stable, best first) and only then cuts to MaxResults.
func FilterAndRank(jobs []job.Analyzed, c Criteria) []job.Analyzed {
	out := make([]job.Analyzed, 0, len(jobs))
	for _, j := range jobs {
		if c.ExcludeIgnored {
			if _, hidden := c.Ignored[j.Record.Key()]; hidden {
				continue
			}
		}
		if c.accepts(j.Analysis) {
			out = append(out, j)
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].TotalScore() > out[k].TotalScore() })
	if c.MaxResults > 0 && len(out) > c.MaxResults {
		out = out[:c.MaxResults]
	}
	return out
}

func (c Criteria) accepts(a job.Analysis) bool {
	if len(c.Languages) > 0 && !containsLanguage(c.Languages, a.LanguageAnalysis.PrimaryLanguage) {
		return false
	}
	if a.CVMatching.OverallMatchScore < c.MinCVMatch {
		return false
	}
	if a.JobQuality.OverallQuality < c.MinQuality {
		return false
	}
	if c.ExcludeSpam && a.LanguageAnalysis.IsSpam {
		return false
	}
	if c.ExcludeRejected && !a.FilteringDecision.ShouldInclude {
		return false
	}
	if len(c.Categories) > 0 && !containsFold(c.Categories, a.JobClassification.Category) {
		return false
	}
	if len(c.Seniority) > 0 && !containsFold(c.Seniority, a.JobClassification.Seniority) {
		return false
	}
	if len(c.WorkArrangement) > 0 && !containsFold(c.WorkArrangement, a.Labels.WorkArrangement) &&
		!containsFold(c.WorkArrangement, string(a.LocationAnalysis.LocationType)) {
		return false
	}
	if len(c.RequiredTechnologies) > 0 && !anyFold(c.RequiredTechnologies, a.JobClassification.Technologies) {
		return false
	}
	return true
}

// anyFold reports whether the two lists share at least one value.
func anyFold(want, have []string) bool {
	for _, w := range want {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}

func containsLanguage(list []job.Language, l job.Language) bool {
	for _, x := range list {
		if job.ParseLanguage(string(x)) == l {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, x := range list {
		if strings.EqualFold(strings.TrimSpace(x), v) {
			return true
		}
	}
	return false
}
