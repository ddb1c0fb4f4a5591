package job

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalysisClamp(t *testing.T) {
	a := Analysis{
		FilteringDecision: FilteringDecision{RelevanceScore: 140},
		LanguageAnalysis:  LanguageAnalysis{Confidence: -3},
		JobClassification: JobClassification{ExperienceRequired: -1, Technologies: []string{" Go", "go", "Docker"}},
		CVMatching:        CVMatching{OverallMatchScore: 101},
		JobQuality:        JobQuality{OverallQuality: 12},
		Composite:         Composite{TotalScore: -5, JobAttractiveness: 120},
	}
	a.Clamp()

	assert.Equal(t, 100, a.FilteringDecision.RelevanceScore)
	assert.Equal(t, 0, a.LanguageAnalysis.Confidence)
	assert.Equal(t, 0, a.JobClassification.ExperienceRequired)
	assert.Equal(t, 100, a.CVMatching.OverallMatchScore)
	assert.Equal(t, 10, a.JobQuality.OverallQuality)
	assert.Equal(t, 0, a.Composite.TotalScore)
	assert.Equal(t, 100, a.Composite.JobAttractiveness)
	assert.Equal(t, []string{"docker", "go"}, a.JobClassification.Technologies)
	assert.Equal(t, LanguageUnknown, a.LanguageAnalysis.PrimaryLanguage)
	assert.Equal(t, PriorityLow, a.CVMatching.ApplicationPriority)
	assert.Equal(t, "unknown", a.JobClassification.Category)
	assert.NotNil(t, a.CVMatching.MissingSkills)
	assert.NotNil(t, a.JobQuality.RedFlags)
}

func TestClampFloat(t *testing.T) {
	assert.Equal(t, 0, ClampFloat(math.NaN(), 0, 10))
	assert.Equal(t, 10, ClampFloat(math.Inf(1), 0, 10))
	assert.Equal(t, 8, ClampFloat(7.6, 0, 10))
	assert.Equal(t, 100, ClampFloat(250, 0, 100))
	assert.Equal(t, 100, ClampFloat(1e20, 0, 100))
	assert.Equal(t, 0, ClampFloat(-1e20, 0, 100))
	assert.Equal(t, 0, ClampFloat(math.Inf(-1), 0, 100))
}

func TestParseEnums(t *testing.T) {
	assert.Equal(t, LanguageGerman, ParseLanguage("Deutsch"))
	assert.Equal(t, LanguageOther, ParseLanguage("french"))
	assert.Equal(t, LanguageUnknown, ParseLanguage(""))
	assert.Equal(t, PriorityVeryHigh, ParsePriority("very_high"))
	assert.Equal(t, PriorityLow, ParsePriority("whatever"))
	assert.Equal(t, LocationRemote, ParseLocationType("Remote"))
	assert.Equal(t, LocationOnsite, ParseLocationType(""))
}
