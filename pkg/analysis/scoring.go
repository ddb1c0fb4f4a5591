package analysis

import (
	"math"

	"github.com/artem13815/jobdash/pkg/job"
)

// Finalize clamps the analysis and derives composite scores and labels.
// Both analyzers end with it, so their outputs are shaped identically.
func Finalize(a *job.Analysis) {
	a.Clamp()
	a.Composite = ComputeComposite(*a)
	a.Labels = DeriveLabels(*a)
}

// ComputeComposite:
//
//	total = round(cv*0.5 + quality*10*0.3 + langBonus*0.2), 0..100
//	langBonus = 10 for english or german postings
func ComputeComposite(a job.Analysis) job.Composite {
	cv := float64(a.CVMatching.OverallMatchScore)
	quality := float64(a.JobQuality.OverallQuality)
	bonus := 0.0
	switch a.LanguageAnalysis.PrimaryLanguage {
	case job.LanguageEnglish, job.LanguageGerman:
		bonus = 10
	}
	total := job.ClampFloat(math.Round(cv*0.5+quality*10*0.3+bonus*0.2), 0, 100)

	return job.Composite{
		TotalScore:         total,
		ApplicationUrgency: urgency(total, a.CVMatching.ApplicationPriority),
		JobAttractiveness:  job.ClampFloat(quality*10, 0, 100),
	}
}

func urgency(total int, p job.Priority) job.Urgency {
	switch {
	case total >= 80 && (p == job.PriorityHigh || p == job.PriorityVeryHigh):
		return job.UrgencyImmediate
	case total >= 60 && (p == job.PriorityMedium || p == job.PriorityHigh):
		return job.UrgencyHigh
	case total >= 40:
		return job.UrgencyMedium
	default:
		return job.UrgencyLow
	}
}

func DeriveLabels(a job.Analysis) job.Labels {
	return job.Labels{
		WorkArrangement: workArrangement(a.LocationAnalysis),
		QualityLabel:    qualityLabel(a.JobQuality.OverallQuality),
	}
}

func workArrangement(l job.LocationAnalysis) string {
	switch {
	case l.IsRemote:
		return "Remote"
	case l.IsHybrid:
		return "Hybrid"
	case l.LocationType == job.LocationFlexible:
		return "Flexible"
	default:
		return "On-site"
	}
}

func qualityLabel(q int) string {
	switch {
	case q >= 8:
		return "Excellent"
	case q >= 6:
		return "Good"
	case q >= 4:
		return "Average"
	default:
		return "Poor"
	}
}
