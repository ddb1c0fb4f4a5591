package resume

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxSummaryChars  = 1500
	maxSummaryRoles  = 4
	maxSummarySkills = 40
)

// BuildProfile runs every extractor over the resume text.
func BuildProfile(text string) CandidateProfile {
	return buildProfileAt(text, time.Now())
}

func buildProfileAt(text string, now time.Time) CandidateProfile {
	text = normalizeWhitespace(text)
	if text == "" {
		return Empty()
	}
	history := ExtractJobHistory(text)
	p := CandidateProfile{
		Skills:          ExtractSkills(text),
		ExperienceYears: experienceYearsAt(text, history, now),
		JobHistory:      history,
		Education:       ExtractEducation(text),
	}
	p.SummaryText = summarize(p, text)
	return p
}

// summarize builds the bounded context block injected into analysis prompts.
func summarize(p CandidateProfile, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Experience: %d years\n", p.ExperienceYears)
	if len(p.Skills) > 0 {
		skills := p.Skills
		if len(skills) > maxSummarySkills {
			skills = skills[:maxSummarySkills]
		}
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(skills, ", "))
	}
	if len(p.JobHistory) > 0 {
		b.WriteString("Recent roles:\n")
		for i, h := range p.JobHistory {
			if i == maxSummaryRoles {
				break
			}
			fmt.Fprintf(&b, "- %s at %s (%s to %s)\n", h.Title, h.Company, h.Start, h.End)
		}
	}
	if len(p.Education) > 0 {
		parts := make([]string, 0, len(p.Education))
		for _, e := range p.Education {
			if e.Field != "" {
				parts = append(parts, e.Degree+" in "+e.Field)
			} else {
				parts = append(parts, e.Degree)
			}
		}
		fmt.Fprintf(&b, "Education: %s\n", strings.Join(parts, "; "))
	}
	if len(p.JobHistory) == 0 && len(p.Skills) == 0 {
		// nothing structured came out; hand the model the beginning of the text
		b.WriteString(text)
	}
	return truncateRunes(strings.TrimSpace(b.String()), maxSummaryChars)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
