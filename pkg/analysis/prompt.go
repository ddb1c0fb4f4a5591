package analysis

import (
	"fmt"
	"strings"

	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/resume"
)

const maxDescriptionRunes = 3000

const systemPrompt = "You are an expert HR analyst and job market specialist. Analyze job postings comprehensively for filtering, labeling, classification and CV matching. Always respond with a single valid JSON object and nothing else."

const responseSchema = `{
  "filtering_decision": {
    "should_include": true,
    "rejection_reason": "reason if rejected or null",
    "quality_assessment": "high/medium/low/spam",
    "relevance_score": 0-100
  },
  "language_analysis": {
    "primary_language": "german/english/mixed/other",
    "confidence": 0-100,
    "is_spam": false
  },
  "location_analysis": {
    "extracted_location": "actual location from the content",
    "is_remote": false,
    "is_hybrid": false,
    "location_type": "remote/hybrid/onsite/flexible"
  },
  "job_classification": {
    "category": "category name",
    "seniority": "Intern/Junior/Mid/Senior/Lead/Principal/Director",
    "experience_required": 0-20,
    "technologies": ["tech1", "tech2"]
  },
  "cv_matching": {
    "overall_match_score": 0-100,
    "matching_skills": ["skill1"],
    "missing_skills": ["skill2"],
    "application_priority": "low/medium/high/very-high"
  },
  "job_quality": {
    "overall_quality": 0-10,
    "red_flags": ["flag1"],
    "green_flags": ["flag1"]
  }
}`

// buildPrompt renders the single analysis request for one posting.
func buildPrompt(rec job.Record, cv resume.CandidateProfile, cats Categories) string {
	var b strings.Builder

	b.WriteString("Analyze this job posting and answer with ONE JSON object exactly in the schema below.\n\n")

	fmt.Fprintf(&b, "JOB TITLE RELEVANCE CHECK:\nThe candidate is searching for %s roles. Set filtering_decision.should_include=false for jobs that are not directly related to:\n", cats.Domain)
	for _, n := range names(cats.Accept) {
		fmt.Fprintf(&b, "- %s (any type or seniority)\n", n)
	}
	b.WriteString("\nIMMEDIATELY REJECT jobs with titles like:\n")
	for _, n := range names(cats.Reject) {
		fmt.Fprintf(&b, "- %s\n", n)
	}

	b.WriteString("\nCANDIDATE:\n")
	if cv.Loaded() {
		b.WriteString(cv.SummaryText)
		b.WriteString("\n")
	} else {
		b.WriteString("CV not loaded. Use overall_match_score 50 and leave the skill lists empty.\n")
	}

	b.WriteString("\nRESPONSE SCHEMA:\n")
	b.WriteString(responseSchema)
	b.WriteString("\n\nJOB POSTING:\n")
	fmt.Fprintf(&b, "Job Title: %s\n", rec.Title)
	fmt.Fprintf(&b, "Company: %s\n", rec.Company)
	fmt.Fprintf(&b, "Source Platform: %s\n", rec.Source)
	fmt.Fprintf(&b, "Original Location: %s\n", rec.Location)
	salary := rec.SalaryText()
	if strings.TrimSpace(salary) == "" {
		salary = "Not specified"
	}
	fmt.Fprintf(&b, "Salary: %s\n", salary)
	fmt.Fprintf(&b, "Description: %s\n", truncateRunes(rec.Description, maxDescriptionRunes))
	return b.String()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
