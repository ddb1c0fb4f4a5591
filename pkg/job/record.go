package job

import (
	"strings"
	"time"
)

// Record is one scraped posting. URL is its identity.
type Record struct {
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Salary      *string   `json:"salary,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Description string    `json:"description"`
	ScrapedAt   time.Time `json:"scrapedAt"`
}

// Key returns the identity used for dedupe, caching and upsert.
func (r Record) Key() string {
	return strings.TrimSpace(r.URL)
}

func (r Record) SalaryText() string {
	if r.Salary == nil {
		return ""
	}
	return *r.Salary
}

// Analyzed is a Record enriched with its analysis.
type Analyzed struct {
	Record   Record   `json:"job"`
	Analysis Analysis `json:"analysis"`
}

func (a Analyzed) TotalScore() int { return a.Analysis.Composite.TotalScore }
