package resume

// CandidateProfile is the structured view of the candidate's CV. It is built
// once and only read afterwards, including concurrently.
type CandidateProfile struct {
	Skills          []string        `json:"skills"`
	ExperienceYears int             `json:"experienceYears"`
	JobHistory      []HistoryEntry  `json:"jobHistory"`
	Education       []EducationItem `json:"education"`
	SummaryText     string          `json:"summaryText"`
	Source          string          `json:"source,omitempty"`
}

// HistoryEntry is one position. Start and End are "YYYY-MM" when they could
// be normalized, End is "present" for open-ended positions, and the raw text
// otherwise.
type HistoryEntry struct {
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Location string   `json:"location,omitempty"`
	Tasks    []string `json:"tasks"`
}

type EducationItem struct {
	Degree string `json:"degree"`
	Field  string `json:"field"`
}

// Empty is the "CV not loaded" profile used in degraded mode.
func Empty() CandidateProfile {
	return CandidateProfile{
		Skills:     []string{},
		JobHistory: []HistoryEntry{},
		Education:  []EducationItem{},
	}
}

func (p CandidateProfile) Loaded() bool {
	return p.SummaryText != "" || len(p.Skills) > 0 || len(p.JobHistory) > 0
}
