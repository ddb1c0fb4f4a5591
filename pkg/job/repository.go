package job

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("job not found")

// Filter narrows GetJobs. Zero values disable a criterion.
type Filter struct {
	Source       string
	Company      string
	Search       string
	OnlyAnalyzed bool
	// Only records that have no stored analysis yet.
	OnlyPending bool
	Limit       int
	Offset      int
}

// Stored is what the repository hands back: the record plus its analysis,
// if one was saved.
type Stored struct {
	Record   Record    `json:"job"`
	Analysis *Analysis `json:"analysis,omitempty"`
}

// Repository is the persistence port. UpsertJob is keyed by URL and is
// idempotent: the last write wins.
type Repository interface {
	UpsertJob(ctx context.Context, r Record) (bool, error)
	SaveAnalysis(ctx context.Context, url string, a Analysis) error
	GetByURL(ctx context.Context, url string) (Stored, error)
	GetJobs(ctx context.Context, f Filter) ([]Stored, error)
	Count(ctx context.Context) (int, error)
}
