package job

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// MemoryRepository keeps jobs in process memory. It backs tests and runs
// without DATABASE_URL.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]Stored
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]Stored)}
}

func (m *MemoryRepository) UpsertJob(_ context.Context, r Record) (bool, error) {
	key := r.Key()
	if key == "" {
		return false, errors.New("job url is required")
	}
	r.URL = key
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[key]
	if !ok {
		m.order = append(m.order, key)
		m.rows[key] = Stored{Record: r}
		return true, nil
	}
	if sameRecord(cur.Record, r) {
		return false, nil
	}
	cur.Record = r
	m.rows[key] = cur
	return true, nil
}

func (m *MemoryRepository) SaveAnalysis(_ context.Context, url string, a Analysis) error {
	key := strings.TrimSpace(url)
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[key]
	if !ok {
		return ErrNotFound
	}
	cp := a
	cur.Analysis = &cp
	m.rows[key] = cur
	return nil
}

func (m *MemoryRepository) GetByURL(_ context.Context, url string) (Stored, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.rows[strings.TrimSpace(url)]
	if !ok {
		return Stored{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryRepository) GetJobs(_ context.Context, f Filter) ([]Stored, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Stored
	skipped := 0
	for _, key := range m.order {
		s := m.rows[key]
		if !f.matches(s) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, s)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryRepository) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows), nil
}

func (f Filter) matches(s Stored) bool {
	if f.Source != "" && !strings.EqualFold(s.Record.Source, f.Source) {
		return false
	}
	if f.Company != "" && !strings.Contains(strings.ToLower(s.Record.Company), strings.ToLower(f.Company)) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(s.Record.Title), q) &&
			!strings.Contains(strings.ToLower(s.Record.Description), q) {
			return false
		}
	}
	if f.OnlyAnalyzed && s.Analysis == nil {
		return false
	}
	if f.OnlyPending && s.Analysis != nil {
		return false
	}
	return true
}

func sameRecord(a, b Record) bool {
	return a.Title == b.Title &&
		a.Company == b.Company &&
		a.Location == b.Location &&
		a.SalaryText() == b.SalaryText() &&
		(a.Salary == nil) == (b.Salary == nil) &&
		a.Source == b.Source &&
		a.Description == b.Description &&
		a.ScrapedAt.Equal(b.ScrapedAt)
}
