package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository хранит отклики в памяти процесса (тесты и запуск без БД).
type MemoryRepository struct {
	mu      sync.RWMutex
	apps    map[string]Application
	ignored map[string]IgnoredJob
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{apps: make(map[string]Application), ignored: make(map[string]IgnoredJob)}
}

func (m *MemoryRepository) Create(_ context.Context, a Application) error {
	key := strings.TrimSpace(a.JobURL)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[key]; ok {
		return ErrAlreadyTracked
	}
	m.apps[key] = a
	return nil
}

func (m *MemoryRepository) GetByURL(_ context.Context, url string) (Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.apps[strings.TrimSpace(url)]
	if !ok {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (m *MemoryRepository) List(_ context.Context, f Filter) ([]Application, error) {
	m.mu.RLock()
	out := make([]Application, 0, len(m.apps))
	for _, a := range m.apps {
		if f.Status == "" || a.Status == f.Status {
			out = append(out, a)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].JobURL < out[j].JobURL
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []Application{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, a Application) error {
	key := strings.TrimSpace(a.JobURL)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[key]; !ok {
		return ErrNotFound
	}
	m.apps[key] = a
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, url string) error {
	key := strings.TrimSpace(url)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[key]; !ok {
		return ErrNotFound
	}
	delete(m.apps, key)
	return nil
}

func (m *MemoryRepository) Ignore(_ context.Context, j IgnoredJob) error {
	key := strings.TrimSpace(j.JobURL)
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.ignored[key]; ok {
		cur.Reason = j.Reason
		m.ignored[key] = cur
		return nil
	}
	if j.IgnoredAt.IsZero() {
		j.IgnoredAt = time.Now().UTC()
	}
	m.ignored[key] = j
	return nil
}

func (m *MemoryRepository) Unignore(_ context.Context, url string) error {
	key := strings.TrimSpace(url)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ignored[key]; !ok {
		return ErrNotIgnored
	}
	delete(m.ignored, key)
	return nil
}

func (m *MemoryRepository) ListIgnored(_ context.Context) ([]IgnoredJob, error) {
	m.mu.RLock()
	out := make([]IgnoredJob, 0, len(m.ignored))
	for _, j := range m.ignored {
		out = append(out, j)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IgnoredAt.Equal(out[j].IgnoredAt) {
			return out[i].IgnoredAt.After(out[j].IgnoredAt)
		}
		return out[i].JobURL < out[j].JobURL
	})
	return out, nil
}
