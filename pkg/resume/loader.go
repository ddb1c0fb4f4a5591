package resume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var ErrCVNotFound = errors.New("cv file not found in any candidate path")

// ResolvePath returns the first candidate path that exists as a regular file.
func ResolvePath(paths []string) (string, error) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", ErrCVNotFound
}

// LoadCandidateProfile reads the first existing CV among paths. On any
// failure it returns Empty() together with the error.
func LoadCandidateProfile(paths []string) (CandidateProfile, error) {
	path, err := ResolvePath(paths)
	if err != nil {
		return Empty(), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty(), fmt.Errorf("read cv %s: %w", path, err)
	}
	p, err := ProfileFromDocument(filepath.Base(path), data)
	if err != nil {
		return Empty(), fmt.Errorf("parse cv %s: %w", path, err)
	}
	p.Source = path
	return p, nil
}

// ProfileFromDocument extracts text from an uploaded document and builds
// the profile.
func ProfileFromDocument(filename string, data []byte) (CandidateProfile, error) {
	u, err := NewUpload(filename, data)
	if err != nil {
		return Empty(), err
	}
	return u.Profile, nil
}

// Store holds the current profile. Readers get a value copy; the profile is
// swapped only by Reload or Set.
type Store struct {
	mu       sync.RWMutex
	profile  CandidateProfile
	loadedAt time.Time
	paths    []string
	log      *slog.Logger
}

func NewStore(paths []string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{profile: Empty(), paths: paths, log: log.With("component", "cv")}
}

func (s *Store) Current() CandidateProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *Store) Set(p CandidateProfile) {
	s.mu.Lock()
	s.profile = p
	s.loadedAt = time.Now().UTC()
	s.mu.Unlock()
}

// Reload rebuilds the profile from the configured paths. On failure the
// current profile (possibly restored from an upload) stays in place.
func (s *Store) Reload(_ context.Context) (CandidateProfile, error) {
	p, err := LoadCandidateProfile(s.paths)
	if err != nil {
		cur := s.Current()
		s.log.Warn("cv not reloaded, keeping current profile", "err", err, "loaded", cur.Loaded())
		return cur, err
	}
	s.log.Info("cv loaded", "source", p.Source, "skills", len(p.Skills),
		"experienceYears", p.ExperienceYears, "positions", len(p.JobHistory))
	s.Set(p)
	return p, nil
}
