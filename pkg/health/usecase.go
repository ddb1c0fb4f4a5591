package health

import "context"

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Optional marks a dependency whose outage degrades the service without
// making it unready (the LLM gateway has a heuristic fallback).
type Optional interface {
	Optional() bool
}

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Ready(ctx context.Context) error
	Report(ctx context.Context) Report
}

// Report lists every checker result; an empty string means "ok".
type Report struct {
	Ready    bool              `json:"ready"`
	Degraded bool              `json:"degraded"`
	Checks   map[string]string `json:"checks"`
}

type service struct {
	checkers []Checker
}

// NewService aggregates dependency checkers.
func NewService(checkers ...Checker) ReadinessUseCase {
	return &service{checkers: checkers}
}

func (s *service) Ready(ctx context.Context) error {
	for _, ch := range s.checkers {
		if isOptional(ch) {
			continue
		}
		if err := ch.Check(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Report(ctx context.Context) Report {
	r := Report{Ready: true, Checks: make(map[string]string, len(s.checkers))}
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			r.Checks[ch.Name()] = err.Error()
			if isOptional(ch) {
				r.Degraded = true
			} else {
				r.Ready = false
			}
			continue
		}
		r.Checks[ch.Name()] = "ok"
	}
	return r
}

func isOptional(ch Checker) bool {
	o, ok := ch.(Optional)
	return ok && o.Optional()
}
