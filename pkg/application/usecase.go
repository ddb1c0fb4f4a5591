package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/jobdash/pkg/job"
)

// JobLookup находит сохранённую вакансию по URL.
type JobLookup interface {
	GetByURL(ctx context.Context, url string) (job.Stored, error)
}

// UseCase ведёт отклики и список скрытых вакансий.
type UseCase interface {
	Track(ctx context.Context, req TrackRequest) (Application, error)
	Get(ctx context.Context, url string) (Application, error)
	List(ctx context.Context, f Filter) ([]Application, error)
	UpdateStatus(ctx context.Context, url string, to Status, notes *string) (Application, error)
	RecordOffer(ctx context.Context, url string, o Offer) (Application, error)
	DecideOffer(ctx context.Context, url string, accept bool) (Application, error)
	Untrack(ctx context.Context, url string) error

	Ignore(ctx context.Context, url, reason string) (IgnoredJob, error)
	Unignore(ctx context.Context, url string) error
	Ignored(ctx context.Context) ([]IgnoredJob, error)
	IgnoredURLs(ctx context.Context) (map[string]struct{}, error)

	Stats(ctx context.Context) (Stats, error)
}

type TrackRequest struct {
	URL      string `json:"url"`
	Notes    string `json:"notes"`
	Priority int    `json:"priority"`
}

// Stats: сводка по воронке откликов.
type Stats struct {
	Total     int            `json:"total"`
	Active    int            `json:"active"`
	ByStatus  map[Status]int `json:"by_status"`
	OfferRate float64        `json:"offer_rate"`
	Offers    OfferStats     `json:"offers"`
}

type OfferStats struct {
	Active   int `json:"active"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
}

// ErrValidation простая ошибка валидации.
type ErrValidation string

func (e ErrValidation) Error() string { return string(e) }

type service struct {
	repo Repository
	jobs JobLookup
	now  func() time.Time
	log  *slog.Logger
}

var _ UseCase = (*service)(nil)

func NewService(repo Repository, jobs JobLookup, log *slog.Logger) UseCase {
	if log == nil {
		log = slog.Default()
	}
	return &service{
		repo: repo,
		jobs: jobs,
		now:  func() time.Time { return time.Now().UTC() },
		log:  log.With("component", "applications"),
	}
}

// Track начинает отслеживать вакансию в статусе saved; данные берутся из
// сохранённой вакансии.
func (s *service) Track(ctx context.Context, req TrackRequest) (Application, error) {
	url, err := requireURL(req.URL)
	if err != nil {
		return Application{}, err
	}
	st, err := s.lookup(ctx, url)
	if err != nil {
		return Application{}, err
	}
	now := s.now()
	a := Application{
		ID:        uuid.New(),
		JobURL:    url,
		Title:     st.Record.Title,
		Company:   st.Record.Company,
		Location:  st.Record.Location,
		Salary:    st.Record.SalaryText(),
		Source:    st.Record.Source,
		Status:    StatusSaved,
		Priority:  normalizePriority(req.Priority),
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Application{}, err
	}
	s.log.Info("application tracked", "url", url, "company", a.Company)
	return a, nil
}

func (s *service) Get(ctx context.Context, url string) (Application, error) {
	return s.repo.GetByURL(ctx, strings.TrimSpace(url))
}

func (s *service) List(ctx context.Context, f Filter) ([]Application, error) {
	if f.Status != "" {
		st, ok := ParseStatus(string(f.Status))
		if !ok {
			return nil, ErrInvalidStatus
		}
		f.Status = st
	}
	return s.repo.List(ctx, f)
}

// UpdateStatus переводит отклик в новый статус; notes == nil оставляет
// заметки без изменений.
func (s *service) UpdateStatus(ctx context.Context, url string, to Status, notes *string) (Application, error) {
	to, ok := ParseStatus(string(to))
	if !ok {
		return Application{}, ErrInvalidStatus
	}
	a, err := s.repo.GetByURL(ctx, strings.TrimSpace(url))
	if err != nil {
		return Application{}, err
	}
	if !CanTransition(a.Status, to) {
		return Application{}, fmt.Errorf("%w: %s -> %s", ErrTransition, a.Status, to)
	}
	now := s.now()
	if to == StatusApplied && a.AppliedAt == nil {
		a.AppliedAt = &now
	}
	a.Status = to
	if notes != nil {
		a.Notes = strings.TrimSpace(*notes)
	}
	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return Application{}, err
	}
	s.log.Info("application status changed", "url", a.JobURL, "status", a.Status)
	return a, nil
}

// RecordOffer сохраняет оффер и переводит отклик в статус offer.
func (s *service) RecordOffer(ctx context.Context, url string, o Offer) (Application, error) {
	if o.BaseSalary < 0 || o.Bonus < 0 {
		return Application{}, ErrValidation("salary and bonus must not be negative")
	}
	a, err := s.repo.GetByURL(ctx, strings.TrimSpace(url))
	if err != nil {
		return Application{}, err
	}
	if !CanTransition(a.Status, StatusOffer) {
		return Application{}, fmt.Errorf("%w: %s -> %s", ErrTransition, a.Status, StatusOffer)
	}
	now := s.now()
	o.Status = OfferActive
	if o.ReceivedAt.IsZero() {
		o.ReceivedAt = now
	}
	a.Offer = &o
	a.Status = StatusOffer
	a.UpdatedAt = now
	if err := s.repo.Update(ctx, a); err != nil {
		return Application{}, err
	}
	s.log.Info("offer recorded", "url", a.JobURL, "company", a.Company)
	return a, nil
}

// DecideOffer принимает или отклоняет активный оффер. Отказ закрывает
// отклик как withdrawn.
func (s *service) DecideOffer(ctx context.Context, url string, accept bool) (Application, error) {
	a, err := s.repo.GetByURL(ctx, strings.TrimSpace(url))
	if err != nil {
		return Application{}, err
	}
	if a.Offer == nil || a.Offer.Status != OfferActive {
		return Application{}, ErrNoActiveOffer
	}
	offer := *a.Offer
	if accept {
		offer.Status = OfferAccepted
	} else {
		offer.Status = OfferDeclined
		a.Status = StatusWithdrawn
	}
	a.Offer = &offer
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Application{}, err
	}
	return a, nil
}

func (s *service) Untrack(ctx context.Context, url string) error {
	return s.repo.Delete(ctx, strings.TrimSpace(url))
}

// Ignore скрывает вакансию; повторный вызов обновляет причину.
func (s *service) Ignore(ctx context.Context, url, reason string) (IgnoredJob, error) {
	url, err := requireURL(url)
	if err != nil {
		return IgnoredJob{}, err
	}
	if _, err := s.lookup(ctx, url); err != nil {
		return IgnoredJob{}, err
	}
	j := IgnoredJob{JobURL: url, Reason: strings.TrimSpace(reason), IgnoredAt: s.now()}
	if err := s.repo.Ignore(ctx, j); err != nil {
		return IgnoredJob{}, err
	}
	return j, nil
}

func (s *service) Unignore(ctx context.Context, url string) error {
	return s.repo.Unignore(ctx, strings.TrimSpace(url))
}

func (s *service) Ignored(ctx context.Context) ([]IgnoredJob, error) {
	return s.repo.ListIgnored(ctx)
}

func (s *service) IgnoredURLs(ctx context.Context) (map[string]struct{}, error) {
	list, err := s.repo.ListIgnored(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(list))
	for _, j := range list {
		out[j.JobURL] = struct{}{}
	}
	return out, nil
}

func (s *service) Stats(ctx context.Context) (Stats, error) {
	apps, err := s.repo.List(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Total: len(apps), ByStatus: make(map[Status]int, len(allStatuses))}
	for _, x := range allStatuses {
		st.ByStatus[x] = 0
	}
	offered := 0
	for _, a := range apps {
		st.ByStatus[a.Status]++
		if a.Status.Active() {
			st.Active++
		}
		if a.Offer == nil {
			continue
		}
		offered++
		switch a.Offer.Status {
		case OfferActive:
			st.Offers.Active++
		case OfferAccepted:
			st.Offers.Accepted++
		case OfferDeclined:
			st.Offers.Declined++
		}
	}
	if st.Total > 0 {
		st.OfferRate = float64(offered) / float64(st.Total)
	}
	return st, nil
}

func (s *service) lookup(ctx context.Context, url string) (job.Stored, error) {
	st, err := s.jobs.GetByURL(ctx, url)
	if errors.Is(err, job.ErrNotFound) {
		return job.Stored{}, ErrJobNotFound
	}
	return st, err
}

func requireURL(url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", ErrValidation("url is required")
	}
	return url, nil
}
