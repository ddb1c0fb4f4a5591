package application

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("application not found")
	ErrAlreadyTracked = errors.New("job is already tracked")
	ErrNotIgnored     = errors.New("job is not ignored")
	ErrJobNotFound    = errors.New("job not found")
	ErrInvalidStatus  = errors.New("invalid application status")
	ErrTransition     = errors.New("status transition not allowed")
	ErrNoActiveOffer  = errors.New("application has no active offer")
)

// Filter для List; пустой Status означает все отклики.
type Filter struct {
	Status Status
	Limit  int
	Offset int
}

// Repository: порт для откликов и скрытых вакансий.
type Repository interface {
	Create(ctx context.Context, a Application) error
	GetByURL(ctx context.Context, url string) (Application, error)
	// Новые сверху
	List(ctx context.Context, f Filter) ([]Application, error)
	Update(ctx context.Context, a Application) error
	Delete(ctx context.Context, url string) error

	// Повторный Ignore обновляет причину
	Ignore(ctx context.Context, j IgnoredJob) error
	Unignore(ctx context.Context, url string) error
	ListIgnored(ctx context.Context) ([]IgnoredJob, error)
}
