package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/jobdash/pkg/application"
)

// ApplicationRepository хранит отклики и скрытые вакансии.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

var _ application.Repository = (*ApplicationRepository)(nil)

func NewApplicationRepository(pool *pgxpool.Pool) (*ApplicationRepository, error) {
	r := &ApplicationRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ApplicationRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS job_applications (
	id UUID PRIMARY KEY,
	job_url TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	salary TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'saved',
	priority INT NOT NULL DEFAULT 3,
	notes TEXT NOT NULL DEFAULT '',
	offer JSONB,
	applied_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_status ON job_applications(status);
CREATE TABLE IF NOT EXISTS ignored_jobs (
	job_url TEXT PRIMARY KEY,
	reason TEXT NOT NULL DEFAULT '',
	ignored_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

func (r *ApplicationRepository) Create(ctx context.Context, a application.Application) error {
	offer, err := encodeOffer(a.Offer)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO job_applications (id, job_url, title, company, location, salary, source, status, priority, notes, offer, applied_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`, a.ID, strings.TrimSpace(a.JobURL), a.Title, a.Company, a.Location, a.Salary, a.Source,
		string(a.Status), a.Priority, a.Notes, offer, a.AppliedAt, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return application.ErrAlreadyTracked
		}
		return err
	}
	return nil
}

const applicationColumns = `id, job_url, title, company, location, salary, source, status, priority, notes, offer, applied_at, created_at, updated_at`

func (r *ApplicationRepository) GetByURL(ctx context.Context, url string) (application.Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM job_applications WHERE job_url = $1`, strings.TrimSpace(url))
	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}
	return a, nil
}

func (r *ApplicationRepository) List(ctx context.Context, f application.Filter) ([]application.Application, error) {
	var args []any
	q := `SELECT ` + applicationColumns + ` FROM job_applications`
	if f.Status != "" {
		args = append(args, string(f.Status))
		q += fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	q += " ORDER BY created_at DESC, job_url"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []application.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (r *ApplicationRepository) Update(ctx context.Context, a application.Application) error {
	offer, err := encodeOffer(a.Offer)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE job_applications
SET status = $2, priority = $3, notes = $4, offer = $5, applied_at = $6, updated_at = $7
WHERE job_url = $1
`, strings.TrimSpace(a.JobURL), string(a.Status), a.Priority, a.Notes, offer, a.AppliedAt, a.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, url string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM job_applications WHERE job_url = $1`, strings.TrimSpace(url))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) Ignore(ctx context.Context, j application.IgnoredJob) error {
	if j.IgnoredAt.IsZero() {
		j.IgnoredAt = time.Now().UTC()
	}
	// повторное скрытие меняет только причину
	_, err := r.pool.Exec(ctx, `
INSERT INTO ignored_jobs (job_url, reason, ignored_at) VALUES ($1, $2, $3)
ON CONFLICT (job_url) DO UPDATE SET reason = EXCLUDED.reason
`, strings.TrimSpace(j.JobURL), j.Reason, j.IgnoredAt)
	return err
}

func (r *ApplicationRepository) Unignore(ctx context.Context, url string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ignored_jobs WHERE job_url = $1`, strings.TrimSpace(url))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotIgnored
	}
	return nil
}

func (r *ApplicationRepository) ListIgnored(ctx context.Context) ([]application.IgnoredJob, error) {
	rows, err := r.pool.Query(ctx, `SELECT job_url, reason, ignored_at FROM ignored_jobs ORDER BY ignored_at DESC, job_url`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []application.IgnoredJob{}
	for rows.Next() {
		var j application.IgnoredJob
		if err := rows.Scan(&j.JobURL, &j.Reason, &j.IgnoredAt); err != nil {
			return nil, err
		}
		j.IgnoredAt = j.IgnoredAt.UTC()
		res = append(res, j)
	}
	return res, rows.Err()
}

func scanApplication(row pgx.Row) (application.Application, error) {
	var (
		a      application.Application
		status string
		raw    []byte
	)
	if err := row.Scan(&a.ID, &a.JobURL, &a.Title, &a.Company, &a.Location, &a.Salary, &a.Source,
		&status, &a.Priority, &a.Notes, &raw, &a.AppliedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return application.Application{}, err
	}
	a.Status = application.Status(status)
	if len(raw) > 0 {
		var o application.Offer
		if err := json.Unmarshal(raw, &o); err != nil {
			return application.Application{}, fmt.Errorf("decode offer for %s: %w", a.JobURL, err)
		}
		a.Offer = &o
	}
	return a, nil
}

func encodeOffer(o *application.Offer) ([]byte, error) {
	if o == nil {
		return nil, nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("encode offer: %w", err)
	}
	return raw, nil
}
