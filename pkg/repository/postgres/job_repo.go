package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/jobdash/pkg/job"
)

// JobRepository хранит вакансии по URL вместе с последним анализом.
type JobRepository struct {
	pool *pgxpool.Pool
}

var _ job.Repository = (*JobRepository)(nil)

func NewJobRepository(pool *pgxpool.Pool) (*JobRepository, error) {
	r := &JobRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *JobRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
	id UUID PRIMARY KEY,
	url TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	company TEXT NOT NULL,
	location TEXT NOT NULL,
	salary TEXT,
	source TEXT NOT NULL,
	description TEXT NOT NULL,
	scraped_at TIMESTAMPTZ,
	analysis JSONB,
	analyzed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_jobs_company ON jobs(lower(company));
CREATE INDEX IF NOT EXISTS idx_jobs_pending ON jobs(created_at) WHERE analysis IS NULL;
`)
	return err
}

// UpsertJob возвращает false, если сохранённая строка не изменилась.
func (r *JobRepository) UpsertJob(ctx context.Context, rec job.Record) (bool, error) {
	key := rec.Key()
	if key == "" {
		return false, errors.New("job url is required")
	}
	var scraped *time.Time
	if !rec.ScrapedAt.IsZero() {
		t := rec.ScrapedAt.UTC()
		scraped = &t
	}
	row := r.pool.QueryRow(ctx, `
INSERT INTO jobs (id, url, title, company, location, salary, source, description, scraped_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	company = EXCLUDED.company,
	location = EXCLUDED.location,
	salary = EXCLUDED.salary,
	source = EXCLUDED.source,
	description = EXCLUDED.description,
	scraped_at = EXCLUDED.scraped_at,
	updated_at = now()
WHERE (jobs.title, jobs.company, jobs.location, jobs.salary, jobs.source, jobs.description, jobs.scraped_at)
	IS DISTINCT FROM
	(EXCLUDED.title, EXCLUDED.company, EXCLUDED.location, EXCLUDED.salary, EXCLUDED.source, EXCLUDED.description, EXCLUDED.scraped_at)
RETURNING (xmax = 0)
`, uuid.New(), key, rec.Title, rec.Company, rec.Location, rec.Salary, rec.Source, rec.Description, scraped)
	var inserted bool
	if err := row.Scan(&inserted); err != nil {
		// WHERE отфильтровал апдейт: строка не изменилась
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *JobRepository) SaveAnalysis(ctx context.Context, url string, a job.Analysis) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
UPDATE jobs SET analysis = $2, analyzed_at = $3, updated_at = now() WHERE url = $1
`, strings.TrimSpace(url), raw, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return job.ErrNotFound
	}
	return nil
}

const jobColumns = `url, title, company, location, salary, source, description, scraped_at, analysis`

func (r *JobRepository) GetByURL(ctx context.Context, url string) (job.Stored, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE url = $1`, strings.TrimSpace(url))
	s, err := scanStored(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.Stored{}, job.ErrNotFound
		}
		return job.Stored{}, err
	}
	return s, nil
}

func (r *JobRepository) GetJobs(ctx context.Context, f job.Filter) ([]job.Stored, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Source != "" {
		add("lower(source) = lower($%d)", f.Source)
	}
	if f.Company != "" {
		add("company ILIKE $%d", "%"+f.Company+"%")
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if f.OnlyAnalyzed {
		where = append(where, "analysis IS NOT NULL")
	}
	if f.OnlyPending {
		where = append(where, "analysis IS NULL")
	}

	q := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, url"
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
	var res []job.Stored
	for rows.Next() {
		s, err := scanStored(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func (r *JobRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM jobs`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanStored(row pgx.Row) (job.Stored, error) {
	var (
		s       job.Stored
		scraped *time.Time
		raw     []byte
	)
	if err := row.Scan(&s.Record.URL, &s.Record.Title, &s.Record.Company, &s.Record.Location,
		&s.Record.Salary, &s.Record.Source, &s.Record.Description, &scraped, &raw); err != nil {
		return job.Stored{}, err
	}
	if scraped != nil {
		s.Record.ScrapedAt = scraped.UTC()
	}
	if len(raw) > 0 {
		var a job.Analysis
		if err := json.Unmarshal(raw, &a); err != nil {
			return job.Stored{}, fmt.Errorf("decode analysis for %s: %w", s.Record.URL, err)
		}
		s.Analysis = &a
	}
	return s, nil
}
