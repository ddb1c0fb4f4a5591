package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/jobdash/pkg/resume"
)

// CVRepository хранит загруженные резюме и извлечённый профиль.
type CVRepository struct {
	pool *pgxpool.Pool
}

var _ resume.UploadRepository = (*CVRepository)(nil)

func NewCVRepository(pool *pgxpool.Pool) (*CVRepository, error) {
	r := &CVRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CVRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cv_uploads (
	id UUID PRIMARY KEY,
	filename TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	text TEXT NOT NULL,
	profile JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`)
	return err
}

func (r *CVRepository) SaveUpload(ctx context.Context, u resume.Upload) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	profile, err := json.Marshal(u.Profile)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
INSERT INTO cv_uploads (id, filename, size_bytes, text, profile, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, u.ID, u.Filename, u.SizeBytes, u.Text, profile, u.CreatedAt)
	return err
}

func (r *CVRepository) LatestUpload(ctx context.Context) (resume.Upload, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, filename, size_bytes, text, profile, created_at
FROM cv_uploads ORDER BY created_at DESC LIMIT 1
`)
	var (
		u       resume.Upload
		raw     []byte
		created time.Time
	)
	if err := row.Scan(&u.ID, &u.Filename, &u.SizeBytes, &u.Text, &raw, &created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resume.Upload{}, resume.ErrNoUpload
		}
		return resume.Upload{}, err
	}
	if err := json.Unmarshal(raw, &u.Profile); err != nil {
		return resume.Upload{}, err
	}
	u.CreatedAt = created.UTC()
	return u, nil
}
