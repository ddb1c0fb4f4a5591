package resume

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNoUpload = errors.New("no cv upload stored")

// Upload is a CV document sent through the API together with what was
// extracted from it.
type Upload struct {
	ID        uuid.UUID        `json:"id"`
	Filename  string           `json:"filename"`
	SizeBytes int64            `json:"sizeBytes"`
	Text      string           `json:"-"`
	Profile   CandidateProfile `json:"profile"`
	CreatedAt time.Time        `json:"createdAt"`
}

// UploadRepository persists uploads so the last CV survives restarts.
type UploadRepository interface {
	SaveUpload(ctx context.Context, u Upload) error
	LatestUpload(ctx context.Context) (Upload, error)
}

// NewUpload parses the document and builds the profile.
func NewUpload(filename string, data []byte) (Upload, error) {
	text, err := ParseResumeText(filename, data)
	if err != nil {
		return Upload{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Upload{}, errors.New("empty resume content")
	}
	p := BuildProfile(text)
	p.Source = filename
	return Upload{
		ID:        uuid.New(),
		Filename:  filename,
		SizeBytes: int64(len(data)),
		Text:      text,
		Profile:   p,
		CreatedAt: time.Now().UTC(),
	}, nil
}
