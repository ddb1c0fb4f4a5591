package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/jobdash/api/http/presenter"
	"github.com/artem13815/jobdash/pkg/resume"
)

type CVHandler struct {
	store *resume.Store
	// nil без БД: загрузки живут только в памяти
	repo resume.UploadRepository
	// Лимит размера загружаемого файла (байты)
	maxBytes int64
	log      *slog.Logger
}

func NewCVHandler(store *resume.Store, repo resume.UploadRepository, log *slog.Logger) *CVHandler {
	if log == nil {
		log = slog.Default()
	}
	return &CVHandler{store: store, repo: repo, maxBytes: 15 << 20, log: log} // 15MB
}

type cvResponse struct {
	Loaded   bool                    `json:"loaded"`
	LoadedAt *time.Time              `json:"loadedAt,omitempty"`
	Profile  resume.CandidateProfile `json:"profile"`
	UploadID string                  `json:"uploadId,omitempty"`
}

// Upload загружает CV и пересобирает профиль кандидата.
// @Summary Загрузить CV
// @Tags    cv
// @Accept  multipart/form-data
// @Produce json
// @Param   file formData file true "CV (pdf, docx или txt)"
// @Security BearerAuth
// @Success 200 {object} cvResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /cv [post]
func (h *CVHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required (pdf, docx or txt)")
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".pdf", ".docx", ".txt", ".md":
	default:
		return presenter.Error(c, http.StatusBadRequest, resume.ErrUnsupportedFormat.Error())
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := readAtMost(file, h.maxBytes)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	up, err := resume.NewUpload(fh.Filename, data)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, fmt.Sprintf("failed to read cv: %v", err))
	}
	if h.repo != nil {
		if err := h.repo.SaveUpload(c.Context(), up); err != nil {
			h.log.Error("cv upload not saved", "filename", up.Filename, "err", err)
			return presenter.Error(c, http.StatusInternalServerError, "failed to save cv")
		}
	}
	h.store.Set(up.Profile)
	h.log.Info("cv uploaded", "filename", up.Filename, "bytes", up.SizeBytes, "skills", len(up.Profile.Skills))
	return presenter.JSON(c, http.StatusOK, h.current(up.ID.String()))
}

// Get
// @Summary Текущий профиль кандидата
// @Tags    cv
// @Produce json
// @Security BearerAuth
// @Success 200 {object} cvResponse
// @Router  /cv [get]
func (h *CVHandler) Get(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, h.current(""))
}

// Reload
// @Summary Перечитать CV с диска
// @Tags    cv
// @Produce json
// @Security BearerAuth
// @Success 200 {object} cvResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 422 {object} presenter.ErrorResponse
// @Router  /cv/reload [post]
func (h *CVHandler) Reload(c *fiber.Ctx) error {
	if _, err := h.store.Reload(c.Context()); err != nil {
		if errors.Is(err, resume.ErrCVNotFound) {
			return presenter.Error(c, http.StatusNotFound, err.Error())
		}
		return presenter.Error(c, http.StatusUnprocessableEntity, err.Error())
	}
	return presenter.JSON(c, http.StatusOK, h.current(""))
}

func (h *CVHandler) current(uploadID string) cvResponse {
	p := h.store.Current()
	res := cvResponse{Loaded: p.Loaded(), Profile: p, UploadID: uploadID}
	if at := h.store.LoadedAt(); !at.IsZero() {
		res.LoadedAt = &at
	}
	return res
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("file too large: limit is %d bytes", max)
	}
	return b, nil
}
