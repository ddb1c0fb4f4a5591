package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/jobdash/api/http/presenter"
	"github.com/artem13815/jobdash/pkg/application"
)

type ApplicationsHandler struct {
	uc application.UseCase
}

func NewApplicationsHandler(uc application.UseCase) *ApplicationsHandler {
	return &ApplicationsHandler{uc: uc}
}

type statusRequest struct {
	URL    string  `json:"url"`
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type offerRequest struct {
	URL   string            `json:"url"`
	Offer application.Offer `json:"offer"`
}

type offerDecisionRequest struct {
	URL    string `json:"url"`
	Accept bool   `json:"accept"`
}

type ignoreRequest struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

type applicationsResponse struct {
	Count int                       `json:"count"`
	Items []application.Application `json:"items"`
}

type ignoredResponse struct {
	Count int                      `json:"count"`
	Items []application.IgnoredJob `json:"items"`
}

// Track
// @Summary Отслеживать отклик на вакансию
// @Tags    applications
// @Accept  json
// @Produce json
// @Param   input body application.TrackRequest true "job url"
// @Security BearerAuth
// @Success 201 {object} application.Application
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /applications [post]
func (h *ApplicationsHandler) Track(c *fiber.Ctx) error {
	var req application.TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	a, err := h.uc.Track(c.Context(), req)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, a)
}

// List
// @Summary Список откликов
// @Tags    applications
// @Produce json
// @Param   status query string false "saved, applied, interview, offer, rejected, withdrawn"
// @Param   limit  query int    false "page size (≤200)"
// @Param   offset query int    false "offset"
// @Security BearerAuth
// @Success 200 {object} applicationsResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /applications [get]
func (h *ApplicationsHandler) List(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, 50)
	f := application.Filter{
		Status: application.Status(strings.TrimSpace(c.Query("status"))),
		Limit:  limit,
		Offset: offset,
	}
	items, err := h.uc.List(c.Context(), f)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, applicationsResponse{Count: len(items), Items: items})
}

// Get
// @Summary Отклик по URL вакансии
// @Tags    applications
// @Produce json
// @Param   url query string true "job url"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/item [get]
func (h *ApplicationsHandler) Get(c *fiber.Ctx) error {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		return presenter.Error(c, http.StatusBadRequest, "url is required")
	}
	a, err := h.uc.Get(c.Context(), url)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// UpdateStatus
// @Summary Сменить статус отклика
// @Tags    applications
// @Accept  json
// @Produce json
// @Param   input body statusRequest true "new status"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /applications/status [patch]
func (h *ApplicationsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	a, err := h.uc.UpdateStatus(c.Context(), req.URL, application.Status(req.Status), req.Notes)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// RecordOffer
// @Summary Сохранить оффер
// @Tags    applications
// @Accept  json
// @Produce json
// @Param   input body offerRequest true "offer"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /applications/offer [post]
func (h *ApplicationsHandler) RecordOffer(c *fiber.Ctx) error {
	var req offerRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	a, err := h.uc.RecordOffer(c.Context(), req.URL, req.Offer)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// DecideOffer
// @Summary Принять или отклонить оффер
// @Tags    applications
// @Accept  json
// @Produce json
// @Param   input body offerDecisionRequest true "decision"
// @Security BearerAuth
// @Success 200 {object} application.Application
// @Failure 409 {object} presenter.ErrorResponse
// @Router  /applications/offer/decision [post]
func (h *ApplicationsHandler) DecideOffer(c *fiber.Ctx) error {
	var req offerDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	a, err := h.uc.DecideOffer(c.Context(), req.URL, req.Accept)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, a)
}

// Untrack
// @Summary Удалить отклик
// @Tags    applications
// @Param   url query string true "job url"
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications [delete]
func (h *ApplicationsHandler) Untrack(c *fiber.Ctx) error {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		return presenter.Error(c, http.StatusBadRequest, "url is required")
	}
	if err := h.uc.Untrack(c.Context(), url); err != nil {
		return applicationError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Stats
// @Summary Сводка по откликам
// @Tags    applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} application.Stats
// @Router  /applications/stats [get]
func (h *ApplicationsHandler) Stats(c *fiber.Ctx) error {
	st, err := h.uc.Stats(c.Context())
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, st)
}

// Ignore
// @Summary Скрыть вакансию
// @Tags    jobs
// @Accept  json
// @Produce json
// @Param   input body ignoreRequest true "job url and reason"
// @Security BearerAuth
// @Success 200 {object} application.IgnoredJob
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/ignored [post]
func (h *ApplicationsHandler) Ignore(c *fiber.Ctx) error {
	var req ignoreRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	j, err := h.uc.Ignore(c.Context(), req.URL, req.Reason)
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, j)
}

// Unignore
// @Summary Вернуть вакансию в выдачу
// @Tags    jobs
// @Param   url query string true "job url"
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/ignored [delete]
func (h *ApplicationsHandler) Unignore(c *fiber.Ctx) error {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		return presenter.Error(c, http.StatusBadRequest, "url is required")
	}
	if err := h.uc.Unignore(c.Context(), url); err != nil {
		return applicationError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Ignored
// @Summary Скрытые вакансии
// @Tags    jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ignoredResponse
// @Router  /jobs/ignored [get]
func (h *ApplicationsHandler) Ignored(c *fiber.Ctx) error {
	items, err := h.uc.Ignored(c.Context())
	if err != nil {
		return applicationError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, ignoredResponse{Count: len(items), Items: items})
}

func applicationError(c *fiber.Ctx, err error) error {
	var verr application.ErrValidation
	switch {
	case errors.As(err, &verr), errors.Is(err, application.ErrInvalidStatus):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNotFound), errors.Is(err, application.ErrJobNotFound),
		errors.Is(err, application.ErrNotIgnored):
		return presenter.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrAlreadyTracked), errors.Is(err, application.ErrTransition),
		errors.Is(err, application.ErrNoActiveOffer):
		return presenter.Error(c, http.StatusConflict, err.Error())
	}
	return presenter.Error(c, http.StatusInternalServerError, "application request failed")
}
