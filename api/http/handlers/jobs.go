package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/jobdash/api/http/presenter"
	"github.com/artem13815/jobdash/pkg/dashboard"
	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/ranking"
)

const maxIngestBatch = 5000

type JobsHandler struct {
	uc         dashboard.UseCase
	groupByLLM bool
}

// NewJobsHandler; groupByLLM задаёт режим группировки, если запрос его не указал.
func NewJobsHandler(uc dashboard.UseCase, groupByLLM bool) *JobsHandler {
	return &JobsHandler{uc: uc, groupByLLM: groupByLLM}
}

type jobsRequest struct {
	Jobs []job.Record `json:"jobs"`
}

type rankedResponse struct {
	Count int            `json:"count"`
	Jobs  []job.Analyzed `json:"jobs"`
}

// Ingest
// @Summary Загрузить пачку вакансий
// @Description Upsert по URL: повторная загрузка той же вакансии обновляет запись.
// @Tags    jobs
// @Accept  json
// @Produce json
// @Param   input body jobsRequest true "scraped jobs"
// @Security BearerAuth
// @Success 200 {object} dashboard.IngestResult
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /jobs [post]
func (h *JobsHandler) Ingest(c *fiber.Ctx) error {
	var req jobsRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if len(req.Jobs) == 0 {
		return presenter.Error(c, http.StatusBadRequest, "jobs are required")
	}
	if len(req.Jobs) > maxIngestBatch {
		return presenter.Error(c, http.StatusBadRequest, fmt.Sprintf("too many jobs: limit is %d", maxIngestBatch))
	}
	res, err := h.uc.Ingest(c.Context(), req.Jobs)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to store jobs")
	}
	return presenter.JSON(c, http.StatusOK, res)
}

// List
// @Summary Список вакансий
// @Tags    jobs
// @Produce json
// @Param   source   query string false "platform"
// @Param   company  query string false "company substring"
// @Param   q        query string false "title or description substring"
// @Param   analyzed query bool   false "only analyzed"
// @Param   pending  query bool   false "only not analyzed"
// @Param   limit    query int    false "page size (≤200)"
// @Param   offset   query int    false "offset"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[job.Stored]
// @Router  /jobs [get]
func (h *JobsHandler) List(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, 50)
	f := job.Filter{
		Source:       strings.TrimSpace(c.Query("source")),
		Company:      strings.TrimSpace(c.Query("company")),
		Search:       strings.TrimSpace(c.Query("q")),
		OnlyAnalyzed: queryBool(c, "analyzed"),
		OnlyPending:  queryBool(c, "pending"),
		Limit:        limit,
		Offset:       offset,
	}
	if f.OnlyAnalyzed && f.OnlyPending {
		return presenter.Error(c, http.StatusBadRequest, "analyzed and pending are mutually exclusive")
	}
	items, total, err := h.uc.ListJobs(c.Context(), f)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to list jobs")
	}
	if items == nil {
		items = []job.Stored{}
	}
	return presenter.JSON(c, http.StatusOK, presenter.Page[job.Stored]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// Groups
// @Summary Сгруппировать вакансии
// @Description Группирует присланные вакансии или, если тело пустое, все сохранённые.
// @Tags    jobs
// @Accept  json
// @Produce json
// @Param   mode  query string false "llm или rules"
// @Param   input body jobsRequest false "jobs to group"
// @Security BearerAuth
// @Success 200 {object} dashboard.GroupResult
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /jobs/groups [post]
func (h *JobsHandler) Groups(c *fiber.Ctx) error {
	useLLM := h.groupByLLM
	switch strings.ToLower(strings.TrimSpace(c.Query("mode"))) {
	case "":
	case "llm":
		useLLM = true
	case "rules":
		useLLM = false
	default:
		return presenter.Error(c, http.StatusBadRequest, "mode must be llm or rules")
	}
	var req jobsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
		}
	}
	res, err := h.uc.Group(c.Context(), req.Jobs, useLLM)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to group jobs")
	}
	return presenter.JSON(c, http.StatusOK, res)
}

// Analyze
// @Summary Проанализировать вакансии
// @Description Анализирует присланные вакансии или сохранённые; результат сохраняется.
// @Tags    jobs
// @Accept  json
// @Produce json
// @Param   input body dashboard.AnalyzeRequest false "jobs or selection"
// @Security BearerAuth
// @Success 200 {object} dashboard.AnalyzeResult
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /jobs/analyze [post]
func (h *JobsHandler) Analyze(c *fiber.Ctx) error {
	var req dashboard.AnalyzeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
		}
	}
	if req.Limit < 0 {
		return presenter.Error(c, http.StatusBadRequest, "limit must not be negative")
	}
	res, err := h.uc.Analyze(c.Context(), req)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to analyze jobs")
	}
	return presenter.JSON(c, http.StatusOK, res)
}

// Ranked
// @Summary Отфильтровать и отсортировать вакансии
// @Description Поля, не переданные в теле, берутся из критериев по умолчанию.
// @Tags    jobs
// @Accept  json
// @Produce json
// @Param   input body ranking.Criteria false "criteria"
// @Security BearerAuth
// @Success 200 {object} rankedResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /jobs/ranked [post]
func (h *JobsHandler) Ranked(c *fiber.Ctx) error {
	crit := ranking.DefaultCriteria()
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&crit); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
		}
	}
	jobs, err := h.uc.Ranked(c.Context(), crit)
	if err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to rank jobs")
	}
	return presenter.JSON(c, http.StatusOK, rankedResponse{Count: len(jobs), Jobs: jobs})
}

// Export
// @Summary Выгрузить отчёт в Excel
// @Tags    jobs
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   max          query int false "max ranked rows"
// @Param   min_cv_match query int false "minimum cv match"
// @Security BearerAuth
// @Success 200 {file} file
// @Router  /jobs/export [get]
func (h *JobsHandler) Export(c *fiber.Ctx) error {
	crit := ranking.DefaultCriteria()
	crit.MaxResults = queryInt(c, "max", crit.MaxResults, 1, -1)
	crit.MinCVMatch = queryInt(c, "min_cv_match", crit.MinCVMatch, 0, 100)
	var buf bytes.Buffer
	if err := h.uc.Export(c.Context(), crit, &buf); err != nil {
		return presenter.Error(c, http.StatusInternalServerError, "failed to build report")
	}
	name := fmt.Sprintf("jobs_%s.xlsx", time.Now().Format("20060102_150405"))
	return presenter.Attachment(c, name, presenter.MIMEXLSX, buf.Bytes())
}
