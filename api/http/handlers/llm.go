package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/jobdash/api/http/presenter"
	"github.com/artem13815/jobdash/pkg/analysis"
	"github.com/artem13815/jobdash/pkg/llm"
)

// modelLister реализует клиент Ollama.
type modelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

type LLMHandler struct {
	gen   llm.Generator
	batch *analysis.BatchAnalyzer
}

func NewLLMHandler(gen llm.Generator, batch *analysis.BatchAnalyzer) *LLMHandler {
	return &LLMHandler{gen: gen, batch: batch}
}

type llmStatus struct {
	Model     string                 `json:"model"`
	Available bool                   `json:"available"`
	Models    []string               `json:"models,omitempty"`
	Stats     analysis.StatsSnapshot `json:"stats"`
}

// Status
// @Summary Состояние LLM
// @Description refresh=1 сбрасывает закэшированную проверку доступности.
// @Tags    llm
// @Produce json
// @Param   refresh query bool false "re-probe the model server"
// @Security BearerAuth
// @Success 200 {object} llmStatus
// @Router  /llm/status [get]
func (h *LLMHandler) Status(c *fiber.Ctx) error {
	if queryBool(c, "refresh") {
		h.gen.Invalidate()
	}
	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()
	res := llmStatus{
		Model:     h.gen.Model(),
		Available: h.gen.Available(ctx),
		Stats:     h.batch.Stats(ctx),
	}
	if ml, ok := h.gen.(modelLister); ok && res.Available {
		if models, err := ml.ListModels(ctx); err == nil {
			res.Models = models
		}
	}
	return presenter.JSON(c, http.StatusOK, res)
}
