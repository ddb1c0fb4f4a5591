package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/jobdash/pkg/health"
)

// HealthHandler отвечает на liveness и readiness пробы.
type HealthHandler struct{ svc health.ReadinessUseCase }

func NewHealthHandler(svc health.ReadinessUseCase) *HealthHandler { return &HealthHandler{svc: svc} }

// Health: простая проверка живости.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// Ready: проверка готовности всех зависимостей. Необязательные (redis,
// ollama) только помечают сервис как degraded.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} health.Report
// @Failure 503 {object} health.Report
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()
	report := h.svc.Report(ctx)
	if !report.Ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	return c.Status(fiber.StatusOK).JSON(report)
}
