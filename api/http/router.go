package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/jobdash/api/http/handlers"
)

// Handlers groups everything Register mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Jobs         *handlers.JobsHandler
	CV           *handlers.CVHandler
	LLM          *handlers.LLMHandler
	Applications *handlers.ApplicationsHandler
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, h Handlers, authMW fiber.Handler) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", h.Health.Health)
	v1.Get("/ready", h.Health.Ready)

	v1.Post("/auth/login", h.Auth.Login)

	jobs := v1.Group("/jobs", authMW)
	jobs.Post("/", h.Jobs.Ingest)
	jobs.Get("/", h.Jobs.List)
	jobs.Post("/groups", h.Jobs.Groups)
	jobs.Post("/analyze", h.Jobs.Analyze)
	jobs.Post("/ranked", h.Jobs.Ranked)
	jobs.Get("/export", h.Jobs.Export)
	jobs.Get("/ignored", h.Applications.Ignored)
	jobs.Post("/ignored", h.Applications.Ignore)
	jobs.Delete("/ignored", h.Applications.Unignore)

	apps := v1.Group("/applications", authMW)
	apps.Post("/", h.Applications.Track)
	apps.Get("/", h.Applications.List)
	apps.Delete("/", h.Applications.Untrack)
	apps.Get("/item", h.Applications.Get)
	apps.Get("/stats", h.Applications.Stats)
	apps.Patch("/status", h.Applications.UpdateStatus)
	apps.Post("/offer", h.Applications.RecordOffer)
	apps.Post("/offer/decision", h.Applications.DecideOffer)

	cv := v1.Group("/cv", authMW)
	cv.Post("/", h.CV.Upload)
	cv.Get("/", h.CV.Get)
	cv.Post("/reload", h.CV.Reload)

	v1.Get("/llm/status", authMW, h.LLM.Status)
}
