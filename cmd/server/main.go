// @title         jobdash API
// @version       1.0
// @description   Дашборд поиска работы: группировка вакансий, анализ через локальную LLM и ранжирование под CV.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Токен авторизации. Поддерживаются форматы: "Bearer <JWT>" или "<JWT>".
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/artem13815/jobdash/docs"
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	// internal imports
	"github.com/artem13815/jobdash/api/http"
	"github.com/artem13815/jobdash/api/http/handlers"
	"github.com/artem13815/jobdash/pkg/analysis"
	"github.com/artem13815/jobdash/pkg/application"
	"github.com/artem13815/jobdash/pkg/auth"
	"github.com/artem13815/jobdash/pkg/cache"
	"github.com/artem13815/jobdash/pkg/config"
	"github.com/artem13815/jobdash/pkg/dashboard"
	"github.com/artem13815/jobdash/pkg/grouping"
	"github.com/artem13815/jobdash/pkg/health"
	"github.com/artem13815/jobdash/pkg/health/checkers"
	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/llm/ollama"
	"github.com/artem13815/jobdash/pkg/logging"
	pgrepo "github.com/artem13815/jobdash/pkg/repository/postgres"
	"github.com/artem13815/jobdash/pkg/resume"
	"github.com/artem13815/jobdash/pkg/scheduler"
	"github.com/artem13815/jobdash/pkg/security/jwt"
	"github.com/artem13815/jobdash/pkg/storage/postgres"
	"github.com/artem13815/jobdash/pkg/workerpool"
)

func main() {
	// Load configuration from env/.env
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		jobRepo    job.Repository
		uploadRepo resume.UploadRepository
		appRepo    application.Repository
		checks     []health.Checker
	)

	// PostgreSQL is optional: without it jobs live in memory.
	if cfg.DatabaseURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL, int32(cfg.DBMaxConns))
		if err != nil {
			log.Fatalf("postgres connect: %v", err)
		}
		defer pool.Close()
		jr, err := pgrepo.NewJobRepository(pool)
		if err != nil {
			log.Fatalf("init job repo: %v", err)
		}
		cr, err := pgrepo.NewCVRepository(pool)
		if err != nil {
			log.Fatalf("init cv repo: %v", err)
		}
		ar, err := pgrepo.NewApplicationRepository(pool)
		if err != nil {
			log.Fatalf("init application repo: %v", err)
		}
		jobRepo, uploadRepo, appRepo = jr, cr, ar
		checks = append(checks, checkers.NewPostgresChecker(pool))
	} else {
		logger.Warn("DATABASE_URL не задан, вакансии хранятся в памяти")
		jobRepo = job.NewMemoryRepository()
		appRepo = application.NewMemoryRepository()
	}

	// Ollama gateway
	llmClient := ollama.New(ollama.Options{
		Host:        cfg.OllamaHost,
		Model:       cfg.OllamaModel,
		Timeout:     cfg.OllamaTimeout,
		MaxRetries:  cfg.OllamaMaxRetries,
		Temperature: cfg.OllamaTemperature,
		MaxTokens:   cfg.OllamaMaxTokens,
		Logger:      logger,
	})
	checks = append(checks, checkers.NewOllamaChecker(llmClient))

	// Redis analysis cache is optional too.
	var analysisCache analysis.Cache
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, analysis cache disabled", "err", err)
		} else {
			defer rdb.Close()
			analysisCache = cache.NewAnalysisCache(rdb, cfg.AnalysisCacheTTL, logger)
			checks = append(checks, checkers.NewRedisChecker(rdb))
		}
	}

	cats, err := analysis.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		log.Fatalf("categories: %v", err)
	}

	// CV: last upload wins over the files on disk.
	cvStore := resume.NewStore(cfg.CVPaths, logger)
	loadCV(ctx, cvStore, uploadRepo, logger)

	workers := workerpool.New(cfg.AnalysisWorkers, cfg.AnalysisJobTimeout)
	batch := analysis.NewBatchAnalyzer(llmClient, cats, workers, analysisCache, logger)
	rules := grouping.NewEngine(grouping.RuleComparer{}, logger)
	llmGroups := grouping.NewEngine(grouping.NewLLMComparer(llmClient, logger), logger)
	apps := application.NewService(appRepo, jobRepo, logger)
	dash := dashboard.NewService(jobRepo, cvStore, batch, rules, llmGroups, logger).WithIgnoreList(apps)

	if cfg.ReanalyzeCron != "" {
		sched := scheduler.New(dash, cfg.ReanalyzeCron, cfg.ReanalyzeBatch, logger)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("scheduler: %v", err)
		}
		defer sched.Stop()
	}

	// Owner login
	owner, err := auth.NewOwner(cfg.OwnerEmail, cfg.OwnerPassword, cfg.OwnerPasswordHash)
	if err != nil {
		log.Fatalf("owner account: %v", err)
	}
	jwtGen := jwt.NewGenerator(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	authUC := auth.NewAuthService(owner, jwtGen)
	authMW := jwt.NewAuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer)

	app := fiber.New(fiber.Config{BodyLimit: 32 << 20})
	http.Register(app, http.Handlers{
		Auth:         handlers.NewAuthHandler(authUC),
		Health:       handlers.NewHealthHandler(health.NewService(checks...)),
		Jobs:         handlers.NewJobsHandler(dash, cfg.GroupingUseLLM),
		CV:           handlers.NewCVHandler(cvStore, uploadRepo, logger),
		LLM:          handlers.NewLLMHandler(llmClient, batch),
		Applications: handlers.NewApplicationsHandler(apps),
	}, authMW)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// Start server
	logger.Info("HTTP server listening", "port", cfg.Port, "model", llmClient.Model(), "workers", workers.Width())
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func loadCV(ctx context.Context, store *resume.Store, repo resume.UploadRepository, logger *slog.Logger) {
	if repo != nil {
		up, err := repo.LatestUpload(ctx)
		switch {
		case err == nil:
			store.Set(up.Profile)
			logger.Info("cv restored from last upload", "filename", up.Filename, "uploadedAt", up.CreatedAt)
			return
		case !errors.Is(err, resume.ErrNoUpload):
			logger.Warn("cv upload lookup failed", "err", err)
		}
	}
	_, _ = store.Reload(ctx)
}
