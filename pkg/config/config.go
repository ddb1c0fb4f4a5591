package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	DBMaxConns  int
	RedisURL    string
	LogLevel    string
	LogFormat   string

	// Owner login for the dashboard API.
	OwnerEmail        string
	OwnerPassword     string
	OwnerPasswordHash string
	JWTSecret         string
	JWTIssuer         string
	JWTTTLMinutes     int

	// Ollama gateway.
	OllamaHost        string
	OllamaModel       string
	OllamaTimeout     time.Duration
	OllamaMaxRetries  int
	OllamaTemperature float64
	OllamaMaxTokens   int

	// Analysis batch.
	AnalysisWorkers    int
	AnalysisJobTimeout time.Duration
	AnalysisCacheTTL   time.Duration
	CategoriesFile     string
	GroupingUseLLM     bool

	// CV source: first existing path wins.
	CVPaths []string

	// Cron spec for periodic re-analysis; empty disables the scheduler.
	ReanalyzeCron  string
	ReanalyzeBatch int
}

// Load reads environment variables, optionally from a .env file if present.
func Load() Config {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		RedisURL:    os.Getenv("REDIS_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		OwnerEmail:        getEnv("OWNER_EMAIL", "owner@localhost"),
		OwnerPassword:     os.Getenv("OWNER_PASSWORD"),
		OwnerPasswordHash: os.Getenv("OWNER_PASSWORD_HASH"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change"),
		JWTIssuer:         getEnv("JWT_ISSUER", "jobdash"),
		JWTTTLMinutes:     getEnvInt("JWT_TTL_MINUTES", 720),

		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:       getEnv("OLLAMA_MODEL", "llama3:8b"),
		OllamaTimeout:     getEnvDuration("OLLAMA_TIMEOUT", 300*time.Second),
		OllamaMaxRetries:  getEnvInt("OLLAMA_MAX_RETRIES", 3),
		OllamaTemperature: getEnvFloat("OLLAMA_TEMPERATURE", 0.1),
		OllamaMaxTokens:   getEnvInt("OLLAMA_MAX_TOKENS", 1000),

		AnalysisWorkers:    getEnvInt("ANALYSIS_WORKERS", 3),
		AnalysisJobTimeout: getEnvDuration("ANALYSIS_JOB_TIMEOUT", 5*time.Minute),
		AnalysisCacheTTL:   getEnvDuration("ANALYSIS_CACHE_TTL", time.Hour),
		CategoriesFile:     os.Getenv("CATEGORIES_FILE"),
		GroupingUseLLM:     getEnvBool("GROUPING_USE_LLM", false),

		CVPaths: getEnvList("CV_PATHS", []string{
			"/app/shared/cv/resume.pdf",
			"/app/cv/resume.pdf",
			"shared/cv/resume.pdf",
			"cv/resume.pdf",
		}),

		ReanalyzeCron:  os.Getenv("REANALYZE_CRON"),
		ReanalyzeBatch: getEnvInt("REANALYZE_BATCH", 50),
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("90s", "5m") or a bare number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
