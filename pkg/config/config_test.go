package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OLLAMA_TIMEOUT", "")
	t.Setenv("ANALYSIS_WORKERS", "")
	t.Setenv("CV_PATHS", "")

	cfg := Load()

	assert.Equal(t, 300*time.Second, cfg.OllamaTimeout)
	assert.Equal(t, 3, cfg.AnalysisWorkers)
	assert.Equal(t, 3, cfg.OllamaMaxRetries)
	assert.InDelta(t, 0.1, cfg.OllamaTemperature, 1e-9)
	assert.Len(t, cfg.CVPaths, 4)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OLLAMA_TIMEOUT", "90")
	t.Setenv("ANALYSIS_JOB_TIMEOUT", "2m")
	t.Setenv("ANALYSIS_WORKERS", "4")
	t.Setenv("CV_PATHS", " /tmp/a.pdf, ,/tmp/b.pdf")
	t.Setenv("GROUPING_USE_LLM", "true")

	cfg := Load()

	assert.Equal(t, 90*time.Second, cfg.OllamaTimeout)
	assert.Equal(t, 2*time.Minute, cfg.AnalysisJobTimeout)
	assert.Equal(t, 4, cfg.AnalysisWorkers)
	assert.Equal(t, []string{"/tmp/a.pdf", "/tmp/b.pdf"}, cfg.CVPaths)
	assert.True(t, cfg.GroupingUseLLM)
}

func TestGetEnvDuration_Invalid(t *testing.T) {
	t.Setenv("X_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("X_DURATION", time.Minute))
}
