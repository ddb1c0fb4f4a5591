package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/jobdash/api/http/handlers"
	"github.com/artem13815/jobdash/api/http/presenter"
	"github.com/artem13815/jobdash/pkg/analysis"
	"github.com/artem13815/jobdash/pkg/application"
	"github.com/artem13815/jobdash/pkg/auth"
	"github.com/artem13815/jobdash/pkg/dashboard"
	"github.com/artem13815/jobdash/pkg/grouping"
	"github.com/artem13815/jobdash/pkg/health"
	"github.com/artem13815/jobdash/pkg/job"
	"github.com/artem13815/jobdash/pkg/llm"
	"github.com/artem13815/jobdash/pkg/resume"
	"github.com/artem13815/jobdash/pkg/security/jwt"
	"github.com/artem13815/jobdash/pkg/workerpool"
)

type offlineGen struct{ invalidated int }

func (g *offlineGen) Generate(context.Context, llm.Request) string { return "" }
func (g *offlineGen) Available(context.Context) bool { return false }
func (g *offlineGen) Invalidate() { g.invalidated++ }
func (g *offlineGen) Model() string { return "llama3:8b" }

type testServer struct {
	app   *fiber.App
	token string
	gen   *offlineGen
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gen := &offlineGen{}
	pool := workerpool.New(2, 5*time.Second)
	batch := analysis.NewBatchAnalyzer(gen, analysis.DefaultCategories(), pool, nil, nil)
	cv := resume.NewStore(nil, nil)
	jobs := job.NewMemoryRepository()
	apps := application.NewService(application.NewMemoryRepository(), jobs, nil)
	dash := dashboard.NewService(jobs, cv, batch,
		grouping.NewEngine(nil, nil), grouping.NewEngine(grouping.NewLLMComparer(gen, nil), nil), nil).
		WithIgnoreList(apps)

	owner, err := auth.NewOwner("me@example.com", "s3cret", "")
	require.NoError(t, err)
	jwtGen := jwt.NewGenerator("secret", "jobdash", time.Hour)

	app := fiber.New()
	Register(app, Handlers{
		Auth:         handlers.NewAuthHandler(auth.NewAuthService(owner, jwtGen)),
		Health:       handlers.NewHealthHandler(health.NewService()),
		Jobs:         handlers.NewJobsHandler(dash, false),
		CV:           handlers.NewCVHandler(cv, nil, nil),
		LLM:          handlers.NewLLMHandler(gen, batch),
		Applications: handlers.NewApplicationsHandler(apps),
	}, jwt.NewAuthMiddleware("secret", "jobdash"))

	s := &testServer{app: app, gen: gen}
	var login struct {
		Token string `json:"token"`
	}
	resp := s.do(t, "POST", "/api/v1/auth/login", map[string]string{"email": "me@example.com", "password": "s3cret"}, &login)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	s.token = login.Token
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any, out any) *fiberResponse {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return s.send(t, req, out)
}

type fiberResponse struct {
	StatusCode int
	Header     map[string][]string
	Body       []byte
}

func (s *testServer) send(t *testing.T, req *nethttp.Request, out any) *fiberResponse {
	t.Helper()
	resp, err := s.app.Test(req, 10000)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && len(b) > 0 {
		require.NoError(t, json.Unmarshal(b, out), string(b))
	}
	return &fiberResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}
}

var sample = []job.Record{
	{Title: "Linux Administrator", Company: "Acme GmbH", Location: "Berlin", URL: "https://jobs.example/1", Source: "indeed",
		Description: "Betrieb unserer Linux Server. Wir bieten Homeoffice und ein tolles Team."},
	{Title: "Linux Administrator (m/w/d)", Company: "Acme", Location: "Hamburg", URL: "https://jobs.example/2", Source: "stepstone",
		Description: "Linux, Ansible, Docker. Remote possible."},
	{Title: "Sales Manager", Company: "Other AG", Location: "Munich", URL: "https://jobs.example/3", Source: "indeed",
		Description: "Sell our products."},
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, "POST", "/api/v1/auth/login", map[string]string{"email": "me@example.com", "password": "nope"}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	s.token = ""
	resp = s.do(t, "GET", "/api/v1/jobs", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, "GET", "/api/v1/health", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = s.do(t, "GET", "/api/v1/ready", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJobsFlow(t *testing.T) {
	s := newTestServer(t)

	var ingest dashboard.IngestResult
	resp := s.do(t, "POST", "/api/v1/jobs", map[string]any{"jobs": sample}, &ingest)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, ingest.Changed)

	resp = s.do(t, "POST", "/api/v1/jobs", map[string]any{"jobs": []job.Record{}}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var page presenter.Page[job.Stored]
	resp = s.do(t, "GET", "/api/v1/jobs?pending=true&limit=2", nil, &page)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 2)

	var groups dashboard.GroupResult
	resp = s.do(t, "POST", "/api/v1/jobs/groups?mode=rules", nil, &groups)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "rules", groups.Mode)
	assert.Len(t, groups.Groups, 2)

	resp = s.do(t, "POST", "/api/v1/jobs/groups?mode=magic", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var analyzed dashboard.AnalyzeResult
	resp = s.do(t, "POST", "/api/v1/jobs/analyze", nil, &analyzed)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, analyzed.Analyzed)
	for _, a := range analyzed.Jobs {
		assert.Equal(t, job.SourceHeuristic, a.Analysis.Source)
	}

	var ranked struct {
		Count int            `json:"count"`
		Jobs  []job.Analyzed `json:"jobs"`
	}
	resp = s.do(t, "POST", "/api/v1/jobs/ranked", map[string]any{"min_cv_match": 0, "min_quality": 0, "languages": []string{}, "exclude_rejected": true}, &ranked)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, ranked.Count)

	resp = s.do(t, "GET", "/api/v1/jobs/export", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, presenter.MIMEXLSX, resp.Header["Content-Type"][0])
	assert.NotEmpty(t, resp.Body)
}

func TestApplicationsFlow(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, "POST", "/api/v1/jobs", map[string]any{"jobs": sample}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var app application.Application
	resp = s.do(t, "POST", "/api/v1/applications", map[string]any{"url": "https://jobs.example/1"}, &app)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(resp.Body))
	assert.Equal(t, application.StatusSaved, app.Status)
	assert.Equal(t, "Acme GmbH", app.Company)

	resp = s.do(t, "POST", "/api/v1/applications", map[string]any{"url": "https://jobs.example/1"}, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp = s.do(t, "POST", "/api/v1/applications", map[string]any{"url": "https://jobs.example/404"}, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = s.do(t, "PATCH", "/api/v1/applications/status", map[string]any{"url": "https://jobs.example/1", "status": "offer"}, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	resp = s.do(t, "PATCH", "/api/v1/applications/status", map[string]any{"url": "https://jobs.example/1", "status": "ghosted"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = s.do(t, "PATCH", "/api/v1/applications/status", map[string]any{"url": "https://jobs.example/1", "status": "applied"}, &app)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotNil(t, app.AppliedAt)

	resp = s.do(t, "POST", "/api/v1/applications/offer", map[string]any{"url": "https://jobs.example/1", "offer": map[string]any{"base_salary": 65000}}, &app)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, app.Offer)
	assert.Equal(t, application.OfferActive, app.Offer.Status)

	resp = s.do(t, "POST", "/api/v1/applications/offer/decision", map[string]any{"url": "https://jobs.example/1", "accept": true}, &app)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, application.OfferAccepted, app.Offer.Status)

	var list struct {
		Count int                       `json:"count"`
		Items []application.Application `json:"items"`
	}
	resp = s.do(t, "GET", "/api/v1/applications?status=offer", nil, &list)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, list.Count)

	var st application.Stats
	resp = s.do(t, "GET", "/api/v1/applications/stats", nil, &st)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, st.Offers.Accepted)

	resp = s.do(t, "DELETE", "/api/v1/applications?url=https://jobs.example/1", nil, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp = s.do(t, "GET", "/api/v1/applications/item?url=https://jobs.example/1", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestIgnoredJobsLeaveRanking(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, "POST", "/api/v1/jobs", map[string]any{"jobs": sample}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = s.do(t, "POST", "/api/v1/jobs/analyze", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.do(t, "POST", "/api/v1/jobs/ignored", map[string]any{"url": "https://jobs.example/2", "reason": "duplicate"}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var ignored struct {
		Count int `json:"count"`
	}
	resp = s.do(t, "GET", "/api/v1/jobs/ignored", nil, &ignored)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, ignored.Count)

	var ranked struct {
		Jobs []job.Analyzed `json:"jobs"`
	}
	crit := map[string]any{"min_cv_match": 0, "min_quality": 0, "languages": []string{}, "exclude_ignored": true}
	resp = s.do(t, "POST", "/api/v1/jobs/ranked", crit, &ranked)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, ranked.Jobs, 2)
	for _, j := range ranked.Jobs {
		assert.NotEqual(t, "https://jobs.example/2", j.Record.URL)
	}

	resp = s.do(t, "DELETE", "/api/v1/jobs/ignored?url=https://jobs.example/2", nil, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp = s.do(t, "DELETE", "/api/v1/jobs/ignored?url=https://jobs.example/2", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCVUpload(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "cv.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Experience\nLinux Administrator at Acme GmbH 01/2018 - present\nSkills: Linux, Docker, Ansible, Python\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/v1/cv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	var cv struct {
		Loaded   bool                    `json:"loaded"`
		Profile  resume.CandidateProfile `json:"profile"`
		UploadID string                  `json:"uploadId"`
	}
	resp := s.send(t, req, &cv)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(resp.Body))
	assert.True(t, cv.Loaded)
	assert.NotEmpty(t, cv.UploadID)
	assert.Contains(t, cv.Profile.Skills, "linux")

	resp = s.do(t, "GET", "/api/v1/cv", nil, &cv)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, cv.Loaded)

	resp = s.do(t, "POST", "/api/v1/cv/reload", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = s.do(t, "GET", "/api/v1/cv", nil, &cv)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, cv.Loaded, "failed reload keeps the uploaded profile")
}

func TestLLMStatus(t *testing.T) {
	s := newTestServer(t)
	var st struct {
		Model     string `json:"model"`
		Available bool   `json:"available"`
	}
	resp := s.do(t, "GET", "/api/v1/llm/status?refresh=1", nil, &st)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "llama3:8b", st.Model)
	assert.False(t, st.Available)
	assert.Equal(t, 1, s.gen.invalidated)
}
