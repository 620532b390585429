package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/listing-pipeline/internal/events"
	"github.com/jonathan/listing-pipeline/internal/generation"
	"github.com/jonathan/listing-pipeline/internal/pipeline"
	"github.com/jonathan/listing-pipeline/internal/pipeline/steps"
	"github.com/jonathan/listing-pipeline/internal/server/ratelimit"
	"github.com/jonathan/listing-pipeline/internal/types"
)

const validRequest = `{
	"productId": "OLED65C47LA",
	"productTitle": "OLED evo C4 65 Zoll 4K Smart TV",
	"channel": "3p",
	"platforms": ["mediamarkt", "amazon"],
	"compliance": {
		"ean": "4005176000126",
		"weeeNumber": "DE 12345678",
		"productCategory": "TV",
		"hasGermanReturnAddress": true,
		"hasImpressum": true
	}
}`

const productBody = `{"product": {"id": "OLED65C47LA", "title": "LG OLED evo C4 65 Zoll", "modelNumber": "OLED65C47LA"}}`

type testEnv struct {
	srv  *Server
	orch *pipeline.Orchestrator
	bus  *events.Bus
}

func newTestServer(t *testing.T, mode pipeline.ReviewMode, cfg Config) *testEnv {
	t.Helper()
	bus := events.NewBus(64)
	orch := pipeline.New(pipeline.Options{
		Publisher:   events.Multi{bus},
		ReviewMode:  mode,
		ReviewDelay: time.Millisecond,
	})
	t.Cleanup(orch.Close)

	cfg.Orchestrator = orch
	cfg.Bus = bus
	srv, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, orch: orch, bus: bus}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) createRun(t *testing.T) uuid.UUID {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/pipelines", validRequest)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	id, err := uuid.Parse(decodeMap(t, rec)["pipelineId"].(string))
	require.NoError(t, err)
	return id
}

func (e *testEnv) waitForStatus(t *testing.T, id uuid.UUID, status pipeline.RunStatus) {
	t.Helper()
	require.Eventually(t, func() bool {
		run, err := e.orch.GetRun(context.Background(), id)
		return err == nil && run.Status == status
	}, 5*time.Second, 5*time.Millisecond)
}

func TestNew_RequiresOrchestrator(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})

	rec := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "auto", body["reviewMode"])
	assert.NotContains(t, body, "checks")
}

func TestHealth_Degraded(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewManual, Config{
		HealthChecks: map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		},
	})

	rec := env.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeMap(t, rec)
	assert.Equal(t, "degraded", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "ok", checks["postgres"])
	assert.Equal(t, "connection refused", checks["redis"])
}

func TestCreatePipeline_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		contains string
	}{
		{name: "empty body", body: "", contains: "request body is empty"},
		{name: "invalid json", body: "{not json", contains: "invalid JSON"},
		{name: "platforms not a list", body: `{"productId":"p1","productTitle":"TV","channel":"3p","platforms":"amazon"}`, contains: "platforms"},
		{name: "missing fields", body: `{"channel":"d2c"}`, contains: "Missing required fields"},
		{name: "unknown platform", body: `{"productId":"p1","productTitle":"TV","channel":"3p","platforms":["walmart"]}`, contains: "unknown platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestServer(t, pipeline.ReviewAuto, Config{})

			rec := env.do(t, http.MethodPost, "/pipelines", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decodeMap(t, rec)["error"], tt.contains)
		})
	}
}

func TestCreatePipeline_RunsToCompletion(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})

	rec := env.do(t, http.MethodPost, "/pipelines", validRequest)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	id := body["pipelineId"].(string)
	assert.Equal(t, "/pipelines/"+id, rec.Header().Get("Location"))
	assert.Len(t, body["steps"], len(steps.Order))

	env.orch.Wait()

	rec = env.do(t, http.MethodGet, "/pipelines/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeMap(t, rec)
	assert.Equal(t, string(pipeline.RunCompleted), body["status"])
	summary := body["summary"].(map[string]any)
	assert.EqualValues(t, len(steps.Order), summary["totalSteps"])
	assert.EqualValues(t, 0, summary["failedSteps"])

	rec = env.do(t, http.MethodGet, "/pipelines", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decodeMap(t, rec)["count"])
}

func TestPipelineRoutes_Errors(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})
	id := env.createRun(t)
	env.orch.Wait()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "bad id", method: http.MethodGet, path: "/pipelines/not-a-uuid", status: http.StatusBadRequest},
		{name: "unknown id", method: http.MethodGet, path: "/pipelines/" + uuid.NewString(), status: http.StatusNotFound},
		{name: "bad limit", method: http.MethodGet, path: "/pipelines?limit=x", status: http.StatusBadRequest},
		{name: "pause finished run", method: http.MethodPost, path: "/pipelines/" + id.String() + "/pause", status: http.StatusConflict},
		{name: "resume finished run", method: http.MethodPost, path: "/pipelines/" + id.String() + "/resume", status: http.StatusConflict},
		{name: "skip unknown step", method: http.MethodPost, path: "/pipelines/" + id.String() + "/steps/teleport/skip", status: http.StatusBadRequest},
		{name: "skip on finished run", method: http.MethodPost, path: "/pipelines/" + id.String() + "/steps/distribution/skip", status: http.StatusConflict},
		{name: "review without pending review", method: http.MethodPost, path: "/pipelines/" + id.String() + "/review", body: `{"approved":true}`, status: http.StatusConflict},
		{name: "review unknown run", method: http.MethodPost, path: "/pipelines/" + uuid.NewString() + "/review", body: `{"approved":true}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeMap(t, rec)["error"])
		})
	}
}

func TestManualReview_WithToken(t *testing.T) {
	tokens := NewTokenService("review-secret", time.Hour)
	env := newTestServer(t, pipeline.ReviewManual, Config{Tokens: tokens})
	id := env.createRun(t)
	env.waitForStatus(t, id, pipeline.RunAwaitingReview)

	path := "/pipelines/" + id.String()

	// Distribution has not started yet, so it can still be skipped.
	rec := env.do(t, http.MethodPost, path+"/steps/distribution/skip", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPost, path+"/steps/asset-verification/skip", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, path+"/review", `{"approved":true}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := tokens.GenerateToken("qa-lead")
	require.NoError(t, err)
	auth := []string{"Authorization", "Bearer " + token}

	rec = env.do(t, http.MethodPost, path+"/review", `{"comments":"looks fine"}`, auth...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, path+"/review", `{"approved":true,"reviewer":"someone-else","comments":"looks fine"}`, auth...)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	decision := decodeMap(t, rec)["decision"].(map[string]any)
	assert.Equal(t, "qa-lead", decision["reviewer"])

	rec = env.do(t, http.MethodPost, path+"/review", `{"approved":true}`, auth...)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.orch.Wait()
	run, err := env.orch.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, pipeline.RunCompleted, run.Status)

	review, ok := run.Step(steps.HumanReview)
	require.True(t, ok)
	var out pipeline.ReviewOutput
	require.NoError(t, review.Decode(&out))
	assert.Equal(t, "qa-lead", out.Reviewer)
	assert.Equal(t, pipeline.ReviewApproved, out.Status)

	dist, ok := run.Step(steps.Distribution)
	require.True(t, ok)
	assert.Equal(t, steps.StatusSkipped, dist.Status)
}

func TestManualReview_SkipWaitingReview(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewManual, Config{})
	id := env.createRun(t)
	env.waitForStatus(t, id, pipeline.RunAwaitingReview)

	path := "/pipelines/" + id.String()
	rec := env.do(t, http.MethodPost, path+"/steps/human-review/skip", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env.orch.Wait()

	rec = env.do(t, http.MethodPost, path+"/review", `{"approved":true}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	run, err := env.orch.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, pipeline.RunCompleted, run.Status)
	review, ok := run.Step(steps.HumanReview)
	require.True(t, ok)
	assert.Equal(t, steps.StatusSkipped, review.Status)
}

func TestManualReview_OpenEndpoint(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewManual, Config{})
	id := env.createRun(t)
	env.waitForStatus(t, id, pipeline.RunAwaitingReview)

	rec := env.do(t, http.MethodPost, "/pipelines/"+id.String()+"/review", `{"approved":true}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	decision := decodeMap(t, rec)["decision"].(map[string]any)
	assert.Equal(t, "anonymous", decision["reviewer"])

	env.orch.Wait()
}

func TestPauseResume(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewManual, Config{})
	id := env.createRun(t)
	env.waitForStatus(t, id, pipeline.RunAwaitingReview)

	path := "/pipelines/" + id.String()
	rec := env.do(t, http.MethodPost, path+"/review", `{"approved":true}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	env.orch.Wait()

	rec = env.do(t, http.MethodPost, path+"/pause", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPipelineEvents_FinishedRun(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})
	id := env.createRun(t)
	env.orch.Wait()

	rec := env.do(t, http.MethodGet, "/pipelines/"+id.String()+"/events", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: snapshot")
	assert.Contains(t, body, "event: complete")
	assert.Contains(t, body, `"status":"completed"`)
	assert.Less(t, strings.Index(body, "event: snapshot"), strings.Index(body, "event: complete"))
}

func TestPipelineEvents_UnknownRun(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})

	rec := env.do(t, http.MethodGet, "/pipelines/"+uuid.NewString()+"/events", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, env.bus.Subscribers())
}

func TestPipelineEvents_LiveStream(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewManual, Config{})
	ts := httptest.NewServer(env.srv.Handler())
	t.Cleanup(ts.Close)

	id := env.createRun(t)
	env.waitForStatus(t, id, pipeline.RunAwaitingReview)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/pipelines/"+id.String()+"/events", nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var names []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "event: ") {
			continue
		}
		name := strings.TrimPrefix(line, "event: ")
		names = append(names, name)
		if name == "snapshot" {
			require.NoError(t, env.orch.Approve(context.Background(), id, pipeline.Decision{Approved: true, Reviewer: "qa"}))
		}
		if name == "complete" {
			break
		}
	}

	require.NotEmpty(t, names)
	assert.Equal(t, "snapshot", names[0])
	assert.Contains(t, names, events.StepCompleted)
	assert.Contains(t, names, events.PipelineCompleted)
	assert.Equal(t, "complete", names[len(names)-1])
	env.orch.Wait()
}

func TestGenerateContent(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})

	tests := []struct {
		name     string
		body     string
		status   int
		contains string
	}{
		{name: "missing product", body: `{"platform":"amazon"}`, status: http.StatusBadRequest, contains: "product is required"},
		{name: "product without title", body: `{"product":{"id":"p1"},"platform":"amazon"}`, status: http.StatusBadRequest, contains: "title"},
		{name: "missing platform", body: productBody, status: http.StatusBadRequest, contains: "platform is required"},
		{name: "unknown platform", body: `{"product":{"title":"TV"},"platform":"walmart"}`, status: http.StatusBadRequest, contains: "walmart"},
		{name: "unknown section", body: `{"product":{"title":"TV"},"platform":"amazon","section":"pricing"}`, status: http.StatusBadRequest, contains: "pricing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/generate-content", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, decodeMap(t, rec)["error"], tt.contains)
		})
	}
}

func TestGenerateContent_Modes(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})

	rec := env.do(t, http.MethodPost, "/generate-content",
		`{"product":{"title":"LG OLED evo C4"},"platform":"Amazon","section":"hero"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "amazon", body["platform"])
	assert.Equal(t, "hero", body["section"])
	assert.NotEmpty(t, body["html"])

	rec = env.do(t, http.MethodPost, "/generate-content",
		`{"product":{"title":"LG OLED evo C4"},"platform":"otto","sections":["hero","bogus","warranty"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeMap(t, rec)
	assert.ElementsMatch(t, []any{"hero", "warranty"}, body["generatedSections"])
	assert.Len(t, body["sections"], 2)

	rec = env.do(t, http.MethodPost, "/generate-content",
		`{"product":{"title":"LG OLED evo C4"},"platform":"otto","action":"consolidate","sectionHtmls":{"hero":"<section>hero</section>"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeMap(t, rec)
	assert.Equal(t, "consolidated", body["section"])
	assert.Contains(t, body["html"], "<section>hero</section>")
}

func TestPlatforms(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})

	rec := env.do(t, http.MethodGet, "/platforms", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, len(types.AllPlatforms), decodeMap(t, rec)["count"])

	rec = env.do(t, http.MethodGet, "/platforms/AMAZON", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "amazon", decodeMap(t, rec)["platform"])

	rec = env.do(t, http.MethodGet, "/platforms/walmart", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplianceCheck(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})

	rec := env.do(t, http.MethodPost, "/compliance/check", `{
		"platforms": ["mediamarkt", "amazon"],
		"attributes": {"ean": "4005176000126", "weeeNumber": "DE 12345678", "hasGermanReturnAddress": true, "hasImpressum": true},
		"listing": {"title": "LG OLED evo C4 65 Zoll"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.EqualValues(t, 2, body["platformsChecked"])
	assert.Equal(t, true, body["ean"].(map[string]any)["valid"])

	rec = env.do(t, http.MethodPost, "/compliance/check", `{"attributes": {"ean": "123"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeMap(t, rec)
	assert.EqualValues(t, len(types.AllPlatforms), body["platformsChecked"])
	assert.Equal(t, false, body["ean"].(map[string]any)["valid"])

	rec = env.do(t, http.MethodPost, "/compliance/check", `{"platforms": ["walmart"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSections(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{SectionConcurrency: 2})
	base := "/products/OLED65C47LA/sections/amazon"

	rec := env.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "OLED65C47LA", body["productId"])
	assert.Len(t, body["sections"], len(types.AllSections))
	assert.Equal(t, false, body["complete"])

	rec = env.do(t, http.MethodPost, base+"/hero/generate", productBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeMap(t, rec)
	assert.Equal(t, "complete", body["status"])
	assert.NotEmpty(t, body["content"])

	rec = env.do(t, http.MethodPost, base+"/faq/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeMap(t, rec)["enabled"])

	rec = env.do(t, http.MethodPost, base+"/faq/toggle", `{"enabled": false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, decodeMap(t, rec)["enabled"])

	rec = env.do(t, http.MethodPost, base+"/sweep", `{"product": {"title": "LG OLED evo C4 65 Zoll"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decodeMap(t, rec)["complete"])

	rec = env.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeMap(t, rec)["complete"])
}

func TestSections_GenerationFailure(t *testing.T) {
	down := generation.GeneratorFunc(func(context.Context, *types.ProductData, types.Platform, types.SectionKey) (string, error) {
		return "", errors.New("model down")
	})
	env := newTestServer(t, pipeline.ReviewAuto, Config{Generator: down})
	base := "/products/p1/sections/otto"

	rec := env.do(t, http.MethodPost, base+"/hero/generate", productBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, true, body["usedFallback"])
	assert.NotEmpty(t, body["content"])

	rec = env.do(t, http.MethodPost, base+"/sweep", productBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeMap(t, rec)
	assert.Equal(t, false, body["complete"])
	for _, raw := range body["sections"].([]any) {
		st := raw.(map[string]any)
		if st["enabled"] == true {
			assert.Equal(t, "error", st["status"], st["section"])
		}
	}
}

func TestSections_Errors(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "unknown platform", method: http.MethodGet, path: "/products/p1/sections/walmart"},
		{name: "unknown section", method: http.MethodPost, path: "/products/p1/sections/amazon/pricing/generate", body: productBody},
		{name: "missing product", method: http.MethodPost, path: "/products/p1/sections/amazon/hero/generate", body: `{}`},
		{name: "bad toggle body", method: http.MethodPost, path: "/products/p1/sections/amazon/hero/toggle", body: `{"enabled": "yes"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{
		RateLimit: &ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  2,
			DefaultWindow: time.Hour,
		},
	})

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodGet, "/platforms", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := env.do(t, http.MethodGet, "/platforms", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limit_exceeded", decodeMap(t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestServer(t, pipeline.ReviewAuto, Config{})

	rec := env.do(t, http.MethodOptions, "/pipelines", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
