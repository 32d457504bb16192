package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/musclemap/apiprobe/config"
	"github.com/musclemap/apiprobe/pkg/models"
)

func newOrchestrator(t *testing.T, baseURL string, mutate func(*config.Config)) *Orchestrator {
	t.Helper()
	cfg := config.New()
	cfg.Timeout = 2
	if mutate != nil {
		mutate(cfg)
	}
	return New(zap.NewNop(), cfg, baseURL, nil)
}

func getStep(name, path string, status int) models.TestStep {
	return models.TestStep{
		Name: name,
		Action: models.Action{
			Type: models.ActionHTTPRequest,
			Params: map[string]any{
				"method":         "GET",
				"path":           path,
				"expectedStatus": []any{status},
			},
		},
		Retries: -1,
	}
}

func TestRunSuiteAllPassing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, nil)
	script := &models.TestScript{
		Name:     "health",
		Category: models.CategoryCore,
		Steps:    []models.TestStep{getStep("first", "/health", 200), getStep("second", "/ready", 200)},
	}
	tc := models.NewTestContext("local", srv.URL, nil, false)

	sr := o.RunSuite(context.Background(), script, tc)

	assert.Equal(t, models.StatusPassed, sr.Status)
	assert.Equal(t, 2, sr.Passed)
	assert.Equal(t, 0, sr.Failed)
	assert.Equal(t, sr.Passed+sr.Failed+sr.Skipped, len(sr.Results))
}

func TestRunStepRetryUntilSuccess(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, nil)
	script := &models.TestScript{Name: "retry", Category: models.CategoryCore}
	step := getStep("flaky", "/flaky", 200)
	step.Retries = 2
	tc := models.NewTestContext("local", srv.URL, nil, false)

	start := time.Now()
	result := o.RunStep(context.Background(), script, &step, tc)

	assert.Equal(t, models.StatusPassed, result.Status)
	assert.Equal(t, int64(3), hits.Load(), "exactly retries+1 attempts")
	// backoff before attempts 1 and 2: 500ms + 1s
	assert.GreaterOrEqual(t, time.Since(start), 1500*time.Millisecond)
}

func TestRunStepUsesConfiguredRetriesWhenScriptInherits(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, func(c *config.Config) { c.Retries = 2 })
	// A script parsed from YAML without defaultRetries inherits the
	// run-level count.
	script := &models.TestScript{Name: "inherit", Category: models.CategoryCore, DefaultRetries: -1}
	step := getStep("flaky", "/flaky", 200)
	tc := models.NewTestContext("local", srv.URL, nil, false)

	result := o.RunStep(context.Background(), script, &step, tc)

	assert.Equal(t, models.StatusPassed, result.Status)
	assert.Equal(t, int64(3), hits.Load(), "--retries drives the attempt count")
}

func TestRunStepAlwaysErroringEndsInErrorStatus(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		// Kill the connection so the client sees a transport error.
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, nil)
	script := &models.TestScript{Name: "down", Category: models.CategoryCore}
	step := getStep("dead", "/dead", 200)
	step.Retries = 2
	tc := models.NewTestContext("local", srv.URL, nil, false)

	result := o.RunStep(context.Background(), script, &step, tc)

	assert.Equal(t, models.StatusError, result.Status)
	assert.Equal(t, int64(3), hits.Load(), "3 total attempts for retries=2")
	assert.NotEmpty(t, result.Error)
}

func TestRunStepAssertionFailureForcesFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"items":[]}}`))
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, nil)
	script := &models.TestScript{Name: "assert", Category: models.CategoryCore}
	step := getStep("list", "/items", 200)
	step.Assertions = []models.Assertion{
		{Type: models.AssertHasLength, Path: "data.items", Expected: 3},
	}
	tc := models.NewTestContext("local", srv.URL, nil, false)

	result := o.RunStep(context.Background(), script, &step, tc)

	assert.Equal(t, models.StatusFailed, result.Status, "action succeeded but assertion failed")
	require.Len(t, result.Assertions, 1)
	assert.False(t, result.Assertions[0].Passed)
	assert.NotEmpty(t, result.Error)
}

func TestRunStepAssertionFailureIsNotRetried(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"n":1}`))
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, nil)
	script := &models.TestScript{Name: "assert", Category: models.CategoryCore}
	step := getStep("once", "/n", 200)
	step.Retries = 3
	step.Assertions = []models.Assertion{{Type: models.AssertEquals, Path: "n", Expected: 2}}
	tc := models.NewTestContext("local", srv.URL, nil, false)

	result := o.RunStep(context.Background(), script, &step, tc)

	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Equal(t, int64(1), hits.Load(), "completed responses are never retried for assertion failures")
}

func TestRunStepSkip(t *testing.T) {
	o := newOrchestrator(t, "http://unused", nil)
	script := &models.TestScript{Name: "s", Category: models.CategoryCore}
	tc := models.NewTestContext("local", "http://unused", nil, false)

	static := models.TestStep{Name: "static", Skip: true, Retries: -1}
	result := o.RunStep(context.Background(), script, &static, tc)
	assert.Equal(t, models.StatusSkipped, result.Status)

	dynamic := models.TestStep{
		Name:     "dynamic",
		Retries:  -1,
		SkipFunc: func(tc *models.TestContext) bool { _, ok := tc.GetVar("premium"); return !ok },
	}
	result = o.RunStep(context.Background(), script, &dynamic, tc)
	assert.Equal(t, models.StatusSkipped, result.Status)
}

func TestRunSuiteAllSkippedIsSkipped(t *testing.T) {
	o := newOrchestrator(t, "http://unused", nil)
	script := &models.TestScript{
		Name:     "disabled",
		Category: models.CategoryCore,
		Steps: []models.TestStep{
			{Name: "a", Skip: true, Retries: -1},
			{Name: "b", Skip: true, Retries: -1},
		},
	}
	tc := models.NewTestContext("local", "http://unused", nil, false)

	sr := o.RunSuite(context.Background(), script, tc)
	assert.Equal(t, models.StatusSkipped, sr.Status)
	assert.Equal(t, 2, sr.Skipped)
}

func TestRunSuiteFailFastStopsAfterFailure(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, func(c *config.Config) { c.FailFast = true })
	script := &models.TestScript{
		Name:     "ff",
		Category: models.CategoryCore,
		Steps:    []models.TestStep{getStep("a", "/a", 200), getStep("b", "/b", 200)},
	}
	tc := models.NewTestContext("local", srv.URL, nil, false)

	sr := o.RunSuite(context.Background(), script, tc)
	assert.Equal(t, models.StatusFailed, sr.Status)
	assert.Len(t, sr.Results, 1, "second step must not run under fail-fast")
	assert.Equal(t, int64(1), hits.Load())
}

func TestRunSuiteTeardownAlwaysRuns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	teardownRan := false
	o := newOrchestrator(t, srv.URL, nil)
	script := &models.TestScript{
		Name:     "td",
		Category: models.CategoryCore,
		Steps:    []models.TestStep{getStep("a", "/a", 200)},
		Teardown: func(context.Context, *models.TestContext) error {
			teardownRan = true
			return nil
		},
	}
	tc := models.NewTestContext("local", srv.URL, nil, false)

	sr := o.RunSuite(context.Background(), script, tc)
	assert.Equal(t, models.StatusFailed, sr.Status)
	assert.True(t, teardownRan)
}

func TestStepTeardownRunsAfterAssertionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"n":1}`))
	}))
	defer srv.Close()

	teardownRan := false
	o := newOrchestrator(t, srv.URL, nil)
	script := &models.TestScript{Name: "s", Category: models.CategoryCore}
	step := getStep("a", "/n", 200)
	step.Assertions = []models.Assertion{{Type: models.AssertEquals, Path: "n", Expected: 2}}
	step.Teardown = func(context.Context, *models.TestContext) error {
		teardownRan = true
		return nil
	}
	tc := models.NewTestContext("local", srv.URL, nil, false)

	result := o.RunStep(context.Background(), script, &step, tc)
	assert.Equal(t, models.StatusFailed, result.Status)
	assert.True(t, teardownRan)
}

func TestVariableVisibilityAcrossSteps(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, nil)
	script := &models.TestScript{
		Name:     "vars",
		Category: models.CategoryCore,
		Steps: []models.TestStep{
			{
				Name: "set",
				Action: models.Action{
					Type:   models.ActionSetVariable,
					Params: map[string]any{"variable": "id", "value": "w7"},
				},
				Retries: -1,
			},
			{
				Name: "use",
				Action: models.Action{
					Type:   models.ActionHTTPRequest,
					Params: map[string]any{"path": "/workouts/{{id}}"},
				},
				Retries: -1,
			},
		},
	}
	tc := models.NewTestContext("local", srv.URL, nil, false)

	sr := o.RunSuite(context.Background(), script, tc)
	assert.Equal(t, models.StatusPassed, sr.Status)
	assert.Equal(t, "/workouts/w7", gotPath, "step N's variables are visible to step N+1")
}

func TestFilter(t *testing.T) {
	scripts := []*models.TestScript{
		{Name: "workout-crud", Category: models.CategoryWorkouts, Personas: []string{"casual"}},
		{Name: "auth-flows", Category: models.CategoryAuth},
		{Name: "workout-sharing", Category: models.CategorySocial, Personas: []string{"premium"}},
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   []string
	}{
		{name: "no filter", mutate: nil, want: []string{"workout-crud", "auth-flows", "workout-sharing"}},
		{name: "category", mutate: func(c *config.Config) { c.Category = "workouts" }, want: []string{"workout-crud"}},
		{name: "name substring", mutate: func(c *config.Config) { c.Suite = "workout" }, want: []string{"workout-crud", "workout-sharing"}},
		{name: "persona", mutate: func(c *config.Config) { c.Persona = "premium" }, want: []string{"auth-flows", "workout-sharing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrchestrator(t, "http://unused", tt.mutate)
			var got []string
			for _, s := range o.Filter(scripts) {
				got = append(got, s.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunParallelUsesIndependentContexts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, func(c *config.Config) { c.Parallel = true })
	scripts := []*models.TestScript{
		{Name: "a", Category: models.CategoryCore, Steps: []models.TestStep{getStep("s", "/a", 200)}},
		{Name: "b", Category: models.CategoryCore, Steps: []models.TestStep{getStep("s", "/b", 200)}},
		{Name: "c", Category: models.CategoryCore, Steps: []models.TestStep{getStep("s", "/c", 200)}},
	}

	results, err := o.Run(context.Background(), scripts)
	require.NoError(t, err)
	require.Len(t, results, 3)
	names := map[string]bool{}
	for _, sr := range results {
		names[sr.Script] = true
		assert.Equal(t, models.StatusPassed, sr.Status)
	}
	assert.Len(t, names, 3, "every script produced its own suite result")
}

func TestRunSequentialFailFastAbortsRemainingScripts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, func(c *config.Config) { c.FailFast = true })
	scripts := []*models.TestScript{
		{Name: "first", Category: models.CategoryCore, Steps: []models.TestStep{getStep("s", "/x", 200)}},
		{Name: "second", Category: models.CategoryCore, Steps: []models.TestStep{getStep("s", "/y", 200)}},
	}

	results, err := o.Run(context.Background(), scripts)
	require.NoError(t, err)
	assert.Len(t, results, 1, "run-level fail-fast aborts remaining scripts")
}

func TestAuthenticateRegisterSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":"u-9"}}`))
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, nil)
	persona := &models.Persona{Name: "casual", Email: "c@musclemap.me", Password: "pw"}
	tc := models.NewTestContext("local", srv.URL, persona, false)

	ok := o.Authenticate(context.Background(), tc)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", tc.AuthToken)
	assert.Equal(t, "u-9", tc.UserID)
}

func TestAuthenticateFallsBackToLoginOnConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/register":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"exists"}`))
		case "/auth/login":
			_, _ = w.Write([]byte(`{"data":{"token":"tok-2","user":{"id":"u-1"}}}`))
		}
	}))
	defer srv.Close()

	o := newOrchestrator(t, srv.URL, nil)
	persona := &models.Persona{Name: "casual", Email: "c@musclemap.me", Password: "pw"}
	tc := models.NewTestContext("local", srv.URL, persona, false)

	ok := o.Authenticate(context.Background(), tc)
	assert.True(t, ok)
	assert.Equal(t, "tok-2", tc.AuthToken)
}

func TestAuthenticateNoPersona(t *testing.T) {
	o := newOrchestrator(t, "http://unused", nil)
	tc := models.NewTestContext("local", "http://unused", nil, false)
	assert.False(t, o.Authenticate(context.Background(), tc))
}
