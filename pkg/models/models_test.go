package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCategory("  Workouts ")
	require.NoError(t, err)
	assert.Equal(t, CategoryWorkouts, got)

	_, err = ParseCategory("cardio")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edge-cases", "error lists every valid category")
}

func TestSuiteResultCountsStayConsistent(t *testing.T) {
	var sr SuiteResult
	sr.Add(TestResult{Step: "a", Status: StatusPassed})
	sr.Add(TestResult{Step: "b", Status: StatusFailed})
	sr.Add(TestResult{Step: "c", Status: StatusError})
	sr.Add(TestResult{Step: "d", Status: StatusSkipped})
	sr.Finalize()

	assert.Equal(t, 1, sr.Passed)
	assert.Equal(t, 2, sr.Failed, "errored steps count as failed in the aggregate")
	assert.Equal(t, 1, sr.Skipped)
	assert.Equal(t, len(sr.Results), sr.Passed+sr.Failed+sr.Skipped)
	assert.Equal(t, StatusFailed, sr.Status)
	// Per-result status keeps the four-state detail.
	assert.Equal(t, StatusError, sr.Results[2].Status)
}

func TestSuiteResultFinalize(t *testing.T) {
	var empty SuiteResult
	empty.Finalize()
	assert.Equal(t, StatusPassed, empty.Status)

	var skipped SuiteResult
	skipped.Add(TestResult{Status: StatusSkipped})
	skipped.Add(TestResult{Status: StatusSkipped})
	skipped.Finalize()
	assert.Equal(t, StatusSkipped, skipped.Status)

	var mixed SuiteResult
	mixed.Add(TestResult{Status: StatusPassed})
	mixed.Add(TestResult{Status: StatusSkipped})
	mixed.Finalize()
	assert.Equal(t, StatusPassed, mixed.Status)
}

func TestEffectiveTimeoutAndRetries(t *testing.T) {
	script := &TestScript{DefaultTimeout: 10 * time.Second, DefaultRetries: 2}

	step := TestStep{Retries: -1}
	assert.Equal(t, 10*time.Second, step.EffectiveTimeout(script))
	assert.Equal(t, 2, step.EffectiveRetries(script))

	step = TestStep{Timeout: 3 * time.Second, Retries: 0}
	assert.Equal(t, 3*time.Second, step.EffectiveTimeout(script))
	assert.Equal(t, 0, step.EffectiveRetries(script), "explicit zero disables retries")
}

func TestActionResultErrored(t *testing.T) {
	transport := ActionResult{Success: false, Err: "connection refused"}
	assert.True(t, transport.Errored())

	wrongStatus := ActionResult{Success: false, Err: "expected status 200, got 404", StatusCode: 404, Data: map[string]any{}}
	assert.False(t, wrongStatus.Errored(), "a completed response is a failure, not an error")

	ok := ActionResult{Success: true, StatusCode: 200}
	assert.False(t, ok.Errored())
}

func TestTestContextVars(t *testing.T) {
	tc := NewTestContext("local", "http://localhost:3000", nil, false)
	assert.NotEmpty(t, tc.RunID)

	seeded, ok := tc.GetVar("run_id")
	require.True(t, ok)
	assert.Equal(t, tc.RunID, seeded)

	_, ok = tc.GetVar("missing")
	assert.False(t, ok)

	tc.SetVar("token", "abc")
	v, ok := tc.GetVar("token")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	vars := tc.Vars()
	vars["token"] = "mutated"
	v, _ = tc.GetVar("token")
	assert.Equal(t, "abc", v, "Vars returns a copy")
}

func TestGradeForBoundaries(t *testing.T) {
	assert.Equal(t, "A+", GradeFor(100))
	assert.Equal(t, "A+", GradeFor(98))
	assert.Equal(t, "A", GradeFor(90))
	assert.Equal(t, "B", GradeFor(80))
	assert.Equal(t, "C", GradeFor(70))
	assert.Equal(t, "D", GradeFor(60))
	assert.Equal(t, "F", GradeFor(59.99))
}
