package models

import "time"

// TestStatus is the four-state terminal status of a step.
type TestStatus string

const (
	StatusPassed  TestStatus = "passed"
	StatusFailed  TestStatus = "failed"
	StatusSkipped TestStatus = "skipped"
	StatusError   TestStatus = "error"
)

// TestResult is the write-once record of one step's execution. It is
// appended to the owning context's result log and never mutated afterwards.
type TestResult struct {
	Step       string            `json:"step"`
	Status     TestStatus        `json:"status"`
	Duration   time.Duration     `json:"duration"`
	Error      string            `json:"error,omitempty"`
	Assertions []AssertionResult `json:"assertions,omitempty"`
	StatusCode int               `json:"statusCode,omitempty"`
	Response   any               `json:"-"`
}

// SuiteResult aggregates one script's execution. Errored steps count as
// failed in the aggregate, so Passed+Failed+Skipped always equals
// len(Results).
type SuiteResult struct {
	Script   string        `json:"script"`
	Category Category      `json:"category"`
	Status   TestStatus    `json:"status"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	Results  []TestResult  `json:"results"`
	Started  time.Time     `json:"started"`
	Ended    time.Time     `json:"ended"`
	Duration time.Duration `json:"duration"`
}

// Add appends a step result and keeps the aggregate counts in sync.
func (s *SuiteResult) Add(r TestResult) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusPassed:
		s.Passed++
	case StatusSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Finalize stamps the end time and derives the suite status: failed if any
// step failed or errored, skipped if every step was skipped, else passed.
func (s *SuiteResult) Finalize() {
	s.Ended = time.Now()
	s.Duration = s.Ended.Sub(s.Started)
	switch {
	case s.Failed > 0:
		s.Status = StatusFailed
	case len(s.Results) > 0 && s.Skipped == len(s.Results):
		s.Status = StatusSkipped
	default:
		s.Status = StatusPassed
	}
}
