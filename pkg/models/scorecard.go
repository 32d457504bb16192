package models

import "time"

// Severity ranks a recommendation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ScoreSummary totals a run.
type ScoreSummary struct {
	Total       int           `json:"total"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	PassRate    float64       `json:"passRate"`
	AvgDuration time.Duration `json:"avgDuration"`
}

// CategoryScore grades one category independently.
type CategoryScore struct {
	Category Category      `json:"category"`
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Skipped  int           `json:"skipped"`
	PassRate float64       `json:"passRate"`
	Grade    string        `json:"grade"`
	Duration time.Duration `json:"duration"`
}

// Recommendation is a synthesized finding with remediation advice.
type Recommendation struct {
	Severity      Severity `json:"severity"`
	Message       string   `json:"message"`
	Suggestion    string   `json:"suggestion"`
	AffectedTests []string `json:"affectedTests,omitempty"`
}

// Scorecard is the graded summary of a completed run. It is computed once
// from SuiteResult data and then only ever serialized.
type Scorecard struct {
	RunID           string           `json:"runId"`
	Env             string           `json:"env"`
	Persona         string           `json:"persona,omitempty"`
	Duration        time.Duration    `json:"duration"`
	Summary         ScoreSummary     `json:"summary"`
	Categories      []CategoryScore  `json:"categories"`
	Recommendations []Recommendation `json:"recommendations"`
	Grade           string           `json:"grade"`
}

// GradeFor maps a pass rate (percent) to a letter grade. The table is
// fixed: >=98 A+, >=90 A, >=80 B, >=70 C, >=60 D, else F.
func GradeFor(passRate float64) string {
	switch {
	case passRate >= 98:
		return "A+"
	case passRate >= 90:
		return "A"
	case passRate >= 80:
		return "B"
	case passRate >= 70:
		return "C"
	case passRate >= 60:
		return "D"
	default:
		return "F"
	}
}
