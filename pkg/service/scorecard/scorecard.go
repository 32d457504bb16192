// Package scorecard grades completed runs and renders them as console
// text, JSON, JUnit XML or HTML. Everything here is a pure function of
// SuiteResult data.
package scorecard

import (
	"fmt"
	"sort"
	"time"

	"github.com/musclemap/apiprobe/pkg/models"
)

// slowStepThreshold flags steps worth an info recommendation.
const slowStepThreshold = 5000 * time.Millisecond

// maxAffectedTests bounds the names listed per recommendation.
const maxAffectedTests = 5

// Generate computes a scorecard from the run's suite results. It is called
// once at the end of a run; the result is only ever serialized afterwards.
func Generate(runID, env, persona string, duration time.Duration, suites []models.SuiteResult) *models.Scorecard {
	sc := &models.Scorecard{
		RunID:    runID,
		Env:      env,
		Persona:  persona,
		Duration: duration,
	}

	var totalDuration time.Duration
	for _, suite := range suites {
		sc.Summary.Passed += suite.Passed
		sc.Summary.Failed += suite.Failed
		sc.Summary.Skipped += suite.Skipped
		for _, r := range suite.Results {
			totalDuration += r.Duration
		}
	}
	sc.Summary.Total = sc.Summary.Passed + sc.Summary.Failed + sc.Summary.Skipped
	sc.Summary.PassRate = passRate(sc.Summary.Passed, sc.Summary.Total)
	if sc.Summary.Total > 0 {
		sc.Summary.AvgDuration = totalDuration / time.Duration(sc.Summary.Total)
	}

	sc.Categories = categoryScores(suites)
	sc.Recommendations = recommendations(sc.Categories, suites)
	sc.Grade = models.GradeFor(sc.Summary.PassRate)
	return sc
}

// passRate treats an empty run as fully passing: nothing ran, nothing
// failed.
func passRate(passed, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(passed) / float64(total) * 100
}

// categoryScores groups suites by category, grades each independently, and
// sorts ascending by pass rate so the worst category surfaces first.
func categoryScores(suites []models.SuiteResult) []models.CategoryScore {
	byCategory := make(map[models.Category]*models.CategoryScore)
	for _, suite := range suites {
		cs, ok := byCategory[suite.Category]
		if !ok {
			cs = &models.CategoryScore{Category: suite.Category}
			byCategory[suite.Category] = cs
		}
		cs.Passed += suite.Passed
		cs.Failed += suite.Failed
		cs.Skipped += suite.Skipped
		for _, r := range suite.Results {
			cs.Duration += r.Duration
		}
	}

	out := make([]models.CategoryScore, 0, len(byCategory))
	for _, cs := range byCategory {
		cs.Total = cs.Passed + cs.Failed + cs.Skipped
		cs.PassRate = passRate(cs.Passed, cs.Total)
		cs.Grade = models.GradeFor(cs.PassRate)
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PassRate != out[j].PassRate {
			return out[i].PassRate < out[j].PassRate
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// recommendations applies the ordered synthesis rules; every applicable
// rule fires, they are not mutually exclusive.
func recommendations(categories []models.CategoryScore, suites []models.SuiteResult) []models.Recommendation {
	var recs []models.Recommendation

	for _, cs := range categories {
		switch cs.Grade {
		case "F":
			recs = append(recs, models.Recommendation{
				Severity:      models.SeverityCritical,
				Message:       fmt.Sprintf("category %s is failing (%.1f%% pass rate)", cs.Category, cs.PassRate),
				Suggestion:    fmt.Sprintf("investigate and fix the failing %s tests before the next release", cs.Category),
				AffectedTests: failingSteps(suites, cs.Category),
			})
		case "C", "D":
			recs = append(recs, models.Recommendation{
				Severity:   models.SeverityWarning,
				Message:    fmt.Sprintf("category %s is degraded (grade %s, %.1f%% pass rate)", cs.Category, cs.Grade, cs.PassRate),
				Suggestion: fmt.Sprintf("review recent changes affecting the %s endpoints", cs.Category),
			})
		}
	}

	if slow := slowSteps(suites); len(slow) > 0 {
		recs = append(recs, models.Recommendation{
			Severity:      models.SeverityInfo,
			Message:       fmt.Sprintf("%d step(s) exceeded %v", len(slow), slowStepThreshold),
			Suggestion:    "profile the slow endpoints; responses above 5s degrade the client experience",
			AffectedTests: clip(slow),
		})
	}

	skipped := 0
	for _, suite := range suites {
		skipped += suite.Skipped
	}
	if skipped > 0 {
		recs = append(recs, models.Recommendation{
			Severity:   models.SeverityInfo,
			Message:    fmt.Sprintf("%d test(s) were skipped", skipped),
			Suggestion: "re-enable skipped coverage once the blocking conditions are resolved",
		})
	}

	return recs
}

func failingSteps(suites []models.SuiteResult, category models.Category) []string {
	var names []string
	for _, suite := range suites {
		if suite.Category != category {
			continue
		}
		for _, r := range suite.Results {
			if r.Status == models.StatusFailed || r.Status == models.StatusError {
				names = append(names, r.Step)
			}
		}
	}
	return clip(names)
}

func slowSteps(suites []models.SuiteResult) []string {
	var names []string
	for _, suite := range suites {
		for _, r := range suite.Results {
			if r.Duration > slowStepThreshold {
				names = append(names, r.Step)
			}
		}
	}
	return names
}

func clip(names []string) []string {
	if len(names) > maxAffectedTests {
		return names[:maxAffectedTests]
	}
	return names
}
