// Package models holds the shared data model of the test engine: scripts,
// steps, actions, assertions, results and scorecards.
package models

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Category classifies a test script. The set is closed; anything else is a
// configuration error.
type Category string

const (
	CategoryCore         Category = "core"
	CategoryAuth         Category = "auth"
	CategoryProfile      Category = "profile"
	CategoryWorkouts     Category = "workouts"
	CategoryExercises    Category = "exercises"
	CategorySocial       Category = "social"
	CategoryEconomy      Category = "economy"
	CategoryAchievements Category = "achievements"
	CategoryCompetitions Category = "competitions"
	CategorySettings     Category = "settings"
	CategoryGraphQL      Category = "graphql"
	CategoryStress       Category = "stress"
	CategorySecurity     Category = "security"
	CategoryEdgeCases    Category = "edge-cases"
)

// Categories lists every valid category, in a stable order.
func Categories() []Category {
	return []Category{
		CategoryCore, CategoryAuth, CategoryProfile, CategoryWorkouts,
		CategoryExercises, CategorySocial, CategoryEconomy,
		CategoryAchievements, CategoryCompetitions, CategorySettings,
		CategoryGraphQL, CategoryStress, CategorySecurity, CategoryEdgeCases,
	}
}

// ParseCategory validates a category name. The error message carries the
// full list of valid values so operators can correct a typo in one round.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Categories() {
		if c == valid {
			return c, nil
		}
	}
	names := make([]string, 0, len(Categories()))
	for _, valid := range Categories() {
		names = append(names, string(valid))
	}
	return "", fmt.Errorf("unknown category %q, must be one of: %s", s, strings.Join(names, ", "))
}

// Hook runs before or after a step or script. Returning an error from a
// setup hook fails the step; teardown errors are logged and swallowed.
type Hook func(ctx context.Context, tc *TestContext) error

// TestScript is an ordered list of steps with a category and the personas it
// needs. Scripts are immutable once loaded; the catalog owns them.
type TestScript struct {
	Name        string
	Description string
	Category    Category
	Personas    []string
	Steps       []TestStep
	Setup       Hook
	Teardown    Hook

	// DefaultTimeout and DefaultRetries apply to steps that don't set
	// their own. DefaultRetries of -1 means "use the run-level retry
	// count".
	DefaultTimeout time.Duration
	DefaultRetries int
}

// TestStep is one unit of a script. Steps are read-only during execution.
type TestStep struct {
	Name       string
	Action     Action
	Assertions []Assertion

	// Timeout of zero means "use the script default, else the protocol
	// default". Retries of -1 means "use the script default".
	Timeout time.Duration
	Retries int

	// Skip statically disables the step; SkipFunc decides per run. Either
	// being true marks the step skipped without dispatching its action.
	Skip     bool
	SkipFunc func(tc *TestContext) bool

	Setup    Hook
	Teardown Hook
}

// EffectiveRetries resolves the step's retry count against the script
// default. A negative result means neither set one and the run-level
// count applies.
func (s *TestStep) EffectiveRetries(script *TestScript) int {
	if s.Retries >= 0 {
		return s.Retries
	}
	return script.DefaultRetries
}

// EffectiveTimeout resolves the step's timeout against the script default;
// zero means the caller should fall back to the protocol default.
func (s *TestStep) EffectiveTimeout(script *TestScript) time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return script.DefaultTimeout
}
