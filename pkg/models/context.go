package models

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// LoopIndexVar is the reserved variable through which loop actions expose
// the current iteration index to their children.
const LoopIndexVar = "loop_index"

// Persona is a named test-user fixture: credentials plus entitlement flags.
// The catalog owns the definitions; the engine only reads them.
type Persona struct {
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
	Premium  bool   `json:"premium" yaml:"premium"`
	Admin    bool   `json:"admin" yaml:"admin"`
}

// TestContext is the run-scoped mutable state: variables, auth token,
// base URL and the accumulated result log. One context is created per
// suite run (or per parallel branch) and is owned by exactly one flow of
// control. The variable store is still guarded because parallel actions
// inside a single step share their owner's context.
type TestContext struct {
	RunID     string
	Env       string
	BaseURL   string
	Persona   *Persona
	Verbose   bool
	AuthToken string
	UserID    string

	// CurrentStep points at the step being executed, for nested lookups
	// such as the per-step timeout. Owned by the orchestrator.
	CurrentStep *TestStep

	mu      sync.RWMutex
	vars    map[string]any
	results []TestResult
}

// NewTestContext creates a fresh context for one execution flow. The run ID
// is seeded as the run_id variable so scripts can build unique fixtures.
func NewTestContext(env, baseURL string, persona *Persona, verbose bool) *TestContext {
	tc := &TestContext{
		RunID:   uuid.NewString(),
		Env:     env,
		BaseURL: baseURL,
		Persona: persona,
		Verbose: verbose,
		vars:    make(map[string]any),
	}
	tc.vars["run_id"] = tc.RunID
	return tc
}

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Interpolate replaces {{name}} placeholders with the context's variable
// values. Unknown names are left in place so failures stay diagnosable.
func (tc *TestContext) Interpolate(input string) string {
	if input == "" || !strings.Contains(input, "{{") {
		return input
	}
	return placeholderRe.ReplaceAllStringFunc(input, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		if v, ok := tc.GetVar(name); ok {
			return fmt.Sprintf("%v", v)
		}
		return match
	})
}

// SetVar stores a variable; step N's writes are visible to step N+1.
func (tc *TestContext) SetVar(name string, value any) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.vars[name] = value
}

// GetVar looks up a variable by name.
func (tc *TestContext) GetVar(name string) (any, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	v, ok := tc.vars[name]
	return v, ok
}

// Vars returns a copy of the variable store, for diagnostics.
func (tc *TestContext) Vars() map[string]any {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	out := make(map[string]any, len(tc.vars))
	for k, v := range tc.vars {
		out[k] = v
	}
	return out
}

// AddResult appends to the context's result log.
func (tc *TestContext) AddResult(r TestResult) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.results = append(tc.results, r)
}

// Results returns a snapshot of the accumulated result log.
func (tc *TestContext) Results() []TestResult {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	out := make([]TestResult, len(tc.results))
	copy(out, tc.results)
	return out
}
