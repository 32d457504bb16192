package models

import "time"

// ActionType tags the union of executable actions.
type ActionType string

const (
	ActionHTTPRequest     ActionType = "http_request"
	ActionGraphQLQuery    ActionType = "graphql_query"
	ActionGraphQLMutation ActionType = "graphql_mutation"
	ActionWait            ActionType = "wait"
	ActionSetVariable     ActionType = "set_variable"
	ActionLog             ActionType = "log"
	ActionConditional     ActionType = "conditional"
	ActionLoop            ActionType = "loop"
	ActionParallel        ActionType = "parallel"
)

// Action is one dispatchable unit of work. Control-flow actions carry
// nested actions, so the model is recursive.
type Action struct {
	Type   ActionType
	Params map[string]any

	// Children are executed by conditional (sequentially when the
	// predicate holds), loop (sequentially per iteration) and parallel
	// (concurrently, joined).
	Children []Action

	// Predicate overrides the "condition" param for programmatic
	// conditionals. Resolver overrides the "value" param for programmatic
	// set_variable actions.
	Predicate func(tc *TestContext) bool
	Resolver  func(tc *TestContext) any
}

// ActionResult is produced exactly once per action invocation and consumed
// immediately by the caller. A failed underlying operation surfaces here as
// Success=false with Err populated; executors never return Go errors.
type ActionResult struct {
	Success    bool
	Data       any
	StatusCode int
	Headers    map[string]string
	Err        string
	Duration   time.Duration
}

// Errored reports whether the action never completed at all (network
// failure, timeout, unknown action type), as opposed to completing with an
// unexpected outcome. The distinction drives the step state machine: only
// completed actions have a payload worth asserting on.
func (r *ActionResult) Errored() bool {
	return !r.Success && r.Err != "" && r.StatusCode == 0 && r.Data == nil
}
