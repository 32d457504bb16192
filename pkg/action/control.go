package action

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/musclemap/apiprobe/pkg/models"
)

// conditional evaluates its predicate against the context. When true, the
// nested actions run sequentially, stopping at the first failure; when
// false, the action succeeds with ran=false and no children execute.
func (e *Executor) conditional(ctx context.Context, act models.Action, tc *models.TestContext) models.ActionResult {
	run := false
	switch {
	case act.Predicate != nil:
		run = act.Predicate(tc)
	default:
		if b, ok := boolParam(act.Params, "condition"); ok {
			run = b
		} else if s := stringParam(act.Params, "condition", ""); s != "" {
			parsed, err := strconv.ParseBool(Interpolate(s, tc))
			run = err == nil && parsed
		}
	}

	if !run {
		return models.ActionResult{Success: true, Data: map[string]any{"ran": false}}
	}

	results := make([]models.ActionResult, 0, len(act.Children))
	success := true
	for _, child := range act.Children {
		res := e.Execute(ctx, child, tc)
		results = append(results, res)
		if !res.Success {
			success = false
			break
		}
	}

	out := models.ActionResult{
		Success: success,
		Data:    map[string]any{"ran": true, "results": results},
	}
	if !success {
		out.Err = lastError(results)
	}
	return out
}

// loop repeats the nested actions `iterations` times. A failure stops the
// remaining actions of the current iteration only; later iterations still
// run, and the loop's success is the AND across all iterations. The current
// index is exposed to children through the reserved loop_index variable.
func (e *Executor) loop(ctx context.Context, act models.Action, tc *models.TestContext) models.ActionResult {
	iterations := intParam(act.Params, "iterations", 1)
	delay := durationParam(act.Params, "delay")

	failures := 0
	var lastErr string
	for i := 0; i < iterations; i++ {
		tc.SetVar(models.LoopIndexVar, i)
		for _, child := range act.Children {
			res := e.Execute(ctx, child, tc)
			if !res.Success {
				failures++
				lastErr = res.Err
				break
			}
		}
		if delay > 0 && i < iterations-1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return models.ActionResult{Err: ctx.Err().Error()}
			}
		}
	}

	out := models.ActionResult{
		Success: failures == 0,
		Data:    map[string]any{"iterations": iterations, "failedIterations": failures},
	}
	if failures > 0 {
		out.Err = fmt.Sprintf("%d of %d iterations failed: %s", failures, iterations, lastErr)
	}
	return out
}

// parallel starts every child concurrently and joins: all members run to
// completion before the result is computed, and success requires all of
// them to succeed. Siblings share the owning context but must not depend on
// each other's mutations; there is no ordering guarantee between them.
func (e *Executor) parallel(ctx context.Context, act models.Action, tc *models.TestContext) models.ActionResult {
	results := make([]models.ActionResult, len(act.Children))
	g := new(errgroup.Group)
	for i, child := range act.Children {
		i, child := i, child
		g.Go(func() error {
			results[i] = e.Execute(ctx, child, tc)
			return nil
		})
	}
	// Execute never returns an error; Wait is purely the join barrier.
	_ = g.Wait()

	success := true
	for _, res := range results {
		if !res.Success {
			success = false
			break
		}
	}
	out := models.ActionResult{
		Success: success,
		Data:    map[string]any{"results": results},
	}
	if !success {
		out.Err = lastError(results)
	}
	return out
}

func lastError(results []models.ActionResult) string {
	for i := len(results) - 1; i >= 0; i-- {
		if !results[i].Success {
			if results[i].Err != "" {
				return results[i].Err
			}
			return "nested action failed"
		}
	}
	return ""
}
