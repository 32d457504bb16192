package action

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musclemap/apiprobe/pkg/models"
)

// countingAction increments a counter each time it executes.
func countingAction(counter *atomic.Int64) models.Action {
	return models.Action{
		Type:   models.ActionSetVariable,
		Params: map[string]any{"variable": "_count"},
		Resolver: func(*models.TestContext) any {
			return counter.Add(1)
		},
	}
}

// failingAction always produces a failed result.
func failingAction() models.Action {
	return models.Action{Type: "always_fails"}
}

func TestConditionalFalsePredicateRunsNothing(t *testing.T) {
	e := newTestExecutor(t)
	tc := newTestContext("")
	var counter atomic.Int64

	res := e.Execute(context.Background(), models.Action{
		Type:      models.ActionConditional,
		Predicate: func(*models.TestContext) bool { return false },
		Children:  []models.Action{countingAction(&counter)},
	}, tc)

	assert.True(t, res.Success)
	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["ran"])
	assert.Equal(t, int64(0), counter.Load(), "no nested action may be invoked")
}

func TestConditionalTrueRunsSequentiallyStoppingAtFirstFailure(t *testing.T) {
	e := newTestExecutor(t)
	tc := newTestContext("")
	var before, after atomic.Int64

	res := e.Execute(context.Background(), models.Action{
		Type:      models.ActionConditional,
		Predicate: func(*models.TestContext) bool { return true },
		Children: []models.Action{
			countingAction(&before),
			failingAction(),
			countingAction(&after),
		},
	}, tc)

	assert.False(t, res.Success)
	assert.Equal(t, int64(1), before.Load())
	assert.Equal(t, int64(0), after.Load(), "actions after the failure must not run")
}

func TestConditionalBoolParam(t *testing.T) {
	e := newTestExecutor(t)
	tc := newTestContext("")
	var counter atomic.Int64

	res := e.Execute(context.Background(), models.Action{
		Type:     models.ActionConditional,
		Params:   map[string]any{"condition": true},
		Children: []models.Action{countingAction(&counter)},
	}, tc)

	assert.True(t, res.Success)
	assert.Equal(t, int64(1), counter.Load())
}

func TestLoopRunsEveryIteration(t *testing.T) {
	e := newTestExecutor(t)
	tc := newTestContext("")
	var counter atomic.Int64
	var seenIndices []int
	var mu sync.Mutex

	indexRecorder := models.Action{
		Type:   models.ActionSetVariable,
		Params: map[string]any{"variable": "_idx"},
		Resolver: func(tc *models.TestContext) any {
			v, _ := tc.GetVar(models.LoopIndexVar)
			mu.Lock()
			seenIndices = append(seenIndices, v.(int))
			mu.Unlock()
			counter.Add(1)
			return v
		},
	}

	res := e.Execute(context.Background(), models.Action{
		Type:     models.ActionLoop,
		Params:   map[string]any{"iterations": 3},
		Children: []models.Action{indexRecorder},
	}, tc)

	assert.True(t, res.Success)
	assert.Equal(t, int64(3), counter.Load())
	assert.Equal(t, []int{0, 1, 2}, seenIndices)
}

// A failure inside iteration i stops that iteration's remaining actions but
// later iterations still run; the loop's overall success ANDs all
// iterations.
func TestLoopFailureContinuesWithNextIteration(t *testing.T) {
	e := newTestExecutor(t)
	tc := newTestContext("")
	var first, last atomic.Int64

	failOnIterationOne := models.Action{
		Type:      models.ActionConditional,
		Predicate: func(tc *models.TestContext) bool { v, _ := tc.GetVar(models.LoopIndexVar); return v == 1 },
		Children:  []models.Action{failingAction()},
	}

	res := e.Execute(context.Background(), models.Action{
		Type:   models.ActionLoop,
		Params: map[string]any{"iterations": 3},
		Children: []models.Action{
			countingAction(&first),
			failOnIterationOne,
			countingAction(&last),
		},
	}, tc)

	assert.False(t, res.Success)
	data := res.Data.(map[string]any)
	assert.Equal(t, 1, data["failedIterations"])
	assert.Equal(t, int64(3), first.Load(), "first action runs in every iteration")
	assert.Equal(t, int64(2), last.Load(), "last action is skipped only in the failed iteration")
}

func TestParallelRunsAllChildrenAndJoins(t *testing.T) {
	e := newTestExecutor(t)
	tc := newTestContext("")
	var counter atomic.Int64

	res := e.Execute(context.Background(), models.Action{
		Type: models.ActionParallel,
		Children: []models.Action{
			countingAction(&counter),
			countingAction(&counter),
			countingAction(&counter),
		},
	}, tc)

	assert.True(t, res.Success)
	assert.Equal(t, int64(3), counter.Load())
}

func TestParallelOneFailureFailsTheGroupButAllRun(t *testing.T) {
	e := newTestExecutor(t)
	tc := newTestContext("")
	var counter atomic.Int64

	res := e.Execute(context.Background(), models.Action{
		Type: models.ActionParallel,
		Children: []models.Action{
			countingAction(&counter),
			failingAction(),
			countingAction(&counter),
		},
	}, tc)

	assert.False(t, res.Success)
	assert.Contains(t, res.Err, "unknown action type")
	assert.Equal(t, int64(2), counter.Load(), "members run to completion regardless of sibling failures")
}

func TestNestedControlFlow(t *testing.T) {
	e := newTestExecutor(t)
	tc := newTestContext("")
	var counter atomic.Int64

	// loop { parallel { count, count } } with 2 iterations = 4 invocations
	res := e.Execute(context.Background(), models.Action{
		Type:   models.ActionLoop,
		Params: map[string]any{"iterations": 2},
		Children: []models.Action{{
			Type: models.ActionParallel,
			Children: []models.Action{
				countingAction(&counter),
				countingAction(&counter),
			},
		}},
	}, tc)

	assert.True(t, res.Success)
	assert.Equal(t, int64(4), counter.Load())
}
