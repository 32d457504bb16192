// Package action executes one unit of work per invocation: HTTP and
// GraphQL calls, delays, variable writes, logs, and the recursive
// control-flow actions (conditional, loop, parallel).
package action

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/musclemap/apiprobe/pkg/models"
)

// DefaultTimeout bounds a network call when neither the step nor the
// script sets one.
const DefaultTimeout = 30 * time.Second

type Executor struct {
	logger         *zap.Logger
	client         *http.Client
	graphqlPath    string
	defaultTimeout time.Duration
}

func New(logger *zap.Logger, graphqlPath string, defaultTimeout time.Duration) *Executor {
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}
	return &Executor{
		logger:      logger,
		graphqlPath: graphqlPath,
		client: &http.Client{
			Transport: &http.Transport{
				// staging runs self-signed certs
				//nolint:gosec
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		defaultTimeout: defaultTimeout,
	}
}

// Execute dispatches one action and produces exactly one ActionResult.
// Every failure mode, including a panicking action implementation, surfaces
// as Success=false with a populated Err; the executor never propagates an
// error to its caller.
func (e *Executor) Execute(ctx context.Context, act models.Action, tc *models.TestContext) (res models.ActionResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = models.ActionResult{Err: fmt.Sprintf("%v", r)}
		}
		res.Duration = time.Since(start)
	}()

	switch act.Type {
	case models.ActionHTTPRequest:
		res = e.httpRequest(ctx, act, tc)
	case models.ActionGraphQLQuery, models.ActionGraphQLMutation:
		res = e.graphql(ctx, act, tc)
	case models.ActionWait:
		res = e.wait(ctx, act)
	case models.ActionSetVariable:
		res = e.setVariable(act, tc)
	case models.ActionLog:
		res = e.logAction(act, tc)
	case models.ActionConditional:
		res = e.conditional(ctx, act, tc)
	case models.ActionLoop:
		res = e.loop(ctx, act, tc)
	case models.ActionParallel:
		res = e.parallel(ctx, act, tc)
	default:
		res = models.ActionResult{Err: fmt.Sprintf("unknown action type: %s", act.Type)}
	}
	return res
}

// wait is a pure delay of params.delay milliseconds. A cancelled run is the
// only thing that can fail it.
func (e *Executor) wait(ctx context.Context, act models.Action) models.ActionResult {
	delay := durationParam(act.Params, "delay")
	select {
	case <-time.After(delay):
		return models.ActionResult{Success: true, Data: map[string]any{"waited": delay.Milliseconds()}}
	case <-ctx.Done():
		return models.ActionResult{Err: ctx.Err().Error()}
	}
}

func (e *Executor) setVariable(act models.Action, tc *models.TestContext) models.ActionResult {
	name := stringParam(act.Params, "variable", "")
	if name == "" {
		return models.ActionResult{Err: "set_variable requires a variable name"}
	}
	var value any
	if act.Resolver != nil {
		value = act.Resolver(tc)
	} else {
		value = act.Params["value"]
		if s, ok := value.(string); ok {
			value = Interpolate(s, tc)
		}
	}
	tc.SetVar(name, value)
	return models.ActionResult{Success: true, Data: map[string]any{"variable": name, "value": value}}
}

// logAction prints only when the run is verbose; it always succeeds.
func (e *Executor) logAction(act models.Action, tc *models.TestContext) models.ActionResult {
	msg := Interpolate(stringParam(act.Params, "message", ""), tc)
	if tc.Verbose && msg != "" {
		switch stringParam(act.Params, "level", "info") {
		case "debug":
			e.logger.Debug(msg)
		case "warn":
			e.logger.Warn(msg)
		case "error":
			e.logger.Error(msg)
		default:
			e.logger.Info(msg)
		}
	}
	return models.ActionResult{Success: true, Data: map[string]any{"logged": tc.Verbose}}
}
