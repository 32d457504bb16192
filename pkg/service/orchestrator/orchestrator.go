package orchestrator

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/musclemap/apiprobe/config"
	"github.com/musclemap/apiprobe/pkg/action"
	"github.com/musclemap/apiprobe/pkg/assertion"
	"github.com/musclemap/apiprobe/pkg/models"
	"github.com/musclemap/apiprobe/utils"
)

// retryBaseDelay seeds the exponential backoff between step attempts:
// 500ms, 1s, 2s, ...
const retryBaseDelay = 500 * time.Millisecond

type Orchestrator struct {
	logger   *zap.Logger
	cfg      *config.Config
	executor *action.Executor
	limiter  *rate.Limiter
	baseURL  string
	personas map[string]*models.Persona
}

func New(logger *zap.Logger, cfg *config.Config, baseURL string, personas map[string]*models.Persona) *Orchestrator {
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS)
	}
	return &Orchestrator{
		logger:   logger,
		cfg:      cfg,
		executor: action.New(logger, cfg.GraphQLPath, time.Duration(cfg.Timeout)*time.Second),
		limiter:  limiter,
		baseURL:  baseURL,
		personas: personas,
	}
}

// Run filters and executes scripts. In parallel mode every script gets its
// own fresh context and scripts join as an unordered concurrent group; in
// sequential mode all scripts share one context and run-level fail-fast
// aborts the remainder after the first failed suite.
func (o *Orchestrator) Run(ctx context.Context, scripts []*models.TestScript) ([]models.SuiteResult, error) {
	selected := o.Filter(scripts)
	if len(selected) == 0 {
		o.logger.Warn("no scripts matched the requested filters")
		return nil, nil
	}

	if o.cfg.Parallel {
		results := make([]models.SuiteResult, len(selected))
		g := new(errgroup.Group)
		for i, script := range selected {
			i, script := i, script
			g.Go(func() error {
				defer utils.Recover(o.logger)
				tc := o.newContext(script)
				results[i] = o.RunSuite(ctx, script, tc)
				return nil
			})
		}
		_ = g.Wait()
		return results, nil
	}

	var results []models.SuiteResult
	tc := o.newContext(nil)
	for _, script := range selected {
		sr := o.RunSuite(ctx, script, tc)
		results = append(results, sr)
		if o.cfg.FailFast && sr.Status == models.StatusFailed {
			o.logger.Warn("aborting remaining scripts after failed suite",
				zap.String("script", script.Name))
			break
		}
	}
	return results, nil
}

// Filter selects scripts by category, name substring and persona.
func (o *Orchestrator) Filter(scripts []*models.TestScript) []*models.TestScript {
	var out []*models.TestScript
	for _, s := range scripts {
		if o.cfg.Category != "" && string(s.Category) != o.cfg.Category {
			continue
		}
		if o.cfg.Suite != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(o.cfg.Suite)) {
			continue
		}
		if o.cfg.Persona != "" && len(s.Personas) > 0 && !containsString(s.Personas, o.cfg.Persona) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// RunSuite executes a script's steps strictly sequentially against one
// shared context. Fail-fast stops immediately after a failed or errored
// step.
func (o *Orchestrator) RunSuite(ctx context.Context, script *models.TestScript, tc *models.TestContext) models.SuiteResult {
	sr := models.SuiteResult{
		Script:   script.Name,
		Category: script.Category,
		Started:  time.Now(),
	}

	o.logger.Info("running suite",
		zap.String("script", script.Name),
		zap.String("category", string(script.Category)),
		zap.Int("steps", len(script.Steps)))

	if tc.Persona != nil && tc.AuthToken == "" && script.Category != models.CategoryAuth {
		if !o.Authenticate(ctx, tc) {
			o.logger.Warn("could not obtain an auth token for persona",
				zap.String("persona", tc.Persona.Name))
		}
	}

	if script.Setup != nil {
		if err := script.Setup(ctx, tc); err != nil {
			utils.LogError(o.logger, err, "suite setup failed", zap.String("script", script.Name))
		}
	}

	for i := range script.Steps {
		step := &script.Steps[i]
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				o.logger.Debug("rate limiter wait interrupted", zap.Error(err))
				break
			}
		}
		result := o.RunStep(ctx, script, step, tc)
		tc.AddResult(result)
		sr.Add(result)
		if o.cfg.FailFast && (result.Status == models.StatusFailed || result.Status == models.StatusError) {
			o.logger.Warn("fail-fast: aborting remaining steps",
				zap.String("step", step.Name))
			break
		}
	}

	if script.Teardown != nil {
		if err := script.Teardown(ctx, tc); err != nil {
			utils.LogError(o.logger, err, "suite teardown failed", zap.String("script", script.Name))
		}
	}

	sr.Finalize()
	o.logger.Info("suite finished",
		zap.String("script", script.Name),
		zap.String("status", string(sr.Status)),
		zap.Int("passed", sr.Passed),
		zap.Int("failed", sr.Failed),
		zap.Int("skipped", sr.Skipped))
	return sr
}

// RunStep drives one step through its state machine:
// pending -> running -> passed|failed|skipped|error. The action is retried
// with exponential backoff; assertions run once against the final attempt's
// payload; teardown always runs.
func (o *Orchestrator) RunStep(ctx context.Context, script *models.TestScript, step *models.TestStep, tc *models.TestContext) models.TestResult {
	if step.Skip || (step.SkipFunc != nil && step.SkipFunc(tc)) {
		o.logger.Debug("skipping step", zap.String("step", step.Name))
		return models.TestResult{Step: step.Name, Status: models.StatusSkipped}
	}

	// Make the step visible for nested lookups (per-step timeout).
	resolved := *step
	if resolved.Timeout == 0 {
		resolved.Timeout = script.DefaultTimeout
	}
	tc.CurrentStep = &resolved
	defer func() { tc.CurrentStep = nil }()

	if step.Setup != nil {
		if err := step.Setup(ctx, tc); err != nil {
			return models.TestResult{
				Step:   step.Name,
				Status: models.StatusError,
				Error:  "setup failed: " + err.Error(),
			}
		}
	}

	retries := step.EffectiveRetries(script)
	if retries < 0 {
		retries = o.cfg.Retries
	}

	start := time.Now()
	var last models.ActionResult
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			backoff := retryBaseDelay << (attempt - 1)
			o.logger.Debug("retrying step",
				zap.String("step", step.Name),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				attempt = retries // no more attempts after cancellation
			}
		}
		last = o.executor.Execute(ctx, step.Action, tc)
		if last.Success {
			break
		}
	}

	result := models.TestResult{
		Step:       step.Name,
		Duration:   time.Since(start),
		StatusCode: last.StatusCode,
		Response:   last.Data,
	}

	switch {
	case last.Errored():
		result.Status = models.StatusError
		result.Error = last.Err
	default:
		// The action completed; evaluate assertions once against its
		// payload. Assertion failures are never retried.
		assertionsPassed := true
		for _, a := range step.Assertions {
			ar := assertion.Evaluate(a, last.Data, tc)
			result.Assertions = append(result.Assertions, ar)
			if !ar.Passed {
				assertionsPassed = false
				o.logger.Debug("assertion failed",
					zap.String("step", step.Name),
					zap.String("message", ar.Message))
			}
		}
		if last.Success && assertionsPassed {
			result.Status = models.StatusPassed
		} else {
			result.Status = models.StatusFailed
			result.Error = last.Err
			if result.Error == "" && !assertionsPassed {
				result.Error = firstFailureMessage(result.Assertions)
			}
		}
	}

	if step.Teardown != nil {
		if err := step.Teardown(ctx, tc); err != nil {
			utils.LogError(o.logger, err, "step teardown failed", zap.String("step", step.Name))
		}
	}

	return result
}

func (o *Orchestrator) newContext(script *models.TestScript) *models.TestContext {
	var persona *models.Persona
	if o.cfg.Persona != "" {
		persona = o.personas[o.cfg.Persona]
	} else if script != nil && len(script.Personas) > 0 {
		persona = o.personas[script.Personas[0]]
	}
	return models.NewTestContext(o.cfg.Env, o.baseURL, persona, o.cfg.Verbose)
}

func firstFailureMessage(results []models.AssertionResult) string {
	for _, r := range results {
		if !r.Passed {
			return r.Message
		}
	}
	return ""
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
