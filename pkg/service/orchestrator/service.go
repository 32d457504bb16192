// Package orchestrator owns run-scoped state and drives scripts, suites
// and steps through the action executor and assertion engine.
package orchestrator

import (
	"context"

	"github.com/musclemap/apiprobe/pkg/models"
)

type Service interface {
	Run(ctx context.Context, scripts []*models.TestScript) ([]models.SuiteResult, error)
	RunSuite(ctx context.Context, script *models.TestScript, tc *models.TestContext) models.SuiteResult
}
