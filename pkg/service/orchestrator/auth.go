package orchestrator

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/musclemap/apiprobe/pkg/assertion"
	"github.com/musclemap/apiprobe/pkg/models"
)

// tokenPaths are tried in order against the auth response body.
var tokenPaths = []string{"token", "data.token", "accessToken", "data.accessToken"}

// userIDPaths are tried in order against the auth response body.
var userIDPaths = []string{"user.id", "data.user.id", "userId", "data.userId"}

// Authenticate registers a synthetic account for the context's persona,
// falling back to login when the account already exists, then installs the
// bearer token and user id into the context. Returns whether a usable token
// was obtained.
func (o *Orchestrator) Authenticate(ctx context.Context, tc *models.TestContext) bool {
	if tc.Persona == nil {
		return false
	}

	register := models.Action{
		Type: models.ActionHTTPRequest,
		Params: map[string]any{
			"method": http.MethodPost,
			"path":   o.cfg.RegisterPath,
			"body": map[string]any{
				"email":    tc.Persona.Email,
				"password": tc.Persona.Password,
				"name":     fmt.Sprintf("%s (synthetic)", tc.Persona.Name),
			},
		},
	}
	res := o.executor.Execute(ctx, register, tc)

	if res.StatusCode == http.StatusConflict {
		login := models.Action{
			Type: models.ActionHTTPRequest,
			Params: map[string]any{
				"method": http.MethodPost,
				"path":   o.cfg.LoginPath,
				"body": map[string]any{
					"email":    tc.Persona.Email,
					"password": tc.Persona.Password,
				},
			},
		}
		res = o.executor.Execute(ctx, login, tc)
	}

	if res.Errored() || res.Data == nil {
		o.logger.Debug("authentication request failed",
			zap.String("persona", tc.Persona.Name),
			zap.String("error", res.Err))
		return false
	}

	token := firstStringAt(res.Data, tokenPaths)
	if token == "" {
		return false
	}
	tc.AuthToken = token
	tc.UserID = firstStringAt(res.Data, userIDPaths)
	o.logger.Debug("authenticated persona", zap.String("persona", tc.Persona.Name))
	return true
}

func firstStringAt(payload any, paths []string) string {
	for _, p := range paths {
		if v, ok := assertion.Resolve(payload, p); ok {
			if s, isStr := v.(string); isStr && s != "" {
				return s
			}
			if v != nil {
				return fmt.Sprintf("%v", v)
			}
		}
	}
	return ""
}
