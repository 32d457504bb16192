package action

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/musclemap/apiprobe/pkg/models"
)

// httpRequest issues one HTTP call to baseURL + path. A bearer token from
// the context is injected unless the caller already supplied an
// Authorization header. When expectedStatus is given, success requires
// membership; otherwise any completed response is a success.
func (e *Executor) httpRequest(ctx context.Context, act models.Action, tc *models.TestContext) models.ActionResult {
	method := strings.ToUpper(stringParam(act.Params, "method", http.MethodGet))
	path := Interpolate(stringParam(act.Params, "path", ""), tc)
	url := tc.BaseURL + path

	body, err := requestBody(act.Params, method, tc)
	if err != nil {
		return models.ActionResult{Err: err.Error()}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeoutFor(tc))
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, url, body)
	if err != nil {
		return models.ActionResult{Err: fmt.Sprintf("failed to create request: %v", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	applyHeaders(req, act.Params, tc)
	if req.Header.Get("Authorization") == "" && tc.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.AuthToken)
	}

	e.logger.Debug("sending request", zap.String("method", method), zap.String("url", url))

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return models.ActionResult{Err: fmt.Sprintf("request timed out after %v", e.timeoutFor(tc))}
		}
		return models.ActionResult{Err: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ActionResult{Err: fmt.Sprintf("failed to read response body: %v", err)}
	}

	result := models.ActionResult{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Data:       decodeBody(resp.Header.Get("Content-Type"), raw),
	}

	if expected := expectedStatuses(act.Params); expected != nil && !expected[resp.StatusCode] {
		result.Err = fmt.Sprintf("unexpected status %d, expected one of %v", resp.StatusCode, sortedKeys(expected))
		return result
	}
	result.Success = true
	return result
}

// graphql POSTs {query, variables} to the configured GraphQL endpoint.
// Success requires HTTP 200 and an empty errors array; GraphQL errors are a
// protocol-level failure even when the HTTP layer reports 200.
func (e *Executor) graphql(ctx context.Context, act models.Action, tc *models.TestContext) models.ActionResult {
	queryKey := "query"
	if act.Type == models.ActionGraphQLMutation {
		if _, ok := act.Params["mutation"]; ok {
			queryKey = "mutation"
		}
	}
	query := Interpolate(stringParam(act.Params, queryKey, ""), tc)
	if query == "" {
		return models.ActionResult{Err: fmt.Sprintf("%s requires a %s param", act.Type, queryKey)}
	}

	payload := map[string]any{"query": query}
	if vars, ok := act.Params["variables"]; ok {
		payload["variables"] = vars
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return models.ActionResult{Err: fmt.Sprintf("failed to encode graphql payload: %v", err)}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeoutFor(tc))
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, tc.BaseURL+e.graphqlPath, bytes.NewReader(encoded))
	if err != nil {
		return models.ActionResult{Err: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.AuthToken)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return models.ActionResult{Err: fmt.Sprintf("request timed out after %v", e.timeoutFor(tc))}
		}
		return models.ActionResult{Err: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ActionResult{Err: fmt.Sprintf("failed to read response body: %v", err)}
	}

	result := models.ActionResult{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Data:       decodeBody(resp.Header.Get("Content-Type"), raw),
	}

	if resp.StatusCode != http.StatusOK {
		result.Err = fmt.Sprintf("graphql endpoint returned status %d", resp.StatusCode)
		return result
	}
	if gqlErrs := gjson.GetBytes(raw, "errors"); gqlErrs.Exists() && gqlErrs.IsArray() && len(gqlErrs.Array()) > 0 {
		result.Err = fmt.Sprintf("graphql errors: %s", gqlErrs.Raw)
		return result
	}
	result.Success = true
	return result
}

// timeoutFor resolves the per-step timeout, else the protocol default.
func (e *Executor) timeoutFor(tc *models.TestContext) time.Duration {
	if tc.CurrentStep != nil && tc.CurrentStep.Timeout > 0 {
		return tc.CurrentStep.Timeout
	}
	return e.defaultTimeout
}

func requestBody(params map[string]any, method string, tc *models.TestContext) (io.Reader, error) {
	raw, ok := params["body"]
	if !ok || method == http.MethodGet {
		return nil, nil
	}
	switch b := raw.(type) {
	case string:
		return strings.NewReader(Interpolate(b, tc)), nil
	default:
		encoded, err := json.Marshal(interpolateValue(raw, tc))
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %v", err)
		}
		return bytes.NewReader(encoded), nil
	}
}

// interpolateValue applies {{var}} substitution through nested maps and
// sequences of a structured request body.
func interpolateValue(v any, tc *models.TestContext) any {
	switch val := v.(type) {
	case string:
		return Interpolate(val, tc)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, el := range val {
			out[k] = interpolateValue(el, tc)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, el := range val {
			out[i] = interpolateValue(el, tc)
		}
		return out
	default:
		return v
	}
}

func applyHeaders(req *http.Request, params map[string]any, tc *models.TestContext) {
	raw, ok := params["headers"]
	if !ok {
		return
	}
	switch headers := raw.(type) {
	case map[string]string:
		for k, v := range headers {
			req.Header.Set(k, Interpolate(v, tc))
		}
	case map[string]any:
		for k, v := range headers {
			req.Header.Set(k, Interpolate(fmt.Sprintf("%v", v), tc))
		}
	}
}

// decodeBody returns decoded JSON when the content type (or the bytes
// themselves) indicate JSON, else the raw text.
func decodeBody(contentType string, raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if strings.Contains(contentType, "json") || gjson.ValidBytes(raw) {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			return decoded
		}
	}
	return string(raw)
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
