package action

import (
	"fmt"
	"strconv"
	"time"

	"github.com/musclemap/apiprobe/pkg/models"
)

// Interpolate replaces {{name}} placeholders with the context's variable
// values. Unknown names are left in place so failures stay diagnosable.
func Interpolate(input string, tc *models.TestContext) string {
	return tc.Interpolate(input)
}

func stringParam(params map[string]any, key, fallback string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return fallback
}

func intParam(params map[string]any, key string, fallback int) int {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return fallback
}

// durationParam reads a millisecond count.
func durationParam(params map[string]any, key string) time.Duration {
	return time.Duration(intParam(params, key, 0)) * time.Millisecond
}

func boolParam(params map[string]any, key string) (bool, bool) {
	v, ok := params[key]
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	default:
		return false, false
	}
}

// expectedStatuses normalizes the expectedStatus param, which may be a
// scalar or a list, into a membership set. Nil means any status passes.
func expectedStatuses(params map[string]any) map[int]bool {
	v, ok := params["expectedStatus"]
	if !ok {
		return nil
	}
	set := make(map[int]bool)
	switch s := v.(type) {
	case int:
		set[s] = true
	case float64:
		set[int(s)] = true
	case []any:
		for _, el := range s {
			switch n := el.(type) {
			case int:
				set[n] = true
			case float64:
				set[int(n)] = true
			}
		}
	case []int:
		for _, n := range s {
			set[n] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
