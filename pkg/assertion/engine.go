package assertion

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/musclemap/apiprobe/pkg/models"
	"github.com/musclemap/apiprobe/utils"
)

// Evaluate resolves the assertion's path against the payload and applies
// its predicate. It never panics out; anything raised inside a predicate
// becomes a failed result carrying the message.
func Evaluate(a models.Assertion, payload any, tc *models.TestContext) (res models.AssertionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = models.AssertionResult{
				Passed:  false,
				Message: fmt.Sprintf("assertion %s panicked: %v", a.Type, r),
			}
		}
	}()

	if tc != nil {
		if s, ok := a.Expected.(string); ok {
			a.Expected = tc.Interpolate(s)
		}
	}

	value, found := Resolve(payload, a.Path)
	res = models.AssertionResult{Actual: value, Expected: a.Expected}

	var passed bool
	var detail string

	switch a.Type {
	case models.AssertEquals:
		passed = looseEqual(value, a.Expected)
		detail = fmt.Sprintf("expected %s to equal %s, got %s", pathLabel(a.Path), utils.Stringify(a.Expected), utils.Stringify(value))
	case models.AssertNotEquals:
		passed = !looseEqual(value, a.Expected)
		detail = fmt.Sprintf("expected %s to differ from %s", pathLabel(a.Path), utils.Stringify(a.Expected))
	case models.AssertContains:
		passed = contains(value, a.Expected)
		detail = fmt.Sprintf("expected %s to contain %s, got %s", pathLabel(a.Path), utils.Stringify(a.Expected), utils.Stringify(value))
	case models.AssertNotContains:
		passed = !contains(value, a.Expected)
		detail = fmt.Sprintf("expected %s to not contain %s", pathLabel(a.Path), utils.Stringify(a.Expected))
	case models.AssertMatches:
		passed, detail = matches(a, value)
	case models.AssertGreaterThan, models.AssertGreaterThanOrEqual,
		models.AssertLessThan, models.AssertLessThanOrEqual:
		passed, detail = compare(a, value)
	case models.AssertExists:
		passed = found
		detail = fmt.Sprintf("expected %s to exist", pathLabel(a.Path))
	case models.AssertNotExists:
		passed = !found
		detail = fmt.Sprintf("expected %s to not exist, got %s", pathLabel(a.Path), utils.Stringify(value))
	case models.AssertIsNull:
		passed = found && value == nil
		detail = fmt.Sprintf("expected %s to be null, got %s", pathLabel(a.Path), utils.Stringify(value))
	case models.AssertIsNotNull:
		passed = found && value != nil
		detail = fmt.Sprintf("expected %s to be non-null", pathLabel(a.Path))
	case models.AssertIsArray:
		_, passed = value.([]any)
		detail = fmt.Sprintf("expected %s to be an array, got %s", pathLabel(a.Path), typeName(value))
	case models.AssertIsObject:
		_, passed = value.(map[string]any)
		detail = fmt.Sprintf("expected %s to be an object, got %s", pathLabel(a.Path), typeName(value))
	case models.AssertIsString:
		_, passed = value.(string)
		detail = fmt.Sprintf("expected %s to be a string, got %s", pathLabel(a.Path), typeName(value))
	case models.AssertIsNumber:
		_, passed = toFloat(value)
		detail = fmt.Sprintf("expected %s to be a number, got %s", pathLabel(a.Path), typeName(value))
	case models.AssertIsBoolean:
		_, passed = value.(bool)
		detail = fmt.Sprintf("expected %s to be a boolean, got %s", pathLabel(a.Path), typeName(value))
	case models.AssertHasLength:
		passed, detail = hasLength(a, value)
	case models.AssertMatchesSchema:
		violations := ValidateSchema(value, a.Schema, pathLabel(a.Path))
		passed = len(violations) == 0
		detail = fmt.Sprintf("schema violations: %s", strings.Join(violations, "; "))
	case models.AssertCustom:
		if a.Custom == nil {
			passed, detail = false, "custom assertion has no predicate"
			break
		}
		ok, err := a.Custom(value, tc)
		if err != nil {
			passed, detail = false, fmt.Sprintf("custom assertion failed: %v", err)
			break
		}
		passed = ok
		detail = fmt.Sprintf("custom assertion on %s returned false", pathLabel(a.Path))
	default:
		passed, detail = false, fmt.Sprintf("unknown assertion type: %s", a.Type)
	}

	res.Passed = passed
	if passed {
		res.Message = fmt.Sprintf("%s: ok", a.Type)
	} else if a.Message != "" {
		res.Message = a.Message
	} else {
		res.Message = detail
	}
	return res
}

func pathLabel(path string) string {
	if path == "" {
		return "response"
	}
	return path
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32, uint, uint64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// looseEqual compares primitives by value (numbers across Go numeric types)
// and composites by their JSON serialization. The serialized form is
// order-sensitive for arrays, so [1,2] and [2,1] do not compare equal.
func looseEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if af, aok := toFloat(actual); aok {
		if ef, eok := toFloat(expected); eok {
			return af == ef
		}
	}
	if as, ok := actual.(string); ok {
		if es, ok := expected.(string); ok {
			return as == es
		}
	}
	if ab, ok := actual.(bool); ok {
		if eb, ok := expected.(bool); ok {
			return ab == eb
		}
	}
	return canonical(actual) == canonical(expected)
}

func canonical(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// contains means substring for strings, serialized-element membership for
// sequences and key presence for maps.
func contains(value, expected any) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(v, fmt.Sprintf("%v", expected))
	case []any:
		want := canonical(expected)
		for _, el := range v {
			if canonical(el) == want {
				return true
			}
		}
		return false
	case map[string]any:
		key, ok := expected.(string)
		if !ok {
			return false
		}
		_, present := v[key]
		return present
	default:
		return false
	}
}

func matches(a models.Assertion, value any) (bool, string) {
	pattern, ok := a.Expected.(string)
	if !ok {
		return false, "matches requires a string pattern"
	}
	str, ok := value.(string)
	if !ok {
		str = fmt.Sprintf("%v", value)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid pattern %q: %v", pattern, err)
	}
	if re.MatchString(str) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %s to match %q, got %s", pathLabel(a.Path), pattern, utils.Stringify(str))
}

// compare requires both operands to be numeric; anything else fails.
func compare(a models.Assertion, value any) (bool, string) {
	actual, aok := toFloat(value)
	expected, eok := toFloat(a.Expected)
	if !aok || !eok {
		return false, fmt.Sprintf("%s requires numeric operands, got %s and %s", a.Type, typeName(value), typeName(a.Expected))
	}
	var passed bool
	switch a.Type {
	case models.AssertGreaterThan:
		passed = actual > expected
	case models.AssertGreaterThanOrEqual:
		passed = actual >= expected
	case models.AssertLessThan:
		passed = actual < expected
	case models.AssertLessThanOrEqual:
		passed = actual <= expected
	}
	return passed, fmt.Sprintf("expected %s %s %v, got %v", pathLabel(a.Path), comparisonSymbol(a.Type), expected, actual)
}

func comparisonSymbol(t models.AssertionType) string {
	switch t {
	case models.AssertGreaterThan:
		return ">"
	case models.AssertGreaterThanOrEqual:
		return ">="
	case models.AssertLessThan:
		return "<"
	default:
		return "<="
	}
}

func hasLength(a models.Assertion, value any) (bool, string) {
	want, ok := toFloat(a.Expected)
	if !ok {
		return false, "has_length requires a numeric expected value"
	}
	var length int
	switch v := value.(type) {
	case string:
		length = len(v)
	case []any:
		length = len(v)
	case map[string]any:
		length = len(v)
	default:
		return false, fmt.Sprintf("expected %s to have a length, got %s", pathLabel(a.Path), typeName(value))
	}
	if float64(length) == want {
		return true, ""
	}
	return false, fmt.Sprintf("expected %s to have length %v, got %d", pathLabel(a.Path), a.Expected, length)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
