package assertion

import (
	"fmt"
	"regexp"

	"github.com/musclemap/apiprobe/pkg/models"
	"github.com/musclemap/apiprobe/utils"
)

// ValidateSchema recursively checks a value against a minimal
// JSON-Schema-like shape: type, enum membership, string length and pattern
// bounds, numeric min/max, required-property presence, and recursion into
// array elements and object properties. Returns the list of violations,
// empty when the value conforms.
func ValidateSchema(value any, s *models.Schema, path string) []string {
	if s == nil {
		return []string{fmt.Sprintf("%s: no schema provided", path)}
	}
	var violations []string

	if s.Type != "" && !typeConforms(value, s.Type) {
		violations = append(violations, fmt.Sprintf("%s: expected type %s, got %s", path, s.Type, typeName(value)))
		return violations
	}

	if len(s.Enum) > 0 {
		ok := false
		for _, candidate := range s.Enum {
			if looseEqual(value, candidate) {
				ok = true
				break
			}
		}
		if !ok {
			violations = append(violations, fmt.Sprintf("%s: value %s not in enum", path, utils.Stringify(value)))
		}
	}

	switch v := value.(type) {
	case string:
		if s.MinLength != nil && len(v) < *s.MinLength {
			violations = append(violations, fmt.Sprintf("%s: length %d below minLength %d", path, len(v), *s.MinLength))
		}
		if s.MaxLength != nil && len(v) > *s.MaxLength {
			violations = append(violations, fmt.Sprintf("%s: length %d above maxLength %d", path, len(v), *s.MaxLength))
		}
		if s.Pattern != "" {
			re, err := regexp.Compile(s.Pattern)
			if err != nil {
				violations = append(violations, fmt.Sprintf("%s: invalid pattern %q", path, s.Pattern))
			} else if !re.MatchString(v) {
				violations = append(violations, fmt.Sprintf("%s: %q does not match pattern %q", path, utils.TruncateString(v), s.Pattern))
			}
		}
	case []any:
		if s.Items != nil {
			for i, el := range v {
				violations = append(violations, ValidateSchema(el, s.Items, fmt.Sprintf("%s[%d]", path, i))...)
			}
		}
	case map[string]any:
		for _, req := range s.Required {
			if _, present := v[req]; !present {
				violations = append(violations, fmt.Sprintf("%s: missing required property %q", path, req))
			}
		}
		for name, propSchema := range s.Properties {
			if prop, present := v[name]; present {
				violations = append(violations, ValidateSchema(prop, propSchema, path+"."+name)...)
			}
		}
	default:
		if num, ok := toFloat(value); ok {
			if s.Minimum != nil && num < *s.Minimum {
				violations = append(violations, fmt.Sprintf("%s: %v below minimum %v", path, num, *s.Minimum))
			}
			if s.Maximum != nil && num > *s.Maximum {
				violations = append(violations, fmt.Sprintf("%s: %v above maximum %v", path, num, *s.Maximum))
			}
		}
	}

	return violations
}

func typeConforms(value any, schemaType string) bool {
	switch schemaType {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		_, ok := toFloat(value)
		return ok
	case "integer":
		f, ok := toFloat(value)
		return ok && f == float64(int64(f))
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "null":
		return value == nil
	default:
		return false
	}
}
