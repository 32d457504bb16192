// Package assertion resolves values out of response payloads by dot-path
// and evaluates typed predicates against them.
package assertion

import (
	"regexp"
	"strconv"
	"strings"
)

var bracketIndexRe = regexp.MustCompile(`\[(\d+)\]`)

// normalizeArrayIndices rewrites bracket indices into dot segments, so
// "items[0].id" resolves the same way as "items.0.id". Non-numeric bracket
// content is left alone.
func normalizeArrayIndices(path string) string {
	return bracketIndexRe.ReplaceAllString(path, ".$1")
}

// Resolve walks a decoded payload by dot-path. A missing intermediate
// returns (nil, false) rather than an error, so exists/not_exists stay
// meaningful for absent data. An empty path resolves to the payload itself.
func Resolve(payload any, path string) (any, bool) {
	if path == "" {
		return payload, true
	}
	cur := payload
	for _, part := range strings.Split(normalizeArrayIndices(path), ".") {
		if part == "" {
			continue
		}
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			cur = v[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
