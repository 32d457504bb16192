package models

// AssertionType defines a custom type for assertion predicate kinds.
type AssertionType string

const (
	AssertEquals             AssertionType = "equals"
	AssertNotEquals          AssertionType = "not_equals"
	AssertContains           AssertionType = "contains"
	AssertNotContains        AssertionType = "not_contains"
	AssertMatches            AssertionType = "matches"
	AssertGreaterThan        AssertionType = "greater_than"
	AssertGreaterThanOrEqual AssertionType = "greater_than_or_equal"
	AssertLessThan           AssertionType = "less_than"
	AssertLessThanOrEqual    AssertionType = "less_than_or_equal"
	AssertExists             AssertionType = "exists"
	AssertNotExists          AssertionType = "not_exists"
	AssertIsNull             AssertionType = "is_null"
	AssertIsNotNull          AssertionType = "is_not_null"
	AssertIsArray            AssertionType = "is_array"
	AssertIsObject           AssertionType = "is_object"
	AssertIsString           AssertionType = "is_string"
	AssertIsNumber           AssertionType = "is_number"
	AssertIsBoolean          AssertionType = "is_boolean"
	AssertHasLength          AssertionType = "has_length"
	AssertMatchesSchema      AssertionType = "matches_schema"
	AssertCustom             AssertionType = "custom"
)

// CustomPredicate receives the resolved value and the run context and
// decides the assertion. Only registrable from code, not from YAML.
type CustomPredicate func(value any, tc *TestContext) (bool, error)

// Assertion is a declarative, stateless predicate evaluated against a
// dot-path into a response payload.
type Assertion struct {
	Type     AssertionType `json:"type" yaml:"type"`
	Path     string        `json:"path,omitempty" yaml:"path,omitempty"`
	Expected any           `json:"expected,omitempty" yaml:"expected,omitempty"`
	Message  string        `json:"message,omitempty" yaml:"message,omitempty"`

	// Schema backs matches_schema. Custom backs the custom kind and is only
	// settable from programmatic scripts, never from YAML.
	Schema *Schema         `json:"schema,omitempty" yaml:"schema,omitempty"`
	Custom CustomPredicate `json:"-" yaml:"-"`
}

// AssertionResult is produced once per assertion evaluation.
type AssertionResult struct {
	Passed   bool   `json:"passed"`
	Actual   any    `json:"actual,omitempty"`
	Expected any    `json:"expected,omitempty"`
	Message  string `json:"message"`
}

// Schema is a minimal JSON-Schema-like shape. No $ref, no oneOf/anyOf, no
// additionalProperties control.
type Schema struct {
	Type       string             `json:"type,omitempty" yaml:"type,omitempty"`
	Enum       []any              `json:"enum,omitempty" yaml:"enum,omitempty"`
	MinLength  *int               `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength  *int               `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern    string             `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Minimum    *float64           `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum    *float64           `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
}
