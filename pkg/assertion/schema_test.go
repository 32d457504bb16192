package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/musclemap/apiprobe/pkg/models"
)

func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestValidateSchemaTypes(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		schema     *models.Schema
		violations int
	}{
		{name: "string ok", value: "abc", schema: &models.Schema{Type: "string"}, violations: 0},
		{name: "wrong type", value: "abc", schema: &models.Schema{Type: "number"}, violations: 1},
		{name: "integer ok", value: float64(3), schema: &models.Schema{Type: "integer"}, violations: 0},
		{name: "integer rejects fraction", value: 3.5, schema: &models.Schema{Type: "integer"}, violations: 1},
		{name: "null ok", value: nil, schema: &models.Schema{Type: "null"}, violations: 0},
		{name: "boolean ok", value: true, schema: &models.Schema{Type: "boolean"}, violations: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ValidateSchema(tt.value, tt.schema, "value"), tt.violations)
		})
	}
}

func TestValidateSchemaStringBounds(t *testing.T) {
	s := &models.Schema{Type: "string", MinLength: intPtr(2), MaxLength: intPtr(5), Pattern: "^[a-z]+$"}

	assert.Empty(t, ValidateSchema("abc", s, "v"))
	assert.Len(t, ValidateSchema("a", s, "v"), 1)
	assert.Len(t, ValidateSchema("abcdefg", s, "v"), 1)
	assert.Len(t, ValidateSchema("ABC", s, "v"), 1)
}

func TestValidateSchemaNumericBounds(t *testing.T) {
	s := &models.Schema{Type: "number", Minimum: floatPtr(0), Maximum: floatPtr(100)}

	assert.Empty(t, ValidateSchema(float64(50), s, "v"))
	assert.Len(t, ValidateSchema(float64(-1), s, "v"), 1)
	assert.Len(t, ValidateSchema(float64(101), s, "v"), 1)
}

func TestValidateSchemaEnum(t *testing.T) {
	s := &models.Schema{Enum: []any{"push", "pull", "legs"}}

	assert.Empty(t, ValidateSchema("pull", s, "v"))
	assert.Len(t, ValidateSchema("cardio", s, "v"), 1)
}

func TestValidateSchemaObject(t *testing.T) {
	s := &models.Schema{
		Type:     "object",
		Required: []string{"id", "name"},
		Properties: map[string]*models.Schema{
			"id":   {Type: "integer"},
			"name": {Type: "string", MinLength: intPtr(1)},
		},
	}

	valid := decode(t, `{"id":1,"name":"squat"}`)
	assert.Empty(t, ValidateSchema(valid, s, "exercise"))

	missing := decode(t, `{"id":1}`)
	violations := ValidateSchema(missing, s, "exercise")
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], `missing required property "name"`)

	badProp := decode(t, `{"id":"x","name":""}`)
	assert.Len(t, ValidateSchema(badProp, s, "exercise"), 2)
}

func TestValidateSchemaArrayRecursion(t *testing.T) {
	s := &models.Schema{
		Type:  "array",
		Items: &models.Schema{Type: "object", Required: []string{"id"}},
	}

	valid := decode(t, `[{"id":1},{"id":2}]`)
	assert.Empty(t, ValidateSchema(valid, s, "items"))

	invalid := decode(t, `[{"id":1},{}]`)
	violations := ValidateSchema(invalid, s, "items")
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "items[1]")
}

func TestValidateSchemaNil(t *testing.T) {
	assert.Len(t, ValidateSchema("anything", nil, "v"), 1)
}

func TestEvaluateMatchesSchema(t *testing.T) {
	payload := decode(t, `{"data":{"user":{"id":7,"email":"a@b.c"}}}`)
	a := models.Assertion{
		Type: models.AssertMatchesSchema,
		Path: "data.user",
		Schema: &models.Schema{
			Type:     "object",
			Required: []string{"id", "email"},
			Properties: map[string]*models.Schema{
				"id": {Type: "integer", Minimum: floatPtr(1)},
			},
		},
	}
	res := Evaluate(a, payload, nil)
	assert.True(t, res.Passed, res.Message)
}
