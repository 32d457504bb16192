// Package catalog loads declarative test scripts and persona fixtures from
// YAML files on disk.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/musclemap/apiprobe/pkg/models"
)

// ScriptKind is the expected kind field of a script document.
const ScriptKind = "TestScript"

// scriptFile is the on-disk envelope of one test script.
type scriptFile struct {
	Version string     `yaml:"version"`
	Kind    string     `yaml:"kind"`
	Name    string     `yaml:"name"`
	Spec    scriptSpec `yaml:"spec"`
}

type scriptSpec struct {
	Description    string     `yaml:"description"`
	Category       string     `yaml:"category"`
	Personas       []string   `yaml:"personas"`
	DefaultTimeout int        `yaml:"defaultTimeout"` // seconds
	DefaultRetries *int       `yaml:"defaultRetries"`
	Steps          []stepDecl `yaml:"steps"`
}

type stepDecl struct {
	Name       string             `yaml:"name"`
	Action     string             `yaml:"action"`
	Params     map[string]any     `yaml:"params"`
	Actions    []actionDecl       `yaml:"actions"`
	Assertions []models.Assertion `yaml:"assertions"`
	Timeout    int                `yaml:"timeout"` // seconds
	Retries    *int               `yaml:"retries"`
	Skip       bool               `yaml:"skip"`
}

// actionDecl declares a nested action of a control-flow step.
type actionDecl struct {
	Type    string         `yaml:"type"`
	Params  map[string]any `yaml:"params"`
	Actions []actionDecl   `yaml:"actions"`
}

// Load parses every *.yaml/*.yml script in dir, sorted by filename for a
// deterministic run order.
func Load(dir string) ([]*models.TestScript, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scripts directory %q: %v", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	scripts := make([]*models.TestScript, 0, len(files))
	for _, file := range files {
		script, err := ParseScript(file)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

// ParseScript reads and validates one script file.
func ParseScript(path string) (*models.TestScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %q: %v", path, err)
	}

	var sf scriptFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse script %q: %v", path, err)
	}
	if sf.Kind != ScriptKind {
		return nil, fmt.Errorf("script %q: unexpected kind %q, want %q", path, sf.Kind, ScriptKind)
	}
	if sf.Name == "" {
		return nil, fmt.Errorf("script %q: missing name", path)
	}

	category, err := models.ParseCategory(sf.Spec.Category)
	if err != nil {
		return nil, fmt.Errorf("script %q: %v", path, err)
	}

	script := &models.TestScript{
		Name:           sf.Name,
		Description:    sf.Spec.Description,
		Category:       category,
		Personas:       sf.Spec.Personas,
		DefaultTimeout: time.Duration(sf.Spec.DefaultTimeout) * time.Second,
		// Absent means inherit the run-level retry count.
		DefaultRetries: -1,
	}
	if sf.Spec.DefaultRetries != nil {
		script.DefaultRetries = *sf.Spec.DefaultRetries
	}

	for i, decl := range sf.Spec.Steps {
		step, err := buildStep(decl)
		if err != nil {
			return nil, fmt.Errorf("script %q step %d (%s): %v", path, i, decl.Name, err)
		}
		script.Steps = append(script.Steps, step)
	}
	return script, nil
}

func buildStep(decl stepDecl) (models.TestStep, error) {
	act, err := buildAction(actionDecl{Type: decl.Action, Params: decl.Params, Actions: decl.Actions})
	if err != nil {
		return models.TestStep{}, err
	}
	step := models.TestStep{
		Name:       decl.Name,
		Action:     act,
		Assertions: decl.Assertions,
		Timeout:    time.Duration(decl.Timeout) * time.Second,
		Retries:    -1,
		Skip:       decl.Skip,
	}
	if decl.Retries != nil {
		step.Retries = *decl.Retries
	}
	return step, nil
}

func buildAction(decl actionDecl) (models.Action, error) {
	t := models.ActionType(strings.TrimSpace(decl.Type))
	switch t {
	case models.ActionHTTPRequest, models.ActionGraphQLQuery, models.ActionGraphQLMutation,
		models.ActionWait, models.ActionSetVariable, models.ActionLog,
		models.ActionConditional, models.ActionLoop, models.ActionParallel:
	default:
		return models.Action{}, fmt.Errorf("unknown action type %q", decl.Type)
	}

	act := models.Action{Type: t, Params: decl.Params}
	if act.Params == nil {
		act.Params = map[string]any{}
	}
	for _, child := range decl.Actions {
		built, err := buildAction(child)
		if err != nil {
			return models.Action{}, err
		}
		act.Children = append(act.Children, built)
	}
	return act, nil
}
