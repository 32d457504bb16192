package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/musclemap/apiprobe/pkg/models"
)

type personaFile struct {
	Personas []models.Persona `yaml:"personas"`
}

// LoadPersonas parses the persona fixture file into a name-keyed map.
// A missing file is not an error: runs without personas are legal.
func LoadPersonas(path string) (map[string]*models.Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*models.Persona{}, nil
		}
		return nil, fmt.Errorf("failed to read personas %q: %v", path, err)
	}

	var pf personaFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse personas %q: %v", path, err)
	}

	out := make(map[string]*models.Persona, len(pf.Personas))
	for i := range pf.Personas {
		p := &pf.Personas[i]
		if p.Name == "" {
			return nil, fmt.Errorf("personas %q: entry %d has no name", path, i)
		}
		out[p.Name] = p
	}
	return out, nil
}

// ResolvePersona validates a requested persona name against the loaded set;
// the error carries every known name.
func ResolvePersona(personas map[string]*models.Persona, name string) (*models.Persona, error) {
	if name == "" {
		return nil, nil
	}
	if p, ok := personas[name]; ok {
		return p, nil
	}
	names := make([]string, 0, len(personas))
	for n := range personas {
		names = append(names, n)
	}
	return nil, fmt.Errorf("unknown persona %q, must be one of: %s", name, strings.Join(names, ", "))
}
