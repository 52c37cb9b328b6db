// Package layout maps record tags to named field positions.
//
// The official EFD-Contribuições field positions have shifted between
// published editions, so the positions are data, not code: the registry is
// loaded from YAML and an edition is selected by name at startup.
package layout

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"credsped/internal/domain"
)

//go:embed layouts.yaml
var embeddedLayouts []byte

// FieldMap maps a field name to its position in the pipe-split line.
type FieldMap map[string]int

// Layout holds the field maps for every record tag of one layout edition.
type Layout struct {
	Name    string              `yaml:"name"`
	Records map[string]FieldMap `yaml:"records"`
}

// Field returns the named field of a split line, or "" when the field is
// unknown to this layout or the line is too short. It never fails.
func (l *Layout) Field(tag, name string, parts []string) string {
	fm, ok := l.Records[tag]
	if !ok {
		return ""
	}
	pos, ok := fm[name]
	if !ok || pos < 0 || pos >= len(parts) {
		return ""
	}
	return parts[pos]
}

// Registry holds all known layout editions.
type Registry struct {
	defaultName string
	layouts     map[string]*Layout
}

type registryFile struct {
	Default  string    `yaml:"default"`
	Versions []*Layout `yaml:"versions"`
}

// Parse builds a Registry from YAML bytes.
func Parse(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing layout file: %w", err)
	}
	if len(f.Versions) == 0 {
		return nil, fmt.Errorf("layout file declares no versions")
	}
	reg := &Registry{
		defaultName: f.Default,
		layouts:     make(map[string]*Layout, len(f.Versions)),
	}
	for _, l := range f.Versions {
		reg.layouts[l.Name] = l
	}
	if reg.defaultName == "" {
		reg.defaultName = f.Versions[0].Name
	}
	if _, ok := reg.layouts[reg.defaultName]; !ok {
		return nil, fmt.Errorf("default layout %q not among versions", reg.defaultName)
	}
	return reg, nil
}

// Default returns the registry built from the embedded layout file.
// The embedded file is validated by tests, so failure here is a build defect.
func Default() *Registry {
	reg, err := Parse(embeddedLayouts)
	if err != nil {
		panic(fmt.Sprintf("embedded layouts.yaml is invalid: %v", err))
	}
	return reg
}

// Get returns the named layout, or the default one for an empty name.
func (r *Registry) Get(name string) (*Layout, error) {
	if name == "" {
		name = r.defaultName
	}
	l, ok := r.layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownLayout, name)
	}
	return l, nil
}

// Names lists the available layout editions.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	return names
}
