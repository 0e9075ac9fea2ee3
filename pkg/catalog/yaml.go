package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidEntry indicates a dataids.yaml entry that cannot become a Descriptor.
var ErrInvalidEntry = errors.New("catalog: invalid entry")

// Entry is one DataID in dataids.yaml format.
type Entry struct {
	Code uint16 `yaml:"code"`

	// Const is the Go identifier suffix of the generated Code constant.
	Const string `yaml:"const,omitempty"`

	Name   string  `yaml:"name"`
	Unit   string  `yaml:"unit,omitempty"`
	Scale  float64 `yaml:"scale"`
	Signed bool    `yaml:"signed,omitempty"`
	Field  string  `yaml:"field,omitempty"`
}

type yamlFile struct {
	DataIDs []Entry `yaml:"dataids"`
}

// Descriptor converts the entry.
func (e Entry) Descriptor() (Descriptor, error) {
	if e.Name == "" {
		return Descriptor{}, fmt.Errorf("%w: 0x%04X has no name", ErrInvalidEntry, e.Code)
	}
	if e.Scale == 0 {
		return Descriptor{}, fmt.Errorf("%w: 0x%04X has zero scale", ErrInvalidEntry, e.Code)
	}
	field, ok := ParseField(e.Field)
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: 0x%04X binds unknown field %q", ErrInvalidEntry, e.Code, e.Field)
	}
	return Descriptor{
		Code:   e.Code,
		Name:   e.Name,
		Unit:   e.Unit,
		Scale:  e.Scale,
		Signed: e.Signed,
		Field:  field,
	}, nil
}

// ParseYAML parses a dataids.yaml document and validates every entry.
// Duplicate codes are rejected.
func ParseYAML(data []byte) ([]Entry, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}

	seen := make(map[uint16]bool, len(f.DataIDs))
	for _, e := range f.DataIDs {
		if seen[e.Code] {
			return nil, fmt.Errorf("%w: duplicate code 0x%04X", ErrInvalidEntry, e.Code)
		}
		seen[e.Code] = true
		if _, err := e.Descriptor(); err != nil {
			return nil, err
		}
	}
	return f.DataIDs, nil
}

// LoadFile reads a dataids.yaml file and returns base extended with its
// entries. Entries replace base descriptors with the same code. A nil base
// starts from an empty catalog.
func LoadFile(path string, base *Catalog) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	descs := base.All()
	for _, e := range entries {
		d, _ := e.Descriptor()
		descs = append(descs, d)
	}
	return New(descs...), nil
}
