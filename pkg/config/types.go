package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

// Duration is a time.Duration written as "500ms" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string. A bare zero is accepted.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "0" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// HexID is a CAN identifier written as a hex string, e.g. "0x14080600".
type HexID uint32

// UnmarshalYAML parses a hex string or a plain integer.
func (h *HexID) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var v uint32
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		if v > can.MaxExtendedID {
			return fmt.Errorf("line %d: identifier 0x%X exceeds 29 bits", node.Line, v)
		}
		*h = HexID(v)
		return nil
	}
	id, err := can.ParseID(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*h = HexID(id)
	return nil
}

// MarshalYAML writes the identifier as a hex string.
func (h HexID) MarshalYAML() (any, error) {
	return fmt.Sprintf("0x%08X", uint32(h)), nil
}
