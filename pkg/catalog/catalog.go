package catalog

import (
	"fmt"
	"slices"
)

// Descriptor describes how to decode one channel.
type Descriptor struct {
	Code   uint16
	Name   string
	Unit   string
	Scale  float64
	Signed bool

	// Field is the snapshot field this channel updates, FieldNone if unbound.
	Field Field
}

// Catalog is an immutable DataID table.
type Catalog struct {
	byCode map[uint16]Descriptor
}

// New builds a catalog. Later descriptors replace earlier ones with the same code.
func New(descs ...Descriptor) *Catalog {
	c := &Catalog{byCode: make(map[uint16]Descriptor, len(descs))}
	for _, d := range descs {
		c.byCode[d.Code] = d
	}
	return c
}

var defaultCatalog = New(defaultDescriptors...)

// Default returns the built-in FTCAN 2.0 catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Lookup returns the descriptor for code.
func (c *Catalog) Lookup(code uint16) (Descriptor, bool) {
	if c == nil {
		return Descriptor{}, false
	}
	d, ok := c.byCode[code]
	return d, ok
}

// Resolve returns the descriptor for code, or Fallback(code) if unknown.
func (c *Catalog) Resolve(code uint16) (Descriptor, bool) {
	if d, ok := c.Lookup(code); ok {
		return d, true
	}
	return Fallback(code), false
}

// Len returns the number of known codes.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byCode)
}

// All returns every descriptor ordered by code.
func (c *Catalog) All() []Descriptor {
	if c == nil {
		return nil
	}
	out := make([]Descriptor, 0, len(c.byCode))
	for _, d := range c.byCode {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b Descriptor) int {
		return int(a.Code) - int(b.Code)
	})
	return out
}

// Lookup queries the default catalog.
func Lookup(code uint16) (Descriptor, bool) {
	return defaultCatalog.Lookup(code)
}

// Fallback is the raw-only descriptor used for unknown codes.
func Fallback(code uint16) Descriptor {
	return Descriptor{
		Code:  code,
		Name:  fmt.Sprintf("0x%04X", code),
		Scale: 1.0,
	}
}
