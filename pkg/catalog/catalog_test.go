package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnown(t *testing.T) {
	tests := []struct {
		code   uint16
		name   string
		scale  float64
		signed bool
		field  Field
	}{
		{CodeRPM, "RPM", 1, false, FieldRPM},
		{CodeWheelSpeedFL, "Wheel speed FL", 1, false, FieldWheelSpeedFL},
		{CodeWheelSpeedRR, "Wheel speed RR", 1, false, FieldWheelSpeedRR},
		{CodeTPS, "TPS", 0.1, true, FieldTPS},
		{CodeMAP, "MAP", 0.001, true, FieldMAP},
		{CodeBatteryVoltage, "Battery voltage", 0.01, true, FieldBatteryVoltage},
		{CodeLaunchMode, "Launch mode", 1, false, FieldNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Lookup(tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, tt.name, d.Name)
			assert.InDelta(t, tt.scale, d.Scale, 1e-12)
			assert.Equal(t, tt.signed, d.Signed)
			assert.Equal(t, tt.field, d.Field)
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup(0x7FFF)
	assert.False(t, ok)

	d, known := Default().Resolve(0x7FFF)
	assert.False(t, known)
	assert.Equal(t, "0x7FFF", d.Name)
	assert.Equal(t, "", d.Unit)
	assert.Equal(t, 1.0, d.Scale)
	assert.False(t, d.Signed)
	assert.Equal(t, FieldNone, d.Field)
}

func TestFallbackName(t *testing.T) {
	assert.Equal(t, "0x0ABC", Fallback(0x0ABC).Name)
	assert.Equal(t, uint16(0x0ABC), Fallback(0x0ABC).Code)
}

func TestCustomCatalog(t *testing.T) {
	c := New(
		Descriptor{Code: 0x0100, Name: "first", Scale: 1},
		Descriptor{Code: 0x0100, Name: "second", Scale: 2},
		Descriptor{Code: 0x0001, Name: "low", Scale: 1},
	)
	assert.Equal(t, 2, c.Len())

	d, ok := c.Lookup(0x0100)
	require.True(t, ok)
	assert.Equal(t, "second", d.Name)

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, uint16(0x0001), all[0].Code)
	assert.Equal(t, uint16(0x0100), all[1].Code)

	// the default table must not see custom entries
	_, ok = Lookup(0x0100)
	assert.False(t, ok)
}

func TestNilCatalog(t *testing.T) {
	var c *Catalog
	_, ok := c.Lookup(CodeRPM)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.All())
}

func TestDefaultCatalogCodesUnique(t *testing.T) {
	assert.Equal(t, len(defaultDescriptors), Default().Len())
}

func TestFieldNames(t *testing.T) {
	for f, name := range fieldNames {
		got, ok := ParseField(name)
		require.True(t, ok, name)
		assert.Equal(t, f, got)
		assert.Equal(t, name, f.String())
	}

	f, ok := ParseField("")
	assert.True(t, ok)
	assert.Equal(t, FieldNone, f)

	_, ok = ParseField("Boost")
	assert.False(t, ok)
	assert.Equal(t, "Unknown", Field(200).String())
}
