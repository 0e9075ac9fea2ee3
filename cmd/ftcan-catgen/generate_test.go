package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ftcan-dash/ftcan-go/pkg/catalog"
)

func mustContain(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Errorf("output missing %q\n--- output ---\n%s", want, output)
	}
}

func sampleEntries() []catalog.Entry {
	return []catalog.Entry{
		{Code: 0x0084, Const: "RPM", Name: "RPM", Unit: "rpm", Scale: 1, Field: "RPM"},
		{Code: 0x0003, Name: "Air temperature", Unit: "°C", Scale: 0.1, Signed: true, Field: "AirTemp"},
		{Code: 0x0008, Name: "Launch mode", Scale: 1},
	}
}

func TestGenerateHeader(t *testing.T) {
	output, err := Generate("catalog", "dataids.yaml", sampleEntries())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.HasPrefix(output, "// Code generated by ftcan-catgen from dataids.yaml. DO NOT EDIT.") {
		t.Errorf("missing generated header:\n%s", output)
	}
	mustContain(t, output, "package catalog")
}

func TestGenerateConstants(t *testing.T) {
	output, err := Generate("catalog", "dataids.yaml", sampleEntries())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	mustContain(t, output, "CodeRPM uint16 = 0x0084")
	mustContain(t, output, "CodeAirTemperature uint16 = 0x0003")
	mustContain(t, output, "CodeLaunchMode uint16 = 0x0008")

	// Sorted by code.
	if strings.Index(output, "CodeAirTemperature uint16") > strings.Index(output, "CodeRPM uint16") {
		t.Error("constants not sorted by code")
	}
}

func TestGenerateDescriptors(t *testing.T) {
	output, err := Generate("catalog", "dataids.yaml", sampleEntries())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	mustContain(t, output, `{Code: CodeAirTemperature, Name: "Air temperature", Unit: "°C", Scale: 0.1, Signed: true, Field: FieldAirTemp}`)
	mustContain(t, output, `{Code: CodeRPM, Name: "RPM", Unit: "rpm", Scale: 1, Signed: false, Field: FieldRPM}`)
	mustContain(t, output, `{Code: CodeLaunchMode, Name: "Launch mode", Unit: "", Scale: 1, Signed: false, Field: FieldNone}`)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		entries []catalog.Entry
		want    string
	}{
		{
			name:    "duplicate constant",
			entries: []catalog.Entry{{Code: 1, Const: "X", Name: "a", Scale: 1}, {Code: 2, Const: "X", Name: "b", Scale: 1}},
			want:    "already used by 0x0001",
		},
		{
			name:    "invalid constant",
			entries: []catalog.Entry{{Code: 1, Const: "no-dash", Name: "a", Scale: 1}},
			want:    "invalid constant name",
		},
		{
			name:    "invalid entry",
			entries: []catalog.Entry{{Code: 1, Name: "a"}},
			want:    "zero scale",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate("catalog", "dataids.yaml", tt.entries)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestGoTitleCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Air temperature", "AirTemperature"},
		{"Wheel speed FL", "WheelSpeedFL"},
		{"Exhaust O2", "ExhaustO2"},
		{"RPM", "RPM"},
		{"oil-pressure", "OilPressure"},
	}
	for _, tt := range tests {
		if got := goTitleCase(tt.in); got != tt.want {
			t.Errorf("goTitleCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// The checked-in table must match what the generator produces from the
// checked-in YAML.
func TestGeneratedCatalogUpToDate(t *testing.T) {
	dir := filepath.Join("..", "..", "pkg", "catalog")
	out := filepath.Join(t.TempDir(), "catalog_gen.go")

	if err := run(filepath.Join(dir, "dataids.yaml"), out, "catalog"); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile(filepath.Join(dir, "catalog_gen.go"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(want) {
		t.Errorf("pkg/catalog/catalog_gen.go is stale; run go generate ./pkg/catalog\n--- generated ---\n%s", got)
	}
}
