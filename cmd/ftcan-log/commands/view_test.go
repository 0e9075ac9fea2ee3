package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ftcan-dash/ftcan-go/pkg/log"
)

func TestViewFormatsEvents(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"2026-01-28T10:15:32.123456Z [session:abc12345] BUS",
		"0x14080602 can0",
		"Data: 006207D0005A0000",
		"Kind: lambda_rpm",
		"rpm:",
		"Outcome: completed",
		"0x0002 MAP",
		"10 bar (raw 100)",
		"Reason: ORPHAN",
		"Detail: seq 3",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestViewFilters(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	layer := log.LayerBus
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Layer: &layer}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if n := strings.Count(buf.String(), "[session:"); n != 2 {
		t.Errorf("bus layer: got %d events, want 2", n)
	}

	buf.Reset()
	if err := RunView(path, ViewFilter{CANIDs: []uint32{0x140811FF}}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if n := strings.Count(buf.String(), "[session:"); n != 4 {
		t.Errorf("id filter: got %d events, want 4", n)
	}

	category := log.CategoryDrop
	buf.Reset()
	if err := RunView(path, ViewFilter{Category: &category}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	if n := strings.Count(buf.String(), "[session:"); n != 1 {
		t.Errorf("drop category: got %d events, want 1", n)
	}
}

func TestParseLayerFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Layer
		wantErr bool
	}{
		{"bus", log.LayerBus, false},
		{"SEGMENT", log.LayerSegment, false},
		{"Telemetry", log.LayerTelemetry, false},
		{"wire", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLayerFlag(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLayerFlag(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLayerFlag(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseCategoryFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Category
		wantErr bool
	}{
		{"frame", log.CategoryFrame, false},
		{"packet", log.CategoryPacket, false},
		{"ITEMS", log.CategoryItems, false},
		{"assembly", log.CategoryAssembly, false},
		{"drop", log.CategoryDrop, false},
		{"message", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCategoryFlag(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCategoryFlag(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCategoryFlag(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseIDsFlag(t *testing.T) {
	ids, err := ParseIDsFlag("0x14080602, 0x140811FF")
	if err != nil {
		t.Fatalf("ParseIDsFlag failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != 0x14080602 || ids[1] != 0x140811FF {
		t.Errorf("ids = %X", ids)
	}

	if ids, err := ParseIDsFlag(""); err != nil || ids != nil {
		t.Errorf("empty flag = %v, %v", ids, err)
	}
	if _, err := ParseIDsFlag("0x14080602,bogus"); err == nil {
		t.Error("expected error for invalid id")
	}
}
