package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/log"
)

func TestCollectStats(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	stats, err := CollectStats(path)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}

	if stats.TotalEvents != 6 {
		t.Errorf("TotalEvents = %d, want 6", stats.TotalEvents)
	}
	if got := stats.EventsByLayer[log.LayerBus]; got != 2 {
		t.Errorf("bus events = %d, want 2", got)
	}
	if got := stats.EventsByLayer[log.LayerSegment]; got != 2 {
		t.Errorf("segment events = %d, want 2", got)
	}
	if got := stats.EventsByCategory[log.CategoryFrame]; got != 2 {
		t.Errorf("frame events = %d, want 2", got)
	}
	if got := stats.DropsByReason[log.DropOrphan]; got != 1 {
		t.Errorf("orphan drops = %d, want 1", got)
	}
	if got := stats.EventsByID[0x140811FF]; got != 4 {
		t.Errorf("events for 0x140811FF = %d, want 4", got)
	}
	if len(stats.Sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(stats.Sessions))
	}
	for _, s := range stats.Sessions {
		if s.Frames != 2 || s.Events != 6 || s.Interface != "can0" {
			t.Errorf("session = %+v", s)
		}
		if d := s.LastSeen.Sub(s.FirstSeen); d != 2*time.Millisecond {
			t.Errorf("session duration = %v", d)
		}
	}
}

func TestStatsOutput(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 6",
		"BUS:",
		"TELEMETRY:",
		"ASSEMBLY:",
		"ORPHAN:",
		"0x140811FF  4",
		"Sessions: 1",
		"[abc12345] 6 events, 2 frames",
		"Interface: can0",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()
	if !strings.Contains(output, "Total Events: 0") {
		t.Errorf("expected zero events:\n%s", output)
	}
	if strings.Contains(output, "Time Range") {
		t.Error("empty capture has no time range")
	}
}
