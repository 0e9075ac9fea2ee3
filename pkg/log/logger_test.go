package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/wire"
)

// recordingLogger records events for testing
type recordingLogger struct {
	events []Event
}

func (m *recordingLogger) Log(event Event) {
	m.events = append(m.events, event)
}

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{Timestamp: time.Now(), Layer: LayerBus, Category: CategoryFrame}
	logger.Log(event)

	event.Frame = &FrameEvent{Data: []byte{1, 2, 3}}
	logger.Log(event)

	event.Frame = nil
	event.Drop = &DropEvent{Reason: DropOrphan}
	logger.Log(event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &recordingLogger{}
	mock2 := &recordingLogger{}

	multi := NewMultiLogger(mock1, nil, mock2)
	if multi.Len() != 2 {
		t.Fatalf("Len = %d, want 2", multi.Len())
	}

	multi.Log(Event{Timestamp: time.Now(), SessionID: "s-123"})

	for i, mock := range []*recordingLogger{mock1, mock2} {
		if len(mock.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(mock.events))
			continue
		}
		if mock.events[0].SessionID != "s-123" {
			t.Errorf("logger %d: SessionID = %q", i, mock.events[0].SessionID)
		}
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	NewMultiLogger().Log(Event{Timestamp: time.Now()})
}

func newJSONSlog(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func parseLine(t *testing.T, s string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", s, err)
	}
	return entry
}

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newJSONSlog(&buf))

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "s-1",
		Interface: "can0",
		Layer:     LayerBus,
		Category:  CategoryFrame,
		CANID:     0x14080602,
		Frame:     NewFrameEvent(can.NewFrame(0x14080602, []byte{0x00, 0x07, 0xD0})),
	})

	entry := parseLine(t, buf.String())
	if entry["level"] != "DEBUG" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["can_id"] != "0x14080602" {
		t.Errorf("can_id = %v", entry["can_id"])
	}
	if entry["layer"] != "BUS" || entry["category"] != "FRAME" {
		t.Errorf("layer/category = %v/%v", entry["layer"], entry["category"])
	}
	if entry["dlc"] != float64(3) {
		t.Errorf("dlc = %v", entry["dlc"])
	}
	if entry["data"] != "00 07 D0" {
		t.Errorf("data = %v", entry["data"])
	}
	if entry["iface"] != "can0" {
		t.Errorf("iface = %v", entry["iface"])
	}
}

func TestSlogAdapterLogsPacketEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newJSONSlog(&buf))

	adapter.Log(Event{
		Timestamp: time.Now(),
		Layer:     LayerTelemetry,
		Category:  CategoryPacket,
		CANID:     uint32(wire.IDLambdaRPM),
		Packet:    NewPacketEvent(wire.LambdaRPM{RPM: 2000}),
	})

	entry := parseLine(t, buf.String())
	if entry["packet"] != "lambda_rpm" {
		t.Errorf("packet = %v", entry["packet"])
	}
	if entry["rpm"] != float64(2000) {
		t.Errorf("rpm = %v", entry["rpm"])
	}
}

func TestSlogAdapterLogsAssemblyEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newJSONSlog(&buf))

	adapter.Log(Event{
		Timestamp: time.Now(),
		Layer:     LayerSegment,
		Category:  CategoryAssembly,
		CANID:     0x140818FF,
		Assembly:  &AssemblyEvent{Outcome: "completed", Sequence: 2, Emitted: 12, Replaced: true},
	})

	entry := parseLine(t, buf.String())
	if entry["outcome"] != "completed" || entry["emitted"] != float64(12) || entry["replaced"] != true {
		t.Errorf("entry = %v", entry)
	}
}

func TestSlogAdapterDropLevels(t *testing.T) {
	tests := []struct {
		reason DropReason
		level  string
	}{
		{DropOrphan, "WARN"},
		{DropMalformed, "WARN"},
		{DropUnknownID, "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(tt.reason.String(), func(t *testing.T) {
			var buf bytes.Buffer
			adapter := NewSlogAdapter(newJSONSlog(&buf))
			adapter.Log(Event{
				Timestamp: time.Now(),
				Category:  CategoryDrop,
				Drop:      &DropEvent{Reason: tt.reason, Detail: "len 2"},
			})

			entry := parseLine(t, buf.String())
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if entry["reason"] != tt.reason.String() || entry["detail"] != "len 2" {
				t.Errorf("entry = %v", entry)
			}
		})
	}
}
