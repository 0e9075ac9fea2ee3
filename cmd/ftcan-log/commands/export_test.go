package commands

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/log"
)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test"+log.FileExt)

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// sampleEvents is a short capture: one simplified frame with its packet,
// one segmented frame with its assembly and items, and one dropped frame.
func sampleEvents() []log.Event {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	const session = "abc12345-0000-4000-8000-000000000000"
	return []log.Event{
		{
			Timestamp: ts, SessionID: session, Interface: "can0",
			Layer: log.LayerBus, Category: log.CategoryFrame, CANID: 0x14080602,
			Frame: &log.FrameEvent{Data: []byte{0x00, 0x62, 0x07, 0xD0, 0x00, 0x5A, 0x00, 0x00}, Extended: true},
		},
		{
			Timestamp: ts, SessionID: session, Interface: "can0",
			Layer: log.LayerTelemetry, Category: log.CategoryPacket, CANID: 0x14080602,
			Packet: &log.PacketEvent{Kind: "lambda_rpm", Values: map[string]float64{"lambda": 0.98, "rpm": 2000}},
		},
		{
			Timestamp: ts.Add(time.Millisecond), SessionID: session, Interface: "can0",
			Layer: log.LayerBus, Category: log.CategoryFrame, CANID: 0x140811FF,
			Frame: &log.FrameEvent{Data: []byte{0x00, 0x02, 0x00, 0x64}, Extended: true},
		},
		{
			Timestamp: ts.Add(time.Millisecond), SessionID: session, Interface: "can0",
			Layer: log.LayerSegment, Category: log.CategoryAssembly, CANID: 0x140811FF,
			Assembly: &log.AssemblyEvent{Outcome: "completed", Sequence: 0, Emitted: 4},
		},
		{
			Timestamp: ts.Add(time.Millisecond), SessionID: session, Interface: "can0",
			Layer: log.LayerTelemetry, Category: log.CategoryItems, CANID: 0x140811FF,
			Items: &log.ItemsEvent{Format: "record4be", PayloadLen: 4, Items: []log.ItemRecord{
				{Code: 0x0002, Raw: 100, Value: 10, Name: "MAP", Unit: "bar", Known: true},
			}},
		},
		{
			Timestamp: ts.Add(2 * time.Millisecond), SessionID: session, Interface: "can0",
			Layer: log.LayerSegment, Category: log.CategoryDrop, CANID: 0x140811FF,
			Drop: &log.DropEvent{Reason: log.DropOrphan, Detail: "seq 3"},
		},
	}
}

func TestExportToJSONL(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 is not valid JSON: %v", err)
	}
	if first["ts"] != "2026-01-28T10:15:32.123456Z" {
		t.Errorf("ts = %v", first["ts"])
	}
	if first["can_id"] != "0x14080602" {
		t.Errorf("can_id = %v", first["can_id"])
	}
	if first["layer"] != "BUS" || first["category"] != "FRAME" {
		t.Errorf("layer/category = %v/%v", first["layer"], first["category"])
	}
	if first["data"] != "006207d0005a0000" {
		t.Errorf("data = %v", first["data"])
	}

	var packet struct {
		Packet struct {
			Kind   string             `json:"kind"`
			Values map[string]float64 `json:"values"`
		} `json:"packet"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &packet); err != nil {
		t.Fatalf("line 1 is not valid JSON: %v", err)
	}
	if packet.Packet.Kind != "lambda_rpm" || packet.Packet.Values["rpm"] != 2000 {
		t.Errorf("packet = %+v", packet.Packet)
	}

	var drop struct {
		Drop struct {
			Reason string `json:"reason"`
			Detail string `json:"detail"`
		} `json:"drop"`
	}
	if err := json.Unmarshal([]byte(lines[5]), &drop); err != nil {
		t.Fatalf("line 5 is not valid JSON: %v", err)
	}
	if drop.Drop.Reason != "ORPHAN" || drop.Drop.Detail != "seq 3" {
		t.Errorf("drop = %+v", drop.Drop)
	}
}

func TestExportToCSV(t *testing.T) {
	path := createTestLogFile(t, sampleEvents())
	outPath := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("expected header + 6 rows, got %d", len(records))
	}
	if records[0][0] != "timestamp" || records[0][5] != "can_id" {
		t.Errorf("unexpected header: %v", records[0])
	}

	wantTypes := []string{"frame", "lambda_rpm", "frame", "completed", "items", "drop"}
	for i, want := range wantTypes {
		if got := records[i+1][6]; got != want {
			t.Errorf("row %d type = %q, want %q", i+1, got, want)
		}
	}
	if records[6][7] != "ORPHAN" {
		t.Errorf("drop detail = %q", records[6][7])
	}
}

func TestExportToCandump(t *testing.T) {
	events := sampleEvents()
	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "out.log")

	if err := RunExport(path, "candump", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	var entries []can.LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		entry, err := can.ParseCandumpLine(scanner.Text())
		if err != nil {
			t.Fatalf("exported line %q does not parse: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(entries))
	}
	first := entries[0]
	if first.Interface != "can0" || first.Frame.ID != 0x14080602 || !first.Frame.Extended {
		t.Errorf("first frame = %+v", first)
	}
	if !bytes.Equal(first.Frame.Data, events[0].Frame.Data) {
		t.Errorf("first frame data = % X", first.Frame.Data)
	}
	if !first.Timestamp.Equal(events[0].Timestamp) {
		t.Errorf("first timestamp = %v, want %v", first.Timestamp, events[0].Timestamp)
	}
	if entries[1].Frame.ID != 0x140811FF {
		t.Errorf("second frame id = %s", can.ID(entries[1].Frame.ID))
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, nil)

	err := RunExport(path, "xml", "")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExportMissingFile(t *testing.T) {
	if err := RunExport(filepath.Join(t.TempDir(), "missing"+log.FileExt), "jsonl", ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}
