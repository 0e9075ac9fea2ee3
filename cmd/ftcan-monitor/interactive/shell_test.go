package interactive

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ftcan-dash/ftcan-go/pkg/dispatch"
	"github.com/ftcan-dash/ftcan-go/pkg/stream"
	"github.com/ftcan-dash/ftcan-go/pkg/telemetry"
)

type fakeMonitor struct {
	stats   dispatch.Stats
	snap    telemetry.Snapshot
	clients []stream.ClientInfo
}

func (f *fakeMonitor) Stats() dispatch.Stats { return f.stats }
func (f *fakeMonitor) Snapshot() telemetry.Snapshot { return f.snap }
func (f *fakeMonitor) Routes() dispatch.Routes { return dispatch.DefaultRoutes() }
func (f *fakeMonitor) SourceState() string { return "CONNECTED" }
func (f *fakeMonitor) Clients() []stream.ClientInfo { return f.clients }

func newTestShell(mon Monitor) *Shell {
	return &Shell{mon: mon, started: time.Now()}
}

func run(t *testing.T, s *Shell, line string) string {
	t.Helper()
	var buf bytes.Buffer
	assert.False(t, s.Execute(line, &buf))
	return buf.String()
}

func ptr[T any](v T) *T { return &v }

func TestShellStats(t *testing.T) {
	s := newTestShell(&fakeMonitor{stats: dispatch.Stats{
		Frames: 120, Ignored: 3, Packets: 40, Started: 10, Completed: 9,
		Emitted: 9, Items: 27, Orphans: 2, Malformed: 1,
	}})

	out := run(t, s, "stats")
	assert.Contains(t, out, "Source:      CONNECTED")
	assert.Contains(t, out, "Frames:      120 (ignored 3)")
	assert.Contains(t, out, "Payloads:    9 emitted, 27 items")
	assert.Contains(t, out, "Dropped:     3 (malformed 1, orphan 2")
	assert.NotContains(t, out, "Expired")
}

func TestShellSnapshot(t *testing.T) {
	mon := &fakeMonitor{}
	s := newTestShell(mon)

	assert.Contains(t, run(t, s, "snapshot"), "No telemetry received yet")

	mon.snap = telemetry.Snapshot{
		RPM:        ptr(3500.0),
		EngineTemp: ptr(88.5),
		PitLimit:   ptr(true),
		Updated:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	out := run(t, s, "snap")
	assert.Contains(t, out, "RPM=3500")
	assert.Contains(t, out, "Engine temp:    88.5 °C")
	assert.Contains(t, out, "Pit limiter:    true")
	assert.NotContains(t, out, "Oil pressure")
}

func TestShellChannels(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mon := &fakeMonitor{}
	s := newTestShell(mon)

	assert.Contains(t, run(t, s, "channels"), "No channels decoded yet")

	mon.snap = telemetry.Snapshot{
		Updated: at,
		Channels: map[uint16]telemetry.Channel{
			0x0084: {Name: "RPM", Unit: "rpm", Raw: 3500, Value: 3500, Known: true, At: at},
			0x0001: {Name: "TPS", Unit: "%", Raw: 125, Value: 12.5, Known: true, At: at},
			0x0FFF: {Name: "DataID 0x0FFF", Raw: 7, Value: 7, At: at},
		},
	}

	out := run(t, s, "ch")
	assert.Less(t, bytes.Index([]byte(out), []byte("0x0001")), bytes.Index([]byte(out), []byte("0x0084")),
		"channels sorted by code")
	assert.Contains(t, out, "(unknown)")

	one := run(t, s, "channels 0x0084")
	assert.Contains(t, one, "RPM")
	assert.NotContains(t, one, "TPS")

	assert.Contains(t, run(t, s, "channels 0x0002"), "DataID 0x0002 not received")
	assert.Contains(t, run(t, s, "channels rpm"), "Invalid DataID")
}

func TestShellRoutes(t *testing.T) {
	out := run(t, newTestShell(&fakeMonitor{}), "routes")
	assert.Contains(t, out, "0x14080600")
	assert.Contains(t, out, "0x140811FF")
	assert.Contains(t, out, "0x14081BFF")
}

func TestShellClients(t *testing.T) {
	mon := &fakeMonitor{}
	s := newTestShell(mon)

	assert.Contains(t, run(t, s, "clients"), "Streaming is disabled")

	mon.clients = []stream.ClientInfo{
		{ID: "0123456789abcdef", RemoteAddr: "10.0.0.2:50000", Since: time.Now()},
	}
	out := run(t, s, "clients")
	assert.Contains(t, out, "Stream clients: 1")
	assert.Contains(t, out, "[01234567] 10.0.0.2:50000")
}

func TestShellHelpAndUnknown(t *testing.T) {
	s := newTestShell(&fakeMonitor{})

	assert.Contains(t, run(t, s, "help"), "FTCAN Monitor Commands")
	assert.Contains(t, run(t, s, "frobnicate"), "Unknown command: frobnicate")
	assert.Empty(t, run(t, s, "   "))
}

func TestShellQuit(t *testing.T) {
	s := newTestShell(&fakeMonitor{})
	for _, cmd := range []string{"quit", "exit", "Q"} {
		var buf bytes.Buffer
		assert.True(t, s.Execute(cmd, &buf), cmd)
	}
}
