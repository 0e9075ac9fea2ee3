package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/catalog"
	"github.com/ftcan-dash/ftcan-go/pkg/log"
	"github.com/ftcan-dash/ftcan-go/pkg/segment"
	"github.com/ftcan-dash/ftcan-go/pkg/telemetry"
	"github.com/ftcan-dash/ftcan-go/pkg/wire"
)

const (
	idLengthPrefixed = 0x140818FF
	idStreaming      = 0x140810FF
)

var t0 = time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)

// recordingLogger records capture events for testing
type recordingLogger struct {
	events []log.Event
}

func (r *recordingLogger) Log(event log.Event) {
	r.events = append(r.events, event)
}

func (r *recordingLogger) categories() []log.Category {
	var out []log.Category
	for _, e := range r.events {
		out = append(out, e.Category)
	}
	return out
}

func newDispatcher(t *testing.T, opts ...Option) *Dispatcher {
	t.Helper()
	d, err := New(DefaultRoutes(), opts...)
	require.NoError(t, err)
	return d
}

func TestDispatchSimplifiedPacket(t *testing.T) {
	d := newDispatcher(t)

	res := d.Dispatch(can.NewFrame(uint32(wire.IDLambdaRPM), []byte{0x00, 0x07, 0xD0, 0x0A, 0x01}), t0)

	require.Equal(t, OutcomePacket, res.Outcome)
	assert.Equal(t, wire.IDLambdaRPM, res.Update.ID)
	assert.IsType(t, wire.LambdaRPM{}, res.Update.Packet)
	assert.Same(t, d.Snapshot(), res.Update.Snapshot)

	snap := d.Snapshot()
	require.NotNil(t, snap.RPM)
	assert.Equal(t, 2000.0, *snap.RPM)
	require.NotNil(t, snap.OilTemp)
	assert.InDelta(t, 1.0, *snap.OilTemp, 1e-9)
	require.NotNil(t, snap.PitLimit)
	assert.True(t, *snap.PitLimit)
	assert.Equal(t, t0, snap.Updated)

	assert.Equal(t, uint64(1), d.Stats().Packets)
}

func TestDispatchLengthPrefixedSingleFrame(t *testing.T) {
	d := newDispatcher(t)

	res := d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{0, 5, 0, 0x84, 0x00, 0xD0, 0x07, 0x00}), t0)

	require.Equal(t, OutcomeItems, res.Outcome)
	assert.Equal(t, segment.OutcomeCompleted, res.Segment)
	require.Len(t, res.Update.Items, 1)
	it := res.Update.Items[0]
	assert.Equal(t, catalog.CodeRPM, it.Code)
	assert.Equal(t, 2000.0, it.Value)

	require.NotNil(t, d.Snapshot().RPM)
	assert.Equal(t, 2000.0, *d.Snapshot().RPM)
	assert.Equal(t, 0, d.Pending())
}

func TestDispatchLengthPrefixedMultiFrame(t *testing.T) {
	d := newDispatcher(t)

	res := d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{0, 10, 0, 0x84, 0x00, 0xD0, 0x07, 0x00}), t0)
	assert.Equal(t, OutcomePending, res.Outcome)
	assert.Equal(t, segment.OutcomeStarted, res.Segment)
	assert.True(t, res.Update.Empty())
	assert.Equal(t, 1, d.Pending())
	assert.Nil(t, d.Snapshot().RPM, "values are applied only on completion")

	res = d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{1, 0x0C, 0x00, 0x64, 0x00, 0x00}), t0.Add(time.Millisecond))
	require.Equal(t, OutcomeItems, res.Outcome)
	require.Len(t, res.Update.Items, 2)

	snap := d.Snapshot()
	assert.Equal(t, 2000.0, *snap.RPM)
	require.NotNil(t, snap.WheelSpeedFL)
	assert.Equal(t, 100.0, *snap.WheelSpeedFL)

	stats := d.Stats()
	assert.Equal(t, uint64(1), stats.Started)
	assert.Equal(t, uint64(1), stats.Completed)
	assert.Equal(t, uint64(2), stats.Items)
}

func TestDispatchStreamingRecords(t *testing.T) {
	d := newDispatcher(t)

	// measure 0x0108 (RPM) = 2000, then three bytes of the next record
	res := d.Dispatch(can.NewFrame(idStreaming, []byte{0, 0x01, 0x08, 0x07, 0xD0, 0x00, 0x18, 0x00}), t0)
	require.Equal(t, OutcomeItems, res.Outcome)
	assert.Equal(t, segment.OutcomeEmitted, res.Segment)
	require.Len(t, res.Update.Items, 1)
	assert.Equal(t, 2000.0, res.Update.Items[0].Value)

	// completes measure 0x0018 (wheel speed FL) = 100
	res = d.Dispatch(can.NewFrame(idStreaming, []byte{1, 0x64}), t0)
	require.Equal(t, OutcomeItems, res.Outcome)
	require.Len(t, res.Update.Items, 1)
	assert.Equal(t, catalog.CodeWheelSpeedFL, res.Update.Items[0].Code)
	assert.Equal(t, 100.0, *d.Snapshot().WheelSpeedFL)
}

func TestDispatchIgnoresUnknownIdentifier(t *testing.T) {
	rec := &recordingLogger{}
	d := newDispatcher(t, WithLogger(rec))

	res := d.Dispatch(can.NewFrame(0x14080700, []byte{1, 2, 3}), t0)

	assert.Equal(t, OutcomeIgnored, res.Outcome)
	assert.True(t, res.Update.Empty())
	assert.Equal(t, uint64(1), d.Stats().Ignored)
	assert.True(t, d.Snapshot().Updated.IsZero())

	require.Equal(t, []log.Category{log.CategoryFrame, log.CategoryDrop}, rec.categories())
	assert.Equal(t, log.DropUnknownID, rec.events[1].Drop.Reason)
}

func TestDispatchMalformedSimplified(t *testing.T) {
	d := newDispatcher(t)
	d.Dispatch(can.NewFrame(uint32(wire.IDLambdaRPM), []byte{0x00, 0x07, 0xD0, 0x0A, 0x01}), t0)

	res := d.Dispatch(can.NewFrame(uint32(wire.IDLambdaRPM), []byte{0x00, 0x0F}), t0.Add(time.Second))

	assert.Equal(t, OutcomeMalformed, res.Outcome)
	assert.Equal(t, 2000.0, *d.Snapshot().RPM, "snapshot untouched")
	assert.Equal(t, t0, d.Snapshot().Updated)
	assert.Equal(t, uint64(1), d.Stats().Malformed)
}

func TestDispatchSegmentDrops(t *testing.T) {
	rec := &recordingLogger{}
	d := newDispatcher(t, WithLogger(rec))

	res := d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{3, 0xAA}), t0)
	assert.Equal(t, OutcomeDropped, res.Outcome)
	assert.Equal(t, segment.OutcomeOrphan, res.Segment)

	res = d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{0, 9}), t0)
	assert.Equal(t, OutcomeMalformed, res.Outcome)
	assert.Equal(t, segment.OutcomeMalformed, res.Segment)

	stats := d.Stats()
	assert.Equal(t, uint64(1), stats.Orphans)
	assert.Equal(t, uint64(1), stats.Malformed)
	assert.Equal(t, uint64(2), stats.Dropped())

	var reasons []log.DropReason
	for _, e := range rec.events {
		if e.Drop != nil {
			reasons = append(reasons, e.Drop.Reason)
		}
	}
	assert.Equal(t, []log.DropReason{log.DropOrphan, log.DropMalformed}, reasons)
}

func TestDispatchStrictSequencing(t *testing.T) {
	routes := append(SimplifiedRoutes(), LengthPrefixedRoutes(segment.Strict)...)
	d, err := New(routes)
	require.NoError(t, err)

	d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{0, 20, 0, 1, 2, 3, 4, 5}), t0)
	res := d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{2, 6, 7}), t0)

	assert.Equal(t, OutcomeDropped, res.Outcome)
	assert.Equal(t, segment.OutcomeOutOfSequence, res.Segment)
	assert.Equal(t, 0, d.Pending())
	assert.Equal(t, uint64(1), d.Stats().OutOfSequence)
}

func TestDispatchIdentifiersAreIsolated(t *testing.T) {
	d := newDispatcher(t)
	other := uint32(0x140819FF)

	d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{0, 10, 0, 0x84, 0x00, 0xD0, 0x07, 0x00}), t0)
	res := d.Dispatch(can.NewFrame(other, []byte{0, 5, 0, 0x0D, 0x00, 0x32, 0x00, 0x00}), t0)
	require.Equal(t, OutcomeItems, res.Outcome)
	assert.Equal(t, can.ID(other), res.Update.ID)

	assert.Equal(t, 1, d.Pending(), "first identifier still assembling")
	assert.Equal(t, 50.0, *d.Snapshot().WheelSpeedFR)
}

func TestDispatchCaptureEvents(t *testing.T) {
	rec := &recordingLogger{}
	d := newDispatcher(t, WithLogger(rec), WithSessionID("s-1"), WithInterface("can0"))

	d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{0, 5, 0, 0x84, 0x00, 0xD0, 0x07, 0x00}), t0)

	require.Equal(t, []log.Category{log.CategoryFrame, log.CategoryAssembly, log.CategoryItems}, rec.categories())
	for _, e := range rec.events {
		assert.Equal(t, "s-1", e.SessionID)
		assert.Equal(t, "can0", e.Interface)
		assert.Equal(t, uint32(idLengthPrefixed), e.CANID)
		assert.Equal(t, t0, e.Timestamp)
	}

	assert.Equal(t, log.LayerBus, rec.events[0].Layer)
	assert.Equal(t, log.LayerSegment, rec.events[1].Layer)
	assert.Equal(t, "completed", rec.events[1].Assembly.Outcome)
	assert.Equal(t, 5, rec.events[1].Assembly.Emitted)
	assert.Equal(t, log.LayerTelemetry, rec.events[2].Layer)
	assert.Len(t, rec.events[2].Items.Items, 1)
}

func TestDispatchWithSnapshot(t *testing.T) {
	snap := &telemetry.Snapshot{}
	d := newDispatcher(t, WithSnapshot(snap))

	d.Dispatch(can.NewFrame(uint32(wire.IDWheelSpeeds), []byte{0x00, 0x64, 0x00, 0x64, 0x00, 0x64, 0x00, 0x64}), t0)

	assert.Same(t, snap, d.Snapshot())
	speed, ok := snap.VehicleSpeed()
	require.True(t, ok)
	assert.Equal(t, 100.0, speed)
}

func TestDispatchWithCatalog(t *testing.T) {
	cat := catalog.New(catalog.Descriptor{Code: 0x0084, Name: "Engine speed", Unit: "rpm", Scale: 0.5, Field: catalog.FieldRPM})
	d := newDispatcher(t, WithCatalog(cat))

	res := d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{0, 5, 0, 0x84, 0x00, 0xD0, 0x07, 0x00}), t0)

	require.Len(t, res.Update.Items, 1)
	assert.Equal(t, "Engine speed", res.Update.Items[0].Name)
	assert.Equal(t, 1000.0, *d.Snapshot().RPM)
}

func TestDispatchSweep(t *testing.T) {
	routes := LengthPrefixedRoutes(segment.Tolerant)
	for i := range routes {
		routes[i].Segment.StaleAfter = 50 * time.Millisecond
	}
	d, err := New(routes)
	require.NoError(t, err)

	d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{0, 20, 0, 1, 2, 3, 4, 5}), t0)
	assert.Equal(t, 0, d.Sweep(t0.Add(10*time.Millisecond)))
	assert.Equal(t, 1, d.Sweep(t0.Add(100*time.Millisecond)))
	assert.Equal(t, 0, d.Pending())
	assert.Equal(t, uint64(1), d.Stats().Expired)
}

func TestDispatchReset(t *testing.T) {
	d := newDispatcher(t)
	d.Dispatch(can.NewFrame(idLengthPrefixed, []byte{0, 20, 0, 1, 2, 3, 4, 5}), t0)
	d.Dispatch(can.NewFrame(idStreaming, []byte{0, 1, 2}), t0)
	require.Equal(t, 2, d.Pending())

	d.Reset()
	assert.Equal(t, 0, d.Pending())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ignored", OutcomeIgnored.String())
	assert.Equal(t, "items", OutcomeItems.String())
	assert.Equal(t, "dropped", OutcomeDropped.String())
	assert.Equal(t, "Outcome(42)", Outcome(42).String())
}
