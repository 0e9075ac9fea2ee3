package dispatch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/catalog"
	"github.com/ftcan-dash/ftcan-go/pkg/log"
	"github.com/ftcan-dash/ftcan-go/pkg/segment"
	"github.com/ftcan-dash/ftcan-go/pkg/telemetry"
	"github.com/ftcan-dash/ftcan-go/pkg/wire"
)

// Outcome describes how a frame was handled.
type Outcome uint8

const (
	// OutcomeIgnored means no route matched the identifier.
	OutcomeIgnored Outcome = iota

	// OutcomePacket means a simplified packet was decoded.
	OutcomePacket

	// OutcomePending means the reassembler buffered the frame.
	OutcomePending

	// OutcomeItems means a segmented payload was emitted and decoded.
	OutcomeItems

	// OutcomeMalformed means the frame was too short for its layout.
	OutcomeMalformed

	// OutcomeDropped means the reassembler discarded the frame.
	// Result.Segment tells why.
	OutcomeDropped
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomePacket:
		return "packet"
	case OutcomePending:
		return "pending"
	case OutcomeItems:
		return "items"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeDropped:
		return "dropped"
	default:
		return fmt.Sprintf("Outcome(%d)", o)
	}
}

// Result is returned by Dispatch.
type Result struct {
	Outcome Outcome

	// Segment is the reassembler outcome of a segmented route.
	Segment segment.Outcome

	// Update carries the decoded values. It is empty unless Outcome is
	// OutcomePacket or OutcomeItems.
	Update telemetry.Update
}

type route struct {
	Route
	rs *segment.Reassembler
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger captures frames, decoded values and drops to logger.
func WithLogger(logger log.Logger) Option {
	return func(d *Dispatcher) {
		d.capture = logger
	}
}

// WithSessionID tags captured events with a session identifier.
func WithSessionID(id string) Option {
	return func(d *Dispatcher) {
		d.sessionID = id
	}
}

// WithInterface tags captured events with the bus name.
func WithInterface(name string) Option {
	return func(d *Dispatcher) {
		d.iface = name
	}
}

// WithCatalog replaces the default DataID catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(d *Dispatcher) {
		d.cat = cat
	}
}

// WithSnapshot makes the dispatcher write into a caller-owned snapshot.
func WithSnapshot(s *telemetry.Snapshot) Option {
	return func(d *Dispatcher) {
		d.snap = s
	}
}

// WithSlog sets the logger for operational messages. If nil, logging is disabled.
func WithSlog(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithReceiveTimeout sets how long Run waits for a frame before checking
// for cancellation and sweeping stale assemblies.
func WithReceiveTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.receiveTimeout = timeout
	}
}

// DefaultReceiveTimeout is the receive timeout used by Run.
const DefaultReceiveTimeout = 100 * time.Millisecond

// Dispatcher routes frames to the decoders and owns the reassembly state.
type Dispatcher struct {
	routes map[can.ID]*route
	table  Routes
	cat    *catalog.Catalog
	snap   *telemetry.Snapshot

	capture   log.Logger
	sessionID string
	iface     string
	logger    *slog.Logger

	receiveTimeout time.Duration
	stats          counters
}

// New creates a dispatcher for the given routes.
func New(routes Routes, opts ...Option) (*Dispatcher, error) {
	if err := routes.Validate(); err != nil {
		return nil, err
	}

	d := &Dispatcher{
		routes:         make(map[can.ID]*route, len(routes)),
		table:          append(Routes(nil), routes...),
		cat:            catalog.Default(),
		receiveTimeout: DefaultReceiveTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.snap == nil {
		d.snap = &telemetry.Snapshot{}
	}

	for _, r := range routes {
		rt := &route{Route: r}
		if r.Kind == KindSegmented {
			cfg := r.Segment
			if cfg.Policy == segment.Streaming && cfg.RecordWidth == 0 {
				cfg.RecordWidth = r.Format.Width()
			}
			rt.rs = segment.New(cfg)
		}
		d.routes[r.ID] = rt
	}
	return d, nil
}

// Routes returns a copy of the route table.
func (d *Dispatcher) Routes() Routes {
	return append(Routes(nil), d.table...)
}

// Snapshot returns the snapshot the dispatcher writes into.
func (d *Dispatcher) Snapshot() *telemetry.Snapshot {
	return d.snap
}

// Dispatch processes one frame received at time at.
func (d *Dispatcher) Dispatch(f can.Frame, at time.Time) Result {
	d.stats.frames.Add(1)
	d.logFrame(f, at)

	r, ok := d.routes[can.ID(f.ID)]
	if !ok {
		d.stats.ignored.Add(1)
		d.logDrop(f.ID, at, log.DropUnknownID, "")
		return Result{Outcome: OutcomeIgnored}
	}

	switch r.Kind {
	case KindSimplified:
		return d.dispatchSimplified(f, at)
	default:
		return d.dispatchSegmented(r, f, at)
	}
}

func (d *Dispatcher) dispatchSimplified(f can.Frame, at time.Time) Result {
	p, ok := wire.DecodeSimplified(f)
	if !ok {
		d.stats.malformed.Add(1)
		d.logDrop(f.ID, at, log.DropMalformed, fmt.Sprintf("len %d", len(f.Data)))
		return Result{Outcome: OutcomeMalformed}
	}

	d.snap.ApplyPacket(p, at)
	d.stats.packets.Add(1)
	d.log(log.Event{
		Timestamp: at,
		Layer:     log.LayerTelemetry,
		Category:  log.CategoryPacket,
		CANID:     f.ID,
		Packet:    log.NewPacketEvent(p),
	})

	return Result{
		Outcome: OutcomePacket,
		Update: telemetry.Update{
			At:       at,
			ID:       p.ID(),
			Packet:   p,
			Snapshot: d.snap,
		},
	}
}

func (d *Dispatcher) dispatchSegmented(r *route, f can.Frame, at time.Time) Result {
	res := r.rs.Push(f, at)
	d.stats.count(res)
	d.log(log.Event{
		Timestamp: at,
		Layer:     log.LayerSegment,
		Category:  log.CategoryAssembly,
		CANID:     f.ID,
		Assembly: &log.AssemblyEvent{
			Outcome:  res.Outcome.String(),
			Sequence: res.Sequence,
			Buffered: r.rs.Buffered(f.ID),
			Emitted:  len(res.Payload),
			Replaced: res.Replaced,
		},
	})
	if res.Replaced {
		d.debug("assembly replaced", f.ID, "seq", res.Sequence)
	}

	switch res.Outcome {
	case segment.OutcomeMalformed:
		d.logDrop(f.ID, at, log.DropMalformed, fmt.Sprintf("len %d", len(f.Data)))
		return Result{Outcome: OutcomeMalformed, Segment: res.Outcome}
	case segment.OutcomeOrphan:
		d.logDrop(f.ID, at, log.DropOrphan, fmt.Sprintf("seq %d", res.Sequence))
		return Result{Outcome: OutcomeDropped, Segment: res.Outcome}
	case segment.OutcomeOutOfSequence:
		d.logDrop(f.ID, at, log.DropOutOfSequence, fmt.Sprintf("seq %d", res.Sequence))
		return Result{Outcome: OutcomeDropped, Segment: res.Outcome}
	case segment.OutcomeStale:
		d.logDrop(f.ID, at, log.DropStale, fmt.Sprintf("seq %d", res.Sequence))
		return Result{Outcome: OutcomeDropped, Segment: res.Outcome}
	}

	if res.Payload == nil {
		return Result{Outcome: OutcomePending, Segment: res.Outcome}
	}

	items := wire.DecodeItems(res.Payload, r.Format, d.cat)
	for _, it := range items {
		d.snap.ApplyItem(it, at)
	}
	d.stats.items.Add(uint64(len(items)))
	d.log(log.Event{
		Timestamp: at,
		Layer:     log.LayerTelemetry,
		Category:  log.CategoryItems,
		CANID:     f.ID,
		Items:     log.NewItemsEvent(r.Format, len(res.Payload), items),
	})

	return Result{
		Outcome: OutcomeItems,
		Segment: res.Outcome,
		Update: telemetry.Update{
			At:       at,
			ID:       can.ID(f.ID),
			Items:    items,
			Snapshot: d.snap,
		},
	}
}

// Sweep discards assemblies idle for longer than their route's StaleAfter
// and returns how many were removed.
func (d *Dispatcher) Sweep(now time.Time) int {
	removed := 0
	for _, r := range d.routes {
		if r.rs != nil {
			removed += r.rs.Sweep(now)
		}
	}
	if removed > 0 {
		d.stats.expired.Add(uint64(removed))
		d.debug("expired assemblies", 0, "count", removed)
	}
	return removed
}

// Pending returns the number of assemblies in progress across all routes.
func (d *Dispatcher) Pending() int {
	n := 0
	for _, r := range d.routes {
		if r.rs != nil {
			n += r.rs.Pending()
		}
	}
	return n
}

// Reset abandons every assembly. The snapshot is kept.
func (d *Dispatcher) Reset() {
	for _, r := range d.routes {
		if r.rs != nil {
			r.rs.Reset()
		}
	}
}

func (d *Dispatcher) log(event log.Event) {
	if d.capture == nil {
		return
	}
	event.SessionID = d.sessionID
	event.Interface = d.iface
	d.capture.Log(event)
}

func (d *Dispatcher) logFrame(f can.Frame, at time.Time) {
	if d.capture == nil {
		return
	}
	d.log(log.Event{
		Timestamp: at,
		Layer:     log.LayerBus,
		Category:  log.CategoryFrame,
		CANID:     f.ID,
		Frame:     log.NewFrameEvent(f),
	})
}

func (d *Dispatcher) logDrop(id uint32, at time.Time, reason log.DropReason, detail string) {
	if d.capture == nil {
		return
	}
	layer := log.LayerSegment
	if reason == log.DropUnknownID {
		layer = log.LayerBus
	}
	d.log(log.Event{
		Timestamp: at,
		Layer:     layer,
		Category:  log.CategoryDrop,
		CANID:     id,
		Drop:      &log.DropEvent{Reason: reason, Detail: detail},
	})
}

func (d *Dispatcher) debug(msg string, id uint32, args ...any) {
	if d.logger == nil {
		return
	}
	if id != 0 {
		args = append([]any{"can_id", can.ID(id)}, args...)
	}
	d.logger.Debug(msg, args...)
}
