package dispatch

import (
	"sync/atomic"

	"github.com/ftcan-dash/ftcan-go/pkg/segment"
)

// Stats counts dispatched frames by outcome.
type Stats struct {
	Frames    uint64 `json:"frames"`
	Ignored   uint64 `json:"ignored"`
	Packets   uint64 `json:"packets"`
	Malformed uint64 `json:"malformed"`

	Started       uint64 `json:"started"`
	Restarted     uint64 `json:"restarted"`
	Appended      uint64 `json:"appended"`
	Completed     uint64 `json:"completed"`
	Emitted       uint64 `json:"emitted"`
	Orphans       uint64 `json:"orphans"`
	OutOfSequence uint64 `json:"out_of_sequence"`
	Stale         uint64 `json:"stale"`

	// Expired counts assemblies removed by Sweep.
	Expired uint64 `json:"expired"`

	// Items counts decoded item records.
	Items uint64 `json:"items"`
}

// Dropped returns the number of frames discarded after routing.
func (s Stats) Dropped() uint64 {
	return s.Malformed + s.Orphans + s.OutOfSequence + s.Stale
}

// counters is written by the decode goroutine and read by any goroutine.
type counters struct {
	frames        atomic.Uint64
	ignored       atomic.Uint64
	packets       atomic.Uint64
	malformed     atomic.Uint64
	started       atomic.Uint64
	restarted     atomic.Uint64
	appended      atomic.Uint64
	completed     atomic.Uint64
	emitted       atomic.Uint64
	orphans       atomic.Uint64
	outOfSequence atomic.Uint64
	stale         atomic.Uint64
	expired       atomic.Uint64
	items         atomic.Uint64
}

// count records a reassembler outcome. Malformed segmented frames count
// with malformed simplified frames.
func (c *counters) count(res segment.Result) {
	switch res.Outcome {
	case segment.OutcomeStarted:
		c.started.Add(1)
	case segment.OutcomeRestarted:
		c.restarted.Add(1)
	case segment.OutcomeAppended:
		c.appended.Add(1)
	case segment.OutcomeCompleted:
		c.completed.Add(1)
	case segment.OutcomeEmitted:
		c.emitted.Add(1)
	case segment.OutcomeOrphan:
		c.orphans.Add(1)
	case segment.OutcomeMalformed:
		c.malformed.Add(1)
	case segment.OutcomeOutOfSequence:
		c.outOfSequence.Add(1)
	case segment.OutcomeStale:
		c.stale.Add(1)
	}
}

// Stats returns a copy of the counters. It is safe to call concurrently
// with Dispatch.
func (d *Dispatcher) Stats() Stats {
	c := &d.stats
	return Stats{
		Frames:        c.frames.Load(),
		Ignored:       c.ignored.Load(),
		Packets:       c.packets.Load(),
		Malformed:     c.malformed.Load(),
		Started:       c.started.Load(),
		Restarted:     c.restarted.Load(),
		Appended:      c.appended.Load(),
		Completed:     c.completed.Load(),
		Emitted:       c.emitted.Load(),
		Orphans:       c.orphans.Load(),
		OutOfSequence: c.outOfSequence.Load(),
		Stale:         c.stale.Load(),
		Expired:       c.expired.Load(),
		Items:         c.items.Load(),
	}
}
