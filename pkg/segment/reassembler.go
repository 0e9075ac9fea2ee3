package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

// Policy selects the completion semantics of a reassembler.
type Policy uint8

const (
	// LengthPrefixed payloads declare their total length in the first frame.
	LengthPrefixed Policy = iota

	// Streaming payloads are consumed record by record as they arrive.
	Streaming
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case LengthPrefixed:
		return "length-prefixed"
	case Streaming:
		return "streaming"
	default:
		return fmt.Sprintf("Policy(%d)", p)
	}
}

// Sequencing controls how continuation indices are checked.
type Sequencing uint8

const (
	// Tolerant accepts duplicate and skipped indices.
	Tolerant Sequencing = iota

	// Strict requires each continuation index to be previous+1.
	Strict
)

// String returns the sequencing name.
func (s Sequencing) String() string {
	switch s {
	case Tolerant:
		return "tolerant"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Sequencing(%d)", s)
	}
}

// DefaultStreamRecordWidth is the record width used by Streaming when
// Config.RecordWidth is zero.
const DefaultStreamRecordWidth = 4

// minFirstLen is index byte plus the two length bytes.
const minFirstLen = 3

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("segment: invalid config")

// Config configures a Reassembler.
type Config struct {
	Policy     Policy
	Sequencing Sequencing

	// RecordWidth is the emission granularity of Streaming. Ignored by
	// LengthPrefixed.
	RecordWidth int

	// StaleAfter discards assemblies that received no frame for longer
	// than this. Zero disables expiry.
	StaleAfter time.Duration
}

// Validate checks the config for values New would otherwise replace.
func (c Config) Validate() error {
	if c.Policy != LengthPrefixed && c.Policy != Streaming {
		return fmt.Errorf("%w: unknown policy %d", ErrInvalidConfig, c.Policy)
	}
	if c.Sequencing != Tolerant && c.Sequencing != Strict {
		return fmt.Errorf("%w: unknown sequencing %d", ErrInvalidConfig, c.Sequencing)
	}
	if c.RecordWidth < 0 {
		return fmt.Errorf("%w: negative record width", ErrInvalidConfig)
	}
	if c.StaleAfter < 0 {
		return fmt.Errorf("%w: negative stale timeout", ErrInvalidConfig)
	}
	return nil
}

// Outcome describes what a frame did to the reassembler.
type Outcome uint8

const (
	// OutcomeStarted means an assembly began for an idle identifier.
	OutcomeStarted Outcome = iota

	// OutcomeRestarted means an in-progress assembly was replaced.
	OutcomeRestarted

	// OutcomeAppended means the chunk was buffered.
	OutcomeAppended

	// OutcomeCompleted means a length-prefixed payload was emitted.
	OutcomeCompleted

	// OutcomeEmitted means streaming records were emitted.
	OutcomeEmitted

	// OutcomeOrphan means a continuation arrived with no assembly in progress.
	OutcomeOrphan

	// OutcomeMalformed means the frame was too short to interpret.
	OutcomeMalformed

	// OutcomeOutOfSequence means Strict sequencing abandoned the assembly.
	OutcomeOutOfSequence

	// OutcomeStale means the assembly had expired and the continuation was dropped.
	OutcomeStale
)

var outcomeNames = [...]string{
	OutcomeStarted:       "started",
	OutcomeRestarted:     "restarted",
	OutcomeAppended:      "appended",
	OutcomeCompleted:     "completed",
	OutcomeEmitted:       "emitted",
	OutcomeOrphan:        "orphan",
	OutcomeMalformed:     "malformed",
	OutcomeOutOfSequence: "out-of-sequence",
	OutcomeStale:         "stale",
}

// String returns the outcome name.
func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", o)
}

// Dropped reports whether the frame was discarded.
func (o Outcome) Dropped() bool {
	switch o {
	case OutcomeOrphan, OutcomeMalformed, OutcomeOutOfSequence, OutcomeStale:
		return true
	}
	return false
}

// Result is returned by Push.
type Result struct {
	Outcome Outcome

	// Payload holds the emitted bytes for OutcomeCompleted and
	// OutcomeEmitted, nil otherwise. The slice is owned by the caller.
	Payload []byte

	// Sequence is the frame's index byte (zero for malformed frames).
	Sequence uint8

	// Replaced reports that the frame discarded a partial assembly.
	Replaced bool
}

type assembly struct {
	expected int
	lastSeq  uint8
	buf      []byte
	updated  time.Time
}

// Reassembler tracks one assembly per CAN identifier.
type Reassembler struct {
	cfg   Config
	width int
	state map[uint32]*assembly
}

// New creates a reassembler.
func New(cfg Config) *Reassembler {
	width := cfg.RecordWidth
	if width <= 0 {
		width = DefaultStreamRecordWidth
	}
	return &Reassembler{
		cfg:   cfg,
		width: width,
		state: make(map[uint32]*assembly),
	}
}

// Config returns the reassembler's configuration.
func (r *Reassembler) Config() Config {
	return r.cfg
}

// Push feeds one frame received at time at.
func (r *Reassembler) Push(f can.Frame, at time.Time) Result {
	if len(f.Data) == 0 {
		return Result{Outcome: OutcomeMalformed}
	}
	seq := f.Data[0]
	chunk := f.Data[1:]

	st := r.state[f.ID]
	expired := false
	if st != nil && r.cfg.StaleAfter > 0 && at.Sub(st.updated) > r.cfg.StaleAfter {
		delete(r.state, f.ID)
		st, expired = nil, true
	}

	if r.isRestart(st, seq) {
		return r.start(f, st, at)
	}

	if st == nil {
		if expired {
			return Result{Outcome: OutcomeStale, Sequence: seq}
		}
		return Result{Outcome: OutcomeOrphan, Sequence: seq}
	}

	if r.cfg.Sequencing == Strict && seq != st.lastSeq+1 {
		delete(r.state, f.ID)
		return Result{Outcome: OutcomeOutOfSequence, Sequence: seq}
	}

	st.buf = append(st.buf, chunk...)
	st.lastSeq = seq
	st.updated = at

	res := Result{Outcome: OutcomeAppended, Sequence: seq}
	r.drain(f.ID, st, &res)
	return res
}

func (r *Reassembler) isRestart(st *assembly, seq uint8) bool {
	if seq == 0 {
		return true
	}
	return r.cfg.Policy == Streaming && st != nil && seq <= st.lastSeq
}

func (r *Reassembler) start(f can.Frame, prev *assembly, at time.Time) Result {
	seq := f.Data[0]
	st := &assembly{lastSeq: seq, updated: at}

	if r.cfg.Policy == LengthPrefixed {
		if len(f.Data) < minFirstLen {
			return Result{Outcome: OutcomeMalformed, Sequence: seq}
		}
		st.expected = int(binary.LittleEndian.Uint16(f.Data[1:3]))
		st.buf = append(make([]byte, 0, st.expected), f.Data[3:]...)
	} else {
		st.buf = append([]byte(nil), f.Data[1:]...)
	}

	r.state[f.ID] = st
	res := Result{Outcome: OutcomeStarted, Sequence: seq}
	if prev != nil {
		res.Outcome = OutcomeRestarted
		res.Replaced = true
	}
	r.drain(f.ID, st, &res)
	return res
}

// drain emits whatever the policy allows after a mutation.
func (r *Reassembler) drain(id uint32, st *assembly, res *Result) {
	switch r.cfg.Policy {
	case LengthPrefixed:
		if len(st.buf) < st.expected {
			return
		}
		res.Payload = append(make([]byte, 0, st.expected), st.buf[:st.expected]...)
		res.Outcome = OutcomeCompleted
		delete(r.state, id)

	case Streaming:
		usable := len(st.buf) / r.width * r.width
		if usable == 0 {
			return
		}
		res.Payload = append([]byte(nil), st.buf[:usable]...)
		res.Outcome = OutcomeEmitted
		st.buf = append(st.buf[:0], st.buf[usable:]...)
	}
}

// Sweep discards assemblies idle for longer than Config.StaleAfter and
// returns how many were removed. It does nothing when expiry is disabled.
func (r *Reassembler) Sweep(now time.Time) int {
	if r.cfg.StaleAfter <= 0 {
		return 0
	}
	removed := 0
	for id, st := range r.state {
		if now.Sub(st.updated) > r.cfg.StaleAfter {
			delete(r.state, id)
			removed++
		}
	}
	return removed
}

// Pending returns the number of assemblies in progress.
func (r *Reassembler) Pending() int {
	return len(r.state)
}

// Buffered returns the number of bytes held for id.
func (r *Reassembler) Buffered(id uint32) int {
	if st, ok := r.state[id]; ok {
		return len(st.buf)
	}
	return 0
}

// Active reports whether an assembly is in progress for id.
func (r *Reassembler) Active(id uint32) bool {
	_, ok := r.state[id]
	return ok
}

// Reset abandons every assembly.
func (r *Reassembler) Reset() {
	clear(r.state)
}
