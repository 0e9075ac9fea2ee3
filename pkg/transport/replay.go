package transport

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

// ReplayOption configures a Replay.
type ReplayOption func(*Replay)

// WithPacing replays frames at their recorded intervals divided by speed.
// A speed of zero or less disables pacing.
func WithPacing(speed float64) ReplayOption {
	return func(r *Replay) {
		r.speed = speed
	}
}

// WithInterface keeps only lines captured on the named interface.
func WithInterface(iface string) ReplayOption {
	return func(r *Replay) {
		r.iface = iface
	}
}

// Replay reads frames from a candump log. Receive returns io.EOF at the end
// of the log.
type Replay struct {
	scanner *bufio.Scanner
	closer  io.Closer

	speed float64
	iface string
	sleep func(time.Duration)

	mu      sync.Mutex
	closed  bool
	last    time.Time
	skipped int
}

// OpenReplay opens a candump log file.
func OpenReplay(path string, opts ...ReplayOption) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReplay(f, opts...)
	r.closer = f
	return r, nil
}

// NewReplay reads a candump log from rd. Closing the Replay does not
// close rd.
func NewReplay(rd io.Reader, opts ...ReplayOption) *Replay {
	r := &Replay{
		scanner: bufio.NewScanner(rd),
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Receive returns the next frame of the log. The timeout is ignored:
// a log never waits for traffic.
func (r *Replay) Receive(timeout time.Duration) (can.Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return can.Frame{}, ErrClosed
	}

	for r.scanner.Scan() {
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		entry, err := can.ParseCandumpLine(text)
		if err != nil {
			r.skipped++
			continue
		}
		if r.iface != "" && entry.Interface != "" && entry.Interface != r.iface {
			continue
		}

		r.pace(entry.Timestamp)
		r.last = entry.Timestamp
		return entry.Frame, nil
	}
	if err := r.scanner.Err(); err != nil {
		return can.Frame{}, err
	}
	return can.Frame{}, io.EOF
}

func (r *Replay) pace(ts time.Time) {
	if r.speed <= 0 || ts.IsZero() || r.last.IsZero() {
		return
	}
	gap := ts.Sub(r.last)
	if gap <= 0 {
		return
	}
	r.sleep(time.Duration(float64(gap) / r.speed))
}

// LastTimestamp returns the capture time of the last returned frame,
// or the zero time if the log carries no timestamps.
func (r *Replay) LastTimestamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Skipped returns how many lines could not be parsed.
func (r *Replay) Skipped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}

// Close closes the log file opened by OpenReplay.
func (r *Replay) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
