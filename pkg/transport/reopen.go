package transport

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

// State is the connection state of a Reopener.
type State uint8

const (
	// StateDisconnected means no source has been opened yet.
	StateDisconnected State = iota

	// StateConnected means a source is open and receiving.
	StateConnected

	// StateReconnecting means the last open or receive failed and a retry is scheduled.
	StateReconnecting

	// StateClosed means the Reopener has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// OpenFunc opens a live source.
type OpenFunc func() (Source, error)

// ReopenOption configures a Reopener.
type ReopenOption func(*Reopener)

// WithBackoff replaces the default reopen schedule.
func WithBackoff(b *Backoff) ReopenOption {
	return func(r *Reopener) {
		r.backoff = b
	}
}

// WithReopenLogger logs open failures and recoveries.
func WithReopenLogger(l *slog.Logger) ReopenOption {
	return func(r *Reopener) {
		r.logger = l
	}
}

// OnStateChange sets a callback for state transitions. It runs on the
// goroutine calling Receive or Close.
func OnStateChange(fn func(old, new State)) ReopenOption {
	return func(r *Reopener) {
		r.onStateChange = fn
	}
}

// Reopener is a Source that opens its underlying source lazily and reopens
// it with exponential backoff after a receive failure. While no source is
// open, Receive waits out the backoff within the caller's timeout and
// reports ErrTimeout. io.EOF and ErrUnsupported are passed through.
type Reopener struct {
	open    OpenFunc
	backoff *Backoff
	logger  *slog.Logger

	onStateChange func(old, new State)

	// rmu serializes Receive.
	rmu     sync.Mutex
	retryAt time.Time

	mu    sync.Mutex
	src   Source
	state State

	closed atomic.Bool
	done   chan struct{}
}

var _ Source = (*Reopener)(nil)

// NewReopener returns a Reopener around open. Nothing is opened until the
// first Receive.
func NewReopener(open OpenFunc, opts ...ReopenOption) *Reopener {
	r := &Reopener{
		open:    open,
		backoff: NewBackoff(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current state.
func (r *Reopener) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Attempts returns the number of failures since the last successful open.
func (r *Reopener) Attempts() int {
	return r.backoff.Attempts()
}

// Receive returns the next frame from the underlying source.
func (r *Reopener) Receive(timeout time.Duration) (can.Frame, error) {
	r.rmu.Lock()
	defer r.rmu.Unlock()

	if r.closed.Load() {
		return can.Frame{}, ErrClosed
	}

	r.mu.Lock()
	src := r.src
	r.mu.Unlock()

	if src == nil {
		if wait := time.Until(r.retryAt); wait > 0 {
			if timeout > 0 && wait > timeout {
				r.wait(timeout)
				return r.timeoutOrClosed()
			}
			r.wait(wait)
		}
		if r.closed.Load() {
			return can.Frame{}, ErrClosed
		}

		var err error
		src, err = r.open()
		if err != nil {
			if errors.Is(err, ErrUnsupported) {
				return can.Frame{}, err
			}
			r.fail("open", err)
			return can.Frame{}, ErrTimeout
		}
		if !r.attach(src) {
			_ = src.Close()
			return can.Frame{}, ErrClosed
		}
	}

	f, err := src.Receive(timeout)
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, ErrTimeout), errors.Is(err, io.EOF):
		return f, err
	case r.closed.Load():
		return can.Frame{}, ErrClosed
	}

	r.mu.Lock()
	if r.src == src {
		r.src = nil
	}
	r.mu.Unlock()
	_ = src.Close()

	r.fail("receive", err)
	return can.Frame{}, ErrTimeout
}

// Close closes the current source. Pending and later Receive calls return
// ErrClosed.
func (r *Reopener) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	close(r.done)

	r.mu.Lock()
	src := r.src
	r.src = nil
	r.mu.Unlock()

	r.setState(StateClosed)
	if src != nil {
		return src.Close()
	}
	return nil
}

func (r *Reopener) attach(src Source) bool {
	r.mu.Lock()
	if r.closed.Load() {
		r.mu.Unlock()
		return false
	}
	r.src = src
	r.mu.Unlock()

	if n := r.backoff.Attempts(); n > 0 && r.logger != nil {
		r.logger.Info("source reopened", "attempts", n)
	}
	r.backoff.Reset()
	r.retryAt = time.Time{}
	r.setState(StateConnected)
	return true
}

func (r *Reopener) fail(op string, err error) {
	delay := r.backoff.Next()
	r.retryAt = time.Now().Add(delay)
	if r.logger != nil {
		r.logger.Warn("source failed",
			"op", op,
			"error", err,
			"attempt", r.backoff.Attempts(),
			"retry_in", delay,
		)
	}
	r.setState(StateReconnecting)
}

func (r *Reopener) wait(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-r.done:
	}
}

func (r *Reopener) timeoutOrClosed() (can.Frame, error) {
	if r.closed.Load() {
		return can.Frame{}, ErrClosed
	}
	return can.Frame{}, ErrTimeout
}

func (r *Reopener) setState(s State) {
	r.mu.Lock()
	old := r.state
	if old == StateClosed {
		r.mu.Unlock()
		return
	}
	r.state = s
	fn := r.onStateChange
	r.mu.Unlock()

	if fn != nil && old != s {
		fn(old, s)
	}
}
