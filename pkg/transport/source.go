package transport

import (
	"errors"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

// Source errors.
var (
	// ErrTimeout indicates that no frame arrived within the receive timeout.
	ErrTimeout = errors.New("transport: receive timeout")

	// ErrClosed indicates the source has been closed.
	ErrClosed = errors.New("transport: source closed")

	// ErrUnsupported indicates the source is not available on this platform.
	ErrUnsupported = errors.New("transport: unsupported on this platform")
)

// Source delivers received CAN frames.
// Implemented by SocketCAN, SLCAN and Replay.
type Source interface {
	// Receive returns the next frame, waiting at most timeout.
	// It returns ErrTimeout when nothing arrived in time.
	Receive(timeout time.Duration) (can.Frame, error)

	// Close releases the source. Pending and later Receive calls fail.
	Close() error
}

// Stamper is implemented by sources that know when the last returned frame
// was captured. Live sources do not implement it; the receive time is used.
type Stamper interface {
	LastTimestamp() time.Time
}

// Filter is a kernel acceptance filter: a frame passes when
// received_id & Mask == ID & Mask.
type Filter struct {
	ID   uint32
	Mask uint32

	// Extended selects 29-bit identifiers.
	Extended bool
}

// ExactFilters builds one exact-match extended filter per identifier.
func ExactFilters(ids []uint32) []Filter {
	filters := make([]Filter, 0, len(ids))
	for _, id := range ids {
		filters = append(filters, Filter{
			ID:       id & can.MaxExtendedID,
			Mask:     can.MaxExtendedID,
			Extended: true,
		})
	}
	return filters
}

// Compile-time interface satisfaction checks.
var (
	_ Source  = (*SocketCAN)(nil)
	_ Source  = (*SLCAN)(nil)
	_ Source  = (*Replay)(nil)
	_ Stamper = (*Replay)(nil)
)
