//go:build !linux

package transport

import (
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

// SocketCAN is only available on Linux.
type SocketCAN struct{}

// OpenSocketCAN returns ErrUnsupported outside Linux.
func OpenSocketCAN(iface string, filters []Filter) (*SocketCAN, error) {
	return nil, ErrUnsupported
}

// Interface returns an empty name.
func (s *SocketCAN) Interface() string { return "" }

// Receive returns ErrUnsupported.
func (s *SocketCAN) Receive(timeout time.Duration) (can.Frame, error) {
	return can.Frame{}, ErrUnsupported
}

// Close is a no-op.
func (s *SocketCAN) Close() error { return nil }
