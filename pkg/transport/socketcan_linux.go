//go:build linux

package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

// SocketCAN reads frames from a Linux CAN_RAW socket.
type SocketCAN struct {
	iface string

	fd     int
	closed atomic.Bool

	// mu serializes Receive calls.
	mu sync.Mutex

	// last applied receive timeout, to skip redundant setsockopt calls
	timeout time.Duration
	buf     [can.WireSize]byte
}

// OpenSocketCAN binds a raw socket to the named interface.
// When filters is non-empty only matching frames are delivered.
func OpenSocketCAN(iface string, filters []Filter) (*SocketCAN, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan: %w", err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("socketcan: socket: %w", err)
	}

	if len(filters) > 0 {
		if err := unix.SetsockoptCanRawFilter(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FILTER, kernelFilters(filters)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("socketcan: set filter: %w", err)
		}
	}

	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("socketcan: bind %s: %w", iface, err)
	}

	return &SocketCAN{iface: iface, fd: fd, timeout: -1}, nil
}

func kernelFilters(filters []Filter) []unix.CanFilter {
	out := make([]unix.CanFilter, 0, len(filters))
	for _, f := range filters {
		kf := unix.CanFilter{Id: f.ID, Mask: f.Mask}
		if f.Extended {
			kf.Id |= unix.CAN_EFF_FLAG
		}
		// never match error or remote frames
		kf.Mask |= unix.CAN_EFF_FLAG | unix.CAN_RTR_FLAG
		out = append(out, kf)
	}
	return out
}

// Interface returns the bound interface name.
func (s *SocketCAN) Interface() string {
	return s.iface
}

// Receive reads the next data frame. Error and remote frames are skipped.
func (s *SocketCAN) Receive(timeout time.Duration) (can.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return can.Frame{}, ErrClosed
	}
	if err := s.setTimeout(timeout); err != nil {
		return can.Frame{}, err
	}

	for {
		n, err := unix.Read(s.fd, s.buf[:])
		if err != nil {
			switch {
			case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK):
				return can.Frame{}, ErrTimeout
			case errors.Is(err, unix.EINTR):
				continue
			case errors.Is(err, unix.EBADF):
				return can.Frame{}, ErrClosed
			}
			if s.closed.Load() {
				return can.Frame{}, ErrClosed
			}
			return can.Frame{}, fmt.Errorf("socketcan: read: %w", err)
		}
		if n < can.WireSize {
			continue
		}
		if can.IsErrorFrame(s.buf[:]) || can.IsRemoteFrame(s.buf[:]) {
			continue
		}

		var f can.Frame
		if err := f.UnmarshalBinary(s.buf[:]); err != nil {
			continue
		}
		return f, nil
	}
}

func (s *SocketCAN) setTimeout(timeout time.Duration) error {
	if timeout < 0 {
		timeout = 0
	}
	if timeout == s.timeout {
		return nil
	}
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return fmt.Errorf("socketcan: set timeout: %w", err)
	}
	s.timeout = timeout
	return nil
}

// Close closes the socket. A Receive in progress returns once its timeout
// expires.
func (s *SocketCAN) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return unix.Close(s.fd)
}
