package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

// SLCAN defaults.
const (
	// DefaultSLCANBaudRate is the serial speed used by most USB adapters.
	DefaultSLCANBaudRate = 115200

	// DefaultSLCANBitrate is the CAN bitrate of FTCAN 2.0 networks.
	DefaultSLCANBitrate = 1000000

	// maxSLCANLine bounds a line without terminator before it is discarded.
	maxSLCANLine = 64
)

// ErrInvalidBitrate indicates a CAN bitrate without an SLCAN setup code.
var ErrInvalidBitrate = errors.New("transport: unsupported slcan bitrate")

// slcanBitrates maps CAN bitrates to the LAWICEL "S<n>" setup codes.
var slcanBitrates = map[int]byte{
	10000:   '0',
	20000:   '1',
	50000:   '2',
	100000:  '3',
	125000:  '4',
	250000:  '5',
	500000:  '6',
	800000:  '7',
	1000000: '8',
}

// SerialPort is the subset of serial.Port used by SLCAN.
type SerialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// SLCANConfig configures an SLCAN adapter.
type SLCANConfig struct {
	// BaudRate is the serial line speed. Zero means DefaultSLCANBaudRate.
	BaudRate int

	// Bitrate is the CAN bus bitrate. Zero means DefaultSLCANBitrate.
	Bitrate int
}

// SLCAN reads frames from a serial adapter speaking the LAWICEL protocol.
type SLCAN struct {
	port SerialPort

	// mu serializes Receive calls.
	mu      sync.Mutex
	pending []byte
	chunk   [64]byte

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

// OpenSLCAN opens the serial device at path and starts the CAN channel.
func OpenSLCAN(path string, cfg SLCANConfig) (*SLCAN, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultSLCANBaudRate
	}
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("slcan: failed to open %s: %w", path, err)
	}

	s, err := NewSLCAN(port, cfg.Bitrate)
	if err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

// NewSLCAN starts the CAN channel on an already opened port.
// A bitrate of zero means DefaultSLCANBitrate.
func NewSLCAN(port SerialPort, bitrate int) (*SLCAN, error) {
	if bitrate == 0 {
		bitrate = DefaultSLCANBitrate
	}
	code, ok := slcanBitrates[bitrate]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBitrate, bitrate)
	}

	// Close any channel left open by a previous session before setup.
	for _, cmd := range []string{"C\r", "S" + string(code) + "\r", "O\r"} {
		if _, err := io.WriteString(port, cmd); err != nil {
			return nil, fmt.Errorf("slcan: write %q: %w", cmd[:1], err)
		}
	}

	return &SLCAN{port: port, closed: make(chan struct{})}, nil
}

// Receive returns the next frame line reported by the adapter.
// Acknowledgements and error bells are skipped, as are lines that do not parse.
func (s *SLCAN) Receive(timeout time.Duration) (can.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		select {
		case <-s.closed:
			return can.Frame{}, ErrClosed
		default:
		}

		if line, ok := s.nextLine(); ok {
			f, err := can.DecodeSLCAN(line)
			if err != nil {
				continue
			}
			return f, nil
		}

		wait := serial.NoTimeout
		if !deadline.IsZero() {
			wait = time.Until(deadline)
			if wait <= 0 {
				return can.Frame{}, ErrTimeout
			}
		}
		if err := s.port.SetReadTimeout(wait); err != nil {
			return can.Frame{}, s.readErr(err)
		}

		n, err := s.port.Read(s.chunk[:])
		if err != nil {
			return can.Frame{}, s.readErr(err)
		}
		if n == 0 && !deadline.IsZero() && !time.Now().Before(deadline) {
			return can.Frame{}, ErrTimeout
		}
		s.pending = append(s.pending, s.chunk[:n]...)
	}
}

// nextLine pops one frame line from the pending bytes.
func (s *SLCAN) nextLine() (string, bool) {
	for {
		// Adapters acknowledge commands with CR and report errors with BEL.
		s.pending = bytes.TrimLeft(s.pending, "\r\a")

		idx := bytes.IndexByte(s.pending, '\r')
		if idx == -1 {
			if len(s.pending) > maxSLCANLine {
				s.pending = s.pending[:0]
			}
			return "", false
		}

		line := string(s.pending[:idx])
		s.pending = s.pending[idx+1:]

		switch line[0] {
		case 'T', 't', 'R', 'r':
			return line, true
		}
		// "z"/"Z" transmit acks, version replies and status flags
	}
}

func (s *SLCAN) readErr(err error) error {
	select {
	case <-s.closed:
		return ErrClosed
	default:
	}
	return fmt.Errorf("slcan: read: %w", err)
}

// Close stops the CAN channel and closes the port.
func (s *SLCAN) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		io.WriteString(s.port, "C\r")
		s.closeErr = s.port.Close()
	})
	return s.closeErr
}
