package transport

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

const candumpLog = `# capture from bench ECU
(1700000000.000000) can0 14080602#0007D00A01
(1700000000.010000) can1 14080600#0001000200030004

garbage line
(1700000000.050000) can0 140818FF#00058400D00700
`

func TestReplayReadsFrames(t *testing.T) {
	r := NewReplay(strings.NewReader(candumpLog))
	defer r.Close()

	f, err := r.Receive(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x14080602), f.ID)
	assert.Equal(t, []byte{0x00, 0x07, 0xD0, 0x0A, 0x01}, f.Data)
	assert.Equal(t, time.Unix(1700000000, 0), r.LastTimestamp())

	f, err = r.Receive(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x14080600), f.ID)

	f, err = r.Receive(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x140818FF), f.ID)
	assert.Equal(t, time.Unix(1700000000, 50000000), r.LastTimestamp())

	_, err = r.Receive(0)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, r.Skipped())
}

func TestReplayInterfaceFilter(t *testing.T) {
	r := NewReplay(strings.NewReader(candumpLog), WithInterface("can1"))

	f, err := r.Receive(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x14080600), f.ID)

	_, err = r.Receive(0)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReplayPacing(t *testing.T) {
	var slept []time.Duration
	r := NewReplay(strings.NewReader(candumpLog), WithPacing(2))
	r.sleep = func(d time.Duration) { slept = append(slept, d) }

	for {
		if _, err := r.Receive(0); err != nil {
			break
		}
	}

	assert.Equal(t, []time.Duration{5 * time.Millisecond, 20 * time.Millisecond}, slept)
}

func TestReplayClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.log")
	require.NoError(t, os.WriteFile(path, []byte(candumpLog), 0o644))

	r, err := OpenReplay(path)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.Receive(0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpenReplayMissingFile(t *testing.T) {
	_, err := OpenReplay(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}

func TestExactFilters(t *testing.T) {
	filters := ExactFilters([]uint32{0x14080600, 0xF4080601})

	require.Len(t, filters, 2)
	assert.Equal(t, Filter{ID: 0x14080600, Mask: can.MaxExtendedID, Extended: true}, filters[0])
	assert.Equal(t, uint32(0x14080601), filters[1].ID)
}

// fakePort is an in-memory serial port. Reads drain queued chunks and
// return zero bytes once the queue is empty, as a port does on timeout.
type fakePort struct {
	mu       sync.Mutex
	chunks   [][]byte
	written  bytes.Buffer
	closed   bool
	timeouts []time.Duration
	readErr  error
}

func (p *fakePort) queue(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chunks = append(p.chunks, []byte(s))
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.chunks) == 0 {
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	p.chunks[0] = p.chunks[0][n:]
	if len(p.chunks[0]) == 0 {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeouts = append(p.timeouts, t)
	return nil
}

func TestNewSLCANOpensChannel(t *testing.T) {
	port := &fakePort{}
	_, err := NewSLCAN(port, 0)
	require.NoError(t, err)
	assert.Equal(t, "C\rS8\rO\r", port.written.String())

	port = &fakePort{}
	_, err = NewSLCAN(port, 500000)
	require.NoError(t, err)
	assert.Equal(t, "C\rS6\rO\r", port.written.String())
}

func TestNewSLCANRejectsBitrate(t *testing.T) {
	_, err := NewSLCAN(&fakePort{}, 33333)
	assert.ErrorIs(t, err, ErrInvalidBitrate)
}

func TestSLCANReceive(t *testing.T) {
	port := &fakePort{}
	s, err := NewSLCAN(port, 0)
	require.NoError(t, err)

	// ack, split frame, status reply, error bell, second frame
	port.queue("\rT140806")
	port.queue("0250007D00A01\rF00\r\a")
	port.queue("t1232AABB\r")

	f, err := s.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, can.Frame{ID: 0x14080602, Data: []byte{0x00, 0x07, 0xD0, 0x0A, 0x01}, Extended: true}, f)

	f, err = s.Receive(time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x123), f.ID)
	assert.False(t, f.Extended)
	assert.Equal(t, []byte{0xAA, 0xBB}, f.Data)
}

func TestSLCANReceiveTimeout(t *testing.T) {
	s, err := NewSLCAN(&fakePort{}, 0)
	require.NoError(t, err)

	start := time.Now()
	_, err = s.Receive(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSLCANReadError(t *testing.T) {
	port := &fakePort{readErr: errors.New("device unplugged")}
	s, err := NewSLCAN(port, 0)
	require.NoError(t, err)

	_, err = s.Receive(time.Second)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestSLCANClose(t *testing.T) {
	port := &fakePort{}
	s, err := NewSLCAN(port, 0)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.True(t, port.closed)
	assert.True(t, strings.HasSuffix(port.written.String(), "O\rC\r"))

	_, err = s.Receive(time.Second)
	assert.ErrorIs(t, err, ErrClosed)
}
