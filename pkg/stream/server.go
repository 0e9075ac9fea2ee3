package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ftcan-dash/ftcan-go/pkg/telemetry"
)

// DefaultPort is the TCP port used when ServerConfig.Address is empty.
const DefaultPort = 7420

// DefaultWriteTimeout bounds a single write to a client.
const DefaultWriteTimeout = 2 * time.Second

// ErrAlreadyRunning is returned by Start on a running server.
var ErrAlreadyRunning = errors.New("stream: server already running")

// ServerConfig configures a Server.
type ServerConfig struct {
	// Address to listen on (e.g., ":7420" or "127.0.0.1:0").
	Address string

	// WithSnapshot adds the merged snapshot to every record.
	WithSnapshot bool

	// ClientBuffer is the per-client queue length. Default 100.
	ClientBuffer int

	// WriteTimeout bounds a single write. Default DefaultWriteTimeout.
	WriteTimeout time.Duration

	// Logger for client lifecycle messages. If nil, logging is disabled.
	Logger *slog.Logger

	// OnConnect is called when a client is accepted.
	OnConnect func(c ClientInfo)

	// OnDisconnect is called when a client is gone.
	OnDisconnect func(c ClientInfo)
}

// ClientInfo identifies a connected client.
type ClientInfo struct {
	ID         string
	RemoteAddr string
	Since      time.Time
}

// Server streams JSON lines to TCP clients. It implements telemetry.Sink.
type Server struct {
	config   ServerConfig
	hub      *Hub
	listener net.Listener

	clients   map[string]*client
	clientsMu sync.RWMutex

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type client struct {
	info ClientInfo
	conn net.Conn
	ch   chan []byte
}

var _ telemetry.Sink = (*Server)(nil)

// NewServer creates a stream server. Nothing is bound until Start.
func NewServer(config ServerConfig) *Server {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}
	return &Server{
		config:  config,
		hub:     NewHub(WithClientBuffer(config.ClientBuffer)),
		clients: make(map[string]*client),
	}
}

// Start binds the listener and begins accepting clients.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return ErrAlreadyRunning
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("stream: listen: %w", err)
	}
	s.listener = listener

	ctx, s.cancel = context.WithCancel(ctx)
	s.running.Store(true)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.hub.Run(ctx)
	}()
	go s.acceptLoop()

	if s.config.Logger != nil {
		s.config.Logger.Info("telemetry stream listening", "addr", listener.Addr().String())
	}
	return nil
}

// Stop closes the listener and every client connection.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}
	s.cancel()
	err := s.listener.Close()

	s.clientsMu.Lock()
	for _, c := range s.clients {
		_ = c.conn.Close()
	}
	s.clientsMu.Unlock()

	s.wg.Wait()
	return err
}

// Addr returns the listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// Port returns the bound TCP port, or 0 before Start.
func (s *Server) Port() int {
	if addr, ok := s.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// Clients returns the connected clients.
func (s *Server) Clients() []ClientInfo {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	out := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c.info)
	}
	return out
}

// ConnectionCount returns the number of connected clients.
func (s *Server) ConnectionCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Dropped returns the number of records not delivered to slow clients.
func (s *Server) Dropped() uint64 {
	return s.hub.Dropped()
}

// Consume publishes u to all clients. Empty updates are skipped.
func (s *Server) Consume(u telemetry.Update) error {
	if u.Empty() || !s.running.Load() {
		return nil
	}
	line, err := json.Marshal(telemetry.NewRecord(u, s.config.WithSnapshot))
	if err != nil {
		return fmt.Errorf("stream: encode: %w", err)
	}
	s.hub.Publish(append(line, '\n'))
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() && s.config.Logger != nil {
				s.config.Logger.Warn("stream accept failed", "error", err)
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()

	c := &client{
		info: ClientInfo{
			ID:         uuid.New().String(),
			RemoteAddr: conn.RemoteAddr().String(),
			Since:      time.Now(),
		},
		conn: conn,
		ch:   s.hub.Subscribe(),
	}

	s.clientsMu.Lock()
	if !s.running.Load() {
		s.clientsMu.Unlock()
		_ = conn.Close()
		s.hub.Unsubscribe(c.ch)
		return
	}
	s.clients[c.info.ID] = c
	s.clientsMu.Unlock()

	if s.config.Logger != nil {
		s.config.Logger.Info("stream client connected", "client", c.info.ID, "remote", c.info.RemoteAddr)
	}
	if s.config.OnConnect != nil {
		s.config.OnConnect(c.info)
	}

	// Clients do not send anything; a read returning means they hung up.
	gone := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, conn)
		close(gone)
	}()

	err := s.writeLoop(c, gone)

	_ = conn.Close()
	<-gone
	s.hub.Unsubscribe(c.ch)

	s.clientsMu.Lock()
	delete(s.clients, c.info.ID)
	s.clientsMu.Unlock()

	if s.config.Logger != nil {
		s.config.Logger.Info("stream client disconnected", "client", c.info.ID, "error", err)
	}
	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(c.info)
	}
}

func (s *Server) writeLoop(c *client, gone <-chan struct{}) error {
	for {
		select {
		case <-gone:
			return nil
		case line, ok := <-c.ch:
			if !ok {
				return nil
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if _, err := c.conn.Write(line); err != nil {
				return err
			}
		}
	}
}
