package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/catalog"
	"github.com/ftcan-dash/ftcan-go/pkg/config"
	"github.com/ftcan-dash/ftcan-go/pkg/discovery"
	"github.com/ftcan-dash/ftcan-go/pkg/dispatch"
	"github.com/ftcan-dash/ftcan-go/pkg/log"
	"github.com/ftcan-dash/ftcan-go/pkg/stream"
	"github.com/ftcan-dash/ftcan-go/pkg/telemetry"
	"github.com/ftcan-dash/ftcan-go/pkg/transport"
)

// monitor wires a frame source, the dispatcher and the sinks together.
type monitor struct {
	cfg       config.Config
	logger    *slog.Logger
	sessionID string

	src      transport.Source
	reopener *transport.Reopener
	disp     *dispatch.Dispatcher
	shared   *telemetry.Shared
	sinks    []telemetry.Sink

	capture    *log.FileLogger
	server     *stream.Server
	advertiser *discovery.MDNSAdvertiser
}

func newMonitor(cfg config.Config, logger *slog.Logger) *monitor {
	return &monitor{
		cfg:       cfg,
		logger:    logger,
		sessionID: log.NewSessionID(),
		shared:    telemetry.NewShared(),
	}
}

// build opens the capture file and the frame source and creates the
// dispatcher. Console output goes to console.
func (m *monitor) build(console io.Writer) error {
	routes, err := m.cfg.Routes()
	if err != nil {
		return err
	}

	cat := catalog.Default()
	if m.cfg.Decoder.Catalog != "" {
		cat, err = catalog.LoadFile(m.cfg.Decoder.Catalog, cat)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		m.logger.Info("catalog loaded", "file", m.cfg.Decoder.Catalog, "dataids", cat.Len())
	}

	opts := []dispatch.Option{
		dispatch.WithCatalog(cat),
		dispatch.WithSlog(m.logger),
		dispatch.WithSessionID(m.sessionID),
		dispatch.WithInterface(busName(m.cfg.Source)),
	}
	if m.cfg.Source.ReceiveTimeout > 0 {
		opts = append(opts, dispatch.WithReceiveTimeout(time.Duration(m.cfg.Source.ReceiveTimeout)))
	}

	var captures []log.Logger
	if m.cfg.Capture.File != "" {
		m.capture, err = log.NewFileLogger(m.cfg.Capture.File)
		if err != nil {
			return fmt.Errorf("opening capture: %w", err)
		}
		captures = append(captures, m.capture)
		m.logger.Info("capturing", "file", m.cfg.Capture.File, "session", m.sessionID)
	}
	if m.logger.Enabled(context.Background(), slog.LevelDebug) {
		captures = append(captures, log.NewSlogAdapter(m.logger))
	}
	if len(captures) > 0 {
		opts = append(opts, dispatch.WithLogger(log.NewMultiLogger(captures...)))
	}

	m.disp, err = dispatch.New(routes, opts...)
	if err != nil {
		return err
	}

	switch m.cfg.Output.Format {
	case config.OutputLine:
		m.sinks = append(m.sinks, telemetry.NewLineWriter(console))
	case config.OutputJSONL:
		m.sinks = append(m.sinks, telemetry.NewJSONLWriter(console, m.cfg.Output.Snapshot))
	}
	m.sinks = append(m.sinks, m.shared)

	if m.cfg.Stream.Listen != "" {
		m.server = stream.NewServer(stream.ServerConfig{
			Address:      m.cfg.Stream.Listen,
			WithSnapshot: m.cfg.Output.Snapshot,
			Logger:       m.logger,
		})
		m.sinks = append(m.sinks, m.server)
	}

	return m.openSource(routes.IDs())
}

func (m *monitor) openSource(ids []uint32) error {
	sc := m.cfg.Source
	open := func() (transport.Source, error) {
		return openSource(sc, ids)
	}

	if m.cfg.Source.Reopen && sc.Type != config.SourceReplay {
		m.reopener = transport.NewReopener(open,
			transport.WithReopenLogger(m.logger),
			transport.OnStateChange(func(old, new transport.State) {
				m.logger.Debug("source state", "from", old, "to", new)
			}),
		)
		m.src = m.reopener
		return nil
	}

	src, err := open()
	if err != nil {
		return err
	}
	m.src = src
	return nil
}

// openSource opens the configured frame source. Kernel filters are
// installed for ids when the source supports them.
func openSource(sc config.SourceConfig, ids []uint32) (transport.Source, error) {
	switch sc.Type {
	case config.SourceSocketCAN:
		var filters []transport.Filter
		if sc.KernelFilter {
			filters = transport.ExactFilters(ids)
		}
		s, err := transport.OpenSocketCAN(sc.Interface, filters)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SourceSLCAN:
		s, err := transport.OpenSLCAN(sc.Device, transport.SLCANConfig{
			BaudRate: sc.Baud,
			Bitrate:  sc.Bitrate,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.SourceReplay:
		r, err := transport.OpenReplay(sc.File, transport.WithPacing(sc.Pace))
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: source type %q", config.ErrInvalid, sc.Type)
}

// start brings up the stream server and its mDNS announcement.
func (m *monitor) start(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	if err := m.server.Start(ctx); err != nil {
		return err
	}
	if !m.cfg.Stream.Advertise {
		return nil
	}

	m.advertiser = discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	info := streamInfo(m.cfg, m.server.Port())
	if err := m.advertiser.Advertise(ctx, &info); err != nil {
		// The stream still works without an announcement.
		m.logger.Warn("mDNS advertise failed", "error", err)
		m.advertiser = nil
		return nil
	}
	m.logger.Info("stream advertised", "instance", info.InstanceName, "service", discovery.ServiceType, "port", info.Port)
	return nil
}

// run decodes until ctx is done or the source is exhausted.
func (m *monitor) run(ctx context.Context) error {
	m.logger.Info("decoding",
		"source", m.cfg.Source.Type,
		"bus", busName(m.cfg.Source),
		"routes", len(m.disp.Routes()),
	)
	err := dispatch.Run(ctx, m.src, m.disp, m.sinks...)

	st := m.disp.Stats()
	m.logger.Info("decoder stopped",
		"frames", st.Frames,
		"packets", st.Packets,
		"payloads", st.Emitted,
		"items", st.Items,
		"dropped", st.Dropped(),
	)
	return err
}

// close releases everything build and start acquired.
func (m *monitor) close() {
	if m.advertiser != nil {
		_ = m.advertiser.Stop()
	}
	if m.server != nil {
		if err := m.server.Stop(); err != nil {
			m.logger.Warn("stream stop failed", "error", err)
		}
	}
	if m.src != nil {
		_ = m.src.Close()
	}
	if m.capture != nil {
		if err := m.capture.Close(); err != nil {
			m.logger.Warn("capture close failed", "error", err)
		}
		if n := m.capture.Dropped(); n > 0 {
			m.logger.Warn("capture events not encoded", "count", n)
		}
	}
}

// Stats implements interactive.Monitor.
func (m *monitor) Stats() dispatch.Stats {
	return m.disp.Stats()
}

// Snapshot implements interactive.Monitor.
func (m *monitor) Snapshot() telemetry.Snapshot {
	return m.shared.Read()
}

// Routes implements interactive.Monitor.
func (m *monitor) Routes() dispatch.Routes {
	return m.disp.Routes()
}

// SourceState implements interactive.Monitor.
func (m *monitor) SourceState() string {
	if m.reopener != nil {
		return m.reopener.State().String()
	}
	return "OPEN"
}

// Clients implements interactive.Monitor.
func (m *monitor) Clients() []stream.ClientInfo {
	if m.server == nil {
		return nil
	}
	return m.server.Clients()
}

// busName names the bus for capture events and the mDNS TXT record.
func busName(sc config.SourceConfig) string {
	switch sc.Type {
	case config.SourceSocketCAN:
		return sc.Interface
	case config.SourceSLCAN:
		return filepath.Base(sc.Device)
	case config.SourceReplay:
		return filepath.Base(sc.File)
	}
	return ""
}

// families lists the enabled identifier families.
func families(dc config.DecoderConfig) []string {
	var out []string
	if dc.Simplified {
		out = append(out, "simplified")
	}
	if dc.Streaming {
		out = append(out, "streaming")
	}
	if dc.LengthPrefixed {
		out = append(out, "length_prefixed")
	}
	if len(dc.Routes) > 0 {
		out = append(out, "custom")
	}
	return out
}

// streamInfo describes the running stream for mDNS.
func streamInfo(cfg config.Config, port int) discovery.StreamInfo {
	return discovery.StreamInfo{
		InstanceName: cfg.Stream.Name,
		Port:         uint16(port),
		Source:       cfg.Source.Type,
		Bus:          busName(cfg.Source),
		Families:     families(cfg.Decoder),
		Snapshot:     cfg.Output.Snapshot,
	}
}
