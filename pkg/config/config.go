package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/dispatch"
	"github.com/ftcan-dash/ftcan-go/pkg/segment"
	"github.com/ftcan-dash/ftcan-go/pkg/wire"
)

// ErrInvalid indicates a configuration value outside its allowed set.
var ErrInvalid = errors.New("config: invalid value")

// Source types.
const (
	SourceSocketCAN = "socketcan"
	SourceSLCAN     = "slcan"
	SourceReplay    = "replay"
)

// Output formats.
const (
	OutputLine  = "line"
	OutputJSONL = "jsonl"
	OutputNone  = "none"
)

// Config is the complete tool configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Decoder DecoderConfig `yaml:"decoder"`
	Output  OutputConfig  `yaml:"output"`
	Capture CaptureConfig `yaml:"capture"`
	Stream  StreamConfig  `yaml:"stream"`
	Log     LogConfig     `yaml:"log"`
}

// SourceConfig selects where frames come from.
type SourceConfig struct {
	// Type is socketcan, slcan or replay.
	Type string `yaml:"type"`

	// Interface is the SocketCAN interface name.
	Interface string `yaml:"interface"`

	// Device is the SLCAN serial device path.
	Device string `yaml:"device"`

	// Baud is the SLCAN serial speed.
	Baud int `yaml:"baud"`

	// Bitrate is the CAN bitrate an SLCAN adapter is opened with.
	Bitrate int `yaml:"bitrate"`

	// File is the candump log replayed by the replay source.
	File string `yaml:"file"`

	// Pace replays at recorded speed multiplied by this factor (0 = as fast as possible).
	Pace float64 `yaml:"pace"`

	ReceiveTimeout Duration `yaml:"receive_timeout"`

	// KernelFilter installs exact-match SocketCAN filters for the routed identifiers.
	KernelFilter bool `yaml:"kernel_filter"`

	// Reopen reopens a failed live source with exponential backoff.
	Reopen bool `yaml:"reopen"`
}

// DecoderConfig selects the decoded families.
type DecoderConfig struct {
	Simplified     bool `yaml:"simplified"`
	Streaming      bool `yaml:"streaming"`
	LengthPrefixed bool `yaml:"length_prefixed"`

	// Sequencing is tolerant or strict.
	Sequencing string `yaml:"sequencing"`

	// StaleAfter expires idle partial assemblies. Zero disables expiry.
	StaleAfter Duration `yaml:"stale_after"`

	// Catalog is an optional dataids.yaml overlaying the built-in catalog.
	Catalog string `yaml:"catalog"`

	// Routes adds segmented identifiers beyond the built-in families.
	Routes []RouteConfig `yaml:"routes"`
}

// RouteConfig is an additional segmented route.
type RouteConfig struct {
	ID HexID `yaml:"id"`

	// Policy is length_prefixed or streaming.
	Policy string `yaml:"policy"`

	// Format is record5le or record4be.
	Format string `yaml:"format"`
}

// OutputConfig selects the console sink.
type OutputConfig struct {
	// Format is line, jsonl or none.
	Format string `yaml:"format"`

	// Snapshot includes the merged snapshot in JSONL records.
	Snapshot bool `yaml:"snapshot"`
}

// CaptureConfig enables the protocol capture log.
type CaptureConfig struct {
	// File is the .ftlog path. Empty disables capture.
	File string `yaml:"file"`
}

// StreamConfig configures the TCP telemetry stream.
type StreamConfig struct {
	// Listen is the TCP listen address. Empty disables the stream.
	Listen string `yaml:"listen"`

	// Advertise announces the stream over mDNS.
	Advertise bool `yaml:"advertise"`

	// Name is the mDNS instance name.
	Name string `yaml:"name"`
}

// LogConfig configures operational logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

// Default returns the built-in configuration: SocketCAN on can0, all
// families with tolerant sequencing, line output.
func Default() Config {
	return Config{
		Source: SourceConfig{
			Type:           SourceSocketCAN,
			Interface:      "can0",
			Baud:           115200,
			Bitrate:        1000000,
			ReceiveTimeout: Duration(dispatch.DefaultReceiveTimeout),
			KernelFilter:   true,
		},
		Decoder: DecoderConfig{
			Simplified:     true,
			Streaming:      true,
			LengthPrefixed: true,
			Sequencing:     "tolerant",
		},
		Output: OutputConfig{Format: OutputLine},
		Stream: StreamConfig{Name: "ftcan-go"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("YAML parse error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values and source prerequisites.
func (c Config) Validate() error {
	switch c.Source.Type {
	case SourceSocketCAN:
		if c.Source.Interface == "" {
			return fmt.Errorf("%w: socketcan source needs an interface", ErrInvalid)
		}
	case SourceSLCAN:
		if c.Source.Device == "" {
			return fmt.Errorf("%w: slcan source needs a device", ErrInvalid)
		}
	case SourceReplay:
		if c.Source.File == "" {
			return fmt.Errorf("%w: replay source needs a file", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: source type %q", ErrInvalid, c.Source.Type)
	}
	if c.Source.ReceiveTimeout < 0 || c.Decoder.StaleAfter < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalid)
	}
	if c.Source.Pace < 0 {
		return fmt.Errorf("%w: negative pace", ErrInvalid)
	}

	switch c.Output.Format {
	case OutputLine, OutputJSONL, OutputNone:
	default:
		return fmt.Errorf("%w: output format %q", ErrInvalid, c.Output.Format)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	_, err := c.Routes()
	return err
}

// Sequencing returns the configured reassembly sequencing.
func (c Config) Sequencing() (segment.Sequencing, error) {
	switch strings.ToLower(c.Decoder.Sequencing) {
	case "", "tolerant":
		return segment.Tolerant, nil
	case "strict":
		return segment.Strict, nil
	}
	return 0, fmt.Errorf("%w: sequencing %q", ErrInvalid, c.Decoder.Sequencing)
}

// Routes builds the dispatch route table for the enabled families.
func (c Config) Routes() (dispatch.Routes, error) {
	seq, err := c.Sequencing()
	if err != nil {
		return nil, err
	}
	stale := time.Duration(c.Decoder.StaleAfter)

	var rs dispatch.Routes
	if c.Decoder.Simplified {
		rs = append(rs, dispatch.SimplifiedRoutes()...)
	}
	if c.Decoder.Streaming {
		rs = append(rs, dispatch.StreamingRoutes(seq)...)
	}
	if c.Decoder.LengthPrefixed {
		rs = append(rs, dispatch.LengthPrefixedRoutes(seq)...)
	}

	for _, rc := range c.Decoder.Routes {
		r, err := rc.route(seq)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}

	for i := range rs {
		if rs[i].Kind == dispatch.KindSegmented {
			rs[i].Segment.StaleAfter = stale
		}
	}

	if len(rs) == 0 {
		return nil, fmt.Errorf("%w: no decoder family enabled", ErrInvalid)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func (rc RouteConfig) route(seq segment.Sequencing) (dispatch.Route, error) {
	r := dispatch.Route{
		ID:      can.ID(rc.ID),
		Kind:    dispatch.KindSegmented,
		Segment: segment.Config{Sequencing: seq},
	}

	switch rc.Policy {
	case "length_prefixed", "":
		r.Segment.Policy = segment.LengthPrefixed
		r.Format = wire.Record5LE
	case "streaming":
		r.Segment.Policy = segment.Streaming
		r.Format = wire.Record4BE
	default:
		return r, fmt.Errorf("%w: route %s policy %q", ErrInvalid, r.ID, rc.Policy)
	}

	switch rc.Format {
	case "":
	case wire.Record5LE.String():
		r.Format = wire.Record5LE
	case wire.Record4BE.String():
		r.Format = wire.Record4BE
	default:
		return r, fmt.Errorf("%w: route %s format %q", ErrInvalid, r.ID, rc.Format)
	}
	if r.Segment.Policy == segment.Streaming {
		r.Segment.RecordWidth = r.Format.Width()
	}
	return r, nil
}

// SlogLevel returns the operational log level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return level, nil
}
