// Command ftcan-monitor decodes FTCAN 2.0 telemetry from a CAN bus.
//
// Frames come from SocketCAN, an SLCAN serial adapter or a candump log.
// Decoded values are printed to the console, optionally captured to an
// .ftlog file and served as JSON lines over TCP.
//
// Usage:
//
//	ftcan-monitor [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-source string      Frame source: socketcan, slcan, replay
//	-iface string       SocketCAN interface (default "can0")
//	-device string      SLCAN serial device
//	-file string        candump log to replay
//	-pace float         Replay speed factor (0 = as fast as possible)
//	-format string      Console output: line, jsonl, none
//	-capture string     Write a protocol capture to this .ftlog file
//	-listen string      Serve JSON lines on this TCP address
//	-advertise          Announce the stream over mDNS
//	-interactive        Start the interactive shell
//	-discover           List streams announced on the network and exit
//	-log-level string   Log level: debug, info, warn, error
//
// Examples:
//
//	# Decode can0 and print a status line
//	ftcan-monitor -iface can0
//
//	# Replay a log at recorded speed and stream it to the LAN
//	ftcan-monitor -source replay -file session.log -pace 1 -listen :7420 -advertise
//
//	# Find streams on the network
//	ftcan-monitor -discover
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ftcan-dash/ftcan-go/cmd/ftcan-monitor/interactive"
	"github.com/ftcan-dash/ftcan-go/pkg/config"
	"github.com/ftcan-dash/ftcan-go/pkg/discovery"
	"github.com/ftcan-dash/ftcan-go/pkg/version"
)

// options holds the command-line flags. Flags that were set override the
// configuration file.
type options struct {
	ConfigFile  string
	Source      string
	Interface   string
	Device      string
	File        string
	Pace        float64
	Format      string
	Snapshot    bool
	Capture     string
	Catalog     string
	Listen      string
	Advertise   bool
	Name        string
	Strict      bool
	Reopen      bool
	LogLevel    string
	Interactive bool
	Discover    bool
	Version     bool
}

var opts options

func init() {
	flag.StringVar(&opts.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&opts.Source, "source", "", "Frame source: socketcan, slcan, replay")
	flag.StringVar(&opts.Interface, "iface", "", "SocketCAN interface (default \"can0\")")
	flag.StringVar(&opts.Device, "device", "", "SLCAN serial device, e.g. /dev/ttyACM0")
	flag.StringVar(&opts.File, "file", "", "candump log to replay")
	flag.Float64Var(&opts.Pace, "pace", 0, "Replay speed factor (0 = as fast as possible)")
	flag.StringVar(&opts.Format, "format", "", "Console output: line, jsonl, none (default \"line\")")
	flag.BoolVar(&opts.Snapshot, "snapshot", false, "Include the merged snapshot in JSON records")
	flag.StringVar(&opts.Capture, "capture", "", "Write a protocol capture to this .ftlog file")
	flag.StringVar(&opts.Catalog, "catalog", "", "dataids.yaml overlaying the built-in DataID catalog")
	flag.StringVar(&opts.Listen, "listen", "", "Serve JSON lines on this TCP address, e.g. :7420")
	flag.BoolVar(&opts.Advertise, "advertise", false, "Announce the stream over mDNS")
	flag.StringVar(&opts.Name, "name", "", "mDNS instance name (default \"ftcan-go\")")
	flag.BoolVar(&opts.Strict, "strict", false, "Drop out-of-sequence segments instead of tolerating them")
	flag.BoolVar(&opts.Reopen, "reopen", false, "Reopen a failed live source with backoff")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default \"info\")")
	flag.BoolVar(&opts.Interactive, "interactive", false, "Start the interactive shell")
	flag.BoolVar(&opts.Discover, "discover", false, "List streams announced on the network and exit")
	flag.BoolVar(&opts.Version, "version", false, "Print version information and exit")
}

// apply copies the flags named in set over cfg.
func (o options) apply(cfg *config.Config, set map[string]bool) {
	if set["source"] {
		cfg.Source.Type = o.Source
	}
	if set["iface"] {
		cfg.Source.Interface = o.Interface
	}
	if set["device"] {
		cfg.Source.Device = o.Device
		if !set["source"] {
			cfg.Source.Type = config.SourceSLCAN
		}
	}
	if set["file"] {
		cfg.Source.File = o.File
		if !set["source"] {
			cfg.Source.Type = config.SourceReplay
		}
	}
	if set["pace"] {
		cfg.Source.Pace = o.Pace
	}
	if set["reopen"] {
		cfg.Source.Reopen = o.Reopen
	}
	if set["format"] {
		cfg.Output.Format = o.Format
	}
	if set["snapshot"] {
		cfg.Output.Snapshot = o.Snapshot
	}
	if set["capture"] {
		cfg.Capture.File = o.Capture
	}
	if set["catalog"] {
		cfg.Decoder.Catalog = o.Catalog
	}
	if set["strict"] {
		cfg.Decoder.Sequencing = "tolerant"
		if o.Strict {
			cfg.Decoder.Sequencing = "strict"
		}
	}
	if set["listen"] {
		cfg.Stream.Listen = o.Listen
	}
	if set["advertise"] {
		cfg.Stream.Advertise = o.Advertise
	}
	if set["name"] {
		cfg.Stream.Name = o.Name
	}
	if set["log-level"] {
		cfg.Log.Level = o.LogLevel
	}
}

// loadConfig reads the configuration file, if any, and applies the flags.
func loadConfig(o options, set map[string]bool) (config.Config, error) {
	cfg := config.Default()
	if o.ConfigFile != "" {
		var err error
		cfg, err = config.Load(o.ConfigFile)
		if err != nil {
			return config.Config{}, err
		}
	}
	o.apply(&cfg, set)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func main() {
	flag.Parse()

	if opts.Version {
		fmt.Println(version.Banner("ftcan-monitor"))
		return
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(opts, set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.Discover {
		if err := discover(ctx, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, level); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, level slog.Level) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var console, logOut io.Writer = os.Stdout, os.Stderr

	m := newMonitor(cfg, nil)
	var shell *interactive.Shell
	if opts.Interactive {
		var err error
		shell, err = interactive.New(m)
		if err != nil {
			return err
		}
		console, logOut = shell.Stdout(), shell.Stderr()
		if cfg.Output.Format == config.OutputLine {
			// The status line would fight the prompt.
			m.cfg.Output.Format = config.OutputNone
		}
	}
	m.logger = newLogger(logOut, level)
	m.logger.Info("ftcan-monitor starting", "version", version.Build, "session", m.sessionID)

	defer m.close()
	if err := m.build(console); err != nil {
		return err
	}
	if err := m.start(ctx); err != nil {
		return err
	}

	if shell != nil {
		go shell.Run(ctx, cancel)
	}

	err := m.run(ctx)
	if err == nil && shell != nil && ctx.Err() == nil {
		// Replay finished; keep the shell open for inspection.
		m.logger.Info("source exhausted, type 'quit' to exit")
		<-ctx.Done()
	}
	return err
}

// discover prints the telemetry streams announced on the network.
func discover(ctx context.Context, w io.Writer) error {
	browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{})
	streams, err := browser.FindAll(ctx, discovery.BrowseTimeout)
	if err != nil {
		return err
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	printStreams(w, streams)
	return nil
}

func printStreams(w io.Writer, streams []*discovery.StreamService) {
	if len(streams) == 0 {
		fmt.Fprintf(w, "No %s streams found within %s\n", discovery.ServiceType, discovery.BrowseTimeout.Round(time.Second))
		return
	}
	for _, s := range streams {
		fmt.Fprintf(w, "%s  %s:%d  v%s  %s %s", s.InstanceName, s.Host, s.Port, s.Version, s.Source, s.Bus)
		if len(s.Families) > 0 {
			fmt.Fprintf(w, "  %v", s.Families)
		}
		fmt.Fprintln(w)
		for _, addr := range s.Addresses {
			fmt.Fprintf(w, "    %s\n", addr)
		}
	}
}
