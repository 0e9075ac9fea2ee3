// Package interactive provides the interactive command-line interface
// for ftcan-monitor.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/ftcan-dash/ftcan-go/pkg/dispatch"
	"github.com/ftcan-dash/ftcan-go/pkg/stream"
	"github.com/ftcan-dash/ftcan-go/pkg/telemetry"
)

// Monitor is the running decoder as seen by the shell. Every method must be
// safe to call while the decode loop runs.
type Monitor interface {
	// Stats returns the dispatcher counters.
	Stats() dispatch.Stats

	// Snapshot returns a copy of the merged telemetry.
	Snapshot() telemetry.Snapshot

	// Routes returns the route table.
	Routes() dispatch.Routes

	// SourceState describes the frame source, e.g. "CONNECTED".
	SourceState() string

	// Clients returns the stream clients, nil when streaming is off.
	Clients() []stream.ClientInfo
}

// Shell handles interactive mode for ftcan-monitor.
type Shell struct {
	mon     Monitor
	rl      *readline.Instance
	started time.Time
}

// New creates a new interactive shell.
func New(mon Monitor) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ftcan> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{mon: mon, rl: rl, started: time.Now()}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for telemetry and log output to avoid interfering with the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop. It calls cancel when the user
// quits and returns when ctx is done.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp(s.rl.Stdout())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		if quit := s.Execute(line, s.rl.Stdout()); quit {
			cancel()
			return
		}
	}
}

// Execute runs one command line, writing its output to w. It reports
// whether the user asked to quit.
func (s *Shell) Execute(line string, w io.Writer) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp(w)

	case "stats", "s":
		s.cmdStats(w)

	case "snapshot", "snap":
		s.cmdSnapshot(w)

	case "channels", "ch":
		s.cmdChannels(w, args)

	case "routes":
		s.cmdRoutes(w)

	case "clients":
		s.cmdClients(w)

	case "quit", "exit", "q":
		fmt.Fprintln(w, "Exiting...")
		return true

	default:
		fmt.Fprintf(w, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp(w io.Writer) {
	fmt.Fprintln(w, `
FTCAN Monitor Commands:
  Telemetry:
    snapshot           - Show the merged telemetry values
    channels [code]    - List decoded DataIDs (or one, e.g. 0x0084)

  Decoder:
    stats              - Show frame and reassembly counters
    routes             - Show the routed identifiers
    clients            - Show connected stream clients

  General:
    help               - Show this help
    quit               - Exit monitor`)
}

func (s *Shell) cmdStats(w io.Writer) {
	st := s.mon.Stats()
	fmt.Fprintf(w, "Source:      %s (up %s)\n", s.mon.SourceState(), time.Since(s.started).Round(time.Second))
	fmt.Fprintf(w, "Frames:      %d (ignored %d)\n", st.Frames, st.Ignored)
	fmt.Fprintf(w, "Packets:     %d\n", st.Packets)
	fmt.Fprintf(w, "Assemblies:  %d started, %d restarted, %d appended, %d completed\n",
		st.Started, st.Restarted, st.Appended, st.Completed)
	fmt.Fprintf(w, "Payloads:    %d emitted, %d items\n", st.Emitted, st.Items)
	fmt.Fprintf(w, "Dropped:     %d (malformed %d, orphan %d, out of sequence %d, stale %d)\n",
		st.Dropped(), st.Malformed, st.Orphans, st.OutOfSequence, st.Stale)
	if st.Expired > 0 {
		fmt.Fprintf(w, "Expired:     %d\n", st.Expired)
	}
}

func (s *Shell) cmdSnapshot(w io.Writer) {
	snap := s.mon.Snapshot()
	if snap.Updated.IsZero() {
		fmt.Fprintln(w, "No telemetry received yet")
		return
	}

	fmt.Fprintf(w, "Updated %s  %s\n", snap.Updated.Format("15:04:05.000"), telemetry.FormatLine(&snap))
	for _, f := range []struct {
		name string
		v    *float64
		unit string
	}{
		{"TPS", snap.TPS, "%"},
		{"MAP", snap.MAP, "bar"},
		{"Air temp", snap.AirTemp, "°C"},
		{"Engine temp", snap.EngineTemp, "°C"},
		{"Oil temp", snap.OilTemp, "°C"},
		{"Oil pressure", snap.OilPressure, "bar"},
		{"Fuel pressure", snap.FuelPressure, "bar"},
		{"Water pressure", snap.WaterPressure, "bar"},
		{"Lambda", snap.Lambda, ""},
		{"Battery", snap.BatteryVoltage, "V"},
	} {
		if f.v != nil {
			fmt.Fprintf(w, "  %-15s %g %s\n", f.name+":", *f.v, f.unit)
		}
	}
	if snap.PitLimit != nil {
		fmt.Fprintf(w, "  %-15s %t\n", "Pit limiter:", *snap.PitLimit)
	}
	fmt.Fprintf(w, "  %-15s %d\n", "Channels:", len(snap.Channels))
}

func (s *Shell) cmdChannels(w io.Writer, args []string) {
	snap := s.mon.Snapshot()

	if len(args) > 0 {
		code, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			fmt.Fprintf(w, "Invalid DataID: %s\n", args[0])
			return
		}
		ch, ok := snap.Channel(uint16(code))
		if !ok {
			fmt.Fprintf(w, "DataID 0x%04X not received\n", code)
			return
		}
		printChannel(w, uint16(code), ch)
		return
	}

	if len(snap.Channels) == 0 {
		fmt.Fprintln(w, "No channels decoded yet")
		return
	}
	codes := make([]uint16, 0, len(snap.Channels))
	for code := range snap.Channels {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, code := range codes {
		printChannel(w, code, snap.Channels[code])
	}
}

func printChannel(w io.Writer, code uint16, ch telemetry.Channel) {
	name := ch.Name
	if !ch.Known {
		name += " (unknown)"
	}
	fmt.Fprintf(w, "  0x%04X %-28s %12g %-6s raw=%d at %s\n",
		code, name, ch.Value, ch.Unit, ch.Raw, ch.At.Format("15:04:05.000"))
}

func (s *Shell) cmdRoutes(w io.Writer) {
	for _, r := range s.mon.Routes() {
		if r.Kind == dispatch.KindSimplified {
			fmt.Fprintf(w, "  %s %-11s\n", r.ID, r.Kind)
			continue
		}
		fmt.Fprintf(w, "  %s %-11s %s %s %s\n", r.ID, r.Kind, r.Segment.Policy, r.Segment.Sequencing, r.Format)
	}
}

func (s *Shell) cmdClients(w io.Writer) {
	clients := s.mon.Clients()
	if clients == nil {
		fmt.Fprintln(w, "Streaming is disabled")
		return
	}
	fmt.Fprintf(w, "Stream clients: %d\n", len(clients))
	sort.Slice(clients, func(i, j int) bool { return clients[i].Since.Before(clients[j].Since) })
	for _, c := range clients {
		fmt.Fprintf(w, "  [%s] %s connected %s\n",
			c.ID[:min(8, len(c.ID))], c.RemoteAddr, time.Since(c.Since).Round(time.Second))
	}
}
