// Command ftcan-log is a tool for viewing and analyzing FTCAN capture files.
//
// Capture files are written by ftcan-monitor when run with the -capture flag.
//
// Usage:
//
//	ftcan-log <command> [flags] <file.ftlog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSONL, CSV or candump format
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View all events
//	ftcan-log view session.ftlog
//
//	# View only dropped frames
//	ftcan-log view -category drop session.ftlog
//
//	# Export raw frames for replay
//	ftcan-log export -format candump -o session.log session.ftlog
//
//	# Keep one identifier and save to new file
//	ftcan-log filter -id 0x140811FF -o lean.ftlog session.ftlog
//
//	# Show statistics
//	ftcan-log stats session.ftlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ftcan-dash/ftcan-go/cmd/ftcan-log/commands"
	"github.com/ftcan-dash/ftcan-go/pkg/version"
)

const usage = `ftcan-log - FTCAN Capture Analyzer

Usage:
  ftcan-log <command> [flags] <file.ftlog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSONL, CSV or candump format
  filter   Filter capture file and write to new file
  stats    Show statistics about the capture file
  version  Print version information

Use "ftcan-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "version", "-version":
		fmt.Println(version.Banner("ftcan-log"))
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// capturePath returns the single positional argument or exits.
func capturePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ftcan-log view - View capture file in human-readable format

Usage:
  ftcan-log view [flags] <file.ftlog>

Flags:
`)
		fs.PrintDefaults()
	}

	layer := fs.String("layer", "", "Filter by layer (bus, segment, telemetry)")
	category := fs.String("category", "", "Filter by category (frame, packet, items, assembly, drop)")
	ids := fs.String("id", "", "Filter by CAN identifiers (comma-separated)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := capturePath(fs)

	var filter commands.ViewFilter

	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	parsed, err := commands.ParseIDsFlag(*ids)
	if err != nil {
		fail(err)
	}
	filter.CANIDs = parsed

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ftcan-log export - Export capture file to JSONL, CSV or candump format

Usage:
  ftcan-log export [flags] <file.ftlog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv, candump)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := capturePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ftcan-log filter - Filter capture file and write to new file

Usage:
  ftcan-log filter [flags] <file.ftlog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	session := fs.String("session", "", "Filter by session ID")
	ids := fs.String("id", "", "Filter by CAN identifiers (comma-separated)")
	iface := fs.String("iface", "", "Filter by bus interface")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.String("layer", "", "Filter by layer (bus, segment, telemetry)")
	category := fs.String("category", "", "Filter by category (frame, packet, items, assembly, drop)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := capturePath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		SessionID: *session,
		CANIDs:    *ids,
		Interface: *iface,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Category:  *category,
	}

	count, err := commands.RunFilter(path, opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", count, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `ftcan-log stats - Show statistics about the capture file

Usage:
  ftcan-log stats <file.ftlog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := capturePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
