// Package commands implements the ftcan-log CLI commands.
package commands

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer    *log.Layer
	Category *log.Category
	CANIDs   []uint32
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Layer:    f.Layer,
		Category: f.Category,
		CANIDs:   f.CANIDs,
	}
}

const timeLayout = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] LAYER Type id iface
	ts := event.Timestamp.UTC().Format(timeLayout)
	session := shortenSessionID(event.SessionID)

	var typeLabel string
	switch {
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Packet != nil:
		typeLabel = "Packet"
	case event.Items != nil:
		typeLabel = "Items"
	case event.Assembly != nil:
		typeLabel = "Assembly"
	case event.Drop != nil:
		typeLabel = "Drop"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [session:%s] %-9s %-8s %s", ts, session, event.Layer, typeLabel, can.ID(event.CANID))
	if event.Interface != "" {
		fmt.Fprintf(w, " %s", event.Interface)
	}
	fmt.Fprintln(w)

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Packet != nil:
		formatPacketDetails(w, event.Packet)
	case event.Items != nil:
		formatItemsDetails(w, event.Items)
	case event.Assembly != nil:
		formatAssemblyDetails(w, event.Assembly)
	case event.Drop != nil:
		formatDropDetails(w, event.Drop)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  DLC: %d\n", len(frame.Data))
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s\n", strings.ToUpper(hex.EncodeToString(frame.Data)))
	}
}

func formatPacketDetails(w io.Writer, p *log.PacketEvent) {
	fmt.Fprintf(w, "  Kind: %s\n", p.Kind)
	keys := make([]string, 0, len(p.Values))
	for k := range p.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-16s %g\n", k+":", p.Values[k])
	}
}

func formatItemsDetails(w io.Writer, items *log.ItemsEvent) {
	fmt.Fprintf(w, "  Format: %s  Payload: %d bytes  Items: %d\n", items.Format, items.PayloadLen, len(items.Items))
	for _, it := range items.Items {
		name := it.Name
		if !it.Known || name == "" {
			name = "?"
		}
		fmt.Fprintf(w, "  0x%04X %-24s %g", it.Code, name, it.Value)
		if it.Unit != "" {
			fmt.Fprintf(w, " %s", it.Unit)
		}
		fmt.Fprintf(w, " (raw %d)\n", it.Raw)
	}
}

func formatAssemblyDetails(w io.Writer, a *log.AssemblyEvent) {
	fmt.Fprintf(w, "  Outcome: %s  seq=%d  buffered=%d", a.Outcome, a.Sequence, a.Buffered)
	if a.Emitted > 0 {
		fmt.Fprintf(w, "  emitted=%d", a.Emitted)
	}
	if a.Replaced {
		fmt.Fprint(w, "  (replaced partial)")
	}
	fmt.Fprintln(w)
}

func formatDropDetails(w io.Writer, d *log.DropEvent) {
	fmt.Fprintf(w, "  Reason: %s\n", d.Reason)
	if d.Detail != "" {
		fmt.Fprintf(w, "  Detail: %s\n", d.Detail)
	}
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	return parseLayer(s)
}

func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "bus":
		return log.LayerBus, nil
	case "segment":
		return log.LayerSegment, nil
	case "telemetry":
		return log.LayerTelemetry, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be bus, segment, or telemetry)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "frame":
		return log.CategoryFrame, nil
	case "packet":
		return log.CategoryPacket, nil
	case "items":
		return log.CategoryItems, nil
	case "assembly":
		return log.CategoryAssembly, nil
	case "drop":
		return log.CategoryDrop, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be frame, packet, items, assembly, or drop)", s)
	}
}

// ParseIDsFlag parses a comma-separated list of CAN identifiers.
func ParseIDsFlag(s string) ([]uint32, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []uint32
	for _, part := range strings.Split(s, ",") {
		id, err := can.ParseID(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid id: %w", err)
		}
		ids = append(ids, uint32(id))
	}
	return ids, nil
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}
