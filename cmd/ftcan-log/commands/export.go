package commands

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/log"
)

// jsonEvent is the JSONL representation of a capture event.
type jsonEvent struct {
	Timestamp string             `json:"ts"`
	SessionID string             `json:"session"`
	Interface string             `json:"iface,omitempty"`
	Layer     string             `json:"layer"`
	Category  string             `json:"category"`
	CANID     string             `json:"can_id"`
	Data      string             `json:"data,omitempty"`
	Packet    *log.PacketEvent   `json:"packet,omitempty"`
	Items     *log.ItemsEvent    `json:"items,omitempty"`
	Assembly  *log.AssemblyEvent `json:"assembly,omitempty"`
	Drop      *jsonDrop          `json:"drop,omitempty"`
}

type jsonDrop struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func toJSONEvent(event log.Event) jsonEvent {
	je := jsonEvent{
		Timestamp: event.Timestamp.UTC().Format(timeLayout),
		SessionID: event.SessionID,
		Interface: event.Interface,
		Layer:     event.Layer.String(),
		Category:  event.Category.String(),
		CANID:     can.ID(event.CANID).String(),
		Packet:    event.Packet,
		Items:     event.Items,
		Assembly:  event.Assembly,
	}
	if event.Frame != nil {
		je.Data = hex.EncodeToString(event.Frame.Data)
	}
	if event.Drop != nil {
		je.Drop = &jsonDrop{Reason: event.Drop.Reason.String(), Detail: event.Drop.Detail}
	}
	return je
}

// RunExport exports the capture file to the specified format.
//
// Supported formats are jsonl, csv and candump. The candump format keeps
// only bus frames and can be fed back into the replay source.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var export func(*log.Reader, io.Writer) error
	switch format {
	case "jsonl":
		export = exportJSONL
	case "csv":
		export = exportCSV
	case "candump":
		export = exportCandump
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv, candump)", format)
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return export(reader, w)
}

// eachEvent calls fn for every event until the end of the file.
func eachEvent(reader *log.Reader, fn func(log.Event) error) error {
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	return eachEvent(reader, func(event log.Event) error {
		if err := encoder.Encode(toJSONEvent(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
		return nil
	})
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "interface", "layer", "category", "can_id", "type", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	return eachEvent(reader, func(event log.Event) error {
		eventType, detail := "unknown", ""
		switch {
		case event.Frame != nil:
			eventType = "frame"
			detail = hex.EncodeToString(event.Frame.Data)
		case event.Packet != nil:
			eventType = event.Packet.Kind
		case event.Items != nil:
			eventType = "items"
			detail = strconv.Itoa(len(event.Items.Items))
		case event.Assembly != nil:
			eventType = event.Assembly.Outcome
			detail = strconv.Itoa(int(event.Assembly.Sequence))
		case event.Drop != nil:
			eventType = "drop"
			detail = event.Drop.Reason.String()
		}

		row := []string{
			event.Timestamp.UTC().Format(timeLayout),
			event.SessionID,
			event.Interface,
			event.Layer.String(),
			event.Category.String(),
			can.ID(event.CANID).String(),
			eventType,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		return nil
	})
}

func exportCandump(reader *log.Reader, w io.Writer) error {
	return eachEvent(reader, func(event log.Event) error {
		frame, ok := event.CANFrame()
		if !ok {
			return nil
		}
		line := can.FormatCandumpLine(can.LogEntry{
			Timestamp: event.Timestamp,
			Interface: event.Interface,
			Frame:     frame,
		})
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write frame: %w", err)
		}
		return nil
	})
}
