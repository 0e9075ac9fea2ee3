package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Record is the JSON form of an Update.
type Record struct {
	TS       string       `json:"ts"`
	ID       string       `json:"id"`
	Kind     string       `json:"kind"`
	Packet   any          `json:"packet,omitempty"`
	Items    []ItemRecord `json:"items,omitempty"`
	Snapshot *Snapshot    `json:"snapshot,omitempty"`
}

// ItemRecord is the JSON form of a decoded item.
type ItemRecord struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Unit  string  `json:"unit,omitempty"`
	Raw   int32   `json:"raw"`
	Value float64 `json:"value"`
}

// NewRecord converts an update. The snapshot is included when withSnapshot is set.
func NewRecord(u Update, withSnapshot bool) Record {
	rec := Record{
		TS: u.At.UTC().Format(time.RFC3339Nano),
		ID: u.ID.String(),
	}
	if u.Packet != nil {
		rec.Kind = u.Packet.Name()
		rec.Packet = u.Packet
	} else {
		rec.Kind = "items"
		rec.Items = make([]ItemRecord, 0, len(u.Items))
		for _, it := range u.Items {
			rec.Items = append(rec.Items, ItemRecord{
				Code:  formatCode(it.Code),
				Name:  it.Name,
				Unit:  it.Unit,
				Raw:   it.Raw,
				Value: it.Value,
			})
		}
	}
	if withSnapshot && u.Snapshot != nil {
		snap := u.Snapshot.Clone()
		rec.Snapshot = &snap
	}
	return rec
}

// JSONLWriter writes one JSON record per update.
type JSONLWriter struct {
	enc          *json.Encoder
	withSnapshot bool
}

// NewJSONLWriter creates a JSON lines sink. withSnapshot adds the merged
// snapshot to every line.
func NewJSONLWriter(w io.Writer, withSnapshot bool) *JSONLWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{
		enc:          enc,
		withSnapshot: withSnapshot,
	}
}

// Consume writes u as one line. Empty updates are skipped.
func (j *JSONLWriter) Consume(u Update) error {
	if u.Empty() {
		return nil
	}
	return j.enc.Encode(NewRecord(u, j.withSnapshot))
}

func formatCode(code uint16) string {
	return fmt.Sprintf("0x%04X", code)
}
