package telemetry

import (
	"fmt"
	"io"
	"strings"
)

// LineWriter prints a compact status line, only when it differs from the
// previous one.
type LineWriter struct {
	w    io.Writer
	last string
}

// NewLineWriter creates a status line sink writing to w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// Consume prints the status line of u.Snapshot if it changed.
func (l *LineWriter) Consume(u Update) error {
	if u.Snapshot == nil {
		return nil
	}
	line := FormatLine(u.Snapshot)
	if line == l.last {
		return nil
	}
	l.last = line
	_, err := fmt.Fprintln(l.w, line)
	return err
}

// FormatLine renders RPM, estimated speed and gear, e.g.
// "RPM=2000  Speed≈42.5 km/h  Gear=3".
func FormatLine(s *Snapshot) string {
	var b strings.Builder
	if s.RPM != nil {
		fmt.Fprintf(&b, "RPM=%.0f", *s.RPM)
	} else {
		b.WriteString("RPM=-")
	}
	if v, ok := s.VehicleSpeed(); ok {
		fmt.Fprintf(&b, "  Speed≈%.1f km/h", v)
	}
	if g, ok := s.GearLabel(); ok {
		fmt.Fprintf(&b, "  Gear=%s", g)
	}
	return b.String()
}
