package can

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedLine indicates a text line that is not a recognizable frame.
var ErrMalformedLine = errors.New("can: malformed frame line")

// LogEntry is one line of a candump -l log.
type LogEntry struct {
	// Timestamp is the capture time (zero if the line carried none).
	Timestamp time.Time

	// Interface is the capturing interface name, e.g. "can0".
	Interface string

	Frame Frame
}

// ParseCandumpLine parses a candump log line.
//
// Accepted forms:
//
//	(1700000000.123456) can0 14080602#0007D00A01
//	can0 14080602#0007D00A01
//	14080602#0007D00A01
//
// Identifiers longer than three hex digits are treated as extended.
func ParseCandumpLine(line string) (LogEntry, error) {
	var entry LogEntry

	line = strings.TrimSpace(line)
	idxHash := strings.Index(line, "#")
	if idxHash == -1 {
		return entry, fmt.Errorf("%w: no # separator", ErrMalformedLine)
	}

	head := strings.TrimSpace(line[:idxHash])
	if strings.HasPrefix(head, "(") {
		end := strings.Index(head, ")")
		if end == -1 {
			return entry, fmt.Errorf("%w: unterminated timestamp", ErrMalformedLine)
		}
		ts, err := parseCandumpTimestamp(head[1:end])
		if err != nil {
			return entry, err
		}
		entry.Timestamp = ts
		head = strings.TrimSpace(head[end+1:])
	}

	idPart := head
	if idx := strings.LastIndex(head, " "); idx != -1 {
		entry.Interface = strings.TrimSpace(head[:idx])
		idPart = head[idx+1:]
	}
	if idPart == "" {
		return entry, fmt.Errorf("%w: missing identifier", ErrMalformedLine)
	}

	id, err := strconv.ParseUint(idPart, 16, 32)
	if err != nil {
		return entry, fmt.Errorf("%w: identifier %q", ErrMalformedLine, idPart)
	}

	payloadHex := strings.ReplaceAll(line[idxHash+1:], " ", "")
	if strings.HasPrefix(payloadHex, "R") {
		// remote request frames carry no data
		payloadHex = ""
	}
	data, err := hex.DecodeString(payloadHex)
	if err != nil {
		return entry, fmt.Errorf("%w: payload: %v", ErrMalformedLine, err)
	}

	entry.Frame = Frame{
		ID:       uint32(id),
		Data:     data,
		Extended: len(idPart) > 3,
	}
	if err := entry.Frame.Validate(); err != nil {
		return entry, err
	}
	return entry, nil
}

// FormatCandumpLine renders an entry as a candump -l log line.
func FormatCandumpLine(e LogEntry) string {
	iface := e.Interface
	if iface == "" {
		iface = "can0"
	}
	ts := e.Timestamp
	return fmt.Sprintf("(%d.%06d) %s %s", ts.Unix(), ts.Nanosecond()/1000, iface, e.Frame.String())
}

func parseCandumpTimestamp(s string) (time.Time, error) {
	secStr, fracStr, _ := strings.Cut(s, ".")
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrMalformedLine, s)
	}
	var nsec int64
	if fracStr != "" {
		if len(fracStr) > 9 {
			fracStr = fracStr[:9]
		}
		frac, err := strconv.ParseInt(fracStr, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrMalformedLine, s)
		}
		for i := len(fracStr); i < 9; i++ {
			frac *= 10
		}
		nsec = frac
	}
	return time.Unix(sec, nsec), nil
}
