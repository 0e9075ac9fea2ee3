package can

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// EncodeSLCAN converts a frame into the LAWICEL ASCII command that transmits it,
// including the trailing carriage return.
func EncodeSLCAN(f Frame) string {
	var b strings.Builder
	if f.Extended {
		b.WriteByte('T')
		fmt.Fprintf(&b, "%08X", f.ID&MaxExtendedID)
	} else {
		b.WriteByte('t')
		fmt.Fprintf(&b, "%03X", f.ID&MaxStandardID)
	}
	b.WriteByte('0' + byte(len(f.Data)&0x0F))
	b.WriteString(strings.ToUpper(hex.EncodeToString(f.Data)))
	b.WriteByte('\r')
	return b.String()
}

// DecodeSLCAN parses a received LAWICEL frame line ("T...", "t...", "R...", "r...").
// A trailing carriage return and an optional 4-digit timestamp are accepted.
func DecodeSLCAN(line string) (Frame, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Frame{}, fmt.Errorf("%w: empty slcan line", ErrMalformedLine)
	}

	var f Frame
	var idLen int
	remote := false
	switch line[0] {
	case 'T':
		f.Extended, idLen = true, 8
	case 't':
		idLen = 3
	case 'R':
		f.Extended, idLen, remote = true, 8, true
	case 'r':
		idLen, remote = 3, true
	default:
		return Frame{}, fmt.Errorf("%w: slcan command %q", ErrMalformedLine, line[0])
	}

	if len(line) < 1+idLen+1 {
		return Frame{}, fmt.Errorf("%w: slcan line too short", ErrMalformedLine)
	}
	id, err := strconv.ParseUint(line[1:1+idLen], 16, 32)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: slcan identifier", ErrMalformedLine)
	}
	f.ID = uint32(id)

	dlc := int(line[1+idLen] - '0')
	if dlc < 0 || dlc > MaxDataLen {
		return Frame{}, fmt.Errorf("%w: slcan dlc %q", ErrInvalidLength, line[1+idLen])
	}

	body := line[2+idLen:]
	if remote {
		f.Data = []byte{}
		return f, f.Validate()
	}
	if len(body) < dlc*2 {
		return Frame{}, fmt.Errorf("%w: slcan payload truncated", ErrMalformedLine)
	}
	data, err := hex.DecodeString(body[:dlc*2])
	if err != nil {
		return Frame{}, fmt.Errorf("%w: slcan payload: %v", ErrMalformedLine, err)
	}
	f.Data = data
	return f, f.Validate()
}
