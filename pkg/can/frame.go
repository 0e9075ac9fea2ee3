package can

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Frame limits.
const (
	// MaxDataLen is the maximum payload size of a classical CAN frame.
	MaxDataLen = 8

	// MaxStandardID is the largest 11-bit identifier.
	MaxStandardID = 0x7FF

	// MaxExtendedID is the largest 29-bit identifier.
	MaxExtendedID = 0x1FFFFFFF
)

// Frame errors.
var (
	// ErrInvalidID indicates an identifier outside the range of its format.
	ErrInvalidID = errors.New("can: invalid identifier")

	// ErrInvalidLength indicates more than eight data bytes.
	ErrInvalidLength = errors.New("can: invalid data length")
)

// Frame is a received classical CAN frame.
type Frame struct {
	// ID is the arbitration identifier (29-bit when Extended).
	ID uint32

	// Data is the payload, 0-8 bytes.
	Data []byte

	// Extended reports a 29-bit identifier.
	Extended bool
}

// NewFrame builds an extended frame with a copy of data.
func NewFrame(id uint32, data []byte) Frame {
	return Frame{
		ID:       id,
		Data:     append([]byte(nil), data...),
		Extended: true,
	}
}

// Validate returns an error if the frame cannot exist on a classical CAN bus.
func (f Frame) Validate() error {
	if len(f.Data) > MaxDataLen {
		return fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(f.Data))
	}
	limit := uint32(MaxStandardID)
	if f.Extended {
		limit = MaxExtendedID
	}
	if f.ID > limit {
		return fmt.Errorf("%w: 0x%X", ErrInvalidID, f.ID)
	}
	return nil
}

// Len returns the data length code.
func (f Frame) Len() int {
	return len(f.Data)
}

// String renders the frame in candump compact form, e.g. "14080602#0007D00A01".
func (f Frame) String() string {
	var b strings.Builder
	if f.Extended {
		fmt.Fprintf(&b, "%08X", f.ID&MaxExtendedID)
	} else {
		fmt.Fprintf(&b, "%03X", f.ID&MaxStandardID)
	}
	b.WriteByte('#')
	b.WriteString(strings.ToUpper(hex.EncodeToString(f.Data)))
	return b.String()
}
