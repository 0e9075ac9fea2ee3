package can

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is a 29-bit FTCAN identifier.
type ID uint32

// DataFieldID values.
const (
	// DataFieldStandard is a plain CAN payload (simplified broadcast).
	DataFieldStandard uint8 = 0x00

	// DataFieldStandardSegmented is a plain CAN payload split across frames.
	DataFieldStandardSegmented uint8 = 0x01

	// DataFieldFTCAN is an FTCAN 2.0 payload.
	DataFieldFTCAN uint8 = 0x02

	// DataFieldFTCANSegmented is an FTCAN 2.0 payload split across frames.
	DataFieldFTCANSegmented uint8 = 0x03
)

// MakeID assembles an identifier from its fields.
func MakeID(product uint16, dataField uint8, message uint16) ID {
	return ID(uint32(product&0x7FFF)<<14 | uint32(dataField&0x7)<<11 | uint32(message&0x7FF))
}

// ProductID returns bits 14-28.
func (id ID) ProductID() uint16 {
	return uint16((uint32(id) >> 14) & 0x7FFF)
}

// DataFieldID returns bits 11-13.
func (id ID) DataFieldID() uint8 {
	return uint8((uint32(id) >> 11) & 0x7)
}

// MessageID returns bits 0-10.
func (id ID) MessageID() uint16 {
	return uint16(uint32(id) & 0x7FF)
}

// Segmented reports whether the data field marks a multi-frame payload.
func (id ID) Segmented() bool {
	df := id.DataFieldID()
	return df == DataFieldStandardSegmented || df == DataFieldFTCANSegmented
}

// String returns the identifier as 0x-prefixed hex.
func (id ID) String() string {
	return fmt.Sprintf("0x%08X", uint32(id))
}

// ParseID parses a decimal or 0x-prefixed hexadecimal identifier.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if v > MaxExtendedID {
		return 0, fmt.Errorf("%w: %q exceeds 29 bits", ErrInvalidID, s)
	}
	return ID(v), nil
}
