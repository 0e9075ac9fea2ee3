package can

import (
	"encoding/binary"
	"fmt"
)

// SocketCAN struct can_frame layout.
const (
	// WireSize is the size of struct can_frame.
	WireSize = 16

	flagEFF = 0x80000000
	flagRTR = 0x40000000
	flagERR = 0x20000000
)

// MarshalBinary encodes the frame as a Linux struct can_frame:
//
//	0..3  can_id (little-endian, EFF flag for extended IDs)
//	4     can_dlc
//	5..7  padding
//	8..15 data
func (f Frame) MarshalBinary() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	id := f.ID
	if f.Extended {
		id |= flagEFF
	}
	buf := make([]byte, WireSize)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = byte(len(f.Data))
	copy(buf[8:], f.Data)
	return buf, nil
}

// UnmarshalBinary decodes a Linux struct can_frame.
func (f *Frame) UnmarshalBinary(raw []byte) error {
	if len(raw) < WireSize {
		return fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidLength, WireSize, len(raw))
	}
	id := binary.LittleEndian.Uint32(raw[0:4])
	f.Extended = id&flagEFF != 0
	if f.Extended {
		f.ID = id & MaxExtendedID
	} else {
		f.ID = id & MaxStandardID
	}
	dlc := int(raw[4])
	if dlc > MaxDataLen {
		return fmt.Errorf("%w: dlc %d", ErrInvalidLength, dlc)
	}
	f.Data = append([]byte(nil), raw[8:8+dlc]...)
	return f.Validate()
}

// IsErrorFrame reports whether a raw can_frame carries the error flag.
func IsErrorFrame(raw []byte) bool {
	if len(raw) < 4 {
		return false
	}
	return binary.LittleEndian.Uint32(raw[0:4])&flagERR != 0
}

// IsRemoteFrame reports whether a raw can_frame carries the RTR flag.
func IsRemoteFrame(raw []byte) bool {
	if len(raw) < 4 {
		return false
	}
	return binary.LittleEndian.Uint32(raw[0:4])&flagRTR != 0
}
