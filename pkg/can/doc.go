// Package can defines the classical CAN frame used throughout ftcan-go.
//
// A Frame carries a 29-bit extended (or 11-bit standard) identifier and up to
// eight data bytes. Frames are plain values: the dispatcher owns a frame only
// for the duration of a single decode call.
//
// # Text and Binary Encodings
//
// Frames can be converted to and from the encodings used by common capture
// and adapter tools:
//   - candump log lines: "(1700000000.123456) can0 14080602#0007D00A01"
//   - SLCAN (LAWICEL) ASCII: "T140806025" + hex data + "\r"
//   - Linux SocketCAN struct can_frame (16 bytes, little-endian)
//
// # FTCAN Identifiers
//
// FTCAN 2.0 packs three fields into the 29-bit identifier:
//
//	 28            14 13   11 10          0
//	┌────────────────┬───────┬─────────────┐
//	│   ProductID    │ DataF │  MessageID  │
//	└────────────────┴───────┴─────────────┘
//
// ID exposes the fields; the protocol tables in pkg/wire and pkg/config are
// expressed as full identifiers.
package can
