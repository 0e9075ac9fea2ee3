// Package wire decodes FTCAN 2.0 payloads into telemetry values.
//
// Two kinds of payload exist on the bus.
//
// # Simplified broadcast
//
// A fixed set of identifiers (0x14080600-0x14080603) carries several values
// directly in one frame. DecodeSimplified turns such a frame into one of the
// Packet variants:
//
//	EngineTemps     0x14080600  TPS, MAP, air temp, engine temp
//	PressuresGear   0x14080601  oil, fuel, water pressure, gear
//	LambdaRPM       0x14080602  exhaust lambda, RPM, oil temp, pit limit
//	WheelSpeeds     0x14080603  FR, FL, RR, RL
//
// Frames shorter than their layout are rejected, never partially decoded.
//
// # Item records
//
// Reassembled segmented payloads are a sequence of fixed-width records, each
// carrying one channel value identified by a DataID:
//
//	Record5LE  code(2, LE) value(3, LE)
//	Record4BE  measure(2, BE) value(2, BE)   code = measure>>1, bit 0 = status
//
// DecodeItems walks a payload record by record. Trailing bytes shorter than a
// record are padding. Status records are skipped. Unknown codes still produce
// an Item using catalog.Fallback.
package wire
