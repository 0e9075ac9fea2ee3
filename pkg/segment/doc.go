// Package segment reassembles FTCAN segmented payloads that span several CAN frames.
//
// Every segmented frame carries a sequence index in byte 0 and a chunk of
// up to seven payload bytes after it. A Reassembler keeps at most one
// assembly per CAN identifier and applies exactly one Policy:
//
//   - LengthPrefixed: index 0 starts an assembly; bytes 1-2 (little-endian)
//     declare the total length. Once the buffer holds that many bytes the
//     payload is emitted, truncated to the declared length, and the
//     identifier returns to idle.
//
//   - Streaming: index 0, or any index not above the previous one, restarts
//     the buffer. After each frame every complete record at the front of the
//     buffer is emitted and the remainder is kept for the next frame.
//
// A continuation frame for an idle identifier is an orphan and is dropped.
//
// By default duplicate and skipped indices are accepted (Tolerant). With
// Strict sequencing any index other than previous+1 abandons the assembly.
// When Config.StaleAfter is set, assemblies idle for longer are discarded on
// the next frame or by Sweep.
//
// A Reassembler is not safe for concurrent use. It is meant to be driven
// from the single goroutine that reads the bus.
package segment
