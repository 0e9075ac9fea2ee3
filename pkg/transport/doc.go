// Package transport provides CAN frame sources for the decoder.
//
// A Source delivers one received frame per call to Receive. Three sources
// are provided:
//   - SocketCAN: a raw CAN_RAW socket on a Linux network interface
//   - SLCAN: a serial adapter speaking the LAWICEL ASCII protocol
//   - Replay: a candump log file, read line by line
//
// # Timeouts
//
// Receive blocks for at most the given timeout and returns ErrTimeout when
// no frame arrived. A timeout of zero or less blocks until a frame arrives
// or the source is closed. Timeouts are not failures: the decode loop simply
// calls Receive again.
//
// # Kernel Filters
//
// SocketCAN accepts exact-match identifier filters so the kernel drops
// unrelated traffic before it reaches user space:
//
//	src, err := transport.OpenSocketCAN("can0", transport.ExactFilters(ids))
//
// Bringing interfaces up and configuring their bitrate is left to the
// operating system (ip link).
package transport
