// Package log captures a machine-readable trace of what the decoder saw and did.
//
// This is separate from operational logging (slog). A capture records every
// raw CAN frame, every reassembly state change, every decoded packet or item
// and every dropped frame, so a session can be inspected or replayed later.
//
// # Basic Usage
//
// The dispatcher accepts a Logger:
//
//	// For development: log to console via slog
//	d := dispatch.New(routes, dispatch.WithLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For field captures: write to a binary file
//	fl, _ := log.NewFileLogger("/var/log/ftcan/session.ftlog")
//	d := dispatch.New(routes, dispatch.WithLogger(fl))
//
//	// Both: use MultiLogger
//	d := dispatch.New(routes, dispatch.WithLogger(log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()), fl)))
//
// # Event Types
//
// Events are captured at three layers:
//   - Bus: raw frames as received (FrameEvent)
//   - Segment: reassembly progress (AssemblyEvent)
//   - Telemetry: decoded values (PacketEvent, ItemsEvent)
//
// Dropped frames at any layer carry a DropEvent with the reason.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .ftlog
// extension. The ftcan-log tool views, filters, exports and summarizes them.
package log
