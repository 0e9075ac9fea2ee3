// Package dispatch routes received CAN frames to the FTCAN decoders and
// merges the results into a telemetry snapshot.
//
// Each frame is looked up in a static route table. Simplified broadcast
// identifiers are decoded on the spot; segmented identifiers go through a
// per-route reassembler and, once a payload is complete, the item decoder.
// Frames matching no route are ignored.
//
// A Dispatcher is not safe for concurrent use. The default model is one
// goroutine calling Run, which blocks on the frame source and processes
// each frame to completion before receiving the next:
//
//	d, err := dispatch.New(dispatch.DefaultRoutes(),
//	    dispatch.WithLogger(capture),
//	    dispatch.WithSessionID(log.NewSessionID()),
//	)
//	err = dispatch.Run(ctx, src, d, telemetry.NewLineWriter(os.Stdout))
//
// Readers on other goroutines observe the snapshot through a
// telemetry.Shared sink. Stats may be read from any goroutine.
package dispatch
