// Package stream fans decoded telemetry out to TCP clients.
//
// A Server accepts any number of clients and writes one JSON record per
// update to each of them, in the same format as telemetry.JSONLWriter.
// The Server is a telemetry.Sink, so it is attached to the dispatch loop
// like any other output:
//
//	srv := stream.NewServer(stream.ServerConfig{Address: ":7420"})
//	if err := srv.Start(ctx); err != nil {
//		return err
//	}
//	defer srv.Stop()
//	dispatch.Run(ctx, src, d, srv)
//
// Slow clients never stall decoding. Each client has a bounded queue and
// records that do not fit are dropped for that client only.
package stream
