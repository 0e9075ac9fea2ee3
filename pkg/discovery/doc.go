// Package discovery announces and finds ftcan telemetry streams over
// mDNS/DNS-SD.
//
// A monitor serving the TCP stream registers one instance of
// _ftcan._tcp in the local domain. The instance name is user-chosen
// (default "ftcan-go") and the TXT record describes the stream:
//
//	v     stream format version, "major.minor"
//	src   frame source type (socketcan, slcan, replay)
//	bus   interface or device the frames come from
//	fam   decoded families, comma-separated (simplified, streaming, length_prefixed)
//	snap  "1" when records carry the merged snapshot
//
// Browsers skip instances whose version has a different major number.
package discovery
