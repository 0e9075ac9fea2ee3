// Package catalog holds the static DataID table used to decode segmented
// FTCAN payloads.
//
// Every value record inside a reassembled payload starts with a channel code
// (DataID). The catalog maps that code to a display name, a unit, a scale
// factor and a signedness flag:
//
//	d, ok := catalog.Lookup(catalog.CodeRPM)
//	if !ok {
//	    d = catalog.Fallback(code)
//	}
//	value := float64(raw) * d.Scale
//
// Codes absent from the table are not errors. Fallback returns a descriptor
// with scale 1.0, unsigned interpretation and the hex code as name.
//
// Descriptors may carry a Field binding naming the typed snapshot field the
// channel also feeds (RPM, wheel speeds, temperatures).
//
// The table itself is generated from dataids.yaml by ftcan-catgen.
package catalog

//go:generate go run ../../cmd/ftcan-catgen -input dataids.yaml -output catalog_gen.go
