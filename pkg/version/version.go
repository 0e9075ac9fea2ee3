// Package version carries the telemetry stream format version and the
// build version of the ftcan tools.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Stream is the version of the JSON record format served by the stream
// server and advertised in its mDNS TXT record.
const Stream = "1.0"

// Build is the tool version, set at link time:
//
//	go build -ldflags "-X github.com/ftcan-dash/ftcan-go/pkg/version.Build=v0.3.0"
var Build = "dev"

// Version is a parsed "major.minor" format version.
type Version struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return Version{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
// Minor versions only add fields.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}

// StreamCompatible reports whether a stream advertising s can be read by
// this build.
func StreamCompatible(s string) bool {
	peer, err := Parse(s)
	if err != nil {
		return false
	}
	current, _ := Parse(Stream)
	return current.Compatible(peer)
}

// Banner returns the one-line version string printed by -version.
func Banner(tool string) string {
	return fmt.Sprintf("%s %s (stream format %s)", tool, Build, Stream)
}
