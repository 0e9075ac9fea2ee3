package discovery

import (
	"errors"
	"time"
)

// Service constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of a telemetry stream.
	ServiceType = "_ftcan._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// BrowseTimeout is the default duration of a one-shot browse.
	BrowseTimeout = 3 * time.Second
)

// TXT record keys.
const (
	TXTKeyVersion  = "v"
	TXTKeySource   = "src"
	TXTKeyBus      = "bus"
	TXTKeyFamilies = "fam"
	TXTKeySnapshot = "snap"
)

// Errors.
var (
	ErrMissingRequired     = errors.New("discovery: missing required TXT record")
	ErrInvalidTXTRecord    = errors.New("discovery: invalid TXT record")
	ErrInstanceNameTooLong = errors.New("discovery: invalid instance name")
	ErrNotFound            = errors.New("discovery: not found")
	ErrNotAdvertising      = errors.New("discovery: not advertising")
)

// StreamInfo describes an advertised telemetry stream.
type StreamInfo struct {
	// InstanceName is the DNS-SD instance label.
	InstanceName string

	// Port is the TCP port of the stream server.
	Port uint16

	// Version is the stream format version.
	Version string

	// Source is the frame source type.
	Source string

	// Bus is the interface, serial device or replay file name.
	Bus string

	// Families lists the decoded identifier families.
	Families []string

	// Snapshot is set when records carry the merged snapshot.
	Snapshot bool
}

// StreamService is a stream found on the network.
type StreamService struct {
	StreamInfo

	// Host is the advertised host name.
	Host string

	// Addresses holds the IPv4 and IPv6 addresses seen on any interface.
	Addresses []string
}
