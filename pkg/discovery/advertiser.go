package discovery

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Advertiser announces a telemetry stream.
type Advertiser interface {
	// Advertise starts announcing the stream, replacing a previous
	// announcement.
	Advertise(ctx context.Context, info *StreamInfo) error

	// Update replaces the TXT records of the running announcement.
	Update(info *StreamInfo) error

	// Stop withdraws the announcement.
	Stop() error
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		TTL: 120 * time.Second,
	}
}

// mdnsServer is the part of *zeroconf.Server the advertiser uses.
type mdnsServer interface {
	SetText(txt []string)
	Shutdown()
}

type registerFunc func(instance string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (mdnsServer, error)

func zeroconfRegister(instance string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (mdnsServer, error) {
	server, err := zeroconf.Register(instance, ServiceType, Domain, port, txt, ifaces, opts...)
	if err != nil {
		return nil, err
	}
	return server, nil
}

// MDNSAdvertiser implements Advertiser using zeroconf.
type MDNSAdvertiser struct {
	config   AdvertiserConfig
	register registerFunc

	mu     sync.Mutex
	server mdnsServer
	info   StreamInfo
}

var _ Advertiser = (*MDNSAdvertiser)(nil)

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	return &MDNSAdvertiser{
		config:   config,
		register: zeroconfRegister,
	}
}

// getInterfaces returns the network interfaces to use for advertising.
// Returns nil to use all interfaces.
func (a *MDNSAdvertiser) getInterfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}

	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise registers the stream instance.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *StreamInfo) error {
	if err := ValidateInstanceName(info.InstanceName); err != nil {
		return err
	}
	if info.Port == 0 {
		return fmt.Errorf("%w: port", ErrMissingRequired)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := a.register(
		info.InstanceName,
		int(info.Port),
		TXTRecordsToStrings(EncodeStreamTXT(info)),
		a.getInterfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register stream service: %w", err)
	}

	a.server = server
	a.info = *info
	return nil
}

// Update replaces the TXT records. The instance name and port cannot change
// without a new Advertise.
func (a *MDNSAdvertiser) Update(info *StreamInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.SetText(TXTRecordsToStrings(EncodeStreamTXT(info)))

	name, port := a.info.InstanceName, a.info.Port
	a.info = *info
	a.info.InstanceName, a.info.Port = name, port
	return nil
}

// Stop withdraws the announcement. Stopping twice is not an error.
func (a *MDNSAdvertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	return nil
}

// Advertising returns the announced stream, if any.
func (a *MDNSAdvertiser) Advertising() (StreamInfo, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info, a.server != nil
}
