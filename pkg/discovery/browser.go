package discovery

import (
	"context"
	"net"
	"sort"
	"time"

	"github.com/enbility/zeroconf/v3"

	"github.com/ftcan-dash/ftcan-go/pkg/version"
)

// BrowserConfig configures browser behavior.
type BrowserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// IncludeIncompatible keeps streams with a different major version.
	IncludeIncompatible bool
}

type browseFunc func(ctx context.Context, entries, removed chan *zeroconf.ServiceEntry) error

// MDNSBrowser finds telemetry streams using zeroconf.
type MDNSBrowser struct {
	config BrowserConfig
	browse browseFunc
}

// NewMDNSBrowser creates a new mDNS browser.
func NewMDNSBrowser(config BrowserConfig) *MDNSBrowser {
	b := &MDNSBrowser{config: config}
	b.browse = func(ctx context.Context, entries, removed chan *zeroconf.ServiceEntry) error {
		return zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, b.browserOptions()...)
	}
	return b
}

// Browse searches for streams until ctx is done. Services are aggregated by
// instance name; addresses from multiple interfaces are combined into the
// first emitted entry. The returned channel is closed when ctx is done.
func (b *MDNSBrowser) Browse(ctx context.Context) (<-chan *StreamService, error) {
	out := make(chan *StreamService)

	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	go func() {
		defer close(out)

		services := make(map[string]*StreamService)

		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := b.entryToStream(entry)
				if svc == nil {
					continue
				}

				existing, found := services[svc.InstanceName]
				if found {
					existing.Addresses = mergeAddresses(existing.Addresses, svc.Addresses)
					continue
				}
				services[svc.InstanceName] = svc
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}

			case entry, ok := <-removed:
				if !ok {
					removed = nil
					continue
				}
				if existing, found := services[entry.Instance]; found {
					existing.Addresses = removeAddresses(existing.Addresses, entry)
					if len(existing.Addresses) == 0 {
						delete(services, entry.Instance)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = b.browse(ctx, entries, removed)
	}()

	return out, nil
}

// FindAll browses for timeout and returns every stream found, sorted by
// instance name.
func (b *MDNSBrowser) FindAll(ctx context.Context, timeout time.Duration) ([]*StreamService, error) {
	if timeout <= 0 {
		timeout = BrowseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	var found []*StreamService
	for svc := range results {
		found = append(found, svc)
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].InstanceName < found[j].InstanceName
	})
	return found, nil
}

// Find returns the first stream with the given instance name.
func (b *MDNSBrowser) Find(ctx context.Context, name string) (*StreamService, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results, err := b.Browse(ctx)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case svc, ok := <-results:
			if !ok {
				return nil, ErrNotFound
			}
			if svc.InstanceName == name {
				return svc, nil
			}
		case <-ctx.Done():
			return nil, ErrNotFound
		}
	}
}

// browserOptions returns zeroconf client options based on config.
func (b *MDNSBrowser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption

	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		}
	}
	return opts
}

// entryToStream converts a zeroconf entry. It returns nil for entries with
// unusable or incompatible TXT records.
func (b *MDNSBrowser) entryToStream(entry *zeroconf.ServiceEntry) *StreamService {
	info, err := DecodeStreamTXT(StringsToTXTRecords(entry.Text))
	if err != nil {
		return nil
	}
	if !b.config.IncludeIncompatible && !version.StreamCompatible(info.Version) {
		return nil
	}

	info.InstanceName = entry.Instance
	info.Port = uint16(entry.Port)

	return &StreamService{
		StreamInfo: *info,
		Host:       entry.HostName,
		Addresses:  entryAddresses(entry),
	}
}

func entryAddresses(entry *zeroconf.ServiceEntry) []string {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return addrs
}

// mergeAddresses adds new addresses to existing list, avoiding duplicates.
func mergeAddresses(existing, new []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}

	for _, addr := range new {
		if !seen[addr] {
			existing = append(existing, addr)
			seen[addr] = true
		}
	}
	return existing
}

// removeAddresses removes the addresses of a zeroconf entry from the list.
func removeAddresses(addresses []string, entry *zeroconf.ServiceEntry) []string {
	toRemove := make(map[string]bool)
	for _, addr := range entryAddresses(entry) {
		toRemove[addr] = true
	}

	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
