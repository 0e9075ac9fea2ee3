package dispatch

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/segment"
	"github.com/ftcan-dash/ftcan-go/pkg/wire"
)

// Route errors.
var (
	// ErrDuplicateRoute indicates two routes for one identifier.
	ErrDuplicateRoute = errors.New("dispatch: duplicate route")

	// ErrInvalidRoute indicates a route that cannot be served.
	ErrInvalidRoute = errors.New("dispatch: invalid route")
)

// Kind selects the decode path of a route.
type Kind uint8

const (
	// KindSimplified decodes single-frame broadcast packets.
	KindSimplified Kind = iota

	// KindSegmented reassembles multi-frame payloads of item records.
	KindSegmented
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSimplified:
		return "simplified"
	case KindSegmented:
		return "segmented"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Route binds an identifier to a decode path.
type Route struct {
	ID   can.ID
	Kind Kind

	// Segment configures the reassembler of a segmented route.
	Segment segment.Config

	// Format is the record encoding of a segmented route's payload.
	Format wire.RecordFormat
}

// Routes is a static route table.
type Routes []Route

// Streaming realtime identifiers carrying 4-byte big-endian records.
var streamingIDs = []can.ID{0x140810FF, 0x140811FF, 0x140812FF, 0x140813FF}

// Length-prefixed identifiers carrying 5-byte little-endian records.
var lengthPrefixedIDs = []can.ID{0x140818FF, 0x140819FF, 0x14081AFF, 0x14081BFF}

// SimplifiedRoutes returns a route per simplified broadcast identifier.
func SimplifiedRoutes() Routes {
	var rs Routes
	for _, id := range wire.SimplifiedIDs() {
		rs = append(rs, Route{ID: id, Kind: KindSimplified})
	}
	return rs
}

// StreamingRoutes returns routes for the streaming realtime family.
func StreamingRoutes(seq segment.Sequencing) Routes {
	var rs Routes
	for _, id := range streamingIDs {
		rs = append(rs, Route{
			ID:   id,
			Kind: KindSegmented,
			Segment: segment.Config{
				Policy:      segment.Streaming,
				Sequencing:  seq,
				RecordWidth: wire.Record4BE.Width(),
			},
			Format: wire.Record4BE,
		})
	}
	return rs
}

// LengthPrefixedRoutes returns routes for the length-prefixed family.
func LengthPrefixedRoutes(seq segment.Sequencing) Routes {
	var rs Routes
	for _, id := range lengthPrefixedIDs {
		rs = append(rs, Route{
			ID:   id,
			Kind: KindSegmented,
			Segment: segment.Config{
				Policy:     segment.LengthPrefixed,
				Sequencing: seq,
			},
			Format: wire.Record5LE,
		})
	}
	return rs
}

// DefaultRoutes returns every known family with tolerant sequencing.
func DefaultRoutes() Routes {
	rs := SimplifiedRoutes()
	rs = append(rs, StreamingRoutes(segment.Tolerant)...)
	rs = append(rs, LengthPrefixedRoutes(segment.Tolerant)...)
	return rs
}

// Validate checks for duplicate identifiers and invalid reassembler settings.
func (rs Routes) Validate() error {
	seen := make(map[can.ID]bool, len(rs))
	for _, r := range rs {
		if seen[r.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateRoute, r.ID)
		}
		seen[r.ID] = true

		switch r.Kind {
		case KindSimplified:
			if !wire.IsSimplified(r.ID) {
				return fmt.Errorf("%w: %s has no simplified layout", ErrInvalidRoute, r.ID)
			}
		case KindSegmented:
			if err := r.Segment.Validate(); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidRoute, r.ID, err)
			}
			if r.Format != wire.Record5LE && r.Format != wire.Record4BE {
				return fmt.Errorf("%w: %s: record format %s", ErrInvalidRoute, r.ID, r.Format)
			}
			w := r.Segment.RecordWidth
			if r.Segment.Policy == segment.Streaming && w != 0 && w != r.Format.Width() {
				return fmt.Errorf("%w: %s: record width %d does not match %s", ErrInvalidRoute, r.ID, w, r.Format)
			}
		default:
			return fmt.Errorf("%w: %s: %s", ErrInvalidRoute, r.ID, r.Kind)
		}
	}
	return nil
}

// IDs returns the routed identifiers in ascending order, e.g. for kernel filters.
func (rs Routes) IDs() []uint32 {
	ids := make([]uint32, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, uint32(r.ID))
	}
	slices.Sort(ids)
	return ids
}
