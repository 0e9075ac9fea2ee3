package telemetry

import (
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/wire"
)

// Update is the result of decoding one frame.
type Update struct {
	At time.Time
	ID can.ID

	// Packet is set for simplified broadcast frames.
	Packet wire.Packet

	// Items is set when a segmented payload was emitted.
	Items []wire.Item

	// Snapshot is the merged state after this update. It is only valid
	// for the duration of Consume; sinks that keep it must Clone it.
	Snapshot *Snapshot
}

// Empty reports whether the update carries no decoded values.
func (u Update) Empty() bool {
	return u.Packet == nil && len(u.Items) == 0
}

// Sink consumes decoded updates.
type Sink interface {
	Consume(u Update) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(u Update) error

// Consume calls f(u).
func (f SinkFunc) Consume(u Update) error {
	return f(u)
}
