package log

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger at Debug level.
// Drops other than unknown identifiers are logged at Warn level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("can_id", fmt.Sprintf("0x%08X", event.CANID)),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Interface != "" {
		attrs = append(attrs, slog.String("iface", event.Interface))
	}

	level := slog.LevelDebug
	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("dlc", len(event.Frame.Data)),
			slog.String("data", fmt.Sprintf("% X", event.Frame.Data)),
		)
	case event.Packet != nil:
		attrs = append(attrs, slog.String("packet", event.Packet.Kind))
		for name, v := range event.Packet.Values {
			attrs = append(attrs, slog.Float64(name, v))
		}
	case event.Items != nil:
		attrs = append(attrs,
			slog.String("format", event.Items.Format),
			slog.Int("payload_len", event.Items.PayloadLen),
			slog.Int("items", len(event.Items.Items)),
		)
	case event.Assembly != nil:
		attrs = append(attrs,
			slog.String("outcome", event.Assembly.Outcome),
			slog.Int("seq", int(event.Assembly.Sequence)),
			slog.Int("buffered", event.Assembly.Buffered),
		)
		if event.Assembly.Emitted > 0 {
			attrs = append(attrs, slog.Int("emitted", event.Assembly.Emitted))
		}
		if event.Assembly.Replaced {
			attrs = append(attrs, slog.Bool("replaced", true))
		}
	case event.Drop != nil:
		if event.Drop.Reason != DropUnknownID {
			level = slog.LevelWarn
		}
		attrs = append(attrs, slog.String("reason", event.Drop.Reason.String()))
		if event.Drop.Detail != "" {
			attrs = append(attrs, slog.String("detail", event.Drop.Detail))
		}
	}

	a.logger.LogAttrs(context.Background(), level, "capture", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
