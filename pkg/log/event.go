package log

import (
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
	"github.com/ftcan-dash/ftcan-go/pkg/wire"
)

// Event is one captured decoder event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp is the frame receive time (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the capture session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Interface is the bus the frame arrived on, e.g. "can0".
	Interface string `cbor:"3,keyasint,omitempty"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// CANID is the frame's arbitration identifier.
	CANID uint32 `cbor:"6,keyasint"`

	// Type-specific payload (one of these will be set).
	Frame    *FrameEvent    `cbor:"10,keyasint,omitempty"` // Bus layer
	Packet   *PacketEvent   `cbor:"11,keyasint,omitempty"` // Simplified broadcast
	Items    *ItemsEvent    `cbor:"12,keyasint,omitempty"` // Segmented payload
	Assembly *AssemblyEvent `cbor:"13,keyasint,omitempty"` // Reassembly state
	Drop     *DropEvent     `cbor:"14,keyasint,omitempty"` // Dropped frame
}

// Layer indicates which stage captured the event.
type Layer uint8

const (
	// LayerBus is the raw frame layer.
	LayerBus Layer = 0
	// LayerSegment is the reassembly layer.
	LayerSegment Layer = 1
	// LayerTelemetry is the decoded value layer.
	LayerTelemetry Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerBus:
		return "BUS"
	case LayerSegment:
		return "SEGMENT"
	case LayerTelemetry:
		return "TELEMETRY"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a raw frame.
	CategoryFrame Category = 0
	// CategoryPacket indicates a decoded simplified packet.
	CategoryPacket Category = 1
	// CategoryItems indicates items decoded from a segmented payload.
	CategoryItems Category = 2
	// CategoryAssembly indicates a reassembly state change.
	CategoryAssembly Category = 3
	// CategoryDrop indicates a dropped frame.
	CategoryDrop Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryPacket:
		return "PACKET"
	case CategoryItems:
		return "ITEMS"
	case CategoryAssembly:
		return "ASSEMBLY"
	case CategoryDrop:
		return "DROP"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures a raw CAN frame.
type FrameEvent struct {
	Data     []byte `cbor:"1,keyasint"`
	Extended bool   `cbor:"2,keyasint,omitempty"`
}

// NewFrameEvent captures f.
func NewFrameEvent(f can.Frame) *FrameEvent {
	return &FrameEvent{
		Data:     append([]byte(nil), f.Data...),
		Extended: f.Extended,
	}
}

// CANFrame rebuilds the captured frame with the event's identifier.
func (e Event) CANFrame() (can.Frame, bool) {
	if e.Frame == nil {
		return can.Frame{}, false
	}
	return can.Frame{ID: e.CANID, Data: append([]byte(nil), e.Frame.Data...), Extended: e.Frame.Extended}, true
}

// PacketEvent captures a decoded simplified broadcast packet.
type PacketEvent struct {
	// Kind is the packet variant name, e.g. "lambda_rpm".
	Kind string `cbor:"1,keyasint" json:"kind"`

	// Values maps field names to decoded values.
	Values map[string]float64 `cbor:"2,keyasint" json:"values"`
}

// NewPacketEvent flattens p into named values.
func NewPacketEvent(p wire.Packet) *PacketEvent {
	ev := &PacketEvent{Kind: p.Name(), Values: make(map[string]float64, 4)}
	switch p := p.(type) {
	case wire.EngineTemps:
		ev.Values["tps"] = p.TPS
		ev.Values["map"] = p.MAP
		ev.Values["air_temp"] = p.AirTemp
		ev.Values["engine_temp"] = p.EngineTemp
	case wire.PressuresGear:
		ev.Values["oil_pressure"] = p.OilPressure
		ev.Values["fuel_pressure"] = p.FuelPressure
		ev.Values["water_pressure"] = p.WaterPressure
		ev.Values["gear"] = float64(p.Gear)
	case wire.LambdaRPM:
		ev.Values["lambda"] = p.Lambda
		ev.Values["rpm"] = float64(p.RPM)
		ev.Values["oil_temp"] = p.OilTemp
		ev.Values["pit_limit"] = boolValue(p.PitLimit)
	case wire.WheelSpeeds:
		ev.Values["wheel_speed_fr"] = p.FR
		ev.Values["wheel_speed_fl"] = p.FL
		ev.Values["wheel_speed_rr"] = p.RR
		ev.Values["wheel_speed_rl"] = p.RL
	}
	return ev
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ItemsEvent captures the items decoded from one emitted payload.
type ItemsEvent struct {
	// Format is the record format name.
	Format string `cbor:"1,keyasint" json:"format"`

	// PayloadLen is the emitted payload size in bytes.
	PayloadLen int `cbor:"2,keyasint" json:"payload_len"`

	Items []ItemRecord `cbor:"3,keyasint" json:"items"`
}

// ItemRecord is one decoded item.
type ItemRecord struct {
	Code  uint16  `cbor:"1,keyasint" json:"code"`
	Raw   int32   `cbor:"2,keyasint" json:"raw"`
	Value float64 `cbor:"3,keyasint" json:"value"`
	Name  string  `cbor:"4,keyasint,omitempty" json:"name,omitempty"`
	Unit  string  `cbor:"5,keyasint,omitempty" json:"unit,omitempty"`
	Known bool    `cbor:"6,keyasint,omitempty" json:"known,omitempty"`
}

// NewItemsEvent captures items decoded from a payload of payloadLen bytes.
func NewItemsEvent(format wire.RecordFormat, payloadLen int, items []wire.Item) *ItemsEvent {
	ev := &ItemsEvent{
		Format:     format.String(),
		PayloadLen: payloadLen,
		Items:      make([]ItemRecord, 0, len(items)),
	}
	for _, it := range items {
		ev.Items = append(ev.Items, ItemRecord{
			Code:  it.Code,
			Raw:   it.Raw,
			Value: it.Value,
			Name:  it.Name,
			Unit:  it.Unit,
			Known: it.Known,
		})
	}
	return ev
}

// AssemblyEvent captures a reassembly state change.
type AssemblyEvent struct {
	// Outcome is the reassembler outcome name, e.g. "started", "completed".
	Outcome string `cbor:"1,keyasint" json:"outcome"`

	// Sequence is the frame's sequence index.
	Sequence uint8 `cbor:"2,keyasint" json:"seq"`

	// Buffered is the number of bytes held after the frame.
	Buffered int `cbor:"3,keyasint" json:"buffered"`

	// Emitted is the number of payload bytes released by the frame.
	Emitted int `cbor:"4,keyasint,omitempty" json:"emitted,omitempty"`

	// Replaced reports that a partial assembly was discarded.
	Replaced bool `cbor:"5,keyasint,omitempty" json:"replaced,omitempty"`
}

// DropEvent captures a frame that produced no telemetry.
type DropEvent struct {
	Reason DropReason `cbor:"1,keyasint"`

	// Detail adds context, e.g. the received length.
	Detail string `cbor:"2,keyasint,omitempty"`
}

// DropReason says why a frame was dropped.
type DropReason uint8

const (
	// DropMalformed indicates a payload shorter than its layout.
	DropMalformed DropReason = 0
	// DropUnknownID indicates an identifier outside every route.
	DropUnknownID DropReason = 1
	// DropOrphan indicates a continuation with no assembly in progress.
	DropOrphan DropReason = 2
	// DropOutOfSequence indicates a strict sequencing violation.
	DropOutOfSequence DropReason = 3
	// DropStale indicates a continuation for an expired assembly.
	DropStale DropReason = 4
)

// String returns the drop reason name.
func (r DropReason) String() string {
	switch r {
	case DropMalformed:
		return "MALFORMED"
	case DropUnknownID:
		return "UNKNOWN_ID"
	case DropOrphan:
		return "ORPHAN"
	case DropOutOfSequence:
		return "OUT_OF_SEQUENCE"
	case DropStale:
		return "STALE"
	default:
		return "UNKNOWN"
	}
}
