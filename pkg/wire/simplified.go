package wire

import (
	"encoding/binary"
	"strconv"

	"github.com/ftcan-dash/ftcan-go/pkg/can"
)

// Simplified broadcast identifiers.
const (
	IDEngineTemps   can.ID = 0x14080600
	IDPressuresGear can.ID = 0x14080601
	IDLambdaRPM     can.ID = 0x14080602
	IDWheelSpeeds   can.ID = 0x14080603
)

// Minimum payload lengths.
const (
	// Layout (a): four signed 16-bit big-endian fields.
	minLenQuad = 8

	// Layout (b): byte, 16-bit big-endian, byte, byte.
	minLenLambdaRPM = 5
)

// Scale factors for simplified fields.
const (
	ScaleTPS         = 0.1
	ScaleMAP         = 0.001
	ScaleTemperature = 0.1
	ScalePressure    = 0.001
	ScaleLambda      = 0.01
	ScaleOilTemp     = 0.1
)

// Packet is a decoded simplified broadcast frame.
// The set of implementations is closed: EngineTemps, PressuresGear,
// LambdaRPM and WheelSpeeds.
type Packet interface {
	// ID returns the identifier the packet was decoded from.
	ID() can.ID

	// Name returns a short snake_case name of the variant.
	Name() string

	packet()
}

// EngineTemps is decoded from 0x14080600.
type EngineTemps struct {
	TPS        float64 `json:"tps"`         // %
	MAP        float64 `json:"map"`         // bar
	AirTemp    float64 `json:"air_temp"`    // °C
	EngineTemp float64 `json:"engine_temp"` // °C
}

// PressuresGear is decoded from 0x14080601.
type PressuresGear struct {
	OilPressure   float64 `json:"oil_pressure"`   // bar
	FuelPressure  float64 `json:"fuel_pressure"`  // bar
	WaterPressure float64 `json:"water_pressure"` // bar
	Gear          int     `json:"gear"`
}

// LambdaRPM is decoded from 0x14080602.
type LambdaRPM struct {
	Lambda   float64 `json:"lambda"`
	RPM      int     `json:"rpm"`
	OilTemp  float64 `json:"oil_temp"` // °C
	PitLimit bool    `json:"pit_limit"`
}

// WheelSpeeds is decoded from 0x14080603. Values are km/h.
type WheelSpeeds struct {
	FR float64 `json:"fr"`
	FL float64 `json:"fl"`
	RR float64 `json:"rr"`
	RL float64 `json:"rl"`
}

func (EngineTemps) ID() can.ID   { return IDEngineTemps }
func (PressuresGear) ID() can.ID { return IDPressuresGear }
func (LambdaRPM) ID() can.ID     { return IDLambdaRPM }
func (WheelSpeeds) ID() can.ID   { return IDWheelSpeeds }

func (EngineTemps) Name() string   { return "engine_temps" }
func (PressuresGear) Name() string { return "pressures_gear" }
func (LambdaRPM) Name() string     { return "lambda_rpm" }
func (WheelSpeeds) Name() string   { return "wheel_speeds" }

func (EngineTemps) packet()   {}
func (PressuresGear) packet() {}
func (LambdaRPM) packet()     {}
func (WheelSpeeds) packet()   {}

// GearLabel returns the display label of the packet's gear.
func (p PressuresGear) GearLabel() string {
	return GearLabel(p.Gear)
}

// IsSimplified reports whether id belongs to the simplified broadcast set.
func IsSimplified(id can.ID) bool {
	return id >= IDEngineTemps && id <= IDWheelSpeeds
}

// SimplifiedIDs returns the simplified broadcast identifiers.
func SimplifiedIDs() []can.ID {
	return []can.ID{IDEngineTemps, IDPressuresGear, IDLambdaRPM, IDWheelSpeeds}
}

// DecodeSimplified decodes a simplified broadcast frame.
// It returns false for identifiers outside the set and for payloads shorter
// than the identifier's layout.
func DecodeSimplified(f can.Frame) (Packet, bool) {
	d := f.Data
	switch can.ID(f.ID) {
	case IDEngineTemps:
		if len(d) < minLenQuad {
			return nil, false
		}
		return EngineTemps{
			TPS:        float64(be16(d, 0)) * ScaleTPS,
			MAP:        float64(be16(d, 2)) * ScaleMAP,
			AirTemp:    float64(be16(d, 4)) * ScaleTemperature,
			EngineTemp: float64(be16(d, 6)) * ScaleTemperature,
		}, true

	case IDPressuresGear:
		if len(d) < minLenQuad {
			return nil, false
		}
		return PressuresGear{
			OilPressure:   float64(be16(d, 0)) * ScalePressure,
			FuelPressure:  float64(be16(d, 2)) * ScalePressure,
			WaterPressure: float64(be16(d, 4)) * ScalePressure,
			Gear:          int(be16(d, 6)),
		}, true

	case IDLambdaRPM:
		if len(d) < minLenLambdaRPM {
			return nil, false
		}
		return LambdaRPM{
			Lambda:   float64(d[0]) * ScaleLambda,
			RPM:      int(binary.BigEndian.Uint16(d[1:3])),
			OilTemp:  float64(d[3]) * ScaleOilTemp,
			PitLimit: d[4] != 0,
		}, true

	case IDWheelSpeeds:
		if len(d) < minLenQuad {
			return nil, false
		}
		return WheelSpeeds{
			FR: float64(be16(d, 0)),
			FL: float64(be16(d, 2)),
			RR: float64(be16(d, 4)),
			RL: float64(be16(d, 6)),
		}, true
	}
	return nil, false
}

// be16 reads a signed 16-bit big-endian field.
func be16(d []byte, off int) int16 {
	return int16(binary.BigEndian.Uint16(d[off : off+2]))
}

var gearLabels = map[int]string{
	-2: "P",
	-1: "R",
	0:  "N",
	1:  "1",
	2:  "2",
	3:  "3",
	4:  "4",
	5:  "5",
}

// GearLabel maps a raw gear value to its display label.
// Unmapped values are shown as their decimal form.
func GearLabel(raw int) string {
	if label, ok := gearLabels[raw]; ok {
		return label
	}
	return strconv.Itoa(raw)
}
