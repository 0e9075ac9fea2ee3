package telemetry

import (
	"maps"
	"math"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/catalog"
	"github.com/ftcan-dash/ftcan-go/pkg/wire"
)

// Channel is the latest value of one DataID.
type Channel struct {
	Name  string    `json:"name"`
	Unit  string    `json:"unit,omitempty"`
	Raw   int32     `json:"raw"`
	Value float64   `json:"value"`
	Known bool      `json:"known"`
	At    time.Time `json:"at"`
}

// Snapshot is the merged telemetry state. Nil fields have never been received.
type Snapshot struct {
	TPS            *float64 `json:"tps,omitempty"`
	MAP            *float64 `json:"map,omitempty"`
	AirTemp        *float64 `json:"air_temp,omitempty"`
	EngineTemp     *float64 `json:"engine_temp,omitempty"`
	OilPressure    *float64 `json:"oil_pressure,omitempty"`
	FuelPressure   *float64 `json:"fuel_pressure,omitempty"`
	WaterPressure  *float64 `json:"water_pressure,omitempty"`
	Gear           *int     `json:"gear,omitempty"`
	Lambda         *float64 `json:"lambda,omitempty"`
	RPM            *float64 `json:"rpm,omitempty"`
	OilTemp        *float64 `json:"oil_temp,omitempty"`
	PitLimit       *bool    `json:"pit_limit,omitempty"`
	BatteryVoltage *float64 `json:"battery_voltage,omitempty"`
	WheelSpeedFL   *float64 `json:"wheel_speed_fl,omitempty"`
	WheelSpeedFR   *float64 `json:"wheel_speed_fr,omitempty"`
	WheelSpeedRL   *float64 `json:"wheel_speed_rl,omitempty"`
	WheelSpeedRR   *float64 `json:"wheel_speed_rr,omitempty"`

	// Channels holds every decoded item by DataID.
	Channels map[uint16]Channel `json:"channels,omitempty"`

	// Updated is the time of the last applied value.
	Updated time.Time `json:"updated"`
}

func ptr[T any](v T) *T {
	return &v
}

// ApplyPacket merges a simplified broadcast packet.
func (s *Snapshot) ApplyPacket(p wire.Packet, at time.Time) {
	switch p := p.(type) {
	case wire.EngineTemps:
		s.TPS = ptr(p.TPS)
		s.MAP = ptr(p.MAP)
		s.AirTemp = ptr(p.AirTemp)
		s.EngineTemp = ptr(p.EngineTemp)
	case wire.PressuresGear:
		s.OilPressure = ptr(p.OilPressure)
		s.FuelPressure = ptr(p.FuelPressure)
		s.WaterPressure = ptr(p.WaterPressure)
		s.Gear = ptr(p.Gear)
	case wire.LambdaRPM:
		s.Lambda = ptr(p.Lambda)
		s.RPM = ptr(float64(p.RPM))
		s.OilTemp = ptr(p.OilTemp)
		s.PitLimit = ptr(p.PitLimit)
	case wire.WheelSpeeds:
		s.WheelSpeedFR = ptr(p.FR)
		s.WheelSpeedFL = ptr(p.FL)
		s.WheelSpeedRR = ptr(p.RR)
		s.WheelSpeedRL = ptr(p.RL)
	default:
		return
	}
	s.Updated = at
}

// ApplyItem merges a decoded item into Channels and into its bound field.
func (s *Snapshot) ApplyItem(it wire.Item, at time.Time) {
	if s.Channels == nil {
		s.Channels = make(map[uint16]Channel)
	}
	s.Channels[it.Code] = Channel{
		Name:  it.Name,
		Unit:  it.Unit,
		Raw:   it.Raw,
		Value: it.Value,
		Known: it.Known,
		At:    at,
	}
	s.Updated = at

	v := it.Value
	switch it.Field {
	case catalog.FieldTPS:
		s.TPS = &v
	case catalog.FieldMAP:
		s.MAP = &v
	case catalog.FieldAirTemp:
		s.AirTemp = &v
	case catalog.FieldEngineTemp:
		s.EngineTemp = &v
	case catalog.FieldOilPressure:
		s.OilPressure = &v
	case catalog.FieldFuelPressure:
		s.FuelPressure = &v
	case catalog.FieldWaterPressure:
		s.WaterPressure = &v
	case catalog.FieldGear:
		s.Gear = ptr(int(it.Raw))
	case catalog.FieldLambda:
		s.Lambda = &v
	case catalog.FieldRPM:
		s.RPM = &v
	case catalog.FieldOilTemp:
		s.OilTemp = &v
	case catalog.FieldBatteryVoltage:
		s.BatteryVoltage = &v
	case catalog.FieldWheelSpeedFL:
		s.WheelSpeedFL = &v
	case catalog.FieldWheelSpeedFR:
		s.WheelSpeedFR = &v
	case catalog.FieldWheelSpeedRL:
		s.WheelSpeedRL = &v
	case catalog.FieldWheelSpeedRR:
		s.WheelSpeedRR = &v
	}
}

// GearLabel returns the display label of the current gear.
func (s *Snapshot) GearLabel() (string, bool) {
	if s.Gear == nil {
		return "", false
	}
	return wire.GearLabel(*s.Gear), true
}

// VehicleSpeed estimates vehicle speed as the mean of the known wheel
// speeds, rounded to 0.1 km/h.
func (s *Snapshot) VehicleSpeed() (float64, bool) {
	var sum float64
	n := 0
	for _, w := range []*float64{s.WheelSpeedFR, s.WheelSpeedFL, s.WheelSpeedRR, s.WheelSpeedRL} {
		if w != nil {
			sum += *w
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum/float64(n)*10) / 10, true
}

// Channel returns the latest value of a DataID.
func (s *Snapshot) Channel(code uint16) (Channel, bool) {
	c, ok := s.Channels[code]
	return c, ok
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() Snapshot {
	c := Snapshot{
		TPS:            clonePtr(s.TPS),
		MAP:            clonePtr(s.MAP),
		AirTemp:        clonePtr(s.AirTemp),
		EngineTemp:     clonePtr(s.EngineTemp),
		OilPressure:    clonePtr(s.OilPressure),
		FuelPressure:   clonePtr(s.FuelPressure),
		WaterPressure:  clonePtr(s.WaterPressure),
		Gear:           clonePtr(s.Gear),
		Lambda:         clonePtr(s.Lambda),
		RPM:            clonePtr(s.RPM),
		OilTemp:        clonePtr(s.OilTemp),
		PitLimit:       clonePtr(s.PitLimit),
		BatteryVoltage: clonePtr(s.BatteryVoltage),
		WheelSpeedFL:   clonePtr(s.WheelSpeedFL),
		WheelSpeedFR:   clonePtr(s.WheelSpeedFR),
		WheelSpeedRL:   clonePtr(s.WheelSpeedRL),
		WheelSpeedRR:   clonePtr(s.WheelSpeedRR),
		Updated:        s.Updated,
	}
	if s.Channels != nil {
		c.Channels = maps.Clone(s.Channels)
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
