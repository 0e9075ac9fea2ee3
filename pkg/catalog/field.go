package catalog

// Field names a typed telemetry snapshot field a channel is bound to.
type Field uint8

// Snapshot field bindings.
const (
	FieldNone Field = iota
	FieldTPS
	FieldMAP
	FieldAirTemp
	FieldEngineTemp
	FieldOilPressure
	FieldFuelPressure
	FieldWaterPressure
	FieldGear
	FieldLambda
	FieldRPM
	FieldOilTemp
	FieldBatteryVoltage
	FieldWheelSpeedFL
	FieldWheelSpeedFR
	FieldWheelSpeedRL
	FieldWheelSpeedRR
)

var fieldNames = map[Field]string{
	FieldNone:           "None",
	FieldTPS:            "TPS",
	FieldMAP:            "MAP",
	FieldAirTemp:        "AirTemp",
	FieldEngineTemp:     "EngineTemp",
	FieldOilPressure:    "OilPressure",
	FieldFuelPressure:   "FuelPressure",
	FieldWaterPressure:  "WaterPressure",
	FieldGear:           "Gear",
	FieldLambda:         "Lambda",
	FieldRPM:            "RPM",
	FieldOilTemp:        "OilTemp",
	FieldBatteryVoltage: "BatteryVoltage",
	FieldWheelSpeedFL:   "WheelSpeedFL",
	FieldWheelSpeedFR:   "WheelSpeedFR",
	FieldWheelSpeedRL:   "WheelSpeedRL",
	FieldWheelSpeedRR:   "WheelSpeedRR",
}

// String returns the field name used in dataids.yaml.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "Unknown"
}

// ParseField resolves a field name from dataids.yaml. An empty name is FieldNone.
func ParseField(name string) (Field, bool) {
	if name == "" {
		return FieldNone, true
	}
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return FieldNone, false
}
