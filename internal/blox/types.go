package blox

import "github.com/nerrad567/brewlogic-core/internal/cbox"

// Interface tags. Objects answer Implements for these with a view of
// themselves (or of an internal member).
const (
	TempSensorInterface     cbox.Type = 2
	SetpointInterface       cbox.Type = 3
	ProcessValueInterface   cbox.Type = 4
	ActuatorAnalogInterface cbox.Type = 5
)

// Block type tags.
const (
	SysInfoType            cbox.Type = 256
	TicksType              cbox.Type = 257
	TempSensorMockType     cbox.Type = 258
	SetpointSimpleType     cbox.Type = 259
	SetpointSensorPairType cbox.Type = 260
	ActuatorAnalogMockType cbox.Type = 261
)

// Reserved IDs of the system blocks added at boot.
const (
	SysInfoID cbox.ID = 2
	TicksID   cbox.ID = 3
)

// TempSensor is a temperature reading that can be unavailable.
type TempSensor interface {
	Valid() bool
	Value() float64
}

// Setpoint is a target temperature that can be disabled.
type Setpoint interface {
	Valid() bool
	Setting() float64
}

// ProcessValue is a (setting, value) pair, each with its own validity.
// The telemetry sampler records every object exposing it.
type ProcessValue interface {
	SettingValid() bool
	Setting() float64
	ValueValid() bool
	Value() float64
}

// ActuatorAnalog is an output driven to a setting within limits.
type ActuatorAnalog interface {
	ProcessValue
	SetSetting(v float64)
}

// updateInterval is how often blocks without faster needs ask for an update.
const updateInterval cbox.Ticks = 1000
