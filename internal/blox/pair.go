package blox

import (
	"io"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// SetpointSensorPairSettings is the persisted payload of a pair.
type SetpointSensorPairSettings struct {
	SensorID   cbox.ID `cbor:"1,keyasint,omitempty"`
	SetpointID cbox.ID `cbor:"2,keyasint,omitempty"`
}

// SetpointSensorPairState is the transported payload of a pair. Value and
// Setting are only meaningful when the matching validity flag is set.
type SetpointSensorPairState struct {
	SensorID      cbox.ID `cbor:"1,keyasint,omitempty"`
	SetpointID    cbox.ID `cbor:"2,keyasint,omitempty"`
	SensorValid   bool    `cbor:"3,keyasint,omitempty"`
	SetpointValid bool    `cbor:"4,keyasint,omitempty"`
	Value         float64 `cbor:"5,keyasint,omitempty"`
	Setting       float64 `cbor:"6,keyasint,omitempty"`
}

// SetpointSensorPair couples a setpoint with the sensor measuring the same
// process. It exposes both as one ProcessValue for control blocks and telemetry.
type SetpointSensorPair struct {
	sensor   cbox.Ref[TempSensor]
	setpoint cbox.Ref[Setpoint]
	ifaces   cbox.Interfaces
}

// NewSetpointSensorPair creates an unlinked pair resolving its references in c.
func NewSetpointSensorPair(c *cbox.Container) *SetpointSensorPair {
	p := &SetpointSensorPair{
		sensor:   cbox.NewRef[TempSensor](c, TempSensorInterface),
		setpoint: cbox.NewRef[Setpoint](c, SetpointInterface),
	}
	p.ifaces = cbox.Interfaces{
		SetpointSensorPairType: func() any { return p },
		ProcessValueInterface:  func() any { return ProcessValue(p) },
	}
	return p
}

func (p *SetpointSensorPair) TypeID() cbox.Type { return SetpointSensorPairType }

func (p *SetpointSensorPair) StreamFrom(r io.Reader) error {
	var next SetpointSensorPairSettings
	if err := decode(r, &next); err != nil {
		return err
	}
	p.sensor.SetID(next.SensorID)
	p.setpoint.SetID(next.SetpointID)
	return nil
}

func (p *SetpointSensorPair) StreamTo(w io.Writer) error {
	state := SetpointSensorPairState{
		SensorID:   p.sensor.ID(),
		SetpointID: p.setpoint.ID(),
	}
	if sensor, ok := p.sensor.Get(); ok && sensor.Valid() {
		state.SensorValid = true
		state.Value = sensor.Value()
	}
	if setpoint, ok := p.setpoint.Get(); ok && setpoint.Valid() {
		state.SetpointValid = true
		state.Setting = setpoint.Setting()
	}
	return encode(w, state)
}

func (p *SetpointSensorPair) StreamPersistedTo(w io.Writer) error {
	return encode(w, SetpointSensorPairSettings{
		SensorID:   p.sensor.ID(),
		SetpointID: p.setpoint.ID(),
	})
}

func (p *SetpointSensorPair) Update(now cbox.Ticks) cbox.Ticks { return now + updateInterval }

func (p *SetpointSensorPair) Implements(iface cbox.Type) any { return p.ifaces.Lookup(iface) }

// SettingValid reports whether the setpoint resolves and is enabled.
func (p *SetpointSensorPair) SettingValid() bool {
	setpoint, ok := p.setpoint.Get()
	return ok && setpoint.Valid()
}

// Setting returns the setpoint's target, or 0 when invalid.
func (p *SetpointSensorPair) Setting() float64 {
	if setpoint, ok := p.setpoint.Get(); ok && setpoint.Valid() {
		return setpoint.Setting()
	}
	return 0
}

// ValueValid reports whether the sensor resolves and is connected.
func (p *SetpointSensorPair) ValueValid() bool {
	sensor, ok := p.sensor.Get()
	return ok && sensor.Valid()
}

// Value returns the sensor reading, or 0 when invalid.
func (p *SetpointSensorPair) Value() float64 {
	if sensor, ok := p.sensor.Get(); ok && sensor.Valid() {
		return sensor.Value()
	}
	return 0
}
