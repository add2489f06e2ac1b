package blox

import (
	"fmt"
	"io"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// ActuatorAnalogMockSettings is the persisted payload of a mock actuator.
type ActuatorAnalogMockSettings struct {
	Setting    float64 `cbor:"1,keyasint,omitempty"`
	MinSetting float64 `cbor:"2,keyasint,omitempty"`
	MaxSetting float64 `cbor:"3,keyasint,omitempty"`
	MinValue   float64 `cbor:"4,keyasint,omitempty"`
	MaxValue   float64 `cbor:"5,keyasint,omitempty"`
}

// ActuatorAnalogMockState is the transported payload of a mock actuator.
type ActuatorAnalogMockState struct {
	Setting    float64 `cbor:"1,keyasint,omitempty"`
	MinSetting float64 `cbor:"2,keyasint,omitempty"`
	MaxSetting float64 `cbor:"3,keyasint,omitempty"`
	MinValue   float64 `cbor:"4,keyasint,omitempty"`
	MaxValue   float64 `cbor:"5,keyasint,omitempty"`
	Value      float64 `cbor:"6,keyasint,omitempty"`
}

// ActuatorAnalogMock is an analog output that clamps its setting to the
// setting range and reports the setting clamped to the value range as the
// achieved value.
type ActuatorAnalogMock struct {
	settings ActuatorAnalogMockSettings
	ifaces   cbox.Interfaces
}

// NewActuatorAnalogMock creates an actuator with 0..100 ranges.
func NewActuatorAnalogMock() *ActuatorAnalogMock {
	a := &ActuatorAnalogMock{settings: ActuatorAnalogMockSettings{MaxSetting: 100, MaxValue: 100}}
	a.ifaces = cbox.Interfaces{
		ActuatorAnalogMockType:  func() any { return a },
		ActuatorAnalogInterface: func() any { return ActuatorAnalog(a) },
		ProcessValueInterface:   func() any { return ProcessValue(a) },
	}
	return a
}

func (a *ActuatorAnalogMock) TypeID() cbox.Type { return ActuatorAnalogMockType }

// StreamFrom rejects inverted ranges with StatusObjectDataNotAccepted.
func (a *ActuatorAnalogMock) StreamFrom(r io.Reader) error {
	var next ActuatorAnalogMockSettings
	if err := decode(r, &next); err != nil {
		return err
	}
	if next.MinSetting > next.MaxSetting || next.MinValue > next.MaxValue {
		return fmt.Errorf("%w: inverted actuator range", cbox.StatusObjectDataNotAccepted)
	}
	next.Setting = clamp(next.Setting, next.MinSetting, next.MaxSetting)
	a.settings = next
	return nil
}

func (a *ActuatorAnalogMock) StreamTo(w io.Writer) error {
	s := a.settings
	return encode(w, ActuatorAnalogMockState{
		Setting:    s.Setting,
		MinSetting: s.MinSetting,
		MaxSetting: s.MaxSetting,
		MinValue:   s.MinValue,
		MaxValue:   s.MaxValue,
		Value:      a.Value(),
	})
}

func (a *ActuatorAnalogMock) StreamPersistedTo(w io.Writer) error {
	return encode(w, a.settings)
}

func (a *ActuatorAnalogMock) Update(now cbox.Ticks) cbox.Ticks { return now + updateInterval }

func (a *ActuatorAnalogMock) Implements(iface cbox.Type) any { return a.ifaces.Lookup(iface) }

func (a *ActuatorAnalogMock) SettingValid() bool { return true }
func (a *ActuatorAnalogMock) Setting() float64   { return a.settings.Setting }
func (a *ActuatorAnalogMock) ValueValid() bool   { return true }

// Value returns the setting limited to the value range.
func (a *ActuatorAnalogMock) Value() float64 {
	return clamp(a.settings.Setting, a.settings.MinValue, a.settings.MaxValue)
}

// SetSetting changes the setting, limited to the setting range.
func (a *ActuatorAnalogMock) SetSetting(v float64) {
	a.settings.Setting = clamp(v, a.settings.MinSetting, a.settings.MaxSetting)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
