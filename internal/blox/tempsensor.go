package blox

import (
	"io"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// TempSensorMockSettings is the persisted payload of a mock sensor.
type TempSensorMockSettings struct {
	Value     float64 `cbor:"1,keyasint,omitempty"`
	Connected bool    `cbor:"2,keyasint,omitempty"`
	Address   uint64  `cbor:"3,keyasint,omitempty"`
}

// TempSensorMockState is the transported payload of a mock sensor.
type TempSensorMockState struct {
	Value     float64 `cbor:"1,keyasint,omitempty"`
	Connected bool    `cbor:"2,keyasint,omitempty"`
	Address   uint64  `cbor:"3,keyasint,omitempty"`
	Valid     bool    `cbor:"4,keyasint,omitempty"`
}

// TempSensorMock is a temperature sensor whose reading is set over the protocol.
type TempSensorMock struct {
	settings TempSensorMockSettings
	ifaces   cbox.Interfaces
}

// NewTempSensorMock creates a disconnected sensor reading 0 °C.
func NewTempSensorMock() *TempSensorMock {
	s := &TempSensorMock{}
	s.ifaces = cbox.Interfaces{
		TempSensorMockType:  func() any { return s },
		TempSensorInterface: func() any { return TempSensor(s) },
	}
	return s
}

// TypeID implements cbox.Object.
func (s *TempSensorMock) TypeID() cbox.Type { return TempSensorMockType }

// StreamFrom implements cbox.Object.
func (s *TempSensorMock) StreamFrom(r io.Reader) error {
	var next TempSensorMockSettings
	if err := decode(r, &next); err != nil {
		return err
	}
	s.settings = next
	return nil
}

// StreamTo implements cbox.Object.
func (s *TempSensorMock) StreamTo(w io.Writer) error {
	return encode(w, TempSensorMockState{
		Value:     s.settings.Value,
		Connected: s.settings.Connected,
		Address:   s.settings.Address,
		Valid:     s.Valid(),
	})
}

// StreamPersistedTo implements cbox.Object.
func (s *TempSensorMock) StreamPersistedTo(w io.Writer) error {
	return encode(w, s.settings)
}

// Update implements cbox.Object.
func (s *TempSensorMock) Update(now cbox.Ticks) cbox.Ticks { return now + updateInterval }

// Implements implements cbox.Object.
func (s *TempSensorMock) Implements(iface cbox.Type) any { return s.ifaces.Lookup(iface) }

// Valid reports whether the sensor is connected.
func (s *TempSensorMock) Valid() bool { return s.settings.Connected }

// Value returns the last reading.
func (s *TempSensorMock) Value() float64 { return s.settings.Value }

// Address returns the bus address, zero for sensors created over the protocol.
func (s *TempSensorMock) Address() uint64 { return s.settings.Address }
