package blox

import (
	"io"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// SetpointSimpleSettings is both the persisted and the transported payload.
type SetpointSimpleSettings struct {
	Setting float64 `cbor:"1,keyasint,omitempty"`
	Enabled bool    `cbor:"2,keyasint,omitempty"`
}

// SetpointSimple is a fixed target temperature.
type SetpointSimple struct {
	settings SetpointSimpleSettings
	ifaces   cbox.Interfaces
}

func NewSetpointSimple() *SetpointSimple {
	s := &SetpointSimple{}
	s.ifaces = cbox.Interfaces{
		SetpointSimpleType: func() any { return s },
		SetpointInterface:  func() any { return Setpoint(s) },
	}
	return s
}

func (s *SetpointSimple) TypeID() cbox.Type { return SetpointSimpleType }

func (s *SetpointSimple) StreamFrom(r io.Reader) error {
	var next SetpointSimpleSettings
	if err := decode(r, &next); err != nil {
		return err
	}
	s.settings = next
	return nil
}

func (s *SetpointSimple) StreamTo(w io.Writer) error          { return encode(w, s.settings) }
func (s *SetpointSimple) StreamPersistedTo(w io.Writer) error { return encode(w, s.settings) }
func (s *SetpointSimple) Update(now cbox.Ticks) cbox.Ticks    { return now + updateInterval }
func (s *SetpointSimple) Implements(iface cbox.Type) any      { return s.ifaces.Lookup(iface) }

// Valid reports whether the setpoint is enabled.
func (s *SetpointSimple) Valid() bool { return s.settings.Enabled }

// Setting returns the target temperature.
func (s *SetpointSimple) Setting() float64 { return s.settings.Setting }
