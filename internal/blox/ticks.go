package blox

import (
	"io"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// TicksSettings is the writable part of the ticks block. Zero leaves the
// wall clock unset.
type TicksSettings struct {
	SecondsSinceEpoch uint32 `cbor:"2,keyasint,omitempty"`
}

// TicksState is the transported payload of the ticks block.
type TicksState struct {
	MillisSinceBoot   uint32 `cbor:"1,keyasint,omitempty"`
	SecondsSinceEpoch uint32 `cbor:"2,keyasint,omitempty"`
}

// Ticks exposes the controller's monotonic clock and a wall clock that a
// client can set. It lives at TicksID.
type Ticks struct {
	now     cbox.Ticks
	epoch   uint32     // wall clock seconds at setAt
	setAt   cbox.Ticks // monotonic time the wall clock was set
	ifaces  cbox.Interfaces
	wallSet bool
}

func NewTicks() *Ticks {
	t := &Ticks{}
	t.ifaces = cbox.Interfaces{TicksType: func() any { return t }}
	return t
}

func (t *Ticks) TypeID() cbox.Type { return TicksType }

func (t *Ticks) StreamFrom(r io.Reader) error {
	var next TicksSettings
	if err := decode(r, &next); err != nil {
		return err
	}
	if next.SecondsSinceEpoch != 0 {
		t.epoch = next.SecondsSinceEpoch
		t.setAt = t.now
		t.wallSet = true
	}
	return nil
}

func (t *Ticks) StreamTo(w io.Writer) error {
	return encode(w, TicksState{
		MillisSinceBoot:   uint32(t.now),
		SecondsSinceEpoch: t.SecondsSinceEpoch(),
	})
}

// StreamPersistedTo writes nothing: the wall clock does not survive a reboot.
func (t *Ticks) StreamPersistedTo(io.Writer) error { return nil }

// Transient implements cbox.Transient.
func (t *Ticks) Transient() {}

func (t *Ticks) Update(now cbox.Ticks) cbox.Ticks {
	t.now = now
	return now + updateInterval
}

func (t *Ticks) Implements(iface cbox.Type) any { return t.ifaces.Lookup(iface) }

// SecondsSinceEpoch returns the wall clock, or 0 when never set.
func (t *Ticks) SecondsSinceEpoch() uint32 {
	if !t.wallSet {
		return 0
	}
	return t.epoch + uint32(t.now-t.setAt)/1000
}
