package cbox

import (
	"io"
)

// Object is the capability every entity placed in the container implements.
type Object interface {
	// TypeID returns the object's type tag.
	TypeID() Type

	// StreamFrom reads new settings from r and applies them. Implementations
	// decode fully before applying so a failed read leaves state untouched.
	StreamFrom(r io.Reader) error

	// StreamTo writes the full runtime state for transport.
	StreamTo(w io.Writer) error

	// StreamPersistedTo writes the subset of state that must survive a restart.
	// Its output must be accepted by StreamFrom of a freshly constructed object.
	StreamPersistedTo(w io.Writer) error

	// Update advances the object to now and returns when it next wants an update.
	Update(now Ticks) Ticks

	// Implements returns a view of the object for the given interface tag, or
	// nil when unsupported. The view is borrowed: valid until the next
	// structural change of the container.
	Implements(iface Type) any
}

// Transient is implemented by objects whose state never survives a restart.
// No storage record is kept for them.
type Transient interface {
	Transient()
}

// Interfaces is a per-variant capability table: interface tag to accessor.
//
// Objects embed or build one and forward Implements to Lookup:
//
//	func (b *Block) Implements(iface cbox.Type) any {
//	    return b.ifaces.Lookup(iface)
//	}
type Interfaces map[Type]func() any

// Lookup returns the view registered for iface, or nil.
func (t Interfaces) Lookup(iface Type) any {
	if accessor, ok := t[iface]; ok {
		return accessor()
	}
	return nil
}

// Inactive stands in for an object whose profiles exclude it from the active
// profile set. It remembers the type it replaced and rejects writes.
type Inactive struct {
	actual Type
}

// NewInactive returns a sentinel for an object of type actual.
func NewInactive(actual Type) *Inactive {
	return &Inactive{actual: actual}
}

// ActualType returns the type tag of the object this sentinel replaced.
func (o *Inactive) ActualType() Type {
	return o.actual
}

// TypeID implements Object.
func (o *Inactive) TypeID() Type {
	return InactiveType
}

// StreamFrom implements Object. Inactive objects only accept writes through
// re-activation by the command engine.
func (o *Inactive) StreamFrom(io.Reader) error {
	return StatusObjectNotWritable
}

// StreamTo writes the replaced type tag so clients can tell what is parked here.
func (o *Inactive) StreamTo(w io.Writer) error {
	return WriteType(w, o.actual)
}

// StreamPersistedTo implements Object. The real record stays in storage, so
// the sentinel is never persisted.
func (o *Inactive) StreamPersistedTo(io.Writer) error {
	return StatusObjectNotReadable
}

// Update implements Object. Inactive objects are never scheduled.
func (o *Inactive) Update(now Ticks) Ticks {
	return now + inactiveUpdateInterval
}

// Implements implements Object.
func (o *Inactive) Implements(iface Type) any {
	if iface == InactiveType {
		return o
	}
	return nil
}

const inactiveUpdateInterval Ticks = 1000

// IsInactive reports whether obj is an Inactive sentinel.
func IsInactive(obj Object) bool {
	return obj != nil && obj.TypeID() == InactiveType
}
