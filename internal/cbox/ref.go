package cbox

// Ref is a weak reference to a contained object seen through capability T.
//
// It stores only an ID. Every Get re-resolves the ID in the container and
// queries the object for iface, so a Ref survives replacement, deactivation
// and removal of its target without ever dereferencing a stale pointer.
type Ref[T any] struct {
	container *Container
	iface     Type
	id        ID
}

// NewRef creates an unset reference into c for capability iface.
func NewRef[T any](c *Container, iface Type) Ref[T] {
	return Ref[T]{container: c, iface: iface}
}

// ID returns the referenced ID, or InvalidID when unset.
func (r *Ref[T]) ID() ID {
	return r.id
}

// SetID points the reference at id.
func (r *Ref[T]) SetID(id ID) {
	r.id = id
}

// Get resolves the reference. It fails when the ID is unset, absent, inactive,
// or does not implement the capability.
func (r *Ref[T]) Get() (T, bool) {
	var zero T
	if r.container == nil || r.id == InvalidID {
		return zero, false
	}
	obj := r.container.Fetch(r.id)
	if obj == nil {
		return zero, false
	}
	view, ok := obj.Implements(r.iface).(T)
	if !ok {
		return zero, false
	}
	return view, true
}

// Valid reports whether Get would currently succeed.
func (r *Ref[T]) Valid() bool {
	_, ok := r.Get()
	return ok
}
