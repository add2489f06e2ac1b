package cbox

import (
	"fmt"
	"slices"
)

// Constructor builds a fresh object with default settings. Contextual
// dependencies (such as the container, for objects that reference siblings)
// are captured by the closure when it is registered.
type Constructor func() Object

// Factory maps type tags to constructors.
type Factory struct {
	constructors map[Type]Constructor
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{constructors: make(map[Type]Constructor)}
}

// Register adds a constructor for t, replacing any previous registration.
// The reserved InvalidType, InactiveType and ProfilesType tags are rejected.
func (f *Factory) Register(t Type, fn Constructor) error {
	switch t {
	case InvalidType, InactiveType, ProfilesType:
		return fmt.Errorf("%w: type %d is reserved", StatusInvalidType, t)
	}
	if fn == nil {
		return fmt.Errorf("%w: nil constructor for type %d", StatusInvalidParameter, t)
	}
	f.constructors[t] = fn
	return nil
}

// Make constructs an object of type t. Unknown tags fail with StatusInvalidType.
func (f *Factory) Make(t Type) (Object, error) {
	fn, ok := f.constructors[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", StatusInvalidType, t)
	}
	obj := fn()
	if obj == nil {
		return nil, fmt.Errorf("%w: constructor for type %d returned nil", StatusObjectNotCreatable, t)
	}
	return obj, nil
}

// Types returns the registered type tags in ascending order.
func (f *Factory) Types() []Type {
	types := make([]Type, 0, len(f.constructors))
	for t := range f.constructors {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
