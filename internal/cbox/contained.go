package cbox

import (
	"fmt"
	"io"
)

// ContainedObject is the (ID, profile mask, Object) triple owned by the container.
type ContainedObject struct {
	id         ID
	profiles   Profiles
	obj        Object
	nextUpdate Ticks
}

// ID returns the object's identity.
func (c *ContainedObject) ID() ID {
	return c.id
}

// Profiles returns the object's profile mask.
func (c *ContainedObject) Profiles() Profiles {
	return c.profiles
}

// Object returns the live object (or Inactive sentinel) in this slot.
func (c *ContainedObject) Object() Object {
	return c.obj
}

// Inactive reports whether the slot holds an Inactive sentinel.
func (c *ContainedObject) Inactive() bool {
	return IsInactive(c.obj)
}

// StreamTo writes id, profiles, type tag and the object's runtime state.
func (c *ContainedObject) StreamTo(w io.Writer) error {
	if err := WriteID(w, c.id); err != nil {
		return err
	}
	if err := WriteProfiles(w, c.profiles); err != nil {
		return err
	}
	if err := WriteType(w, c.obj.TypeID()); err != nil {
		return err
	}
	return c.obj.StreamTo(w)
}

// StreamPersistedTo writes the storage record: profiles, type tag and the
// object's persisted state. The ID is the record key and is not included.
func (c *ContainedObject) StreamPersistedTo(w io.Writer) error {
	if err := WriteProfiles(w, c.profiles); err != nil {
		return err
	}
	if err := WriteType(w, c.obj.TypeID()); err != nil {
		return err
	}
	return c.obj.StreamPersistedTo(w)
}

// StreamFrom reads profiles and a type tag followed by new object settings.
// The type tag must match the live object. The new profile mask is applied
// only after the object accepted its settings. System objects keep their mask.
func (c *ContainedObject) StreamFrom(r io.Reader, systemObject bool) error {
	profiles, err := ReadProfiles(r)
	if err != nil {
		return err
	}
	typeID, err := ReadType(r)
	if err != nil {
		return err
	}
	if typeID != c.obj.TypeID() {
		return fmt.Errorf("%w: object %d is type %d, got %d", StatusInvalidType, c.id, c.obj.TypeID(), typeID)
	}
	if err := c.obj.StreamFrom(r); err != nil {
		return err
	}
	if !systemObject {
		c.profiles = profiles
	}
	return nil
}

// update runs the object if it is due and records when it wants service again.
func (c *ContainedObject) update(now Ticks, forced bool) {
	if !forced && !now.Due(c.nextUpdate) {
		return
	}
	c.nextUpdate = c.obj.Update(now)
}
