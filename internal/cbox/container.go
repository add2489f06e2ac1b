package cbox

import (
	"fmt"
	"iter"
	"slices"
)

// Container is the ordered set of contained objects. It owns every live object.
//
// Slots are kept sorted by ID so lookups are a binary search and iteration is
// in ascending ID order between mutations. Replacing a slot allocates a new
// ContainedObject, so a pointer obtained before the replacement keeps pointing
// at the old triple and never at the new object.
type Container struct {
	objects    []*ContainedObject
	startID    ID
	lastUpdate Ticks
}

// NewContainer creates an empty container with the start ID set to
// DefaultUserStartID. System objects are added with Add before the start ID
// is raised above them.
func NewContainer() *Container {
	return &Container{startID: DefaultUserStartID}
}

// StartID returns the first ID available to user objects.
func (c *Container) StartID() ID {
	return c.startID
}

// SetStartID sets the first ID available to user objects. IDs below it are
// treated as system objects.
func (c *Container) SetStartID(id ID) {
	if id == InvalidID {
		id = 1
	}
	c.startID = id
}

// IsSystem reports whether id belongs to the system range.
func (c *Container) IsSystem(id ID) bool {
	return id < c.startID
}

// Len returns the number of slots, active or not.
func (c *Container) Len() int {
	return len(c.objects)
}

func (c *Container) search(id ID) (int, bool) {
	return slices.BinarySearchFunc(c.objects, id, func(co *ContainedObject, target ID) int {
		switch {
		case co.id < target:
			return -1
		case co.id > target:
			return 1
		}
		return 0
	})
}

// Fetch returns the object at id, or nil when the slot does not exist.
// Inactive slots return their sentinel.
func (c *Container) Fetch(id ID) Object {
	if co := c.FetchContained(id); co != nil {
		return co.obj
	}
	return nil
}

// FetchContained returns the triple at id, or nil.
func (c *Container) FetchContained(id ID) *ContainedObject {
	if i, ok := c.search(id); ok {
		return c.objects[i]
	}
	return nil
}

// Add inserts obj with the given profile mask.
//
// Parameters:
//   - id: requested ID; InvalidID assigns the next unused ID at or above the start ID
//   - replace: when true and id exists, the slot is swapped for a new triple
//
// Returns the ID used. A duplicate ID without replace fails with
// StatusInvalidObjectID; no free ID fails with StatusContainerFull.
func (c *Container) Add(obj Object, profiles Profiles, id ID, replace bool) (ID, error) {
	if obj == nil {
		return InvalidID, fmt.Errorf("%w: nil object", StatusInvalidParameter)
	}
	if id == InvalidID {
		if replace {
			return InvalidID, fmt.Errorf("%w: replace requires an id", StatusInvalidObjectID)
		}
		next, err := c.nextFreeID()
		if err != nil {
			return InvalidID, err
		}
		id = next
	}

	co := &ContainedObject{id: id, profiles: profiles, obj: obj, nextUpdate: c.lastUpdate}
	i, found := c.search(id)
	if found {
		if !replace {
			return InvalidID, fmt.Errorf("%w: id %d already in use", StatusInvalidObjectID, id)
		}
		c.objects[i] = co
		return id, nil
	}
	c.objects = slices.Insert(c.objects, i, co)
	return id, nil
}

// nextFreeID prefers one past the highest ID so recently deleted IDs are not
// reused immediately, then falls back to the first gap above the start ID.
func (c *Container) nextFreeID() (ID, error) {
	candidate := c.startID
	if n := len(c.objects); n > 0 {
		last := c.objects[n-1].id
		if last >= candidate {
			if last < MaxID {
				return last + 1, nil
			}
			candidate = InvalidID
		}
	}
	if candidate != InvalidID {
		return candidate, nil
	}

	next := c.startID
	for _, co := range c.objects {
		if co.id < next {
			continue
		}
		if co.id > next {
			return next, nil
		}
		if next == MaxID {
			break
		}
		next++
	}
	return InvalidID, StatusContainerFull
}

// Remove erases the slot at id. System objects cannot be removed.
func (c *Container) Remove(id ID) error {
	if c.IsSystem(id) {
		return fmt.Errorf("%w: id %d is a system object", StatusObjectNotDeletable, id)
	}
	i, found := c.search(id)
	if !found {
		return fmt.Errorf("%w: id %d", StatusInvalidObjectID, id)
	}
	c.objects = slices.Delete(c.objects, i, i+1)
	return nil
}

// Deactivate swaps the object at id for an Inactive sentinel, keeping the ID
// and profile mask. Deactivating an inactive slot is a no-op.
func (c *Container) Deactivate(id ID) error {
	if c.IsSystem(id) {
		return fmt.Errorf("%w: system object %d cannot be deactivated", StatusObjectNotWritable, id)
	}
	co := c.FetchContained(id)
	if co == nil {
		return fmt.Errorf("%w: id %d", StatusInvalidObjectID, id)
	}
	if co.Inactive() {
		return nil
	}
	_, err := c.Add(NewInactive(co.obj.TypeID()), co.profiles, id, true)
	return err
}

// Update calls Update on every active object that is due at now.
func (c *Container) Update(now Ticks) {
	c.update(now, false)
}

// ForcedUpdate calls Update on every active object regardless of schedule.
func (c *Container) ForcedUpdate(now Ticks) {
	c.update(now, true)
}

func (c *Container) update(now Ticks, forced bool) {
	c.lastUpdate = now
	// Objects may not mutate the container from Update, so the slice is stable here.
	for _, co := range c.objects {
		if co.Inactive() {
			continue
		}
		co.update(now, forced)
	}
}

// All iterates every slot in ascending ID order. The sequence walks a
// snapshot, so the loop body may mutate the container.
func (c *Container) All() iter.Seq[*ContainedObject] {
	return c.from(0)
}

// User iterates the slots at or above the start ID.
func (c *Container) User() iter.Seq[*ContainedObject] {
	start, _ := c.search(c.startID)
	return c.from(start)
}

func (c *Container) from(start int) iter.Seq[*ContainedObject] {
	snapshot := slices.Clone(c.objects[start:])
	return func(yield func(*ContainedObject) bool) {
		for _, co := range snapshot {
			if !yield(co) {
				return
			}
		}
	}
}

// UserIDs returns the IDs of all user slots.
func (c *Container) UserIDs() []ID {
	start, _ := c.search(c.startID)
	ids := make([]ID, 0, len(c.objects)-start)
	for _, co := range c.objects[start:] {
		ids = append(ids, co.id)
	}
	return ids
}

// Clear removes every user object. System objects stay.
func (c *Container) Clear() {
	start, _ := c.search(c.startID)
	clear(c.objects[start:])
	c.objects = c.objects[:start]
}

// ClearAll removes every object, system objects included.
func (c *Container) ClearAll() {
	clear(c.objects)
	c.objects = c.objects[:0]
}
