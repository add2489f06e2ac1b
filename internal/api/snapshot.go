package api

import (
	"sync/atomic"
	"time"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// ObjectInfo describes one container slot. Type is the object's own type
// even while it is inactive.
type ObjectInfo struct {
	ID       uint16 `json:"id"`
	Type     uint16 `json:"type"`
	Profiles uint8  `json:"profiles"`
	Inactive bool   `json:"inactive"`
	System   bool   `json:"system"`
}

// Snapshot is a point-in-time view of the controller.
type Snapshot struct {
	CapturedAt     time.Time    `json:"captured_at"`
	ActiveProfiles uint8        `json:"active_profiles"`
	Connections    int          `json:"connections"`
	Objects        []ObjectInfo `json:"objects"`
}

// Capture builds a snapshot of objects. It must run on the box goroutine.
func Capture(objects *cbox.Container, activeProfiles cbox.Profiles, connections int, at time.Time) *Snapshot {
	s := &Snapshot{
		CapturedAt:     at.UTC(),
		ActiveProfiles: uint8(activeProfiles),
		Connections:    connections,
		Objects:        make([]ObjectInfo, 0, objects.Len()),
	}
	for co := range objects.All() {
		typ := co.Object().TypeID()
		if in, ok := co.Object().(*cbox.Inactive); ok {
			typ = in.ActualType()
		}
		s.Objects = append(s.Objects, ObjectInfo{
			ID:       uint16(co.ID()),
			Type:     uint16(typ),
			Profiles: uint8(co.Profiles()),
			Inactive: co.Inactive(),
			System:   objects.IsSystem(co.ID()),
		})
	}
	return s
}

// Find returns the slot with the given id.
func (s *Snapshot) Find(id uint16) (ObjectInfo, bool) {
	for _, o := range s.Objects {
		if o.ID == id {
			return o, true
		}
	}
	return ObjectInfo{}, false
}

// Status holds the most recently published snapshot.
type Status struct {
	current atomic.Pointer[Snapshot]
}

// Publish replaces the current snapshot.
func (st *Status) Publish(s *Snapshot) {
	st.current.Store(s)
}

// Current returns the last published snapshot, or nil before the first.
func (st *Status) Current() *Snapshot {
	return st.current.Load()
}
