// Package cbox is the object model of the Brew Logic controller.
//
// A controller holds a live set of polymorphic objects (sensors, actuators,
// setpoints, control blocks) addressed by a small numeric ID. This package
// defines that model:
//
//   - Object: the capability every contained entity implements
//     (stream in, stream out, stream persisted state, update, capability lookup)
//   - ContainedObject: the (ID, profile mask, Object) triple
//   - Container: the ordered set of contained objects, owner of all live objects
//   - Factory: type tag to constructor registry
//   - Ref: a weak reference that re-resolves an object by ID on every use
//   - Status: the byte-sized result code carried on the wire
//
// # Identity
//
// IDs below the container's start ID are system objects added by the
// application at boot. They cannot be removed through the protocol and are
// never deactivated. ID 0 means "assign automatically".
//
// # Profiles
//
// Each contained object carries an 8-bit profile mask. It is active under the
// global active-profile mask when the two masks share a bit. An object outside
// the active profiles is replaced in its slot by an Inactive sentinel that keeps
// its ID and mask; the persisted record stays in storage.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. The container is owned by
// the command engine and mutated from a single execution context. Pointers
// returned by Fetch and FetchContained are valid only until the next structural
// mutation; hold an ID (or a Ref) instead.
package cbox
