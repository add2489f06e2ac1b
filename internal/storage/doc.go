// Package storage persists object records keyed by object ID.
//
// A record is the byte stream an object's contained slot produces with
// StreamPersistedTo: profile mask, type tag, persisted payload. Records are
// written and read through callbacks so the same codecs used on the wire are
// reused for persistence without the caller handling buffers.
//
// Three backends implement Storage:
//   - MemoryStore: process memory, used by tests and as the "memory" backend
//   - SQLiteStore: the objects table of the controller's SQLite database
//   - PebbleStore: a Pebble key-value store on flash
//
// All backends accept WithCapacity to bound the total size of stored records;
// a write that would exceed it fails with ErrInsufficientSpace and leaves the
// previous record in place.
//
// Enumeration callbacks may call back into the store (for example, loading an
// object can change the active profiles, which reloads other records).
// Backends therefore never hold a lock or an open cursor while a callback runs.
package storage
