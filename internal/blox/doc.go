// Package blox contains the concrete objects ("blocks") of the Brew Logic
// controller and the factory that builds them from a type tag.
//
// Every block encodes its payload as CBOR (core deterministic encoding), so
// equal settings always produce equal bytes and a persisted record streams
// back into a fresh block unchanged. Temperatures are float64 degrees Celsius.
//
// Blocks never hold pointers to other blocks. A block that depends on a
// sibling (the setpoint/sensor pair) keeps a cbox.Ref and resolves it by ID on
// every use, so replacing or deactivating the sibling is always observed.
package blox
