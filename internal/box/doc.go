// Package box is the command engine and profile manager of the controller.
//
// A Box owns the object container, the object storage and the factory. It
// decodes framed hex requests, dispatches them on their command byte, mutates
// the container and storage, and writes one framed response per request.
//
// # Transactions
//
// Every handler follows the same shape: read its fields, spool the rest of
// the request, check the CRC, write the response separator and status, and
// only on success write its payload. A CRC mismatch overrides any status the
// handler determined and nothing is mutated: handlers that change state
// apply the buffered request only after the CRC check.
//
// # Profiles
//
// The active profile mask is exposed as the system object at cbox.ProfilesID.
// Changing it reconciles every user object: objects outside the new mask are
// replaced by Inactive sentinels, and inactive objects inside it are rebuilt
// from their storage records. Reconciliation repeats until the mask stops
// changing, so an object that changes the mask while being reloaded is
// handled.
//
// # Concurrency
//
// A Box is not safe for concurrent use. Communicate and Update must be called
// from the same goroutine (the main loop). Other goroutines observe the box
// through the Observer, which the metrics package implements.
package box
