// Package api implements the read-only HTTP status server of the controller.
//
// This package provides:
//   - An info page at / pointing visitors to the command protocol
//   - Health (/healthz, /api/v1/health) and status endpoints for monitoring
//   - A JSON view of the object container, published by the box loop
//   - The Prometheus metrics endpoint
//   - Middleware stack (request ID, logging, recovery)
//
// # Concurrency
//
// The box is single-threaded and HTTP handlers are not. The box loop calls
// Status.Publish with a fresh Snapshot; handlers only read the last published
// snapshot and never touch live objects.
//
// Objects are changed only through the command protocol, so the API has no
// write endpoints.
package api
