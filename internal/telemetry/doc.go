// Package telemetry samples the live object container and forwards readings
// to a time-series writer.
//
// Every active object exposing a process value (setting/value pair) or a
// temperature sensor produces one point per sample. A summary point with
// object counts and the active profile mask is written alongside.
//
// The sampler does not own the container. Call Sample from the goroutine that
// runs the box so no locking is needed.
package telemetry
