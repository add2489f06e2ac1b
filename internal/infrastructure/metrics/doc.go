// Package metrics publishes controller runtime metrics to Prometheus.
//
// A Metrics value owns its own registry so tests and multiple instances do
// not collide on the global one. It implements box.Observer for command and
// object events and connection.Observer for client counts. Handler serves
// the registry in the Prometheus text format.
package metrics
