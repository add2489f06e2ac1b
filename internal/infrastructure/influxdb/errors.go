package influxdb

import "errors"

var (
	// ErrDisabled is returned by Connect when telemetry is switched off.
	ErrDisabled = errors.New("influxdb: telemetry disabled")

	// ErrConnectionFailed wraps a failed initial ping.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrUnhealthy means the server answered the ping but reported itself not ready.
	ErrUnhealthy = errors.New("influxdb: server not healthy")

	// ErrClosed is reported by HealthCheck after Close.
	ErrClosed = errors.New("influxdb: client closed")
)
