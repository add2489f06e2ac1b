// Package influxdb provides InfluxDB connectivity for BrewLogic Core.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, telemetry writes and health monitoring.
//
// # Purpose
//
// The telemetry sampler records, per controller:
//   - process values (setting and measured value of pairs and actuators)
//   - temperature sensor readings
//   - object counts and the active profile mask
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB,
//	    influxdb.WithErrorHandler(func(err error) { log.Error("write failed", "error", err) }))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteTemperature("fermenter-1", 100, 19.5, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes; write errors
// are delivered to the WithErrorHandler callback.
package influxdb
