package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	measurementProcessValue = "process_value"
	measurementTemperature  = "temperature"
	measurementObjects      = "objects"
)

// ProcessSample is one reading of an object with a setting and a measured value
// (a setpoint/sensor pair or an analog actuator).
type ProcessSample struct {
	ObjectID     uint16
	Kind         string
	Setting      float64
	Value        float64
	SettingValid bool
	ValueValid   bool
}

// WriteProcessValue records a process sample. Invalid halves are omitted so
// dashboards show gaps instead of zeros.
//
// Parameters:
//   - deviceID: Controller identifier
//   - s: The sample
//   - at: Sample time
func (c *Client) WriteProcessValue(deviceID string, s ProcessSample, at time.Time) {
	fields := map[string]any{
		"setting_valid": s.SettingValid,
		"value_valid":   s.ValueValid,
	}
	if s.SettingValid {
		fields["setting"] = s.Setting
	}
	if s.ValueValid {
		fields["value"] = s.Value
	}

	c.write(measurementProcessValue, map[string]string{
		"device_id": deviceID,
		"object_id": strconv.Itoa(int(s.ObjectID)),
		"kind":      s.Kind,
	}, fields, at)
}

// WriteTemperature records a connected sensor reading in degrees Celsius.
func (c *Client) WriteTemperature(deviceID string, objectID uint16, celsius float64, at time.Time) {
	c.write(measurementTemperature, map[string]string{
		"device_id": deviceID,
		"object_id": strconv.Itoa(int(objectID)),
	}, map[string]any{"celsius": celsius}, at)
}

// WriteObjectStats records container occupancy and the active profile mask.
func (c *Client) WriteObjectStats(deviceID string, total, inactive int, activeProfiles uint8, at time.Time) {
	c.write(measurementObjects, map[string]string{"device_id": deviceID}, map[string]any{
		"total":           total,
		"inactive":        inactive,
		"active_profiles": int(activeProfiles),
	}, at)
}

func (c *Client) write(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if c.closed.Load() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
