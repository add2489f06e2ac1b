package telemetry

import (
	"time"

	"github.com/nerrad567/brewlogic-core/internal/blox"
	"github.com/nerrad567/brewlogic-core/internal/cbox"
	"github.com/nerrad567/brewlogic-core/internal/infrastructure/influxdb"
)

// Writer receives samples. influxdb.Client implements it.
type Writer interface {
	WriteProcessValue(deviceID string, s influxdb.ProcessSample, at time.Time)
	WriteTemperature(deviceID string, objectID uint16, celsius float64, at time.Time)
	WriteObjectStats(deviceID string, total, inactive int, activeProfiles uint8, at time.Time)
}

// Logger is the logging surface the sampler needs.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Kinds reported in the "kind" tag of process samples.
const (
	KindSetpointSensorPair = "setpoint_sensor_pair"
	KindActuatorAnalog     = "actuator_analog"
	KindProcessValue       = "process_value"
)

// Sampler turns container contents into telemetry points.
type Sampler struct {
	deviceID string
	writer   Writer
	interval time.Duration
	last     time.Time
	logger   Logger
	now      func() time.Time
}

// NewSampler creates a sampler writing at most once per interval.
// A zero interval samples on every call.
func NewSampler(deviceID string, w Writer, interval time.Duration) *Sampler {
	return &Sampler{
		deviceID: deviceID,
		writer:   w,
		interval: interval,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger sets the logger.
func (s *Sampler) SetLogger(l Logger) {
	if l != nil {
		s.logger = l
	}
}

// Tick samples objects if the interval has elapsed since the last sample.
// It reports whether a sample was taken.
func (s *Sampler) Tick(objects *cbox.Container, activeProfiles cbox.Profiles) bool {
	now := s.now()
	if !s.last.IsZero() && now.Sub(s.last) < s.interval {
		return false
	}
	s.Sample(objects, activeProfiles, now)
	return true
}

// Sample writes one point per measurable object and a summary point.
// Inactive objects only count towards the summary.
func (s *Sampler) Sample(objects *cbox.Container, activeProfiles cbox.Profiles, at time.Time) {
	s.last = at

	total, inactive, points := 0, 0, 0
	for co := range objects.All() {
		total++
		if co.Inactive() {
			inactive++
			continue
		}
		if s.sampleObject(co, at) {
			points++
		}
	}

	s.writer.WriteObjectStats(s.deviceID, total, inactive, uint8(activeProfiles), at)
	s.logger.Debug("telemetry sampled", "objects", total, "inactive", inactive, "points", points)
}

func (s *Sampler) sampleObject(co *cbox.ContainedObject, at time.Time) bool {
	obj := co.Object()
	id := uint16(co.ID())

	if pv, ok := obj.Implements(blox.ProcessValueInterface).(blox.ProcessValue); ok {
		s.writer.WriteProcessValue(s.deviceID, influxdb.ProcessSample{
			ObjectID:     id,
			Kind:         kindOf(obj.TypeID()),
			Setting:      pv.Setting(),
			Value:        pv.Value(),
			SettingValid: pv.SettingValid(),
			ValueValid:   pv.ValueValid(),
		}, at)
		return true
	}

	if ts, ok := obj.Implements(blox.TempSensorInterface).(blox.TempSensor); ok {
		if !ts.Valid() {
			return false
		}
		s.writer.WriteTemperature(s.deviceID, id, ts.Value(), at)
		return true
	}
	return false
}

func kindOf(t cbox.Type) string {
	switch t {
	case blox.SetpointSensorPairType:
		return KindSetpointSensorPair
	case blox.ActuatorAnalogMockType:
		return KindActuatorAnalog
	default:
		return KindProcessValue
	}
}
