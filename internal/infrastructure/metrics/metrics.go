package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/brewlogic-core/internal/box"
	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

const namespace = "brewlogic"

// Metrics holds every collector of the controller.
type Metrics struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	objects         prometheus.Gauge
	inactiveObjects prometheus.Gauge
	activeProfiles  prometheus.Gauge
	storageFailures *prometheus.CounterVec
	connections     *prometheus.GaugeVec
	connectionsSeen *prometheus.CounterVec
}

// New creates and registers the controller metrics, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "box",
			Name:      "commands_total",
			Help:      "Commands handled, by command and result status.",
		}, []string{"command", "status"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "box",
			Name:      "command_duration_seconds",
			Help:      "Time spent handling one command.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"command"}),
		objects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "box",
			Name:      "objects",
			Help:      "Objects in the container, system objects included.",
		}),
		inactiveObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "box",
			Name:      "inactive_objects",
			Help:      "Objects held as inactive placeholders.",
		}),
		activeProfiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "box",
			Name:      "active_profiles",
			Help:      "Active profile mask.",
		}),
		storageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "failures_total",
			Help:      "Failed storage operations.",
		}, []string{"op"}),
		connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "open",
			Help:      "Open client connections.",
		}, []string{"kind"}),
		connectionsSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connection",
			Name:      "accepted_total",
			Help:      "Client connections accepted since start.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.commands,
		m.commandDuration,
		m.objects,
		m.inactiveObjects,
		m.activeProfiles,
		m.storageFailures,
		m.connections,
		m.connectionsSeen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the registry for extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CommandHandled implements box.Observer.
func (m *Metrics) CommandHandled(cmd box.CommandID, status cbox.Status, elapsed time.Duration) {
	name := cmd.String()
	m.commands.WithLabelValues(name, status.String()).Inc()
	m.commandDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObjectsChanged implements box.Observer.
func (m *Metrics) ObjectsChanged(total, inactive int, activeProfiles cbox.Profiles) {
	m.objects.Set(float64(total))
	m.inactiveObjects.Set(float64(inactive))
	m.activeProfiles.Set(float64(activeProfiles))
}

// StorageFailed implements box.Observer.
func (m *Metrics) StorageFailed(op string) {
	m.storageFailures.WithLabelValues(op).Inc()
}

// ConnectionOpened implements connection.Observer.
func (m *Metrics) ConnectionOpened(kind string) {
	m.connections.WithLabelValues(kind).Inc()
	m.connectionsSeen.WithLabelValues(kind).Inc()
}

// ConnectionClosed implements connection.Observer.
func (m *Metrics) ConnectionClosed(kind string) {
	m.connections.WithLabelValues(kind).Dec()
}
