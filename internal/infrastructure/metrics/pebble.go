package metrics

import (
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

// PebbleSource provides engine metrics. storage.PebbleStore implements it.
type PebbleSource interface {
	Metrics() *pebble.Metrics
}

// PebbleCollector exports the object store engine's internal counters.
type PebbleCollector struct {
	source PebbleSource

	compactions   *prometheus.Desc
	compactDebt   *prometheus.Desc
	memtableSize  *prometheus.Desc
	memtableCount *prometheus.Desc
	walFiles      *prometheus.Desc
	walSize       *prometheus.Desc
	diskUsage     *prometheus.Desc
}

// NewPebbleCollector creates a collector reading source on every scrape.
func NewPebbleCollector(source PebbleSource) *PebbleCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "pebble", name), help, nil, nil)
	}
	return &PebbleCollector{
		source:        source,
		compactions:   desc("compactions_total", "Compactions performed."),
		compactDebt:   desc("compaction_debt_bytes", "Estimated bytes to compact before the LSM is stable."),
		memtableSize:  desc("memtable_size_bytes", "Bytes allocated by memtables."),
		memtableCount: desc("memtables", "Current memtables."),
		walFiles:      desc("wal_files", "Live WAL files."),
		walSize:       desc("wal_size_bytes", "Size of live WAL data."),
		diskUsage:     desc("disk_usage_bytes", "Total disk space used by the store."),
	}
}

// RegisterPebble adds a collector for source to the registry.
func (m *Metrics) RegisterPebble(source PebbleSource) error {
	return m.registry.Register(NewPebbleCollector(source))
}

// Describe implements prometheus.Collector.
func (c *PebbleCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.compactions
	ch <- c.compactDebt
	ch <- c.memtableSize
	ch <- c.memtableCount
	ch <- c.walFiles
	ch <- c.walSize
	ch <- c.diskUsage
}

// Collect implements prometheus.Collector.
func (c *PebbleCollector) Collect(ch chan<- prometheus.Metric) {
	m := c.source.Metrics()
	if m == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.compactions, prometheus.CounterValue, float64(m.Compact.Count))
	ch <- prometheus.MustNewConstMetric(c.compactDebt, prometheus.GaugeValue, float64(m.Compact.EstimatedDebt))
	ch <- prometheus.MustNewConstMetric(c.memtableSize, prometheus.GaugeValue, float64(m.MemTable.Size))
	ch <- prometheus.MustNewConstMetric(c.memtableCount, prometheus.GaugeValue, float64(m.MemTable.Count))
	ch <- prometheus.MustNewConstMetric(c.walFiles, prometheus.GaugeValue, float64(m.WAL.Files))
	ch <- prometheus.MustNewConstMetric(c.walSize, prometheus.GaugeValue, float64(m.WAL.Size))
	ch <- prometheus.MustNewConstMetric(c.diskUsage, prometheus.GaugeValue, float64(m.DiskSpaceUsage()))
}
