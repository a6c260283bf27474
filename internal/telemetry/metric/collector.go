package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/replikv/internal/core/domain"
)

// KeyCounter reports the number of stored keys.
type KeyCounter interface {
	Len() int
}

// Collector samples store size and replication state at scrape time.
type Collector struct {
	keys KeyCounter
	repl *domain.ReplicationState

	keysDesc   *prometheus.Desc
	roleDesc   *prometheus.Desc
	offsetDesc *prometheus.Desc
}

// NewCollector creates a collector over keys and repl. Either may be nil.
func NewCollector(keys KeyCounter, repl *domain.ReplicationState) *Collector {
	return &Collector{
		keys: keys,
		repl: repl,
		keysDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Stored keys, including expired keys not yet evicted.",
			nil, nil,
		),
		roleDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "replication", "role"),
			"Node role, 1 for the current role.",
			[]string{"role"}, nil,
		),
		offsetDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "replication", "offset"),
			"Replication offset.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keysDesc
	ch <- c.roleDesc
	ch <- c.offsetDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.keys != nil {
		ch <- prometheus.MustNewConstMetric(c.keysDesc, prometheus.GaugeValue, float64(c.keys.Len()))
	}
	if c.repl != nil {
		info := c.repl.Info()
		ch <- prometheus.MustNewConstMetric(c.roleDesc, prometheus.GaugeValue, 1, info.Role.String())
		ch <- prometheus.MustNewConstMetric(c.offsetDesc, prometheus.GaugeValue, float64(info.ReplOffset))
	}
}
