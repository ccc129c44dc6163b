// Package metrics exports registry counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/typereg"
)

// Collector reads a Registry's Stats on every scrape.
type Collector struct {
	reg *typereg.Registry

	types       *prometheus.Desc
	entries     *prometheus.Desc
	validations *prometheus.Desc
	hits        *prometheus.Desc
	misses      *prometheus.Desc
}

// NewCollector returns a collector for reg. Metric names are prefixed with
// namespace when it is not empty.
func NewCollector(namespace string, reg *typereg.Registry) *Collector {
	name := func(n string) string { return prometheus.BuildFQName(namespace, "typereg", n) }
	return &Collector{
		reg:         reg,
		types:       prometheus.NewDesc(name("registered_types"), "Number of registered type names.", nil, nil),
		entries:     prometheus.NewDesc(name("cache_entries"), "Number of live association cache entries.", nil, nil),
		validations: prometheus.NewDesc(name("validations_total"), "Validator invocations.", nil, nil),
		hits:        prometheus.NewDesc(name("cache_hits_total"), "Checks answered from the association cache.", nil, nil),
		misses:      prometheus.NewDesc(name("cache_misses_total"), "Object checks that had to run the validator.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.types
	ch <- c.entries
	ch <- c.validations
	ch <- c.hits
	ch <- c.misses
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.reg.Stats()
	ch <- prometheus.MustNewConstMetric(c.types, prometheus.GaugeValue, float64(st.Types))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(st.CacheEntries))
	ch <- prometheus.MustNewConstMetric(c.validations, prometheus.CounterValue, float64(st.Validations))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(st.CacheHits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(st.CacheMisses))
}
