// Package prommetrics exports memdebug allocation metrics to Prometheus.
package prommetrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/memdebug"
)

// Collector implements memdebug.MetricsCollector with Prometheus metrics.
type Collector struct {
	allocs     prometheus.Counter
	allocBytes prometheus.Counter
	resizes    prometheus.Counter
	frees      prometheus.Counter
	freeBytes  prometheus.Counter
	liveBytes  prometheus.Gauge
	faults     *prometheus.CounterVec
}

var _ memdebug.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "memdebug"
	}

	c := &Collector{
		allocs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Total tracked allocations",
		}),
		allocBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocated_bytes_total",
			Help:      "Total bytes handed out by tracked allocations",
		}),
		resizes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resizes_total",
			Help:      "Total successful resizes",
		}),
		frees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frees_total",
			Help:      "Total releases",
		}),
		freeBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freed_bytes_total",
			Help:      "Total bytes released",
		}),
		liveBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_bytes",
			Help:      "Bytes currently held by live allocations",
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Fatal memory faults by kind",
		}, []string{"kind"}),
	}

	var errs []error
	for _, m := range []prometheus.Collector{
		c.allocs, c.allocBytes, c.resizes, c.frees, c.freeBytes, c.liveBytes, c.faults,
	} {
		errs = append(errs, reg.Register(m))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordAlloc implements memdebug.MetricsCollector.
func (c *Collector) RecordAlloc(size int) {
	c.allocs.Inc()
	c.allocBytes.Add(float64(size))
	c.liveBytes.Add(float64(size))
}

// RecordResize implements memdebug.MetricsCollector.
func (c *Collector) RecordResize(oldSize, newSize int) {
	c.resizes.Inc()
	c.liveBytes.Add(float64(newSize - oldSize))
}

// RecordFree implements memdebug.MetricsCollector.
func (c *Collector) RecordFree(size int) {
	c.frees.Inc()
	c.freeBytes.Add(float64(size))
	c.liveBytes.Sub(float64(size))
}

// RecordFault implements memdebug.MetricsCollector.
func (c *Collector) RecordFault(kind memdebug.Fault) {
	c.faults.WithLabelValues(string(kind)).Inc()
}
