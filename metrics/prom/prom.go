// Package prom exports cache signals to Prometheus.
package prom

import (
	"time"

	"github.com/IvanBrykalov/cachecore/cache"
	"github.com/IvanBrykalov/cachecore/removal"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics with Prometheus collectors.
// All Prometheus metric types are goroutine-safe, and so is Adapter.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	loads     *prometheus.CounterVec
	loadTime  prometheus.Histogram
	evictions *prometheus.CounterVec
	entries   prometheus.Gauge
	weight    prometheus.Gauge
}

// New constructs and registers an adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels,
		})
	}

	a := &Adapter{
		hits:   counter("hits_total", "Cache hits"),
		misses: counter("misses_total", "Cache misses"),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "loads_total",
			Help: "Loader invocations by result", ConstLabels: constLabels,
		}, []string{"result"}),
		loadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: sub, Name: "load_duration_seconds",
			Help: "Time spent in loaders", ConstLabels: constLabels,
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "evictions_total",
			Help: "Automatic removals by cause", ConstLabels: constLabels,
		}, []string{"cause"}),
		entries: gauge("size_entries", "Number of resident entries"),
		weight:  gauge("size_weight", "Total resident weight"),
	}
	reg.MustRegister(a.hits, a.misses, a.loads, a.loadTime, a.evictions, a.entries, a.weight)
	return a
}

func (a *Adapter) Hit()  { a.hits.Inc() }
func (a *Adapter) Miss() { a.misses.Inc() }

func (a *Adapter) LoadSuccess(d time.Duration) {
	a.loads.WithLabelValues("success").Inc()
	a.loadTime.Observe(d.Seconds())
}

func (a *Adapter) LoadFailure(d time.Duration) {
	a.loads.WithLabelValues("failure").Inc()
	a.loadTime.Observe(d.Seconds())
}

// Evict counts an automatic removal, labelled with the lower-case cause.
func (a *Adapter) Evict(c removal.Cause) {
	a.evictions.WithLabelValues(c.String()).Inc()
}

// Size updates gauges for the number of entries and total weight.
func (a *Adapter) Size(entries, weight int64) {
	a.entries.Set(float64(entries))
	a.weight.Set(float64(weight))
}

var _ cache.Metrics = (*Adapter)(nil)
