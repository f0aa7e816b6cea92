package reactive

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xariahdailstone/xarchat-reactive/internal"
)

// Metrics exports fire stack instrumentation to prometheus.
type Metrics struct {
	passes     prometheus.Counter
	dispatches prometheus.Histogram
	depth      prometheus.Histogram
	storms     prometheus.Counter
	panics     prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg, when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactive",
			Subsystem: "firestack",
			Name:      "passes_total",
			Help:      "Total number of outermost notification dispatches",
		}),
		dispatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reactive",
			Subsystem: "firestack",
			Name:      "pass_dispatches",
			Help:      "Guarded emissions entered per outermost dispatch",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		depth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reactive",
			Subsystem: "firestack",
			Name:      "pass_max_depth",
			Help:      "Deepest re-entrant nesting reached per outermost dispatch",
			Buckets:   prometheus.LinearBuckets(1, 2, 8),
		}),
		storms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactive",
			Subsystem: "firestack",
			Name:      "storms_total",
			Help:      "Dispatches that exceeded the configured storm limits",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "reactive",
			Subsystem: "listeners",
			Name:      "panics_total",
			Help:      "Listener panics recovered during dispatch",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.passes, m.dispatches, m.depth, m.storms, m.panics)
	}

	return m
}

// Instrument makes the context report to m. A nil m stops reporting.
func (c *Context) Instrument(m *Metrics) {
	if m == nil {
		c.rt.SetHooks(internal.Hooks{})
		return
	}

	c.rt.SetHooks(internal.Hooks{
		OnSettle: func(p internal.Pass) {
			m.passes.Inc()
			m.dispatches.Observe(float64(p.Count))
			m.depth.Observe(float64(p.MaxDepth))
		},
		OnStorm: func(internal.Pass) { m.storms.Inc() },
		OnPanic: func() { m.panics.Inc() },
	})
}
