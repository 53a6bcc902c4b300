package harvest

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	items    *prometheus.CounterVec
	inflight prometheus.Gauge
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "repograph",
			Subsystem: "harvest",
			Name:      "items_total",
			Help:      "Work items finished, by outcome.",
		}, []string{"outcome"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "repograph",
			Subsystem: "harvest",
			Name:      "inflight",
			Help:      "Pipelines currently executing.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "repograph",
			Subsystem: "harvest",
			Name:      "duration_seconds",
			Help:      "Time spent mirroring and summarizing one repository.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.items, m.inflight, m.duration)
	}
	return m
}
