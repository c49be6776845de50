// Package metrics exports per-call prometheus metrics for the API client.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "guerrillamail"

// Collector records one counter increment and one duration observation per
// API call. It implements api.CallObserver.
type Collector struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Collector and registers it with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "calls_total",
				Help:      "Total API calls by function and outcome.",
			},
			[]string{"function", "outcome", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "call_duration_seconds",
				Help:      "API call duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"function", "outcome"},
		),
	}

	for _, col := range []prometheus.Collector{c.calls, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveCall records a completed call. A zero statusCode means no response
// was received.
func (c *Collector) ObserveCall(function, outcome string, statusCode int, duration time.Duration) {
	status := "none"
	if statusCode != 0 {
		status = strconv.Itoa(statusCode)
	}
	c.calls.WithLabelValues(function, outcome, status).Inc()
	c.duration.WithLabelValues(function, outcome).Observe(duration.Seconds())
}
