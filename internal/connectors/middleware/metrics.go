package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeMisuse   = "misuse"
	outcomeRejected = "rate_limited"
)

var (
	callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hub",
		Subsystem: "provider",
		Name:      "calls_total",
		Help:      "Adapter calls by source, operation and outcome",
	}, []string{"source", "op", "outcome"})

	callDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hub",
		Subsystem: "provider",
		Name:      "call_duration_seconds",
		Help:      "Adapter call latency including retries",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source", "op"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hub",
		Subsystem: "provider",
		Name:      "retries_total",
		Help:      "Retries performed after transient failures",
	}, []string{"source", "op"})

	degradedGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hub",
		Subsystem: "provider",
		Name:      "degraded",
		Help:      "1 when the last call to the source failed, 0 otherwise",
	}, []string{"source"})
)
