// Package metrics defines the Prometheus collectors exported by the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "themefather"

// Synthesis outcomes used as the "outcome" label.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
	OutcomeBusy    = "busy"
)

var (
	SynthesisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "synthesis",
			Name:      "total",
			Help:      "Total number of theme synthesis calls by outcome",
		},
		[]string{"platform", "outcome"},
	)

	SynthesisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "synthesis",
			Name:      "duration_seconds",
			Help:      "Theme synthesis duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"platform"},
	)

	StreamChunks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "chunks_total",
			Help:      "Total number of completion stream chunks received",
		},
	)

	ThemeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "synthesis",
			Name:      "theme_bytes",
			Help:      "Size of generated themes in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 2, 8),
		},
	)

	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Total number of inbound chat events by kind",
		},
		[]string{"kind"},
	)

	SendErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "send_errors_total",
			Help:      "Total number of failed outbound messages",
		},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active_requests",
			Help:      "Number of users with an in-progress theme request",
		},
	)
)
