// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "travel_agent"

var (
	// ResearchLookups counts collector outcomes: no_key, cached, ok, empty, unavailable.
	ResearchLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "research_lookups_total",
			Help:      "Destination research lookups by outcome.",
		},
		[]string{"outcome"},
	)

	// Syntheses counts itinerary generations: ok, provider_error, transport_error.
	Syntheses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syntheses_total",
			Help:      "Itinerary synthesis calls by outcome.",
		},
		[]string{"outcome"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_seconds",
			Help:      "Latency of outbound provider calls.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)

	CalendarExports = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_exports_total",
			Help:      "Calendar files produced.",
		},
	)

	CalendarDayMismatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_day_mismatches_total",
			Help:      "Day markers whose written number differed from their position.",
		},
	)
)
