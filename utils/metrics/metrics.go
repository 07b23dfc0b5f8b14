package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "adjustments_total",
		Help:      "Completed stock adjustments by reason and outcome.",
	}, []string{"reason", "outcome"})

	CASConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "cas_conflicts_total",
		Help:      "Optimistic-lock write conflicts that triggered a retry.",
	})

	ReservationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inventory",
		Name:      "reservations_total",
		Help:      "Reservation lifecycle transitions.",
	}, []string{"event"})

	AdjustmentRetries = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "inventory",
		Name:      "adjustment_retries",
		Help:      "Retries spent per successful adjustment.",
		Buckets:   []float64{0, 1, 2, 3, 5, 8},
	})
)
