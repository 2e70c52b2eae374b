package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram

	// Patient flow metrics
	FlowTransitions   *prometheus.CounterVec
	FlowWaitMinutes   prometheus.Histogram
	ChairsOccupied    prometheus.Gauge
	TransitionsDenied *prometheus.CounterVec

	// Lab workflow metrics
	LabTransitions    *prometheus.CounterVec
	LabBatchItems     *prometheus.CounterVec
	ContentDeliveries *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_processed_total",
			Help:      "Total number of successfully processed outbox events",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_failed_total",
			Help:      "Total number of failed outbox events",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_processing_duration_seconds",
			Help:      "Time spent processing outbox events",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),

		FlowTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_transitions_total",
			Help:      "Total number of patient flow stage transitions",
		}, []string{"from", "to"}),
		FlowWaitMinutes: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flow_wait_minutes",
			Help:      "Waiting room minutes observed at seat time",
			Buckets:   []float64{1, 5, 10, 15, 20, 30, 45, 60, 90},
		}),
		ChairsOccupied: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chairs_occupied",
			Help:      "Current number of occupied treatment chairs",
		}),
		TransitionsDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flow_transitions_denied_total",
			Help:      "Rejected patient flow transitions",
		}, []string{"from", "to"}),

		LabTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lab_order_transitions_total",
			Help:      "Total number of lab order status transitions",
		}, []string{"from", "to"}),
		LabBatchItems: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lab_batch_items_total",
			Help:      "Per-item outcomes of lab batch operations",
		}, []string{"operation", "outcome"}),
		ContentDeliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_deliveries_total",
			Help:      "Content delivery trigger outcomes",
		}, []string{"status"}),

		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
