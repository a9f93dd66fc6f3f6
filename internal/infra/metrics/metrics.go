// Package metrics holds the relay's Prometheus collectors, registered on the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Subscription removal reasons.
const (
	RemovedByClient           = "unsubscribe"
	RemovedByPermanentFailure = "permanent_failure"
)

// Delivery outcomes.
const (
	DeliveryDelivered = "delivered"
	DeliveryTransient = "transient"
	DeliveryPermanent = "permanent"
)

var (
	// Subscription Metrics
	SubscriptionsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pushrelay_subscriptions_registered_total",
			Help: "Total number of subscriptions registered",
		},
	)

	SubscriptionsRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushrelay_subscriptions_removed_total",
			Help: "Total number of subscriptions removed",
		},
		[]string{"reason"}, // "unsubscribe", "permanent_failure"
	)

	// Queue Metrics
	MessagesQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pushrelay_messages_queued_total",
			Help: "Total number of messages appended to a queue",
		},
	)

	MessagesDrained = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pushrelay_messages_drained_total",
			Help: "Total number of messages returned to polling clients",
		},
	)

	MessagesPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pushrelay_messages_purged_total",
			Help: "Total number of messages deleted by the retention sweep",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pushrelay_retention_sweep_duration_seconds",
			Help:    "Duration of retention sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Push Metrics
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pushrelay_deliveries_total",
			Help: "Total number of Web Push attempts by outcome",
		},
		[]string{"outcome"},
	)

	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pushrelay_delivery_duration_seconds",
			Help:    "Duration of Web Push requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pushrelay_push_circuit_breaker_state",
			Help: "Push service circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"host"},
	)
)

// ObserveDelivery records one push attempt.
func ObserveDelivery(outcome string, seconds float64) {
	Deliveries.WithLabelValues(outcome).Inc()
	DeliveryDuration.Observe(seconds)
}
