package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Capture metrics
	CapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookrelay_captures_total",
			Help: "Total number of webhook capture attempts",
		},
		[]string{"status"},
	)

	CaptureBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookrelay_capture_bytes_total",
			Help: "Total bytes of webhook body data captured",
		},
	)

	// Forwarding metrics
	ForwardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookrelay_forwards_total",
			Help: "Total number of forwarding attempts by outcome",
		},
		[]string{"status"},
	)

	ForwardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hookrelay_forward_duration_seconds",
			Help:    "Duration of forwarding attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ForwardQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hookrelay_forward_queue_depth",
			Help: "Current depth of the forwarding queue",
		},
	)

	ForwardsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookrelay_forwards_dropped_total",
			Help: "Forwarding jobs dropped because the queue was full",
		},
	)

	// Storage metrics
	StorageErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hookrelay_storage_errors_total",
			Help: "Total number of event store errors",
		},
	)

	DeletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookrelay_deletes_total",
			Help: "Total number of bulk delete operations",
		},
		[]string{"scope"},
	)
)
