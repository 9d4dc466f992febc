// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts completed requests.
	// Labels:
	//   - method: HTTP method
	//   - route: gin route template, "unmatched" for 404s
	//   - status: response status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// AuthEvents counts authentication outcomes.
	// Labels:
	//   - event: "register", "login", "anonymous"
	//   - outcome: "success", "failure"
	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Total number of authentication attempts by outcome",
		},
		[]string{"event", "outcome"},
	)

	// ReportsCreated counts occupancy reports accepted by the aggregator.
	ReportsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_reports_created_total",
			Help: "Total number of occupancy reports created",
		},
	)

	// ImagesUploaded counts stored report images.
	ImagesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parking_report_images_uploaded_total",
			Help: "Total number of report images uploaded",
		},
	)

	// ImageUploadBytes tracks the size of stored report images.
	ImageUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parking_report_image_bytes",
			Help:    "Size of uploaded report images in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
		},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
