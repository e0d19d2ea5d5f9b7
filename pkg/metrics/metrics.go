package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Skip reasons used as the "reason" label of ListingsSkipped.
const (
	SkipNoTime      = "no_time"
	SkipBadTime     = "unparsable_time"
	SkipStale       = "stale"
	SkipExtraction  = "extraction"
	SkipEmptyRegion = "empty_page"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ListingsCollected   *prometheus.CounterVec
	ListingsSkipped     *prometheus.CounterVec
	FetchErrors         *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	TableRows           prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New registers the metrics on reg. A nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ListingsCollected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listings_collected_total",
				Help: "Listings that passed the recency filter.",
			},
			[]string{"region"},
		),
		ListingsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listings_skipped_total",
				Help: "Listing cards dropped before normalization.",
			},
			[]string{"reason"},
		),
		FetchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetch_errors_total",
				Help: "Region pages that could not be fetched or parsed.",
			},
			[]string{"region"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fetch_duration_seconds",
				Help:    "Duration of region page fetches.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"region"},
		),
		TableRows: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "listings_table_rows",
				Help: "Rows in the listings table after the last merge.",
			},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Push sends the current values to a Prometheus pushgateway under job.
func (m *Metrics) Push(ctx context.Context, gatewayURL, job string) error {
	return push.New(gatewayURL, job).Gatherer(m.registry).PushContext(ctx)
}
