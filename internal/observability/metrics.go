package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "waslhaa"

var (
	OrdersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "orders_created_total", Help: "Orders created"},
		[]string{"zone", "vehicle"},
	)
	OrderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "order_transitions_total", Help: "Order lifecycle actions by outcome"},
		[]string{"action", "result"},
	)
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "quotes_total", Help: "Fare quotes computed"},
		[]string{"vehicle", "same_village"},
	)
	QuotedPrice = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "quoted_price_major_units",
		Help:      "Distribution of quoted trip prices",
		Buckets:   []float64{20, 30, 50, 75, 100, 150, 200, 300, 400},
	})
	CatalogReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "catalog_reloads_total", Help: "Pricing catalog reload attempts"},
		[]string{"result"},
	)
	EventPublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_failures_total",
		Help:      "Order events that could not be published",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
