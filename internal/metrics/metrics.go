package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Order rejection reasons
const (
	ReasonDishNotFound    = "dish_not_found"
	ReasonDishUnavailable = "dish_unavailable"
)

// Registry owns a private Prometheus registry and the collectors the HTTP
// layer and the order workflow record into.
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	OrdersCreated       prometheus.Counter
	OrderRejections     *prometheus.CounterVec
	OrderStatusUpdates  *prometheus.CounterVec
	EventPublishFailure prometheus.Counter
}

// NewRegistry registers the Go runtime, process and application collectors
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lovemenu_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lovemenu_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lovemenu_orders_created_total",
		Help: "Orders committed to storage.",
	})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lovemenu_order_rejections_total",
		Help: "Orders refused before storage, by reason.",
	}, []string{"reason"})
	statusUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lovemenu_order_status_updates_total",
		Help: "Order status changes, by new status.",
	}, []string{"status"})
	publishFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lovemenu_event_publish_failures_total",
		Help: "Order events that could not be published to RabbitMQ.",
	})

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests, httpDuration, ordersCreated, rejections, statusUpdates, publishFailures,
	)

	return &Registry{
		reg:                 r,
		HTTPRequests:        httpRequests,
		HTTPDuration:        httpDuration,
		OrdersCreated:       ordersCreated,
		OrderRejections:     rejections,
		OrderStatusUpdates:  statusUpdates,
		EventPublishFailure: publishFailures,
	}
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
