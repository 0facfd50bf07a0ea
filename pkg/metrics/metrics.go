// Package metrics holds the Prometheus collectors shared by the HTTP layer
// and the backend client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Registry = prometheus.NewRegistry()

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guardiao_web",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "guardiao_web",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	BackendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guardiao_web",
		Name:      "backend_requests_total",
		Help:      "Calls made to the GUARDIÃO API, by operation and outcome.",
	}, []string{"operation", "outcome"})

	BackendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "guardiao_web",
		Name:      "backend_request_duration_seconds",
		Help:      "Latency of calls to the GUARDIÃO API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	DashboardLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guardiao_web",
		Name:      "dashboard_loads_total",
		Help:      "Dashboard loads, split into fresh and stale (served from the previous snapshot).",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		BackendRequests,
		BackendDuration,
		DashboardLoads,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
