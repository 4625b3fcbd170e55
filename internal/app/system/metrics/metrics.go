// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuthzDecisions counts gate outcomes by operation and result
	// (allowed, unauthenticated, forbidden, not_found, error).
	AuthzDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "authz_decisions_total",
		Help:      "Authorization gate decisions by operation and outcome.",
	}, []string{"op", "outcome"})

	// CascadeDeletes counts completed cascading deletes by entity kind.
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "folio",
		Name:      "cascade_deletes_total",
		Help:      "Cascading deletes committed, by entity kind.",
	}, []string{"kind"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "folio",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, route pattern and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware observes request latency labelled by the matched chi route
// pattern, so /api/articles/{id} is one series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
