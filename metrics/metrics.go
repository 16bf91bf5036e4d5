// ABOUTME: Prometheus collectors for HTTP traffic, directory syncs, and sign-ins
// ABOUTME: Exposes chi middleware and the /metrics handler
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ResultSuccess labels a sync or sign-in that succeeded.
const ResultSuccess = "success"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "torque_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route"})

	httpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "torque_http_errors_total",
		Help: "Total number of HTTP requests resulting in server errors.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "torque_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	syncAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "torque_directory_sync_total",
		Help: "Contact directory sync attempts by result.",
	}, []string{"result"})

	syncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "torque_directory_sync_duration_seconds",
		Help:    "Histogram of contact directory sync latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	syncContacts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "torque_directory_contacts",
		Help: "Number of contacts returned by the last successful sync.",
	})

	syncInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "torque_directory_sync_in_flight",
		Help: "1 while a contact directory sync is outstanding.",
	})

	authEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "torque_auth_events_total",
		Help: "Identity provider operations by operation and result.",
	}, []string{"op", "result"})

	dbLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "torque_db_latency_seconds",
		Help:    "Histogram of database operation latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "route"})
)

// unmatchedRoute labels requests no route matched, so raw paths never become labels.
const unmatchedRoute = "unmatched"

// Middleware records request metrics labelled by chi route pattern.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// chi fills in the pattern while routing, so read it afterwards.
			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			statusCode := strconv.Itoa(status)

			httpRequestsTotal.WithLabelValues(r.Method, route).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route, statusCode).Observe(time.Since(start).Seconds())
			if status >= http.StatusInternalServerError {
				httpErrorsTotal.WithLabelValues(r.Method, route, statusCode).Inc()
			}
		})
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SyncStarted marks a directory sync as outstanding.
func SyncStarted() {
	syncInFlight.Set(1)
}

// ObserveSync records a finished directory sync. result is ResultSuccess or the
// failure kind.
func ObserveSync(result string, start time.Time, contacts int) {
	syncInFlight.Set(0)
	syncAttemptsTotal.WithLabelValues(result).Inc()
	syncDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	if result == ResultSuccess {
		syncContacts.Set(float64(contacts))
	}
}

// ObserveAuth counts an identity provider operation.
func ObserveAuth(op string, err error) {
	result := ResultSuccess
	if err != nil {
		result = "failure"
	}
	authEventsTotal.WithLabelValues(op, result).Inc()
}

// ObserveDBLatency records database latency for a given operation, associating it with request labels when available.
func ObserveDBLatency(ctx context.Context, operation string, start time.Time) {
	dbLatency.WithLabelValues(operation, routeFromContext(ctx)).Observe(time.Since(start).Seconds())
}

// routeFromContext reads the chi pattern matched so far. Calls made outside
// a routed request are labelled "unknown".
func routeFromContext(ctx context.Context) string {
	rctx := chi.RouteContext(ctx)
	if rctx == nil {
		return "unknown"
	}
	if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

func routePattern(r *http.Request) string {
	return routeFromContext(r.Context())
}
