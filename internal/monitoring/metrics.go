package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/cabinet-be/internal/auth"
)

// HTTPRequests counts served requests by method, route pattern and status.
// Use RegisterMetrics to register this with a Prometheus registry.
var HTTPRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cabinet_http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"method", "route", "status"},
)

// HTTPDuration is the histogram for request latency.
// Use RegisterMetrics to register this with a Prometheus registry.
var HTTPDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "cabinet_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// SessionsSwept counts sessions removed by the expiry sweep.
var SessionsSwept = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "cabinet_sessions_swept_total",
		Help: "Total number of expired sessions removed",
	},
)

// RegisterMetrics registers the package metrics plus a gauge reporting the
// live session count of store. Panics if registration fails.
func RegisterMetrics(reg prometheus.Registerer, store auth.SessionStore) {
	reg.MustRegister(HTTPRequests)
	reg.MustRegister(HTTPDuration)
	reg.MustRegister(SessionsSwept)
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "cabinet_active_sessions",
			Help: "Number of live login sessions",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			n, err := store.Count(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to count sessions")
				return 0
			}
			return float64(n)
		},
	))
}

// Middleware records HTTPRequests and HTTPDuration for each request. Requests
// that match no route are labelled "unmatched".
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
