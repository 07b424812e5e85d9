package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	pairingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawpark_pairings_total",
			Help: "Mutual connection pairings attempted, by outcome.",
		},
		[]string{"outcome"},
	)

	ratingsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pawpark_ratings_total",
		Help: "Park ratings accepted.",
	})
)

// Init registers all metrics with the default registry.
func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration,
		pairingsTotal, ratingsTotal)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePairing counts one pairing attempt. Outcome is "ok" or "error".
func ObservePairing(outcome string) {
	pairingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRating counts one accepted park rating.
func ObserveRating() {
	ratingsTotal.Inc()
}

// Instrument wraps an HTTP handler with request count/latency/in-flight metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses per-resource path segments so that metric labels
// stay low-cardinality. Unknown shapes pass through unchanged.
func CanonicalPath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	seg := strings.Split(p, "/")
	switch {
	case len(seg) == 4 && seg[1] == "v1" && seg[2] == "parks":
		return "/v1/parks/:id"
	case len(seg) == 5 && seg[1] == "v1" && seg[2] == "parks" && seg[4] == "ratings":
		return "/v1/parks/:id/ratings"
	case len(seg) == 6 && seg[1] == "v1" && seg[2] == "me" && seg[3] == "favorites" && seg[5] == "toggle":
		return "/v1/me/favorites/:id/toggle"
	}
	return p
}

// statusWriter captures the response code written by the wrapped handler.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
