package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vc_http_requests_total",
			Help: "Total HTTP requests served by the site",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vc_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Metrics returns middleware recording Prometheus request counts and latencies.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath collapses per-record and asset paths so label cardinality
// stays bounded.
// /actions/contacts/contact_1700000000000 → /actions/contacts/{key}
// /actions/contacts/contact_1700000000000/delete → /actions/contacts/{key}/delete
// /static/css/site.css → /static/*
func normalizePath(path string) string {
	switch path {
	case "/", "/healthz", "/metrics", "/debug/perf",
		"/actions/login", "/actions/logout",
		"/actions/contacts", "/actions/signups", "/actions/messages":
		return path
	}

	for _, prefix := range []string{"/static/", "/views/", "/data/"} {
		if strings.HasPrefix(path, prefix) {
			return prefix + "*"
		}
	}

	const contactsPrefix = "/actions/contacts/"
	if rest, ok := strings.CutPrefix(path, contactsPrefix); ok && rest != "" {
		if _, suffix, found := strings.Cut(rest, "/"); found {
			return contactsPrefix + "{key}/" + suffix
		}
		return contactsPrefix + "{key}"
	}

	return "other"
}
