// metrics.go: Prometheus HTTP метрики для Catalog Module.
// Регистрирует метрики: cm_http_requests_total, cm_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики Catalog Module
var (
	// httpRequestsTotal: общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cm_http_requests_total",
			Help: "Общее количество HTTP-запросов к Catalog Module",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration: гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cm_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Catalog Module в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// normalizePath заменяет идентификаторы в пути на шаблоны.
// /api/v1/agents/0192…/details → /api/v1/agents/{id}/details
// /api/v1/files/eyJhbGci…/download → /api/v1/files/{token}/download
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		switch {
		case seg == "":
		case i > 0 && segments[i-1] == "files":
			segments[i] = "{token}"
		case uuid.Validate(seg) == nil:
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
