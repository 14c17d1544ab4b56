package middleware

import (
	"net/http"
	"strconv"
	"time"

	"slot_booking_bot/pkg/metrics"
)

// PrometheusMiddleware добавляет метрики Prometheus для HTTP запросов
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := NewStatusRecorder(w)
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		endpoint := endpointLabel(r.URL.Path)

		metrics.RecordHTTPRequest(r.Method, endpoint, strconv.Itoa(wrapped.StatusCode))
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, endpoint).Observe(duration)
	})
}

// endpointLabel ограничивает кардинальность метки endpoint известными путями
func endpointLabel(path string) string {
	switch path {
	case "/webhook", "/health", "/metrics":
		return path
	default:
		return "other"
	}
}

// StatusRecorder оборачивает http.ResponseWriter для захвата статус-кода
type StatusRecorder struct {
	http.ResponseWriter
	StatusCode int
}

// NewStatusRecorder создает StatusRecorder со статусом 200 по умолчанию
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

// WriteHeader захватывает статус-код ответа
func (rw *StatusRecorder) WriteHeader(code int) {
	rw.StatusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
