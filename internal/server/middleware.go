package server

import (
	"net/http"
	"time"

	"slot_booking_bot/internal/middleware"
	"slot_booking_bot/pkg/logger"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// loggingMiddleware присваивает запросу идентификатор и логирует результат
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := logger.ContextWithRequestID(r.Context(), requestID)
		wrapped := middleware.NewStatusRecorder(w)

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		s.logger.WithContext(ctx).Info("HTTP request completed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status_code", wrapped.StatusCode),
			logger.Duration("duration", time.Since(start)),
		)
	})
}

// securityHeadersMiddleware добавляет заголовки безопасности
func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}
