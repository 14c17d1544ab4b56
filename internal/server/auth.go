package server

import (
	"crypto/subtle"
	"net/http"

	"slot_booking_bot/internal/middleware"
	"slot_booking_bot/pkg/logger"
)

// secretTokenHeader передается Telegram в каждом webhook запросе,
// если при setWebhook был указан secret_token
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// secretTokenMiddleware проверяет секретный токен webhook. Без настроенного
// токена запросы пропускаются.
func (s *Server) secretTokenMiddleware(next http.Handler) http.Handler {
	expected := []byte(s.config.Telegram.SecretToken)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(expected) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		provided := []byte(r.Header.Get(secretTokenHeader))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			s.logger.WithContext(r.Context()).Warn("Invalid webhook secret token",
				logger.String("ip", middleware.RealIP(r)),
				logger.String("user_agent", r.UserAgent()),
			)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
