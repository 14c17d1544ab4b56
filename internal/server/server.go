package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"slot_booking_bot/internal/config"
	"slot_booking_bot/internal/middleware"
	"slot_booking_bot/internal/storage"
	"slot_booking_bot/pkg/logger"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// maxWebhookBody ограничивает размер тела webhook запроса
	maxWebhookBody = 4 << 20

	updateTimeout   = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

// UpdateHandler обрабатывает одно обновление Telegram
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, bot *tgbot.Bot, update *tgmodels.Update)
}

// Server представляет HTTP сервер с middleware
type Server struct {
	httpServer    *http.Server
	config        *config.Config
	logger        *logger.Logger
	rateLimiter   *middleware.RateLimiter
	healthChecker *HealthChecker
	updates       UpdateHandler
	telegramBot   *tgbot.Bot
}

// New создает новый HTTP сервер
func New(
	cfg *config.Config,
	log *logger.Logger,
	updates UpdateHandler,
	telegramBot *tgbot.Bot,
	users storage.UserRepository,
	version string,
) *Server {
	rateLimit := cfg.Server.RateLimit
	if rateLimit <= 0 {
		rateLimit = 100
	}

	s := &Server{
		config:        cfg,
		logger:        log,
		rateLimiter:   middleware.NewRateLimiter(rateLimit, time.Minute, log),
		healthChecker: NewHealthChecker(users, version),
		updates:       updates,
		telegramBot:   telegramBot,
	}

	s.httpServer = &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        s.Handler(),
		ReadTimeout:    durationOr(cfg.Server.ReadTimeout, 30*time.Second),
		WriteTimeout:   durationOr(cfg.Server.WriteTimeout, 30*time.Second),
		IdleTimeout:    durationOr(cfg.Server.IdleTimeout, 120*time.Second),
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	return s
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

// Handler возвращает маршруты сервера вместе с middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.healthChecker.HealthHandler)
	mux.Handle("/webhook", s.secretTokenMiddleware(http.HandlerFunc(s.handleWebhook)))
	mux.Handle("/metrics", promhttp.Handler())

	return s.applyMiddleware(mux)
}

// applyMiddleware применяет middleware; последний добавленный выполняется первым
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	h := handler
	h = middleware.PrometheusMiddleware(h)
	h = middleware.HTTPRateLimitMiddleware(s.rateLimiter)(h)
	h = s.loggingMiddleware(h)
	h = s.securityHeadersMiddleware(h)
	return h
}

// handleWebhook обрабатывает Telegram webhook
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := s.logger.WithContext(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var update tgmodels.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&update); err != nil {
		log.Warn("Failed to decode Telegram update", logger.Error(err))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), updateTimeout)
	defer cancel()

	s.updates.HandleUpdate(ctx, s.telegramBot, &update)

	log.Debug("Webhook processed",
		logger.Int64("update_id", update.ID),
		logger.Duration("processing_time", time.Since(start)),
	)

	w.WriteHeader(http.StatusOK)
}

// Start запускает сервер и блокируется до отмены ctx или ошибки
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", logger.String("addr", s.httpServer.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Close()
		return err
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown корректно завершает работу сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.rateLimiter.Close()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Error during server shutdown", logger.Error(err))
		return err
	}

	s.logger.Info("HTTP server shut down successfully")
	return nil
}
