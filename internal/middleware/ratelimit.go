package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"slot_booking_bot/pkg/logger"
)

// TokenBucket реализует алгоритм Token Bucket для rate limiting
type TokenBucket struct {
	capacity   float64
	tokens     float64
	refillRate float64 // токенов в секунду
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket создает новый TokenBucket
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow проверяет, доступен ли токен
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}

	return false
}

// RateLimiter ограничивает количество запросов по ключу (IP адрес)
type RateLimiter struct {
	limiters   map[string]*TokenBucket
	lastAccess map[string]time.Time
	mu         sync.Mutex
	capacity   int
	refillRate float64
	logger     *logger.Logger

	cleanupInterval time.Duration
	idleTimeout     time.Duration
	done            chan struct{}
	closeOnce       sync.Once
}

// NewRateLimiter создает rate limiter на requests запросов за duration
func NewRateLimiter(requests int, duration time.Duration, log *logger.Logger) *RateLimiter {
	rl := &RateLimiter{
		limiters:        make(map[string]*TokenBucket),
		lastAccess:      make(map[string]time.Time),
		capacity:        requests,
		refillRate:      float64(requests) / duration.Seconds(),
		logger:          log,
		cleanupInterval: 5 * time.Minute,
		idleTimeout:     10 * time.Minute,
		done:            make(chan struct{}),
	}

	go rl.cleanupRoutine()

	return rl
}

// GetLimiter возвращает bucket для ключа, создавая его при необходимости
func (rl *RateLimiter) GetLimiter(key string) *TokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = NewTokenBucket(rl.capacity, rl.refillRate)
		rl.limiters[key] = limiter
	}

	rl.lastAccess[key] = time.Now()
	return limiter
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	return rl.GetLimiter(key).Allow()
}

func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now().Add(-rl.idleTimeout))
		case <-rl.done:
			return
		}
	}
}

// cleanup удаляет limiters, к которым не обращались с cutoff
func (rl *RateLimiter) cleanup(cutoff time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var cleaned int
	for key, lastAccessed := range rl.lastAccess {
		if lastAccessed.Before(cutoff) {
			delete(rl.limiters, key)
			delete(rl.lastAccess, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		rl.logger.Debug("Cleaned up rate limiters",
			logger.Int("cleaned_count", cleaned),
			logger.Int("remaining_count", len(rl.limiters)),
		)
	}

	return cleaned
}

// Close останавливает очистку; повторный вызов безопасен
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
	})
}

// HTTPRateLimitMiddleware создает HTTP middleware для rate limiting по IP
func HTTPRateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := RealIP(r)

			if !limiter.Allow(key) {
				limiter.logger.Warn("Rate limit exceeded",
					logger.String("ip", key),
					logger.String("path", r.URL.Path),
				)
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RealIP извлекает IP адрес клиента с учетом прокси
func RealIP(r *http.Request) string {
	headers := []string{
		"CF-Connecting-IP", // Cloudflare
		"X-Forwarded-For",
		"X-Real-IP", // nginx
	}

	for _, header := range headers {
		ip := r.Header.Get(header)
		if ip == "" {
			continue
		}
		// X-Forwarded-For может содержать несколько IP через запятую
		first, _, _ := strings.Cut(ip, ",")
		return strings.TrimSpace(first)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
