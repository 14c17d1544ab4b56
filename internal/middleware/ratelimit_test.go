package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot_booking_bot/pkg/logger"
)

func TestTokenBucket_Allow(t *testing.T) {
	tb := NewTokenBucket(2, 0)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow(), "bucket should be empty after capacity requests")
}

func TestTokenBucket_Refill(t *testing.T) {
	tb := NewTokenBucket(1, 100)

	require.True(t, tb.Allow())
	assert.Eventually(t, tb.Allow, time.Second, 5*time.Millisecond)
}

func TestRateLimiter_PerKey(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, logger.Nop())
	defer rl.Close()

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are limited independently")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour, logger.Nop())
	defer rl.Close()

	rl.Allow("a")
	rl.Allow("b")

	assert.Equal(t, 0, rl.cleanup(time.Now().Add(-time.Minute)))
	assert.Equal(t, 2, rl.cleanup(time.Now().Add(time.Minute)))

	// После очистки ключ получает новый полный bucket
	assert.True(t, rl.Allow("a"))

	rl.Close()
	rl.Close()
}

func TestHTTPRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour, logger.Nop())
	defer rl.Close()

	handler := HTTPRateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.10:1234"
	assert.Equal(t, "192.168.1.10", RealIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", RealIP(req))

	req.Header.Set("CF-Connecting-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", RealIP(req))
}

func TestPrometheusMiddleware_RecordsStatus(t *testing.T) {
	handler := PrometheusMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unknown/path", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "other", endpointLabel("/unknown/path"))
	assert.Equal(t, "/webhook", endpointLabel("/webhook"))
}
