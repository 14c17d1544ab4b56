package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"slot_booking_bot/internal/storage"
	"slot_booking_bot/pkg/metrics"
)

// Статусы health check
const (
	StatusHealthy   = "healthy"
	StatusWarning   = "warning"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker проверяет состояние системы
type HealthChecker struct {
	users     storage.UserRepository
	startTime time.Time
	version   string
}

// NewHealthChecker создает новый health checker. users может быть nil,
// тогда хранилище не проверяется.
func NewHealthChecker(users storage.UserRepository, version string) *HealthChecker {
	return &HealthChecker{
		users:     users,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthHandler обрабатывает запросы health check
func (h *HealthChecker) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	overallStatus := StatusHealthy

	if err := h.checkStorage(ctx); err != nil {
		checks["storage"] = StatusUnhealthy + ": " + err.Error()
		overallStatus = StatusUnhealthy
	} else {
		checks["storage"] = StatusHealthy
	}

	for name, status := range map[string]string{
		"memory":     h.checkMemory(),
		"goroutines": h.checkGoroutines(),
	} {
		checks[name] = status
		if status != StatusHealthy && overallStatus == StatusHealthy {
			overallStatus = StatusWarning
		}
	}

	response := HealthResponse{
		Status:    overallStatus,
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Checks:    checks,
	}

	w.Header().Set("Content-Type", "application/json")
	if overallStatus == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkStorage читает пользователей, чтобы убедиться, что хранилище доступно
func (h *HealthChecker) checkStorage(ctx context.Context) error {
	if h.users == nil {
		return nil
	}
	_, err := h.users.ListAllUsers(ctx)
	return err
}

func (h *HealthChecker) checkMemory() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics.MemoryUsage.Set(float64(m.Alloc))

	const warningLimit = 500 * 1024 * 1024   // 500MB
	const criticalLimit = 1024 * 1024 * 1024 // 1GB

	switch {
	case m.Alloc > criticalLimit:
		return "critical: memory usage > 1GB"
	case m.Alloc > warningLimit:
		return "warning: memory usage > 500MB"
	}
	return StatusHealthy
}

func (h *HealthChecker) checkGoroutines() string {
	count := runtime.NumGoroutine()

	metrics.GoroutinesCount.Set(float64(count))

	switch {
	case count > 1000:
		return "critical: too many goroutines"
	case count > 100:
		return "warning: high goroutine count"
	}
	return StatusHealthy
}
