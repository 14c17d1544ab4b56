package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики бота бронирования
var (
	// Метрики обработки обновлений Telegram
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_updates_total",
			Help: "Общее количество обработанных обновлений Telegram",
		},
		[]string{"handler", "status"},
	)

	// Метрики пользователей
	UsersUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_bot_users_upserted_total",
			Help: "Общее количество сохранений пользователей",
		},
	)

	// Метрики бронирований
	BookingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_bookings_total",
			Help: "Общее количество бронирований по результату (created, merged)",
		},
		[]string{"result"},
	)

	BookingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_bookings_rejected_total",
			Help: "Количество отклоненных бронирований по причине",
		},
		[]string{"reason"},
	)

	// Метрики напоминаний
	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_reminders_sent_total",
			Help: "Общее количество отправленных напоминаний",
		},
		[]string{"status"},
	)

	ScheduledReminders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_bot_scheduled_reminders",
			Help: "Количество запланированных напоминаний",
		},
	)

	// Метрики хранилища
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_storage_operations_total",
			Help: "Общее количество операций с хранилищем",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_bot_storage_operation_duration_seconds",
			Help:    "Время выполнения операций с хранилищем в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Метрики производительности
	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_bot_memory_usage_bytes",
			Help: "Использование памяти в байтах",
		},
	)

	GoroutinesCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "booking_bot_goroutines_count",
			Help: "Количество активных горутин",
		},
	)

	// Метрики HTTP сервера
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_bot_http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_bot_http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordUpdate записывает метрику обработки обновления
func RecordUpdate(handler, status string) {
	UpdatesTotal.WithLabelValues(handler, status).Inc()
}

// RecordUserUpsert записывает метрику сохранения пользователя
func RecordUserUpsert() {
	UsersUpserted.Inc()
}

// RecordBooking записывает метрику бронирования (created или merged)
func RecordBooking(result string) {
	BookingsCreated.WithLabelValues(result).Inc()
}

// RecordBookingRejected записывает метрику отклоненного бронирования
func RecordBookingRejected(reason string) {
	BookingsRejected.WithLabelValues(reason).Inc()
}

// RecordReminder записывает метрику отправки напоминания
func RecordReminder(status string) {
	RemindersSent.WithLabelValues(status).Inc()
}

// RecordStorageOperation записывает метрику операции с хранилищем
func RecordStorageOperation(operation, status string, seconds float64) {
	StorageOperations.WithLabelValues(operation, status).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordHTTPRequest записывает метрику HTTP запроса
func RecordHTTPRequest(method, endpoint, status string) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
}
