package storage

import (
	"context"
	"time"

	"slot_booking_bot/internal/storage/models"
	"slot_booking_bot/pkg/logger"
	"slot_booking_bot/pkg/metrics"
)

// instrumentedRepository записывает метрики Prometheus по каждой операции
type instrumentedRepository struct {
	next   Repository
	logger *logger.Logger
}

// Instrument оборачивает репозиторий сбором метрик и логированием ошибок
func Instrument(next Repository, log *logger.Logger) Repository {
	return &instrumentedRepository{next: next, logger: log}
}

func (r *instrumentedRepository) observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
		r.logger.Error("Storage operation failed",
			logger.String("operation", operation),
			logger.Error(err),
		)
	}
	metrics.RecordStorageOperation(operation, status, time.Since(start).Seconds())
}

func (r *instrumentedRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	start := time.Now()
	user, err := r.next.GetUser(ctx, id)
	r.observe("get_user", start, err)
	return user, err
}

func (r *instrumentedRepository) UpsertUser(ctx context.Context, user models.User) error {
	start := time.Now()
	err := r.next.UpsertUser(ctx, user)
	r.observe("upsert_user", start, err)
	return err
}

func (r *instrumentedRepository) ListAllUsers(ctx context.Context) ([]models.User, error) {
	start := time.Now()
	users, err := r.next.ListAllUsers(ctx)
	r.observe("list_all_users", start, err)
	return users, err
}

func (r *instrumentedRepository) IsSlotFree(ctx context.Context, date, t string) (bool, error) {
	start := time.Now()
	free, err := r.next.IsSlotFree(ctx, date, t)
	r.observe("is_slot_free", start, err)
	return free, err
}

func (r *instrumentedRepository) CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error) {
	start := time.Now()
	created, err := r.next.CreateBooking(ctx, booking)
	r.observe("create_booking", start, err)
	return created, err
}

func (r *instrumentedRepository) ListBookingsForDate(ctx context.Context, date string) ([]models.DateBooking, error) {
	start := time.Now()
	bookings, err := r.next.ListBookingsForDate(ctx, date)
	r.observe("list_bookings_for_date", start, err)
	return bookings, err
}

func (r *instrumentedRepository) Close() error {
	return r.next.Close()
}
