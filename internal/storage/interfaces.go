package storage

import (
	"context"

	"slot_booking_bot/internal/storage/models"
)

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	// GetUser возвращает nil без ошибки, если пользователь не найден
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpsertUser(ctx context.Context, user models.User) error
	ListAllUsers(ctx context.Context) ([]models.User, error)
}

// BookingRepository определяет интерфейс для работы с бронированиями
type BookingRepository interface {
	IsSlotFree(ctx context.Context, date, time string) (bool, error)
	CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error)
	ListBookingsForDate(ctx context.Context, date string) ([]models.DateBooking, error)
}

// Repository объединяет все репозитории в единый интерфейс
type Repository interface {
	UserRepository
	BookingRepository
	Close() error
}
