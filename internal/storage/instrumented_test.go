package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot_booking_bot/internal/storage/models"
	"slot_booking_bot/pkg/logger"
)

// stubRepository возвращает заданную ошибку из каждой операции
type stubRepository struct {
	err    error
	calls  []string
	closed bool
}

func (s *stubRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.calls = append(s.calls, "GetUser")
	if s.err != nil {
		return nil, s.err
	}
	return &models.User{ID: id}, nil
}

func (s *stubRepository) UpsertUser(ctx context.Context, user models.User) error {
	s.calls = append(s.calls, "UpsertUser")
	return s.err
}

func (s *stubRepository) ListAllUsers(ctx context.Context) ([]models.User, error) {
	s.calls = append(s.calls, "ListAllUsers")
	return []models.User{}, s.err
}

func (s *stubRepository) IsSlotFree(ctx context.Context, date, t string) (bool, error) {
	s.calls = append(s.calls, "IsSlotFree")
	return s.err == nil, s.err
}

func (s *stubRepository) CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error) {
	s.calls = append(s.calls, "CreateBooking")
	if s.err != nil {
		return nil, s.err
	}
	booking.ID = 1
	return &booking, nil
}

func (s *stubRepository) ListBookingsForDate(ctx context.Context, date string) ([]models.DateBooking, error) {
	s.calls = append(s.calls, "ListBookingsForDate")
	return []models.DateBooking{}, s.err
}

func (s *stubRepository) Close() error {
	s.closed = true
	return nil
}

func TestInstrument_PassesThrough(t *testing.T) {
	stub := &stubRepository{}
	repo := Instrument(stub, logger.Nop())
	ctx := context.Background()

	user, err := repo.GetUser(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)

	require.NoError(t, repo.UpsertUser(ctx, models.User{ID: 5}))
	_, err = repo.ListAllUsers(ctx)
	require.NoError(t, err)

	free, err := repo.IsSlotFree(ctx, "2025-08-12", "10:00")
	require.NoError(t, err)
	assert.True(t, free)

	booking, err := repo.CreateBooking(ctx, models.Booking{UserID: 5, Date: "2025-08-12", Times: []string{"10:00"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), booking.ID)

	_, err = repo.ListBookingsForDate(ctx, "2025-08-12")
	require.NoError(t, err)

	require.NoError(t, repo.Close())
	assert.True(t, stub.closed)
	assert.Equal(t, []string{
		"GetUser", "UpsertUser", "ListAllUsers", "IsSlotFree", "CreateBooking", "ListBookingsForDate",
	}, stub.calls)
}

func TestInstrument_LogsErrors(t *testing.T) {
	boom := errors.New("boom")
	var buf bytes.Buffer
	repo := Instrument(&stubRepository{err: boom}, logger.NewWithWriter(logger.LevelDebug, &buf))

	_, err := repo.CreateBooking(context.Background(), models.Booking{UserID: 1})
	assert.ErrorIs(t, err, boom)

	assert.Contains(t, buf.String(), "Storage operation failed")
	assert.Contains(t, buf.String(), "create_booking")
}
