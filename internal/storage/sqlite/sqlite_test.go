package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot_booking_bot/internal/storage/models"
)

func setupStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	// Создаем временную базу данных
	s, err := New(":memory:")
	require.NoError(t, err, "Failed to create test storage")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	users, err := s.ListAllUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	free, err := s.IsSlotFree(ctx, "2025-08-12", "10:00")
	require.NoError(t, err)
	assert.True(t, free)

	user, err := s.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSQLiteStorage_UpsertUser(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, models.User{ID: 1, FirstName: "Max", Username: "max"}))
	require.NoError(t, s.UpsertUser(ctx, models.User{ID: 2, FirstName: "John", Username: "jojo"}))
	require.NoError(t, s.UpsertUser(ctx, models.User{ID: 1, FirstName: "Maxim", Username: "max_d"}))

	users, err := s.ListAllUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{
		{ID: 1, FirstName: "Maxim", Username: "max_d"},
		{ID: 2, FirstName: "John", Username: "jojo"},
	}, users)

	got, err := s.GetUser(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.User{ID: 2, FirstName: "John", Username: "jojo"}, *got)
}

func TestSQLiteStorage_CreateBookingMerge(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	first, err := s.CreateBooking(ctx, models.Booking{UserID: 1, Date: "2025-08-12", Times: []string{"10:00"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	other, err := s.CreateBooking(ctx, models.Booking{UserID: 2, Date: "2025-08-12", Times: []string{"12:00", "11:30"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), other.ID)
	assert.Equal(t, []string{"11:30", "12:00"}, other.Times)

	merged, err := s.CreateBooking(ctx, models.Booking{UserID: 1, Date: "2025-08-12", Times: []string{"09:00", "10:00", "9:5"}})
	require.NoError(t, err)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, []string{"09:00", "10:00"}, merged.Times)

	free, err := s.IsSlotFree(ctx, "2025-08-12", "09:00")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = s.IsSlotFree(ctx, "2025-08-13", "09:00")
	require.NoError(t, err)
	assert.True(t, free)
}

func TestSQLiteStorage_ListBookingsForDate(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()
	date := "2025-08-12"

	for _, b := range []models.Booking{
		{UserID: 2, Date: date, Times: []string{"12:00", "11:30"}},
		{UserID: 1, Date: date, Times: []string{"10:00"}},
		{UserID: 1, Date: date, Times: []string{"09:00", "10:00"}},
		{UserID: 2, Date: date, Times: []string{"11:00", "11:30"}},
		{UserID: 1, Date: "2025-08-11", Times: []string{"08:00"}},
	} {
		_, err := s.CreateBooking(ctx, b)
		require.NoError(t, err)
	}

	result, err := s.ListBookingsForDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, int64(1), result[0].UserID)
	assert.Equal(t, models.Booking{ID: 2, UserID: 1, Date: date, Times: []string{"09:00", "10:00"}}, result[0].Booking)
	assert.Equal(t, int64(2), result[1].UserID)
	assert.Equal(t, models.Booking{ID: 1, UserID: 2, Date: date, Times: []string{"11:00", "11:30", "12:00"}}, result[1].Booking)
}
