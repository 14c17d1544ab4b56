package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBotError_IsMatchesByCode(t *testing.T) {
	err := ErrSlotAlreadyBooked.WithContext(map[string]interface{}{"date": "2025-08-12"})

	assert.True(t, stderrors.Is(err, ErrSlotAlreadyBooked))
	assert.False(t, stderrors.Is(err, ErrNoValidTimes))

	wrapped := fmt.Errorf("create booking: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrSlotAlreadyBooked))
}

func TestBotError_WithErrorKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := ErrStorageWrite.WithError(cause).WithContext("bookings.json")

	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, stderrors.Is(err, ErrStorageWrite))
	assert.Equal(t, "STORAGE_WRITE: не удалось сохранить данные: disk full", err.Error())
	assert.Equal(t, "bookings.json", err.Context)

	// Предопределенная ошибка не изменяется
	assert.Nil(t, ErrStorageWrite.Err)
	assert.Nil(t, ErrStorageWrite.Context)
}

func TestGetBotError(t *testing.T) {
	err := fmt.Errorf("outer: %w", Wrap(stderrors.New("inner"), "CUSTOM", "custom failure"))

	botErr, ok := GetBotError(err)
	assert.True(t, ok)
	assert.Equal(t, "CUSTOM", botErr.Code)

	_, ok = GetBotError(stderrors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, "CUSTOM: custom failure: inner", botErr.Error())
}
