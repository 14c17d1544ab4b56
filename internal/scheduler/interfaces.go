package scheduler

import (
	"context"
	"fmt"
	"time"
)

// Reminder описывает напоминание об одном забронированном времени
type Reminder struct {
	UserID int64
	Date   string
	Time   string
}

// Key возвращает уникальный ключ напоминания
func (r Reminder) Key() string {
	return fmt.Sprintf("%d|%s|%s", r.UserID, r.Date, r.Time)
}

// StartsAt возвращает момент начала забронированного времени в loc
func (r Reminder) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", r.Date+" "+r.Time, loc)
}

// ReminderScheduler определяет интерфейс для планирования напоминаний
type ReminderScheduler interface {
	// Schedule планирует напоминание; повторный вызов с тем же ключом заменяет таймер
	Schedule(ctx context.Context, reminder Reminder, notifyAt time.Time) error

	// Cancel отменяет запланированное напоминание
	Cancel(ctx context.Context, reminder Reminder) error

	// Stop останавливает планировщик
	Stop() error
}

// ReminderSender определяет интерфейс для отправки напоминаний
type ReminderSender interface {
	SendReminder(ctx context.Context, reminder Reminder) error
}
