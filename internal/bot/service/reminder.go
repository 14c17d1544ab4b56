package service

import (
	"context"
	"fmt"

	"slot_booking_bot/internal/scheduler"

	"github.com/go-telegram/bot"
)

// ReminderSender отправляет напоминания о бронированиях через Telegram
type ReminderSender struct {
	messenger Messenger
}

var _ scheduler.ReminderSender = (*ReminderSender)(nil)

// NewReminderSender создает отправителя напоминаний
func NewReminderSender(messenger Messenger) *ReminderSender {
	return &ReminderSender{messenger: messenger}
}

// SendReminder отправляет пользователю напоминание о забронированном времени.
// В личном чате chat_id совпадает с id пользователя.
func (r *ReminderSender) SendReminder(ctx context.Context, reminder scheduler.Reminder) error {
	params := &bot.SendMessageParams{
		ChatID: reminder.UserID,
		Text:   fmt.Sprintf("Напоминание: вы записаны на %s в %s.", reminder.Date, reminder.Time),
	}

	_, err := r.messenger.SendMessage(ctx, params)
	return err
}
