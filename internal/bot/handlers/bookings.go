package handlers

import (
	"context"
	"fmt"
	"strings"

	botservice "slot_booking_bot/internal/bot/service"
	"slot_booking_bot/internal/validation"
	"slot_booking_bot/pkg/logger"
	"slot_booking_bot/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// BookingsHandler обрабатывает команду /bookings [YYYY-MM-DD]
type BookingsHandler struct {
	service *botservice.Service
}

// NewBookingsHandler создает новый обработчик команды /bookings
func NewBookingsHandler(service *botservice.Service) *BookingsHandler {
	return &BookingsHandler{service: service}
}

// Handle отправляет список бронирований на дату. Без аргумента берется сегодняшняя дата.
func (h *BookingsHandler) Handle(ctx context.Context, b *tgbot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	log := h.service.Logger()

	date := h.service.Today()
	if fields := strings.Fields(update.Message.Text); len(fields) > 1 {
		date = fields[1]
	}

	// Прошлые даты разрешены, проверяем только формат
	if err := validation.ValidateDateFormat(date); err != nil {
		metrics.RecordUpdate("bookings", "invalid")
		h.service.SendError(ctx, chatID, "Укажите дату в формате YYYY-MM-DD, например /bookings 2025-08-12")
		return
	}

	bookings, err := h.service.ListBookingsForDate(ctx, date)
	if err != nil {
		log.Error("Failed to list bookings", logger.String("date", date), logger.Error(err))
		metrics.RecordUpdate("bookings", "error")
		h.service.SendError(ctx, chatID, "Ошибка при получении бронирований")
		return
	}

	if len(bookings) == 0 {
		metrics.RecordUpdate("bookings", "ok")
		h.service.SendError(ctx, chatID, fmt.Sprintf("На %s бронирований нет.", date))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Бронирования на %s:\n", date)
	for _, db := range bookings {
		fmt.Fprintf(&sb, "%s: %s\n", h.displayName(ctx, db.UserID), db.Booking.GetFormattedTimes())
	}

	if err := h.service.SendSimpleMessage(ctx, chatID, strings.TrimRight(sb.String(), "\n")); err != nil {
		log.Error("Failed to send bookings list", logger.Int64("chat_id", chatID), logger.Error(err))
		metrics.RecordUpdate("bookings", "error")
		return
	}

	metrics.RecordUpdate("bookings", "ok")
}

func (h *BookingsHandler) displayName(ctx context.Context, userID int64) string {
	user, err := h.service.GetUser(ctx, userID)
	if err != nil {
		return fmt.Sprintf("id %d", userID)
	}
	if user.Username != "" {
		return user.FirstName + " (@" + user.Username + ")"
	}
	if user.FirstName != "" {
		return user.FirstName
	}
	return fmt.Sprintf("id %d", userID)
}
