package handlers

import (
	"context"

	botservice "slot_booking_bot/internal/bot/service"
	"slot_booking_bot/pkg/logger"
	"slot_booking_bot/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

const usageText = "Нажмите /start, чтобы записаться, или /bookings YYYY-MM-DD, чтобы посмотреть бронирования на дату."

// DefaultHandler обрабатывает неопознанные сообщения
type DefaultHandler struct {
	service *botservice.Service
}

// NewDefaultHandler создает новый обработчик по умолчанию
func NewDefaultHandler(service *botservice.Service) *DefaultHandler {
	return &DefaultHandler{service: service}
}

// Handle отправляет подсказку по командам бота
func (h *DefaultHandler) Handle(ctx context.Context, b *tgbot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	if err := h.service.SendSimpleMessage(ctx, chatID, usageText); err != nil {
		h.service.Logger().Error("Failed to send usage hint",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
		metrics.RecordUpdate("default", "error")
		return
	}

	metrics.RecordUpdate("default", "ok")
}
