package handlers

import (
	"context"
	"fmt"

	"slot_booking_bot/internal/bot/keyboard"
	botservice "slot_booking_bot/internal/bot/service"
	"slot_booking_bot/internal/storage/models"
	"slot_booking_bot/pkg/logger"
	"slot_booking_bot/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// StartHandler обрабатывает команду /start
type StartHandler struct {
	service *botservice.Service
}

// NewStartHandler создает новый обработчик команды /start
func NewStartHandler(service *botservice.Service) *StartHandler {
	return &StartHandler{service: service}
}

// Handle регистрирует пользователя и показывает выбор даты
func (h *StartHandler) Handle(ctx context.Context, b *tgbot.Bot, update *tgmodels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	from := update.Message.From
	log := h.service.Logger()

	user := models.User{
		ID:        from.ID,
		FirstName: from.FirstName,
		Username:  from.Username,
	}

	if err := h.service.RegisterUser(ctx, user); err != nil {
		log.Error("Failed to register user",
			logger.Int64("user_id", from.ID),
			logger.Error(err),
		)
		metrics.RecordUpdate("start", "error")
		h.service.SendError(ctx, chatID, "Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	name := from.FirstName
	if name == "" {
		name = from.Username
	}

	greeting := fmt.Sprintf("Здравствуйте, %s! Выберите дату для записи:", name)
	kb := keyboard.CreateDateSelectionKeyboard(h.service.ListAvailableDates())
	if err := h.service.SendMessage(ctx, chatID, greeting, kb); err != nil {
		log.Error("Failed to send date selection",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
		metrics.RecordUpdate("start", "error")
		return
	}

	metrics.RecordUpdate("start", "ok")
}
