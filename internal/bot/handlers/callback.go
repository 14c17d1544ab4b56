package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"slot_booking_bot/internal/bot/keyboard"
	botservice "slot_booking_bot/internal/bot/service"
	"slot_booking_bot/internal/validation"
	"slot_booking_bot/pkg/errors"
	"slot_booking_bot/pkg/logger"
	"slot_booking_bot/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// CallbackHandler обрабатывает callback query от inline кнопок
type CallbackHandler struct {
	service *botservice.Service
}

// NewCallbackHandler создает новый обработчик callback query
func NewCallbackHandler(service *botservice.Service) *CallbackHandler {
	return &CallbackHandler{service: service}
}

// Handle обрабатывает callback query
func (h *CallbackHandler) Handle(ctx context.Context, b *tgbot.Bot, update *tgmodels.Update) {
	if update.CallbackQuery == nil {
		return
	}

	cb := update.CallbackQuery
	// В личном чате chat_id совпадает с id пользователя
	chatID := cb.From.ID

	if date, ok := keyboard.ParseDateCallback(cb.Data); ok {
		h.handleDateSelection(ctx, cb, chatID, date)
		return
	}

	if date, t, ok := keyboard.ParseTimeCallback(cb.Data); ok {
		h.handleTimeSelection(ctx, cb, chatID, date, t)
		return
	}

	metrics.RecordUpdate("callback", "unknown")
	h.answer(ctx, cb.ID, "Неверный выбор")
}

func (h *CallbackHandler) handleDateSelection(ctx context.Context, cb *tgmodels.CallbackQuery, chatID int64, date string) {
	h.answer(ctx, cb.ID, "")

	if _, err := validation.ValidateDate(date, h.service.Now()); err != nil {
		metrics.RecordUpdate("callback_date", "invalid")
		h.service.SendError(ctx, chatID, "Эта дата недоступна. Нажмите /start, чтобы выбрать другую.")
		return
	}

	times, err := h.service.AvailableTimes(ctx, date)
	if err != nil {
		h.service.Logger().Error("Failed to get available times",
			logger.String("date", date),
			logger.Error(err),
		)
		metrics.RecordUpdate("callback_date", "error")
		h.service.SendError(ctx, chatID, "Ошибка при получении свободного времени")
		return
	}

	if len(times) == 0 {
		metrics.RecordUpdate("callback_date", "ok")
		h.service.SendError(ctx, chatID, fmt.Sprintf("На %s свободного времени нет. Попробуйте другую дату.", date))
		return
	}

	text := fmt.Sprintf("Свободное время на %s:", date)
	if err := h.service.SendMessage(ctx, chatID, text, keyboard.CreateTimeSelectionKeyboard(date, times)); err != nil {
		h.service.Logger().Error("Failed to send time selection",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
		metrics.RecordUpdate("callback_date", "error")
		return
	}

	metrics.RecordUpdate("callback_date", "ok")
}

func (h *CallbackHandler) handleTimeSelection(ctx context.Context, cb *tgmodels.CallbackQuery, chatID int64, date, t string) {
	log := h.service.Logger()

	if _, err := h.service.GetUser(ctx, cb.From.ID); err != nil {
		if stderrors.Is(err, errors.ErrUserNotRegistered) {
			metrics.RecordUpdate("callback_time", "unregistered")
			h.answer(ctx, cb.ID, "")
			h.service.SendError(ctx, chatID, "Сначала нажмите /start.")
			return
		}
		log.Error("Failed to get user", logger.Int64("user_id", cb.From.ID), logger.Error(err))
		metrics.RecordUpdate("callback_time", "error")
		h.answer(ctx, cb.ID, "Ошибка")
		return
	}

	booking, err := h.service.CreateBooking(ctx, cb.From.ID, date, []string{t})
	if err != nil {
		switch {
		case stderrors.Is(err, errors.ErrSlotAlreadyBooked):
			metrics.RecordUpdate("callback_time", "taken")
			h.answer(ctx, cb.ID, "Это время уже занято")
			h.service.SendError(ctx, chatID, "К сожалению, это время уже занято. Выберите другое.")
		case stderrors.Is(err, errors.ErrInvalidDate),
			stderrors.Is(err, errors.ErrInvalidTime),
			stderrors.Is(err, errors.ErrWorkingHoursViolation),
			stderrors.Is(err, errors.ErrNoValidTimes):
			if botErr, ok := errors.GetBotError(err); ok {
				log.Debug("Booking rejected",
					logger.Int64("user_id", cb.From.ID),
					logger.String("code", botErr.Code),
					logger.Any("details", botErr.Context),
				)
			}
			metrics.RecordUpdate("callback_time", "invalid")
			h.answer(ctx, cb.ID, "Неверный выбор")
		default:
			log.Error("Failed to create booking",
				logger.Int64("user_id", cb.From.ID),
				logger.String("date", date),
				logger.String("time", t),
				logger.Error(err),
			)
			metrics.RecordUpdate("callback_time", "error")
			h.answer(ctx, cb.ID, "Ошибка")
			h.service.SendError(ctx, chatID, "Не удалось сохранить бронирование. Попробуйте позже.")
		}
		return
	}

	h.answer(ctx, cb.ID, "Время забронировано")

	text := fmt.Sprintf("Вы записаны на %s: %s", booking.Date, strings.Join(booking.Times, ", "))
	if err := h.service.SendSimpleMessage(ctx, chatID, text); err != nil {
		log.Error("Failed to send booking confirmation",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}

	metrics.RecordUpdate("callback_time", "ok")
}

func (h *CallbackHandler) answer(ctx context.Context, callbackQueryID, text string) {
	if err := h.service.AnswerCallbackQuery(ctx, callbackQueryID, text); err != nil {
		h.service.Logger().Warn("Failed to answer callback query", logger.Error(err))
	}
}
