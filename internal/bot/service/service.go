package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"slot_booking_bot/internal/config"
	"slot_booking_bot/internal/scheduler"
	"slot_booking_bot/internal/storage"
	"slot_booking_bot/internal/storage/models"
	"slot_booking_bot/internal/validation"
	"slot_booking_bot/pkg/errors"
	"slot_booking_bot/pkg/logger"
	"slot_booking_bot/pkg/metrics"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// Messenger описывает методы *bot.Bot, которые использует сервис
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Service представляет основной сервис бота бронирования
type Service struct {
	messenger Messenger
	storage   storage.Repository
	scheduler scheduler.ReminderScheduler
	config    *config.Config
	logger    *logger.Logger
	now       func() time.Time
}

// NewService создает новый экземпляр сервиса бота. scheduler может быть nil,
// тогда напоминания не планируются.
func NewService(
	messenger Messenger,
	storage storage.Repository,
	scheduler scheduler.ReminderScheduler,
	config *config.Config,
	log *logger.Logger,
) *Service {
	return &Service{
		messenger: messenger,
		storage:   storage,
		scheduler: scheduler,
		config:    config,
		logger:    log,
		now:       time.Now,
	}
}

// Now возвращает текущее время сервиса
func (s *Service) Now() time.Time {
	return s.now()
}

// Today возвращает текущую дату в формате YYYY-MM-DD
func (s *Service) Today() string {
	return s.now().Format("2006-01-02")
}

// RegisterUser создает или обновляет пользователя
func (s *Service) RegisterUser(ctx context.Context, user models.User) error {
	if err := validation.ValidateUserID(user.ID); err != nil {
		return err
	}

	if err := s.storage.UpsertUser(ctx, user); err != nil {
		return err
	}

	metrics.RecordUserUpsert()
	return nil
}

// GetUser возвращает пользователя или ErrUserNotRegistered
func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.ErrUserNotRegistered.WithContext(map[string]interface{}{
			"user_id": userID,
		})
	}
	return user, nil
}

// ListUsers возвращает всех зарегистрированных пользователей
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.storage.ListAllUsers(ctx)
}

// CheckSlotFree проверяет, свободно ли время на дату
func (s *Service) CheckSlotFree(ctx context.Context, date, t string) (bool, error) {
	return s.storage.IsSlotFree(ctx, date, t)
}

// ListBookingsForDate возвращает бронирования на дату, сгруппированные по пользователям
func (s *Service) ListBookingsForDate(ctx context.Context, date string) ([]models.DateBooking, error) {
	return s.storage.ListBookingsForDate(ctx, date)
}

// CreateBooking бронирует времена на дату для пользователя. Дата должна
// входить в окно записи, времена в рабочие часы. Бронирование
// отклоняется целиком, если хотя бы одно из времен уже занято, в том числе
// самим пользователем. Повторное бронирование на ту же дату дописывается к
// существующей записи.
func (s *Service) CreateBooking(ctx context.Context, userID int64, date string, times []string) (*models.Booking, error) {
	if err := validation.ValidateUserID(userID); err != nil {
		return nil, err
	}
	if err := validation.ValidateDateInWindow(date, s.now(), s.config.Schedule.ScheduleDays); err != nil {
		metrics.RecordBookingRejected("invalid_date")
		return nil, err
	}

	requested := storage.NormalizeTimes(times)
	if len(requested) == 0 {
		metrics.RecordBookingRejected("no_valid_times")
		return nil, errors.ErrNoValidTimes.WithContext(map[string]interface{}{
			"times": times,
		})
	}

	for _, t := range requested {
		if _, err := validation.ValidateTime(t); err != nil {
			metrics.RecordBookingRejected("invalid_time")
			return nil, err
		}
		if err := validation.ValidateWorkingHours(t, s.config.Schedule.WorkStart, s.config.Schedule.WorkEnd); err != nil {
			metrics.RecordBookingRejected("outside_working_hours")
			return nil, err
		}
	}

	var taken []string
	for _, t := range requested {
		free, err := s.storage.IsSlotFree(ctx, date, t)
		if err != nil {
			return nil, fmt.Errorf("failed to check slot %s %s: %w", date, t, err)
		}
		if !free {
			taken = append(taken, t)
		}
	}
	if len(taken) > 0 {
		metrics.RecordBookingRejected("already_booked")
		return nil, errors.ErrSlotAlreadyBooked.WithContext(map[string]interface{}{
			"date":  date,
			"times": taken,
		})
	}

	booking, err := s.storage.CreateBooking(ctx, models.Booking{
		UserID: userID,
		Date:   date,
		Times:  requested,
	})
	if err != nil {
		return nil, err
	}

	// Все запрошенные времена были свободны, значит лишние времена в
	// результате пришли из существующей записи
	merged := len(booking.Times) > len(requested)
	if merged {
		metrics.RecordBooking("merged")
	} else {
		metrics.RecordBooking("created")
	}

	s.logger.Debug("Booking saved",
		logger.Int64("user_id", userID),
		logger.String("date", date),
		logger.Strings("times", booking.Times),
		logger.Bool("merged", merged),
	)

	s.scheduleReminders(ctx, userID, date, requested)

	return booking, nil
}

// scheduleReminders планирует напоминания и возвращает их количество; ошибки
// только логируются, так как бронирование уже сохранено
func (s *Service) scheduleReminders(ctx context.Context, userID int64, date string, times []string) int {
	if s.scheduler == nil {
		return 0
	}

	var scheduled int
	lead := time.Duration(s.config.Schedule.ReminderMins) * time.Minute
	now := s.now()
	log := s.logger.WithFields(
		logger.Int64("user_id", userID),
		logger.String("date", date),
	)

	for _, t := range times {
		reminder := scheduler.Reminder{UserID: userID, Date: date, Time: t}

		startsAt, err := reminder.StartsAt(now.Location())
		if err != nil {
			log.Warn("Failed to parse booked time for reminder",
				logger.String("time", t),
				logger.Error(err),
			)
			continue
		}

		// Не напоминаем о времени, которое уже наступило
		if !startsAt.After(now) {
			continue
		}

		if err := s.scheduler.Schedule(ctx, reminder, startsAt.Add(-lead)); err != nil {
			log.Error("Failed to schedule reminder",
				logger.String("time", t),
				logger.Error(errors.ErrSchedulerUnavailable.WithError(err)),
			)
			continue
		}
		scheduled++
	}

	return scheduled
}

// RescheduleReminders заново планирует напоминания для бронирований на
// доступные даты. Таймеры планировщика живут в памяти и теряются при перезапуске.
func (s *Service) RescheduleReminders(ctx context.Context) (int, error) {
	if s.scheduler == nil {
		return 0, nil
	}

	var count int
	for _, date := range s.ListAvailableDates() {
		bookings, err := s.storage.ListBookingsForDate(ctx, date)
		if err != nil {
			return count, fmt.Errorf("failed to list bookings for %s: %w", date, err)
		}

		for _, db := range bookings {
			count += s.scheduleReminders(ctx, db.UserID, date, db.Booking.Times)
		}
	}

	return count, nil
}

// WorkingTimes возвращает сетку времен начала слотов в рабочие часы
func (s *Service) WorkingTimes() ([]string, error) {
	start, err := time.Parse("15:04", s.config.Schedule.WorkStart)
	if err != nil {
		return nil, fmt.Errorf("invalid work start time: %w", err)
	}

	end, err := time.Parse("15:04", s.config.Schedule.WorkEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid work end time: %w", err)
	}

	duration := time.Duration(s.config.Schedule.SlotDurationMins) * time.Minute
	if duration <= 0 {
		return nil, fmt.Errorf("slot duration must be positive")
	}

	var times []string
	for current := start; !current.After(end.Add(-duration)); current = current.Add(duration) {
		times = append(times, current.Format("15:04"))
	}

	return times, nil
}

// AvailableTimes возвращает свободные времена на дату. Для сегодняшней даты
// прошедшие времена не показываются.
func (s *Service) AvailableTimes(ctx context.Context, date string) ([]string, error) {
	grid, err := s.WorkingTimes()
	if err != nil {
		return nil, err
	}

	bookings, err := s.storage.ListBookingsForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{})
	for _, db := range bookings {
		for _, t := range db.Booking.Times {
			taken[t] = struct{}{}
		}
	}

	now := s.now()
	isToday := date == now.Format("2006-01-02")
	currentTime := now.Format("15:04")

	free := make([]string, 0, len(grid))
	for _, t := range grid {
		if _, ok := taken[t]; ok {
			continue
		}
		if isToday && t <= currentTime {
			continue
		}
		free = append(free, t)
	}

	return free, nil
}

// ListAvailableDates возвращает список доступных дат
func (s *Service) ListAvailableDates() []string {
	var dates []string
	now := s.now()
	for i := 0; i < s.config.Schedule.ScheduleDays; i++ {
		d := now.AddDate(0, 0, i)
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}

// SendMessage отправляет сообщение пользователю
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string, replyMarkup tgmodels.ReplyMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: replyMarkup,
	}

	if _, err := s.messenger.SendMessage(ctx, params); err != nil {
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// SendSimpleMessage отправляет простое текстовое сообщение
func (s *Service) SendSimpleMessage(ctx context.Context, chatID int64, text string) error {
	return s.SendMessage(ctx, chatID, text, nil)
}

// SendError отправляет сообщение об ошибке пользователю
func (s *Service) SendError(ctx context.Context, chatID int64, message string) {
	if err := s.SendSimpleMessage(ctx, chatID, message); err != nil {
		s.logger.Error("Failed to send error message",
			logger.Int64("chat_id", chatID),
			logger.Error(err),
		)
	}
}

// AnswerCallbackQuery отвечает на callback query
func (s *Service) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	params := &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	}

	if _, err := s.messenger.AnswerCallbackQuery(ctx, params); err != nil {
		return errors.ErrTelegramAPI.WithError(err)
	}
	return nil
}

// Logger возвращает логгер сервиса
func (s *Service) Logger() *logger.Logger {
	return s.logger
}

// Close закрывает соединения сервиса
func (s *Service) Close() error {
	var errs []error

	if s.scheduler != nil {
		if err := s.scheduler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop scheduler: %w", err))
		}
	}

	if err := s.storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
	}

	return stderrors.Join(errs...)
}
