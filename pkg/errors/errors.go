package errors

import (
	stderrors "errors"
	"fmt"
)

// BotError представляет ошибку приложения с кодом и контекстом
type BotError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
	Context interface{} `json:"context,omitempty"`
}

// Error реализует интерфейс error
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap позволяет использовать errors.Is и errors.As
func (e *BotError) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, поэтому копии из WithError/WithContext
// совпадают с предопределенными значениями
func (e *BotError) Is(target error) bool {
	t, ok := target.(*BotError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithContext добавляет контекст к ошибке
func (e *BotError) WithContext(ctx interface{}) *BotError {
	return &BotError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Context: ctx,
	}
}

// WithError добавляет underlying ошибку
func (e *BotError) WithError(err error) *BotError {
	return &BotError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
		Context: e.Context,
	}
}

// Предопределенные ошибки
var (
	// Ошибки пользователя
	ErrUserNotRegistered = &BotError{
		Code:    "USER_NOT_REGISTERED",
		Message: "пользователь не зарегистрирован",
	}

	// Ошибки бронирования
	ErrSlotAlreadyBooked = &BotError{
		Code:    "SLOT_ALREADY_BOOKED",
		Message: "время уже забронировано",
	}

	ErrWorkingHoursViolation = &BotError{
		Code:    "WORKING_HOURS_VIOLATION",
		Message: "время не входит в рабочие часы",
	}

	ErrNoValidTimes = &BotError{
		Code:    "NO_VALID_TIMES",
		Message: "не указано ни одного корректного времени",
	}

	// Ошибки валидации
	ErrInvalidDate = &BotError{
		Code:    "INVALID_DATE",
		Message: "некорректная дата",
	}

	ErrInvalidTime = &BotError{
		Code:    "INVALID_TIME",
		Message: "некорректное время",
	}

	ErrInvalidUserID = &BotError{
		Code:    "INVALID_USER_ID",
		Message: "некорректный ID пользователя",
	}

	// Системные ошибки
	ErrStorageWrite = &BotError{
		Code:    "STORAGE_WRITE",
		Message: "не удалось сохранить данные",
	}

	ErrStorageRead = &BotError{
		Code:    "STORAGE_READ",
		Message: "не удалось прочитать данные",
	}

	ErrConfigurationInvalid = &BotError{
		Code:    "CONFIGURATION_INVALID",
		Message: "некорректная конфигурация",
	}

	ErrTelegramAPI = &BotError{
		Code:    "TELEGRAM_API",
		Message: "ошибка Telegram API",
	}

	ErrSchedulerUnavailable = &BotError{
		Code:    "SCHEDULER_UNAVAILABLE",
		Message: "планировщик недоступен",
	}
)

// Wrap оборачивает обычную ошибку в BotError
func Wrap(err error, code, message string) *BotError {
	return &BotError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// GetBotError извлекает BotError из цепочки ошибок
func GetBotError(err error) (*BotError, bool) {
	var botErr *BotError
	if stderrors.As(err, &botErr) {
		return botErr, true
	}
	return nil, false
}
