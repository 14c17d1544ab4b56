package validation

import (
	"regexp"
	"time"

	"slot_booking_bot/pkg/errors"
)

// Регулярные выражения для валидации
var (
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegex = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ValidateDate валидирует дату в формате YYYY-MM-DD и запрещает даты в прошлом
// относительно now
func ValidateDate(dateStr string, now time.Time) (*time.Time, error) {
	if dateStr == "" {
		return nil, errors.ErrInvalidDate.WithContext("дата не может быть пустой")
	}

	if !dateRegex.MatchString(dateStr) {
		return nil, errors.ErrInvalidDate.WithContext(map[string]interface{}{
			"date":   dateStr,
			"reason": "дата должна быть в формате YYYY-MM-DD",
		})
	}

	date, err := time.ParseInLocation("2006-01-02", dateStr, now.Location())
	if err != nil {
		return nil, errors.ErrInvalidDate.WithError(err).WithContext(map[string]interface{}{
			"date": dateStr,
		})
	}

	// Проверяем, что дата не в прошлом
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if date.Before(today) {
		return nil, errors.ErrInvalidDate.WithContext(map[string]interface{}{
			"date":   dateStr,
			"reason": "нельзя выбрать дату в прошлом",
		})
	}

	return &date, nil
}

// ValidateDateInWindow проверяет, что дата попадает в окно записи из days
// дней начиная с сегодняшнего относительно now
func ValidateDateInWindow(dateStr string, now time.Time, days int) error {
	date, err := ValidateDate(dateStr, now)
	if err != nil {
		return err
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !date.Before(today.AddDate(0, 0, days)) {
		return errors.ErrInvalidDate.WithContext(map[string]interface{}{
			"date":   dateStr,
			"days":   days,
			"reason": "дата вне окна записи",
		})
	}

	return nil
}

// ValidateDateFormat проверяет только формат даты YYYY-MM-DD
func ValidateDateFormat(dateStr string) error {
	if !dateRegex.MatchString(dateStr) {
		return errors.ErrInvalidDate.WithContext(map[string]interface{}{
			"date":   dateStr,
			"reason": "дата должна быть в формате YYYY-MM-DD",
		})
	}

	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		return errors.ErrInvalidDate.WithError(err).WithContext(map[string]interface{}{
			"date": dateStr,
		})
	}

	return nil
}

// ValidateTime валидирует время в формате HH:MM
func ValidateTime(timeStr string) (*time.Time, error) {
	if timeStr == "" {
		return nil, errors.ErrInvalidTime.WithContext("время не может быть пустым")
	}

	if !timeRegex.MatchString(timeStr) {
		return nil, errors.ErrInvalidTime.WithContext(map[string]interface{}{
			"time":   timeStr,
			"reason": "время должно быть в формате HH:MM",
		})
	}

	parsedTime, err := time.Parse("15:04", timeStr)
	if err != nil {
		return nil, errors.ErrInvalidTime.WithError(err).WithContext(map[string]interface{}{
			"time": timeStr,
		})
	}

	return &parsedTime, nil
}

// ValidateWorkingHours проверяет, входит ли время в рабочие часы [workStart, workEnd)
func ValidateWorkingHours(timeStr, workStart, workEnd string) error {
	targetTime, err := ValidateTime(timeStr)
	if err != nil {
		return err
	}

	startTime, err := ValidateTime(workStart)
	if err != nil {
		return errors.Wrap(err, "INVALID_CONFIG", "некорректное время начала работы")
	}

	endTime, err := ValidateTime(workEnd)
	if err != nil {
		return errors.Wrap(err, "INVALID_CONFIG", "некорректное время окончания работы")
	}

	// Сравниваем только часы и минуты
	target := targetTime.Hour()*60 + targetTime.Minute()
	start := startTime.Hour()*60 + startTime.Minute()
	end := endTime.Hour()*60 + endTime.Minute()

	if target < start || target >= end {
		return errors.ErrWorkingHoursViolation.WithContext(map[string]interface{}{
			"time":       timeStr,
			"work_start": workStart,
			"work_end":   workEnd,
		})
	}

	return nil
}

// ValidateUserID валидирует Telegram ID пользователя
func ValidateUserID(userID int64) error {
	if userID <= 0 {
		return errors.ErrInvalidUserID.WithContext(map[string]interface{}{
			"user_id": userID,
		})
	}
	return nil
}
