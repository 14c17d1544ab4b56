package keyboard

import (
	"strings"

	"github.com/go-telegram/bot/models"
)

// Префиксы callback data inline кнопок
const (
	DatePrefix = "DATE:"
	TimePrefix = "TIME:"

	timeSeparator = "|"
	timesPerRow   = 3
)

// CreateDateSelectionKeyboard создает inline клавиатуру для выбора даты
func CreateDateSelectionKeyboard(dates []string) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	for _, d := range dates {
		btn := models.InlineKeyboardButton{
			Text:         d,
			CallbackData: DatePrefix + d,
		}
		rows = append(rows, []models.InlineKeyboardButton{btn})
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// CreateTimeSelectionKeyboard создает inline клавиатуру для выбора времени,
// по три кнопки в ряду
func CreateTimeSelectionKeyboard(date string, times []string) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton

	for _, t := range times {
		row = append(row, models.InlineKeyboardButton{
			Text:         t,
			CallbackData: TimeCallbackData(date, t),
		})
		if len(row) == timesPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// TimeCallbackData формирует callback data кнопки времени
func TimeCallbackData(date, t string) string {
	return TimePrefix + date + timeSeparator + t
}

// ParseDateCallback извлекает дату из callback data кнопки даты
func ParseDateCallback(data string) (string, bool) {
	if !strings.HasPrefix(data, DatePrefix) {
		return "", false
	}
	date := strings.TrimPrefix(data, DatePrefix)
	return date, date != ""
}

// ParseTimeCallback извлекает дату и время из callback data кнопки времени
func ParseTimeCallback(data string) (date, t string, ok bool) {
	if !strings.HasPrefix(data, TimePrefix) {
		return "", "", false
	}

	date, t, found := strings.Cut(strings.TrimPrefix(data, TimePrefix), timeSeparator)
	if !found || date == "" || t == "" {
		return "", "", false
	}
	return date, t, true
}
