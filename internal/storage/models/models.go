package models

import "strings"

// User представляет пользователя Telegram, зарегистрированного в боте
type User struct {
	ID        int64  `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	Username  string `json:"username" db:"username"`
}

// Booking представляет бронирование пользователя на дату.
// ID равен нулю, пока запись не сохранена хранилищем.
type Booking struct {
	ID     int64    `json:"id,omitempty" db:"id"`
	UserID int64    `json:"user_id" db:"user_id"`
	Date   string   `json:"date" db:"date"`
	Times  []string `json:"times" db:"times"`
}

// HasID сообщает, присвоен ли бронированию идентификатор
func (b *Booking) HasID() bool {
	return b.ID > 0
}

// HasTime проверяет, содержит ли бронирование точное время
func (b *Booking) HasTime(t string) bool {
	for _, bt := range b.Times {
		if bt == t {
			return true
		}
	}
	return false
}

// GetFormattedTimes возвращает времена бронирования через запятую
func (b *Booking) GetFormattedTimes() string {
	return strings.Join(b.Times, ", ")
}

// DateBooking связывает пользователя с его сводным бронированием на дату
type DateBooking struct {
	UserID  int64
	Booking Booking
}

// Document представляет весь сохраняемый документ хранилища
type Document struct {
	Users    []User    `json:"users"`
	Bookings []Booking `json:"bookings"`
}

// EmptyDocument возвращает пустой документ с непустыми срезами
func EmptyDocument() *Document {
	return &Document{
		Users:    []User{},
		Bookings: []Booking{},
	}
}
