package storage

import (
	"sort"
	"strings"

	"slot_booking_bot/internal/storage/models"
)

// NormalizeTimes оставляет только значения вида HH:MM, убирает дубликаты
// и сортирует по паре (час, минута). Проверяется только форма строки:
// "99:99" проходит, "9:00" отбрасывается. Части из двух символов, которые не
// являются цифрами (" 9:00", "+9:00", "-1:30"), тоже отбрасываются.
// Исходный срез не изменяется.
func NormalizeTimes(times []string) []string {
	seen := make(map[string]struct{}, len(times))
	result := make([]string, 0, len(times))

	for _, t := range times {
		if _, ok := clockKey(t); !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		ki, _ := clockKey(result[i])
		kj, _ := clockKey(result[j])
		return ki < kj
	})

	return result
}

// MergeTimes объединяет старые и новые времена и нормализует результат
func MergeTimes(existing, incoming []string) []string {
	merged := make([]string, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	merged = append(merged, incoming...)
	return NormalizeTimes(merged)
}

// clockKey переводит "HH:MM" в ключ сортировки hour*100+minute
func clockKey(t string) (int, bool) {
	parts := strings.Split(t, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, false
	}

	hour, ok := twoDigits(parts[0])
	if !ok {
		return 0, false
	}
	minute, ok := twoDigits(parts[1])
	if !ok {
		return 0, false
	}

	return hour*100 + minute, true
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// NextBookingID возвращает max(id)+1 по живым записям. Если запись с
// максимальным id исчезнет из документа, ее id будет выдан повторно.
func NextBookingID(bookings []models.Booking) int64 {
	var maxID int64
	for _, b := range bookings {
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	return maxID + 1
}

// AggregateByUser сводит бронирования одной даты по пользователю за один
// проход: времена повторных записей дописываются к первой, id берется у
// первой встреченной записи. Результат отсортирован по user_id.
// Функция терпима к документу, где на (user_id, date) больше одной записи.
func AggregateByUser(bookings []models.Booking) []models.DateBooking {
	byUser := make(map[int64]*models.Booking, len(bookings))

	for _, b := range bookings {
		agg, ok := byUser[b.UserID]
		if !ok {
			agg = &models.Booking{
				ID:     b.ID,
				UserID: b.UserID,
				Date:   b.Date,
				Times:  append([]string(nil), b.Times...),
			}
			byUser[b.UserID] = agg
			continue
		}
		agg.Times = append(agg.Times, b.Times...)
	}

	result := make([]models.DateBooking, 0, len(byUser))
	for userID, agg := range byUser {
		agg.Times = NormalizeTimes(agg.Times)
		result = append(result, models.DateBooking{UserID: userID, Booking: *agg})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UserID < result[j].UserID
	})

	return result
}
