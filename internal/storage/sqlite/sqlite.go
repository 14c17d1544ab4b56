package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"slot_booking_bot/internal/storage"
	"slot_booking_bot/internal/storage/models"
	"slot_booking_bot/pkg/errors"

	_ "modernc.org/sqlite"
)

// SQLiteStorage реализует storage.Repository для SQLite с той же семантикой,
// что и JSON-хранилище: слияние по (user_id, date), id = max+1,
// нормализованные времена. Времена хранятся JSON-массивом в колонке times.
type SQLiteStorage struct {
	db *sql.DB
}

var _ storage.Repository = (*SQLiteStorage)(nil)

// New создает новое подключение к SQLite базе данных
func New(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка подключения
	db.SetMaxOpenConns(1) // SQLite поддерживает только одно write-подключение
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStorage{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

// migrate создает схему базы данных
func (s *SQLiteStorage) migrate() error {
	// Включаем WAL mode для лучшей конкурентности
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return fmt.Errorf("failed to set WAL mode: %w", err)
	}

	queries := []string{
		// seq сохраняет порядок вставки пользователей при upsert
		`CREATE TABLE IF NOT EXISTS users (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id INTEGER UNIQUE NOT NULL,
			first_name TEXT NOT NULL,
			username TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			times TEXT NOT NULL DEFAULT '[]',
			UNIQUE(user_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration query: %w", err)
		}
	}

	return nil
}

// Close закрывает подключение к базе данных
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetUser получает пользователя по id, nil если не найден
func (s *SQLiteStorage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, first_name, username FROM users WHERE id = ?`

	err := s.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.FirstName, &user.Username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.ErrStorageRead.WithError(fmt.Errorf("failed to get user: %w", err))
	}

	return user, nil
}

// UpsertUser сохраняет пользователя, обновляя существующую запись на месте
func (s *SQLiteStorage) UpsertUser(ctx context.Context, user models.User) error {
	query := `INSERT INTO users (id, first_name, username) VALUES (?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET first_name = excluded.first_name, username = excluded.username`

	if _, err := s.db.ExecContext(ctx, query, user.ID, user.FirstName, user.Username); err != nil {
		return errors.ErrStorageWrite.WithError(fmt.Errorf("failed to upsert user: %w", err))
	}

	return nil
}

// ListAllUsers возвращает всех пользователей в порядке регистрации
func (s *SQLiteStorage) ListAllUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, first_name, username FROM users ORDER BY seq`)
	if err != nil {
		return nil, errors.ErrStorageRead.WithError(fmt.Errorf("failed to list users: %w", err))
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.Username); err != nil {
			return nil, errors.ErrStorageRead.WithError(fmt.Errorf("failed to scan user: %w", err))
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.ErrStorageRead.WithError(err)
	}

	return users, nil
}

// IsSlotFree проверяет, что ни одно бронирование на дату не содержит время
func (s *SQLiteStorage) IsSlotFree(ctx context.Context, date, t string) (bool, error) {
	bookings, err := s.bookingsForDate(ctx, date)
	if err != nil {
		return false, err
	}

	for i := range bookings {
		if bookings[i].HasTime(t) {
			return false, nil
		}
	}

	return true, nil
}

// CreateBooking сливает времена в запись (user_id, date) или создает новую
func (s *SQLiteStorage) CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.ErrStorageWrite.WithError(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	result := models.Booking{UserID: booking.UserID, Date: booking.Date}

	var rawTimes string
	err = tx.QueryRowContext(ctx,
		`SELECT id, times FROM bookings WHERE user_id = ? AND date = ?`,
		booking.UserID, booking.Date,
	).Scan(&result.ID, &rawTimes)

	switch {
	case err == nil:
		existing, decodeErr := decodeTimes(rawTimes)
		if decodeErr != nil {
			return nil, errors.ErrStorageRead.WithError(decodeErr)
		}
		result.Times = storage.MergeTimes(existing, booking.Times)

		encoded, encodeErr := encodeTimes(result.Times)
		if encodeErr != nil {
			return nil, errors.ErrStorageWrite.WithError(encodeErr)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET times = ? WHERE id = ?`, encoded, result.ID); err != nil {
			return nil, errors.ErrStorageWrite.WithError(fmt.Errorf("failed to merge booking: %w", err))
		}

	case err == sql.ErrNoRows:
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM bookings`).Scan(&result.ID); err != nil {
			return nil, errors.ErrStorageRead.WithError(fmt.Errorf("failed to get next booking id: %w", err))
		}
		result.Times = storage.NormalizeTimes(booking.Times)

		encoded, encodeErr := encodeTimes(result.Times)
		if encodeErr != nil {
			return nil, errors.ErrStorageWrite.WithError(encodeErr)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bookings (id, user_id, date, times) VALUES (?, ?, ?, ?)`,
			result.ID, result.UserID, result.Date, encoded,
		); err != nil {
			return nil, errors.ErrStorageWrite.WithError(fmt.Errorf("failed to create booking: %w", err))
		}

	default:
		return nil, errors.ErrStorageRead.WithError(fmt.Errorf("failed to find booking: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.ErrStorageWrite.WithError(fmt.Errorf("failed to commit booking: %w", err))
	}

	return &result, nil
}

// ListBookingsForDate возвращает сводные бронирования на дату по пользователям
func (s *SQLiteStorage) ListBookingsForDate(ctx context.Context, date string) ([]models.DateBooking, error) {
	bookings, err := s.bookingsForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	return storage.AggregateByUser(bookings), nil
}

func (s *SQLiteStorage) bookingsForDate(ctx context.Context, date string) ([]models.Booking, error) {
	query := `SELECT id, user_id, date, times FROM bookings WHERE date = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, errors.ErrStorageRead.WithError(fmt.Errorf("failed to get bookings: %w", err))
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var (
			b   models.Booking
			raw string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Date, &raw); err != nil {
			return nil, errors.ErrStorageRead.WithError(fmt.Errorf("failed to scan booking: %w", err))
		}
		if b.Times, err = decodeTimes(raw); err != nil {
			return nil, errors.ErrStorageRead.WithError(err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.ErrStorageRead.WithError(err)
	}

	return bookings, nil
}

func encodeTimes(times []string) (string, error) {
	data, err := json.Marshal(times)
	if err != nil {
		return "", fmt.Errorf("failed to encode times: %w", err)
	}
	return string(data), nil
}

func decodeTimes(raw string) ([]string, error) {
	times := []string{}
	if raw == "" {
		return times, nil
	}
	if err := json.Unmarshal([]byte(raw), &times); err != nil {
		return nil, fmt.Errorf("failed to decode times: %w", err)
	}
	return times, nil
}
