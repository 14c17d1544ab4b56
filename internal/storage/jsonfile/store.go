// Package jsonfile хранит пользователей и бронирования в одном JSON-файле.
//
// Каждая операция заново читает весь документ, изменяет его в памяти и,
// если нужно, целиком перезаписывает файл через временный файл и rename.
// Читатель никогда не увидит частично записанный файл, но изоляции между
// конкурентными писателями нет: при гонке побеждает последний rename.
// Вызывающий код, которому нужна строгая согласованность, должен сам
// сериализовать доступ к одному пути.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"slot_booking_bot/internal/storage"
	"slot_booking_bot/internal/storage/models"
	"slot_booking_bot/pkg/logger"
)

// Store реализует storage.Repository поверх JSON-файла
type Store struct {
	path   string
	logger *logger.Logger
}

var _ storage.Repository = (*Store)(nil)

// Option настраивает Store
type Option func(*options)

type options struct {
	baseDir string
	logger  *logger.Logger
}

// WithBaseDir задает каталог, относительно которого разрешается путь.
// По умолчанию это каталог исполняемого файла.
func WithBaseDir(dir string) Option {
	return func(o *options) {
		o.baseDir = dir
	}
}

// WithLogger задает логгер хранилища
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New создает хранилище для файла path. Относительный путь разрешается от
// базового каталога хранилища, а не от рабочего каталога процесса.
func New(path string, opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = logger.Nop()
	}

	if o.baseDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable path: %w", err)
		}
		o.baseDir = filepath.Dir(exe)
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(o.baseDir, resolved)
	}

	abs, err := filepath.Abs(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path %q: %w", path, err)
	}

	return &Store{path: abs, logger: o.logger}, nil
}

// Path возвращает абсолютный путь к файлу хранилища
func (s *Store) Path() string {
	return s.path
}

// Close ничего не держит открытым между вызовами
func (s *Store) Close() error {
	return nil
}

// load читает документ. Отсутствующий, нечитаемый или поврежденный файл
// дает пустой документ: хранилище никогда не возвращает ошибку чтения.
func (s *Store) load() *models.Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read store file, using empty document",
				logger.String("path", s.path),
				logger.Error(err),
			)
		}
		return models.EmptyDocument()
	}

	doc, err := decodeDocument(data)
	if err != nil {
		s.logger.Warn("Store file is corrupt, using empty document",
			logger.String("path", s.path),
			logger.Error(err),
		)
		return models.EmptyDocument()
	}

	for i := range doc.Bookings {
		if doc.Bookings[i].Times == nil {
			doc.Bookings[i].Times = []string{}
		}
	}

	return doc
}

// decodeDocument разбирает документ верхнего уровня. Отсутствующая секция
// означает пустой список; null или любое значение кроме массива делает
// поврежденным весь документ.
func decodeDocument(data []byte) (*models.Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("document is null")
	}

	doc := models.EmptyDocument()
	if err := decodeList(raw, "users", &doc.Users); err != nil {
		return nil, err
	}
	if err := decodeList(raw, "bookings", &doc.Bookings); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeList(raw map[string]json.RawMessage, key string, dst interface{}) error {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	if trimmed := bytes.TrimSpace(value); len(trimmed) == 0 || trimmed[0] != '[' {
		return fmt.Errorf("%s is not a list", key)
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// GetUser возвращает пользователя по id или nil, если его нет
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	doc := s.load()

	for _, u := range doc.Users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}

	return nil, nil
}

// UpsertUser заменяет пользователя с тем же id на месте или добавляет нового
func (s *Store) UpsertUser(ctx context.Context, user models.User) error {
	doc := s.load()

	replaced := false
	for i := range doc.Users {
		if doc.Users[i].ID == user.ID {
			doc.Users[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Users = append(doc.Users, user)
	}

	return s.write(doc)
}

// ListAllUsers возвращает всех пользователей в порядке хранения
func (s *Store) ListAllUsers(ctx context.Context) ([]models.User, error) {
	doc := s.load()

	users := make([]models.User, len(doc.Users))
	copy(users, doc.Users)
	return users, nil
}

// IsSlotFree возвращает false, если какое-либо бронирование на date
// содержит ровно такую строку времени. Запрос не нормализуется.
func (s *Store) IsSlotFree(ctx context.Context, date, t string) (bool, error) {
	doc := s.load()

	for i := range doc.Bookings {
		if doc.Bookings[i].Date == date && doc.Bookings[i].HasTime(t) {
			return false, nil
		}
	}

	return true, nil
}

// CreateBooking сливает времена в существующую запись (user_id, date) с
// сохранением ее id или добавляет новую запись с id = max+1. Документ
// перезаписывается всегда, даже если ничего не изменилось.
func (s *Store) CreateBooking(ctx context.Context, booking models.Booking) (*models.Booking, error) {
	doc := s.load()

	for i := range doc.Bookings {
		existing := &doc.Bookings[i]
		if existing.Date != booking.Date || existing.UserID != booking.UserID {
			continue
		}

		existing.Times = storage.MergeTimes(existing.Times, booking.Times)
		if err := s.write(doc); err != nil {
			return nil, err
		}

		return &models.Booking{
			ID:     existing.ID,
			UserID: existing.UserID,
			Date:   existing.Date,
			Times:  append([]string(nil), existing.Times...),
		}, nil
	}

	created := models.Booking{
		ID:     storage.NextBookingID(doc.Bookings),
		UserID: booking.UserID,
		Date:   booking.Date,
		Times:  storage.NormalizeTimes(booking.Times),
	}
	doc.Bookings = append(doc.Bookings, created)

	if err := s.write(doc); err != nil {
		return nil, err
	}

	created.Times = append([]string(nil), created.Times...)
	return &created, nil
}

// ListBookingsForDate возвращает сводные бронирования на дату по пользователям
func (s *Store) ListBookingsForDate(ctx context.Context, date string) ([]models.DateBooking, error) {
	doc := s.load()

	onDate := make([]models.Booking, 0, len(doc.Bookings))
	for _, b := range doc.Bookings {
		if b.Date == date {
			onDate = append(onDate, b)
		}
	}

	return storage.AggregateByUser(onDate), nil
}
