package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"slot_booking_bot/pkg/errors"
	"slot_booking_bot/pkg/logger"
)

const (
	StorageDriverJSON   = "json"
	StorageDriverSQLite = "sqlite"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Server   ServerConfig   `json:"server"`
	Storage  StorageConfig  `json:"storage"`
	Schedule ScheduleConfig `json:"schedule"`
	LogLevel string         `json:"log_level"`
}

// TelegramConfig содержит настройки Telegram бота
type TelegramConfig struct {
	Token       string `json:"token"`
	WebhookURL  string `json:"webhook_url"`
	SecretToken string `json:"-"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	RateLimit    int           `json:"rate_limit"`
}

// StorageConfig содержит настройки хранилища бронирований
type StorageConfig struct {
	Driver       string `json:"driver"`
	BookingsFile string `json:"bookings_file"`
	DataDir      string `json:"data_dir"`
	DBPath       string `json:"db_path"`
}

// ScheduleConfig содержит настройки расписания
type ScheduleConfig struct {
	WorkStart        string `json:"work_start"`
	WorkEnd          string `json:"work_end"`
	SlotDurationMins int    `json:"slot_duration_mins"`
	ScheduleDays     int    `json:"schedule_days"`
	ReminderMins     int    `json:"reminder_mins"`
}

// Load загружает конфигурацию из .env файла (если он есть) и переменных окружения
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	return FromEnv()
}

// FromEnv собирает конфигурацию только из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			Token:       os.Getenv("TELEGRAM_TOKEN"),
			WebhookURL:  os.Getenv("WEBHOOK_URL"),
			SecretToken: os.Getenv("TELEGRAM_SECRET_TOKEN"),
		},
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			RateLimit:    getEnvAsInt("RATE_LIMIT", 100),
		},
		Storage: StorageConfig{
			Driver:       getEnv("STORAGE_DRIVER", StorageDriverJSON),
			BookingsFile: getEnv("BOOKINGS_FILE", "bookings.json"),
			DataDir:      os.Getenv("DATA_DIR"),
			DBPath:       getEnv("DB_FILE", "bookings.db"),
		},
		Schedule: ScheduleConfig{
			WorkStart:        getEnv("WORK_START", "09:00"),
			WorkEnd:          getEnv("WORK_END", "18:00"),
			SlotDurationMins: getEnvAsInt("SLOT_DURATION", 30),
			ScheduleDays:     getEnvAsInt("SCHEDULE_DAYS", 7),
			ReminderMins:     getEnvAsInt("REMINDER_MINS", 15),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ErrConfigurationInvalid.WithError(err)
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.Telegram.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required")
	}

	switch c.Storage.Driver {
	case StorageDriverJSON:
		if c.Storage.BookingsFile == "" {
			return fmt.Errorf("BOOKINGS_FILE must not be empty")
		}
	case StorageDriverSQLite:
		if c.Storage.DBPath == "" {
			return fmt.Errorf("DB_FILE must not be empty")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (expected %q or %q)",
			c.Storage.Driver, StorageDriverJSON, StorageDriverSQLite)
	}

	// Валидация времени работы
	start, err := time.Parse("15:04", c.Schedule.WorkStart)
	if err != nil {
		return fmt.Errorf("invalid WORK_START format (expected HH:MM): %w", err)
	}
	end, err := time.Parse("15:04", c.Schedule.WorkEnd)
	if err != nil {
		return fmt.Errorf("invalid WORK_END format (expected HH:MM): %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("WORK_END must be after WORK_START")
	}

	// Проверка логичности временных настроек
	if c.Schedule.SlotDurationMins <= 0 {
		return fmt.Errorf("SLOT_DURATION must be positive")
	}
	if c.Schedule.ScheduleDays <= 0 {
		return fmt.Errorf("SCHEDULE_DAYS must be positive")
	}
	if c.Schedule.ReminderMins < 0 {
		return fmt.Errorf("REMINDER_MINS must be non-negative")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive")
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return nil
}

// Level возвращает уровень логирования из конфигурации
func (c *Config) Level() logger.LogLevel {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvAsInt получает переменную окружения как число
func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvAsDuration получает переменную окружения как duration
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
