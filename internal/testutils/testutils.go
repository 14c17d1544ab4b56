package testutils

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"slot_booking_bot/internal/config"
	"slot_booking_bot/internal/storage/jsonfile"
	"slot_booking_bot/pkg/logger"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// SetupTestStore создает JSON-хранилище во временном каталоге теста
func SetupTestStore(t *testing.T) *jsonfile.Store {
	t.Helper()

	store, err := jsonfile.New(filepath.Join(t.TempDir(), "bookings.json"), jsonfile.WithLogger(SetupTestLogger()))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// SetupTestLogger создает тестовый логгер
func SetupTestLogger() *logger.Logger {
	return logger.Nop()
}

// SetupTestConfig возвращает валидную конфигурацию для тестов
func SetupTestConfig() *config.Config {
	return &config.Config{
		Telegram: config.TelegramConfig{
			Token:      "123456:TEST",
			WebhookURL: "https://example.com/webhook",
		},
		Server: config.ServerConfig{
			Port:      "8080",
			RateLimit: 100,
		},
		Storage: config.StorageConfig{
			Driver:       config.StorageDriverJSON,
			BookingsFile: "bookings.json",
		},
		Schedule: config.ScheduleConfig{
			WorkStart:        "09:00",
			WorkEnd:          "12:00",
			SlotDurationMins: 60,
			ScheduleDays:     3,
			ReminderMins:     15,
		},
		LogLevel: "info",
	}
}

// TestContext создает контекст для тестов
func TestContext() context.Context {
	return context.Background()
}

// FakeMessenger запоминает отправленные сообщения вместо вызова Telegram API
type FakeMessenger struct {
	mu       sync.Mutex
	Messages []*bot.SendMessageParams
	Answers  []*bot.AnswerCallbackQueryParams
}

// SendMessage сохраняет параметры сообщения
func (f *FakeMessenger) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, params)
	return &tgmodels.Message{}, nil
}

// AnswerCallbackQuery сохраняет ответ на callback query
func (f *FakeMessenger) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Answers = append(f.Answers, params)
	return true, nil
}

// LastText возвращает текст последнего отправленного сообщения
func (f *FakeMessenger) LastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Messages) == 0 {
		return ""
	}
	return f.Messages[len(f.Messages)-1].Text
}

// LastMarkup возвращает клавиатуру последнего сообщения
func (f *FakeMessenger) LastMarkup() tgmodels.ReplyMarkup {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Messages) == 0 {
		return nil
	}
	return f.Messages[len(f.Messages)-1].ReplyMarkup
}
