package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"slot_booking_bot/internal/bot/dispatcher"
	"slot_booking_bot/internal/bot/service"
	"slot_booking_bot/internal/config"
	"slot_booking_bot/internal/scheduler/memory"
	"slot_booking_bot/internal/server"
	"slot_booking_bot/internal/storage"
	"slot_booking_bot/internal/storage/jsonfile"
	"slot_booking_bot/internal/storage/sqlite"
	"slot_booking_bot/pkg/logger"

	tgbot "github.com/go-telegram/bot"
)

// version задается при сборке через -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Level())
	appLogger.Info("Starting slot booking bot",
		logger.String("version", version),
		logger.String("storage_driver", cfg.Storage.Driver),
	)

	repo, err := openStorage(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", logger.Error(err))
	}
	repo = storage.Instrument(repo, appLogger)

	telegramBot, err := tgbot.New(cfg.Telegram.Token)
	if err != nil {
		repo.Close()
		appLogger.Fatal("Failed to create Telegram bot", logger.Error(err))
	}

	reminderScheduler := memory.NewMemoryScheduler(service.NewReminderSender(telegramBot), appLogger)
	botService := service.NewService(telegramBot, repo, reminderScheduler, cfg, appLogger)
	defer func() {
		if err := botService.Close(); err != nil {
			appLogger.Error("Error closing service", logger.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if count, err := botService.RescheduleReminders(ctx); err != nil {
		appLogger.Warn("Failed to reschedule reminders", logger.Error(err))
	} else {
		appLogger.Info("Reminders rescheduled", logger.Int("count", count))
	}

	if err := setupWebhook(ctx, telegramBot, cfg); err != nil {
		appLogger.Error("Failed to setup webhook", logger.Error(err))
		return
	}
	appLogger.Info("Webhook configured", logger.String("url", cfg.Telegram.WebhookURL))

	srv := server.New(cfg, appLogger, dispatcher.NewDispatcher(botService), telegramBot, repo, version)
	if err := srv.Start(ctx); err != nil {
		appLogger.Error("Server error", logger.Error(err))
		return
	}

	appLogger.Info("Server stopped gracefully")
}

// openStorage открывает хранилище бронирований выбранного типа
func openStorage(cfg *config.Config, log *logger.Logger) (storage.Repository, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverSQLite:
		return sqlite.New(cfg.Storage.DBPath)
	default:
		opts := []jsonfile.Option{jsonfile.WithLogger(log)}
		if cfg.Storage.DataDir != "" {
			opts = append(opts, jsonfile.WithBaseDir(cfg.Storage.DataDir))
		}

		store, err := jsonfile.New(cfg.Storage.BookingsFile, opts...)
		if err != nil {
			return nil, err
		}
		log.Info("Using JSON bookings file", logger.String("path", store.Path()))
		return store, nil
	}
}

// setupWebhook настраивает webhook для Telegram бота
func setupWebhook(ctx context.Context, bot *tgbot.Bot, cfg *config.Config) error {
	params := &tgbot.SetWebhookParams{
		URL:         cfg.Telegram.WebhookURL,
		SecretToken: cfg.Telegram.SecretToken,
	}

	_, err := bot.SetWebhook(ctx, params)
	return err
}
