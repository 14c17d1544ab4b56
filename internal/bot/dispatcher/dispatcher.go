package dispatcher

import (
	"context"
	"strings"

	"slot_booking_bot/internal/bot/handlers"
	"slot_booking_bot/internal/bot/service"
	"slot_booking_bot/pkg/logger"
	"slot_booking_bot/pkg/metrics"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Dispatcher управляет обработкой входящих обновлений от Telegram
type Dispatcher struct {
	logger          *logger.Logger
	startHandler    *handlers.StartHandler
	bookingsHandler *handlers.BookingsHandler
	callbackHandler *handlers.CallbackHandler
	defaultHandler  *handlers.DefaultHandler
}

// NewDispatcher создает новый диспетчер обновлений
func NewDispatcher(service *service.Service) *Dispatcher {
	return &Dispatcher{
		logger:          service.Logger(),
		startHandler:    handlers.NewStartHandler(service),
		bookingsHandler: handlers.NewBookingsHandler(service),
		callbackHandler: handlers.NewCallbackHandler(service),
		defaultHandler:  handlers.NewDefaultHandler(service),
	}
}

// HandleUpdate обрабатывает входящее обновление от Telegram
func (d *Dispatcher) HandleUpdate(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	log := d.logger.WithContext(ctx)

	if update.CallbackQuery != nil {
		log.Debug("Received callback query",
			logger.Int64("user_id", update.CallbackQuery.From.ID),
			logger.String("data", update.CallbackQuery.Data),
		)
		d.callbackHandler.Handle(ctx, bot, update)
		return
	}

	if update.Message != nil {
		log.Debug("Received message",
			logger.Int64("chat_id", update.Message.Chat.ID),
			logger.String("text", update.Message.Text),
		)

		switch command(update.Message.Text) {
		case "/start":
			d.startHandler.Handle(ctx, bot, update)
		case "/bookings":
			d.bookingsHandler.Handle(ctx, bot, update)
		default:
			d.defaultHandler.Handle(ctx, bot, update)
		}
		return
	}

	metrics.RecordUpdate("unknown", "skipped")
	log.Debug("Received unsupported update type", logger.Int64("update_id", update.ID))
}

// command возвращает команду из текста сообщения без суффикса @botname
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}
