package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"slot_booking_bot/internal/scheduler"
	"slot_booking_bot/pkg/logger"
	"slot_booking_bot/pkg/metrics"
)

// MemoryScheduler реализует планировщик напоминаний в памяти.
// Таймеры не переживают перезапуск процесса.
type MemoryScheduler struct {
	timers   map[string]*time.Timer
	mu       sync.RWMutex
	sender   scheduler.ReminderSender
	logger   *logger.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  bool
	stopOnce sync.Once
}

var _ scheduler.ReminderScheduler = (*MemoryScheduler)(nil)

// NewMemoryScheduler создает новый планировщик в памяти
func NewMemoryScheduler(sender scheduler.ReminderSender, log *logger.Logger) *MemoryScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &MemoryScheduler{
		timers: make(map[string]*time.Timer),
		sender: sender,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Schedule планирует напоминание
func (s *MemoryScheduler) Schedule(ctx context.Context, reminder scheduler.Reminder, notifyAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return fmt.Errorf("scheduler is stopped")
	}

	key := reminder.Key()

	// Отменить существующий таймер если есть
	if timer, exists := s.timers[key]; exists {
		timer.Stop()
		delete(s.timers, key)
	}

	// Вычислить задержку до напоминания
	delay := time.Until(notifyAt)
	if delay <= 0 {
		// Если время уже прошло, отправить напоминание немедленно
		go s.handleReminder(reminder)
		return nil
	}

	s.timers[key] = time.AfterFunc(delay, func() {
		s.handleReminder(reminder)
	})
	metrics.ScheduledReminders.Set(float64(len(s.timers)))

	return nil
}

// Cancel отменяет запланированное напоминание
func (s *MemoryScheduler) Cancel(ctx context.Context, reminder scheduler.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := reminder.Key()
	if timer, exists := s.timers[key]; exists {
		timer.Stop()
		delete(s.timers, key)
	}
	metrics.ScheduledReminders.Set(float64(len(s.timers)))

	return nil
}

// Stop останавливает планировщик
func (s *MemoryScheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.stopped = true

		// Остановить все таймеры
		for key, timer := range s.timers {
			timer.Stop()
			delete(s.timers, key)
		}
		metrics.ScheduledReminders.Set(0)

		// Отменить контекст
		s.cancel()
	})

	return nil
}

// handleReminder обрабатывает отправку напоминания
func (s *MemoryScheduler) handleReminder(reminder scheduler.Reminder) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, reminder.Key())
	metrics.ScheduledReminders.Set(float64(len(s.timers)))
	s.mu.Unlock()

	if err := s.sender.SendReminder(s.ctx, reminder); err != nil {
		metrics.RecordReminder("error")
		s.logger.Error("Failed to send reminder",
			logger.Int64("user_id", reminder.UserID),
			logger.String("date", reminder.Date),
			logger.String("time", reminder.Time),
			logger.Error(err),
		)
		return
	}

	metrics.RecordReminder("success")
}

// GetActiveTimersCount возвращает количество активных таймеров
func (s *MemoryScheduler) GetActiveTimersCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.timers)
}
