package config

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slot_booking_bot/pkg/errors"
	"slot_booking_bot/pkg/logger"
)

var allKeys = []string{
	"TELEGRAM_TOKEN", "WEBHOOK_URL", "TELEGRAM_SECRET_TOKEN", "PORT",
	"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "RATE_LIMIT",
	"STORAGE_DRIVER", "BOOKINGS_FILE", "DATA_DIR", "DB_FILE",
	"WORK_START", "WORK_END", "SLOT_DURATION", "SCHEDULE_DAYS", "REMINDER_MINS", "LOG_LEVEL",
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	// t.Setenv восстанавливает исходные значения после теста
	for _, key := range allKeys {
		t.Setenv(key, "")
	}
	for key, value := range vars {
		t.Setenv(key, value)
	}
}

func TestFromEnv(t *testing.T) {
	required := map[string]string{
		"TELEGRAM_TOKEN": "123456:ABC-DEF1234ghIkl-zyx57W2v1u123ew11",
		"WEBHOOK_URL":    "https://example.com/webhook",
	}

	with := func(extra map[string]string) map[string]string {
		vars := map[string]string{}
		for k, v := range required {
			vars[k] = v
		}
		for k, v := range extra {
			vars[k] = v
		}
		return vars
	}

	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		validate    func(t *testing.T, cfg *Config)
	}{
		{
			name:    "Defaults",
			envVars: required,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8080", cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, StorageDriverJSON, cfg.Storage.Driver)
				assert.Equal(t, "bookings.json", cfg.Storage.BookingsFile)
				assert.Equal(t, "", cfg.Storage.DataDir)
				assert.Equal(t, "09:00", cfg.Schedule.WorkStart)
				assert.Equal(t, "18:00", cfg.Schedule.WorkEnd)
				assert.Equal(t, 30, cfg.Schedule.SlotDurationMins)
				assert.Equal(t, 7, cfg.Schedule.ScheduleDays)
				assert.Equal(t, 15, cfg.Schedule.ReminderMins)
				assert.Equal(t, 100, cfg.Server.RateLimit)
				assert.Equal(t, logger.LevelInfo, cfg.Level())
			},
		},
		{
			name: "Custom values",
			envVars: with(map[string]string{
				"PORT":                "9000",
				"STORAGE_DRIVER":      "sqlite",
				"DB_FILE":             "test.db",
				"DATA_DIR":            "/var/lib/bookings",
				"WORK_START":          "08:00",
				"WORK_END":            "20:00",
				"SLOT_DURATION":       "60",
				"SCHEDULE_DAYS":       "14",
				"SERVER_READ_TIMEOUT": "5s",
				"LOG_LEVEL":           "debug",
			}),
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "9000", cfg.Server.Port)
				assert.Equal(t, StorageDriverSQLite, cfg.Storage.Driver)
				assert.Equal(t, "test.db", cfg.Storage.DBPath)
				assert.Equal(t, "/var/lib/bookings", cfg.Storage.DataDir)
				assert.Equal(t, "08:00", cfg.Schedule.WorkStart)
				assert.Equal(t, "20:00", cfg.Schedule.WorkEnd)
				assert.Equal(t, 60, cfg.Schedule.SlotDurationMins)
				assert.Equal(t, 14, cfg.Schedule.ScheduleDays)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, logger.LevelDebug, cfg.Level())
			},
		},
		{
			name:        "Missing token",
			envVars:     map[string]string{"WEBHOOK_URL": "https://example.com/webhook"},
			expectError: true,
		},
		{
			name:        "Missing webhook URL",
			envVars:     map[string]string{"TELEGRAM_TOKEN": "123456:ABC"},
			expectError: true,
		},
		{
			name:        "Unknown storage driver",
			envVars:     with(map[string]string{"STORAGE_DRIVER": "postgres"}),
			expectError: true,
		},
		{
			name:        "Invalid time format",
			envVars:     with(map[string]string{"WORK_START": "9am"}),
			expectError: true,
		},
		{
			name:        "Work end before start",
			envVars:     with(map[string]string{"WORK_START": "18:00", "WORK_END": "09:00"}),
			expectError: true,
		},
		{
			name:        "Negative reminder",
			envVars:     with(map[string]string{"REMINDER_MINS": "-5"}),
			expectError: true,
		},
		{
			name:        "Unknown log level",
			envVars:     with(map[string]string{"LOG_LEVEL": "verbose"}),
			expectError: true,
		},
		{
			name:    "Unparsable number falls back to default",
			envVars: with(map[string]string{"SLOT_DURATION": "abc"}),
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 30, cfg.Schedule.SlotDurationMins)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.envVars)

			cfg, err := FromEnv()
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, errors.ErrConfigurationInvalid), "got %v", err)
				return
			}

			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}
