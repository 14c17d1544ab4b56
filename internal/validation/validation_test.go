package validation

import (
	stderrors "errors"
	"testing"
	"time"

	"slot_booking_bot/pkg/errors"
)

func TestValidateDate(t *testing.T) {
	now := time.Date(2025, 8, 12, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "today", input: "2025-08-12", wantErr: false},
		{name: "future", input: "2025-09-01", wantErr: false},
		{name: "past", input: "2025-08-11", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "wrong format", input: "12.08.2025", wantErr: true},
		{name: "impossible date", input: "2025-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateDate(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if _, ok := errors.GetBotError(err); err != nil && !ok {
				t.Errorf("Expected BotError, got %T", err)
			}
		})
	}
}

func TestValidateTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid time", input: "09:30", wantErr: false},
		{name: "midnight", input: "00:00", wantErr: false},
		{name: "single digit hour", input: "9:30", wantErr: true},
		{name: "out of range", input: "25:00", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTime() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWorkingHours(t *testing.T) {
	tests := []struct {
		name    string
		time    string
		wantErr bool
	}{
		{name: "start of day", time: "09:00", wantErr: false},
		{name: "inside", time: "13:30", wantErr: false},
		{name: "end is exclusive", time: "18:00", wantErr: true},
		{name: "before start", time: "08:59", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWorkingHours(tt.time, "09:00", "18:00")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWorkingHours() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !stderrors.Is(err, errors.ErrWorkingHoursViolation) {
				t.Errorf("Expected ErrWorkingHoursViolation, got %v", err)
			}
		})
	}
}

func TestValidateDateInWindow(t *testing.T) {
	now := time.Date(2025, 8, 12, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "today", input: "2025-08-12", wantErr: false},
		{name: "last day", input: "2025-08-14", wantErr: false},
		{name: "after window", input: "2025-08-15", wantErr: true},
		{name: "far future", input: "2026-12-31", wantErr: true},
		{name: "past", input: "2025-08-11", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateInWindow(tt.input, now, 3)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDateInWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !stderrors.Is(err, errors.ErrInvalidDate) {
				t.Errorf("Expected ErrInvalidDate, got %v", err)
			}
		})
	}
}

func TestValidateUserID(t *testing.T) {
	if err := ValidateUserID(12345); err != nil {
		t.Errorf("expected valid user ID, got %v", err)
	}
	if err := ValidateUserID(0); err == nil {
		t.Error("expected error for zero user ID")
	}
	if err := ValidateUserID(-100); err == nil {
		t.Error("expected error for negative user ID")
	}
}

func TestValidateDateFormat(t *testing.T) {
	valid := []string{"2025-08-12", "2020-02-29"}
	for _, d := range valid {
		if err := ValidateDateFormat(d); err != nil {
			t.Errorf("ValidateDateFormat(%q) unexpected error: %v", d, err)
		}
	}

	invalid := []string{"", "12.08.2025", "2025-13-01", "2025-02-30", "2025-8-1"}
	for _, d := range invalid {
		if err := ValidateDateFormat(d); err == nil {
			t.Errorf("ValidateDateFormat(%q) expected error", d)
		}
	}
}
