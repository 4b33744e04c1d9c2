package models

import (
	"fmt"
	"time"
)

// AutoResetBehavior controls what the midnight reset does to the current day
type AutoResetBehavior string

const (
	// AutoResetStatusOnly resets every block's status back to not_started
	AutoResetStatusOnly AutoResetBehavior = "status_only"
	// AutoResetClearSchedule deletes the day's blocks and its progress row
	AutoResetClearSchedule AutoResetBehavior = "clear_schedule"
)

// DefaultReminderTime is the daily reminder time used until the user picks one
const DefaultReminderTime = "08:00"

// SchedulingConfig holds the user-controlled knobs read on every scheduling
// decision. It lives in the settings key-value store.
type SchedulingConfig struct {
	NotificationsEnabled bool              `json:"notifications_enabled"`
	DailyReminderTime    string            `json:"daily_reminder_time"`
	NotificationSound    string            `json:"notification_sound,omitempty"`
	AutoResetEnabled     bool              `json:"auto_reset_enabled"`
	AutoResetBehavior    AutoResetBehavior `json:"auto_reset_behavior"`
	LastAutoResetDate    string            `json:"last_auto_reset_date,omitempty"`
}

// DefaultSchedulingConfig returns the configuration used before the user has
// touched any setting
func DefaultSchedulingConfig() SchedulingConfig {
	return SchedulingConfig{
		NotificationsEnabled: false,
		DailyReminderTime:    DefaultReminderTime,
		AutoResetEnabled:     false,
		AutoResetBehavior:    AutoResetStatusOnly,
	}
}

// ReminderClock parses DailyReminderTime ("HH:MM") into hour and minute
func (c SchedulingConfig) ReminderClock() (hour, minute int, err error) {
	t, perr := time.Parse("15:04", c.DailyReminderTime)
	if perr != nil {
		return 0, 0, fmt.Errorf("invalid daily reminder time %q: %w", c.DailyReminderTime, perr)
	}
	return t.Hour(), t.Minute(), nil
}
