package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind distinguishes the three reminder types the engine schedules
type NotificationKind string

const (
	NotificationBlockStart    NotificationKind = "block_start"
	NotificationDailyReminder NotificationKind = "daily_reminder"
	NotificationMidnightReset NotificationKind = "midnight_reset"
)

// Singleton notification IDs. Block-start IDs are derived per block via
// BlockStartNotificationID.
const (
	DailyReminderID = "daily-reminder"
	MidnightResetID = "midnight-reset"
)

// BlockStartNotificationID derives the stable notification id for a block.
// Deriving it twice for the same block yields the same id, which is what makes
// scheduler reconciliation idempotent.
func BlockStartNotificationID(blockID uuid.UUID) string {
	return "block-start:" + blockID.String()
}

// NotificationRequest is one reminder the engine wants the platform to deliver
type NotificationRequest struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	TriggerAt time.Time        `json:"trigger_at"`
	Repeats   bool             `json:"repeats"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Sound     string           `json:"sound,omitempty"`
}
