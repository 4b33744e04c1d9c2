package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockStatus represents the persisted lifecycle status of a time block
type BlockStatus string

const (
	BlockStatusNotStarted BlockStatus = "not_started"
	BlockStatusInProgress BlockStatus = "in_progress"
	BlockStatusCompleted  BlockStatus = "completed"
	BlockStatusSkipped    BlockStatus = "skipped"
)

// IsTerminal reports whether the status is absorbing (completed or skipped)
func (s BlockStatus) IsTerminal() bool {
	return s == BlockStatusCompleted || s == BlockStatusSkipped
}

// DisplayStatus represents the derived status of a block relative to the clock.
// It is never persisted; it is recomputed from the stored status and the window.
type DisplayStatus string

const (
	DisplayUpcoming   DisplayStatus = "upcoming"
	DisplayCurrent    DisplayStatus = "current"
	DisplayNotStarted DisplayStatus = "not_started"
	DisplayInProgress DisplayStatus = "in_progress"
	DisplayCompleted  DisplayStatus = "completed"
	DisplaySkipped    DisplayStatus = "skipped"
)

// TimeBlock represents a planned activity with a start/end window
type TimeBlock struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	Notes           string      `json:"notes,omitempty"`
	Category        string      `json:"category,omitempty"`
	Icon            string      `json:"icon,omitempty"`
	Status          BlockStatus `json:"status"`
	CalendarEventID *string     `json:"calendar_event_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// HasValidWindow reports whether the block's window satisfies end > start
func (b *TimeBlock) HasValidWindow() bool {
	return b.EndTime.After(b.StartTime)
}

// Duration returns the window length, or 0 for an invalid window
func (b *TimeBlock) Duration() time.Duration {
	if !b.HasValidWindow() {
		return 0
	}
	return b.EndTime.Sub(b.StartTime)
}
