package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("block_status", validateBlockStatus); err != nil {
		panic(fmt.Sprintf("failed to register block_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("reset_behavior", validateResetBehavior); err != nil {
		panic(fmt.Sprintf("failed to register reset_behavior validator: %v", err))
	}
	if err := Validate.RegisterValidation("clock_time", validateClockTime); err != nil {
		panic(fmt.Sprintf("failed to register clock_time validator: %v", err))
	}
}

// validateBlockStatus validates that a string is a valid BlockStatus enum value
func validateBlockStatus(fl validator.FieldLevel) bool {
	return ValidateBlockStatus(fl.Field().String()) == nil
}

// validateResetBehavior validates that a string is a valid AutoResetBehavior enum value
func validateResetBehavior(fl validator.FieldLevel) bool {
	return ValidateResetBehavior(fl.Field().String()) == nil
}

// validateClockTime validates an "HH:MM" time-of-day string
func validateClockTime(fl validator.FieldLevel) bool {
	cfg := models.SchedulingConfig{DailyReminderTime: fl.Field().String()}
	_, _, err := cfg.ReminderClock()
	return err == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateBlockStatus validates a BlockStatus string value
func ValidateBlockStatus(value string) error {
	status := models.BlockStatus(value)
	switch status {
	case models.BlockStatusNotStarted, models.BlockStatusInProgress, models.BlockStatusCompleted, models.BlockStatusSkipped:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'not_started', 'in_progress', 'completed', or 'skipped')", value)
	}
}

// ValidateResetBehavior validates an AutoResetBehavior string value
func ValidateResetBehavior(value string) error {
	behavior := models.AutoResetBehavior(value)
	switch behavior {
	case models.AutoResetStatusOnly, models.AutoResetClearSchedule:
		return nil
	default:
		return fmt.Errorf("invalid auto reset behavior: %s (must be 'status_only' or 'clear_schedule')", value)
	}
}

// ValidateBlockWindow checks the invariants shared by every block write path.
// Blocks violating them never reach the store.
func ValidateBlockWindow(block *models.TimeBlock) error {
	if strings.TrimSpace(block.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !block.HasValidWindow() {
		return fmt.Errorf("block window invalid: end time must be after start time")
	}
	return nil
}
