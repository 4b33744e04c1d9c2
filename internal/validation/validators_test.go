package validation

import (
	"testing"
	"time"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/google/uuid"
)

func TestValidateBlockStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"not_started", "not_started", false},
		{"in_progress", "in_progress", false},
		{"completed", "completed", false},
		{"skipped", "skipped", false},
		{"empty", "", true},
		{"unknown", "paused", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateBlockStatus(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBlockStatus(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateResetBehavior(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"status_only", "status_only", false},
		{"clear_schedule", "clear_schedule", false},
		{"unknown", "nuke_everything", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateResetBehavior(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateResetBehavior(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBlockWindow(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		title   string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{"valid", "deep work", base, base.Add(time.Hour), false},
		{"empty title", "   ", base, base.Add(time.Hour), true},
		{"end equals start", "standup", base, base, true},
		{"end before start", "lunch", base, base.Add(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := &models.TimeBlock{ID: uuid.New(), Title: tt.title, StartTime: tt.start, EndTime: tt.end}
			err := ValidateBlockWindow(b)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBlockWindow() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  morning run  ", "morning run"},
		{"strips control chars", "plan\x00ning", "planning"},
		{"keeps newline and tab", "a\n\tb", "a\n\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
