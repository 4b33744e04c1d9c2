package models

import (
	"testing"
	"time"
)

func TestClassifyPerformance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		completion float64
		total      int
		want       PerformanceLevel
	}{
		{"zero blocks", 0, 0, PerformanceNone},
		{"zero blocks ignores ratio", 1.0, 0, PerformanceNone},
		{"poor", 0.39, 5, PerformancePoor},
		{"fair lower bound", 0.40, 5, PerformanceFair},
		{"fair upper", 0.59, 5, PerformanceFair},
		{"good lower bound", 0.60, 5, PerformanceGood},
		{"two of three is good", 2.0 / 3.0, 3, PerformanceGood},
		{"good upper", 0.89, 5, PerformanceGood},
		{"excellent lower bound", 0.90, 5, PerformanceExcellent},
		{"excellent full", 1.0, 5, PerformanceExcellent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyPerformance(tt.completion, tt.total); got != tt.want {
				t.Errorf("ClassifyPerformance(%v, %d) = %s, want %s", tt.completion, tt.total, got, tt.want)
			}
		})
	}
}

func TestSchedulingConfig_ReminderClock(t *testing.T) {
	t.Parallel()

	cfg := DefaultSchedulingConfig()
	h, m, err := cfg.ReminderClock()
	if err != nil {
		t.Fatalf("ReminderClock() error = %v", err)
	}
	if h != 8 || m != 0 {
		t.Errorf("ReminderClock() = %d:%d, want 8:00", h, m)
	}

	cfg.DailyReminderTime = "21:45"
	h, m, err = cfg.ReminderClock()
	if err != nil {
		t.Fatalf("ReminderClock() error = %v", err)
	}
	if h != 21 || m != 45 {
		t.Errorf("ReminderClock() = %d:%d, want 21:45", h, m)
	}

	cfg.DailyReminderTime = "9 oclock"
	if _, _, err := cfg.ReminderClock(); err == nil {
		t.Error("expected error for malformed reminder time")
	}
}

func TestSameDay(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 2, 0, 1, 0, 0, time.UTC)
	d3 := time.Date(2025, 6, 3, 0, 1, 0, 0, time.UTC)

	if !SameDay(d1, d2) {
		t.Error("expected same day")
	}
	if SameDay(d1, d3) {
		t.Error("expected different days")
	}
}

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	d := time.Date(2025, 6, 2, 17, 30, 12, 99, time.UTC)
	got := StartOfDay(d)
	want := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}
