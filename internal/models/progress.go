package models

import "time"

// PerformanceLevel is a coarse classification of a day's completion ratio
type PerformanceLevel string

const (
	PerformanceNone      PerformanceLevel = "none"
	PerformancePoor      PerformanceLevel = "poor"
	PerformanceFair      PerformanceLevel = "fair"
	PerformanceGood      PerformanceLevel = "good"
	PerformanceExcellent PerformanceLevel = "excellent"
)

// Classification thresholds for PerformanceLevel. A day with zero blocks is
// always PerformanceNone regardless of these. The Good band starts at 0.60 so
// a two-of-three day (0.667) reads as good rather than fair.
const (
	PerformanceFairThreshold      = 0.40
	PerformanceGoodThreshold      = 0.60
	PerformanceExcellentThreshold = 0.90
)

// ClassifyPerformance maps a completion ratio and block count to a PerformanceLevel
func ClassifyPerformance(completion float64, totalBlocks int) PerformanceLevel {
	switch {
	case totalBlocks == 0:
		return PerformanceNone
	case completion >= PerformanceExcellentThreshold:
		return PerformanceExcellent
	case completion >= PerformanceGoodThreshold:
		return PerformanceGood
	case completion >= PerformanceFairThreshold:
		return PerformanceFair
	default:
		return PerformancePoor
	}
}

// DailyProgress is the recomputed aggregate of block outcomes for one calendar day.
// Count fields are always derived by the aggregator; only Rating, Notes and
// SummaryViewed are user-editable.
type DailyProgress struct {
	Date                 time.Time        `json:"date"`
	TotalBlocks          int              `json:"total_blocks"`
	CompletedBlocks      int              `json:"completed_blocks"`
	SkippedBlocks        int              `json:"skipped_blocks"`
	CompletionPercentage float64          `json:"completion_percentage"`
	PerformanceLevel     PerformanceLevel `json:"performance_level"`
	Rating               *int             `json:"rating,omitempty"`
	Notes                string           `json:"notes,omitempty"`
	SummaryViewed        bool             `json:"summary_viewed"`
}

// WeeklyStats is the rollup of DailyProgress rows for one calendar week.
// The zero value is the "no data" sentinel; callers check TotalDays before
// dividing by anything.
type WeeklyStats struct {
	TotalDays         int     `json:"total_days"`
	CompletedDays     int     `json:"completed_days"`
	AverageCompletion float64 `json:"average_completion"`
	TotalBlocks       int     `json:"total_blocks"`
	TotalCompleted    int     `json:"total_completed"`
}

// DateKey formats a time as the day-granularity key used by the store
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// SameDay reports whether two times fall on the same calendar day in t1's location
func SameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.Date()
	y2, m2, d2 := t2.In(t1.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// StartOfDay truncates a time to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
