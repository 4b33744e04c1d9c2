package engine

import (
	"context"
	"errors"
	"time"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/dayblock/dayblock/internal/store"
)

// WeeklyCompletedDayThreshold is the completion ratio at which a day counts as
// completed in weekly statistics. The insight rules use the same constant.
const WeeklyCompletedDayThreshold = 0.70

// aggregator recomputes daily and weekly progress. It never returns an error:
// missing or faulted per-day data contributes zero and the rollup proceeds
// over the remaining days.
type aggregator struct {
	blocks   BlockStore
	progress ProgressStore
	guard    *Guard
	clock    func() time.Time
}

// recompute rebuilds the progress row for a date from its blocks, preserving
// the user-set rating, notes and summary-viewed flag, and overwrites the
// stored row.
func (a *aggregator) recompute(ctx context.Context, date time.Time) *models.DailyProgress {
	dayStart := models.StartOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	blocks := Value(a.guard, "load_blocks", []*models.TimeBlock(nil), func() ([]*models.TimeBlock, error) {
		return a.blocks.LoadRange(ctx, dayStart, dayEnd)
	})
	prior := Value(a.guard, "load_progress", (*models.DailyProgress)(nil), func() (*models.DailyProgress, error) {
		p, err := a.progress.Load(ctx, dayStart)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return p, err
	})

	total := 0
	completed := 0
	skipped := 0
	for _, block := range blocks {
		if !block.HasValidWindow() {
			continue
		}
		total++
		switch block.Status {
		case models.BlockStatusCompleted:
			completed++
		case models.BlockStatusSkipped:
			skipped++
		}
	}

	completion := 0.0
	if total > 0 {
		completion = float64(completed) / float64(total)
	}

	result := &models.DailyProgress{
		Date:                 dayStart,
		TotalBlocks:          total,
		CompletedBlocks:      completed,
		SkippedBlocks:        skipped,
		CompletionPercentage: completion,
		PerformanceLevel:     models.ClassifyPerformance(completion, total),
	}
	if prior != nil {
		result.Rating = prior.Rating
		result.Notes = prior.Notes
		result.SummaryViewed = prior.SummaryViewed
	}

	// An untouched empty day stays absent from storage; materializing it
	// would resurrect the row the clear-schedule reset just deleted.
	if total == 0 && prior == nil {
		return result
	}

	if err := a.guard.Do("save_progress", func() error {
		return a.progress.Save(ctx, result)
	}); err != nil {
		// The caller still gets the freshly derived counts; the row will be
		// rewritten on the next recompute trigger.
		return result
	}

	return result
}

// weeklyStats rolls the calendar week containing anchor into one summary.
// Days strictly after now are skipped; days without data contribute nothing.
// The zero value is returned when no day in the week has data.
func (a *aggregator) weeklyStats(ctx context.Context, anchor time.Time) models.WeeklyStats {
	now := a.clock()
	start := weekStart(anchor)

	var stats models.WeeklyStats
	var completionSum float64

	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		if day.After(now) {
			continue
		}

		progress := Value(a.guard, "load_progress", (*models.DailyProgress)(nil), func() (*models.DailyProgress, error) {
			p, err := a.progress.Load(ctx, day)
			if errors.Is(err, store.ErrNotFound) {
				// A missing row is a day without data, not a fault
				return nil, nil
			}
			return p, err
		})
		if progress == nil || progress.TotalBlocks == 0 {
			continue
		}

		stats.TotalDays++
		stats.TotalBlocks += progress.TotalBlocks
		stats.TotalCompleted += progress.CompletedBlocks
		completionSum += progress.CompletionPercentage
		if progress.CompletionPercentage >= WeeklyCompletedDayThreshold {
			stats.CompletedDays++
		}
	}

	if stats.TotalDays > 0 {
		stats.AverageCompletion = completionSum / float64(stats.TotalDays)
	}

	return stats
}

// weekDays returns the stored per-day aggregates for the calendar week
// containing anchor, in day order. Days after now, days without blocks and
// faulted days are skipped, like in weeklyStats.
func (a *aggregator) weekDays(ctx context.Context, anchor time.Time) []*models.DailyProgress {
	now := a.clock()
	start := weekStart(anchor)

	var days []*models.DailyProgress
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		if day.After(now) {
			continue
		}

		progress := Value(a.guard, "load_progress", (*models.DailyProgress)(nil), func() (*models.DailyProgress, error) {
			p, err := a.progress.Load(ctx, day)
			if errors.Is(err, store.ErrNotFound) {
				return nil, nil
			}
			return p, err
		})
		if progress == nil || progress.TotalBlocks == 0 {
			continue
		}
		days = append(days, progress)
	}
	return days
}

// weekStart returns the Monday midnight of the week containing t
func weekStart(t time.Time) time.Time {
	day := models.StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
