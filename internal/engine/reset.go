package engine

import (
	"context"

	"github.com/dayblock/dayblock/internal/models"
	"go.uber.org/zap"
)

const resetMessage = "Your schedule was reset for a new day."

// armMidnightTimer schedules the reset check for the next local midnight.
// The fired callback hops onto the owner loop and re-arms, so each arm is a
// one-shot; a process that sleeps through several midnights catches up via
// the lastAutoResetDate check rather than by replaying missed fires.
func (e *Engine) armMidnightTimer() {
	now := e.clock()
	next := models.StartOfDay(now).AddDate(0, 0, 1)

	e.midnightTimer.Schedule(next.Sub(now), func() {
		e.submitAsync(func(c context.Context) {
			e.checkAutoReset(c)
			if cfg := e.loadConfig(c); cfg.AutoResetEnabled {
				e.armMidnightTimer()
			}
		})
	})
}

// checkAutoReset runs the daily reset if it is enabled and has not already
// run today. It is called from startup, from the midnight timer and from the
// auto-reset toggle, and the persisted lastAutoResetDate guard makes all
// three paths converge on exactly one reset per calendar day — including
// across process restarts.
func (e *Engine) checkAutoReset(c context.Context) {
	cfg := e.loadConfig(c)
	if !cfg.AutoResetEnabled {
		return
	}

	today := models.DateKey(e.clock())
	if cfg.LastAutoResetDate == today {
		return
	}

	e.performReset(c, cfg.AutoResetBehavior)

	cfg.LastAutoResetDate = today
	if err := e.guard.Do("save_settings", func() error {
		return e.settings.SaveSchedulingConfig(c, cfg)
	}); err != nil {
		// The reset itself already ran; if the marker did not persist the
		// next check re-runs against already-reset data, which is harmless
		// for StatusOnly and an empty-day no-op for ClearSchedule.
		e.logger.Warn("auto_reset_marker_not_saved", zap.String("date", today))
	}

	e.guard.Emit(resetMessage)
	e.logger.Info("auto_reset_completed",
		zap.String("date", today),
		zap.String("behavior", string(cfg.AutoResetBehavior)),
	)

	e.reconcileNow(c)
	e.refreshToday(c)
}

// performReset applies the configured behavior to the current day
func (e *Engine) performReset(c context.Context, behavior models.AutoResetBehavior) {
	now := e.clock()
	dayStart := models.StartOfDay(now)
	dayEnd := dayStart.AddDate(0, 0, 1)

	switch behavior {
	case models.AutoResetClearSchedule:
		removed := Value(e.guard, "clear_blocks", 0, func() (int, error) {
			return e.blocks.DeleteRange(c, dayStart, dayEnd)
		})
		if err := e.guard.Do("delete_progress", func() error {
			return e.progress.Delete(c, dayStart)
		}); err == nil {
			e.logger.Info("schedule_cleared", zap.Int("blocks_removed", removed))
		}

	default: // StatusOnly
		blocks := Value(e.guard, "load_blocks", []*models.TimeBlock(nil), func() ([]*models.TimeBlock, error) {
			return e.blocks.LoadRange(c, dayStart, dayEnd)
		})

		reset := 0
		for _, block := range blocks {
			changed, err := applyTransition(block, models.BlockStatusNotStarted)
			if err != nil || !changed {
				continue
			}
			if err := e.guard.Do("update_block", func() error {
				return e.blocks.Update(c, block)
			}); err != nil {
				continue
			}
			reset++
		}
		e.logger.Info("statuses_reset", zap.Int("blocks_reset", reset))
		e.agg.recompute(c, now)
	}
}
