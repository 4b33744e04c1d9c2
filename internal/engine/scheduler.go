package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/dayblock/dayblock/internal/notify"
	"go.uber.org/zap"
)

// scheduler keeps the platform's pending notification set consistent with the
// current schedule. Each pass recomputes the target set from scratch and
// applies only the difference against what is already pending, so a submit or
// cancel that the platform rejects is retried implicitly on the next pass.
type scheduler struct {
	notifier notify.Notifier
	logger   *zap.Logger
	clock    func() time.Time
}

// reconcileResult reports what one pass changed
type reconcileResult struct {
	Submitted []string
	Canceled  []string
	Kept      int
}

// targetSet computes the notifications that should exist right now. Without
// permission the target is empty — scheduling degrades silently; denial is
// only ever surfaced by the explicit enable action.
func (s *scheduler) targetSet(blocks []*models.TimeBlock, cfg models.SchedulingConfig, permissionGranted bool) []models.NotificationRequest {
	if !permissionGranted {
		return nil
	}

	now := s.clock()
	var target []models.NotificationRequest

	if cfg.NotificationsEnabled {
		for _, block := range blocks {
			if block.Status.IsTerminal() {
				continue
			}
			if !block.StartTime.After(now) {
				continue
			}
			target = append(target, models.NotificationRequest{
				ID:        models.BlockStartNotificationID(block.ID),
				Kind:      models.NotificationBlockStart,
				TriggerAt: block.StartTime,
				Title:     block.Title,
				Body:      fmt.Sprintf("Starts at %s", block.StartTime.Local().Format("15:04")),
				Sound:     cfg.NotificationSound,
			})
		}

		if hour, minute, err := cfg.ReminderClock(); err == nil {
			target = append(target, models.NotificationRequest{
				ID:        models.DailyReminderID,
				Kind:      models.NotificationDailyReminder,
				TriggerAt: nextClockTime(now, hour, minute),
				Repeats:   true,
				Title:     "Plan your day",
				Body:      "Review today's time blocks and get started.",
				Sound:     cfg.NotificationSound,
			})
		} else {
			s.logger.Warn("daily_reminder_time_invalid", zap.Error(err))
		}
	}

	if cfg.AutoResetEnabled {
		target = append(target, models.NotificationRequest{
			ID:        models.MidnightResetID,
			Kind:      models.NotificationMidnightReset,
			TriggerAt: nextClockTime(now, 0, 0),
			Repeats:   true,
			Title:     "Fresh day",
			Body:      "Your schedule has been reset for a new day.",
		})
	}

	return target
}

// reconcile diffs the target set against the platform's pending set and
// applies the difference. It never cancels everything up front: ids present in
// both sets are left untouched so there is no window with zero notifications
// pending. Running it twice with no intervening change is a no-op.
func (s *scheduler) reconcile(ctx context.Context, blocks []*models.TimeBlock, cfg models.SchedulingConfig, permissionGranted bool) (reconcileResult, error) {
	var result reconcileResult

	target := s.targetSet(blocks, cfg, permissionGranted)
	targetByID := make(map[string]models.NotificationRequest, len(target))
	for _, req := range target {
		targetByID[req.ID] = req
	}

	pending, err := s.notifier.PendingRequestIDs(ctx)
	if err != nil {
		// Without the pending set any diff would be guesswork; the next
		// reconciliation trigger retries from scratch.
		s.logger.Warn("pending_notifications_query_failed", zap.Error(err))
		return result, fmt.Errorf("failed to query pending notifications: %w", err)
	}

	pendingSet := make(map[string]struct{}, len(pending))
	var stale []string
	for _, id := range pending {
		pendingSet[id] = struct{}{}
		if _, ok := targetByID[id]; !ok {
			stale = append(stale, id)
		}
	}

	if len(stale) > 0 {
		if err := s.notifier.Cancel(ctx, stale); err != nil {
			s.logger.Warn("notification_cancel_failed",
				zap.Strings("ids", stale),
				zap.Error(err),
			)
		} else {
			result.Canceled = stale
		}
	}

	for _, req := range target {
		if _, ok := pendingSet[req.ID]; ok {
			result.Kept++
			continue
		}
		if err := s.notifier.Submit(ctx, req); err != nil {
			s.logger.Warn("notification_submit_failed",
				zap.String("id", req.ID),
				zap.Error(err),
			)
			continue
		}
		result.Submitted = append(result.Submitted, req.ID)
	}

	s.logger.Debug("notifications_reconciled",
		zap.Int("target", len(target)),
		zap.Int("submitted", len(result.Submitted)),
		zap.Int("canceled", len(result.Canceled)),
		zap.Int("kept", result.Kept),
	)

	return result, nil
}

// nextClockTime returns the next occurrence of hour:minute after now
func nextClockTime(now time.Time, hour, minute int) time.Time {
	y, m, d := now.Date()
	next := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
