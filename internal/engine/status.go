package engine

import (
	"errors"
	"time"

	"github.com/dayblock/dayblock/internal/models"
)

// ErrInvalidTransition is returned when a manual status change is not allowed
// from the block's current status
var ErrInvalidTransition = errors.New("invalid status transition")

// DisplayStatusAt derives the status a block should present at a given
// instant. It is a pure read: completed and skipped are absorbing, an
// unstarted block inside its window shows as current, a future block as
// upcoming. A block whose window has fully passed without being started stays
// not_started — the user must skip it explicitly, there is no automatic
// expiry.
func DisplayStatusAt(block *models.TimeBlock, now time.Time) models.DisplayStatus {
	switch block.Status {
	case models.BlockStatusCompleted:
		return models.DisplayCompleted
	case models.BlockStatusSkipped:
		return models.DisplaySkipped
	}

	switch {
	case now.Before(block.StartTime):
		return models.DisplayUpcoming
	case now.Before(block.EndTime):
		return models.DisplayCurrent
	default:
		if block.Status == models.BlockStatusInProgress {
			return models.DisplayInProgress
		}
		return models.DisplayNotStarted
	}
}

// applyTransition mutates a block's status toward target according to the
// manual transition rules. It reports whether anything changed: a repeated
// call with the block's current status is a no-op, not an error.
func applyTransition(block *models.TimeBlock, target models.BlockStatus) (bool, error) {
	if block.Status == target {
		return false, nil
	}

	switch target {
	case models.BlockStatusInProgress:
		if block.Status != models.BlockStatusNotStarted {
			return false, ErrInvalidTransition
		}
	case models.BlockStatusCompleted, models.BlockStatusSkipped:
		if block.Status.IsTerminal() {
			return false, ErrInvalidTransition
		}
	case models.BlockStatusNotStarted:
		// Reset is allowed from any status; only the reset coordinator and
		// its CLI counterpart use it.
	default:
		return false, ErrInvalidTransition
	}

	block.Status = target
	return true, nil
}
