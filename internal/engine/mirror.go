package engine

import (
	"context"

	"github.com/dayblock/dayblock/internal/models"
	"go.uber.org/zap"
)

// mirrorCreate pushes a new block to the calendar mirror and stores the
// returned event id. Every failure here is logged and swallowed; the block's
// own lifecycle never depends on the mirror.
func (e *Engine) mirrorCreate(c context.Context, block *models.TimeBlock) {
	eventID, err := e.mirror.CreateEvent(c, block)
	if err != nil {
		e.logger.Warn("calendar_create_failed",
			zap.String("block_id", block.ID.String()),
			zap.Error(err),
		)
		return
	}
	if eventID == "" {
		return
	}

	block.CalendarEventID = &eventID
	if err := e.guard.Do("update_block", func() error {
		return e.blocks.Update(c, block)
	}); err != nil {
		e.logger.Warn("calendar_event_id_not_saved",
			zap.String("block_id", block.ID.String()),
		)
	}
}

// mirrorUpdate pushes block changes to an existing mirrored event, creating
// one when the block was never mirrored
func (e *Engine) mirrorUpdate(c context.Context, block *models.TimeBlock) {
	if block.CalendarEventID == nil {
		e.mirrorCreate(c, block)
		return
	}
	if err := e.mirror.UpdateEvent(c, block); err != nil {
		e.logger.Warn("calendar_update_failed",
			zap.String("block_id", block.ID.String()),
			zap.Error(err),
		)
	}
}
