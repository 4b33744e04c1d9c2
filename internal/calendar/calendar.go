// Package calendar defines the optional external-calendar mirroring contract.
// Mirror failures are never fatal to a block's own lifecycle; the engine logs
// them and moves on.
package calendar

import (
	"context"

	"github.com/dayblock/dayblock/internal/models"
)

// Mirror is the consumed calendar-event interface
type Mirror interface {
	// CreateEvent mirrors a block into the external calendar and returns the
	// opaque event id owned by the calendar side
	CreateEvent(ctx context.Context, block *models.TimeBlock) (string, error)

	// UpdateEvent pushes block changes to the existing mirrored event
	UpdateEvent(ctx context.Context, block *models.TimeBlock) error

	// DeleteEvent removes the mirrored event
	DeleteEvent(ctx context.Context, eventID string) error
}

// NoopMirror is used when no calendar integration is configured
type NoopMirror struct{}

func (NoopMirror) CreateEvent(ctx context.Context, block *models.TimeBlock) (string, error) {
	return "", nil
}

func (NoopMirror) UpdateEvent(ctx context.Context, block *models.TimeBlock) error { return nil }

func (NoopMirror) DeleteEvent(ctx context.Context, eventID string) error { return nil }
