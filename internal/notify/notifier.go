// Package notify defines the platform local-notification contract the engine
// schedules against. Delivery timing and ordering belong to the platform, not
// to this package; the engine only keeps the set of requested notifications
// consistent with the intended schedule.
package notify

import (
	"context"

	"github.com/dayblock/dayblock/internal/models"
)

// Notifier is the consumed platform notification interface
type Notifier interface {
	// RequestPermission asks the platform for notification permission.
	// Called only on an explicit user enable action, never implicitly.
	RequestPermission(ctx context.Context) (bool, error)

	// PendingRequestIDs returns the ids of notifications the platform
	// currently has queued
	PendingRequestIDs(ctx context.Context) ([]string, error)

	// Submit queues one notification request
	Submit(ctx context.Context, req models.NotificationRequest) error

	// Cancel removes the given pending request ids
	Cancel(ctx context.Context, ids []string) error
}
