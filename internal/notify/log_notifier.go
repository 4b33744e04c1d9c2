package notify

import (
	"context"
	"sort"
	"sync"

	"github.com/dayblock/dayblock/internal/models"
	"go.uber.org/zap"
)

// LogNotifier is the Notifier used by the server host, which has no OS
// notification center of its own: it keeps the pending set in memory and logs
// every submit/cancel so the scheduling behavior is observable.
type LogNotifier struct {
	logger *zap.Logger

	mu      sync.Mutex
	pending map[string]models.NotificationRequest
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger:  logger,
		pending: make(map[string]models.NotificationRequest),
	}
}

// RequestPermission always grants; there is no OS permission prompt here
func (n *LogNotifier) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

// PendingRequestIDs returns the ids currently queued, sorted for stable logs
func (n *LogNotifier) PendingRequestIDs(ctx context.Context) ([]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ids := make([]string, 0, len(n.pending))
	for id := range n.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Submit queues a notification request
func (n *LogNotifier) Submit(ctx context.Context, req models.NotificationRequest) error {
	n.mu.Lock()
	n.pending[req.ID] = req
	n.mu.Unlock()

	n.logger.Info("notification_scheduled",
		zap.String("id", req.ID),
		zap.String("kind", string(req.Kind)),
		zap.Time("trigger_at", req.TriggerAt),
		zap.Bool("repeats", req.Repeats),
	)
	return nil
}

// Cancel removes pending request ids; unknown ids are ignored
func (n *LogNotifier) Cancel(ctx context.Context, ids []string) error {
	n.mu.Lock()
	for _, id := range ids {
		delete(n.pending, id)
	}
	n.mu.Unlock()

	n.logger.Info("notifications_canceled", zap.Strings("ids", ids))
	return nil
}

// Pending returns a copy of one pending request, for tests and debugging
func (n *LogNotifier) Pending(id string) (models.NotificationRequest, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	req, ok := n.pending[id]
	return req, ok
}
