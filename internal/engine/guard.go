package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/dayblock/dayblock/internal/store"
	"go.uber.org/zap"
)

// ErrStoreUnavailable is what callers see in place of a raw storage fault.
// The matching detail is logged and a transient user message is recorded.
var ErrStoreUnavailable = errors.New("storage unavailable")

// DefaultMessageTTL is how long a transient user-facing message stays visible
const DefaultMessageTTL = 5 * time.Second

// Guard wraps every call into the persistence collaborator so a storage fault
// degrades to a typed error or fallback value instead of crashing the process.
// A fault also records a short-lived message for the presentation layer.
type Guard struct {
	logger *zap.Logger
	clock  func() time.Time
	ttl    time.Duration

	mu           sync.Mutex
	message      string
	messageUntil time.Time
}

// NewGuard creates an access guard
func NewGuard(logger *zap.Logger, clock func() time.Time) *Guard {
	if clock == nil {
		clock = time.Now
	}
	return &Guard{logger: logger, clock: clock, ttl: DefaultMessageTTL}
}

// Value runs a read against the store. On fault it logs, records the
// transient message and returns fallback; availability wins over the
// correctness of a single read. Callers that need stronger guarantees must
// judge the plausibility of the returned value themselves.
func Value[T any](g *Guard, op string, fallback T, fn func() (T, error)) T {
	v, err := fn()
	if err != nil {
		g.recordFault(op, err)
		return fallback
	}
	return v
}

// ValueErr is Value for mutation paths that must know the read failed: the
// fallback is returned together with ErrStoreUnavailable. A not-found result
// passes through untouched; it is an answer, not a fault.
func ValueErr[T any](g *Guard, op string, fallback T, fn func() (T, error)) (T, error) {
	v, err := fn()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fallback, err
		}
		g.recordFault(op, err)
		return fallback, ErrStoreUnavailable
	}
	return v, nil
}

// Do runs a write against the store. On fault it logs, records the transient
// message and returns ErrStoreUnavailable. Not-found passes through.
func (g *Guard) Do(op string, fn func() error) error {
	if err := fn(); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return err
		}
		g.recordFault(op, err)
		return ErrStoreUnavailable
	}
	return nil
}

// Emit records a transient user-facing message that is not tied to a fault
// (the midnight reset uses it for its "fresh day" notice)
func (g *Guard) Emit(message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.message = message
	g.messageUntil = g.clock().Add(g.ttl)
}

// Message returns the current transient message, or "" once it has expired
func (g *Guard) Message() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.message == "" || g.clock().After(g.messageUntil) {
		return ""
	}
	return g.message
}

func (g *Guard) recordFault(op string, err error) {
	g.logger.Warn("store_fault",
		zap.String("operation", op),
		zap.Error(err),
	)
	g.Emit("Something went wrong loading your data. Please try again.")
}
