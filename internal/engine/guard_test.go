package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/dayblock/dayblock/internal/store"
	"go.uber.org/zap"
)

func TestGuardValueFallsBackOnFault(t *testing.T) {
	t.Parallel()

	guard := NewGuard(zap.NewNop(), nil)

	got := Value(guard, "load_blocks", 42, func() (int, error) {
		return 0, errors.New("disk I/O error")
	})
	if got != 42 {
		t.Errorf("Value() = %d, want fallback 42", got)
	}
	if guard.Message() == "" {
		t.Error("expected a transient message after a fault")
	}
}

func TestGuardValuePassesThroughOnSuccess(t *testing.T) {
	t.Parallel()

	guard := NewGuard(zap.NewNop(), nil)

	got := Value(guard, "load_blocks", 0, func() (int, error) {
		return 7, nil
	})
	if got != 7 {
		t.Errorf("Value() = %d, want 7", got)
	}
	if msg := guard.Message(); msg != "" {
		t.Errorf("unexpected transient message %q", msg)
	}
}

func TestGuardValueErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "fault becomes store unavailable", err: errors.New("database is locked"), wantErr: ErrStoreUnavailable},
		{name: "not found passes through", err: store.ErrNotFound, wantErr: store.ErrNotFound},
		{name: "success", err: nil, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			guard := NewGuard(zap.NewNop(), nil)
			_, err := ValueErr(guard, "load_block", "", func() (string, error) {
				if tt.err != nil {
					return "", tt.err
				}
				return "ok", nil
			})

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGuardDoMapsFaults(t *testing.T) {
	t.Parallel()

	guard := NewGuard(zap.NewNop(), nil)

	err := guard.Do("save_progress", func() error {
		return errors.New("disk full")
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}

	if err := guard.Do("save_progress", func() error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGuardMessageExpires(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	guard := NewGuard(zap.NewNop(), func() time.Time { return now })

	guard.Emit("Your schedule was reset for a new day.")
	if guard.Message() == "" {
		t.Fatal("message should be visible immediately after Emit")
	}

	now = now.Add(DefaultMessageTTL - time.Second)
	if guard.Message() == "" {
		t.Error("message expired before its TTL")
	}

	now = now.Add(2 * time.Second)
	if msg := guard.Message(); msg != "" {
		t.Errorf("message %q should have expired", msg)
	}
}
