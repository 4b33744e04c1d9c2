package engine

import (
	"context"
	"time"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/google/uuid"
)

// BlockStore is the persistence contract for time blocks. All calls may fault;
// the engine only reaches them through the access guard.
type BlockStore interface {
	Create(ctx context.Context, block *models.TimeBlock) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TimeBlock, error)
	LoadRange(ctx context.Context, from, to time.Time) ([]*models.TimeBlock, error)
	LoadAll(ctx context.Context) ([]*models.TimeBlock, error)
	Update(ctx context.Context, block *models.TimeBlock) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteRange(ctx context.Context, from, to time.Time) (int, error)
}

// ProgressStore is the persistence contract for daily progress rows
type ProgressStore interface {
	Load(ctx context.Context, date time.Time) (*models.DailyProgress, error)
	LoadOrCreate(ctx context.Context, date time.Time) (*models.DailyProgress, error)
	Save(ctx context.Context, progress *models.DailyProgress) error
	Delete(ctx context.Context, date time.Time) error
	LoadAll(ctx context.Context) ([]*models.DailyProgress, error)
}

// SettingsStore is the persistence contract for the scheduling configuration
type SettingsStore interface {
	LoadSchedulingConfig(ctx context.Context) (models.SchedulingConfig, error)
	SaveSchedulingConfig(ctx context.Context, cfg models.SchedulingConfig) error
}
