package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dayblock/dayblock/internal/models"
)

// ProgressRepository handles daily-progress database operations
type ProgressRepository struct {
	store *Store
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(store *Store) *ProgressRepository {
	return &ProgressRepository{store: store}
}

// LoadOrCreate returns the progress row for a date, creating an empty one the
// first time the date is queried
func (r *ProgressRepository) LoadOrCreate(ctx context.Context, date time.Time) (*models.DailyProgress, error) {
	progress, err := r.load(ctx, date)
	if err == nil {
		return progress, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	progress = &models.DailyProgress{
		Date:             models.StartOfDay(date),
		PerformanceLevel: models.PerformanceNone,
	}
	if err := r.Save(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *ProgressRepository) load(ctx context.Context, date time.Time) (*models.DailyProgress, error) {
	query := r.store.rebind(`
		SELECT date, total_blocks, completed_blocks, skipped_blocks, completion_percentage, performance_level, rating, notes, summary_viewed
		FROM daily_progress
		WHERE date = ?
	`)
	return scanProgress(r.store.db.QueryRowContext(ctx, query, models.DateKey(date)))
}

// Load returns the progress row for a date, or ErrNotFound. Unlike
// LoadOrCreate it never writes; the weekly rollup uses it so that merely
// looking at a week does not materialize empty rows.
func (r *ProgressRepository) Load(ctx context.Context, date time.Time) (*models.DailyProgress, error) {
	progress, err := r.load(ctx, date)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("progress %s: %w", models.DateKey(date), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	return progress, nil
}

// Save writes the progress row for its date, replacing any prior row
func (r *ProgressRepository) Save(ctx context.Context, progress *models.DailyProgress) error {
	query := r.store.rebind(`
		INSERT INTO daily_progress (date, total_blocks, completed_blocks, skipped_blocks, completion_percentage, performance_level, rating, notes, summary_viewed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_blocks = excluded.total_blocks,
			completed_blocks = excluded.completed_blocks,
			skipped_blocks = excluded.skipped_blocks,
			completion_percentage = excluded.completion_percentage,
			performance_level = excluded.performance_level,
			rating = excluded.rating,
			notes = excluded.notes,
			summary_viewed = excluded.summary_viewed
	`)

	var rating sql.NullInt64
	if progress.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*progress.Rating), Valid: true}
	}

	viewed := 0
	if progress.SummaryViewed {
		viewed = 1
	}

	_, err := r.store.db.ExecContext(ctx, query,
		models.DateKey(progress.Date),
		progress.TotalBlocks,
		progress.CompletedBlocks,
		progress.SkippedBlocks,
		progress.CompletionPercentage,
		string(progress.PerformanceLevel),
		rating,
		progress.Notes,
		viewed,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}

	return nil
}

// Delete removes the progress row for a date. Deleting a missing row is not
// an error; the reset coordinator calls this unconditionally.
func (r *ProgressRepository) Delete(ctx context.Context, date time.Time) error {
	query := r.store.rebind(`DELETE FROM daily_progress WHERE date = ?`)
	if _, err := r.store.db.ExecContext(ctx, query, models.DateKey(date)); err != nil {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}

// LoadAll retrieves every progress row ordered by date (used by export and
// statistics)
func (r *ProgressRepository) LoadAll(ctx context.Context) ([]*models.DailyProgress, error) {
	query := `
		SELECT date, total_blocks, completed_blocks, skipped_blocks, completion_percentage, performance_level, rating, notes, summary_viewed
		FROM daily_progress
		ORDER BY date ASC
	`

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var all []*models.DailyProgress
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		all = append(all, progress)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress: %w", err)
	}

	return all, nil
}

func scanProgress(row scanner) (*models.DailyProgress, error) {
	var (
		progress models.DailyProgress
		dateStr  string
		level    string
		rating   sql.NullInt64
		viewed   int
	)

	err := row.Scan(
		&dateStr,
		&progress.TotalBlocks,
		&progress.CompletedBlocks,
		&progress.SkippedBlocks,
		&progress.CompletionPercentage,
		&level,
		&rating,
		&progress.Notes,
		&viewed,
	)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", dateStr, err)
	}
	progress.Date = date
	progress.PerformanceLevel = models.PerformanceLevel(level)
	if rating.Valid {
		v := int(rating.Int64)
		progress.Rating = &v
	}
	progress.SummaryViewed = viewed != 0

	return &progress, nil
}
