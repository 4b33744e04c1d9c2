package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/google/uuid"
)

// timeLayout is the storage format for timestamps. RFC3339 UTC strings sort
// lexicographically, which the range queries rely on.
const timeLayout = time.RFC3339

// BlockRepository handles time-block database operations
type BlockRepository struct {
	store *Store
}

// NewBlockRepository creates a new block repository
func NewBlockRepository(store *Store) *BlockRepository {
	return &BlockRepository{store: store}
}

// Create creates a new time block
func (r *BlockRepository) Create(ctx context.Context, block *models.TimeBlock) error {
	query := r.store.rebind(`
		INSERT INTO time_blocks (id, title, start_time, end_time, notes, category, icon, status, calendar_event_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	now := time.Now().UTC()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = now
	}
	block.UpdatedAt = now

	_, err := r.store.db.ExecContext(ctx, query,
		block.ID.String(),
		block.Title,
		block.StartTime.UTC().Format(timeLayout),
		block.EndTime.UTC().Format(timeLayout),
		block.Notes,
		block.Category,
		block.Icon,
		string(block.Status),
		block.CalendarEventID,
		block.CreatedAt.Format(timeLayout),
		block.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create block: %w", err)
	}

	return nil
}

// GetByID retrieves a block by ID
func (r *BlockRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TimeBlock, error) {
	query := r.store.rebind(`
		SELECT id, title, start_time, end_time, notes, category, icon, status, calendar_event_id, created_at, updated_at
		FROM time_blocks
		WHERE id = ?
	`)

	block, err := scanBlock(r.store.db.QueryRowContext(ctx, query, id.String()))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("block %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get block: %w", err)
	}

	return block, nil
}

// LoadRange retrieves all blocks whose start time falls in [from, to), ordered
// by start time
func (r *BlockRepository) LoadRange(ctx context.Context, from, to time.Time) ([]*models.TimeBlock, error) {
	query := r.store.rebind(`
		SELECT id, title, start_time, end_time, notes, category, icon, status, calendar_event_id, created_at, updated_at
		FROM time_blocks
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC
	`)

	rows, err := r.store.db.QueryContext(ctx, query,
		from.UTC().Format(timeLayout),
		to.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*models.TimeBlock
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocks: %w", err)
	}

	return blocks, nil
}

// LoadAll retrieves every stored block ordered by start time (used by export)
func (r *BlockRepository) LoadAll(ctx context.Context) ([]*models.TimeBlock, error) {
	query := `
		SELECT id, title, start_time, end_time, notes, category, icon, status, calendar_event_id, created_at, updated_at
		FROM time_blocks
		ORDER BY start_time ASC
	`

	rows, err := r.store.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*models.TimeBlock
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blocks: %w", err)
	}

	return blocks, nil
}

// Update updates an existing block
func (r *BlockRepository) Update(ctx context.Context, block *models.TimeBlock) error {
	query := r.store.rebind(`
		UPDATE time_blocks
		SET title = ?, start_time = ?, end_time = ?, notes = ?, category = ?, icon = ?, status = ?, calendar_event_id = ?, updated_at = ?
		WHERE id = ?
	`)

	block.UpdatedAt = time.Now().UTC()

	result, err := r.store.db.ExecContext(ctx, query,
		block.Title,
		block.StartTime.UTC().Format(timeLayout),
		block.EndTime.UTC().Format(timeLayout),
		block.Notes,
		block.Category,
		block.Icon,
		string(block.Status),
		block.CalendarEventID,
		block.UpdatedAt.Format(timeLayout),
		block.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update block: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("block %s: %w", block.ID, ErrNotFound)
	}

	return nil
}

// Delete deletes a block by ID
func (r *BlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := r.store.rebind(`DELETE FROM time_blocks WHERE id = ?`)

	result, err := r.store.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("block %s: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteRange deletes all blocks whose start time falls in [from, to) and
// returns the number removed
func (r *BlockRepository) DeleteRange(ctx context.Context, from, to time.Time) (int, error) {
	query := r.store.rebind(`DELETE FROM time_blocks WHERE start_time >= ? AND start_time < ?`)

	result, err := r.store.db.ExecContext(ctx, query,
		from.UTC().Format(timeLayout),
		to.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete blocks: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanBlock(row scanner) (*models.TimeBlock, error) {
	var (
		block           models.TimeBlock
		idStr           string
		startStr        string
		endStr          string
		statusStr       string
		calendarEventID sql.NullString
		createdStr      string
		updatedStr      string
	)

	err := row.Scan(
		&idStr,
		&block.Title,
		&startStr,
		&endStr,
		&block.Notes,
		&block.Category,
		&block.Icon,
		&statusStr,
		&calendarEventID,
		&createdStr,
		&updatedStr,
	)
	if err != nil {
		return nil, err
	}

	block.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid block id %q: %w", idStr, err)
	}
	block.Status = models.BlockStatus(statusStr)
	if calendarEventID.Valid {
		block.CalendarEventID = &calendarEventID.String
	}

	for _, field := range []struct {
		dst *time.Time
		src string
	}{
		{&block.StartTime, startStr},
		{&block.EndTime, endStr},
		{&block.CreatedAt, createdStr},
		{&block.UpdatedAt, updatedStr},
	} {
		t, err := time.Parse(timeLayout, field.src)
		if err != nil {
			return nil, fmt.Errorf("invalid stored timestamp %q: %w", field.src, err)
		}
		*field.dst = t
	}

	return &block, nil
}
