// Package export renders the full data set as a single JSON document, for
// backup and for moving data between devices.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dayblock/dayblock/internal/models"
)

// FormatVersion identifies the document layout for future importers
const FormatVersion = "1"

// Document is the top-level export payload. The top-level keys are the
// document's published wire format and use camelCase; nested objects keep the
// API's field spellings.
type Document struct {
	ExportInfo    Info                    `json:"exportInfo"`
	TimeBlocks    []*models.TimeBlock     `json:"timeBlocks"`
	DailyProgress []*models.DailyProgress `json:"dailyProgress"`
	Settings      models.SchedulingConfig `json:"settings"`
	Statistics    Statistics              `json:"statistics"`
}

// Info describes when and how the document was produced
type Info struct {
	Version    string `json:"version"`
	ExportedAt string `json:"exported_at"`
}

// Statistics is an all-time rollup computed at export time so the document is
// readable without re-deriving anything
type Statistics struct {
	TotalBlocks       int     `json:"total_blocks"`
	CompletedBlocks   int     `json:"completed_blocks"`
	SkippedBlocks     int     `json:"skipped_blocks"`
	TrackedDays       int     `json:"tracked_days"`
	OverallCompletion float64 `json:"overall_completion"`
	BestDay           string  `json:"best_day,omitempty"`
}

// Build assembles a document from the full data set
func Build(blocks []*models.TimeBlock, progress []*models.DailyProgress, settings models.SchedulingConfig, now time.Time) *Document {
	doc := &Document{
		ExportInfo: Info{
			Version:    FormatVersion,
			ExportedAt: now.UTC().Format(time.RFC3339),
		},
		TimeBlocks:    blocks,
		DailyProgress: progress,
		Settings:      settings,
	}

	for _, block := range blocks {
		doc.Statistics.TotalBlocks++
		switch block.Status {
		case models.BlockStatusCompleted:
			doc.Statistics.CompletedBlocks++
		case models.BlockStatusSkipped:
			doc.Statistics.SkippedBlocks++
		}
	}
	best := -1.0
	for _, day := range progress {
		if day.TotalBlocks == 0 {
			continue
		}
		doc.Statistics.TrackedDays++
		if day.CompletionPercentage > best {
			best = day.CompletionPercentage
			doc.Statistics.BestDay = models.DateKey(day.Date)
		}
	}
	if doc.Statistics.TotalBlocks > 0 {
		doc.Statistics.OverallCompletion = float64(doc.Statistics.CompletedBlocks) / float64(doc.Statistics.TotalBlocks)
	}

	return doc
}

// WriteJSON pretty-prints the document to w
func (d *Document) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
