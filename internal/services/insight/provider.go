// Package insight turns weekly progress data into a short natural-language
// summary with suggestions. An OpenAI-backed provider does the generation;
// a deterministic rule-based provider serves as the offline fallback.
package insight

import (
	"context"

	"github.com/dayblock/dayblock/internal/models"
)

// Provider generates a weekly insight from aggregated progress data
type Provider interface {
	WeeklyInsight(ctx context.Context, stats models.WeeklyStats, days []*models.DailyProgress) (*Insight, error)
}

// Insight is the generated result
type Insight struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions,omitempty"`
	Source      string   `json:"source"` // "openai" or "rules"
}
