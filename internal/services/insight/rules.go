package insight

import (
	"context"
	"fmt"

	"github.com/dayblock/dayblock/internal/models"
)

// RuleProvider generates insights from fixed rules. It backs the API when no
// OpenAI key is configured and serves as the fallback when the API call
// fails, so the weekly summary surface always has something to show.
type RuleProvider struct{}

// NewRuleProvider creates the rule-based provider
func NewRuleProvider() *RuleProvider {
	return &RuleProvider{}
}

// WeeklyInsight derives a summary and suggestions from the weekly rollup
func (p *RuleProvider) WeeklyInsight(ctx context.Context, stats models.WeeklyStats, days []*models.DailyProgress) (*Insight, error) {
	if stats.TotalDays == 0 {
		return &Insight{
			Summary: "No time blocks were scheduled this week. Plan a few blocks to start building the habit.",
			Source:  "rules",
		}, nil
	}

	summary := fmt.Sprintf("You scheduled blocks on %d day(s) this week and completed %d of %d blocks (%.0f%% average daily completion).",
		stats.TotalDays, stats.TotalCompleted, stats.TotalBlocks, stats.AverageCompletion*100)

	var suggestions []string
	switch {
	case stats.AverageCompletion >= models.PerformanceExcellentThreshold:
		summary += " An excellent week."
		suggestions = append(suggestions, "Your plan matches your capacity well; consider adding one stretch block.")
	case stats.AverageCompletion >= models.PerformanceGoodThreshold:
		summary += " A solid week overall."
		suggestions = append(suggestions, "You are close to a full week; look at which block you most often drop.")
	case stats.AverageCompletion >= models.PerformanceFairThreshold:
		suggestions = append(suggestions,
			"Try scheduling fewer blocks and completing all of them.",
			"Put your most important block earliest in the day.")
	default:
		suggestions = append(suggestions,
			"Start with one or two blocks per day until completing them feels routine.",
			"Shorter blocks are easier to finish than long ones.")
	}

	if stats.CompletedDays < stats.TotalDays {
		suggestions = append(suggestions, fmt.Sprintf("%d of %d planned days hit the completion target; aim for one more next week.",
			stats.CompletedDays, stats.TotalDays))
	}

	if skipped := countSkipped(days); skipped > 0 && stats.TotalBlocks > 0 && skipped*3 >= stats.TotalBlocks {
		suggestions = append(suggestions, "A large share of blocks were skipped; check whether those time slots actually fit your day.")
	}

	return &Insight{Summary: summary, Suggestions: suggestions, Source: "rules"}, nil
}

func countSkipped(days []*models.DailyProgress) int {
	total := 0
	for _, day := range days {
		total += day.SkippedBlocks
	}
	return total
}
