package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dayblock/dayblock/internal/engine"
	"github.com/dayblock/dayblock/internal/models"
	"github.com/dayblock/dayblock/internal/store"
	"github.com/spf13/cobra"
)

// NewTodayCmd creates the today command
func NewTodayCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the blocks and progress for a day",
		Long:  "Show the blocks for a day with their display status, plus the day's completion summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			day := now
			if dateFlag != "" {
				parsed, err := time.ParseInLocation("2006-01-02", dateFlag, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", dateFlag)
				}
				day = parsed
			}

			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := context.Background()
			dayStart := models.StartOfDay(day)
			blocks, err := store.NewBlockRepository(st).LoadRange(ctx, dayStart, dayStart.AddDate(0, 0, 1))
			if err != nil {
				return fmt.Errorf("failed to load blocks: %w", err)
			}

			if len(blocks) == 0 {
				fmt.Printf("No blocks for %s\n", models.DateKey(day))
				return nil
			}

			fmt.Printf("Blocks for %s:\n", models.DateKey(day))
			completed := 0
			for _, block := range blocks {
				if block.Status == models.BlockStatusCompleted {
					completed++
				}
				fmt.Printf("  %s - %s  %-12s %s\n",
					block.StartTime.Local().Format("15:04"),
					block.EndTime.Local().Format("15:04"),
					engine.DisplayStatusAt(block, now),
					block.Title,
				)
			}
			fmt.Printf("\nCompleted %d of %d blocks\n", completed, len(blocks))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Day to show, YYYY-MM-DD (default today)")
	return cmd
}
