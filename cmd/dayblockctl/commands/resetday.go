package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/dayblock/dayblock/internal/store"
	"github.com/spf13/cobra"
)

// NewResetDayCmd creates the reset-day command
func NewResetDayCmd() *cobra.Command {
	var (
		dateFlag  string
		clearFlag bool
	)

	cmd := &cobra.Command{
		Use:   "reset-day",
		Short: "Reset a day's blocks",
		Long:  "Set every block of a day back to not_started, or delete the day entirely with --clear",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
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
			blocks := store.NewBlockRepository(st)
			progress := store.NewProgressRepository(st)
			dayStart := models.StartOfDay(day)
			dayEnd := dayStart.AddDate(0, 0, 1)

			if clearFlag {
				deleted, err := blocks.DeleteRange(ctx, dayStart, dayEnd)
				if err != nil {
					return fmt.Errorf("failed to delete blocks: %w", err)
				}
				if err := progress.Delete(ctx, dayStart); err != nil {
					return fmt.Errorf("failed to delete progress: %w", err)
				}
				fmt.Printf("Cleared %s: deleted %d blocks\n", models.DateKey(day), deleted)
				return nil
			}

			dayBlocks, err := blocks.LoadRange(ctx, dayStart, dayEnd)
			if err != nil {
				return fmt.Errorf("failed to load blocks: %w", err)
			}

			reset := 0
			for _, block := range dayBlocks {
				if block.Status == models.BlockStatusNotStarted {
					continue
				}
				block.Status = models.BlockStatusNotStarted
				block.UpdatedAt = time.Now()
				if err := blocks.Update(ctx, block); err != nil {
					return fmt.Errorf("failed to update block %s: %w", block.ID, err)
				}
				reset++
			}

			fmt.Printf("Reset %d of %d blocks on %s. A running server recomputes progress on its next refresh.\n",
				reset, len(dayBlocks), models.DateKey(day))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "Day to reset, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&clearFlag, "clear", false, "Delete the day's blocks and progress instead of resetting statuses")
	return cmd
}
