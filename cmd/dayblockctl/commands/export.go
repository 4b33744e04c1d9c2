package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dayblock/dayblock/internal/export"
	"github.com/dayblock/dayblock/internal/store"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data as JSON",
		Long:  "Write every block, daily aggregate and the settings as a single JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := context.Background()
			blocks, err := store.NewBlockRepository(st).LoadAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to load blocks: %w", err)
			}
			progress, err := store.NewProgressRepository(st).LoadAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to load progress: %w", err)
			}
			cfg, err := store.NewSettingsRepository(st).LoadSchedulingConfig(ctx)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			doc := export.Build(blocks, progress, cfg, time.Now())

			out := os.Stdout
			if outFlag != "" {
				f, err := os.Create(outFlag)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outFlag, err)
				}
				defer func() {
					if err := f.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", outFlag, err)
					}
				}()
				out = f
			}

			if err := doc.WriteJSON(out); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			if outFlag != "" {
				fmt.Fprintf(os.Stderr, "Exported %d blocks to %s\n", len(blocks), outFlag)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outFlag, "out", "", "Output file (default stdout)")
	return cmd
}
