package commands

import (
	"context"
	"fmt"

	"github.com/dayblock/dayblock/internal/models"
	"github.com/dayblock/dayblock/internal/store"
	"github.com/spf13/cobra"
)

// NewSettingsCmd creates the settings command group
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change the scheduling settings",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsSetCmd())
	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			cfg, err := store.NewSettingsRepository(st).LoadSchedulingConfig(context.Background())
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			fmt.Printf("Notifications enabled: %v\n", cfg.NotificationsEnabled)
			fmt.Printf("Daily reminder time:   %s\n", cfg.DailyReminderTime)
			fmt.Printf("Auto reset enabled:    %v\n", cfg.AutoResetEnabled)
			fmt.Printf("Auto reset behavior:   %s\n", cfg.AutoResetBehavior)
			if cfg.LastAutoResetDate != "" {
				fmt.Printf("Last auto reset:       %s\n", cfg.LastAutoResetDate)
			}
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var (
		reminderFlag  string
		behaviorFlag  string
		notifyFlag    bool
		autoResetFlag bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings",
		Long:  "Change one or more settings; only flags that are passed are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			repo := store.NewSettingsRepository(st)
			ctx := context.Background()

			cfg, err := repo.LoadSchedulingConfig(ctx)
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}

			if cmd.Flags().Changed("reminder") {
				cfg.DailyReminderTime = reminderFlag
				if _, _, err := cfg.ReminderClock(); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("reset-behavior") {
				behavior := models.AutoResetBehavior(behaviorFlag)
				switch behavior {
				case models.AutoResetStatusOnly, models.AutoResetClearSchedule:
					cfg.AutoResetBehavior = behavior
				default:
					return fmt.Errorf("invalid --reset-behavior %q (must be %q or %q)",
						behaviorFlag, models.AutoResetStatusOnly, models.AutoResetClearSchedule)
				}
			}
			if cmd.Flags().Changed("notifications") {
				cfg.NotificationsEnabled = notifyFlag
			}
			if cmd.Flags().Changed("auto-reset") {
				cfg.AutoResetEnabled = autoResetFlag
			}

			if err := repo.SaveSchedulingConfig(ctx, cfg); err != nil {
				return fmt.Errorf("failed to save settings: %w", err)
			}

			fmt.Println("Settings updated. A running server picks them up on its next settings change or restart.")
			return nil
		},
	}

	cmd.Flags().StringVar(&reminderFlag, "reminder", models.DefaultReminderTime, "Daily reminder time, HH:MM")
	cmd.Flags().StringVar(&behaviorFlag, "reset-behavior", string(models.AutoResetStatusOnly), "Midnight reset behavior: status_only or clear_schedule")
	cmd.Flags().BoolVar(&notifyFlag, "notifications", false, "Enable or disable notifications")
	cmd.Flags().BoolVar(&autoResetFlag, "auto-reset", false, "Enable or disable the midnight reset")
	return cmd
}
