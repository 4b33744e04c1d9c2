package main

import (
	"fmt"
	"os"

	"github.com/dayblock/dayblock/cmd/dayblockctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "dayblockctl",
		Short: "Maintenance tool for the dayblock engine",
		Long:  "CLI tool for inspecting the schedule, adjusting settings and exporting data",
	}

	rootCmd.AddCommand(commands.NewTodayCmd())
	rootCmd.AddCommand(commands.NewSettingsCmd())
	rootCmd.AddCommand(commands.NewResetDayCmd())
	rootCmd.AddCommand(commands.NewExportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
