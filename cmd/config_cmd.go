// Package cmd implements the subtrackr CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Database:    %s\n", cfg.DBPath())
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default sort:     %s\n", cfg.General.DefaultSort)
	fmt.Printf("    Default category: %s\n", cfg.General.DefaultCategory)
	fmt.Printf("    Upcoming limit:   %d\n", cfg.General.UpcomingLimit)
	fmt.Println()

	fmt.Println("  [Profile]")
	if cfg.Profile.Name != "" || cfg.Profile.Email != "" {
		fmt.Printf("    Name:  %s\n", cfg.Profile.Name)
		fmt.Printf("    Email: %s\n", cfg.Profile.Email)
	} else {
		fmt.Println("    Not set")
	}
	fmt.Println()

	fmt.Println("  [Savings]")
	fmt.Printf("    Goal:   $%.2f\n", cfg.Savings.GoalUSD)
	fmt.Printf("    Period: %s\n", cfg.Savings.Period)
	fmt.Println()

	fmt.Println("  [Notifications]")
	fmt.Printf("    Enabled:            %v\n", cfg.Notifications.Enabled)
	fmt.Printf("    Remind days before: %d\n", cfg.Notifications.RemindDaysBefore)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address: %s\n", cfg.Daemon.Addr)
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Printf("  Problems:\n    %v\n\n", err)
	}
	fmt.Println("  Run `subtrackr setup` to reconfigure.")
	return nil
}
