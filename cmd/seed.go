package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo subscriptions into an empty database",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.Seed(ctx, time.Now())
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("  Database already has subscriptions; nothing to seed.")
		return nil
	}
	fmt.Printf("  Added %d demo subscriptions. Try `subtrackr summary` or `subtrackr tui`.\n", n)
	return nil
}
