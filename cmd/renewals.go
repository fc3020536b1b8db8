package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

var flagRenewalsLimit int

var renewalsCmd = &cobra.Command{
	Use:   "renewals",
	Short: "Upcoming renewals with urgency tiers",
	RunE:  runRenewals,
}

func init() {
	renewalsCmd.Flags().IntVarP(&flagRenewalsLimit, "limit", "l", 0, "Max renewals to show (0 for all)")
	rootCmd.AddCommand(renewalsCmd)
}

func runRenewals(cmd *cobra.Command, _ []string) error {
	subs, err := loadSubscriptions(cmd.Context())
	if err != nil {
		return err
	}

	upcoming := pipeline.UpcomingRenewals(subs, time.Now(), flagRenewalsLimit)
	if len(upcoming) == 0 {
		fmt.Println("\n  No active subscriptions.")
		return nil
	}

	counts := map[pipeline.Tier]int{}
	for _, r := range upcoming {
		counts[r.Tier]++
	}

	fmt.Println()
	fmt.Print(renderRenewals("Upcoming renewals", upcoming))
	fmt.Printf("\n  %d urgent, %d soon, %d later\n",
		counts[pipeline.TierUrgent], counts[pipeline.TierSoon], counts[pipeline.TierLater])
	return nil
}
