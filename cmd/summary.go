package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly spend, savings progress and next renewals",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	subs, err := st.ListSubscriptions(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("\n  No subscriptions yet.")
		fmt.Println("  Add one with `subtrackr add`, or load demo data with `subtrackr seed`.")
		return nil
	}

	monthly, err := pipeline.TotalMonthlySpend(subs)
	if err != nil {
		return err
	}
	annual, err := pipeline.AnnualProjection(subs)
	if err != nil {
		return err
	}

	ledger, err := st.LoadLedger(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	progress, period, err := goalProgress(ledger, now)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SUBSCRIPTIONS"))
	fmt.Println()

	rows := [][]string{
		{"Active", fmt.Sprintf("%d of %d", pipeline.ActiveCount(subs), len(subs))},
		{"Monthly spend", cli.RenderMoney(cli.FormatMoney(monthly))},
		{"Annual projection", cli.FormatMoney(annual)},
		{"---"},
		{"Saved this " + periodNoun(period), cli.FormatMoney(progress.Saved)},
		{"Goal", fmt.Sprintf("%s of %s", cli.FormatPercentFloat(progress.Percent), cli.FormatMoney(progress.Target))},
		{"Saved all time", cli.FormatMoney(ledger.Total())},
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	upcoming := pipeline.UpcomingRenewals(subs, now, appCfg.General.UpcomingLimit)
	if len(upcoming) > 0 {
		fmt.Println()
		fmt.Print(renderRenewals("Next renewals", upcoming))
	}
	return nil
}

func renderRenewals(title string, renewals []pipeline.Renewal) string {
	rows := make([][]string, 0, len(renewals))
	for _, r := range renewals {
		rows = append(rows, []string{
			cli.Truncate(r.Subscription.Name, 24),
			cli.FormatMoney(r.Subscription.Amount),
			cli.FormatDate(r.Subscription.NextBillingDate),
			cli.RenderTierBadge(r.Tier, r.Label),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Name", "Monthly", "Bills on", "Due"},
		Rows:    rows,
	})
}
