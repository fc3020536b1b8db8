package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

var flagHistoryMonths int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Monthly spend over time",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryMonths, "months", 6, "Number of months to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	points, err := st.SpendHistory(ctx, flagHistoryMonths)
	if err != nil {
		return err
	}
	trend := pipeline.SpendTrend(points, flagHistoryMonths, time.Now())
	if len(trend) == 0 {
		fmt.Println("\n  No spend history yet.")
		return nil
	}

	values := make([]float64, len(trend))
	rows := make([][]string, 0, len(trend))
	for i, p := range trend {
		values[i] = p.Total.InexactFloat64()
		delta := ""
		if i > 0 && trend[i-1].Total.IsPositive() {
			delta = cli.FormatDelta(p.Total, trend[i-1].Total)
		}
		rows = append(rows, []string{
			p.Month.Format("Jan 2006"),
			cli.FormatMoney(p.Total),
			cli.RenderMuted(delta),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Monthly spend, last %d months", len(trend)),
		Headers: []string{"Month", "Spend", "Change"},
		Rows:    rows,
	}))
	fmt.Printf("\n  Trend: %s\n", cli.RenderSparkline(values))
	if peak, ok := pipeline.PeakMonth(trend); ok && peak.Total.IsPositive() {
		fmt.Printf("  Peak:  %s in %s\n", cli.FormatMoney(peak.Total), peak.Month.Format("January 2006"))
	}
	return nil
}
