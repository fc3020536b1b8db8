package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

var breakdownCmd = &cobra.Command{
	Use:   "breakdown",
	Short: "Active spend by category",
	RunE:  runBreakdown,
}

func init() {
	rootCmd.AddCommand(breakdownCmd)
}

func runBreakdown(cmd *cobra.Command, _ []string) error {
	subs, err := loadSubscriptions(cmd.Context())
	if err != nil {
		return err
	}

	shares, err := pipeline.CategoryBreakdown(subs)
	if err != nil {
		return err
	}
	if len(shares) == 0 {
		fmt.Println("\n  No active subscriptions.")
		return nil
	}

	top := shares[0].Amount.InexactFloat64()
	rows := make([][]string, 0, len(shares))
	for _, cs := range shares {
		rows = append(rows, []string{
			cs.Category,
			fmt.Sprintf("%d", cs.Count),
			cli.FormatMoney(cs.Amount),
			cli.FormatPercent(cs.Percent),
			padBar(cli.RenderHorizontalBar(cs.Amount.InexactFloat64(), top, 20), 20),
		})
	}

	monthly, err := pipeline.TotalMonthlySpend(subs)
	if err != nil {
		return err
	}
	rows = append(rows, []string{"---"}, []string{"Total", fmt.Sprintf("%d", pipeline.ActiveCount(subs)), cli.FormatMoney(monthly), "100.0%", ""})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Spend by category",
		Headers: []string{"Category", "Subs", "Monthly", "Share", ""},
		Rows:    rows,
	}))
	return nil
}

// padBar left-aligns a bar inside a right-aligned table column.
func padBar(bar string, width int) string {
	if gap := width - lipgloss.Width(bar); gap > 0 {
		return bar + strings.Repeat(" ", gap)
	}
	return bar
}
