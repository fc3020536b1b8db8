package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

var flagSavingsPeriod string

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Savings ledger and progress toward the goal",
	RunE:  runSavings,
}

func init() {
	savingsCmd.Flags().StringVar(&flagSavingsPeriod, "period", "", "Goal period: weekly, monthly, yearly (default: from config)")
	rootCmd.AddCommand(savingsCmd)
}

// goalProgress measures the ledger against the configured goal for the
// period containing now. --period overrides the configured period.
func goalProgress(ledger pipeline.Ledger, now time.Time) (model.Progress, pipeline.GoalPeriod, error) {
	raw := appCfg.Savings.Period
	if flagSavingsPeriod != "" {
		raw = flagSavingsPeriod
	}
	period, err := pipeline.ParseGoalPeriod(raw)
	if err != nil {
		return model.Progress{}, "", err
	}
	goal, err := pipeline.GoalWindow(period, appCfg.Goal(), now)
	if err != nil {
		return model.Progress{}, "", err
	}
	return pipeline.ProgressTowardGoal(ledger, goal, now), period, nil
}

func periodNoun(p pipeline.GoalPeriod) string {
	switch p {
	case pipeline.PeriodWeekly:
		return "week"
	case pipeline.PeriodYearly:
		return "year"
	default:
		return "month"
	}
}

func runSavings(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

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
	fmt.Printf("  Goal this %s: %s of %s\n", periodNoun(period),
		cli.RenderMoney(cli.FormatMoney(progress.Saved)), cli.FormatMoney(progress.Target))
	fmt.Printf("  %s\n", cli.RenderGoalBar(progress.Percent, 30))
	if progress.Met() {
		fmt.Println("  Goal reached.")
	}
	fmt.Println()

	events := ledger.Events()
	if len(events) == 0 {
		fmt.Println("  No cancellations recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(events)+2)
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		rows = append(rows, []string{
			cli.Truncate(ev.Name, 24),
			cli.FormatMoney(ev.AmountSaved),
			cli.FormatDate(ev.Timestamp),
			cli.RenderMuted(cli.FormatAgo(ev.Timestamp, now)),
		})
	}
	rows = append(rows, []string{"---"}, []string{"All time", cli.FormatMoney(ledger.Total()), "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Savings ledger (%d cancellations)", ledger.Len()),
		Headers: []string{"Cancelled", "Saved", "Date", ""},
		Rows:    rows,
	}))
	return nil
}
