package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscriptions, filtered by --category and ordered by --sort",
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	category, key, err := viewOptions()
	if err != nil {
		return err
	}

	subs, err := loadSubscriptions(cmd.Context())
	if err != nil {
		return err
	}

	now := time.Now()
	view, err := pipeline.View(subs, category, key, now)
	if err != nil {
		return err
	}
	if len(view) == 0 {
		fmt.Println("\n  No subscriptions match.")
		return nil
	}

	rows := make([][]string, 0, len(view))
	for _, s := range view {
		days := pipeline.DaysUntilRenewal(s.NextBillingDate, now)
		rows = append(rows, []string{
			cli.Truncate(s.Name, 24),
			cli.FormatMoney(s.Amount),
			s.Category,
			cli.RenderTierBadge(pipeline.RenewalTier(days), pipeline.BillingLabel(days)),
			cli.RenderStatus(s.Status),
			shortID(s.ID),
		})
	}

	title := fmt.Sprintf("%d subscriptions  category: %s  sort: %s", len(view), category, key)
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Name", "Monthly", "Category", "Renews", "Status", "ID"},
		Rows:    rows,
	}))
	return nil
}

// shortID is the prefix shown in tables; any unique prefix is accepted back
// as a subscription reference.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
