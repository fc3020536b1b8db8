package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/log"
	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/store"
)

var flagRemindDays int

var remindCmd = &cobra.Command{
	Use:   "remind [id|name]",
	Short: "Set a renewal reminder, or list reminders when no subscription is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRemind,
}

func init() {
	remindCmd.Flags().IntVar(&flagRemindDays, "days", -1, "Days before billing to remind (default: from config)")
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 0 {
		return listReminders(ctx, st)
	}

	if !appCfg.Notifications.Enabled {
		return errors.New("notifications are disabled; enable them in `subtrackr setup` or the config file")
	}

	sub, err := st.FindSubscription(ctx, args[0])
	if err != nil {
		return err
	}
	if sub.Status == model.StatusCancelled {
		return fmt.Errorf("%s is cancelled", sub.Name)
	}

	days := appCfg.Notifications.RemindDaysBefore
	if flagRemindDays >= 0 {
		days = flagRemindDays
	}
	now := time.Now()
	r := model.Reminder{
		SubscriptionID: sub.ID,
		RemindOn:       sub.NextBillingDate.AddDate(0, 0, -days),
		CreatedAt:      now.UTC(),
	}
	if err := st.SetReminder(ctx, r); err != nil {
		return err
	}
	logger.Info("reminder set", log.FieldSubscriptionID, sub.ID)
	fmt.Printf("  Reminder set for %s on %s\n", sub.Name, cli.FormatDate(r.RemindOn))
	return nil
}

func listReminders(ctx context.Context, st *store.Store) error {
	byID, err := st.ListReminders(ctx)
	if err != nil {
		return err
	}
	if len(byID) == 0 {
		fmt.Println("\n  No reminders set.")
		return nil
	}
	subs, err := st.ListSubscriptions(ctx)
	if err != nil {
		return err
	}

	type row struct {
		name string
		on   time.Time
	}
	var list []row
	for _, s := range subs {
		if r, ok := byID[s.ID]; ok {
			list = append(list, row{s.Name, r.RemindOn})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].on.Before(list[j].on) })

	rows := make([][]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, []string{r.name, cli.FormatDate(r.on)})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Reminders",
		Headers: []string{"Subscription", "Remind on"},
		Rows:    rows,
	}))
	return nil
}
