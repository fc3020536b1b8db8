package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/log"
	"github.com/theirongolddev/subtrackr/internal/model"
)

var pauseCmd = &cobra.Command{
	Use:   "pause <id|name>",
	Short: "Pause an active subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], model.StatusPaused)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <id|name>",
	Short: "Resume a paused subscription",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], model.StatusActive)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <id|name>",
	Short: "Cancel a subscription and record the monthly amount as saved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], model.StatusCancelled)
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd, resumeCmd, cancelCmd)
}

func runTransition(cmd *cobra.Command, ref string, to model.Status) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sub, err := st.FindSubscription(ctx, ref)
	if err != nil {
		return err
	}

	now := time.Now()
	var saved *model.SavingsEvent
	if c := runningDaemon(ctx); c != nil {
		// The daemon writes to the same database and publishes the change
		// to its event stream.
		view, err := c.SetStatus(ctx, sub.ID, string(to))
		if err != nil {
			return err
		}
		sub.Status = view.Status
		if to == model.StatusCancelled {
			saved = &model.SavingsEvent{SubscriptionID: sub.ID, AmountSaved: sub.Amount}
		}
		logger.Debug("status changed via daemon", log.FieldSubscriptionID, sub.ID)
	} else {
		next, ev, err := st.ApplyTransition(ctx, sub.ID, to, now)
		if err != nil {
			return err
		}
		sub, saved = next, ev
	}
	logger.Info("status changed",
		log.FieldSubscriptionID, sub.ID,
		log.FieldStatus, string(sub.Status),
	)
	fmt.Printf("  %s is now %s\n", sub.Name, cli.RenderStatus(sub.Status))

	if saved == nil {
		return nil
	}

	ledger, err := st.LoadLedger(ctx)
	if err != nil {
		return err
	}
	progress, period, err := goalProgress(ledger, now)
	if err != nil {
		return err
	}
	fmt.Printf("  Saving %s/mo. This %s: %s\n",
		cli.RenderMoney(cli.FormatMoney(saved.AmountSaved)),
		periodNoun(period),
		cli.RenderGoalBar(progress.Percent, 20),
	)
	return nil
}
