package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/log"
)

var removeCmd = &cobra.Command{
	Use:     "remove <id|name>",
	Aliases: []string{"rm"},
	Short:   "Delete a subscription without recording savings",
	Long: "Delete a subscription outright. Use `subtrackr cancel` instead to keep\n" +
		"it in history and credit the monthly amount to your savings.",
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	sub, err := st.FindSubscription(ctx, args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteSubscription(ctx, sub.ID); err != nil {
		return err
	}
	logger.Info("subscription removed", log.FieldSubscriptionID, sub.ID)
	fmt.Printf("  Removed %s\n", sub.Name)
	return nil
}
