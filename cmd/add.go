package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/config"
	"github.com/theirongolddev/subtrackr/internal/log"
	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

var (
	flagAddAmount  string
	flagAddNext    string
	flagAddPayment string
	flagAddLogo    string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a subscription",
	Long: "Add a subscription. Well-known services (Netflix, Spotify, ...) fill in\n" +
		"their category and current price; flags override the defaults.",
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddAmount, "amount", "", "Monthly amount, e.g. 15.99")
	addCmd.Flags().StringVar(&flagAddNext, "next", "", "Next billing date, YYYY-MM-DD (default: one month from today)")
	addCmd.Flags().StringVar(&flagAddPayment, "payment", "", "Payment method label")
	addCmd.Flags().StringVar(&flagAddLogo, "logo", "", "Logo glyph shown in the TUI")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	now := time.Now()
	sub, err := buildSubscription(args[0], now)
	if err != nil {
		return err
	}
	if err := pipeline.Validate(sub); err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpsertSubscription(ctx, sub); err != nil {
		return err
	}
	logger.Info("subscription added", log.FieldSubscriptionID, sub.ID, log.FieldSubscription, sub.Name)

	days := pipeline.DaysUntilRenewal(sub.NextBillingDate, now)
	fmt.Printf("  Added %s %s/mo (%s), %s\n", sub.Name, cli.FormatMoney(sub.Amount), sub.Category,
		cli.RenderTierBadge(pipeline.RenewalTier(days), pipeline.RenewalLabel(days)))
	fmt.Printf("  ID: %s\n", shortID(sub.ID))
	return nil
}

// buildSubscription merges flag values over catalog defaults.
func buildSubscription(name string, now time.Time) (model.Subscription, error) {
	sub := model.Subscription{
		ID:            uuid.NewString(),
		Name:          name,
		Amount:        decimal.Zero,
		Category:      "Other",
		Status:        model.StatusActive,
		PaymentMethod: flagAddPayment,
		Logo:          flagAddLogo,
		CreatedAt:     now.UTC(),
	}

	info, known := config.LookupServiceAt(name, now)
	if known {
		sub.Name = info.Name
		sub.Amount = info.Monthly
		sub.Category = info.Category
		if sub.Logo == "" {
			sub.Logo = info.Logo
		}
	}

	if flagAddAmount != "" {
		amt, err := decimal.NewFromString(flagAddAmount)
		if err != nil {
			return sub, fmt.Errorf("--amount: %w", err)
		}
		sub.Amount = amt.Round(2)
	} else if !known {
		return sub, errors.New("--amount is required for services not in the catalog")
	}
	// --category doubles as the filter flag elsewhere; here it names the
	// new subscription's category.
	if flagCategory != "" && flagCategory != pipeline.AllCategories {
		sub.Category = flagCategory
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	sub.NextBillingDate = today.AddDate(0, 1, 0)
	if flagAddNext != "" {
		next, err := time.Parse(pipeline.DateLayout, flagAddNext)
		if err != nil {
			return sub, fmt.Errorf("--next: %w", err)
		}
		sub.NextBillingDate = next
	}
	return sub, nil
}
