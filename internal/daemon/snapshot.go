package daemon

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

// Snapshot is the full set of derived views served by /v1/snapshot.
type Snapshot struct {
	At           time.Time          `json:"at"`
	Version      int64              `json:"version"`
	Active       int                `json:"active"`
	Total        int                `json:"total"`
	MonthlySpend decimal.Decimal    `json:"monthly_spend"`
	AnnualSpend  decimal.Decimal    `json:"annual_spend"`
	Breakdown    []CategoryView     `json:"breakdown"`
	Upcoming     []SubscriptionView `json:"upcoming"`
	Savings      SavingsView        `json:"savings"`
}

// CategoryView is one slice of the category breakdown.
type CategoryView struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
	Count    int             `json:"count"`
}

// SubscriptionView is a subscription with its derived renewal timing.
type SubscriptionView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	Status          model.Status    `json:"status"`
	NextBillingDate string          `json:"next_billing_date"`
	DaysUntil       int             `json:"days_until"`
	Tier            string          `json:"tier"`
	Label           string          `json:"label"`
}

// SavingsView is the goal progress for the configured period.
type SavingsView struct {
	Period      string          `json:"period"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Saved       decimal.Decimal `json:"saved"`
	Target      decimal.Decimal `json:"target"`
	Percent     float64         `json:"percent"`
	LifetimeSum decimal.Decimal `json:"lifetime"`
}

func subscriptionView(sub model.Subscription, now time.Time) SubscriptionView {
	days := pipeline.DaysUntilRenewal(sub.NextBillingDate, now)
	return SubscriptionView{
		ID:              sub.ID,
		Name:            sub.Name,
		Amount:          sub.Amount,
		Category:        sub.Category,
		Status:          sub.Status,
		NextBillingDate: sub.NextBillingDate.Format(pipeline.DateLayout),
		DaysUntil:       days,
		Tier:            pipeline.RenewalTier(days).String(),
		Label:           pipeline.RenewalLabel(days),
	}
}

func buildSnapshot(subs []model.Subscription, ledger pipeline.Ledger, cfg Config, now time.Time) (Snapshot, error) {
	monthly, err := pipeline.TotalMonthlySpend(subs)
	if err != nil {
		return Snapshot{}, err
	}
	annual, err := pipeline.AnnualProjection(subs)
	if err != nil {
		return Snapshot{}, err
	}
	shares, err := pipeline.CategoryBreakdown(subs)
	if err != nil {
		return Snapshot{}, err
	}
	goal, err := pipeline.GoalWindow(cfg.GoalPeriod, cfg.Goal, now)
	if err != nil {
		return Snapshot{}, err
	}
	progress := pipeline.ProgressTowardGoal(ledger, goal, now)

	snap := Snapshot{
		At:           now,
		Active:       pipeline.ActiveCount(subs),
		Total:        len(subs),
		MonthlySpend: monthly,
		AnnualSpend:  annual,
		Breakdown:    make([]CategoryView, 0, len(shares)),
		Upcoming:     []SubscriptionView{},
		Savings: SavingsView{
			Period:      string(cfg.GoalPeriod),
			PeriodStart: goal.PeriodStart.Format(pipeline.DateLayout),
			PeriodEnd:   goal.PeriodEnd.Format(pipeline.DateLayout),
			Saved:       progress.Saved,
			Target:      progress.Target,
			Percent:     progress.Percent,
			LifetimeSum: ledger.Total(),
		},
	}
	for _, cs := range shares {
		snap.Breakdown = append(snap.Breakdown, CategoryView{
			Category: cs.Category,
			Amount:   cs.Amount,
			Percent:  cs.Percent,
			Count:    cs.Count,
		})
	}
	for _, r := range pipeline.UpcomingRenewals(subs, now, cfg.UpcomingLimit) {
		snap.Upcoming = append(snap.Upcoming, subscriptionView(r.Subscription, now))
	}
	return snap, nil
}
