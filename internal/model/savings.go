package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsEvent records money saved when a subscription is cancelled.
type SavingsEvent struct {
	ID             string
	SubscriptionID string
	Name           string
	AmountSaved    decimal.Decimal
	Timestamp      time.Time
}

// SavingsGoal is a target amount for a closed time window.
type SavingsGoal struct {
	Target      decimal.Decimal
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Progress is the state of a savings goal at a point in time.
type Progress struct {
	Saved   decimal.Decimal
	Target  decimal.Decimal
	Percent float64 // clamped to [0, 100]
	Events  int
}

// Met reports whether the goal has been reached.
func (p Progress) Met() bool {
	return p.Percent >= 100
}
