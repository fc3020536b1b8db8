// Package model defines domain types for subtrackr subscriptions and savings.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every known status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusActive, StatusPaused, StatusCancelled}
}

// ParseStatus converts a user-supplied string into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusPaused, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status: %q", s)
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Subscription is one recurring service.
// Renewal timing is always derived from NextBillingDate; there is no stored
// days-until counter.
type Subscription struct {
	ID              string
	Name            string
	Amount          decimal.Decimal // monthly charge, two decimal places
	Category        string
	NextBillingDate time.Time
	Status          Status
	PaymentMethod   string
	Logo            string
	CreatedAt       time.Time
}

// IsActive reports whether the subscription counts toward spend totals.
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// CategoryShare is one slice of the category breakdown.
type CategoryShare struct {
	Category string
	Amount   decimal.Decimal
	Percent  decimal.Decimal // one decimal place, shares sum to 100.0
	Count    int
}

// Reminder marks a subscription the user wants to be nudged about before billing.
type Reminder struct {
	SubscriptionID string
	RemindOn       time.Time
	CreatedAt      time.Time
}

// SpendPoint is the active monthly total observed for one calendar month.
type SpendPoint struct {
	Month time.Time
	Total decimal.Decimal
}

// TrackedFile is the mtime and size recorded for an imported file.
type TrackedFile struct {
	Path      string
	MtimeNs   int64
	SizeBytes int64
}
