package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
)

type demoSub struct {
	name, amount, category, payment, logo string
	daysOut                               int
}

var demoActive = []demoSub{
	{"Netflix", "15.99", "Streaming", "visa", "🎬", 2},
	{"Spotify Premium", "9.99", "Music", "mastercard", "🎵", 5},
	{"Adobe Creative Cloud", "52.99", "Software", "visa", "🎨", 12},
	{"Gym Membership", "29.99", "Fitness", "amex", "💪", 8},
	{"Dropbox Pro", "11.99", "Storage", "visa", "☁️", 15},
	{"YouTube Premium", "11.99", "Streaming", "mastercard", "📺", 3},
}

var demoCancelled = []demoSub{
	{"Hulu", "30.00", "Streaming", "visa", "📼", 20},
	{"Audible", "20.00", "Books", "amex", "🎧", 25},
}

var demoHistory = []string{"85.00", "92.00", "78.00", "95.00", "89.00", "102.00"}

// Seed fills an empty database with a demo data set: six active
// subscriptions, two cancellations this month worth 50.00 of savings, and
// six months of spend history. It returns the number of subscriptions added,
// or 0 when the database already has data.
func (s *Store) Seed(ctx context.Context, now time.Time) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM subscriptions"); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	added := 0
	for _, d := range append(append([]demoSub{}, demoActive...), demoCancelled...) {
		sub := model.Subscription{
			ID:              uuid.NewString(),
			Name:            d.name,
			Amount:          decimal.RequireFromString(d.amount),
			Category:        d.category,
			NextBillingDate: today.AddDate(0, 0, d.daysOut),
			Status:          model.StatusActive,
			PaymentMethod:   d.payment,
			Logo:            d.logo,
			CreatedAt:       now,
		}
		if err := s.UpsertSubscription(ctx, sub); err != nil {
			return added, fmt.Errorf("seeding %s: %w", d.name, err)
		}
		added++
	}

	for _, d := range demoCancelled {
		sub, err := s.FindSubscription(ctx, d.name)
		if err != nil {
			return added, err
		}
		if _, _, err := s.ApplyTransition(ctx, sub.ID, model.StatusCancelled, now); err != nil {
			return added, fmt.Errorf("seeding cancellation of %s: %w", d.name, err)
		}
	}

	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	for i, total := range demoHistory {
		m := month.AddDate(0, i-len(demoHistory), 0)
		if err := s.RecordSpend(ctx, m, decimal.RequireFromString(total)); err != nil {
			return added, err
		}
	}

	return added, nil
}
