package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
)

// testNow is a fixed reference point so renewal math is deterministic.
var testNow = time.Date(2024, time.December, 13, 9, 30, 0, 0, time.UTC)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse amount %q: %v", s, err)
	}
	return d
}

// mkSub builds an active subscription renewing daysOut days after testNow.
func mkSub(t *testing.T, id, name, amount, category string, daysOut int) model.Subscription {
	t.Helper()
	return model.Subscription{
		ID:              id,
		Name:            name,
		Amount:          money(t, amount),
		Category:        category,
		NextBillingDate: time.Date(2024, time.December, 13+daysOut, 0, 0, 0, 0, time.UTC),
		Status:          model.StatusActive,
	}
}

func withStatus(s model.Subscription, st model.Status) model.Subscription {
	s.Status = st
	return s
}

// demoSet is the three-service scenario used across the tests.
func demoSet(t *testing.T) []model.Subscription {
	t.Helper()
	return []model.Subscription{
		mkSub(t, "1", "Netflix", "15.99", "Streaming", 2),
		mkSub(t, "2", "Spotify", "9.99", "Music", 5),
		mkSub(t, "3", "Adobe", "52.99", "Software", 12),
	}
}

func ids(subs []model.Subscription) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
