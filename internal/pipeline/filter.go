package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/theirongolddev/subtrackr/internal/model"
)

// AllCategories is the filter sentinel that keeps every subscription.
const AllCategories = "all"

// SortKey selects the ordering of a subscription view. The set is closed;
// use ParseSortKey to turn user input into a key.
type SortKey int

const (
	SortRenewal SortKey = iota
	SortPriceDesc
	SortPriceAsc
	SortName
)

var sortKeyNames = map[SortKey]string{
	SortRenewal:   "renewal",
	SortPriceDesc: "price-desc",
	SortPriceAsc:  "price-asc",
	SortName:      "name",
}

// SortKeys returns every sort key in menu order.
func SortKeys() []SortKey {
	return []SortKey{SortRenewal, SortPriceDesc, SortPriceAsc, SortName}
}

func (k SortKey) String() string {
	if name, ok := sortKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SortKey(%d)", int(k))
}

// Valid reports whether k is one of the defined keys.
func (k SortKey) Valid() bool {
	_, ok := sortKeyNames[k]
	return ok
}

// ParseSortKey converts a key name into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, k := range SortKeys() {
		if sortKeyNames[k] == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of renewal, price-desc, price-asc, name)", ErrUnknownSortKey, s)
}

// FilterByCategory returns the subscriptions in the given category, in input
// order. AllCategories returns a copy of the whole input. A category that no
// subscription carries is a caller error.
func FilterByCategory(subs []model.Subscription, category string) ([]model.Subscription, error) {
	if category == AllCategories {
		out := make([]model.Subscription, len(subs))
		copy(out, subs)
		return out, nil
	}

	var out []model.Subscription
	for _, s := range subs {
		if s.Category == category {
			out = append(out, s)
		}
	}
	if out == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return out, nil
}

// SortBy returns a stably sorted copy of subs. Subscriptions with equal keys
// keep their relative input order. Renewal order is derived from each
// billing date relative to now.
func SortBy(subs []model.Subscription, key SortKey, now time.Time) ([]model.Subscription, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSortKey, key)
	}

	rows := make([]sortRow, len(subs))
	fold := cases.Fold()
	for i, s := range subs {
		rows[i] = sortRow{sub: s}
		switch key {
		case SortRenewal:
			rows[i].days = DaysUntilRenewal(s.NextBillingDate, now)
		case SortName:
			rows[i].name = fold.String(s.Name)
		}
	}

	var less func(a, b sortRow) bool
	switch key {
	case SortRenewal:
		less = func(a, b sortRow) bool { return a.days < b.days }
	case SortPriceDesc:
		less = func(a, b sortRow) bool { return a.sub.Amount.GreaterThan(b.sub.Amount) }
	case SortPriceAsc:
		less = func(a, b sortRow) bool { return a.sub.Amount.LessThan(b.sub.Amount) }
	case SortName:
		less = func(a, b sortRow) bool { return a.name < b.name }
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })

	out := make([]model.Subscription, len(rows))
	for i, r := range rows {
		out[i] = r.sub
	}
	return out, nil
}

type sortRow struct {
	sub  model.Subscription
	days int
	name string
}

// View filters by category and then sorts, the order the host renders lists in.
func View(subs []model.Subscription, category string, key SortKey, now time.Time) ([]model.Subscription, error) {
	filtered, err := FilterByCategory(subs, category)
	if err != nil {
		return nil, err
	}
	return SortBy(filtered, key, now)
}

// Renewal pairs a subscription with its derived renewal timing.
type Renewal struct {
	Subscription model.Subscription
	Days         int
	Tier         Tier
	Label        string
}

// UpcomingRenewals returns active subscriptions ordered by renewal, limited
// to limit entries when limit > 0.
func UpcomingRenewals(subs []model.Subscription, now time.Time, limit int) []Renewal {
	var active []model.Subscription
	for _, s := range subs {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	sorted, _ := SortBy(active, SortRenewal, now)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	out := make([]Renewal, 0, len(sorted))
	for _, s := range sorted {
		days := DaysUntilRenewal(s.NextBillingDate, now)
		out = append(out, Renewal{
			Subscription: s,
			Days:         days,
			Tier:         RenewalTier(days),
			Label:        RenewalLabel(days),
		})
	}
	return out
}
