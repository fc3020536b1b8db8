// Package pipeline derives spend totals, category shares, renewal urgency,
// filtered views and savings progress from a list of subscriptions.
//
// Every function here is pure: inputs are never mutated and identical inputs
// produce identical output, so hosts can re-run them after any state change.
package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
)

// percentScale is the number of allocation units in 100%. Shares are
// reported with one decimal place, so 100.0% is 1000 tenths.
const percentScale = 1000

// TotalMonthlySpend sums the amount of every active subscription.
// Paused and cancelled subscriptions are excluded. Any invalid record
// rejects the whole batch.
func TotalMonthlySpend(subs []model.Subscription) (decimal.Decimal, error) {
	if err := ValidateAll(subs); err != nil {
		return decimal.Zero, err
	}
	return activeTotal(subs), nil
}

func activeTotal(subs []model.Subscription) decimal.Decimal {
	total := decimal.Zero
	for _, s := range subs {
		if s.IsActive() {
			total = total.Add(s.Amount)
		}
	}
	return total
}

// AnnualProjection is the active monthly spend carried over twelve months.
func AnnualProjection(subs []model.Subscription) (decimal.Decimal, error) {
	monthly, err := TotalMonthlySpend(subs)
	if err != nil {
		return decimal.Zero, err
	}
	return monthly.Mul(decimal.NewFromInt(12)), nil
}

// ActiveCount returns how many subscriptions are currently active.
func ActiveCount(subs []model.Subscription) int {
	n := 0
	for _, s := range subs {
		if s.IsActive() {
			n++
		}
	}
	return n
}

// CategoryBreakdown groups active subscriptions by category and reports each
// group's share of the active total.
//
// Shares are ordered by amount descending, then category name. Percentages
// carry one decimal place and are allocated with the largest-remainder
// method: every share is first truncated to a tenth of a percent, then the
// tenths lost to truncation go one each to the shares with the largest
// truncated remainder (earlier shares win ties). The result always sums to
// exactly 100.0. Empty input or a zero total yields an empty breakdown.
func CategoryBreakdown(subs []model.Subscription) ([]model.CategoryShare, error) {
	if err := ValidateAll(subs); err != nil {
		return nil, err
	}

	catMap := make(map[string]*model.CategoryShare)
	total := decimal.Zero
	for _, s := range subs {
		if !s.IsActive() {
			continue
		}
		cs, ok := catMap[s.Category]
		if !ok {
			cs = &model.CategoryShare{Category: s.Category, Amount: decimal.Zero}
			catMap[s.Category] = cs
		}
		cs.Amount = cs.Amount.Add(s.Amount)
		cs.Count++
		total = total.Add(s.Amount)
	}

	if !total.IsPositive() {
		return []model.CategoryShare{}, nil
	}

	shares := make([]model.CategoryShare, 0, len(catMap))
	for _, cs := range catMap {
		shares = append(shares, *cs)
	}
	sort.Slice(shares, func(i, j int) bool {
		if c := shares[i].Amount.Cmp(shares[j].Amount); c != 0 {
			return c > 0
		}
		return shares[i].Category < shares[j].Category
	})

	allocatePercents(shares, total)
	return shares, nil
}

func allocatePercents(shares []model.CategoryShare, total decimal.Decimal) {
	scale := decimal.NewFromInt(percentScale)
	units := make([]int64, len(shares))
	remainders := make([]decimal.Decimal, len(shares))

	var allocated int64
	for i, cs := range shares {
		exact := cs.Amount.Mul(scale).Div(total)
		floor := exact.Floor()
		units[i] = floor.IntPart()
		remainders[i] = exact.Sub(floor)
		allocated += units[i]
	}

	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	leftover := percentScale - allocated
	for k := 0; leftover > 0 && k < len(order); k++ {
		units[order[k]]++
		leftover--
	}

	for i := range shares {
		shares[i].Percent = decimal.New(units[i], -1)
	}
}

// Categories returns the distinct categories in first-seen order.
func Categories(subs []model.Subscription) []string {
	seen := make(map[string]struct{})
	var cats []string
	for _, s := range subs {
		if _, ok := seen[s.Category]; ok {
			continue
		}
		seen[s.Category] = struct{}{}
		cats = append(cats, s.Category)
	}
	return cats
}
