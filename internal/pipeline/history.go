package pipeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
)

// MonthStart returns the first instant of t's calendar month in t's location.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// SpendTrend returns one point per month for the last n months ending with
// now's month, oldest first. Months without a recorded point are filled with
// zero so charts show gaps.
func SpendTrend(points []model.SpendPoint, n int, now time.Time) []model.SpendPoint {
	if n <= 0 {
		return nil
	}

	byMonth := make(map[string]decimal.Decimal, len(points))
	for _, p := range points {
		byMonth[p.Month.Format("2006-01")] = p.Total
	}

	end := MonthStart(now)
	out := make([]model.SpendPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		month := end.AddDate(0, -i, 0)
		total, ok := byMonth[month.Format("2006-01")]
		if !ok {
			total = decimal.Zero
		}
		out = append(out, model.SpendPoint{Month: month, Total: total})
	}
	return out
}

// PeakMonth returns the month with the highest total. Ties go to the latest.
func PeakMonth(points []model.SpendPoint) (model.SpendPoint, bool) {
	if len(points) == 0 {
		return model.SpendPoint{}, false
	}
	sorted := make([]model.SpendPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Total.Cmp(sorted[j].Total); c != 0 {
			return c > 0
		}
		return sorted[i].Month.After(sorted[j].Month)
	})
	return sorted[0], true
}
