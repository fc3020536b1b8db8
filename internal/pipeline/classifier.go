package pipeline

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for billing dates.
const DateLayout = "2006-01-02"

// Tier is the renewal urgency of a subscription. Lower values are more urgent,
// so tiers order the same way renewal dates do.
type Tier int

const (
	TierUrgent Tier = iota
	TierSoon
	TierLater
)

// Tier thresholds in days. Badge colors key off the tier, not raw days,
// so these are the only place the boundaries live.
const (
	urgentBelow = 3
	soonBelow   = 7
)

func (t Tier) String() string {
	switch t {
	case TierUrgent:
		return "URGENT"
	case TierSoon:
		return "SOON"
	case TierLater:
		return "LATER"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// RenewalTier classifies days until renewal: under 3 is urgent, 3 through 6
// is soon, 7 or more is later. Negative input is treated as overdue (urgent).
func RenewalTier(days int) Tier {
	switch {
	case days < urgentBelow:
		return TierUrgent
	case days < soonBelow:
		return TierSoon
	default:
		return TierLater
	}
}

// RenewalLabel renders a due badge: "Due today", "Due tomorrow", "Due in N days".
func RenewalLabel(days int) string {
	switch {
	case days <= 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

// BillingLabel is the list-row variant of RenewalLabel.
func BillingLabel(days int) string {
	switch {
	case days <= 0:
		return "Bills today"
	case days == 1:
		return "Bills tomorrow"
	default:
		return fmt.Sprintf("Bills in %d days", days)
	}
}

// DaysUntilRenewal returns the whole calendar days from now's local date to
// the billing date. A billing date already behind now yields 0.
func DaysUntilRenewal(next, now time.Time) int {
	d := calendarDays(next, now)
	if d < 0 {
		return 0
	}
	return d
}

// calendarDays compares civil dates: next is read as a calendar date,
// now in its own location.
func calendarDays(next, now time.Time) int {
	a := time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

// RollForward advances a lapsed monthly billing date by whole months until it
// falls on or after now's date. The day of month is anchored to next and
// clamped to shorter months (Jan 31 rolls to Feb 28, then Mar 31).
func RollForward(next, now time.Time) time.Time {
	if calendarDays(next, now) >= 0 {
		return next
	}
	for k := 1; ; k++ {
		candidate := addMonthsClamped(next, k)
		if calendarDays(candidate, now) >= 0 {
			return candidate
		}
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
