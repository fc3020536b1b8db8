package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
)

// Ledger is an append-only list of savings events.
// The zero value is an empty ledger.
type Ledger struct {
	events []model.SavingsEvent
}

// NewLedger builds a ledger from previously recorded events.
func NewLedger(events ...model.SavingsEvent) Ledger {
	cp := make([]model.SavingsEvent, len(events))
	copy(cp, events)
	return Ledger{events: cp}
}

// Events returns a copy of the recorded events in insertion order.
func (l Ledger) Events() []model.SavingsEvent {
	cp := make([]model.SavingsEvent, len(l.events))
	copy(cp, l.events)
	return cp
}

// Len returns the number of recorded events.
func (l Ledger) Len() int { return len(l.events) }

// Total sums every event regardless of period.
func (l Ledger) Total() decimal.Decimal {
	total := decimal.Zero
	for _, ev := range l.events {
		total = total.Add(ev.AmountSaved)
	}
	return total
}

// RecordCancellation returns a new ledger with ev appended. The input ledger
// is left untouched.
func RecordCancellation(ledger Ledger, ev model.SavingsEvent) (Ledger, error) {
	if ev.AmountSaved.IsNegative() {
		return ledger, fmt.Errorf("%w: negative savings amount %s", ErrInvalidRecord, ev.AmountSaved.StringFixed(2))
	}
	if ev.Timestamp.IsZero() {
		return ledger, fmt.Errorf("%w: savings event without timestamp", ErrInvalidRecord)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	next := make([]model.SavingsEvent, len(ledger.events), len(ledger.events)+1)
	copy(next, ledger.events)
	next = append(next, ev)
	return Ledger{events: next}, nil
}

// ProgressTowardGoal sums events stamped within [PeriodStart, PeriodEnd] and
// not after now, and reports them as a percentage of the target clamped to
// [0, 100]. A zero target counts as already met.
func ProgressTowardGoal(ledger Ledger, goal model.SavingsGoal, now time.Time) model.Progress {
	p := model.Progress{Saved: decimal.Zero, Target: goal.Target}

	for _, ev := range ledger.events {
		ts := ev.Timestamp
		if ts.Before(goal.PeriodStart) || ts.After(goal.PeriodEnd) || ts.After(now) {
			continue
		}
		p.Saved = p.Saved.Add(ev.AmountSaved)
		p.Events++
	}

	if !goal.Target.IsPositive() {
		p.Percent = 100
		return p
	}

	pct := p.Saved.Mul(decimal.NewFromInt(100)).Div(goal.Target).InexactFloat64()
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	p.Percent = pct
	return p
}

// GoalPeriod is the recurring window a savings goal resets on.
type GoalPeriod string

const (
	PeriodWeekly  GoalPeriod = "weekly"
	PeriodMonthly GoalPeriod = "monthly"
	PeriodYearly  GoalPeriod = "yearly"
)

// ParseGoalPeriod validates a configured period name.
func ParseGoalPeriod(s string) (GoalPeriod, error) {
	switch p := GoalPeriod(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return p, nil
	default:
		return "", fmt.Errorf("unknown goal period: %q", s)
	}
}

// GoalWindow builds the goal for the period containing now. Weeks start on
// Monday. PeriodEnd is the last nanosecond of the period.
func GoalWindow(period GoalPeriod, target decimal.Decimal, now time.Time) (model.SavingsGoal, error) {
	y, m, d := now.Date()
	loc := now.Location()

	var start, end time.Time
	switch period {
	case PeriodWeekly:
		offset := (int(now.Weekday()) + 6) % 7
		start = time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	case PeriodYearly:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	default:
		return model.SavingsGoal{}, fmt.Errorf("unknown goal period: %q", period)
	}

	return model.SavingsGoal{
		Target:      target,
		PeriodStart: start,
		PeriodEnd:   end.Add(-time.Nanosecond),
	}, nil
}

var transitions = map[model.Status][]model.Status{
	model.StatusActive: {model.StatusPaused, model.StatusCancelled},
	model.StatusPaused: {model.StatusActive, model.StatusCancelled},
}

// CanTransition reports whether from -> to is an allowed status change.
func CanTransition(from, to model.Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves sub to the target status. Cancelling is terminal and
// returns exactly one savings event worth one month of the subscription,
// stamped at now. The event has no ID yet; whoever records it assigns one.
// Every other allowed change returns a nil event.
func Transition(sub model.Subscription, to model.Status, now time.Time) (model.Subscription, *model.SavingsEvent, error) {
	if !CanTransition(sub.Status, to) {
		return sub, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, sub.Status, to)
	}

	next := sub
	next.Status = to
	if to != model.StatusCancelled {
		return next, nil, nil
	}

	ev := &model.SavingsEvent{
		SubscriptionID: sub.ID,
		Name:           sub.Name,
		AmountSaved:    sub.Amount,
		Timestamp:      now,
	}
	return next, ev, nil
}
