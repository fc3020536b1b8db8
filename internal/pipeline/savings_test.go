package pipeline

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
)

func event(t *testing.T, amount string, ts time.Time) model.SavingsEvent {
	t.Helper()
	return model.SavingsEvent{ID: amount + ts.Format(time.RFC3339), AmountSaved: money(t, amount), Timestamp: ts}
}

func december(t *testing.T, target string) model.SavingsGoal {
	t.Helper()
	return model.SavingsGoal{
		Target:      money(t, target),
		PeriodStart: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
	}
}

func mustRecord(t *testing.T, l Ledger, ev model.SavingsEvent) Ledger {
	t.Helper()
	next, err := RecordCancellation(l, ev)
	if err != nil {
		t.Fatalf("RecordCancellation() error = %v", err)
	}
	return next
}

func TestRecordCancellation_AppendOnly(t *testing.T) {
	var empty Ledger
	one := mustRecord(t, empty, event(t, "30.00", testNow))
	two := mustRecord(t, one, event(t, "20.00", testNow))

	if empty.Len() != 0 || one.Len() != 1 || two.Len() != 2 {
		t.Fatalf("lens = %d/%d/%d, want 0/1/2", empty.Len(), one.Len(), two.Len())
	}

	// Appending to the same base twice must not clobber the first result.
	alt := mustRecord(t, one, event(t, "99.00", testNow))
	if !two.Events()[1].AmountSaved.Equal(money(t, "20.00")) {
		t.Errorf("sibling append overwrote event: %s", two.Events()[1].AmountSaved)
	}
	if !alt.Events()[1].AmountSaved.Equal(money(t, "99.00")) {
		t.Errorf("alt event = %s, want 99.00", alt.Events()[1].AmountSaved)
	}

	evs := two.Events()
	evs[0].AmountSaved = decimal.NewFromInt(1000)
	if two.Events()[0].AmountSaved.Equal(decimal.NewFromInt(1000)) {
		t.Error("Events() exposed the ledger's backing array")
	}
	if !two.Total().Equal(money(t, "50")) {
		t.Errorf("Total() = %s, want 50", two.Total())
	}
}

func TestRecordCancellation_Rejects(t *testing.T) {
	tests := []struct {
		name string
		ev   model.SavingsEvent
	}{
		{"negative", model.SavingsEvent{AmountSaved: decimal.NewFromInt(-5), Timestamp: testNow}},
		{"no timestamp", model.SavingsEvent{AmountSaved: decimal.NewFromInt(5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := RecordCancellation(Ledger{}, tt.ev)
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("error = %v, want ErrInvalidRecord", err)
			}
			if l.Len() != 0 {
				t.Errorf("ledger grew on rejected event")
			}
		})
	}
}

func TestRecordCancellation_AssignsID(t *testing.T) {
	l := mustRecord(t, Ledger{}, model.SavingsEvent{AmountSaved: decimal.NewFromInt(5), Timestamp: testNow})
	if l.Events()[0].ID == "" {
		t.Error("event recorded without an ID")
	}
}

func TestProgressTowardGoal(t *testing.T) {
	l := NewLedger(
		event(t, "30.00", time.Date(2024, 12, 3, 10, 0, 0, 0, time.UTC)),
		event(t, "20.00", time.Date(2024, 12, 10, 10, 0, 0, 0, time.UTC)),
		event(t, "40.00", time.Date(2024, 11, 28, 10, 0, 0, 0, time.UTC)),
	)

	p := ProgressTowardGoal(l, december(t, "100.00"), testNow)
	if p.Percent != 50 {
		t.Errorf("Percent = %v, want 50", p.Percent)
	}
	if !p.Saved.Equal(money(t, "50")) || p.Events != 2 {
		t.Errorf("Saved = %s over %d events, want 50 over 2", p.Saved, p.Events)
	}
	if p.Met() {
		t.Error("Met() = true at 50%")
	}
}

func TestProgressTowardGoal_Edges(t *testing.T) {
	start := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name   string
		events []model.SavingsEvent
		target string
		now    time.Time
		want   float64
	}{
		{"zero target is met", nil, "0", testNow, 100},
		{"empty ledger", nil, "100", testNow, 0},
		{"clamped at 100", []model.SavingsEvent{event(t, "250", testNow)}, "100", testNow, 100},
		{"period start inclusive", []model.SavingsEvent{event(t, "10", start)}, "100", testNow, 10},
		{"period end inclusive", []model.SavingsEvent{event(t, "10", end)}, "100", end, 10},
		{"future event ignored", []model.SavingsEvent{event(t, "10", testNow.Add(time.Hour))}, "100", testNow, 0},
		{"fractional", []model.SavingsEvent{event(t, "1", testNow)}, "3", testNow, 100.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := model.SavingsGoal{Target: money(t, tt.target), PeriodStart: start, PeriodEnd: end}
			got := ProgressTowardGoal(NewLedger(tt.events...), goal, tt.now).Percent
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Percent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoalWindow(t *testing.T) {
	now := time.Date(2024, 12, 13, 9, 30, 0, 0, time.UTC) // a Friday
	tests := []struct {
		period    GoalPeriod
		wantStart time.Time
		wantEnd   time.Time
	}{
		{PeriodWeekly, time.Date(2024, 12, 9, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC)},
		{PeriodMonthly, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{PeriodYearly, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			g, err := GoalWindow(tt.period, decimal.NewFromInt(100), now)
			if err != nil {
				t.Fatal(err)
			}
			if !g.PeriodStart.Equal(tt.wantStart) {
				t.Errorf("PeriodStart = %s, want %s", g.PeriodStart, tt.wantStart)
			}
			if !g.PeriodEnd.Equal(tt.wantEnd.Add(-time.Nanosecond)) {
				t.Errorf("PeriodEnd = %s, want just before %s", g.PeriodEnd, tt.wantEnd)
			}
		})
	}

	if _, err := GoalWindow("daily", decimal.Zero, now); err == nil {
		t.Error("GoalWindow(daily) succeeded, want error")
	}
}

func TestTransition(t *testing.T) {
	base := mkSub(t, "n", "Netflix", "15.99", "Streaming", 2)

	tests := []struct {
		name      string
		from, to  model.Status
		wantErr   bool
		wantEvent bool
	}{
		{"pause", model.StatusActive, model.StatusPaused, false, false},
		{"resume", model.StatusPaused, model.StatusActive, false, false},
		{"cancel active", model.StatusActive, model.StatusCancelled, false, true},
		{"cancel paused", model.StatusPaused, model.StatusCancelled, false, true},
		{"reactivate cancelled", model.StatusCancelled, model.StatusActive, true, false},
		{"pause cancelled", model.StatusCancelled, model.StatusPaused, true, false},
		{"cancel twice", model.StatusCancelled, model.StatusCancelled, true, false},
		{"same state", model.StatusActive, model.StatusActive, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := withStatus(base, tt.from)
			got, ev, err := Transition(sub, tt.to, testNow)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("error = %v, want ErrInvalidTransition", err)
				}
				if ev != nil {
					t.Error("rejected transition emitted an event")
				}
				if got.Status != tt.from {
					t.Errorf("status = %s after rejection, want %s", got.Status, tt.from)
				}
				return
			}
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got.Status != tt.to {
				t.Errorf("status = %s, want %s", got.Status, tt.to)
			}
			if (ev != nil) != tt.wantEvent {
				t.Fatalf("event = %v, wantEvent %v", ev, tt.wantEvent)
			}
			if ev != nil {
				if !ev.AmountSaved.Equal(base.Amount) || !ev.Timestamp.Equal(testNow) || ev.SubscriptionID != "n" {
					t.Errorf("event = %+v, want 15.99 for n at testNow", *ev)
				}
			}
			if sub.Status != tt.from {
				t.Error("Transition mutated its input")
			}
		})
	}
}

func TestTransition_IsPure(t *testing.T) {
	sub := mkSub(t, "n", "Netflix", "15.99", "Streaming", 2)

	a, evA, errA := Transition(sub, model.StatusCancelled, testNow)
	b, evB, errB := Transition(sub, model.StatusCancelled, testNow)
	if errA != nil || errB != nil {
		t.Fatalf("errors = %v, %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(evA, evB) {
		t.Errorf("identical calls differ: %+v / %+v", *evA, *evB)
	}
	if evA.ID != "" {
		t.Errorf("event ID = %q, want it left for the recorder", evA.ID)
	}

	l := mustRecord(t, Ledger{}, *evA)
	if l.Events()[0].ID == "" {
		t.Error("recording did not assign an ID")
	}
}

func TestTransition_CancelFeedsGoal(t *testing.T) {
	subs := []model.Subscription{
		mkSub(t, "h", "Hulu", "30.00", "Streaming", 20),
		withStatus(mkSub(t, "a", "Audible", "20.00", "Books", 25), model.StatusPaused),
	}

	var ledger Ledger
	for _, s := range subs {
		_, ev, err := Transition(s, model.StatusCancelled, testNow)
		if err != nil {
			t.Fatal(err)
		}
		ledger = mustRecord(t, ledger, *ev)
	}

	goal, err := GoalWindow(PeriodMonthly, decimal.NewFromInt(100), testNow)
	if err != nil {
		t.Fatal(err)
	}
	if p := ProgressTowardGoal(ledger, goal, testNow); p.Percent != 50 {
		t.Errorf("Percent = %v, want 50", p.Percent)
	}
}
