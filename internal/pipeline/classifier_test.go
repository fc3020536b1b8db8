package pipeline

import (
	"testing"
	"time"
)

func TestRenewalTier_Boundaries(t *testing.T) {
	tests := []struct {
		days int
		want Tier
	}{
		{-1, TierUrgent},
		{0, TierUrgent},
		{2, TierUrgent},
		{3, TierSoon},
		{6, TierSoon},
		{7, TierLater},
		{30, TierLater},
	}
	for _, tt := range tests {
		if got := RenewalTier(tt.days); got != tt.want {
			t.Errorf("RenewalTier(%d) = %s, want %s", tt.days, got, tt.want)
		}
	}
}

func TestRenewalTier_Scenario(t *testing.T) {
	want := map[string]Tier{"Netflix": TierUrgent, "Spotify": TierSoon, "Adobe": TierLater}
	for _, s := range demoSet(t) {
		days := DaysUntilRenewal(s.NextBillingDate, testNow)
		if got := RenewalTier(days); got != want[s.Name] {
			t.Errorf("%s: RenewalTier(%d) = %s, want %s", s.Name, days, got, want[s.Name])
		}
	}
}

func TestTier_OrdersByUrgency(t *testing.T) {
	if !(TierUrgent < TierSoon && TierSoon < TierLater) {
		t.Error("tiers must order urgent < soon < later")
	}
	if got := Tier(9).String(); got != "Tier(9)" {
		t.Errorf("Tier(9).String() = %q", got)
	}
}

func TestRenewalLabel(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "Due today"},
		{1, "Due tomorrow"},
		{2, "Due in 2 days"},
		{12, "Due in 12 days"},
	}
	for _, tt := range tests {
		if got := RenewalLabel(tt.days); got != tt.want {
			t.Errorf("RenewalLabel(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestBillingLabel(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, "Bills today"},
		{1, "Bills tomorrow"},
		{5, "Bills in 5 days"},
	}
	for _, tt := range tests {
		if got := BillingLabel(tt.days); got != tt.want {
			t.Errorf("BillingLabel(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestDaysUntilRenewal(t *testing.T) {
	tests := []struct {
		name string
		next time.Time
		now  time.Time
		want int
	}{
		{"same day late evening", time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 13, 23, 59, 0, 0, time.UTC), 0},
		{"tomorrow just after midnight", time.Date(2024, 12, 14, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 13, 23, 59, 0, 0, time.UTC), 1},
		{"across month", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 20, 8, 0, 0, 0, time.UTC), 16},
		{"lapsed clamps to zero", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), testNow, 0},
		{"local now keeps its own date", time.Date(2024, 12, 14, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 13, 22, 0, 0, 0, time.FixedZone("PST", -8*3600)), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysUntilRenewal(tt.next, tt.now); got != tt.want {
				t.Errorf("DaysUntilRenewal() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRollForward(t *testing.T) {
	tests := []struct {
		name string
		next time.Time
		now  time.Time
		want time.Time
	}{
		{
			name: "future date untouched",
			next: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
			now:  testNow,
			want: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "today untouched",
			next: time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC),
			now:  testNow,
			want: time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "one month lapsed",
			next: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			now:  testNow,
			want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "several months lapsed",
			next: time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC),
			now:  testNow,
			want: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "month end clamps",
			next: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "anchor day restored after short month",
			next: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			now:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RollForward(tt.next, tt.now); !got.Equal(tt.want) {
				t.Errorf("RollForward() = %s, want %s", got.Format(DateLayout), tt.want.Format(DateLayout))
			}
		})
	}
}
