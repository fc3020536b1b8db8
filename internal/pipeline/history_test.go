package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/subtrackr/internal/model"
)

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(testNow)
	if !got.Equal(month(2024, time.December)) {
		t.Errorf("MonthStart = %s", got)
	}
}

func TestSpendTrend(t *testing.T) {
	points := []model.SpendPoint{
		{Month: month(2024, time.September), Total: money(t, "85")},
		{Month: month(2024, time.November), Total: money(t, "92.50")},
		{Month: month(2024, time.December), Total: money(t, "78.97")},
		{Month: month(2023, time.January), Total: money(t, "500")},
	}

	got := SpendTrend(points, 4, testNow)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	want := []struct {
		m     time.Time
		total string
	}{
		{month(2024, time.September), "85"},
		{month(2024, time.October), "0"},
		{month(2024, time.November), "92.5"},
		{month(2024, time.December), "78.97"},
	}
	for i, w := range want {
		if !got[i].Month.Equal(w.m) {
			t.Errorf("[%d] month = %s, want %s", i, got[i].Month, w.m)
		}
		if !got[i].Total.Equal(money(t, w.total)) {
			t.Errorf("[%d] total = %s, want %s", i, got[i].Total, w.total)
		}
	}

	if SpendTrend(points, 0, testNow) != nil {
		t.Error("SpendTrend(n=0) should be nil")
	}
}

func TestSpendTrend_CrossesYear(t *testing.T) {
	now := time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)
	got := SpendTrend(nil, 3, now)
	wantMonths := []time.Time{month(2024, time.November), month(2024, time.December), month(2025, time.January)}
	for i, w := range wantMonths {
		if !got[i].Month.Equal(w) {
			t.Errorf("[%d] month = %s, want %s", i, got[i].Month, w)
		}
	}
}

func TestPeakMonth(t *testing.T) {
	if _, ok := PeakMonth(nil); ok {
		t.Error("PeakMonth(nil) reported a peak")
	}

	points := []model.SpendPoint{
		{Month: month(2024, time.August), Total: money(t, "102")},
		{Month: month(2024, time.September), Total: money(t, "95")},
		{Month: month(2024, time.October), Total: money(t, "102")},
	}
	got, ok := PeakMonth(points)
	if !ok || !got.Month.Equal(month(2024, time.October)) {
		t.Errorf("PeakMonth = %s, want the later of the tied months", got.Month)
	}
	if !points[0].Month.Equal(month(2024, time.August)) {
		t.Error("PeakMonth reordered its input")
	}
}
