package cmd

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

func resetAddFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		flagAddAmount, flagAddNext, flagAddPayment, flagAddLogo, flagCategory = "", "", "", "", ""
	})
}

func TestBuildSubscription(t *testing.T) {
	now := time.Date(2024, 12, 13, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		arg        string
		amount     string
		category   string
		next       string
		wantName   string
		wantAmount string
		wantCat    string
		wantNext   time.Time
		wantErr    bool
	}{
		{
			name: "catalog defaults", arg: "netflix",
			wantName: "Netflix", wantAmount: "15.99", wantCat: "Streaming",
			wantNext: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "flags override catalog", arg: "Spotify Family", amount: "16.994", category: "Family",
			next:     "2024-12-20",
			wantName: "Spotify Premium", wantAmount: "16.99", wantCat: "Family",
			wantNext: time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "all is not a category", arg: "Dropbox", category: pipeline.AllCategories,
			wantName: "Dropbox Pro", wantAmount: "11.99", wantCat: "Storage",
			wantNext: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "unknown service with amount", arg: "Local Paper", amount: "8",
			wantName: "Local Paper", wantAmount: "8", wantCat: "Other",
			wantNext: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC),
		},
		{name: "unknown service without amount", arg: "Local Paper", wantErr: true},
		{name: "bad amount", arg: "netflix", amount: "lots", wantErr: true},
		{name: "bad date", arg: "netflix", next: "13/12/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetAddFlags(t)
			flagAddAmount, flagCategory, flagAddNext = tt.amount, tt.category, tt.next

			sub, err := buildSubscription(tt.arg, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("buildSubscription(%q) succeeded, want error", tt.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildSubscription(%q) error = %v", tt.arg, err)
			}
			if sub.Name != tt.wantName || sub.Category != tt.wantCat {
				t.Errorf("got %s/%s, want %s/%s", sub.Name, sub.Category, tt.wantName, tt.wantCat)
			}
			if !sub.Amount.Equal(decimal.RequireFromString(tt.wantAmount)) {
				t.Errorf("Amount = %s, want %s", sub.Amount, tt.wantAmount)
			}
			if !sub.NextBillingDate.Equal(tt.wantNext) {
				t.Errorf("NextBillingDate = %s, want %s", sub.NextBillingDate, tt.wantNext)
			}
			if sub.ID == "" {
				t.Error("ID is empty")
			}
			if err := pipeline.Validate(sub); err != nil {
				t.Errorf("built subscription is invalid: %v", err)
			}
		})
	}
}

func TestFilterDetachArg(t *testing.T) {
	in := []string{"daemon", "--detach", "--addr", "127.0.0.1:9000", "--detach=true"}
	want := []string{"daemon", "--addr", "127.0.0.1:9000"}
	if got := filterDetachArg(in); !reflect.DeepEqual(got, want) {
		t.Errorf("filterDetachArg() = %v, want %v", got, want)
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subtrackrd.pid")

	if _, err := readPID(path); !os.IsNotExist(err) {
		t.Fatalf("readPID(missing) error = %v, want not-exist", err)
	}
	if err := ensureDaemonNotRunning(path); err != nil {
		t.Fatalf("ensureDaemonNotRunning(missing) = %v", err)
	}

	if err := writePID(path, 4242); err != nil {
		t.Fatal(err)
	}
	pid, err := readPID(path)
	if err != nil || pid != 4242 {
		t.Fatalf("readPID() = %d, %v; want 4242", pid, err)
	}

	if err := os.WriteFile(path, []byte("nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPID(path); err == nil {
		t.Error("readPID(garbage) should fail")
	}
}

func TestWaitForExit(t *testing.T) {
	calls := 0
	exitsOnThird := func(int) bool {
		calls++
		return calls < 3
	}
	if !waitForExit(1, time.Second, exitsOnThird) {
		t.Error("waitForExit gave up before the process exited")
	}
	if waitForExit(1, 0, func(int) bool { return true }) {
		t.Error("waitForExit reported exit for a process that never stops")
	}
}

func TestClearDaemonFiles(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "run", "subtrackrd.pid")
	if err := ensureDirs(pidFile); err != nil {
		t.Fatal(err)
	}
	if err := writePID(pidFile, 4242); err != nil {
		t.Fatal(err)
	}
	if err := writeState(statePath(pidFile), daemonRuntimeState{PID: 4242}); err != nil {
		t.Fatal(err)
	}

	clearDaemonFiles(pidFile)
	for _, p := range []string{pidFile, statePath(pidFile)} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists (err = %v)", p, err)
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	path := statePath(filepath.Join(t.TempDir(), "subtrackrd.pid"))
	want := daemonRuntimeState{
		PID:       7,
		Addr:      "127.0.0.1:8787",
		StartedAt: time.Date(2024, 12, 13, 9, 0, 0, 0, time.UTC),
		DBPath:    "/tmp/subtrackr.db",
	}
	if err := writeState(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := readState(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.PID != want.PID || got.Addr != want.Addr || !got.StartedAt.Equal(want.StartedAt) || got.DBPath != want.DBPath {
		t.Errorf("readState() = %+v, want %+v", got, want)
	}
}

func TestGoalProgress(t *testing.T) {
	t.Cleanup(func() { appCfg.Savings.Period = "monthly" })
	now := time.Date(2024, 12, 13, 12, 0, 0, 0, time.UTC)

	ledger := pipeline.NewLedger()
	ledger, err := pipeline.RecordCancellation(ledger, savingsEvent("15.99", now.Add(-time.Hour)))
	if err != nil {
		t.Fatal(err)
	}
	ledger, err = pipeline.RecordCancellation(ledger, savingsEvent("9.99", now.AddDate(0, -1, 0)))
	if err != nil {
		t.Fatal(err)
	}

	appCfg.Savings.Period = "monthly"
	p, period, err := goalProgress(ledger, now)
	if err != nil {
		t.Fatal(err)
	}
	if period != pipeline.PeriodMonthly || periodNoun(period) != "month" {
		t.Errorf("period = %s (%s)", period, periodNoun(period))
	}
	if !p.Saved.Equal(decimal.RequireFromString("15.99")) {
		t.Errorf("Saved = %s, want 15.99 (last month's event excluded)", p.Saved)
	}

	appCfg.Savings.Period = "yearly"
	if p, _, _ = goalProgress(ledger, now); !p.Saved.Equal(decimal.RequireFromString("25.98")) {
		t.Errorf("yearly Saved = %s, want 25.98", p.Saved)
	}
}

func TestShortIDAndPadBar(t *testing.T) {
	if got := shortID("3f2a9c1e-aaaa-bbbb"); got != "3f2a9c1e" {
		t.Errorf("shortID() = %q", got)
	}
	if got := shortID("n"); got != "n" {
		t.Errorf("shortID(short) = %q", got)
	}
	if got := padBar("███", 6); got != "███   " {
		t.Errorf("padBar() = %q", got)
	}
}

func savingsEvent(amount string, ts time.Time) model.SavingsEvent {
	return model.SavingsEvent{SubscriptionID: "x", Name: "X", AmountSaved: decimal.RequireFromString(amount), Timestamp: ts}
}
