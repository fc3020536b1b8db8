package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.SortKey() != pipeline.SortRenewal {
		t.Errorf("SortKey = %s", cfg.SortKey())
	}
	if cfg.Goal().StringFixed(2) != "100.00" {
		t.Errorf("Goal = %s", cfg.Goal())
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.DefaultSort = "popularity"
	cfg.General.DefaultCategory = " "
	cfg.Savings.GoalUSD = -5
	cfg.Savings.Period = "daily"
	cfg.Profile.Email = "not-an-email"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil")
	}
	for _, want := range []string{"default_sort", "default_category", "goal_usd", "savings.period", "profile.email"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q:\n%v", want, err)
		}
	}

	cfg = DefaultConfig()
	cfg.Profile.Email = "alex@example.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if Exists() {
		t.Fatal("config exists in fresh dir")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Errorf("default theme = %q", cfg.Appearance.Theme)
	}

	cfg.Profile.Name = "Alex"
	cfg.Appearance.Theme = "flexoki-light"
	cfg.Savings.GoalUSD = 250
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.Profile.Name != "Alex" || got.Appearance.Theme != "flexoki-light" || got.Savings.GoalUSD != 250 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SUBTRACKR_THEME", "flexoki-light")
	t.Setenv("SUBTRACKR_SORT", "price-desc")
	t.Setenv("SUBTRACKR_GOAL_USD", "42.5")
	t.Setenv("SUBTRACKR_DB", "/tmp/x.db")

	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Appearance.Theme != "flexoki-light" || cfg.General.DefaultSort != "price-desc" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Savings.GoalUSD != 42.5 || cfg.DBPath() != "/tmp/x.db" {
		t.Errorf("goal/db = %v/%s", cfg.Savings.GoalUSD, cfg.DBPath())
	}
	if cfg.Daemon.Addr != "127.0.0.1:8787" {
		t.Errorf("unset variable changed daemon addr: %s", cfg.Daemon.Addr)
	}

	t.Setenv("SUBTRACKR_GOAL_USD", "lots")
	if err := ApplyEnv(&cfg); err == nil {
		t.Error("ApplyEnv accepted a non-numeric goal")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("SUBTRACKR_CATEGORY=Music\nSUBTRACKR_THEME=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUBTRACKR_THEME", "from-env")
	t.Setenv("SUBTRACKR_CATEGORY", "")
	os.Unsetenv("SUBTRACKR_CATEGORY")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SUBTRACKR_CATEGORY") })

	if got := os.Getenv("SUBTRACKR_CATEGORY"); got != "Music" {
		t.Errorf("SUBTRACKR_CATEGORY = %q, want Music", got)
	}
	if got := os.Getenv("SUBTRACKR_THEME"); got != "from-env" {
		t.Errorf("existing variable overwritten: %q", got)
	}
}

func TestDBPathDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := DefaultConfig()
	if got := cfg.DBPath(); got != filepath.Join("/data", "subtrackr", "subtrackr.db") {
		t.Errorf("DBPath = %s", got)
	}
}
