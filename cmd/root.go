package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/config"
	"github.com/theirongolddev/subtrackr/internal/log"
	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
	"github.com/theirongolddev/subtrackr/internal/store"
)

var (
	flagDBPath   string
	flagCategory string
	flagSort     string
	flagQuiet    bool
	flagVerbose  bool
)

// appCfg and logger are populated by the root PersistentPreRunE before any
// subcommand runs.
var (
	appCfg = config.DefaultConfig()
	logger = log.Discard()
)

var rootCmd = &cobra.Command{
	Use:               "subtrackr",
	Short:             "Subscription tracker CLI",
	Long:              "Track recurring subscriptions: monthly spend, category shares, upcoming renewals, and savings from cancellations.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to category (\"all\" for every category)")
	rootCmd.PersistentFlags().StringVarP(&flagSort, "sort", "s", "", "Sort key: renewal, price-desc, price-asc, name")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")
}

func setup(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(".env", filepath.Join(config.ConfigDir(), ".env")); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDBPath != "" {
		cfg.General.DBPath = flagDBPath
	}

	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	logCfg := log.DefaultConfig()
	logCfg.Level = level
	logger = log.New(logCfg)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Warn("config has problems, using defaults where needed", log.FieldError, err)
	}
	appCfg = cfg
	return nil
}

// openStore opens the database, rolls lapsed billing dates forward and
// records the current month's spend so history stays current.
func openStore(ctx context.Context) (*store.Store, error) {
	dbPath := appCfg.DBPath()
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	logger.WithComponent(log.ComponentStore).Debug("opened", log.FieldDBPath, dbPath)

	now := time.Now()
	if n, err := st.Refresh(ctx, now); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("refreshing billing dates: %w", err)
	} else if n > 0 {
		logger.WithComponent(log.ComponentStore).Info("rolled billing dates forward", log.FieldCount, n)
	}

	subs, err := st.ListSubscriptions(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if total, err := pipeline.TotalMonthlySpend(subs); err == nil {
		if err := st.RecordSpend(ctx, pipeline.MonthStart(now), total); err != nil {
			logger.Warn("recording spend", log.FieldError, err)
		}
	}
	return st, nil
}

// loadSubscriptions opens the store and returns every subscription.
func loadSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.ListSubscriptions(ctx)
}

// viewOptions resolves the category filter and sort key from flags, falling
// back to the configured defaults.
func viewOptions() (string, pipeline.SortKey, error) {
	category := appCfg.General.DefaultCategory
	if flagCategory != "" {
		category = flagCategory
	}
	if category == "" {
		category = pipeline.AllCategories
	}

	key := appCfg.SortKey()
	if flagSort != "" {
		k, err := pipeline.ParseSortKey(flagSort)
		if err != nil {
			return "", 0, err
		}
		key = k
	}
	return category, key, nil
}

func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
