package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/log"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

var importCmd = &cobra.Command{
	Use:   "import <dir|file>",
	Short: "Import subscriptions from JSON, YAML or TOML files",
	Long: "Import subscriptions from .json, .yaml/.yml and .toml files. Files that\n" +
		"have not changed since the last import are skipped. Invalid records are\n" +
		"reported and skipped; valid records in the same file are still imported.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	importLog := logger.WithComponent(log.ComponentImport)
	progressf("  Scanning %s...\n", args[0])
	progressFn := func(current, total int) {
		if current%10 == 0 || current == total {
			progressf("\r  Parsing [%d/%d]", current, total)
		}
	}

	now := time.Now()
	result, err := pipeline.Import(ctx, args[0], st, now, progressFn)
	if err != nil {
		return err
	}
	if result.TotalFiles == 0 {
		fmt.Println("  No importable files found.")
		return nil
	}
	if result.ParsedFiles > 0 {
		progressf("\n")
	}

	if err := st.SaveImport(ctx, result.Subscriptions, result.Changed, now); err != nil {
		return fmt.Errorf("saving import: %w", err)
	}
	importLog.Info("import complete",
		log.FieldCount, len(result.Subscriptions),
		log.FieldFile, args[0],
	)

	fmt.Printf("  Imported %s subscriptions from %d files (%d unchanged)\n",
		formatNumber(int64(len(result.Subscriptions))), result.ParsedFiles, result.CacheHits)

	for _, msg := range result.ParseErrors {
		fmt.Fprintf(os.Stderr, "  warning: %s\n", msg)
	}
	for _, rec := range result.Skipped {
		fmt.Fprintf(os.Stderr, "  skipped: %s\n", rec.Error())
	}
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be parsed\n", result.FileErrors)
	}
	return nil
}
