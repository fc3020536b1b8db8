package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/config"
	"github.com/theirongolddev/subtrackr/internal/log"
	"github.com/theirongolddev/subtrackr/internal/tui"
	"github.com/theirongolddev/subtrackr/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	// The alt screen owns stderr while the dashboard runs.
	tuiLogger := log.Discard()
	if flagVerbose {
		path := filepath.Join(config.DataDir(), "subtrackr-tui.log")
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		logf, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open TUI log: %w", err)
		}
		defer logf.Close()

		logCfg := log.DefaultConfig()
		logCfg.Level = slog.LevelDebug
		logCfg.Output = logf
		tuiLogger = log.New(logCfg)
	}

	app := tui.NewApp(st, appCfg, tuiLogger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
