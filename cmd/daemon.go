package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subtrackr/internal/cli"
	"github.com/theirongolddev/subtrackr/internal/config"
	"github.com/theirongolddev/subtrackr/internal/daemon"
	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
	"github.com/theirongolddev/subtrackr/internal/store"
)

type daemonRuntimeState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve derived views over HTTP with a server-sent event stream",
	Long: "Keep spend totals, the category breakdown, upcoming renewals and goal\n" +
		"progress warm behind a local HTTP API. pause, resume and cancel go through\n" +
		"a running daemon so /v1/events subscribers see each change at once.",
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon's pid, address and current spend snapshot",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon and clear its pid and state files",
	RunE:  runDaemonStop,
}

const stopTimeout = 8 * time.Second

func init() {
	defaultPID := filepath.Join(config.DataDir(), "subtrackrd.pid")
	defaultLog := filepath.Join(config.DataDir(), "subtrackrd.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default: from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", time.Minute, "How often views are rebuilt")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func daemonAddr() string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return appCfg.Daemon.Addr
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("--detach cannot be combined with --child")
	}

	if flagDaemonDetach {
		return startDaemonDetached()
	}

	return runDaemonForeground()
}

func startDaemonDetached() error {
	if err := ensureDaemonNotRunning(flagDaemonPIDFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := append(filterDetachArg(os.Args[1:]), "--child")

	if err := ensureDirs(flagDaemonPIDFile, flagDaemonLogFile); err != nil {
		return err
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  subtrackr daemon started in the background (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  Snapshot: http://%s/v1/snapshot\n", daemonAddr())
	fmt.Printf("  Events:   http://%s/v1/events\n", daemonAddr())
	fmt.Printf("  Log:      %s\n", flagDaemonLogFile)
	fmt.Printf("  Check it with: subtrackr daemon status\n")
	return nil
}

func runDaemonForeground() error {
	if err := ensureDaemonNotRunning(flagDaemonPIDFile); err != nil {
		return err
	}

	if err := ensureDirs(flagDaemonPIDFile); err != nil {
		return err
	}

	pid := os.Getpid()
	if err := writePID(flagDaemonPIDFile, pid); err != nil {
		return err
	}
	defer clearDaemonFiles(flagDaemonPIDFile)

	addr := daemonAddr()
	state := daemonRuntimeState{
		PID:       pid,
		Addr:      addr,
		StartedAt: time.Now(),
		DBPath:    appCfg.DBPath(),
	}
	_ = writeState(statePath(flagDaemonPIDFile), state)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	period, err := pipeline.ParseGoalPeriod(appCfg.Savings.Period)
	if err != nil {
		return err
	}

	svc := daemon.New(refreshingBackend{st}, daemon.Config{
		Addr:          addr,
		Interval:      flagDaemonInterval,
		EventsBuffer:  flagDaemonEventsBuffer,
		UpcomingLimit: appCfg.General.UpcomingLimit,
		DefaultSort:   appCfg.SortKey(),
		Goal:          appCfg.Goal(),
		GoalPeriod:    period,
		Logger:        logger,
	})

	fmt.Printf("  subtrackr daemon listening on http://%s\n", addr)
	fmt.Printf("  Rebuilding views every %s from %s\n", flagDaemonInterval, appCfg.DBPath())
	fmt.Printf("  Stop with: subtrackr daemon stop --pid-file %s\n", flagDaemonPIDFile)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// refreshingBackend rolls lapsed billing dates forward before every read so
// a long-running daemon never serves stale renewals.
type refreshingBackend struct {
	*store.Store
}

func (b refreshingBackend) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	if _, err := b.Refresh(ctx, time.Now()); err != nil {
		return nil, err
	}
	return b.Store.ListSubscriptions(ctx)
}

func runDaemonStatus(cmd *cobra.Command, _ []string) error {
	pid, err := readPID(flagDaemonPIDFile)
	if err != nil {
		fmt.Printf("  Daemon: not running (pid file not found)\n")
		return nil
	}

	alive := processAlive(pid)
	if !alive {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := daemonAddr()
	if st, err := readState(statePath(flagDaemonPIDFile)); err == nil && st.Addr != "" {
		addr = st.Addr
	}

	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	client := daemon.NewClient(addr)
	if client == nil {
		fmt.Printf("  API status: no address configured\n")
		return nil
	}
	snap, err := client.Snapshot(cmd.Context())
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}

	if snap.At.IsZero() {
		fmt.Printf("  Last rebuild: pending\n")
	} else {
		fmt.Printf("  Last rebuild: %s\n", snap.At.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Version: %d\n", snap.Version)
	fmt.Printf("  Active: %d of %d\n", snap.Active, snap.Total)
	fmt.Printf("  Monthly spend: %s\n", cli.FormatMoney(snap.MonthlySpend))
	fmt.Printf("  Savings: %s of %s\n", cli.FormatPercentFloat(snap.Savings.Percent), cli.FormatMoney(snap.Savings.Target))
	return nil
}

// runningDaemon returns a client for the live daemon, or nil when none
// answers its health check.
func runningDaemon(ctx context.Context) *daemon.Client {
	pid, err := readPID(flagDaemonPIDFile)
	if err != nil || !processAlive(pid) {
		return nil
	}
	addr := daemonAddr()
	if st, err := readState(statePath(flagDaemonPIDFile)); err == nil && st.Addr != "" {
		addr = st.Addr
	}
	c := daemon.NewClient(addr)
	if c == nil || c.Health(ctx) != nil {
		return nil
	}
	return c
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagDaemonPIDFile)
	if err != nil {
		return fmt.Errorf("no subtrackr daemon found (pid file %s)", flagDaemonPIDFile)
	}
	if !processAlive(pid) {
		clearDaemonFiles(flagDaemonPIDFile)
		fmt.Printf("  Removed stale pid file (pid %d had already exited)\n", pid)
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	if !waitForExit(pid, stopTimeout, processAlive) {
		return fmt.Errorf("daemon (pid %d) still running after %s", pid, stopTimeout)
	}
	clearDaemonFiles(flagDaemonPIDFile)
	fmt.Printf("  subtrackr daemon stopped (pid %d)\n", pid)
	return nil
}

// waitForExit polls alive until it reports false or timeout passes.
func waitForExit(pid int, timeout time.Duration, alive func(int) bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if !alive(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(150 * time.Millisecond)
	}
}

func clearDaemonFiles(pidFile string) {
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
}

func ensureDirs(paths ...string) error {
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			return fmt.Errorf("create directory for %s: %w", p, err)
		}
	}
	return nil
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureDaemonNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("a subtrackr daemon is already running (pid %d); stop it with: subtrackr daemon stop", pid)
	}
	clearDaemonFiles(pidFile)
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st daemonRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (daemonRuntimeState, error) {
	var st daemonRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}
