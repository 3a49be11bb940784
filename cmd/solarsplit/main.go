package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/solarsplit/internal/config"
	"github.com/provide-io/solarsplit/internal/process"
	"github.com/provide-io/solarsplit/pkg/autosplit"
	"github.com/provide-io/solarsplit/pkg/logging"
	"github.com/provide-io/solarsplit/pkg/timer"
)

const version = "0.1.0"

var (
	logLevel    string
	jsonLog     bool
	processName string
	moduleName  string
	tickRate    float64
	segments    int
	bossKills   bool
	badEnding   bool
	eyeComplete bool
	scanTimeout time.Duration
	rootCmd     *cobra.Command
	versionFlag bool
)

var errInterrupt = errors.New("interrupted")

// buildStamp describes the build: the commit and its time when the binary
// was built from a checkout, otherwise the executable's modification time.
func buildStamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		if stamp, ok := vcsStamp(info.Settings); ok {
			return stamp
		}
	}
	if exe, err := os.Executable(); err == nil {
		if fi, err := os.Stat(exe); err == nil {
			return fi.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return "unknown"
}

// vcsStamp formats "2006-01-02T15:04:05Z (abc1234, dirty)" from build settings.
func vcsStamp(settings []debug.BuildSetting) (string, bool) {
	var when time.Time
	var rev string
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.time":
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				when = t.UTC()
			}
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if when.IsZero() {
		return "", false
	}
	stamp := when.Format(time.RFC3339)
	if rev == "" {
		return stamp, true
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if dirty {
		rev += ", dirty"
	}
	return fmt.Sprintf("%s (%s)", stamp, rev), true
}

func init() {
	rootCmd = &cobra.Command{
		Use:           "solarsplit",
		Short:         "Autosplitter for Solar Ash",
		Long:          `Watches a running Solar Ash process and drives a speedrun timer from its memory.`,
		RunE:          runSplitter,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&processName, "process", "", "Game process name")
	rootCmd.PersistentFlags().StringVar(&moduleName, "module", "", "Game module name")
	rootCmd.Flags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Wait for the game and split automatically (default)",
		RunE:  runSplitter,
	}
	for _, cmd := range []*cobra.Command{rootCmd, runCmd} {
		cmd.Flags().Float64Var(&tickRate, "tick-rate", 0, "Memory polls per second")
		cmd.Flags().IntVar(&segments, "segments", 0, "Splits in the route; 0 never ends the run")
		cmd.Flags().BoolVar(&bossKills, "boss-kills", true, "Split on boss kills")
		cmd.Flags().BoolVar(&badEnding, "bad-ending", false, "Split on the bad ending")
		cmd.Flags().BoolVar(&eyeComplete, "eye-complete", false, "Split on eye completion")
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Attach once, resolve the memory roots and print the live values",
		RunE:  runScan,
	}
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 30*time.Second, "How long to wait for the game")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}

	rootCmd.AddCommand(runCmd, scanCmd, versionCmd)
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		printVersion()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, errInterrupt) {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("solarsplit %s\n", version)
	fmt.Printf("Built: %s\n", buildStamp())
}

// loadConfig reads the environment and applies any flags set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("json-log") {
		cfg.JSONLog = jsonLog
	}
	if flags.Changed("process") {
		cfg.ProcessName = processName
	}
	if flags.Changed("module") {
		cfg.ModuleName = moduleName
	}
	if flags.Changed("tick-rate") {
		cfg.TickRate = tickRate
	}
	if flags.Changed("boss-kills") {
		cfg.SplitOnBossKills = bossKills
	}
	if flags.Changed("bad-ending") {
		cfg.SplitOnBadEnding = badEnding
	}
	if flags.Changed("eye-complete") {
		cfg.SplitOnEyeComplete = eyeComplete
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) hclog.Logger {
	return logging.NewLogger("solarsplit", cfg.LogLevel, cfg.JSONLog, os.Stderr)
}

func runSplitter(cmd *cobra.Command, args []string) error {
	if versionFlag {
		printVersion()
		return nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	logger.Debug("🔧 Configuration loaded",
		"process", cfg.ProcessName,
		"module", cfg.ModuleName,
		"tick_rate", cfg.TickRate,
		"boss_kills", cfg.SplitOnBossKills,
		"bad_ending", cfg.SplitOnBadEnding,
		"eye_complete", cfg.SplitOnEyeComplete)

	clock := timer.NewClock(segments, nil)
	t := timer.NewLogged(timer.NewConsole(clock, os.Stdout), logger.Named("timer"))
	settings := autosplit.NewLiveSettings(cfg.Settings)
	if logging.IsTerminal(os.Stdin) {
		fmt.Println(toggleHelp)
		go readToggles(os.Stdin, settings, os.Stdout, logger.Named("keys"))
	}

	finder := process.NewFinder(cfg.RetryInterval, logger.Named("process"))
	splitter := autosplit.New(finder, t, settings, cfg.Options(), logger)

	err = splitter.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		logger.Info("🛑 Stopped")
		return errInterrupt
	}
	return err
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
	defer cancel()
	return scan(ctx, process.NewFinder(cfg.RetryInterval, logger.Named("process")), cfg, logger, os.Stdout)
}
