package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/1broseidon/lfuzz/internal/config"
	"github.com/1broseidon/lfuzz/internal/fuzz"
	"github.com/1broseidon/lfuzz/internal/picker"
	"github.com/1broseidon/lfuzz/internal/platform"
	"github.com/1broseidon/lfuzz/internal/report"
	"github.com/1broseidon/lfuzz/internal/target"
	"github.com/1broseidon/lfuzz/internal/tui"
)

type runOptions struct {
	title      string
	count      uint64
	countSet   bool
	configPath string
	seed       *uint64
	untilGone  bool
	duration   time.Duration
	jsonOutput bool
	pick       bool
	verbose    bool
	noProgress bool
}

// predicateMode reports whether the run stops on a condition rather than
// after a fixed number of presses.
func (o runOptions) predicateMode() bool {
	return o.untilGone || o.duration > 0
}

func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lfuzz run --target <title> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Focus the window with the exact title and press random keys in it.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -t, --target TITLE   Exact window title (required unless --pick)")
	fmt.Fprintln(w, "  -c, --count N        Number of key presses (default: config count, 100)")
	fmt.Fprintln(w, "      --config PATH    Config file (default: ~/.config/lfuzz/config.yaml)")
	fmt.Fprintln(w, "      --seed N         Seed for a reproducible input sequence")
	fmt.Fprintln(w, "      --until-gone     Send mixed actions until the window disappears")
	fmt.Fprintln(w, "      --duration D     Send mixed actions for D (e.g. 30s)")
	fmt.Fprintln(w, "      --pick           Choose the target window interactively")
	fmt.Fprintln(w, "      --json           Print the report as JSON")
	fmt.Fprintln(w, "      --no-progress    Do not show the live progress view")
	fmt.Fprintln(w, "  -v, --verbose        Log every dispatched event")
}

func parseRunOptions(args []string, stderr io.Writer) (runOptions, error) {
	var opts runOptions
	var seed string

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printRunUsage(stderr) }
	fs.StringVar(&opts.title, "target", "", "exact window title")
	fs.StringVar(&opts.title, "t", "", "exact window title")
	fs.Uint64Var(&opts.count, "count", 0, "number of key presses")
	fs.Uint64Var(&opts.count, "c", 0, "number of key presses")
	fs.StringVar(&opts.configPath, "config", "", "config file path")
	fs.StringVar(&seed, "seed", "", "random seed")
	fs.BoolVar(&opts.untilGone, "until-gone", false, "run until the window disappears")
	fs.DurationVar(&opts.duration, "duration", 0, "run for a fixed time")
	fs.BoolVar(&opts.pick, "pick", false, "choose the window interactively")
	fs.BoolVar(&opts.jsonOutput, "json", false, "print JSON")
	fs.BoolVar(&opts.noProgress, "no-progress", false, "hide the progress view")
	fs.BoolVar(&opts.verbose, "verbose", false, "debug logging")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() != 0 {
		return opts, fmt.Errorf("run takes no positional arguments, got %q", fs.Args())
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "count" || f.Name == "c" {
			opts.countSet = true
		}
	})
	if opts.countSet && opts.predicateMode() {
		return opts, fmt.Errorf("--count cannot be combined with --until-gone or --duration")
	}
	if opts.duration < 0 {
		return opts, fmt.Errorf("--duration must be positive")
	}
	if seed != "" {
		v, err := strconv.ParseUint(seed, 0, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid --seed %q: %w", seed, err)
		}
		opts.seed = &v
	}
	return opts, nil
}

func runRun(args []string) int {
	opts, err := parseRunOptions(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.seed != nil {
		cfg.Seed = opts.seed
	}
	if opts.countSet {
		cfg.Count = opts.count
	}
	logger := newLogger(cfg, opts.verbose)

	title, err := chooseTitle(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	h, err := target.Attach(platform.Open, title, cfg.HandleOptions(logger))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer h.Close()

	deny, err := cfg.Denylist()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("attached", "title", title, "window", uint32(h.Window()), "denied", deny.Len())
	h.Activate()

	driverOpts := cfg.DriverOptions(logger)
	var view *tui.Progress
	if !opts.noProgress && !opts.verbose && report.IsTerminal(os.Stderr) {
		total := cfg.Count
		if opts.predicateMode() {
			total = 0
		}
		view = tui.Start(os.Stderr, title, total)
		driverOpts = append(driverOpts, fuzz.WithObserver(view.Observe))
	}

	driver := fuzz.NewDriver(h, deny, driverOpts...)
	summary, runErr := execute(ctx, driver, h, opts, cfg)
	if view != nil {
		if err := view.Stop(); err != nil {
			logger.Warn("progress view failed", "error", err)
		}
	}

	if opts.jsonOutput {
		err = report.WriteJSON(os.Stdout, summary)
	} else {
		err = report.WriteSummary(os.Stdout, summary, report.IsTerminal(os.Stdout))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode(runErr, logger)
}

func execute(ctx context.Context, driver *fuzz.Driver, h *target.Handle, opts runOptions, cfg *config.Config) (report.Summary, error) {
	if !opts.predicateMode() {
		st, err := driver.Run(ctx, cfg.Count)
		return report.FromStatistics(h.Title(), h.Window(), st), err
	}

	var deadline time.Time
	if opts.duration > 0 {
		deadline = time.Now().Add(opts.duration)
	}
	actions, err := driver.RunUntil(ctx, func() bool {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return true
		}
		return opts.untilGone && !h.Alive()
	})
	return report.FromActions(h.Title(), h.Window(), actions), err
}

func exitCode(err error, logger *slog.Logger) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		logger.Warn("run interrupted, report is partial")
		return 130
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}

// chooseTitle returns the --target title, or asks the user to pick one when
// --pick is set or no title was given on an interactive terminal.
func chooseTitle(opts runOptions) (string, error) {
	interactive := report.IsTerminal(os.Stdin) && report.IsTerminal(os.Stdout)
	if opts.title != "" && !opts.pick {
		return opts.title, nil
	}
	if !interactive {
		return "", fmt.Errorf("--target is required when not running on a terminal")
	}

	b, err := target.Connect(platform.Open)
	if err != nil {
		return "", err
	}
	windows := target.List(b, b.RootWindow())
	b.Close()

	return picker.Choose(windows)
}
