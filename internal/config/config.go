package config

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/1broseidon/lfuzz/internal/fuzz"
	"github.com/1broseidon/lfuzz/internal/target"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads and writes Go duration strings
// such as "50ms".
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string like \"50ms\"", value.Line)
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds fuzzing defaults. Command-line flags override these values.
type Config struct {
	// Count is the number of accepted key presses in a fixed-count run.
	Count uint64 `yaml:"count"`
	// SettleDelay is the wait after focusing the target before input starts.
	SettleDelay Duration `yaml:"settle_delay"`
	// DispatchInterval is the pause before each injected event.
	DispatchInterval Duration `yaml:"dispatch_interval"`
	// CodeSpaceMax is the highest keysym generated; everything above is denied.
	CodeSpaceMax uint16 `yaml:"code_space_max"`
	// Deny lists extra keysyms to never send, by name ("Escape") or number.
	Deny         []string     `yaml:"deny"`
	ClickButton  uint8        `yaml:"click_button"`
	MotionTarget target.Point `yaml:"motion_target"`
	FocusMode    string       `yaml:"focus_mode"`
	// Actions are the kinds chosen from in --until-gone/--duration runs.
	Actions  []string `yaml:"actions"`
	Seed     *uint64  `yaml:"seed,omitempty"`
	LogLevel string   `yaml:"log_level"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Count:            100,
		SettleDelay:      Duration(target.DefaultSettleDelay),
		DispatchInterval: Duration(fuzz.DefaultInterval),
		CodeSpaceMax:     fuzz.DefaultUpperBound,
		Deny:             []string{},
		ClickButton:      target.DefaultButton,
		MotionTarget:     target.DefaultMotion,
		FocusMode:        string(target.FocusInput),
		Actions:          []string{string(fuzz.ActionPress), string(fuzz.ActionClick)},
		LogLevel:         "info",
	}
}

// Validate checks value ranges and the enumerated fields.
func (c *Config) Validate() error {
	if c.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must be >= 0")
	}
	if c.DispatchInterval < 0 {
		return fmt.Errorf("dispatch_interval must be >= 0")
	}
	if c.ClickButton < 1 || c.ClickButton > 5 {
		return fmt.Errorf("click_button must be between 1 and 5, got %d", c.ClickButton)
	}
	if !inCoordinateRange(c.MotionTarget.X) || !inCoordinateRange(c.MotionTarget.Y) {
		return fmt.Errorf("motion_target must lie within %d..%d, got (%d, %d)",
			math.MinInt16, math.MaxInt16, c.MotionTarget.X, c.MotionTarget.Y)
	}
	switch target.FocusMode(c.FocusMode) {
	case target.FocusInput, target.FocusEWMH:
	default:
		return fmt.Errorf("focus_mode must be %q or %q, got %q", target.FocusInput, target.FocusEWMH, c.FocusMode)
	}
	if _, err := c.DenyCodes(); err != nil {
		return fmt.Errorf("deny: %w", err)
	}
	if len(c.Actions) == 0 {
		return fmt.Errorf("actions must list at least one action")
	}
	if _, err := c.ActionKinds(); err != nil {
		return fmt.Errorf("actions: %w", err)
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}

	denylist, err := c.Denylist()
	if err != nil {
		return err
	}
	if denylist.Full() {
		return fmt.Errorf("deny and code_space_max leave no input code to generate")
	}
	return nil
}

// X11 pointer coordinates are signed 16-bit.
func inCoordinateRange(v int) bool {
	return v >= math.MinInt16 && v <= math.MaxInt16
}

// DenyCodes parses the Deny entries.
func (c *Config) DenyCodes() ([]fuzz.Code, error) {
	codes := make([]fuzz.Code, 0, len(c.Deny))
	for _, entry := range c.Deny {
		code, err := fuzz.ParseCode(entry)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Denylist builds the run's denylist from CodeSpaceMax and Deny.
func (c *Config) Denylist() (*fuzz.Denylist, error) {
	extra, err := c.DenyCodes()
	if err != nil {
		return nil, err
	}
	return fuzz.DefaultDenylist(c.CodeSpaceMax, extra...), nil
}

func (c *Config) ActionKinds() ([]fuzz.ActionKind, error) {
	kinds := make([]fuzz.ActionKind, 0, len(c.Actions))
	for _, name := range c.Actions {
		kind, err := fuzz.ParseActionKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// LogLevelValue returns the slog level for LogLevel, defaulting to info.
func (c *Config) LogLevelValue() slog.Level {
	level, err := parseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be debug, info, warn or error, got %q", s)
	}
}

// HandleOptions maps the config onto target.Options.
func (c *Config) HandleOptions(logger *slog.Logger) target.Options {
	return target.Options{
		SettleDelay: time.Duration(c.SettleDelay),
		Button:      c.ClickButton,
		Motion:      c.MotionTarget,
		FocusMode:   target.FocusMode(c.FocusMode),
		Logger:      logger,
	}
}

// DriverOptions maps the config onto fuzz driver options. Unknown action
// names are skipped; Validate reports them.
func (c *Config) DriverOptions(logger *slog.Logger) []fuzz.Option {
	opts := []fuzz.Option{
		fuzz.WithInterval(time.Duration(c.DispatchInterval)),
		fuzz.WithSource(fuzz.NewSource(c.Seed)),
		fuzz.WithLogger(logger),
	}
	if kinds, err := c.ActionKinds(); err == nil {
		opts = append(opts, fuzz.WithActions(kinds...))
	}
	return opts
}
