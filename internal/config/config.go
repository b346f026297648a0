// Package config resolves the demo's configuration from defaults, an optional
// TOML file, FIXEDGATE_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/plus3/fixedgate/ecs/timestep"
	"github.com/plus3/fixedgate/internal/repro"
	pflag "github.com/spf13/pflag"
)

// Config holds the resolved configuration.
type Config struct {
	Interval time.Duration
	Policy   timestep.Policy
	Scenario repro.Scenario
	MaxSteps int

	Headless bool
	Ticks    int
	TickRate time.Duration
	ClickAt  []uint

	DebugUI      bool
	WindowWidth  int
	WindowHeight int
	WindowTitle  string

	LogLevel  string
	LogFormat string

	Watch bool
}

// DefaultConfig reproduces the original demo: a window, a one second interval
// and a timer that pauses while the state is Stop.
func DefaultConfig() Config {
	return Config{
		Interval:     time.Second,
		Policy:       timestep.PauseOnExit,
		Scenario:     repro.GatedTimestep,
		TickRate:     time.Second / 60,
		WindowWidth:  800,
		WindowHeight: 600,
		WindowTitle:  "fixedgate",
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("max-steps must not be negative")
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick-rate must be positive")
	}
	if c.Ticks < 0 {
		return fmt.Errorf("ticks must not be negative")
	}
	if c.Ticks > 0 && !c.Headless {
		return fmt.Errorf("ticks requires headless mode")
	}
	if c.WindowWidth < repro.ButtonWidth || c.WindowHeight < repro.ButtonHeight {
		return fmt.Errorf("window must be at least %dx%d", repro.ButtonWidth, repro.ButtonHeight)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q (want console or json)", c.LogFormat)
	}
	for _, tick := range c.ClickAt {
		if tick == 0 {
			return fmt.Errorf("click-at ticks start at 1")
		}
	}
	return nil
}

// Settings returns the timer parameters that may change while running.
func (c Config) Settings() repro.Settings {
	return repro.Settings{
		Interval: c.Interval,
		Policy:   c.Policy,
		MaxSteps: c.MaxSteps,
	}
}

// ClickTicks converts ClickAt to scheduler tick numbers.
func (c Config) ClickTicks() []uint64 {
	ticks := make([]uint64, 0, len(c.ClickAt))
	for _, t := range c.ClickAt {
		ticks = append(ticks, uint64(t))
	}
	return ticks
}

// BindFlags registers a flag for every setting, writing into c.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&c.Interval, "interval", c.Interval, "time between counter increments")
	fs.Var(textValue(&c.Policy, "policy"), "policy", "timer policy while the state is Stop: pause or free-running")
	fs.Var(textValue(&c.Scenario, "scenario"), "scenario", "counter scheduling: timestep, state-only or timer-only")
	fs.IntVar(&c.MaxSteps, "max-steps", c.MaxSteps, "cap on counter increments per tick (0 = unlimited)")

	fs.BoolVar(&c.Headless, "headless", c.Headless, "run without a window")
	fs.IntVar(&c.Ticks, "ticks", c.Ticks, "headless: simulate this many ticks and exit (0 = run in real time)")
	fs.DurationVar(&c.TickRate, "tick-rate", c.TickRate, "headless: time per tick")
	fs.UintSliceVar(&c.ClickAt, "click-at", c.ClickAt, "click the button at these tick numbers")

	fs.BoolVar(&c.DebugUI, "debug-ui", c.DebugUI, "show the Dear ImGui inspector")
	fs.IntVar(&c.WindowWidth, "width", c.WindowWidth, "window width")
	fs.IntVar(&c.WindowHeight, "height", c.WindowHeight, "window height")
	fs.StringVar(&c.WindowTitle, "title", c.WindowTitle, "window title")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "trace, debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "console or json")

	fs.BoolVar(&c.Watch, "watch", c.Watch, "reload timer settings when the config file changes")
}

type textVar interface {
	MarshalText() ([]byte, error)
	UnmarshalText([]byte) error
}

// flagText adapts a text (un)marshaler to pflag.Value.
type flagText struct {
	v   textVar
	typ string
}

func textValue(v textVar, typ string) pflag.Value {
	return flagText{v: v, typ: typ}
}

func (f flagText) String() string {
	b, err := f.v.MarshalText()
	if err != nil {
		return ""
	}
	return string(b)
}

func (f flagText) Set(s string) error { return f.v.UnmarshalText([]byte(s)) }
func (f flagText) Type() string       { return f.typ }

// configSetter applies values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) skip(flag, value string) bool {
	return value == "" || s.changed[flag]
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if s.skip(flag, value) {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if s.skip(flag, value) {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setText(flag, value string, dst textVar) error {
	if s.skip(flag, value) {
		return nil
	}
	if err := dst.UnmarshalText([]byte(value)); err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	return nil
}

func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setUints(flag string, value []uint, dst *[]uint) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = append([]uint(nil), value...)
}
