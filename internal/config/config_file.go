package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations and enums to make TOML friendly.
type FileConfig struct {
	Interval string `toml:"interval"`
	Policy   string `toml:"policy"`
	Scenario string `toml:"scenario"`
	MaxSteps *int   `toml:"max_steps"`

	Headless *bool  `toml:"headless"`
	Ticks    *int   `toml:"ticks"`
	TickRate string `toml:"tick_rate"`
	ClickAt  []uint `toml:"click_at"`

	DebugUI      *bool  `toml:"debug_ui"`
	WindowWidth  *int   `toml:"window_width"`
	WindowHeight *int   `toml:"window_height"`
	WindowTitle  string `toml:"window_title"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	Watch *bool `toml:"watch"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("decode %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.fixedgate/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".fixedgate", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setDuration("interval", fc.Interval, &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("tick-rate", fc.TickRate, &cfg.TickRate); err != nil {
		return err
	}
	if err := s.setText("policy", fc.Policy, &cfg.Policy); err != nil {
		return err
	}
	if err := s.setText("scenario", fc.Scenario, &cfg.Scenario); err != nil {
		return err
	}

	s.setInt("max-steps", fc.MaxSteps, &cfg.MaxSteps)
	s.setInt("ticks", fc.Ticks, &cfg.Ticks)
	s.setInt("width", fc.WindowWidth, &cfg.WindowWidth)
	s.setInt("height", fc.WindowHeight, &cfg.WindowHeight)

	s.setBool("headless", fc.Headless, &cfg.Headless)
	s.setBool("debug-ui", fc.DebugUI, &cfg.DebugUI)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	s.setUints("click-at", fc.ClickAt, &cfg.ClickAt)

	s.setString("title", fc.WindowTitle, &cfg.WindowTitle)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// Load layers the config file at path (if it exists) and the environment over
// cfg, then validates. Flags listed in changed keep their value.
func Load(path string, cfg Config, changed map[string]bool) (Config, error) {
	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
			return cfg, err
		}
	}

	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
