package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const envPrefix = "FIXEDGATE_"

// ApplyEnvConfig applies FIXEDGATE_* environment variables.
// They override file config but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setDuration("interval", env("INTERVAL"), &cfg.Interval); err != nil {
		return err
	}
	if err := s.setDuration("tick-rate", env("TICK_RATE"), &cfg.TickRate); err != nil {
		return err
	}
	if err := s.setText("policy", env("POLICY"), &cfg.Policy); err != nil {
		return err
	}
	if err := s.setText("scenario", env("SCENARIO"), &cfg.Scenario); err != nil {
		return err
	}
	if err := setIntFromString(s, "max-steps", env("MAX_STEPS"), &cfg.MaxSteps); err != nil {
		return err
	}
	if err := setIntFromString(s, "ticks", env("TICKS"), &cfg.Ticks); err != nil {
		return err
	}

	setBoolFromString(s, "headless", env("HEADLESS"), &cfg.Headless)
	setBoolFromString(s, "debug-ui", env("DEBUG_UI"), &cfg.DebugUI)
	setBoolFromString(s, "watch", env("WATCH"), &cfg.Watch)

	if v := env("CLICK_AT"); !s.skip("click-at", v) {
		var ticks []uint
		for _, field := range strings.Split(v, ",") {
			n, err := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
			if err != nil {
				return fmt.Errorf("parse click-at: %w", err)
			}
			ticks = append(ticks, uint(n))
		}
		cfg.ClickAt = ticks
	}

	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", env("LOG_FORMAT"), &cfg.LogFormat)
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

func setIntFromString(s *configSetter, flag, value string, dst *int) error {
	if s.skip(flag, value) {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func setBoolFromString(s *configSetter, flag, value string, dst *bool) {
	if s.skip(flag, value) {
		return
	}
	*dst = value == "true" || value == "1"
}
