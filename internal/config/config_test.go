package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/fixedgate/ecs/timestep"
	"github.com/plus3/fixedgate/internal/repro"
	"github.com/rs/zerolog"
	pflag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, timestep.PauseOnExit, cfg.Policy)
	assert.Equal(t, repro.GatedTimestep, cfg.Scenario)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero interval":      func(c *Config) { c.Interval = 0 },
		"negative max steps": func(c *Config) { c.MaxSteps = -1 },
		"zero tick rate":     func(c *Config) { c.TickRate = 0 },
		"ticks without headless": func(c *Config) {
			c.Ticks = 10
		},
		"tiny window":    func(c *Config) { c.WindowWidth = 10 },
		"bad log level":  func(c *Config) { c.LogLevel = "loud" },
		"bad log format": func(c *Config) { c.LogFormat = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
interval = "250ms"
policy = "free-running"
scenario = "timer-only"
max_steps = 3
headless = true
ticks = 40
click_at = [2, 5]
log_level = "debug"
`)
	cfg, err := Load(path, DefaultConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, timestep.FreeRunning, cfg.Policy)
	assert.Equal(t, repro.TimerOnly, cfg.Scenario)
	assert.Equal(t, 3, cfg.MaxSteps)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 40, cfg.Ticks)
	assert.Equal(t, []uint64{2, 5}, cfg.ClickTicks())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"), DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Interval, cfg.Interval)
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"duration": `interval = "soon"`,
		"policy":   `policy = "sometimes"`,
		"scenario": `scenario = "chaos"`,
		"syntax":   `interval = `,
		"invalid":  `interval = "-1s"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body), DefaultConfig(), nil)
			assert.Error(t, err)
		})
	}
}

func TestPrecedence(t *testing.T) {
	path := writeConfig(t, `
interval = "2s"
policy = "free-running"
max_steps = 4
`)
	t.Setenv("FIXEDGATE_INTERVAL", "3s")
	t.Setenv("FIXEDGATE_MAX_STEPS", "7")

	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--max-steps=9"}))

	changed := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfg, err := Load(path, cfg, changed)
	require.NoError(t, err)

	// env beats file
	assert.Equal(t, 3*time.Second, cfg.Interval)
	// file beats default
	assert.Equal(t, timestep.FreeRunning, cfg.Policy)
	// flag beats everything
	assert.Equal(t, 9, cfg.MaxSteps)
}

func TestEnvConfig(t *testing.T) {
	t.Setenv("FIXEDGATE_POLICY", "free")
	t.Setenv("FIXEDGATE_SCENARIO", "state-only")
	t.Setenv("FIXEDGATE_HEADLESS", "1")
	t.Setenv("FIXEDGATE_TICKS", "12")
	t.Setenv("FIXEDGATE_TICK_RATE", "10ms")
	t.Setenv("FIXEDGATE_CLICK_AT", "3, 8")
	t.Setenv("FIXEDGATE_LOG_FORMAT", "json")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnvConfig(&cfg, nil))

	assert.Equal(t, timestep.FreeRunning, cfg.Policy)
	assert.Equal(t, repro.StateOnly, cfg.Scenario)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 12, cfg.Ticks)
	assert.Equal(t, 10*time.Millisecond, cfg.TickRate)
	assert.Equal(t, []uint{3, 8}, cfg.ClickAt)
	assert.Equal(t, "json", cfg.LogFormat)

	t.Setenv("FIXEDGATE_TICKS", "many")
	assert.Error(t, ApplyEnvConfig(&cfg, nil))
}

func TestFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)

	require.NoError(t, fs.Parse([]string{
		"--interval=500ms", "--policy=free-running", "--scenario=timer-only",
		"--headless", "--ticks=30", "--click-at=1,4",
	}))
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.Equal(t, timestep.FreeRunning, cfg.Policy)
	assert.Equal(t, repro.TimerOnly, cfg.Scenario)
	assert.Equal(t, []uint64{1, 4}, cfg.ClickTicks())

	assert.Error(t, fs.Parse([]string{"--policy=never"}))
}

func TestSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSteps = 2
	assert.Equal(t, repro.Settings{
		Interval: time.Second,
		Policy:   timestep.PauseOnExit,
		MaxSteps: 2,
	}, cfg.Settings())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	log, err := NewLogger(cfg, &buf)
	require.NoError(t, err)
	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
	assert.Contains(t, entry, "time")

	buf.Reset()
	cfg.LogFormat = "console"
	log, err = NewLogger(cfg, &buf)
	require.NoError(t, err)
	log.Warn().Msg("plain")
	assert.Contains(t, buf.String(), "plain")

	cfg.LogLevel = "loud"
	_, err = NewLogger(cfg, &buf)
	assert.Error(t, err)
}

func TestWatcherPublishesReload(t *testing.T) {
	path := writeConfig(t, `interval = "1s"`)
	base := DefaultConfig()

	w := NewWatcher(path, base, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	<-w.Ready()

	require.NoError(t, os.WriteFile(path, []byte("interval = \"250ms\"\npolicy = \"free-running\"\n"), 0o644))

	select {
	case s := <-w.Updates():
		assert.Equal(t, 250*time.Millisecond, s.Interval)
		assert.Equal(t, timestep.FreeRunning, s.Policy)
	case <-time.After(5 * time.Second):
		t.Fatal("no update received")
	}

	cancel()
	<-done
	_, ok := <-w.Updates()
	assert.False(t, ok)
}

func TestWatcherIgnoresInvalidConfig(t *testing.T) {
	path := writeConfig(t, `interval = "1s"`)
	w := NewWatcher(path, DefaultConfig(), nil, zerolog.Nop())

	require.NoError(t, os.WriteFile(path, []byte(`policy = "never"`), 0o644))
	w.reload()

	select {
	case s := <-w.Updates():
		t.Fatalf("unexpected update %+v", s)
	default:
	}
}

func TestWatcherKeepsNewest(t *testing.T) {
	w := NewWatcher("unused.toml", DefaultConfig(), nil, zerolog.Nop())
	w.publish(repro.Settings{Interval: time.Second})
	w.publish(repro.Settings{Interval: 2 * time.Second})

	s := <-w.Updates()
	assert.Equal(t, 2*time.Second, s.Interval)
}
