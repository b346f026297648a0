package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/plus3/fixedgate/ecs"
	"github.com/plus3/fixedgate/ecs/debugui"
	"github.com/plus3/fixedgate/internal/config"
	"github.com/plus3/fixedgate/internal/repro"
	"github.com/plus3/fixedgate/internal/window"
)

const longHelp = `
A counter that increments on a fixed interval, but only while the app is in
the Go state. Clicking the "Stop state" button switches to Stop and the
counter stops.

The timer policy decides what happens to time spent in Stop:
  pause         the interval timer freezes and resumes where it left off
  free-running  the timer keeps its phase and missed increments are skipped

The timer-only scenario drops the state gate and shows the counter ticking on
after Stop.`

var exampleUsage = strings.TrimSpace(`
  fixedgate
  fixedgate --interval 500ms --policy free-running --debug-ui
  fixedgate --headless --ticks 300 --click-at 130 --log-format json
  fixedgate --config ./fixedgate.toml --watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "fixedgate",
		Short:         "Fixed-interval counter gated on an application state",
		Long:          strings.TrimSpace(longHelp),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			base := cfg
			resolved, err := config.Load(cfgFile, base, changed)
			if err != nil {
				return err
			}

			log, err := config.NewLogger(resolved, os.Stderr)
			if err != nil {
				return err
			}
			log.Info().
				Str("version", getVersion()).
				Str("config_file", cfgFile).
				Interface("config", resolved).
				Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, resolved, base, cfgFile, changed, log)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.fixedgate/config.toml)")
	cfg.BindFlags(root.Flags())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fixedgate: %v\n", err)
		os.Exit(1)
	}
}

// run wires storage, scheduler and demo, then drives them headless or in a window.
func run(ctx context.Context, cfg, base config.Config, cfgFile string, changed map[string]bool, log zerolog.Logger) error {
	registry := ecs.NewComponentRegistry()
	repro.RegisterComponents(registry)
	if cfg.DebugUI && !cfg.Headless {
		debugui.RegisterDebugUIComponents(registry)
	}
	storage := ecs.NewStorage(registry)
	scheduler := ecs.NewScheduler(storage)

	var updates <-chan repro.Settings
	if cfg.Watch {
		if cfgFile == "" || !config.FileExists(cfgFile) {
			log.Warn().Str("path", cfgFile).Msg("watch requested without a config file")
		} else {
			watcher := config.NewWatcher(cfgFile, base, changed, log)
			go watcher.Run(ctx)
			<-watcher.Ready()
			updates = watcher.Updates()
		}
	}

	app := repro.Install(scheduler, repro.Options{
		Settings:   cfg.Settings(),
		Scenario:   cfg.Scenario,
		ViewWidth:  cfg.WindowWidth,
		ViewHeight: cfg.WindowHeight,
		ClickAt:    cfg.ClickTicks(),
		Updates:    updates,
		Logger:     log,
	})

	if cfg.Headless {
		if cfg.DebugUI {
			log.Warn().Msg("debug-ui ignored in headless mode")
		}
		return runHeadless(ctx, app, cfg, log)
	}

	return window.Run(app, window.Options{
		Title:   cfg.WindowTitle,
		Width:   cfg.WindowWidth,
		Height:  cfg.WindowHeight,
		DebugUI: cfg.DebugUI,
		Logger:  log,
	})
}
