package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/plus3/fixedgate/internal/config"
	"github.com/plus3/fixedgate/internal/repro"
)

// runHeadless advances the demo without a window. With a tick count it
// simulates that many ticks of TickRate each as fast as possible; otherwise
// it ticks in real time until ctx is done.
func runHeadless(ctx context.Context, app *repro.App, cfg config.Config, log zerolog.Logger) error {
	log.Info().
		Int("ticks", cfg.Ticks).
		Dur("tick_rate", cfg.TickRate).
		Msg("running headless")

	if cfg.Ticks > 0 {
		for i := 0; i < cfg.Ticks; i++ {
			if ctx.Err() != nil {
				break
			}
			app.Scheduler.Once(cfg.TickRate)
		}
	} else {
		app.Scheduler.Run(ctx, cfg.TickRate)
	}

	status := app.Status()
	log.Info().
		Uint64("ticks", status.Tick).
		Stringer("state", status.State).
		Uint64("counter", status.Counter).
		Msg("finished")
	return nil
}
