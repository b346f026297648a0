package repro

import (
	"time"

	"github.com/plus3/fixedgate/ecs"
	"github.com/plus3/fixedgate/ecs/timestep"
	"github.com/rs/zerolog"
)

// Options configures Install.
type Options struct {
	Settings
	Scenario Scenario

	// ViewWidth and ViewHeight position the button in the middle of the view.
	ViewWidth  int
	ViewHeight int

	// ClickAt lists ticks on which a scripted click lands on the button.
	ClickAt []uint64

	// Updates delivers live timer settings. Nil disables reconfiguration.
	Updates <-chan Settings

	Logger zerolog.Logger
}

// App holds handles to the entities and scheduling state created by Install.
type App struct {
	Scheduler *ecs.Scheduler
	Scenario  Scenario
	State     *ecs.State[AppState]
	// Timer is nil for StateOnly.
	Timer   *timestep.Accumulator
	Counter ecs.EntityId
	Button  ecs.EntityId
}

// Install spawns the counter and the button and registers every system on the
// scheduler. Components must already be registered with RegisterComponents.
func Install(scheduler *ecs.Scheduler, opts Options) *App {
	storage := scheduler.Storage()
	log := opts.Logger

	ecs.NewSingleton(storage, Pointer{X: -1, Y: -1})
	ecs.NewSingleton(storage, Interactions{})

	app := &App{
		Scheduler: scheduler,
		Scenario:  opts.Scenario,
		State:     ecs.AddState(scheduler, Go),
	}
	app.State.OnTransition(func(from, to AppState) {
		log.Info().Stringer("from", from).Stringer("to", to).Uint64("tick", scheduler.Tick()).Msg("state changed")
	})

	log.Info().Msg("creating counter")
	app.Counter = storage.Spawn(Counter{})

	log.Info().Msg("creating button")
	app.Button = storage.Spawn(CenteredButton(opts.ViewWidth, opts.ViewHeight), Idle)

	if opts.Scenario.UsesTimer() {
		app.Timer = timestep.New(opts.Interval, opts.Policy, timestep.WithMaxSteps(opts.MaxSteps))
	}

	if len(opts.ClickAt) > 0 {
		at := make(map[uint64]bool, len(opts.ClickAt))
		for _, tick := range opts.ClickAt {
			at[tick] = true
		}
		scheduler.Register(&ClickScript{At: at}, ecs.InStage(ecs.PreUpdate))
	}
	if opts.Updates != nil && app.Timer != nil {
		scheduler.Register(&ReconfigureSystem{Updates: opts.Updates, Timer: app.Timer, Log: log},
			ecs.InStage(ecs.PreUpdate))
	}
	scheduler.Register(&PointerSystem{}, ecs.InStage(ecs.PreUpdate))
	scheduler.Register(&ButtonSystem{Button: app.Button, Log: log},
		ecs.InStage(ecs.PreUpdate),
		ecs.RunIf(ecs.InState(Go)),
	)

	counter := &CounterSystem{Log: log}
	switch opts.Scenario {
	case StateOnly:
		scheduler.Register(counter, ecs.RunIf(ecs.InState(Go)))
	case TimerOnly:
		scheduler.Register(counter, ecs.Every(app.Timer))
	default:
		scheduler.Register(counter, ecs.RunIf(ecs.InState(Go)), ecs.Every(app.Timer))
	}

	scheduler.Register(&ClearInteractionsSystem{}, ecs.InStage(ecs.PostUpdate))

	log.Info().
		Stringer("scenario", opts.Scenario).
		Dur("interval", opts.Interval).
		Stringer("policy", opts.Policy).
		Msg("systems registered")
	return app
}

// Status is a read-only view of the demo for display.
type Status struct {
	Tick        uint64
	State       AppState
	Counter     uint64
	Scenario    Scenario
	HasTimer    bool
	Interval    time.Duration
	Policy      timestep.Policy
	Accumulated time.Duration
	Progress    float64
	Fired       uint64
	Skipped     uint64
}

func (a *App) Status() Status {
	status := Status{
		Tick:     a.Scheduler.Tick(),
		State:    a.State.Current(),
		Scenario: a.Scenario,
	}
	if c := ecs.ReadComponent[Counter](a.Scheduler.Storage(), a.Counter); c != nil {
		status.Counter = c.Value
	}
	if a.Timer != nil {
		status.HasTimer = true
		status.Interval = a.Timer.Interval()
		status.Policy = a.Timer.Policy()
		status.Accumulated = a.Timer.Accumulated()
		status.Progress = a.Timer.Progress()
		status.Fired = a.Timer.Fired()
		status.Skipped = a.Timer.Skipped()
	}
	return status
}

// ButtonView pairs a button with its current interaction for rendering.
type ButtonView struct {
	Button      Button
	Interaction Interaction
}

// Buttons returns every button and its interaction.
func (a *App) Buttons() []ButtonView {
	q := ecs.NewQuery[struct {
		*Button
		*Interaction
	}](a.Scheduler.Storage())

	var views []ButtonView
	for item := range q.Values() {
		views = append(views, ButtonView{Button: *item.Button, Interaction: *item.Interaction})
	}
	return views
}

// Pointer returns the pointer sample the next tick will read.
func (a *App) Pointer() *Pointer {
	return ecs.GetSingleton[Pointer](a.Scheduler.Storage())
}

// Resize re-centers the button in a view of the given size. The button keeps
// its interaction, so a hover survives the move until the next pointer sample.
func (a *App) Resize(viewWidth, viewHeight int) {
	b := ecs.ReadComponent[Button](a.Scheduler.Storage(), a.Button)
	if b == nil {
		return
	}
	centered := CenteredButton(viewWidth, viewHeight)
	b.X, b.Y = centered.X, centered.Y
}
