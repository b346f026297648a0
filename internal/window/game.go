// Package window runs the demo in an Ebiten window, optionally with the
// Dear ImGui inspector drawn on top.
package window

import (
	"fmt"
	"image/color"
	"reflect"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/fixedgate/ecs"
	"github.com/plus3/fixedgate/ecs/debugui"
	debugui_ebiten "github.com/plus3/fixedgate/ecs/debugui/ebiten"
	"github.com/plus3/fixedgate/internal/repro"
	"github.com/rs/zerolog"
)

var (
	backgroundColor = color.RGBA{38, 38, 38, 255}
	buttonColors    = map[repro.Interaction]color.RGBA{
		repro.Idle:    {64, 64, 64, 255},
		repro.Hovered: {89, 89, 89, 255},
		repro.Clicked: {89, 153, 89, 255},
	}
	stoppedColor = color.RGBA{140, 60, 60, 255}
)

// Options configures the window.
type Options struct {
	Title   string
	Width   int
	Height  int
	DebugUI bool
	Logger  zerolog.Logger
}

// Game implements ebiten.Game. Each Update samples the pointer and advances
// the scheduler by one tick of 1/TPS seconds.
type Game struct {
	App   *repro.App
	Input *debugui.ImguiInputState

	overlay *debugui_ebiten.ImguiBackend
	log     zerolog.Logger

	width, height int
}

// NewGame wraps app. With DebugUI it also creates the ImGui backend and
// spawns the inspector panels, so call it before the first tick.
func NewGame(app *repro.App, opts Options) *Game {
	g := &Game{App: app, log: opts.Logger, width: opts.Width, height: opts.Height}
	if !opts.DebugUI {
		return g
	}

	scheduler := app.Scheduler
	storage := scheduler.Storage()
	g.overlay = ecs.NewSingleton(storage, debugui_ebiten.NewImguiBackend(opts.Title, opts.Width, opts.Height)).Get()

	// the counter has a single writer, the counter system
	debugui.SpawnDebugUI(scheduler, reflect.TypeFor[repro.Counter]())
	storage.Spawn(debugui.ImguiItem{Render: statusPanel(app)})
	scheduler.Register(&debugui.ImguiSystem{}, ecs.InStage(ecs.PostUpdate))

	g.Input = ecs.GetSingleton[debugui.ImguiInputState](storage)
	return g
}

// TickDuration is the simulated time one Update advances.
func TickDuration() time.Duration {
	return time.Second / time.Duration(ebiten.TPS())
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.log.Info().Uint64("tick", g.App.Scheduler.Tick()).Msg("escape pressed, closing")
		return ebiten.Termination
	}

	x, y := ebiten.CursorPosition()
	pointer := g.App.Pointer()
	pointer.X, pointer.Y = float32(x), float32(y)
	pointer.Pressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	pointer.Captured = g.Input != nil && g.Input.WantCaptureMouse

	if g.overlay == nil {
		g.App.Scheduler.Once(TickDuration())
		return nil
	}
	g.overlay.Frame(func() {
		g.App.Scheduler.Once(TickDuration())
	})
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	status := g.App.Status()
	for _, view := range g.App.Buttons() {
		b := view.Button
		c := buttonColors[view.Interaction]
		if status.State == repro.Stop {
			c = stoppedColor
		}
		vector.DrawFilledRect(screen, b.X, b.Y, b.Width, b.Height, c, false)
		vector.StrokeRect(screen, b.X, b.Y, b.Width, b.Height, 2, color.RGBA{20, 20, 20, 255}, false)

		// The debug font is 6x16 per glyph.
		cx, cy := b.Center()
		ebitenutil.DebugPrintAt(screen, b.Label, int(cx)-len(b.Label)*3, int(cy)-8)
	}

	ebitenutil.DebugPrintAt(screen, statusLine(status), 8, 8)

	if g.overlay != nil {
		g.overlay.Overlay(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.overlay != nil {
		g.overlay.Layout(outsideWidth, outsideHeight)
	}
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.App.Resize(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

func statusLine(s repro.Status) string {
	line := fmt.Sprintf("state: %s  counter: %d  tick: %d", s.State, s.Counter, s.Tick)
	if s.HasTimer {
		line += fmt.Sprintf("\ninterval: %s  policy: %s  next: %3.0f%%", s.Interval, s.Policy, s.Progress*100)
	}
	return line
}

func statusPanel(app *repro.App) func() {
	return func() {
		if !imgui.BeginV("Fixedgate", nil, imgui.WindowFlagsNone) {
			imgui.End()
			return
		}
		s := app.Status()
		imgui.Text(fmt.Sprintf("Scenario: %s", s.Scenario))
		imgui.Text(fmt.Sprintf("State: %s", s.State))
		imgui.Text(fmt.Sprintf("Counter: %d", s.Counter))
		imgui.Text(fmt.Sprintf("Tick: %d", s.Tick))
		if s.HasTimer {
			imgui.Separator()
			imgui.Text(fmt.Sprintf("Interval: %s (%s)", s.Interval, s.Policy))
			imgui.Text(fmt.Sprintf("Accumulated: %s", s.Accumulated))
			imgui.Text(fmt.Sprintf("Fired: %d  Skipped: %d", s.Fired, s.Skipped))
		}
		imgui.End()
	}
}

// Run opens the window and blocks until it is closed.
func Run(app *repro.App, opts Options) error {
	game := NewGame(app, opts)
	if game.overlay == nil {
		ebiten.SetWindowSize(opts.Width, opts.Height)
		ebiten.SetWindowTitle(opts.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	opts.Logger.Info().
		Int("width", opts.Width).
		Int("height", opts.Height).
		Bool("debug_ui", opts.DebugUI).
		Msg("opening window")

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("run window: %w", err)
	}
	return nil
}
