package repro

import (
	"fmt"

	"github.com/plus3/fixedgate/ecs"
)

// AppState is the process-wide flag that decides whether the counter may fire.
type AppState uint8

const (
	Go AppState = iota
	Stop
)

func (s AppState) String() string {
	switch s {
	case Go:
		return "Go"
	case Stop:
		return "Stop"
	default:
		return fmt.Sprintf("AppState(%d)", uint8(s))
	}
}

// Counter stores the last generated id. Increment wraps to 0 past the
// maximum value.
type Counter struct {
	Value uint64
}

// Increment bumps the counter and returns the new value.
func (c *Counter) Increment() uint64 {
	c.Value++
	return c.Value
}

// Interaction is the pointer state of a button during the current tick.
type Interaction uint8

const (
	Idle Interaction = iota
	Hovered
	Clicked
)

func (i Interaction) String() string {
	switch i {
	case Idle:
		return "Idle"
	case Hovered:
		return "Hovered"
	case Clicked:
		return "Clicked"
	default:
		return fmt.Sprintf("Interaction(%d)", uint8(i))
	}
}

// Button is a rectangular clickable widget in screen coordinates.
type Button struct {
	Label         string
	X, Y          float32
	Width, Height float32
}

// Contains reports whether the point lies inside the button, edges included.
func (b Button) Contains(x, y float32) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

// Center returns the middle of the button.
func (b Button) Center() (float32, float32) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

const (
	ButtonWidth  = 150
	ButtonHeight = 65
	ButtonLabel  = "Stop state"
)

// CenteredButton returns the stop button centered in a view of the given size.
func CenteredButton(viewWidth, viewHeight int) Button {
	return Button{
		Label:  ButtonLabel,
		X:      (float32(viewWidth) - ButtonWidth) / 2,
		Y:      (float32(viewHeight) - ButtonHeight) / 2,
		Width:  ButtonWidth,
		Height: ButtonHeight,
	}
}

// InteractionEvent records a button whose interaction changed this tick.
type InteractionEvent struct {
	Button ecs.EntityId
	Kind   Interaction
}

// Interactions is the per-tick event buffer, cleared at the end of every tick.
type Interactions struct {
	Events []InteractionEvent
}

func (i *Interactions) Push(button ecs.EntityId, kind Interaction) {
	i.Events = append(i.Events, InteractionEvent{Button: button, Kind: kind})
}

// Pointer is the pointer sample for the current tick. Captured is set when an
// overlay UI owns the pointer and widgets should ignore it.
type Pointer struct {
	X, Y     float32
	Pressed  bool
	Captured bool
}

// ResolveInteraction maps a pointer sample onto a button.
func ResolveInteraction(b Button, p Pointer) Interaction {
	if p.Captured || !b.Contains(p.X, p.Y) {
		return Idle
	}
	if p.Pressed {
		return Clicked
	}
	return Hovered
}

// RegisterComponents registers every component type the demo spawns.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Counter](registry)
	ecs.RegisterComponent[Button](registry)
	ecs.RegisterComponent[Interaction](registry)
}
