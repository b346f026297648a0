package debugui

import (
	"reflect"

	"github.com/plus3/fixedgate/ecs"
)

// SpawnDebugUI creates the input state singleton and one ImguiItem per panel.
// Each panel renders in its own window. Components of the readOnly types are
// never written by the inspector.
func SpawnDebugUI(scheduler *ecs.Scheduler, readOnly ...reflect.Type) {
	storage := scheduler.Storage()
	ecs.NewSingleton(storage, ImguiInputState{})

	browser := NewEntityBrowser(100)
	inspector := NewComponentInspector(readOnly...)
	perf := NewPerformanceStats(120)
	timer := NewFrameTimer()

	storage.Spawn(ImguiItem{Render: func() { browser.Render(storage) }})
	storage.Spawn(ImguiItem{Render: func() { inspector.Render(storage, browser.SelectedEntity()) }})
	storage.Spawn(ImguiItem{Render: func() { perf.Render(scheduler, timer.GetDeltaTime()) }})
}

// RegisterDebugUIComponents registers the component types SpawnDebugUI spawns.
func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
}
