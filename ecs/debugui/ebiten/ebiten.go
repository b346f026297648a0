// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// NewImguiBackend creates the backend and its window. The backend owns the
// Ebiten window, so callers must not set its size or title themselves.
func NewImguiBackend(title string, width, height int) ImguiBackend {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return ImguiBackend{EbitenBackend: backend}
}

// Frame runs update between BeginFrame and EndFrame so widgets submitted by
// update land in this frame.
func (b ImguiBackend) Frame(update func()) {
	b.BeginFrame()
	defer b.EndFrame()
	update()
}

// Overlay draws the ImGui frame on top of screen.
func (b ImguiBackend) Overlay(screen *ebiten.Image) {
	b.Draw(screen)
}
