package debugui

import (
	"github.com/plus3/fixedgate/ecs"
)

// EntityBrowser lists live entities and tracks the selected one.
type EntityBrowser struct {
	cache              *EntityBrowserCache
	selectedEntityId   ecs.EntityId
	filterText         string
	maxEntitiesPerPage int
	currentPage        int
}

// ComponentInspector shows and edits the components of one entity.
// Components marked read-only are displayed but never written.
type ComponentInspector struct {
	selectedEntityId ecs.EntityId
	layouts          *ReflectionCache
}

// PerformanceStats plots frame times and per-system timings.
type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}
