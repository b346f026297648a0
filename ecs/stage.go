package ecs

// Stage groups systems within a tick. Stages run in declaration order.
type Stage int

const (
	// PreUpdate runs first, for input sampling and event handling.
	PreUpdate Stage = iota
	// Update runs the main per-tick logic.
	Update
	// PostUpdate runs last, for cleanup and debug output.
	PostUpdate

	stageCount
)

func (s Stage) String() string {
	switch s {
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	default:
		return "Unknown"
	}
}
