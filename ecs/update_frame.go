package ecs

import "time"

// UpdateFrame is passed to every system executed during one scheduler tick.
type UpdateFrame struct {
	// Tick counts scheduler ticks starting at 1.
	Tick uint64
	// Delta is the time elapsed since the previous tick.
	Delta time.Duration
	// DeltaTime is Delta in seconds.
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(tick uint64, dt time.Duration, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		Tick:      tick,
		Delta:     dt,
		DeltaTime: dt.Seconds(),
		Commands:  newCommands(),
		Storage:   storage,
	}
}
