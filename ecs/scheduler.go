package ecs

import (
	"context"
	"reflect"
	"time"

	"github.com/plus3/fixedgate/ecs/timestep"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	Ticks           uint64
	SystemCount     int
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Stage          Stage
	ExecutionCount int64
	SkippedTicks   int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemEntry struct {
	system System
	name   string
	stage  Stage
	runIf  Condition
	timer  *timestep.Accumulator

	executionCount int64
	skippedTicks   int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// SystemOption configures how a registered system is scheduled.
type SystemOption func(*systemEntry)

// InStage places the system in a stage. The default is Update.
func InStage(stage Stage) SystemOption {
	return func(e *systemEntry) { e.stage = stage }
}

// RunIf gates the system on a condition evaluated once per tick.
func RunIf(cond Condition) SystemOption {
	return func(e *systemEntry) { e.runIf = cond }
}

// Every drives the system from a fixed-interval accumulator. The accumulator
// is stepped once per tick with the tick delta and the RunIf result, and the
// system executes once per step it returns. Whether time accumulates while
// the condition is closed is the accumulator's Policy.
func Every(timer *timestep.Accumulator) SystemOption {
	return func(e *systemEntry) { e.timer = timer }
}

// Named overrides the name reported in stats.
func Named(name string) SystemOption {
	return func(e *systemEntry) { e.name = name }
}

// Scheduler manages and executes systems in order.
type Scheduler struct {
	storage *Storage
	stages  [stageCount][]*systemEntry
	states  []stateApplier
	tick    uint64
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage: storage,
	}
}

// Storage returns the storage the scheduler executes against.
func (s *Scheduler) Storage() *Storage {
	return s.storage
}

// Tick returns the number of completed ticks.
func (s *Scheduler) Tick() uint64 {
	return s.tick
}

// Register adds a system to the scheduler and initializes its Query and Singleton fields.
func (s *Scheduler) Register(system System, opts ...SystemOption) {
	s.initializeFields(system)

	entry := &systemEntry{
		system:      system,
		name:        systemName(system),
		stage:       Update,
		minDuration: time.Duration(1<<63 - 1),
	}
	for _, opt := range opts {
		opt(entry)
	}
	if entry.stage < 0 || entry.stage >= stageCount {
		panic("invalid stage for system " + entry.name)
	}

	s.stages[entry.stage] = append(s.stages[entry.stage], entry)
}

func systemName(system System) string {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	if name := systemType.Name(); name != "" {
		return name
	}
	return systemType.String()
}

// storageBinder is implemented by Query and Singleton.
type storageBinder interface {
	Init(storage *Storage)
}

func (s *Scheduler) initializeFields(system System) {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		if binder, ok := field.Addr().Interface().(storageBinder); ok {
			binder.Init(s.storage)
		}
	}
}

// Once executes one tick: every stage in order, then pending commands, then
// queued state transitions. Transitions queued between ticks are applied
// before the first stage runs.
func (s *Scheduler) Once(dt time.Duration) {
	s.applyTransitions()

	s.tick++
	frame := newUpdateFrame(s.tick, dt, s.storage)

	for stage := range s.stages {
		for _, entry := range s.stages[stage] {
			runs := entry.runs(frame)
			if runs == 0 {
				entry.skippedTicks++
				continue
			}
			for range runs {
				entry.execute(frame)
			}
		}
	}

	frame.Commands.Flush(s.storage)
	s.applyTransitions()
}

func (s *Scheduler) applyTransitions() {
	for _, st := range s.states {
		st.applyTransition()
	}
}

func (e *systemEntry) runs(frame *UpdateFrame) int {
	open := e.runIf == nil || e.runIf(frame)
	if e.timer != nil {
		return e.timer.Step(frame.Delta, open)
	}
	if open {
		return 1
	}
	return 0
}

func (e *systemEntry) execute(frame *UpdateFrame) {
	start := time.Now()
	e.system.Execute(frame)
	duration := time.Since(start)

	e.executionCount++
	e.lastDuration = duration
	e.totalDuration += duration
	if duration < e.minDuration {
		e.minDuration = duration
	}
	if duration > e.maxDuration {
		e.maxDuration = duration
	}
}

// Run executes ticks at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime)
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution, in execution order.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{Ticks: s.tick}

	for stage := range s.stages {
		for _, e := range s.stages[stage] {
			avgDuration := time.Duration(0)
			minDuration := time.Duration(0)
			if e.executionCount > 0 {
				avgDuration = e.totalDuration / time.Duration(e.executionCount)
				minDuration = e.minDuration
			}

			stats.Systems = append(stats.Systems, SystemStats{
				Name:           e.name,
				Stage:          e.stage,
				ExecutionCount: e.executionCount,
				SkippedTicks:   e.skippedTicks,
				MinDuration:    minDuration,
				MaxDuration:    e.maxDuration,
				AvgDuration:    avgDuration,
				LastDuration:   e.lastDuration,
				TotalDuration:  e.totalDuration,
			})
			stats.TotalExecutions += e.executionCount
		}
	}

	stats.SystemCount = len(stats.Systems)
	return stats
}
