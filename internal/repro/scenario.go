package repro

import (
	"fmt"
	"strings"
	"time"

	"github.com/plus3/fixedgate/ecs/timestep"
)

// Scenario selects how the counter action is scheduled.
type Scenario uint8

const (
	// GatedTimestep runs the counter on a fixed interval while the state is Go.
	// Whether the interval keeps counting during Stop is the timer Policy.
	GatedTimestep Scenario = iota
	// StateOnly runs the counter on every tick while the state is Go.
	StateOnly
	// TimerOnly runs the counter on a fixed interval and ignores the state,
	// so it keeps firing after the button is clicked.
	TimerOnly
)

var scenarioNames = map[Scenario]string{
	GatedTimestep: "timestep",
	StateOnly:     "state-only",
	TimerOnly:     "timer-only",
}

func (s Scenario) String() string {
	if name, ok := scenarioNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scenario(%d)", uint8(s))
}

// ParseScenario accepts the names produced by Scenario.String.
func ParseScenario(s string) (Scenario, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for scenario, name := range scenarioNames {
		if name == want {
			return scenario, nil
		}
	}
	return 0, fmt.Errorf("unknown scenario %q (want timestep, state-only or timer-only)", s)
}

func (s Scenario) MarshalText() ([]byte, error) {
	if _, ok := scenarioNames[s]; !ok {
		return nil, fmt.Errorf("unknown scenario %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Scenario) UnmarshalText(text []byte) error {
	parsed, err := ParseScenario(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UsesTimer reports whether the scenario drives the counter from an accumulator.
func (s Scenario) UsesTimer() bool {
	return s != StateOnly
}

// Settings are the timer parameters that can change while running.
type Settings struct {
	Interval time.Duration
	Policy   timestep.Policy
	MaxSteps int
}
