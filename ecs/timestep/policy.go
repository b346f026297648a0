package timestep

import (
	"fmt"
	"strings"
)

// Policy decides whether an Accumulator keeps counting time while its gate is closed.
type Policy uint8

const (
	// PauseOnExit only accumulates time on ticks where the gate is open.
	// Time accumulated before the gate closed is kept and counting resumes
	// from there when it reopens.
	PauseOnExit Policy = iota

	// FreeRunning accumulates time on every tick. The gate only decides
	// whether a due step fires or is skipped.
	FreeRunning
)

var policyNames = map[Policy]string{
	PauseOnExit: "pause",
	FreeRunning: "free-running",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", uint8(p))
}

// ParsePolicy accepts the names produced by Policy.String, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pause", "pause-on-exit":
		return PauseOnExit, nil
	case "free-running", "free", "freerunning":
		return FreeRunning, nil
	}
	return 0, fmt.Errorf("unknown timestep policy %q (want pause or free-running)", s)
}

func (p Policy) MarshalText() ([]byte, error) {
	if _, ok := policyNames[p]; !ok {
		return nil, fmt.Errorf("unknown timestep policy %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
