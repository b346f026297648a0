package timestep_test

import (
	"testing"
	"time"

	"github.com/plus3/fixedgate/ecs/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorFiresOncePerInterval(t *testing.T) {
	for _, policy := range []timestep.Policy{timestep.PauseOnExit, timestep.FreeRunning} {
		t.Run(policy.String(), func(t *testing.T) {
			acc := timestep.New(time.Second, policy)

			total := 0
			for tick := 1; tick <= 40; tick++ {
				total += acc.Step(250*time.Millisecond, true)
				assert.Equal(t, tick/4, total, "tick %d", tick)
			}
			assert.Equal(t, uint64(10), acc.Fired())
			assert.Equal(t, time.Duration(0), acc.Accumulated())
		})
	}
}

func TestAccumulatorExactBoundary(t *testing.T) {
	acc := timestep.New(time.Second, timestep.PauseOnExit)

	assert.Equal(t, 1, acc.Step(time.Second, true))
	assert.Equal(t, 1, acc.Step(time.Second, true))
	assert.Equal(t, 1, acc.Step(time.Second, true))
	assert.Equal(t, time.Duration(0), acc.Accumulated())
}

func TestAccumulatorPreservesRemainder(t *testing.T) {
	acc := timestep.New(time.Second, timestep.PauseOnExit)

	assert.Equal(t, 1, acc.Step(1300*time.Millisecond, true))
	assert.Equal(t, 300*time.Millisecond, acc.Accumulated())

	assert.Equal(t, 0, acc.Step(600*time.Millisecond, true))
	assert.Equal(t, 1, acc.Step(100*time.Millisecond, true))
	assert.Equal(t, time.Duration(0), acc.Accumulated())
}

func TestAccumulatorCatchUp(t *testing.T) {
	t.Run("unlimited", func(t *testing.T) {
		acc := timestep.New(time.Second, timestep.PauseOnExit)
		assert.Equal(t, 3, acc.Step(3500*time.Millisecond, true))
		assert.Equal(t, 500*time.Millisecond, acc.Accumulated())
	})

	t.Run("capped", func(t *testing.T) {
		acc := timestep.New(time.Second, timestep.PauseOnExit, timestep.WithMaxSteps(2))
		assert.Equal(t, 2, acc.Step(3500*time.Millisecond, true))
		assert.Equal(t, 1500*time.Millisecond, acc.Accumulated())
		assert.Equal(t, 1, acc.Step(0, true))
		assert.Equal(t, 500*time.Millisecond, acc.Accumulated())
	})
}

func TestPauseOnExitFreezesWhileClosed(t *testing.T) {
	acc := timestep.New(time.Second, timestep.PauseOnExit)

	assert.Equal(t, 0, acc.Step(600*time.Millisecond, true))

	for range 10 {
		assert.Equal(t, 0, acc.Step(time.Second, false))
	}
	assert.Equal(t, 600*time.Millisecond, acc.Accumulated(), "accumulated time must be frozen, not reset")
	assert.Equal(t, uint64(0), acc.Skipped())

	// resumes where it left off
	assert.Equal(t, 0, acc.Step(300*time.Millisecond, true))
	assert.Equal(t, 1, acc.Step(100*time.Millisecond, true))
}

func TestFreeRunningAdvancesWhileClosed(t *testing.T) {
	acc := timestep.New(time.Second, timestep.FreeRunning)

	assert.Equal(t, 0, acc.Step(600*time.Millisecond, true))

	// 2.7s pass while closed: three boundaries are skipped, 0.3s of phase carries
	assert.Equal(t, 0, acc.Step(900*time.Millisecond, false))
	assert.Equal(t, 0, acc.Step(900*time.Millisecond, false))
	assert.Equal(t, 0, acc.Step(900*time.Millisecond, false))
	assert.Equal(t, uint64(3), acc.Skipped())
	assert.Equal(t, uint64(0), acc.Fired())
	assert.Equal(t, 300*time.Millisecond, acc.Accumulated())

	// next fire lands on the original phase, not a full interval after reopening
	assert.Equal(t, 0, acc.Step(600*time.Millisecond, true))
	assert.Equal(t, 1, acc.Step(100*time.Millisecond, true))
	assert.Equal(t, uint64(1), acc.Fired())
}

func TestFreeRunningLongStallWhileClosed(t *testing.T) {
	acc := timestep.New(time.Millisecond, timestep.FreeRunning)

	acc.Step(400*time.Microsecond, true)
	assert.Equal(t, 0, acc.Step(8*time.Hour, false))
	assert.Equal(t, uint64(8*time.Hour/time.Millisecond), acc.Skipped())
	assert.Equal(t, 400*time.Microsecond, acc.Accumulated())
}

func TestPoliciesDivergeOnReentry(t *testing.T) {
	pause := timestep.New(time.Second, timestep.PauseOnExit)
	free := timestep.New(time.Second, timestep.FreeRunning)

	script := []struct {
		dt   time.Duration
		open bool
	}{
		{400 * time.Millisecond, true},
		{500 * time.Millisecond, false},
		{400 * time.Millisecond, true},
		{400 * time.Millisecond, true},
	}

	var pauseFires, freeFires []int
	for _, s := range script {
		pauseFires = append(pauseFires, pause.Step(s.dt, s.open))
		freeFires = append(freeFires, free.Step(s.dt, s.open))
	}

	assert.Equal(t, []int{0, 0, 0, 1}, pauseFires)
	assert.Equal(t, []int{0, 0, 1, 0}, freeFires)
}

func TestReconfigureKeepsAccumulatedTime(t *testing.T) {
	acc := timestep.New(time.Second, timestep.PauseOnExit)
	acc.Step(700*time.Millisecond, true)

	acc.Reconfigure(500*time.Millisecond, timestep.FreeRunning, 1)
	assert.Equal(t, 500*time.Millisecond, acc.Interval())
	assert.Equal(t, timestep.FreeRunning, acc.Policy())
	assert.Equal(t, 1, acc.MaxSteps())
	assert.Equal(t, 700*time.Millisecond, acc.Accumulated())

	assert.Equal(t, 1, acc.Step(0, true))
	assert.Equal(t, 200*time.Millisecond, acc.Accumulated())

	acc.Reset()
	assert.Equal(t, time.Duration(0), acc.Accumulated())
	assert.Equal(t, uint64(0), acc.Fired())
}

func TestNegativeDeltaIsIgnored(t *testing.T) {
	acc := timestep.New(time.Second, timestep.FreeRunning)
	acc.Step(500*time.Millisecond, true)
	acc.Step(-time.Hour, true)
	assert.Equal(t, 500*time.Millisecond, acc.Accumulated())
}

func TestProgress(t *testing.T) {
	acc := timestep.New(2*time.Second, timestep.PauseOnExit)
	acc.Step(500*time.Millisecond, true)
	assert.InDelta(t, 0.25, acc.Progress(), 1e-9)
}

func TestNewPanicsOnNonPositiveInterval(t *testing.T) {
	assert.Panics(t, func() { timestep.New(0, timestep.PauseOnExit) })
	assert.Panics(t, func() { timestep.New(-time.Second, timestep.FreeRunning) })
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want timestep.Policy
	}{
		{"pause", timestep.PauseOnExit},
		{"Pause-On-Exit", timestep.PauseOnExit},
		{"free-running", timestep.FreeRunning},
		{" free ", timestep.FreeRunning},
	}
	for _, tt := range tests {
		got, err := timestep.ParsePolicy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := timestep.ParsePolicy("sometimes")
	assert.Error(t, err)

	var p timestep.Policy
	require.NoError(t, p.UnmarshalText([]byte("free-running")))
	assert.Equal(t, timestep.FreeRunning, p)

	text, err := timestep.FreeRunning.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "free-running", string(text))

	_, err = timestep.Policy(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Policy(9)", timestep.Policy(9).String())
}
