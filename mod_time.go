package lightborne

import (
	"time"
)

// Time is the variable-rate frame clock.
type Time struct {
	Elapsed time.Duration
	Dt      time.Duration
}

func (t *Time) advance(dt time.Duration) {
	t.Dt = dt
	t.Elapsed += dt
}

// FixedTime accumulates frame time and hands out whole simulation ticks of
// Step length. The light simulation only ever sees Step, never frame dt.
type FixedTime struct {
	Step            time.Duration
	MaxStepsInFrame int
	Tick            uint64

	accumulator time.Duration
}

const (
	DefaultFixedHz         = 64
	defaultMaxStepsInFrame = 8
)

func NewFixedTime(hz int) *FixedTime {
	if hz <= 0 {
		hz = DefaultFixedHz
	}
	return &FixedTime{
		Step:            time.Second / time.Duration(hz),
		MaxStepsInFrame: defaultMaxStepsInFrame,
	}
}

func (ft *FixedTime) accumulate(dt time.Duration) int {
	if dt > 0 {
		ft.accumulator += dt
	}
	steps := 0
	for ft.accumulator >= ft.Step && steps < ft.MaxStepsInFrame {
		ft.accumulator -= ft.Step
		steps++
	}
	if steps == ft.MaxStepsInFrame && ft.accumulator >= ft.Step {
		// Drop the backlog rather than spiral after a long stall.
		ft.accumulator = 0
	}
	return steps
}

type TimeModule struct {
	FixedHz int
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{}, NewFixedTime(mod.FixedHz))
}
