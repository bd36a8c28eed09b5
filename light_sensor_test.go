package lightborne

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sensorStep = 10 * time.Millisecond

// runSensor feeds ticks of the same hit state and returns how many of them
// triggered.
func runSensor(s *LightSensor, hit bool, ticks int) int {
	n := 0
	for i := 0; i < ticks; i++ {
		if s.Update(hit, sensorStep) {
			n++
		}
	}
	return n
}

func TestLightSensor_DefaultActivation(t *testing.T) {
	s := NewLightSensor(GroupKey{Color: LightRed, ID: 7}, 0)
	assert.Equal(t, DefaultSensorActivation, s.Activation.Duration())
	assert.True(t, s.Activation.Paused())
	assert.False(t, s.Lit())
}

func TestLightSensor_InterruptedExposureRestarts(t *testing.T) {
	s := NewLightSensor(GroupKey{Color: LightRed, ID: 7}, 300*time.Millisecond)

	assert.Zero(t, runSensor(&s, true, 25), "250ms is not enough")
	assert.Zero(t, runSensor(&s, false, 1))
	assert.True(t, s.Activation.Paused())
	assert.Zero(t, s.Activation.Elapsed())

	assert.Zero(t, runSensor(&s, true, 29))
	assert.True(t, s.Update(true, sensorStep), "fires once the full 300ms elapse after relighting")
}

func TestLightSensor_ExactDurationFiresOnce(t *testing.T) {
	s := NewLightSensor(GroupKey{Color: LightGreen, ID: 1}, 300*time.Millisecond)
	assert.Equal(t, 1, runSensor(&s, true, 30))
}

func TestLightSensor_HeldLightFiresOnce(t *testing.T) {
	s := NewLightSensor(GroupKey{Color: LightGreen, ID: 1}, 300*time.Millisecond)
	assert.Equal(t, 1, runSensor(&s, true, 300))
	assert.True(t, s.Lit())

	// Going dark and relit arms it again.
	assert.Zero(t, runSensor(&s, false, 3))
	assert.Equal(t, 1, runSensor(&s, true, 30))
}

func TestLightSensor_Reset(t *testing.T) {
	s := NewLightSensor(GroupKey{Color: LightBlue, ID: 3}, 100*time.Millisecond)
	runSensor(&s, true, 5)
	require.True(t, s.Lit())

	s.Reset()
	assert.False(t, s.Lit())
	assert.True(t, s.Activation.Paused())
	assert.Zero(t, s.Activation.Elapsed())
	assert.Zero(t, s.Exposure.Elapsed())
	assert.Equal(t, 1, runSensor(&s, true, 10))
}

func TestSensorTable(t *testing.T) {
	table := newSensorTable()
	table.add(4, mgl32.Vec2{1, 2})
	table.add(5, mgl32.Vec2{3, 4})
	assert.True(t, table.IsLightSensor(4))
	assert.False(t, table.IsLightSensor(6))

	table.markHit([]EntityId{4, 4})
	assert.True(t, table.wasHit(4))
	assert.False(t, table.wasHit(5))

	table.resetHits()
	assert.False(t, table.wasHit(4))

	table.markHit([]EntityId{5})
	table.clear()
	assert.False(t, table.IsLightSensor(4))
	assert.False(t, table.wasHit(5))
}
