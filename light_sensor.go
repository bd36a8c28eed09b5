package lightborne

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSensorActivation is how long a button must stay lit to trigger.
const DefaultSensorActivation = 500 * time.Millisecond

// LightSensor is the component of a light-activated button. It debounces
// "was I hit this tick" into a single trigger per continuous exposure.
type LightSensor struct {
	Key GroupKey

	Exposure   Stopwatch
	Activation Timer
	WasHit     bool
}

func NewLightSensor(key GroupKey, activation time.Duration) LightSensor {
	if activation <= 0 {
		activation = DefaultSensorActivation
	}
	timer := NewTimer(activation)
	timer.Pause()
	return LightSensor{Key: key, Activation: timer}
}

// Update advances the sensor by one tick of length dt and reports whether
// the activation timer finished on this tick. A sensor that stays lit after
// triggering does not trigger again until it has been dark for a tick.
func (s *LightSensor) Update(hit bool, dt time.Duration) bool {
	defer func() { s.WasHit = hit }()

	switch {
	case hit && !s.WasHit:
		s.Activation.Reset()
		s.Activation.Unpause()
	case !hit && s.WasHit:
		s.Activation.Reset()
		s.Activation.Pause()
		return false
	case !hit:
		return false
	}

	s.Activation.Tick(dt)
	s.Exposure.Tick(dt)
	return s.Activation.JustFinished()
}

// Reset returns the sensor to its spawn state.
func (s *LightSensor) Reset() {
	s.Activation.Reset()
	s.Activation.Pause()
	s.Exposure.Reset()
	s.WasHit = false
}

// Lit reports whether the sensor is currently being hit.
func (s *LightSensor) Lit() bool {
	return s.WasHit
}

// sensorTable indexes the light sensors of the loaded level and collects
// the hits of the current tick.
type sensorTable struct {
	ids map[EntityId]mgl32.Vec2
	hit map[EntityId]struct{}
}

func newSensorTable() *sensorTable {
	return &sensorTable{
		ids: make(map[EntityId]mgl32.Vec2),
		hit: make(map[EntityId]struct{}),
	}
}

func (t *sensorTable) add(eid EntityId, pos mgl32.Vec2) {
	t.ids[eid] = pos
}

func (t *sensorTable) clear() {
	clear(t.ids)
	clear(t.hit)
}

func (t *sensorTable) IsLightSensor(eid EntityId) bool {
	_, ok := t.ids[eid]
	return ok
}

func (t *sensorTable) markHit(eids []EntityId) {
	for _, eid := range eids {
		t.hit[eid] = struct{}{}
	}
}

func (t *sensorTable) wasHit(eid EntityId) bool {
	_, ok := t.hit[eid]
	return ok
}

func (t *sensorTable) resetHits() {
	clear(t.hit)
}
