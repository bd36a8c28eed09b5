package lightborne

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// DefaultLightSpeed is the distance a beam grows per fixed tick.
const DefaultLightSpeed = 10.0

// LightSource is one fired beam. The beam grows from Origin along Direction
// by a constant amount every fixed tick until the level resets.
type LightSource struct {
	ID               uuid.UUID
	Origin           mgl32.Vec2
	Direction        mgl32.Vec2
	Color            LightColor
	DistanceTraveled float32
	// MaxBounces is the most reflections seen so far; it only feeds cues.
	MaxBounces int
}

// observeBounces records n and reports whether it is a new maximum.
func (s *LightSource) observeBounces(n int) bool {
	if n <= s.MaxBounces {
		return false
	}
	s.MaxBounces = n
	return true
}

// LightSourceRegistry owns the active beams, at most one per color.
type LightSourceRegistry struct {
	Speed float32

	sources [numLightColors]*LightSource
}

// NewLightSourceRegistry falls back to DefaultLightSpeed for a
// non-positive speed.
func NewLightSourceRegistry(speed float32) *LightSourceRegistry {
	if speed <= 0 {
		speed = DefaultLightSpeed
	}
	return &LightSourceRegistry{Speed: speed}
}

// Fire spawns a beam of color. It is rejected when that color already has
// an active beam or direction has no length.
func (r *LightSourceRegistry) Fire(origin, direction mgl32.Vec2, color LightColor) (*LightSource, bool) {
	color.mustBeValid()
	if r.sources[color] != nil {
		return nil, false
	}
	dir, ok := normalizeOrZero(direction)
	if !ok {
		return nil, false
	}

	source := &LightSource{
		ID:        uuid.New(),
		Origin:    origin,
		Direction: dir,
		Color:     color,
	}
	r.sources[color] = source
	return source, true
}

// Active returns the beam of color, or nil.
func (r *LightSourceRegistry) Active(color LightColor) *LightSource {
	color.mustBeValid()
	return r.sources[color]
}

// Each visits active sources in color order.
func (r *LightSourceRegistry) Each(fn func(*LightSource)) {
	for _, source := range r.sources {
		if source != nil {
			fn(source)
		}
	}
}

// Len is the number of active beams.
func (r *LightSourceRegistry) Len() int {
	n := 0
	r.Each(func(*LightSource) { n++ })
	return n
}

// Tick grows every beam by Speed. It is driven by the fixed step, never by
// frame time.
func (r *LightSourceRegistry) Tick() {
	r.Each(func(source *LightSource) {
		source.DistanceTraveled += r.Speed
	})
}

// ClearAll removes every beam and returns how many were active.
func (r *LightSourceRegistry) ClearAll() int {
	n := r.Len()
	r.sources = [numLightColors]*LightSource{}
	return n
}
