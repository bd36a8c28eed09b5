package lightborne

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Hits closer than this are the ray touching the surface it just left.
const hitEpsilon = 0.01

// SensorSet tells the tracer which hit entities are light sensors.
type SensorSet interface {
	IsLightSensor(eid EntityId) bool
}

// LightTrace is the result of tracing one beam.
type LightTrace struct {
	Points     []mgl32.Vec2
	HitSensors []EntityId
	// Remaining is the travel distance left when the trace stopped.
	Remaining float32
	// Bounces counts the surfaces the beam reflected off.
	Bounces int
}

// Reflect mirrors d about the surface with unit normal n.
func Reflect(d, n mgl32.Vec2) mgl32.Vec2 {
	return d.Sub(n.Mul(2 * d.Dot(n)))
}

// Tracer reuses its buffers between traces. The slices of a returned
// LightTrace are only valid until the next call.
type Tracer struct {
	points   []mgl32.Vec2
	hits     []EntityId
	excluded []EntityId
}

// Trace follows source through backend, recording the sensors it strikes.
func (t *Tracer) Trace(source *LightSource, backend RaycastBackend, sensors SensorSet) LightTrace {
	return t.trace(backend, sensors, source.Origin, source.Direction, source.Color, source.DistanceTraveled)
}

func (t *Tracer) trace(backend RaycastBackend, sensors SensorSet, origin, dir mgl32.Vec2, color LightColor, distance float32) LightTrace {
	t.points = append(t.points[:0], origin)
	t.hits = t.hits[:0]
	t.excluded = t.excluded[:0]

	filter := NewQueryFilter(color.RayGroups())
	pos := origin
	remaining := distance
	bounces := 0

	for i := 0; i < color.Bounces()+1; i++ {
		filter.Excluded = t.excluded
		hit, ok := backend.CastRay(pos, dir, remaining, true, filter)
		if !ok {
			t.points = append(t.points, pos.Add(dir.Mul(remaining)))
			remaining = 0
			break
		}

		if hit.Distance < hitEpsilon {
			break
		}

		remaining -= hit.Distance
		t.points = append(t.points, hit.Point)
		bounces++

		if sensors != nil && sensors.IsLightSensor(hit.Entity) {
			t.hits = append(t.hits, hit.Entity)
		}

		pos = hit.Point
		dir = Reflect(dir, hit.Normal)
		// Only the surface just left is skipped; earlier ones can be hit again.
		t.excluded = append(t.excluded[:0], hit.Entity)
	}

	return LightTrace{
		Points:     t.points,
		HitSensors: t.hits,
		Remaining:  max(remaining, 0),
		Bounces:    bounces,
	}
}

// TraceLight traces source against backend with fresh buffers.
func TraceLight(source *LightSource, backend RaycastBackend, sensors SensorSet) LightTrace {
	var t Tracer
	return t.Trace(source, backend, sensors)
}

// PreviewPath returns the polyline a beam of color would follow if fired
// from origin along direction, out to maxDistance. It has no side effects.
// A zero direction yields nil.
func PreviewPath(backend RaycastBackend, origin, direction mgl32.Vec2, color LightColor, maxDistance float32) []mgl32.Vec2 {
	dir, ok := normalizeOrZero(direction)
	if !ok {
		return nil
	}
	var t Tracer
	return t.trace(backend, nil, origin, dir, color, maxDistance).Points
}

func normalizeOrZero(v mgl32.Vec2) (mgl32.Vec2, bool) {
	l := v.Len()
	if l == 0 || math.IsNaN(float64(l)) || math.IsInf(float64(l), 0) {
		return mgl32.Vec2{}, false
	}
	return v.Mul(1 / l), true
}
