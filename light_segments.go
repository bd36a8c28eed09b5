package lightborne

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightSegment is one straight piece of a beam, stored in a fixed slot of
// its color's pool.
type LightSegment struct {
	Start   mgl32.Vec2
	End     mgl32.Vec2
	Color   LightColor
	Index   int
	Visible bool
}

// SegmentTransform places a unit-length beam quad over a segment.
type SegmentTransform struct {
	Midpoint mgl32.Vec2
	Length   float32
	Angle    float32 // radians, counter-clockwise from +X
}

func (s LightSegment) Transform() SegmentTransform {
	delta := s.End.Sub(s.Start)
	return SegmentTransform{
		Midpoint: s.Start.Add(s.End).Mul(0.5),
		Length:   delta.Len(),
		Angle:    float32(math.Atan2(float64(delta.Y()), float64(delta.X()))),
	}
}

// LightSegmentCache is the preallocated per-color pool of beam segments.
// Slots are overwritten every tick and hidden, never freed.
//
// White segments are also solid for other beams: while visible, each white
// slot owns a segment collider in the physics world under a reserved entity id.
type LightSegmentCache struct {
	table   [numLightColors][]LightSegment
	physics *PhysicsWorld
	beamIds []EntityId
}

func NewLightSegmentCache() *LightSegmentCache {
	cache := &LightSegmentCache{}
	for _, color := range AllLightColors {
		slots := make([]LightSegment, color.Bounces()+1)
		for i := range slots {
			slots[i] = LightSegment{Color: color, Index: i}
		}
		cache.table[color] = slots
	}
	return cache
}

// AttachPhysics makes white segments collide with colored beams. ids are
// the entity ids reserved for the white slots, one per slot.
func (c *LightSegmentCache) AttachPhysics(physics *PhysicsWorld, ids []EntityId) {
	if len(ids) != len(c.table[LightWhite]) {
		panic("white beam collider ids must match the white slot count")
	}
	c.physics = physics
	c.beamIds = ids
}

// Write maps polyline[i]..polyline[i+1] onto slot i and hides the rest.
// Points beyond the pool size are dropped.
func (c *LightSegmentCache) Write(color LightColor, polyline []mgl32.Vec2) {
	color.mustBeValid()
	slots := c.table[color]
	for i := range slots {
		slot := &slots[i]
		if i+1 < len(polyline) {
			slot.Start = polyline[i]
			slot.End = polyline[i+1]
			slot.Visible = true
		} else {
			slot.Start = mgl32.Vec2{}
			slot.End = mgl32.Vec2{}
			slot.Visible = false
		}
		if color == LightWhite {
			c.syncBeamCollider(i, slot)
		}
	}
}

func (c *LightSegmentCache) syncBeamCollider(i int, slot *LightSegment) {
	if c.physics == nil {
		return
	}
	eid := c.beamIds[i]
	if !slot.Visible || slot.Start == slot.End {
		c.physics.Remove(eid)
		return
	}
	c.physics.Insert(eid, mgl32.Vec2{}, NewSegmentCollider(slot.Start, slot.End, whiteBeamGroups))
}

// Clear hides every slot of color.
func (c *LightSegmentCache) Clear(color LightColor) {
	c.Write(color, nil)
}

func (c *LightSegmentCache) ClearAll() {
	for _, color := range AllLightColors {
		c.Clear(color)
	}
}

// Slots exposes the pool of color for rendering. Callers must not retain it
// across ticks.
func (c *LightSegmentCache) Slots(color LightColor) []LightSegment {
	color.mustBeValid()
	return c.table[color]
}

// Visible appends the visible segments of every color to dst.
func (c *LightSegmentCache) Visible(dst []LightSegment) []LightSegment {
	for _, color := range AllLightColors {
		for _, slot := range c.table[color] {
			if slot.Visible {
				dst = append(dst, slot)
			}
		}
	}
	return dst
}
