package lightborne

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightSegmentCache_PoolSizes(t *testing.T) {
	cache := NewLightSegmentCache()
	for _, color := range AllLightColors {
		slots := cache.Slots(color)
		require.Len(t, slots, color.Bounces()+1)
		for i, slot := range slots {
			assert.Equal(t, i, slot.Index)
			assert.Equal(t, color, slot.Color)
			assert.False(t, slot.Visible)
		}
	}
}

func TestLightSegmentCache_WriteMapsAndHides(t *testing.T) {
	cache := NewLightSegmentCache()
	cache.Write(LightRed, []mgl32.Vec2{{0, 0}, {10, 0}, {10, 5}, {0, 5}})

	slots := cache.Slots(LightRed)
	for i := 0; i < 3; i++ {
		assert.True(t, slots[i].Visible)
	}
	assert.Equal(t, mgl32.Vec2{10, 0}, slots[1].Start)
	assert.Equal(t, mgl32.Vec2{10, 5}, slots[1].End)

	cache.Write(LightRed, []mgl32.Vec2{{0, 0}, {3, 0}})
	assert.True(t, slots[0].Visible)
	assert.False(t, slots[1].Visible)
	assert.False(t, slots[2].Visible)
	assert.Equal(t, mgl32.Vec2{}, slots[2].End)

	// Points beyond the pool are dropped.
	cache.Write(LightGreen, []mgl32.Vec2{{0, 0}, {1, 0}, {2, 0}, {3, 0}})
	assert.Len(t, cache.Visible(nil), 1+2)

	cache.ClearAll()
	assert.Empty(t, cache.Visible(nil))
}

func TestLightSegment_Transform(t *testing.T) {
	seg := LightSegment{Start: mgl32.Vec2{0, 0}, End: mgl32.Vec2{0, 4}}
	tr := seg.Transform()
	assert.Equal(t, mgl32.Vec2{0, 2}, tr.Midpoint)
	assert.InDelta(t, 4, tr.Length, 1e-6)
	assert.InDelta(t, math.Pi/2, tr.Angle, 1e-6)

	tr = LightSegment{Start: mgl32.Vec2{2, 2}, End: mgl32.Vec2{-2, 2}}.Transform()
	assert.InDelta(t, math.Pi, tr.Angle, 1e-6)
}

func TestLightSegmentCache_WhiteBeamColliders(t *testing.T) {
	world := NewPhysicsWorld()
	cache := NewLightSegmentCache()
	ids := []EntityId{100, 101}
	assert.Panics(t, func() { cache.AttachPhysics(world, ids[:1]) })
	cache.AttachPhysics(world, ids)

	cache.Write(LightWhite, []mgl32.Vec2{{0, 0}, {10, 0}, {10, 10}})
	assert.True(t, world.Has(100))
	assert.True(t, world.Has(101))

	collider, _, ok := world.Collider(101)
	require.True(t, ok)
	assert.Equal(t, ShapeSegment, collider.Shape)
	assert.Equal(t, whiteBeamGroups, collider.Groups)

	// A green ray crossing the white beam reflects off it.
	hit, ok := world.CastRay(mgl32.Vec2{5, -5}, mgl32.Vec2{0, 1}, 20, true, NewQueryFilter(LightGreen.RayGroups()))
	require.True(t, ok)
	assert.Equal(t, EntityId(100), hit.Entity)

	cache.Write(LightWhite, []mgl32.Vec2{{0, 0}, {10, 0}})
	assert.True(t, world.Has(100))
	assert.False(t, world.Has(101))

	// Colored beams never create colliders.
	cache.Write(LightGreen, []mgl32.Vec2{{0, 0}, {0, 10}})
	assert.Equal(t, 1, world.Len())

	cache.Clear(LightWhite)
	assert.Zero(t, world.Len())
}
