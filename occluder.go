package lightborne

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Occluder is a world-space line that blocks 2D lighting.
type Occluder struct {
	A, B mgl32.Vec2
}

// Crystal occluders are pulled in so some light leaks around their edges.
const crystalOccluderIndent = 1

// OccluderEdges returns the four sides of a cuboid collider placed at pos,
// shrunk by indent on every side. Only cuboids cast shadows; any other shape
// is a content bug and panics.
func OccluderEdges(collider Collider, pos mgl32.Vec2, indent float32) [4]Occluder {
	if collider.Shape != ShapeCuboid {
		panic(fmt.Sprintf("occluder requested for non-cuboid collider %v", collider.Shape))
	}
	hx := collider.HalfExtents.X() - indent
	hy := collider.HalfExtents.Y() - indent

	corners := [4]mgl32.Vec2{
		pos.Add(mgl32.Vec2{-hx, -hy}),
		pos.Add(mgl32.Vec2{-hx, hy}),
		pos.Add(mgl32.Vec2{hx, hy}),
		pos.Add(mgl32.Vec2{hx, -hy}),
	}
	return [4]Occluder{
		{corners[0], corners[1]},
		{corners[1], corners[2]},
		{corners[2], corners[3]},
		{corners[3], corners[0]},
	}
}

// appendOccluders adds the edges of every solid cuboid in the physics world.
// Sensors and beams do not cast shadows.
func appendOccluders(dst []Occluder, physics *PhysicsWorld, crystals func(EntityId) bool) []Occluder {
	physics.Each(func(eid EntityId, pos mgl32.Vec2, collider Collider) {
		if collider.Shape != ShapeCuboid || collider.Sensor {
			return
		}
		var indent float32
		if crystals(eid) {
			indent = crystalOccluderIndent
		}
		edges := OccluderEdges(collider, pos, indent)
		dst = append(dst, edges[:]...)
	})
	return dst
}
