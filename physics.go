package lightborne

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

type ColliderShape int

const (
	ShapeCuboid ColliderShape = iota
	ShapeSegment
)

func (s ColliderShape) String() string {
	switch s {
	case ShapeCuboid:
		return "cuboid"
	case ShapeSegment:
		return "segment"
	}
	return fmt.Sprintf("ColliderShape(%d)", int(s))
}

// Collider is a static 2D shape. Cuboids are axis aligned and centred on
// the owner's position; segments are given by endpoints relative to it.
type Collider struct {
	Shape       ColliderShape
	HalfExtents mgl32.Vec2 // For Cuboid
	A, B        mgl32.Vec2 // For Segment
	Groups      CollisionGroups
	Sensor      bool
}

func NewCuboidCollider(halfX, halfY float32, groups CollisionGroups) Collider {
	return Collider{Shape: ShapeCuboid, HalfExtents: mgl32.Vec2{halfX, halfY}, Groups: groups}
}

func NewSegmentCollider(a, b mgl32.Vec2, groups CollisionGroups) Collider {
	return Collider{Shape: ShapeSegment, A: a, B: b, Groups: groups, Sensor: true}
}

func (c Collider) aabb(pos mgl32.Vec2) AABB {
	switch c.Shape {
	case ShapeCuboid:
		return AABB{Min: pos.Sub(c.HalfExtents), Max: pos.Add(c.HalfExtents)}
	case ShapeSegment:
		a, b := pos.Add(c.A), pos.Add(c.B)
		return AABB{
			Min: mgl32.Vec2{min(a.X(), b.X()), min(a.Y(), b.Y())},
			Max: mgl32.Vec2{max(a.X(), b.X()), max(a.Y(), b.Y())},
		}
	}
	panic(fmt.Sprintf("unsupported collider shape %v", c.Shape))
}

type RayHit struct {
	Entity   EntityId
	Point    mgl32.Vec2
	Normal   mgl32.Vec2
	Distance float32
}

// QueryFilter restricts a cast to colliders whose groups interact with
// Groups and that are not listed in Excluded.
type QueryFilter struct {
	Groups   CollisionGroups
	Excluded []EntityId
}

func NewQueryFilter(groups CollisionGroups) QueryFilter {
	return QueryFilter{Groups: groups}
}

// ExcludeCollider returns a copy of the filter that also skips eid.
func (f QueryFilter) ExcludeCollider(eid EntityId) QueryFilter {
	f.Excluded = append(slices.Clip(f.Excluded), eid)
	return f
}

func (f QueryFilter) excludes(eid EntityId) bool {
	return slices.Contains(f.Excluded, eid)
}

// RaycastBackend answers "what does this ray hit first". dir is expected to
// be unit length; Distance is measured along it. With solid set, a ray that
// starts inside a shape hits it at distance zero.
type RaycastBackend interface {
	CastRay(origin, dir mgl32.Vec2, maxDistance float32, solid bool, filter QueryFilter) (RayHit, bool)
}

type placedCollider struct {
	collider Collider
	position mgl32.Vec2
	aabb     AABB
}

// PhysicsWorld holds every static collider of the current level and serves
// ray casts against them.
type PhysicsWorld struct {
	CellSize float32

	colliders map[EntityId]*placedCollider
	grid      *SpatialHashGrid
	bounds    AABB
	hasBounds bool
}

const defaultPhysicsCellSize = 32

func NewPhysicsWorld() *PhysicsWorld {
	return &PhysicsWorld{
		CellSize:  defaultPhysicsCellSize,
		colliders: make(map[EntityId]*placedCollider),
		grid:      NewSpatialHashGrid(defaultPhysicsCellSize),
	}
}

// Insert registers (or replaces) the collider owned by eid.
func (w *PhysicsWorld) Insert(eid EntityId, pos mgl32.Vec2, collider Collider) {
	w.Remove(eid)

	placed := &placedCollider{collider: collider, position: pos, aabb: collider.aabb(pos)}
	w.colliders[eid] = placed
	w.grid.Insert(eid, placed.aabb)

	if !w.hasBounds {
		w.bounds = placed.aabb
		w.hasBounds = true
	} else {
		w.bounds = w.bounds.Union(placed.aabb)
	}
}

func (w *PhysicsWorld) Remove(eid EntityId) {
	placed, ok := w.colliders[eid]
	if !ok {
		return
	}
	w.grid.Remove(eid, placed.aabb)
	delete(w.colliders, eid)
}

func (w *PhysicsWorld) Has(eid EntityId) bool {
	_, ok := w.colliders[eid]
	return ok
}

func (w *PhysicsWorld) Collider(eid EntityId) (Collider, mgl32.Vec2, bool) {
	placed, ok := w.colliders[eid]
	if !ok {
		return Collider{}, mgl32.Vec2{}, false
	}
	return placed.collider, placed.position, true
}

func (w *PhysicsWorld) Len() int {
	return len(w.colliders)
}

// Bounds is the box covering every collider inserted since the last Clear.
func (w *PhysicsWorld) Bounds() (AABB, bool) {
	return w.bounds, w.hasBounds
}

// Clear drops every collider, used when a level is unloaded.
func (w *PhysicsWorld) Clear() {
	clear(w.colliders)
	w.grid.Clear()
	w.hasBounds = false
	w.bounds = AABB{}
}

// Each visits colliders in ascending entity order.
func (w *PhysicsWorld) Each(fn func(eid EntityId, pos mgl32.Vec2, collider Collider)) {
	ids := make([]EntityId, 0, len(w.colliders))
	for eid := range w.colliders {
		ids = append(ids, eid)
	}
	slices.Sort(ids)
	for _, eid := range ids {
		placed := w.colliders[eid]
		fn(eid, placed.position, placed.collider)
	}
}

func (w *PhysicsWorld) CastRay(origin, dir mgl32.Vec2, maxDistance float32, solid bool, filter QueryFilter) (RayHit, bool) {
	if !w.hasBounds || maxDistance <= 0 {
		return RayHit{}, false
	}

	end := origin.Add(dir.Mul(maxDistance))
	rayBox := AABB{
		Min: mgl32.Vec2{min(origin.X(), end.X()), min(origin.Y(), end.Y())},
		Max: mgl32.Vec2{max(origin.X(), end.X()), max(origin.Y(), end.Y())},
	}
	// Long rays (aim previews) would otherwise walk cells far outside the level.
	rayBox, ok := rayBox.Intersection(w.bounds)
	if !ok {
		return RayHit{}, false
	}

	var best RayHit
	found := false
	for _, eid := range w.grid.QueryAABB(rayBox) {
		if filter.excludes(eid) {
			continue
		}
		placed := w.colliders[eid]
		if !filter.Groups.Interacts(placed.collider.Groups) {
			continue
		}

		var hit RayHit
		var ok bool
		switch placed.collider.Shape {
		case ShapeCuboid:
			hit, ok = castRayCuboid(origin, dir, maxDistance, solid, placed)
		case ShapeSegment:
			hit, ok = castRaySegment(origin, dir, maxDistance, placed)
		default:
			panic(fmt.Sprintf("unsupported collider shape %v", placed.collider.Shape))
		}
		if !ok {
			continue
		}
		hit.Entity = eid
		if !found || hit.Distance < best.Distance || (hit.Distance == best.Distance && eid < best.Entity) {
			best = hit
			found = true
		}
	}
	return best, found
}

func castRayCuboid(origin, dir mgl32.Vec2, maxDistance float32, solid bool, placed *placedCollider) (RayHit, bool) {
	lo, hi := placed.aabb.Min, placed.aabb.Max

	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	var normal mgl32.Vec2

	for axis := 0; axis < 2; axis++ {
		o, d := origin[axis], dir[axis]
		if d == 0 {
			if o < lo[axis] || o > hi[axis] {
				return RayHit{}, false
			}
			continue
		}
		t1 := (lo[axis] - o) / d
		t2 := (hi[axis] - o) / d
		// Entering through the min face means the outward normal points to -axis.
		var n mgl32.Vec2
		n[axis] = -1
		if t1 > t2 {
			t1, t2 = t2, t1
			n[axis] = 1
		}
		if t1 > tmin {
			tmin = t1
			normal = n
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmin > tmax || tmax < 0 {
		return RayHit{}, false
	}
	if tmin < 0 {
		// Origin inside the box.
		if !solid {
			if tmax > maxDistance {
				return RayHit{}, false
			}
			exit := origin.Add(dir.Mul(tmax))
			return RayHit{Point: exit, Normal: exitNormal(exit, lo, hi), Distance: tmax}, true
		}
		return RayHit{Point: origin, Normal: dir.Mul(-1), Distance: 0}, true
	}
	if tmin > maxDistance {
		return RayHit{}, false
	}
	return RayHit{Point: origin.Add(dir.Mul(tmin)), Normal: normal, Distance: tmin}, true
}

func exitNormal(p, lo, hi mgl32.Vec2) mgl32.Vec2 {
	const eps = 1e-4
	switch {
	case abs32(p.X()-lo.X()) < eps:
		return mgl32.Vec2{1, 0}
	case abs32(p.X()-hi.X()) < eps:
		return mgl32.Vec2{-1, 0}
	case abs32(p.Y()-lo.Y()) < eps:
		return mgl32.Vec2{0, 1}
	}
	return mgl32.Vec2{0, -1}
}

func castRaySegment(origin, dir mgl32.Vec2, maxDistance float32, placed *placedCollider) (RayHit, bool) {
	a := placed.position.Add(placed.collider.A)
	b := placed.position.Add(placed.collider.B)
	edge := b.Sub(a)

	denom := cross2(dir, edge)
	if abs32(denom) < 1e-9 {
		// Parallel rays slide along the beam without touching it.
		return RayHit{}, false
	}
	diff := a.Sub(origin)
	t := cross2(diff, edge) / denom
	u := cross2(diff, dir) / denom
	// A ray leaving from a point on the segment does not hit it.
	if t < segmentSkin || t > maxDistance || u < 0 || u > 1 {
		return RayHit{}, false
	}

	normal := mgl32.Vec2{-edge.Y(), edge.X()}.Normalize()
	if normal.Dot(dir) > 0 {
		normal = normal.Mul(-1)
	}
	return RayHit{Point: origin.Add(dir.Mul(t)), Normal: normal, Distance: t}, true
}

const segmentSkin = 1e-3

func cross2(a, b mgl32.Vec2) float32 {
	return a.X()*b.Y() - a.Y()*b.X()
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

type PhysicsModule struct {
	CellSize float32
}

func (m PhysicsModule) Install(app *App, cmd *Commands) {
	world := NewPhysicsWorld()
	if m.CellSize > 0 {
		world.CellSize = m.CellSize
		world.grid = NewSpatialHashGrid(m.CellSize)
	}
	cmd.AddResources(world)
}
