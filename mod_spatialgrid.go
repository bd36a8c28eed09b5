package lightborne

import (
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

type AABB struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mgl32.Vec2{min(a.Min.X(), b.Min.X()), min(a.Min.Y(), b.Min.Y())},
		Max: mgl32.Vec2{max(a.Max.X(), b.Max.X()), max(a.Max.Y(), b.Max.Y())},
	}
}

// Intersection returns the overlap of a and b; ok is false when they are
// disjoint.
func (a AABB) Intersection(b AABB) (AABB, bool) {
	res := AABB{
		Min: mgl32.Vec2{max(a.Min.X(), b.Min.X()), max(a.Min.Y(), b.Min.Y())},
		Max: mgl32.Vec2{min(a.Max.X(), b.Max.X()), min(a.Max.Y(), b.Max.Y())},
	}
	return res, res.Min.X() <= res.Max.X() && res.Min.Y() <= res.Max.Y()
}

type cellKey struct{ x, y int }

// SpatialHashGrid is the broadphase of the physics world. It only knows ids
// and cells; exact tests are the caller's business.
type SpatialHashGrid struct {
	cellSize float32
	cells    map[cellKey][]EntityId
}

func NewSpatialHashGrid(cellSize float32) *SpatialHashGrid {
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]EntityId),
	}
}

func (grid *SpatialHashGrid) Clear() {
	clear(grid.cells)
}

func (grid *SpatialHashGrid) Insert(id EntityId, aabb AABB) {
	grid.forEachCell(aabb, func(key cellKey) {
		grid.cells[key] = append(grid.cells[key], id)
	})
}

// Remove drops id from every cell covered by aabb, which must be the box it
// was inserted with.
func (grid *SpatialHashGrid) Remove(id EntityId, aabb AABB) {
	grid.forEachCell(aabb, func(key cellKey) {
		ids := slices.DeleteFunc(grid.cells[key], func(e EntityId) bool { return e == id })
		if len(ids) == 0 {
			delete(grid.cells, key)
			return
		}
		grid.cells[key] = ids
	})
}

func (grid *SpatialHashGrid) QueryAABB(aabb AABB) []EntityId {
	unique := make(set[EntityId])
	var results []EntityId

	grid.forEachCell(aabb, func(key cellKey) {
		for _, id := range grid.cells[key] {
			if _, ok := unique[id]; !ok {
				unique[id] = struct{}{}
				results = append(results, id)
			}
		}
	})
	return results
}

func (grid *SpatialHashGrid) forEachCell(aabb AABB, fn func(cellKey)) {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			fn(cellKey{x, y})
		}
	}
}

func (grid *SpatialHashGrid) getCellIndex(pos float32) int {
	return int(math.Floor(float64(pos / grid.cellSize)))
}
