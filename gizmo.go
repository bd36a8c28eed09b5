package lightborne

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

type GizmoType int

const (
	GizmoLine  GizmoType = iota
	GizmoRect            // Filled axis-aligned rectangle
	GizmoCross           // Small marker at Position
)

// Gizmo is a debug primitive in world space.
type Gizmo struct {
	Type  GizmoType
	Color color.RGBA

	// For Rect and Cross: Position is the center.
	// For Line: Position is the start.
	Position mgl32.Vec2

	LineEnd     mgl32.Vec2 // For GizmoLine
	HalfExtents mgl32.Vec2 // For GizmoRect, and the arm length of GizmoCross
}

func NewGizmoLine(start, end mgl32.Vec2, color color.RGBA) Gizmo {
	return Gizmo{Type: GizmoLine, Position: start, LineEnd: end, Color: color}
}

func NewGizmoRect(center, halfExtents mgl32.Vec2, color color.RGBA) Gizmo {
	return Gizmo{Type: GizmoRect, Position: center, HalfExtents: halfExtents, Color: color}
}

func NewGizmoCross(center mgl32.Vec2, arm float32, color color.RGBA) Gizmo {
	return Gizmo{Type: GizmoCross, Position: center, HalfExtents: mgl32.Vec2{arm, arm}, Color: color}
}

// AppendPolylineGizmos appends one line per consecutive pair of points.
func AppendPolylineGizmos(dst []Gizmo, points []mgl32.Vec2, color color.RGBA) []Gizmo {
	for i := 0; i+1 < len(points); i++ {
		dst = append(dst, NewGizmoLine(points[i], points[i+1], color))
	}
	return dst
}

// Faded returns c with its alpha scaled by alpha.
func Faded(c color.RGBA, alpha float32) color.RGBA {
	alpha = mgl32.Clamp(alpha, 0, 1)
	// color.RGBA is premultiplied.
	return color.RGBA{
		R: uint8(float32(c.R) * alpha),
		G: uint8(float32(c.G) * alpha),
		B: uint8(float32(c.B) * alpha),
		A: uint8(float32(c.A) * alpha),
	}
}
