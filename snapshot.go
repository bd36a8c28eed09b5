package lightborne

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"slices"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type ActivatableSnapshot struct {
	Entity      EntityId
	Key         GroupKey
	Active      bool
	Solid       bool
	Sprite      Sprite
	Position    mgl32.Vec2
	HalfExtents mgl32.Vec2
}

type SensorSnapshot struct {
	Entity   EntityId
	Key      GroupKey
	Position mgl32.Vec2
	Lit      bool
	Exposure float32 // seconds
}

// LightSnapshot is an immutable copy of what a renderer needs from one tick.
type LightSnapshot struct {
	Tick         uint64
	Level        int
	Session      uuid.UUID
	Sources      []LightSource
	Segments     []LightSegment
	Activatables []ActivatableSnapshot
	Sensors      []SensorSnapshot
	Occluders    []Occluder
	Gizmos       []Gizmo
}

// LightSnapshotContainer hands the latest snapshot to a reader on another
// goroutine.
type LightSnapshotContainer struct {
	latest atomic.Pointer[LightSnapshot]
}

func (c *LightSnapshotContainer) Update(s *LightSnapshot) {
	c.latest.Store(s)
}

func (c *LightSnapshotContainer) Get() *LightSnapshot {
	return c.latest.Load()
}

var (
	terrainGizmoColor = color.RGBA{R: 90, G: 90, B: 100, A: 255}
	sensorGizmoColor  = color.RGBA{R: 200, G: 160, B: 40, A: 255}
	sensorLitColor    = color.RGBA{R: 255, G: 230, B: 80, A: 255}
)

const bounceCueArm = 3

func lightSnapshotSystem(sim *LightSim, cmd *Commands, physics *PhysicsWorld, fixed *FixedTime, container *LightSnapshotContainer) {
	container.Update(BuildLightSnapshot(sim, cmd, physics, fixed.Tick))
}

// BuildLightSnapshot copies the simulation state into a fresh snapshot.
func BuildLightSnapshot(sim *LightSim, cmd *Commands, physics *PhysicsWorld, tick uint64) *LightSnapshot {
	level, _ := sim.Level()
	snap := &LightSnapshot{
		Tick:     tick,
		Level:    level,
		Session:  sim.Session(),
		Segments: sim.Segments.Visible(nil),
	}
	sim.Sources.Each(func(source *LightSource) {
		snap.Sources = append(snap.Sources, *source)
	})

	MakeQuery3[Activatable, StaticBody, Sprite](cmd).Map(func(eid EntityId, a *Activatable, body *StaticBody, sprite *Sprite) bool {
		snap.Activatables = append(snap.Activatables, ActivatableSnapshot{
			Entity:      eid,
			Key:         a.Key,
			Active:      a.Active,
			Solid:       physics.Has(eid),
			Sprite:      *sprite,
			Position:    body.Position,
			HalfExtents: body.Collider.HalfExtents,
		})
		return true
	})
	MakeQuery2[LightSensor, StaticBody](cmd).Map(func(eid EntityId, sensor *LightSensor, body *StaticBody) bool {
		snap.Sensors = append(snap.Sensors, SensorSnapshot{
			Entity:   eid,
			Key:      sensor.Key,
			Position: body.Position,
			Lit:      sim.SensorLit(eid),
			Exposure: float32(sensor.Exposure.Elapsed().Seconds()),
		})
		return true
	})
	slices.SortFunc(snap.Activatables, func(a, b ActivatableSnapshot) int { return int(a.Entity) - int(b.Entity) })
	slices.SortFunc(snap.Sensors, func(a, b SensorSnapshot) int { return int(a.Entity) - int(b.Entity) })

	snap.Occluders = appendOccluders(nil, physics, func(eid EntityId) bool {
		return GetComponent[Crystal](cmd, eid) != nil
	})
	physics.Each(func(eid EntityId, pos mgl32.Vec2, collider Collider) {
		if collider.Shape == ShapeCuboid && collider.Groups.Memberships&GroupTerrain != 0 && !sim.Groups.isMember(eid) {
			snap.Gizmos = append(snap.Gizmos, NewGizmoRect(pos, collider.HalfExtents, terrainGizmoColor))
		}
	})
	// Visible slots are a prefix of each pool, so they join into one path.
	var path []mgl32.Vec2
	for _, lc := range AllLightColors {
		path = path[:0]
		for _, slot := range sim.Segments.Slots(lc) {
			if !slot.Visible {
				break
			}
			if len(path) == 0 {
				path = append(path, slot.Start)
			}
			path = append(path, slot.End)
		}
		snap.Gizmos = AppendPolylineGizmos(snap.Gizmos, path, lc.RGBA())
	}
	MakeQuery1[BounceCue](cmd).Map(func(eid EntityId, cue *BounceCue) bool {
		snap.Gizmos = append(snap.Gizmos, NewGizmoCross(cue.Point, bounceCueArm, cue.Color.RGBA()))
		return true
	})
	return snap
}

// SnapshotImageOptions frames a snapshot. Bounds is the world rectangle to
// draw; Scale is pixels per world unit.
type SnapshotImageOptions struct {
	Bounds    AABB
	Scale     float32
	BeamWidth float32
	Label     bool
}

// RenderSnapshot rasterizes a snapshot for debugging: terrain, crystals and
// doors faded by their sprite alpha, sensors, then beams on top.
func RenderSnapshot(snap *LightSnapshot, opts SnapshotImageOptions) (*image.RGBA, error) {
	size := opts.Bounds.Max.Sub(opts.Bounds.Min).Mul(opts.Scale)
	w, h := int(size.X()), int(size.Y())
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty snapshot bounds %v at scale %v", opts.Bounds, opts.Scale)
	}
	if opts.BeamWidth <= 0 {
		opts.BeamWidth = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 12, G: 12, B: 20, A: 255}), image.Point{}, draw.Src)

	p := &snapshotPainter{img: img, r: vector.NewRasterizer(w, h), opts: opts}
	for _, g := range snap.Gizmos {
		if g.Type == GizmoRect {
			p.rect(g.Position, g.HalfExtents, g.Color)
		}
	}
	for _, a := range snap.Activatables {
		p.rect(a.Position, a.HalfExtents, Faded(a.Key.Color.RGBA(), a.Sprite.Alpha))
	}
	for _, s := range snap.Sensors {
		c := sensorGizmoColor
		if s.Lit {
			c = sensorLitColor
		}
		p.rect(s.Position, mgl32.Vec2{entityHalfExtent, entityHalfExtent}, c)
	}
	for _, g := range snap.Gizmos {
		switch g.Type {
		case GizmoLine:
			p.line(g.Position, g.LineEnd, opts.BeamWidth, g.Color)
		case GizmoCross:
			arm := g.HalfExtents.X()
			p.line(g.Position.Sub(mgl32.Vec2{arm, 0}), g.Position.Add(mgl32.Vec2{arm, 0}), opts.BeamWidth, g.Color)
			p.line(g.Position.Sub(mgl32.Vec2{0, arm}), g.Position.Add(mgl32.Vec2{0, arm}), opts.BeamWidth, g.Color)
		}
	}

	if opts.Label {
		d := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.White),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(4, 14),
		}
		d.DrawString(fmt.Sprintf("level %d tick %d beams %d", snap.Level, snap.Tick, len(snap.Sources)))
	}
	return img, nil
}

// WriteSnapshotPNG renders snap and encodes it as PNG.
func WriteSnapshotPNG(out io.Writer, snap *LightSnapshot, opts SnapshotImageOptions) error {
	img, err := RenderSnapshot(snap, opts)
	if err != nil {
		return err
	}
	return png.Encode(out, img)
}

type snapshotPainter struct {
	img  *image.RGBA
	r    *vector.Rasterizer
	opts SnapshotImageOptions
}

// toPixel maps world space (y up) to image space (y down).
func (p *snapshotPainter) toPixel(v mgl32.Vec2) (float32, float32) {
	x := (v.X() - p.opts.Bounds.Min.X()) * p.opts.Scale
	y := (p.opts.Bounds.Max.Y() - v.Y()) * p.opts.Scale
	return x, y
}

func (p *snapshotPainter) fill(c color.RGBA, corners ...mgl32.Vec2) {
	b := p.img.Bounds()
	p.r.Reset(b.Dx(), b.Dy())
	for i, corner := range corners {
		x, y := p.toPixel(corner)
		if i == 0 {
			p.r.MoveTo(x, y)
		} else {
			p.r.LineTo(x, y)
		}
	}
	p.r.ClosePath()
	p.r.Draw(p.img, b, image.NewUniform(c), image.Point{})
}

func (p *snapshotPainter) rect(center, half mgl32.Vec2, c color.RGBA) {
	lo, hi := center.Sub(half), center.Add(half)
	p.fill(c, lo, mgl32.Vec2{hi.X(), lo.Y()}, hi, mgl32.Vec2{lo.X(), hi.Y()})
}

// line draws a quad of the given pixel width along a-b.
func (p *snapshotPainter) line(a, b mgl32.Vec2, width float32, c color.RGBA) {
	d := b.Sub(a)
	if d.Len() == 0 {
		return
	}
	n := mgl32.Vec2{-d.Y(), d.X()}.Normalize().Mul(width / (2 * p.opts.Scale))
	p.fill(c, a.Add(n), b.Add(n), b.Sub(n), a.Sub(n))
}
