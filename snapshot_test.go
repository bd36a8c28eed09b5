package lightborne

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func litFixture(t *testing.T) *lightFixture {
	f := newLightFixture(t, 0)
	require.True(t, f.sim.FireLight(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, LightRed))
	f.step(12)
	return f
}

func TestBuildLightSnapshot(t *testing.T) {
	f := litFixture(t)
	snap := BuildLightSnapshot(f.sim, f.app.Commands(), f.physics, 42)

	assert.Equal(t, uint64(42), snap.Tick)
	assert.Equal(t, 0, snap.Level)
	assert.Equal(t, f.sim.Session(), snap.Session)
	require.Len(t, snap.Sources, 1)
	assert.Equal(t, LightRed, snap.Sources[0].Color)
	assert.Len(t, snap.Segments, 2)

	require.Len(t, snap.Activatables, 2)
	assert.Less(t, snap.Activatables[0].Entity, snap.Activatables[1].Entity)
	for _, a := range snap.Activatables {
		assert.True(t, a.Active)
		assert.True(t, a.Solid)
		assert.Equal(t, float32(1), a.Sprite.Alpha)
	}

	require.Len(t, snap.Sensors, 1)
	assert.True(t, snap.Sensors[0].Lit)
	assert.InDelta(t, 0.08, snap.Sensors[0].Exposure, 1e-6)

	// Two active crystals, indented; the button is a sensor and casts none.
	require.Len(t, snap.Occluders, 8)
	assert.Equal(t, mgl32.Vec2{-3, 47}, snap.Occluders[0].A)

	var lines []Gizmo
	var crosses int
	for _, g := range snap.Gizmos {
		switch g.Type {
		case GizmoLine:
			lines = append(lines, g)
		case GizmoCross:
			crosses++
			assert.Equal(t, mgl32.Vec2{46, 0}, g.Position)
		case GizmoRect:
			t.Errorf("unexpected terrain gizmo at %v", g.Position)
		}
	}
	require.Len(t, lines, 2)
	assert.Equal(t, 1, crosses)

	// Each beam line starts where the previous one ends.
	assert.Equal(t, snap.Segments[0].Start, lines[0].Position)
	assert.Equal(t, lines[0].LineEnd, lines[1].Position)
	assert.Equal(t, snap.Segments[1].End, lines[1].LineEnd)
	assert.Equal(t, LightRed.RGBA(), lines[1].Color)
}

func TestLightSnapshotContainer(t *testing.T) {
	levels, err := ParseLevels([]byte(testLevels))
	require.NoError(t, err)
	app := NewAppBuilder().
		UseModule(TimeModule{FixedHz: 100}, PhysicsModule{}, LightModule{Levels: levels, Snapshot: true}).
		Build()
	container := Resource[LightSnapshotContainer](app)
	require.NotNil(t, container)
	assert.Nil(t, container.Get())

	app.Step(testTick)
	app.Step(testTick)
	snap := container.Get()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(2), snap.Tick)
}

func TestRenderSnapshot(t *testing.T) {
	f := litFixture(t)
	snap := BuildLightSnapshot(f.sim, f.app.Commands(), f.physics, 12)
	opts := SnapshotImageOptions{
		Bounds:    AABB{Min: mgl32.Vec2{-10, -10}, Max: mgl32.Vec2{60, 60}},
		Scale:     2,
		BeamWidth: 4,
		Label:     true,
	}

	img, err := RenderSnapshot(snap, opts)
	require.NoError(t, err)
	assert.Equal(t, 140, img.Bounds().Dx())
	assert.Equal(t, 140, img.Bounds().Dy())

	// World (20, 0) lies on the red beam.
	beam := img.RGBAAt(60, 119)
	assert.Greater(t, beam.R, uint8(200))
	assert.Less(t, beam.G, uint8(50))

	// Active crystals are drawn at full alpha in red.
	crystal := img.RGBAAt(20, 20)
	assert.Greater(t, crystal.R, uint8(200))

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshotPNG(&buf, snap, opts))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	_, err = RenderSnapshot(snap, SnapshotImageOptions{Scale: 1})
	assert.Error(t, err)
}
