package lightborne

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLevels = `
levels:
  - name: single
    entities:
      - {kind: Button, pos: [50, 0], id: 7, color: red, activation_ms: 50}
      - {kind: RedCrystal, pos: [0, 50], id: 7, active: false}
      - {kind: RedCrystal, pos: [20, 50], id: 7, active: false}
  - name: twin
    entities:
      - {kind: Button, pos: [50, 0], id: 7, color: red, activation_ms: 50}
      - {kind: Button, pos: [-50, 0], id: 7, color: red, activation_ms: 50}
      - {kind: RedCrystal, pos: [0, 50], id: 7, active: false}
`

const testTick = 10 * time.Millisecond

var redSeven = GroupKey{Color: LightRed, ID: 7}

type lightFixture struct {
	app       *App
	sim       *LightSim
	physics   *PhysicsWorld
	triggered []GroupTriggeredEvent
}

func newLightFixture(t *testing.T, level int) *lightFixture {
	t.Helper()
	levels, err := ParseLevels([]byte(testLevels))
	require.NoError(t, err)

	app := NewAppBuilder().
		UseModule(TimeModule{FixedHz: 100}, PhysicsModule{}, LightModule{Speed: 10, Levels: levels, LevelIndex: level}).
		Build()
	f := &lightFixture{
		app:     app,
		sim:     Resource[LightSim](app),
		physics: Resource[PhysicsWorld](app),
	}
	require.NotNil(t, f.sim)
	f.sim.Events.Triggered.Observe(func(ev GroupTriggeredEvent) {
		f.triggered = append(f.triggered, ev)
	})
	// The first tick consumes the reset queued by the initial level switch.
	f.step(1)
	return f
}

func (f *lightFixture) step(n int) {
	for i := 0; i < n; i++ {
		f.app.Step(testTick)
	}
}

func (f *lightFixture) active(eid EntityId) bool {
	return GetComponent[Activatable](f.app.Commands(), eid).Active
}

func TestLightModule_BeamActivatesGroup(t *testing.T) {
	f := newLightFixture(t, 0)
	crystals := f.sim.Groups.Members(redSeven)
	require.Len(t, crystals, 2)

	require.True(t, f.sim.FireLight(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, LightRed))
	assert.False(t, f.sim.FireLight(mgl32.Vec2{0, 0}, mgl32.Vec2{0, 1}, LightRed))

	// The beam reaches the button face at x=46 on the fifth tick and the
	// 50ms timer finishes on the ninth.
	f.step(4)
	assert.Empty(t, f.triggered)
	f.step(1)
	sensors := MakeQuery1[LightSensor](f.app.Commands())
	var lit int
	sensors.Map(func(eid EntityId, s *LightSensor) bool {
		if f.sim.SensorLit(eid) {
			lit++
		}
		return true
	})
	assert.Equal(t, 1, lit)

	f.step(3)
	assert.Empty(t, f.triggered)
	f.step(1)
	require.Len(t, f.triggered, 1)
	assert.Equal(t, redSeven, f.triggered[0].Key)

	for _, eid := range crystals {
		assert.True(t, f.active(eid))
		assert.True(t, f.physics.Has(eid))
	}

	// Holding the beam on the button does not retrigger.
	f.step(30)
	assert.Len(t, f.triggered, 1)
	for _, eid := range crystals {
		assert.True(t, f.active(eid))
	}

	red := f.sim.Segments.Slots(LightRed)
	assert.True(t, red[0].Visible)
	assert.True(t, red[1].Visible)
	assert.Equal(t, mgl32.Vec2{46, 0}, red[0].End)
}

func TestLightModule_EachTriggerToggles(t *testing.T) {
	f := newLightFixture(t, 1)
	crystals := f.sim.Groups.Members(redSeven)
	require.Len(t, crystals, 1)

	require.True(t, f.sim.FireLight(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, LightRed))
	f.step(12)
	require.Len(t, f.triggered, 1)
	assert.True(t, f.active(crystals[0]))

	// The reflected beam reaches the second button at distance 138.
	f.step(10)
	require.Len(t, f.triggered, 2)
	assert.NotEqual(t, f.triggered[0].Sensor, f.triggered[1].Sensor)
	assert.False(t, f.active(crystals[0]), "the second trigger toggles the group back")
	assert.False(t, f.physics.Has(crystals[0]))
}

func TestLightModule_RespawnClearsTransientState(t *testing.T) {
	f := newLightFixture(t, 0)
	crystals := f.sim.Groups.Members(redSeven)
	session := f.sim.Session()

	require.True(t, f.sim.FireLight(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, LightRed))
	f.step(12)
	require.True(t, f.active(crystals[0]))

	f.sim.Respawn()
	assert.NotEqual(t, session, f.sim.Session())
	f.step(1)

	assert.Zero(t, f.sim.Sources.Len())
	assert.Empty(t, f.sim.Segments.Visible(nil))
	for _, eid := range crystals {
		assert.False(t, f.active(eid))
		assert.False(t, f.physics.Has(eid))
	}
	MakeQuery1[LightSensor](f.app.Commands()).Map(func(eid EntityId, s *LightSensor) bool {
		assert.False(t, s.Lit())
		assert.Zero(t, s.Activation.Elapsed())
		return true
	})
	MakeQuery1[BounceCue](f.app.Commands()).Map(func(eid EntityId, _ *BounceCue) bool {
		t.Errorf("bounce cue %v survived the reset", eid)
		return true
	})

	// A fresh beam can be fired after the reset.
	assert.True(t, f.sim.FireLight(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, LightRed))
}

func TestLightModule_BounceCues(t *testing.T) {
	f := newLightFixture(t, 1)
	var cues []BounceCueEvent
	f.sim.Events.Cues.Observe(func(ev BounceCueEvent) { cues = append(cues, ev) })

	require.True(t, f.sim.FireLight(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, LightRed))
	f.step(20)

	require.Len(t, cues, 2)
	assert.Equal(t, 1, cues[0].Bounces)
	assert.Equal(t, mgl32.Vec2{46, 0}, cues[0].Point)
	assert.Equal(t, 2, cues[1].Bounces)
	assert.Equal(t, mgl32.Vec2{-46, 0}, cues[1].Point)
	assert.Equal(t, f.sim.Sources.Active(LightRed).ID, cues[0].Source)
}

func TestLightModule_SwitchLevel(t *testing.T) {
	f := newLightFixture(t, 0)
	cmd := f.app.Commands()
	old := f.sim.Groups.Members(redSeven)

	err := f.sim.SwitchLevel(cmd, f.physics, 5)
	assert.ErrorIs(t, err, ErrLevelNotFound)

	var resets []LevelResetEvent
	f.sim.Events.Resets.Observe(func(ev LevelResetEvent) { resets = append(resets, ev) })
	require.NoError(t, f.sim.SwitchLevel(cmd, f.physics, 1))
	f.app.FlushCommands()

	index, level := f.sim.Level()
	assert.Equal(t, 1, index)
	assert.Equal(t, "twin", level.Name)
	require.Len(t, resets, 1)
	assert.Equal(t, ResetSwitching, resets[0].Kind)
	for _, eid := range old {
		assert.False(t, cmd.HasEntity(eid))
		assert.False(t, f.physics.Has(eid))
	}
	assert.Len(t, f.sim.Groups.Members(redSeven), 1)
}

func TestLightSim_PreviewPath(t *testing.T) {
	f := newLightFixture(t, 0)
	path := f.sim.PreviewPath(f.physics, mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, LightGreen)
	require.Len(t, path, 3)
	assert.Equal(t, mgl32.Vec2{46, 0}, path[1])
	assert.Zero(t, f.sim.Sources.Len(), "previews never fire")
	assert.Nil(t, f.sim.PreviewPath(f.physics, mgl32.Vec2{}, mgl32.Vec2{}, LightGreen))
}

func TestLightModule_RequiresTime(t *testing.T) {
	assert.Panics(t, func() {
		NewAppBuilder().UseModule(LightModule{}).Build()
	})
}

func TestNewLightModule(t *testing.T) {
	cfg, err := LoadConfig(DefaultConfigPath)
	require.NoError(t, err)

	mod, err := NewLightModule(cfg)
	require.NoError(t, err)
	assert.Len(t, mod.Levels, 2)
	assert.Equal(t, cfg.Simulation.LightSpeed, mod.Speed)

	cfg.Level.Index = 2
	_, err = NewLightModule(cfg)
	assert.ErrorIs(t, err, ErrLevelNotFound)
}
