package lightborne

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

const (
	StatePlaying State = iota
	StatePaused
	StateExit
)

// White beams are traced first so the other colors reflect off this tick's
// white path rather than the previous one.
var traceOrder = [numLightColors]LightColor{LightWhite, LightGreen, LightRed, LightBlue}

// LightSim owns every piece of light simulation state. It is registered as
// a resource by LightModule; systems receive it by injection.
type LightSim struct {
	Sources         *LightSourceRegistry
	Segments        *LightSegmentCache
	Groups          *ActivatableCache
	Events          LightEvents
	PreviewDistance float32
	Logger          Logger

	tracer  Tracer
	sensors *sensorTable
	levels  []Level
	current int
	spawned []EntityId
	session uuid.UUID
}

func NewLightSim(speed float32, logger Logger) *LightSim {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &LightSim{
		Sources:         NewLightSourceRegistry(speed),
		Segments:        NewLightSegmentCache(),
		Groups:          NewActivatableCache(),
		PreviewDistance: DefaultPreviewDistance,
		Logger:          logger,
		sensors:         newSensorTable(),
		current:         -1,
		session:         uuid.New(),
	}
}

// FireLight spawns a beam for the player. It reports false when a beam of
// that color is already travelling or the aim has no direction.
func (sim *LightSim) FireLight(origin, direction mgl32.Vec2, color LightColor) bool {
	source, ok := sim.Sources.Fire(origin, direction, color)
	if !ok {
		sim.Logger.Debugf("fire %s from %v rejected", color, origin)
		return false
	}
	sim.Logger.Debugf("fired %s beam %s from %v toward %v", color, source.ID, origin, source.Direction)
	return true
}

// PreviewPath is the aim preview for a beam that has not been fired.
func (sim *LightSim) PreviewPath(backend RaycastBackend, origin, direction mgl32.Vec2, color LightColor) []mgl32.Vec2 {
	return PreviewPath(backend, origin, direction, color, sim.PreviewDistance)
}

// IsLightSensor reports whether eid is a sensor of the loaded level.
func (sim *LightSim) IsLightSensor(eid EntityId) bool {
	return sim.sensors.IsLightSensor(eid)
}

// SensorLit reports whether a beam struck the sensor on the last tick.
func (sim *LightSim) SensorLit(eid EntityId) bool {
	return sim.sensors.wasHit(eid)
}

func (sim *LightSim) Session() uuid.UUID {
	return sim.session
}

// Level returns the loaded level and its index, or nil before any load.
func (sim *LightSim) Level() (int, *Level) {
	if sim.current < 0 {
		return -1, nil
	}
	return sim.current, &sim.levels[sim.current]
}

func (sim *LightSim) SetLevels(levels []Level) {
	sim.levels = levels
}

// SwitchLevel tears down the loaded level, spawns level index and queues a
// switching reset for the next fixed tick.
func (sim *LightSim) SwitchLevel(cmd *Commands, physics *PhysicsWorld, index int) error {
	if index < 0 || index >= len(sim.levels) {
		return fmt.Errorf("%w: index %d of %d", ErrLevelNotFound, index, len(sim.levels))
	}

	sim.unloadLevel(cmd, physics)
	sim.spawned = spawnLevel(cmd, physics, sim, &sim.levels[index])
	sim.current = index
	sim.Logger.Infof("switched to level %d (%s), %d entities", index, sim.levels[index].Name, len(sim.spawned))

	sim.requestReset(ResetSwitching)
	return nil
}

// Respawn queues a reset of the loaded level.
func (sim *LightSim) Respawn() {
	sim.requestReset(ResetRespawn)
}

func (sim *LightSim) requestReset(kind ResetKind) {
	sim.session = uuid.New()
	sim.Events.Resets.Send(LevelResetEvent{Kind: kind, Level: sim.current, Session: sim.session})
}

func (sim *LightSim) unloadLevel(cmd *Commands, physics *PhysicsWorld) {
	for _, eid := range sim.spawned {
		physics.Remove(eid)
		cmd.RemoveEntity(eid)
	}
	sim.spawned = nil
	sim.sensors.clear()
	sim.Groups.Clear()
}

// reset drops all transient state: beams, segments, sensor timers, pending
// toggles and cues. Activatables go back to their initial state.
func (sim *LightSim) reset(cmd *Commands, physics *PhysicsWorld, ev LevelResetEvent) {
	cleared := sim.Sources.ClearAll()
	sim.Segments.ClearAll()
	sim.sensors.resetHits()
	sim.Events.Triggered.Clear()
	sim.Events.Cues.Clear()

	MakeQuery1[LightSensor](cmd).Map(func(eid EntityId, sensor *LightSensor) bool {
		sensor.Reset()
		return true
	})
	MakeQuery1[BounceCue](cmd).Map(func(eid EntityId, cue *BounceCue) bool {
		cmd.RemoveEntity(eid)
		return true
	})
	reverted := sim.Groups.Reset(cmd, physics)

	sim.Logger.Infof("level reset (%s, session %s): cleared %d beams, reverted %d activatables",
		ev.Kind, ev.Session, cleared, reverted)
}

func (sim *LightSim) traceAll(cmd *Commands, physics *PhysicsWorld, tick uint64) {
	sim.sensors.resetHits()

	for _, color := range traceOrder {
		source := sim.Sources.Active(color)
		if source == nil {
			sim.Segments.Clear(color)
			continue
		}

		trace := sim.tracer.Trace(source, physics, sim.sensors)
		sim.Segments.Write(color, trace.Points)
		sim.sensors.markHit(trace.HitSensors)

		if source.observeBounces(trace.Bounces) {
			point := trace.Points[trace.Bounces]
			sim.Events.Cues.Send(BounceCueEvent{
				Source:  source.ID,
				Color:   color,
				Bounces: trace.Bounces,
				Point:   point,
				Tick:    tick,
			})
			cmd.AddEntity(
				&BounceCue{Color: color, Point: point},
				&LifetimeComponent{TimeLeft: bounceCueLifetime},
			)
		}
	}
}

func (sim *LightSim) updateSensors(cmd *Commands, dt time.Duration, tick uint64) {
	MakeQuery1[LightSensor](cmd).Map(func(eid EntityId, sensor *LightSensor) bool {
		if sensor.Update(sim.sensors.wasHit(eid), dt) {
			sim.Logger.Debugf("sensor %v triggered group %v", eid, sensor.Key)
			sim.Events.Triggered.Send(GroupTriggeredEvent{Key: sensor.Key, Sensor: eid, Tick: tick})
		}
		return true
	})
}

func (sim *LightSim) propagateToggles(cmd *Commands, physics *PhysicsWorld) {
	sim.Events.Triggered.Drain(func(ev GroupTriggeredEvent) {
		n := sim.Groups.Toggle(cmd, physics, ev.Key)
		sim.Logger.Debugf("group %v toggled %d members", ev.Key, n)
	})
}

// BounceCue is a short-lived marker entity for VFX and audio at the point
// where a beam reached a new bounce count.
type BounceCue struct {
	Color LightColor
	Point mgl32.Vec2
}

const bounceCueLifetime = 250 * time.Millisecond

// LightModule installs the light simulation. Fixed-stage order per tick:
// reset handling, beam growth, tracing, sensors, then toggle propagation, so
// colliders changed by a toggle are seen by the next tick's trace.
type LightModule struct {
	Speed           float32
	PreviewDistance float32
	Levels          []Level
	LevelIndex      int
	Snapshot        bool
}

// NewLightModule loads the level pack named by cfg and checks the start
// index before anything is spawned.
func NewLightModule(cfg Config) (LightModule, error) {
	levels, err := LoadLevels(cfg.Level.Path)
	if err != nil {
		return LightModule{}, err
	}
	if cfg.Level.Index >= len(levels) {
		return LightModule{}, fmt.Errorf("%w: index %d of %d in %s", ErrLevelNotFound, cfg.Level.Index, len(levels), cfg.Level.Path)
	}
	return LightModule{
		Speed:           cfg.Simulation.LightSpeed,
		PreviewDistance: cfg.Simulation.PreviewDistance,
		Levels:          levels,
		LevelIndex:      cfg.Level.Index,
		Snapshot:        cfg.Debug.Snapshot,
	}, nil
}

func (m LightModule) Install(app *App, cmd *Commands) {
	physics := Resource[PhysicsWorld](app)
	if physics == nil {
		physics = NewPhysicsWorld()
		cmd.AddResources(physics)
	}
	if Resource[FixedTime](app) == nil {
		panic("LightModule requires TimeModule")
	}

	sim := NewLightSim(m.Speed, app.Logger())
	if m.PreviewDistance > 0 {
		sim.PreviewDistance = m.PreviewDistance
	}
	beamIds := make([]EntityId, len(sim.Segments.Slots(LightWhite)))
	for i := range beamIds {
		beamIds[i] = cmd.ReserveEntity()
	}
	sim.Segments.AttachPhysics(physics, beamIds)
	cmd.AddResources(sim)

	if len(m.Levels) > 0 {
		sim.SetLevels(m.Levels)
		if err := sim.SwitchLevel(cmd, physics, m.LevelIndex); err != nil {
			panic(err)
		}
	}

	m.schedule(app, FixedPreUpdate, lightResetSystem)
	m.schedule(app, FixedUpdate, lightTickSystem)
	m.schedule(app, FixedUpdate, lightTraceSystem)
	m.schedule(app, FixedUpdate, lightSensorSystem)
	m.schedule(app, FixedPostUpdate, lightToggleSystem)

	if m.Snapshot {
		cmd.AddResources(&LightSnapshotContainer{})
		m.schedule(app, FixedPostUpdate, lightSnapshotSystem)
	}
}

// Light systems only run while playing in a stateful app.
func (m LightModule) schedule(app *App, stage Stage, system systemFn) {
	sched := System(system).InStage(stage)
	if app.Stateful() {
		sched = sched.InState(OnExecute(StatePlaying))
	}
	app.UseSystem(sched)
}

func lightResetSystem(sim *LightSim, cmd *Commands, physics *PhysicsWorld) {
	sim.Events.Resets.Drain(func(ev LevelResetEvent) {
		sim.reset(cmd, physics, ev)
	})
}

func lightTickSystem(sim *LightSim) {
	sim.Sources.Tick()
}

func lightTraceSystem(sim *LightSim, cmd *Commands, physics *PhysicsWorld, fixed *FixedTime) {
	sim.traceAll(cmd, physics, fixed.Tick)
}

func lightSensorSystem(sim *LightSim, cmd *Commands, fixed *FixedTime) {
	sim.updateSensors(cmd, fixed.Step, fixed.Tick)
}

func lightToggleSystem(sim *LightSim, cmd *Commands, physics *PhysicsWorld) {
	sim.propagateToggles(cmd, physics)
}
