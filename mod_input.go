package lightborne

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	Key1 int = iota
	Key2
	Key3
	Key4
	KeyR
	KeyEscape
	MouseButtonLeft
	MouseButtonRight

	numInputKeys
)

type InputModule struct{}

// Input is the device-independent input state. A platform layer (or a
// script) calls Press/Release and moves the cursor between frames; the
// Just* edges last for exactly one frame.
type Input struct {
	Pressed [numInputKeys]bool

	JustPressed  [numInputKeys]bool
	JustReleased [numInputKeys]bool

	// Cursor is in world coordinates.
	Cursor mgl32.Vec2

	queued []inputChange
}

type inputChange struct {
	key     int
	pressed bool
}

func (in *Input) Press(key int) {
	in.queued = append(in.queued, inputChange{key: key, pressed: true})
}

func (in *Input) Release(key int) {
	in.queued = append(in.queued, inputChange{key: key, pressed: false})
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func inputSystem(input *Input) {
	for key := range input.JustPressed {
		input.JustPressed[key] = false
		input.JustReleased[key] = false
	}

	for _, change := range input.queued {
		if change.key < 0 || change.key >= int(numInputKeys) {
			continue
		}
		if change.pressed {
			if !input.Pressed[change.key] {
				input.JustPressed[change.key] = true
			}
			input.Pressed[change.key] = true
		} else {
			if input.Pressed[change.key] {
				input.JustReleased[change.key] = true
			}
			input.Pressed[change.key] = false
		}
	}
	input.queued = input.queued[:0]
}

// PlayerLightInventory is the player's current shooting color and aim.
type PlayerLightInventory struct {
	CurrentColor LightColor
	// Position is where beams leave the player.
	Position mgl32.Vec2
	// Preview is the aim path while the fire button is held, nil otherwise.
	Preview []mgl32.Vec2
}

// AimAngle is the angle from the player to the cursor, for the aim
// indicator. Radians, counter-clockwise from +X.
func (inv *PlayerLightInventory) AimAngle(cursor mgl32.Vec2) float32 {
	d := cursor.Sub(inv.Position)
	return float32(math.Atan2(float64(d.Y()), float64(d.X())))
}

// PlayerModule wires input to the light simulation: 1-4 pick a color,
// holding the left button previews the path and releasing it fires. R
// respawns, Escape toggles pause in a stateful app.
type PlayerModule struct {
	Spawn mgl32.Vec2
}

func (mod PlayerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&PlayerLightInventory{Position: mod.Spawn})
	app.UseSystem(
		System(colorSwitchSystem).
			InStage(Update).
			RunAlways(),
	)
	lightSystem := System(playerLightSystem).InStage(Update)
	if app.Stateful() {
		lightSystem = lightSystem.InState(OnExecute(StatePlaying))
		app.UseSystem(
			System(pauseSystem).
				InStage(Update).
				RunAlways(),
		)
	}
	app.UseSystem(lightSystem)
}

func colorSwitchSystem(input *Input, inv *PlayerLightInventory) {
	for i, color := range AllLightColors {
		if input.JustPressed[Key1+i] {
			inv.CurrentColor = color
		}
	}
}

func playerLightSystem(input *Input, inv *PlayerLightInventory, sim *LightSim, physics *PhysicsWorld) {
	if input.JustPressed[KeyR] {
		sim.Respawn()
	}

	aim := input.Cursor.Sub(inv.Position)
	switch {
	case input.Pressed[MouseButtonLeft]:
		if sim.Sources.Active(inv.CurrentColor) != nil {
			inv.Preview = nil
			return
		}
		inv.Preview = sim.PreviewPath(physics, inv.Position, aim, inv.CurrentColor)
	case input.JustReleased[MouseButtonLeft]:
		inv.Preview = nil
		sim.FireLight(inv.Position, aim, inv.CurrentColor)
	default:
		inv.Preview = nil
	}
}

func pauseSystem(input *Input, cmd *Commands) {
	if !input.JustPressed[KeyEscape] {
		return
	}
	switch cmd.State() {
	case StatePlaying:
		cmd.ChangeState(StatePaused)
	case StatePaused:
		cmd.ChangeState(StatePlaying)
	}
}
