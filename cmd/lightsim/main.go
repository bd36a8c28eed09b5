package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gekko3d/lightborne"
	"github.com/go-gl/mathgl/mgl32"
)

// shot is one scripted player action: pick a color, aim along a direction
// from the spawn point and release.
type shot struct {
	color lightborne.LightColor
	dir   mgl32.Vec2
}

type shotList []shot

func (s *shotList) String() string {
	parts := make([]string, len(*s))
	for i, sh := range *s {
		parts[i] = fmt.Sprintf("%s:%g,%g", sh.color, sh.dir.X(), sh.dir.Y())
	}
	return strings.Join(parts, " ")
}

// Set parses "color:dx,dy".
func (s *shotList) Set(value string) error {
	name, vec, ok := strings.Cut(value, ":")
	if !ok {
		return fmt.Errorf("shot %q: want color:dx,dy", value)
	}
	color, err := lightborne.ParseLightColor(name)
	if err != nil {
		return err
	}
	xs, ys, ok := strings.Cut(vec, ",")
	if !ok {
		return fmt.Errorf("shot %q: want color:dx,dy", value)
	}
	x, err := strconv.ParseFloat(xs, 32)
	if err != nil {
		return fmt.Errorf("shot %q: %w", value, err)
	}
	y, err := strconv.ParseFloat(ys, 32)
	if err != nil {
		return fmt.Errorf("shot %q: %w", value, err)
	}
	*s = append(*s, shot{color: color, dir: mgl32.Vec2{float32(x), float32(y)}})
	return nil
}

func main() {
	configPath := flag.String("config", lightborne.DefaultConfigPath, "Config file")
	ticks := flag.Int("ticks", 256, "Fixed ticks to simulate")
	pngPath := flag.String("png", "", "Write a snapshot of the last tick to this PNG file")
	scale := flag.Float64("scale", 4, "Snapshot pixels per world unit")
	var shots shotList
	flag.Var(&shots, "shot", "Scripted shot color:dx,dy, may be repeated")
	flag.Parse()

	if err := run(*configPath, *ticks, shots, *pngPath, float32(*scale)); err != nil {
		fmt.Fprintln(os.Stderr, "lightsim:", err)
		os.Exit(1)
	}
}

func run(configPath string, ticks int, shots shotList, pngPath string, scale float32) error {
	cfg, err := lightborne.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if pngPath != "" {
		cfg.Debug.Snapshot = true
	}

	lightModule, err := lightborne.NewLightModule(cfg)
	if err != nil {
		return err
	}
	spawn := lightModule.Levels[lightModule.LevelIndex].Spawn

	app := lightborne.NewAppBuilder().
		UseStates(lightborne.StatePlaying, lightborne.StateExit).
		UseModule(
			lightborne.LoggingModule{Prefix: "lightsim", Debug: cfg.Debug.Log},
			lightborne.TimeModule{FixedHz: cfg.Simulation.FixedHz},
			lightborne.PhysicsModule{},
			lightborne.InputModule{},
			lightborne.LifecycleModule{},
			lightModule,
			lightborne.PlayerModule{Spawn: spawn},
		).
		Build()

	logger := app.Logger()
	sim := lightborne.Resource[lightborne.LightSim](app)
	sim.Events.Triggered.Observe(func(ev lightborne.GroupTriggeredEvent) {
		logger.Infof("tick %d: sensor %v triggered group %v", ev.Tick, ev.Sensor, ev.Key)
	})
	sim.Events.Cues.Observe(func(ev lightborne.BounceCueEvent) {
		logger.Infof("tick %d: %s beam reached %d bounces at %v", ev.Tick, ev.Color, ev.Bounces, ev.Point)
	})

	input := lightborne.Resource[lightborne.Input](app)
	step := lightborne.Resource[lightborne.FixedTime](app).Step

	// Each shot takes two frames: select and press, then release.
	for frame := 0; frame < ticks; frame++ {
		if k := frame / 2; k < len(shots) {
			sh := shots[k]
			if frame%2 == 0 {
				input.Press(lightborne.Key1 + int(sh.color))
				input.Press(lightborne.MouseButtonLeft)
				input.Cursor = spawn.Add(sh.dir)
			} else {
				input.Release(lightborne.Key1 + int(sh.color))
				input.Release(lightborne.MouseButtonLeft)
			}
		}
		app.Step(step)
	}

	for _, key := range sim.Groups.Keys() {
		logger.Infof("group %v: %d members", key, len(sim.Groups.Members(key)))
	}

	if pngPath == "" {
		return nil
	}
	snap := lightborne.Resource[lightborne.LightSnapshotContainer](app).Get()
	if snap == nil {
		return fmt.Errorf("no snapshot was taken")
	}
	bounds, ok := lightborne.Resource[lightborne.PhysicsWorld](app).Bounds()
	if !ok {
		return fmt.Errorf("level has no geometry to frame")
	}
	return writeSnapshotFile(pngPath, snap, lightborne.SnapshotImageOptions{
		Bounds:    bounds,
		Scale:     scale,
		BeamWidth: 2,
		Label:     true,
	})
}

// writeSnapshotFile encodes snap to path, including any error from closing it.
func writeSnapshotFile(path string, snap *lightborne.LightSnapshot, opts lightborne.SnapshotImageOptions) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := lightborne.WriteSnapshotPNG(out, snap, opts); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
