package lightborne

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// LevelFileDef is the on-disk form of a level pack.
type LevelFileDef struct {
	Levels []LevelDef `yaml:"levels"`
}

// LevelDef defines the initial state of one room.
type LevelDef struct {
	Name     string       `yaml:"name"`
	Spawn    []float32    `yaml:"spawn"`
	Terrain  []TerrainDef `yaml:"terrain"`
	Entities []EntityDef  `yaml:"entities"`
}

// TerrainDef is a solid axis-aligned block.
type TerrainDef struct {
	Pos         []float32 `yaml:"pos"`
	HalfExtents []float32 `yaml:"half_extents"`
}

// EntityDef is a level entity as authored. Group fields are pointers so a
// missing value can be told apart from zero.
type EntityDef struct {
	Kind         string    `yaml:"kind"`
	Pos          []float32 `yaml:"pos"`
	ID           *int32    `yaml:"id"`
	Active       *bool     `yaml:"active"`
	Color        string    `yaml:"color"`
	ActivationMs int       `yaml:"activation_ms"`
}

type EntityKind int

const (
	KindButton EntityKind = iota
	KindRedCrystal
	KindGreenCrystal
	KindDoor
)

var entityKindNames = map[string]EntityKind{
	"Button":       KindButton,
	"RedCrystal":   KindRedCrystal,
	"GreenCrystal": KindGreenCrystal,
	"Door":         KindDoor,
}

func (k EntityKind) String() string {
	switch k {
	case KindButton:
		return "Button"
	case KindRedCrystal:
		return "RedCrystal"
	case KindGreenCrystal:
		return "GreenCrystal"
	case KindDoor:
		return "Door"
	}
	return fmt.Sprintf("EntityKind(%d)", int(k))
}

// Level is a validated LevelDef with every identifier resolved.
type Level struct {
	Name     string
	Spawn    mgl32.Vec2
	Terrain  []TerrainBlock
	Entities []LevelEntity
}

type TerrainBlock struct {
	Position    mgl32.Vec2
	HalfExtents mgl32.Vec2
}

type LevelEntity struct {
	Kind       EntityKind
	Position   mgl32.Vec2
	Key        GroupKey
	InitActive bool
	Activation time.Duration
}

// Authored entities are one 8x8 tile.
const entityHalfExtent = 4

// LoadLevels reads and validates a level pack.
func LoadLevels(path string) ([]Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level file %s: %w", path, err)
	}
	levels, err := ParseLevels(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return levels, nil
}

// ParseLevels decodes and validates every level in data. Any malformed
// entity fails the whole pack.
func ParseLevels(data []byte) ([]Level, error) {
	var file LevelFileDef
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	if len(file.Levels) == 0 {
		return nil, fmt.Errorf("%w: no levels", ErrInvalidLevel)
	}

	levels := make([]Level, 0, len(file.Levels))
	for i, def := range file.Levels {
		level, err := def.resolve()
		if err != nil {
			return nil, fmt.Errorf("level %d (%s): %w", i, def.Name, err)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func (def LevelDef) resolve() (Level, error) {
	level := Level{Name: def.Name}

	if def.Spawn != nil {
		spawn, err := vec2Field(def.Spawn, "spawn")
		if err != nil {
			return Level{}, err
		}
		level.Spawn = spawn
	}

	for i, t := range def.Terrain {
		pos, err := vec2Field(t.Pos, "pos")
		if err != nil {
			return Level{}, fmt.Errorf("terrain %d: %w", i, err)
		}
		half, err := vec2Field(t.HalfExtents, "half_extents")
		if err != nil {
			return Level{}, fmt.Errorf("terrain %d: %w", i, err)
		}
		if half.X() <= 0 || half.Y() <= 0 {
			return Level{}, fmt.Errorf("%w: terrain %d: half_extents must be positive", ErrInvalidLevel, i)
		}
		level.Terrain = append(level.Terrain, TerrainBlock{Position: pos, HalfExtents: half})
	}

	for i, e := range def.Entities {
		entity, err := e.resolve()
		if err != nil {
			return Level{}, fmt.Errorf("entity %d (%s): %w", i, e.Kind, err)
		}
		level.Entities = append(level.Entities, entity)
	}
	return level, nil
}

func (def EntityDef) resolve() (LevelEntity, error) {
	kind, ok := entityKindNames[def.Kind]
	if !ok {
		return LevelEntity{}, fmt.Errorf("%w: unknown entity kind %q", ErrInvalidLevel, def.Kind)
	}
	pos, err := vec2Field(def.Pos, "pos")
	if err != nil {
		return LevelEntity{}, err
	}
	if def.ID == nil {
		return LevelEntity{}, fmt.Errorf("%w: missing field %q", ErrInvalidLevel, "id")
	}

	color, err := def.groupColor(kind)
	if err != nil {
		return LevelEntity{}, err
	}
	entity := LevelEntity{
		Kind:     kind,
		Position: pos,
		Key:      GroupKey{Color: color, ID: *def.ID},
	}

	switch kind {
	case KindButton:
		if def.ActivationMs < 0 {
			return LevelEntity{}, fmt.Errorf("%w: activation_ms must not be negative", ErrInvalidLevel)
		}
		entity.Activation = time.Duration(def.ActivationMs) * time.Millisecond
		if entity.Activation == 0 {
			entity.Activation = DefaultSensorActivation
		}
	default:
		if def.Active == nil {
			return LevelEntity{}, fmt.Errorf("%w: missing field %q", ErrInvalidLevel, "active")
		}
		entity.InitActive = *def.Active
	}
	return entity, nil
}

// groupColor resolves the color half of the group key. Crystals carry it in
// their kind; buttons and doors must name it.
func (def EntityDef) groupColor(kind EntityKind) (LightColor, error) {
	var implied LightColor
	switch kind {
	case KindRedCrystal:
		implied = LightRed
	case KindGreenCrystal:
		implied = LightGreen
	default:
		if def.Color == "" {
			return 0, fmt.Errorf("%w: missing field %q", ErrInvalidLevel, "color")
		}
		color, err := ParseLightColor(def.Color)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
		return color, nil
	}

	if def.Color != "" {
		color, err := ParseLightColor(def.Color)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
		if color != implied {
			return 0, fmt.Errorf("%w: %s cannot have color %s", ErrInvalidLevel, kind, color)
		}
	}
	return implied, nil
}

func vec2Field(v []float32, name string) (mgl32.Vec2, error) {
	if len(v) != 2 {
		return mgl32.Vec2{}, fmt.Errorf("%w: field %q needs 2 components, got %d", ErrInvalidLevel, name, len(v))
	}
	return mgl32.Vec2{v[0], v[1]}, nil
}

// spawnLevel creates the entities of level and registers their colliders.
// It returns the spawned entity ids so the level can be torn down later.
func spawnLevel(cmd *Commands, physics *PhysicsWorld, sim *LightSim, level *Level) []EntityId {
	var spawned []EntityId

	for _, block := range level.Terrain {
		body := StaticBody{
			Position: block.Position,
			Collider: NewCuboidCollider(block.HalfExtents.X(), block.HalfExtents.Y(), terrainGroups),
		}
		eid := cmd.AddEntity(&body)
		physics.Insert(eid, body.Position, body.Collider)
		spawned = append(spawned, eid)
	}

	for _, entity := range level.Entities {
		spawned = append(spawned, spawnLevelEntity(cmd, physics, sim, entity))
	}
	return spawned
}

func spawnLevelEntity(cmd *Commands, physics *PhysicsWorld, sim *LightSim, entity LevelEntity) EntityId {
	switch entity.Kind {
	case KindButton:
		collider := NewCuboidCollider(entityHalfExtent, entityHalfExtent, lightSensorGroups)
		collider.Sensor = true
		body := StaticBody{Position: entity.Position, Collider: collider}
		sensor := NewLightSensor(entity.Key, entity.Activation)
		eid := cmd.AddEntity(&body, &sensor)
		physics.Insert(eid, body.Position, body.Collider)
		sim.sensors.add(eid, body.Position)
		return eid

	case KindRedCrystal, KindGreenCrystal:
		body := StaticBody{
			Position: entity.Position,
			Collider: NewCuboidCollider(entityHalfExtent, entityHalfExtent, terrainGroups),
		}
		activatable := NewActivatable(entity.Key, entity.InitActive)
		sprite := crystalSprite(entity.InitActive)
		eid := cmd.AddEntity(&body, &activatable, &sprite, &Crystal{Color: entity.Key.Color})
		if entity.InitActive {
			physics.Insert(eid, body.Position, body.Collider)
		}
		sim.Groups.Register(entity.Key, eid)
		return eid

	case KindDoor:
		body := StaticBody{
			Position: entity.Position,
			Collider: NewCuboidCollider(entityHalfExtent, entityHalfExtent, terrainGroups),
		}
		activatable := NewActivatable(entity.Key, entity.InitActive)
		sprite := doorSprite(entity.InitActive)
		eid := cmd.AddEntity(&body, &activatable, &sprite, &Door{Open: !entity.InitActive})
		if entity.InitActive {
			physics.Insert(eid, body.Position, body.Collider)
		}
		sim.Groups.Register(entity.Key, eid)
		return eid
	}
	panic(fmt.Sprintf("unknown entity kind %v", entity.Kind))
}
