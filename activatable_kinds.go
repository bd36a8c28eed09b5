package lightborne

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// StaticBody is the placement of a level entity and the collider it
// registers in the physics world while it is solid.
type StaticBody struct {
	Position mgl32.Vec2
	Collider Collider
}

// Sprite is the visual state a renderer reads. Only the fields the
// simulation drives are kept.
type Sprite struct {
	TileIndex int
	Alpha     float32
}

type Crystal struct {
	Color LightColor
}

type Door struct {
	Open bool
}

const (
	crystalActiveAlpha   = 1.0
	crystalInactiveAlpha = 0.1

	doorClosedTile  = 0
	doorOpenTile    = 1
	doorClosedAlpha = 1.0
	doorOpenAlpha   = 0.25
)

func crystalSprite(active bool) Sprite {
	if active {
		return Sprite{Alpha: crystalActiveAlpha}
	}
	return Sprite{Alpha: crystalInactiveAlpha}
}

func doorSprite(active bool) Sprite {
	if active {
		return Sprite{TileIndex: doorClosedTile, Alpha: doorClosedAlpha}
	}
	return Sprite{TileIndex: doorOpenTile, Alpha: doorOpenAlpha}
}

// syncActivatable makes the collider and sprite of eid agree with active:
// an active member is solid and fully visible, an inactive one has no
// collider and is faded.
func syncActivatable(cmd *Commands, physics *PhysicsWorld, eid EntityId, active bool) {
	body := GetComponent[StaticBody](cmd, eid)
	sprite := GetComponent[Sprite](cmd, eid)
	if body == nil || sprite == nil {
		panic(fmt.Sprintf("activatable %v has no body or sprite", eid))
	}

	if GetComponent[Crystal](cmd, eid) != nil {
		*sprite = crystalSprite(active)
	} else if door := GetComponent[Door](cmd, eid); door != nil {
		door.Open = !active
		*sprite = doorSprite(active)
	} else {
		panic(fmt.Sprintf("activatable %v is neither a crystal nor a door", eid))
	}

	if physics == nil {
		return
	}
	if active {
		physics.Insert(eid, body.Position, body.Collider)
	} else {
		physics.Remove(eid)
	}
}
