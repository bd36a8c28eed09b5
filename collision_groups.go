package lightborne

// Group is a bit in a collision membership/filter mask.
type Group uint32

const (
	GroupPlayerCollider Group = 1 << iota
	GroupPlayerSensor
	GroupTerrain
	GroupLightRay
	GroupLightSensor
	GroupHurtBox
	GroupWhiteRay
	GroupStrand
	GroupBlueRay

	GroupNone Group = 0
	GroupAll  Group = ^Group(0)
)

// CollisionGroups pairs what a shape is with what it is willing to touch.
type CollisionGroups struct {
	Memberships Group
	Filter      Group
}

func NewCollisionGroups(memberships, filter Group) CollisionGroups {
	return CollisionGroups{Memberships: memberships, Filter: filter}
}

// Interacts is symmetric: each side must be in the other's filter.
func (g CollisionGroups) Interacts(other CollisionGroups) bool {
	return g.Memberships&other.Filter != 0 && other.Memberships&g.Filter != 0
}

var (
	terrainGroups     = NewCollisionGroups(GroupTerrain, GroupLightRay|GroupPlayerCollider|GroupWhiteRay|GroupBlueRay)
	lightSensorGroups = NewCollisionGroups(GroupLightSensor, GroupLightRay|GroupWhiteRay|GroupBlueRay)
	whiteBeamGroups   = NewCollisionGroups(GroupWhiteRay, GroupTerrain|GroupLightSensor|GroupLightRay|GroupBlueRay)
)
