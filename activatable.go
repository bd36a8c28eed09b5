package lightborne

import (
	"fmt"
	"maps"
	"slices"
)

// GroupKey links light sensors to the crystals and doors they control.
type GroupKey struct {
	Color LightColor
	ID    int32
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s/%d", k.Color, k.ID)
}

// Activatable is carried by every entity that toggle events can switch.
type Activatable struct {
	Key        GroupKey
	InitActive bool
	Active     bool
}

func NewActivatable(key GroupKey, initActive bool) Activatable {
	return Activatable{Key: key, InitActive: initActive, Active: initActive}
}

// ActivatableCache maps group keys to their member entities. Membership is
// recorded once at spawn; the cache never owns the entities.
type ActivatableCache struct {
	table map[GroupKey]map[EntityId]struct{}
}

func NewActivatableCache() *ActivatableCache {
	return &ActivatableCache{table: make(map[GroupKey]map[EntityId]struct{})}
}

// Register adds eid to the group key. It is called once per entity at spawn.
func (c *ActivatableCache) Register(key GroupKey, eid EntityId) {
	members, ok := c.table[key]
	if !ok {
		members = make(map[EntityId]struct{})
		c.table[key] = members
	}
	members[eid] = struct{}{}
}

// Members returns the cached members of key in entity order.
func (c *ActivatableCache) Members(key GroupKey) []EntityId {
	return slices.Sorted(maps.Keys(c.table[key]))
}

// Keys returns every registered group key.
func (c *ActivatableCache) Keys() []GroupKey {
	return slices.SortedFunc(maps.Keys(c.table), func(a, b GroupKey) int {
		if a.Color != b.Color {
			return int(a.Color) - int(b.Color)
		}
		return int(a.ID) - int(b.ID)
	})
}

func (c *ActivatableCache) Len() int {
	n := 0
	for _, members := range c.table {
		n += len(members)
	}
	return n
}

// Clear forgets every group, used when a level is unloaded.
func (c *ActivatableCache) Clear() {
	clear(c.table)
}

// Toggle flips every live member of key and brings its collider and sprite
// in line with the new state. Members that no longer exist are pruned. An
// unknown key is a no-op. It returns the number of members flipped.
func (c *ActivatableCache) Toggle(cmd *Commands, physics *PhysicsWorld, key GroupKey) int {
	return c.apply(cmd, physics, key, func(a *Activatable) { a.Active = !a.Active })
}

// Reset reverts every member of every group to its initial state.
func (c *ActivatableCache) Reset(cmd *Commands, physics *PhysicsWorld) int {
	n := 0
	for _, key := range c.Keys() {
		n += c.apply(cmd, physics, key, func(a *Activatable) { a.Active = a.InitActive })
	}
	return n
}

func (c *ActivatableCache) apply(cmd *Commands, physics *PhysicsWorld, key GroupKey, change func(*Activatable)) int {
	members, ok := c.table[key]
	if !ok {
		return 0
	}

	n := 0
	for _, eid := range slices.Sorted(maps.Keys(members)) {
		activatable := GetComponent[Activatable](cmd, eid)
		if activatable == nil {
			cmd.Logger().Debugf("pruning despawned member %v of group %v", eid, key)
			delete(members, eid)
			continue
		}
		change(activatable)
		syncActivatable(cmd, physics, eid, activatable.Active)
		n++
	}
	if len(members) == 0 {
		delete(c.table, key)
	}
	return n
}

func (c *ActivatableCache) isMember(eid EntityId) bool {
	for _, members := range c.table {
		if _, ok := members[eid]; ok {
			return true
		}
	}
	return false
}
