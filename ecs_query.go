package lightborne

import (
	"reflect"
)

// Queries iterate every archetype holding all required components. A
// component passed as optional may be missing, in which case the callback
// receives nil for it. Returning false from the callback stops iteration.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		comps1, ok1 := archetypeColumn[A](arch, id1, opt)
		if !ok1 {
			continue
		}
		for entityId, row := range arch.entities {
			if !m(entityId, columnAt(comps1, row)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		comps1, ok1 := archetypeColumn[A](arch, id1, opt)
		comps2, ok2 := archetypeColumn[B](arch, id2, opt)
		if !ok1 || !ok2 {
			continue
		}
		for entityId, row := range arch.entities {
			if !m(entityId, columnAt(comps1, row), columnAt(comps2, row)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	id2 := identifyComponent[B](q.ecs)
	id3 := identifyComponent[C](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		comps1, ok1 := archetypeColumn[A](arch, id1, opt)
		comps2, ok2 := archetypeColumn[B](arch, id2, opt)
		comps3, ok3 := archetypeColumn[C](arch, id3, opt)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		for entityId, row := range arch.entities {
			if !m(entityId, columnAt(comps1, row), columnAt(comps2, row), columnAt(comps3, row)) {
				return
			}
		}
	}
}

// GetComponent returns the entity's component of type T, or nil when the
// entity is gone or does not carry one. The pointer is invalidated by the
// next structural change (flush).
func GetComponent[T any](cmd *Commands, entityId EntityId) *T {
	var zero T
	val, ok := cmd.app.ecs.getComponent(entityId, reflect.TypeOf(zero))
	if !ok {
		return nil
	}
	return val.Addr().Interface().(*T)
}

// archetypeColumn returns the typed column for id. A nil column with ok=true
// means the component is optional and absent from this archetype.
func archetypeColumn[T any](arch *archetype, id componentId, opt set[componentId]) ([]T, bool) {
	if data, ok := arch.componentData[id]; ok {
		return data.([]T), true
	}
	if _, ok := opt[id]; ok {
		return nil, true
	}
	return nil, false
}

func columnAt[T any](column []T, r row) *T {
	if column == nil {
		return nil
	}
	return &column[r]
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	return res
}

func identifyComponent[A any](ecs *Ecs) componentId {
	var a A
	return ecs.getComponentId(reflect.TypeOf(a))
}
