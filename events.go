package lightborne

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// GroupTriggeredEvent is sent by a light sensor whose activation timer
// just finished.
type GroupTriggeredEvent struct {
	Key    GroupKey
	Sensor EntityId
	Tick   uint64
}

// BounceCueEvent marks a beam reaching more reflections than ever before.
// Audio and VFX layers key their one-shot cues off it.
type BounceCueEvent struct {
	Source  uuid.UUID
	Color   LightColor
	Bounces int
	Point   mgl32.Vec2
	Tick    uint64
}

type ResetKind int

const (
	ResetRespawn ResetKind = iota
	ResetSwitching
)

func (k ResetKind) String() string {
	if k == ResetSwitching {
		return "switching"
	}
	return "respawn"
}

// LevelResetEvent asks the simulation to drop every transient state. Both
// kinds are handled the same way.
type LevelResetEvent struct {
	Kind    ResetKind
	Level   int
	Session uuid.UUID
}

// EventQueue is a FIFO drained once per tick by its single consumer.
type EventQueue[T any] struct {
	pending   []T
	observers []func(T)
}

func (q *EventQueue[T]) Send(ev T) {
	q.pending = append(q.pending, ev)
	for _, fn := range q.observers {
		fn(ev)
	}
}

// Observe registers fn to see every event as it is sent.
func (q *EventQueue[T]) Observe(fn func(T)) {
	q.observers = append(q.observers, fn)
}

// Drain hands every pending event to fn in send order. Events sent by fn
// are delivered in the same drain.
func (q *EventQueue[T]) Drain(fn func(T)) {
	for i := 0; i < len(q.pending); i++ {
		fn(q.pending[i])
	}
	clear(q.pending)
	q.pending = q.pending[:0]
}

func (q *EventQueue[T]) Len() int {
	return len(q.pending)
}

func (q *EventQueue[T]) Clear() {
	clear(q.pending)
	q.pending = q.pending[:0]
}

// LightEvents is the explicit event bus of the light simulation.
type LightEvents struct {
	Triggered EventQueue[GroupTriggeredEvent]
	Cues      EventQueue[BounceCueEvent]
	Resets    EventQueue[LevelResetEvent]
}
