package lightborne

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_changeState(t *testing.T) {
	app := &App{
		stateful:     true,
		initialState: 1,
		state:        1,
		finalState:   2,
	}

	app.changeState(2)
	assert.Equal(t, State(2), app.nextState)
	assert.True(t, app.stateTransitioning)

	app.executeChangeState(2)
	assert.Equal(t, State(2), app.state)
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	assert.Same(t, resource2, Resource[MockResource2](app))
	assert.Panics(t, func() { app.addResources(MockResource1{}) }, "resources must be pointers")
}

type stageRecorder struct {
	calls []string
}

type recorderModule struct{}

func (recorderModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&stageRecorder{})
	for _, stage := range []Stage{PreUpdate, FixedPreUpdate, FixedUpdate, FixedPostUpdate, Update} {
		name := stage.Name
		app.UseSystem(System(func(r *stageRecorder) {
			r.calls = append(r.calls, name)
		}).InStage(stage))
	}
}

func TestApp_StepRunsFixedBlockPerTick(t *testing.T) {
	app := NewAppBuilder().
		UseModule(TimeModule{FixedHz: 100}, recorderModule{}).
		Build()
	rec := Resource[stageRecorder](app)
	ft := Resource[FixedTime](app)

	app.Step(25 * time.Millisecond)
	assert.Equal(t, []string{
		"PreUpdate",
		"FixedPreUpdate", "FixedUpdate", "FixedPostUpdate",
		"FixedPreUpdate", "FixedUpdate", "FixedPostUpdate",
		"Update",
	}, rec.calls)
	assert.Equal(t, uint64(2), ft.Tick)

	rec.calls = nil
	app.Step(5 * time.Millisecond)
	assert.Equal(t, []string{"PreUpdate", "FixedPreUpdate", "FixedUpdate", "FixedPostUpdate", "Update"}, rec.calls,
		"leftover 5ms plus 5ms completes one tick")
	assert.Equal(t, uint64(3), ft.Tick)

	rec.calls = nil
	app.Step(time.Millisecond)
	assert.Equal(t, []string{"PreUpdate", "Update"}, rec.calls)
}

func TestApp_FixedTimeDropsBacklog(t *testing.T) {
	ft := NewFixedTime(100)

	steps := ft.accumulate(time.Second)
	assert.Equal(t, defaultMaxStepsInFrame, steps)
	assert.Zero(t, ft.accumulator, "the backlog is dropped")
}

func TestApp_UnresolvedSystemArgumentPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(*MockResource1) {}).InStage(Update))

	assert.Panics(t, func() { app.Step(time.Millisecond) })
}

func TestApp_StatefulSystemsFollowState(t *testing.T) {
	const (
		stateA State = iota
		stateB
		stateEnd
	)
	var executedA, enteredB int

	app := NewAppBuilder().UseStates(stateA, stateEnd).Build()
	app.UseSystem(System(func() { executedA++ }).InState(OnExecute(stateA)))
	app.UseSystem(System(func() { enteredB++ }).InState(OnEnter(stateB)))
	app.UseSystem(System(func(cmd *Commands) {
		if cmd.State() == stateA {
			cmd.ChangeState(stateB)
		}
	}).InStage(Update).RunAlways())

	app.Step(time.Millisecond)
	assert.Equal(t, 1, executedA)
	assert.Equal(t, stateB, app.State())
	assert.Equal(t, 1, enteredB)

	app.Step(time.Millisecond)
	assert.Equal(t, 1, executedA, "state A systems stop running after the transition")
}

func TestApp_CommandsAreBufferedUntilStageFlush(t *testing.T) {
	app := NewAppBuilder().Build()
	var spawned EntityId
	var aliveDuringStage bool

	app.UseSystem(System(func(cmd *Commands) {
		if spawned == 0 {
			spawned = cmd.AddEntity(&Sprite{Alpha: 1})
			aliveDuringStage = cmd.HasEntity(spawned)
		}
	}).InStage(PreUpdate))

	app.Step(time.Millisecond)
	assert.False(t, aliveDuringStage)
	assert.True(t, app.Commands().HasEntity(spawned))

	app.Commands().RemoveEntity(spawned)
	app.FlushCommands()
	assert.False(t, app.Commands().HasEntity(spawned))
}
