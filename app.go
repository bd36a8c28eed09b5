package lightborne

import (
	"fmt"
	"reflect"
	"runtime"
	"time"
)

type systemFn any

type App struct {
	stateful           bool
	stateTransitioning bool
	started            bool
	initialState       State
	finalState         State
	nextState          State
	state              State
	stages             []Stage
	systems            map[string]map[State]map[statePhase][]systemFn
	systemsStateless   map[string][]systemFn
	resources          map[reflect.Type]any
	ecs                *Ecs

	// Command Buffering
	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingCompChange
	pendingCompRemovals []pendingCompChange
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompChange struct {
	eid        EntityId
	components []any
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

func (app *App) State() State {
	return app.state
}

func (app *App) Stateful() bool {
	return app.stateful
}

// Finished reports whether a stateful app has reached its final state.
func (app *App) Finished() bool {
	return app.stateful && app.started && app.state == app.finalState
}

// Step runs one frame: every dynamic stage once and the fixed stages as many
// times as the FixedTime accumulator allows for dt.
func (app *App) Step(dt time.Duration) {
	if !app.started {
		app.start()
	}
	if app.Finished() {
		return
	}

	if tm := Resource[Time](app); tm != nil {
		tm.advance(dt)
	}
	fixedSteps := 0
	if ft := Resource[FixedTime](app); ft != nil {
		fixedSteps = ft.accumulate(dt)
	}

	app.callSystems(app.state, execute, fixedSteps)

	if app.stateful {
		if app.stateTransitioning {
			app.stateTransitioning = false
			app.executeChangeState(app.nextState)
		}
		if app.state == app.finalState {
			app.callSystems(app.state, exit, 0)
		}
	}
}

func (app *App) start() {
	app.started = true
	if app.stateful {
		app.Logger().Debugf("running in stateful mode, initial state %v", app.initialState)
		app.state = app.initialState
		app.callSystems(app.state, enter, 0)
	}
}

func (app *App) callSystems(state State, phase statePhase, fixedSteps int) {
	for i := 0; i < len(app.stages); {
		stage := app.stages[i]
		if stage.UpdateType != FixedUpdateType || phase != execute {
			app.callStage(stage, state, phase)
			i++
			continue
		}

		// Fixed stages are contiguous; run the whole block once per tick.
		end := i
		for end < len(app.stages) && app.stages[end].UpdateType == FixedUpdateType {
			end++
		}
		ft := Resource[FixedTime](app)
		for step := 0; step < fixedSteps; step++ {
			if ft != nil {
				ft.Tick++
			}
			for _, fixedStage := range app.stages[i:end] {
				app.callStage(fixedStage, state, phase)
			}
		}
		i = end
	}
}

func (app *App) callStage(stage Stage, state State, phase statePhase) {
	// On execute, call stateless/always run systems first
	if execute == phase {
		for _, system := range app.systemsStateless[stage.Name] {
			app.callSystem(system)
		}
	}

	if app.stateful {
		if systemsInStage, ok := app.systems[stage.Name]; ok {
			if systemsInState, ok := systemsInStage[state]; ok {
				for _, system := range systemsInState[phase] {
					app.callSystem(system)
				}
			}
		}
	}
	app.FlushCommands()
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	app.callSystems(app.state, exit, 0)
	app.state = newState
	app.callSystems(app.state, enter, 0)
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the registered resource of type T or nil.
func Resource[T any](app *App) *T {
	var zero T
	if r, ok := app.resources[reflect.TypeOf(zero)]; ok {
		return r.(*T)
	}
	return nil
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			app.panicUnresolved(systemType, systemValue, argType)
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			app.panicUnresolved(systemType, systemValue, argType)
		}
	}
	systemValue.Call(args)
}

func (app *App) panicUnresolved(systemType reflect.Type, systemValue reflect.Value, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}

func (app *App) FlushCommands() {
	if len(app.pendingAdditions) == 0 && len(app.pendingRemovals) == 0 &&
		len(app.pendingCompAdds) == 0 && len(app.pendingCompRemovals) == 0 {
		return
	}

	// Removals first so nothing is added to dead entities.
	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rem := range app.pendingCompRemovals {
		app.ecs.removeComponents(rem.eid, rem.components...)
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]
}
