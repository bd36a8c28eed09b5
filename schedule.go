package lightborne

import (
	"fmt"
	"slices"
)

type State int

type UpdateType int

const (
	// FixedUpdateType stages run once per fixed simulation tick, zero or
	// more times per frame.
	FixedUpdateType UpdateType = iota
	// DynamicUpdateType stages run exactly once per frame.
	DynamicUpdateType
)

type Stage struct {
	Name       string
	UpdateType UpdateType
}

var (
	Prelude         = Stage{Name: "Prelude", UpdateType: DynamicUpdateType}
	PreUpdate       = Stage{Name: "PreUpdate", UpdateType: DynamicUpdateType}
	FixedPreUpdate  = Stage{Name: "FixedPreUpdate", UpdateType: FixedUpdateType}
	FixedUpdate     = Stage{Name: "FixedUpdate", UpdateType: FixedUpdateType}
	FixedPostUpdate = Stage{Name: "FixedPostUpdate", UpdateType: FixedUpdateType}
	Update          = Stage{Name: "Update", UpdateType: DynamicUpdateType}
	PostUpdate      = Stage{Name: "PostUpdate", UpdateType: DynamicUpdateType}
	PreRender       = Stage{Name: "PreRender", UpdateType: DynamicUpdateType}
	Render          = Stage{Name: "Render", UpdateType: DynamicUpdateType}
	PostRender      = Stage{Name: "PostRender", UpdateType: DynamicUpdateType}
	Finale          = Stage{Name: "Finale", UpdateType: DynamicUpdateType}
)

func defaultStages() []Stage {
	return []Stage{
		Prelude,
		PreUpdate,
		FixedPreUpdate,
		FixedUpdate,
		FixedPostUpdate,
		Update,
		PostUpdate,
		PreRender,
		Render,
		PostRender,
		Finale,
	}
}

type systemScheduleBuilder struct {
	inStage       Stage
	runAlways     bool
	inState       State
	inStatePhase  statePhase
	system        systemFn
	stateProvided bool
}

type stateScheduleBuilder struct {
	state  State
	phase  statePhase
	always bool
}

type statePhase int

const (
	enter   statePhase = 0
	execute statePhase = 1
	exit    statePhase = 2
)

func OnEnter(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: enter}
}

func OnExecute(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: execute}
}

func OnExit(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: exit}
}

func Always() stateScheduleBuilder {
	return stateScheduleBuilder{always: true}
}

func (sched systemScheduleBuilder) InStage(s Stage) systemScheduleBuilder {
	sched.inStage = s
	return sched
}

func (sched systemScheduleBuilder) InState(s stateScheduleBuilder) systemScheduleBuilder {
	sched.runAlways = s.always
	sched.inState = s.state
	sched.inStatePhase = s.phase
	sched.stateProvided = true
	return sched
}

func (sched systemScheduleBuilder) RunAlways() systemScheduleBuilder {
	sched.runAlways = true
	return sched
}

func System(system systemFn) systemScheduleBuilder {
	return systemScheduleBuilder{
		system:  system,
		inStage: Update,
	}
}

type stagePosition int

const (
	stageBefore stagePosition = iota
	stageAfter
)

type stagePositionBuilder struct {
	position stagePosition
	target   Stage
}

func BeforeStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{position: stageBefore, target: s}
}

func AfterStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{position: stageAfter, target: s}
}

// UseStage inserts a custom stage relative to an existing one. Fixed stages
// must stay contiguous, so a fixed stage may only be placed next to another
// fixed stage.
func (app *App) UseStage(stage Stage, where stagePositionBuilder) *App {
	stageIdx := slices.IndexFunc(app.stages, func(s Stage) bool { return s.Name == where.target.Name })
	if stageIdx == -1 {
		panic(fmt.Sprintf("Stage %v not found", where.target.Name))
	}
	if stage.UpdateType == FixedUpdateType && where.target.UpdateType != FixedUpdateType {
		panic(fmt.Sprintf("Fixed stage %v must be placed next to a fixed stage", stage.Name))
	}

	insertAt := stageIdx
	if where.position == stageAfter {
		insertAt = stageIdx + 1
	}

	app.stages = slices.Insert(app.stages, insertAt, stage)
	app.initStage(stage)

	return app
}

func (app *App) UseSystem(system systemScheduleBuilder) *App {
	if system.runAlways || !system.stateProvided {
		if _, ok := app.systemsStateless[system.inStage.Name]; ok {
			app.systemsStateless[system.inStage.Name] = append(app.systemsStateless[system.inStage.Name], system.system)
			return app
		}
		panic(fmt.Sprintf("Stage %v doesn't exist", system.inStage.Name))
	}

	if !app.stateful {
		panic("Trying to use a stateful system in a stateless app.")
	}

	systemsInStage, ok := app.systems[system.inStage.Name]
	if !ok {
		panic(fmt.Sprintf("Stage %v doesn't exist", system.inStage.Name))
	}
	systemsInState, ok := systemsInStage[system.inState]
	if !ok {
		panic(fmt.Sprintf("State %v doesn't exist", system.inState))
	}
	systemsInState[system.inStatePhase] = append(systemsInState[system.inStatePhase], system.system)
	return app
}

func (app *App) initStage(stage Stage) {
	app.systemsStateless[stage.Name] = make([]systemFn, 0)

	if app.stateful {
		app.systems[stage.Name] = make(map[State]map[statePhase][]systemFn)
		for state := app.initialState; state <= app.finalState; state += 1 {
			app.systems[stage.Name][state] = map[statePhase][]systemFn{
				enter:   {},
				execute: {},
				exit:    {},
			}
		}
	}
}
