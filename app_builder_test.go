package lightborne

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockModule struct {
	installed bool
	order     *[]string
	name      string
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed = true
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
}

func TestAppBuilder_Stateless(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.False(t, app.stateful)
	assert.Equal(t, State(0), app.initialState)
	assert.Equal(t, State(0), app.finalState)
	assert.Equal(t, defaultStages(), app.stages)
}

func TestAppBuilder_UseStates(t *testing.T) {
	app := NewAppBuilder().UseStates(1, 10).Build()

	assert.True(t, app.stateful)
	assert.Equal(t, State(1), app.initialState)
	assert.Equal(t, State(10), app.finalState)
	assert.Len(t, app.systems[Update.Name], 10)
}

func TestAppBuilder_Build_InstallsModulesInOrder(t *testing.T) {
	var order []string
	module1 := &MockModule{order: &order, name: "first"}
	module2 := &MockModule{order: &order, name: "second"}

	builder := NewAppBuilder().UseModule(module1).UseModule(module2)
	assert.Len(t, builder.modules, 2)

	builder.Build()
	assert.True(t, module1.installed)
	assert.True(t, module2.installed)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestAppBuilder_UseStage(t *testing.T) {
	app := NewAppBuilder().Build()
	beams := Stage{Name: "Beams", UpdateType: FixedUpdateType}
	app.UseStage(beams, AfterStage(FixedUpdate))

	names := make([]string, 0, len(app.stages))
	for _, s := range app.stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"FixedPreUpdate", "FixedUpdate", "Beams", "FixedPostUpdate"}, names[2:6])

	assert.Panics(t, func() {
		app.UseStage(Stage{Name: "Loose", UpdateType: FixedUpdateType}, AfterStage(Render))
	}, "fixed stages must stay contiguous")
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Missing"})) })
}
