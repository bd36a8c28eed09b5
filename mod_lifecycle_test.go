package lightborne

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleModule_ExpiresEntities(t *testing.T) {
	app := NewAppBuilder().UseModule(TimeModule{}, LifecycleModule{}).Build()
	cmd := app.Commands()
	eid := cmd.AddEntity(&LifetimeComponent{TimeLeft: 25 * time.Millisecond})
	keep := cmd.AddEntity(&Sprite{})
	app.FlushCommands()

	app.Step(10 * time.Millisecond)
	app.Step(10 * time.Millisecond)
	assert.True(t, cmd.HasEntity(eid))
	assert.Equal(t, 5*time.Millisecond, GetComponent[LifetimeComponent](cmd, eid).TimeLeft)

	app.Step(10 * time.Millisecond)
	assert.False(t, cmd.HasEntity(eid))
	assert.True(t, cmd.HasEntity(keep))
}
