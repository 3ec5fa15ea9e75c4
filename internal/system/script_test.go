package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/core/event"
	"github.com/prism3d/engine/internal/scripting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBehaviours = `
function bob(ctx)
  ctx.state.t = (ctx.state.t or 0) + ctx.dt
  return { position = { y = ctx.state.t }, rotation = { z = 90 } }
end

function explode(ctx)
  error("kaboom")
end
`

func newScriptWorld(t *testing.T) (*ecs.World, *scripting.Engine, *event.Bus, func() int) {
	t.Helper()
	w, logs := newTestWorld(t)
	lua, err := scripting.NewEngine("", nil)
	require.NoError(t, err)
	t.Cleanup(lua.Close)
	require.NoError(t, lua.LoadString("test", testBehaviours))

	bus := event.NewBus()
	w.AddSystem(NewEventSystem(bus))
	w.AddSystem(NewScriptSystem(lua, bus, w.Logger()))
	w.AddSystem(NewCleanupSystem(bus))
	return w, lua, bus, func() int { return warnings(logs, "behaviour failed") }
}

func TestScriptAppliesBehaviour(t *testing.T) {
	w, lua, _, _ := newScriptWorld(t)

	e := spawnAt(w, mgl32.Vec3{3, 0, 0})
	ecs.AddComponent(w, e, component.Script{Behaviour: "bob"})
	require.True(t, ecs.Subscribe[*ScriptSystem](w, e))

	w.Update(250 * time.Millisecond)
	w.Update(250 * time.Millisecond)

	tr := ecs.GetComponent[component.Transform](w, e)
	assert.True(t, tr.Position.ApproxEqualThreshold(mgl32.Vec3{3, 0.5, 0}, eps), "got %v", tr.Position)
	assert.True(t, component.QuatToEulerDeg(tr.Rotation).ApproxEqualThreshold(mgl32.Vec3{0, 0, 90}, 1e-2))
	assert.Equal(t, 1, lua.StateCount())
}

func TestScriptStateReleasedOnDestroy(t *testing.T) {
	w, lua, _, _ := newScriptWorld(t)

	e := spawnAt(w, mgl32.Vec3{})
	ecs.AddComponent(w, e, component.Script{Behaviour: "bob"})
	ecs.Subscribe[*ScriptSystem](w, e)
	w.Update(time.Millisecond)
	require.Equal(t, 1, lua.StateCount())

	w.MarkForDestruction(e)
	w.Update(time.Millisecond) // cleanup destroys, emits EntityDestroyed
	assert.False(t, w.IsActive(e))
	assert.Equal(t, 1, lua.StateCount())

	w.Update(time.Millisecond) // event delivered
	assert.Equal(t, 0, lua.StateCount())
}

func TestScriptFailureDisablesEntity(t *testing.T) {
	w, _, _, failures := newScriptWorld(t)

	e := spawnAt(w, mgl32.Vec3{})
	ecs.AddComponent(w, e, component.Script{Behaviour: "explode"})
	ecs.Subscribe[*ScriptSystem](w, e)

	for i := 0; i < 3; i++ {
		w.Update(time.Millisecond)
	}
	assert.Equal(t, 1, failures(), "logged once")

	ecs.Unsubscribe[*ScriptSystem](w, e)
	ecs.GetComponent[component.Script](w, e).Behaviour = "bob"
	ecs.Subscribe[*ScriptSystem](w, e)
	w.Update(time.Second)
	assert.Equal(t, 1, failures())
	assert.InDelta(t, 1, ecs.GetComponent[component.Transform](w, e).Position.Y(), eps)
}
