package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renderFixture struct {
	w       *ecs.World
	backend *render.Headless
	buffers *BufferUpdateSystem
	render  *RenderSystem
}

func newRenderFixture(t *testing.T) *renderFixture {
	t.Helper()
	w, _ := newTestWorld(t)
	f := &renderFixture{w: w, backend: render.NewHeadless()}
	f.buffers = NewBufferUpdateSystem(f.backend)
	f.render = NewRenderSystem(f.backend, f.buffers, nil)
	require.True(t, w.AddSystem(NewTransformSystem(nil)))
	require.True(t, w.AddSystem(NewCameraSystem()))
	require.True(t, w.AddSystem(f.buffers))
	require.True(t, w.AddSystem(f.render))
	return f
}

func (f *renderFixture) spawn(t *testing.T, pos mgl32.Vec3, mesh, mat uint32) ecs.EntityID {
	t.Helper()
	id := spawnAt(f.w, pos)
	ecs.AddComponent(f.w, id, component.Renderable{Mesh: component.MeshID(mesh), Material: component.MaterialID(mat)})
	require.True(t, ecs.Subscribe[*RenderSystem](f.w, id))
	return id
}

func TestRenderSubscriptionCascadesToBuffers(t *testing.T) {
	f := newRenderFixture(t)
	e := f.spawn(t, mgl32.Vec3{1, 2, 3}, 1, 1)

	assert.True(t, f.w.SystemManager().IsSubscribed(e, ecs.SystemOf[*BufferUpdateSystem]()))
	slot, ok := f.buffers.Slot(e)
	require.True(t, ok)
	assert.Equal(t, 1, f.backend.LiveInstances())

	f.w.Update(time.Millisecond)
	m, ok := f.backend.Instance(slot)
	require.True(t, ok)
	assert.True(t, mgl32.TransformCoordinate(mgl32.Vec3{}, m).ApproxEqualThreshold(mgl32.Vec3{1, 2, 3}, eps))
}

func TestRenderBatches(t *testing.T) {
	f := newRenderFixture(t)
	a := f.spawn(t, mgl32.Vec3{}, 2, 1)
	b := f.spawn(t, mgl32.Vec3{}, 1, 1)
	c := f.spawn(t, mgl32.Vec3{}, 2, 1)
	hidden := f.spawn(t, mgl32.Vec3{}, 1, 1)
	ecs.GetComponent[component.Renderable](f.w, hidden).Hidden = true

	f.w.Update(time.Millisecond)

	frame, n := f.backend.LastFrame()
	assert.Equal(t, 1, n)
	require.Equal(t, 2, frame.DrawCalls())
	assert.Equal(t, 3, frame.Instances())

	slot := func(id ecs.EntityID) int32 { s, _ := f.buffers.Slot(id); return s }
	assert.Equal(t, component.MeshID(1), frame.Batches[0].Mesh)
	assert.Equal(t, []int32{slot(b)}, frame.Batches[0].Slots)
	assert.Equal(t, component.MeshID(2), frame.Batches[1].Mesh)
	assert.Equal(t, []int32{slot(a), slot(c)}, frame.Batches[1].Slots, "entity order inside a batch")
}

func TestRenderUsesMainCamera(t *testing.T) {
	f := newRenderFixture(t)
	f.spawn(t, mgl32.Vec3{}, 1, 1)

	cam := spawnAt(f.w, mgl32.Vec3{0, 0, 10})
	ecs.AddComponent(f.w, cam, component.Camera{FovY: 1, Near: 0.1, Far: 50})
	ecs.Subscribe[*CameraSystem](f.w, cam)
	ecs.RegisterContext[component.MainCameraContext](f.w, cam)

	f.w.Update(time.Millisecond)

	frame, _ := f.backend.LastFrame()
	c := ecs.GetComponent[component.Camera](f.w, cam)
	assert.Equal(t, c.View, frame.View)
	assert.Equal(t, c.Projection, frame.Projection)
}

func TestRenderReleasesSlots(t *testing.T) {
	f := newRenderFixture(t)
	a := f.spawn(t, mgl32.Vec3{}, 1, 1)
	b := f.spawn(t, mgl32.Vec3{}, 1, 1)
	require.Equal(t, 2, f.buffers.Slots())

	ecs.RemoveComponent[component.Renderable](f.w, a)
	assert.False(t, f.w.SystemManager().IsSubscribed(a, ecs.SystemOf[*RenderSystem]()))
	assert.False(t, f.w.SystemManager().IsSubscribed(a, ecs.SystemOf[*BufferUpdateSystem]()))
	assert.Equal(t, 1, f.backend.LiveInstances())

	f.w.DestroyEntity(b)
	assert.Equal(t, 0, f.buffers.Slots())
	assert.Equal(t, 0, f.backend.LiveInstances())

	f.w.Update(time.Millisecond)
	frame, _ := f.backend.LastFrame()
	assert.Zero(t, frame.DrawCalls())
}
