package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/core/event"
	"github.com/stretchr/testify/assert"
)

func TestCleanupDestroysQueued(t *testing.T) {
	w, _ := newTestWorld(t)
	bus := event.NewBus()
	events := NewEventSystem(bus)
	cleanup := NewCleanupSystem(bus)
	w.AddSystem(events)
	w.AddSystem(cleanup)

	var destroyed []ecs.EntityID
	event.Subscribe(bus, func(ev event.EntityDestroyed) { destroyed = append(destroyed, ev.Entity) })

	a := spawnAt(w, mgl32.Vec3{})
	b := spawnAt(w, mgl32.Vec3{})
	w.MarkForDestruction(a)
	w.MarkForDestruction(a)
	w.MarkForDestruction(b)

	w.Update(time.Millisecond)
	assert.False(t, w.IsActive(a))
	assert.False(t, w.IsActive(b))
	assert.Equal(t, 2, cleanup.Destroyed(), "duplicates skipped")
	assert.Empty(t, destroyed)

	w.Update(time.Millisecond)
	assert.Equal(t, []ecs.EntityID{a, b}, destroyed)
	assert.Equal(t, 2, events.Delivered())
}
