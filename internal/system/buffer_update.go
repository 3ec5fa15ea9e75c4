package system

import (
	"time"

	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/render"
)

// BufferUpdateSystem owns instance-buffer slots. A slot is allocated when an
// entity subscribes, freed when it unsubscribes, and the entity's world
// matrix is written to it every frame.
type BufferUpdateSystem struct {
	backend render.Backend
	slots   map[ecs.EntityID]int32
}

func NewBufferUpdateSystem(backend render.Backend) *BufferUpdateSystem {
	return &BufferUpdateSystem{
		backend: backend,
		slots:   make(map[ecs.EntityID]int32, 256),
	}
}

func (s *BufferUpdateSystem) SystemName() string { return "buffer_update" }

func (s *BufferUpdateSystem) RequiredComponents() []ecs.ComponentKey {
	return []ecs.ComponentKey{
		ecs.ComponentOf[component.Transform](),
		ecs.ComponentOf[component.Renderable](),
	}
}

func (s *BufferUpdateSystem) OnEntitySubscribed(w *ecs.World, id ecs.EntityID) {
	slot := s.backend.AllocInstance()
	s.slots[id] = slot
	if t := ecs.GetComponent[component.Transform](w, id); t != nil {
		s.backend.WriteInstance(slot, t.World)
	}
}

func (s *BufferUpdateSystem) OnEntityUnsubscribed(_ *ecs.World, id ecs.EntityID) {
	if slot, ok := s.slots[id]; ok {
		s.backend.FreeInstance(slot)
		delete(s.slots, id)
	}
}

func (s *BufferUpdateSystem) OnShutdown(_ *ecs.World) {
	for id, slot := range s.slots {
		s.backend.FreeInstance(slot)
		delete(s.slots, id)
	}
}

// Update writes every slotted entity's world matrix, in entity order.
func (s *BufferUpdateSystem) Update(w *ecs.World, _ time.Duration, _ []ecs.EntityID) {
	ecs.Each2(w, func(id ecs.EntityID, t *component.Transform, _ *component.Renderable) {
		if slot, ok := s.slots[id]; ok {
			s.backend.WriteInstance(slot, t.World)
		}
	})
}

// Slot returns id's instance slot.
func (s *BufferUpdateSystem) Slot(id ecs.EntityID) (int32, bool) {
	slot, ok := s.slots[id]
	return slot, ok
}

// Slots returns the number of allocated slots.
func (s *BufferUpdateSystem) Slots() int { return len(s.slots) }
