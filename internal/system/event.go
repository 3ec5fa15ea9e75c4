package system

import (
	"time"

	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/core/event"
)

// EventSystem delivers last frame's events. Registered first so handlers
// run before any other system this frame.
type EventSystem struct {
	bus       *event.Bus
	delivered int
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) SystemName() string { return "event" }

func (s *EventSystem) Update(_ *ecs.World, _ time.Duration, _ []ecs.EntityID) {
	s.bus.SwapBuffers()
	s.delivered = s.bus.DispatchAll()
}

// Delivered returns the number of events dispatched in the last frame.
func (s *EventSystem) Delivered() int { return s.delivered }
