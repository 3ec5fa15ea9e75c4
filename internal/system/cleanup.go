package system

import (
	"time"

	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/core/event"
)

// CleanupSystem flushes the deferred entity destruction queue at frame end
// and announces each destroyed entity on the bus.
type CleanupSystem struct {
	bus       *event.Bus
	destroyed int
}

func NewCleanupSystem(bus *event.Bus) *CleanupSystem {
	return &CleanupSystem{bus: bus}
}

func (s *CleanupSystem) SystemName() string { return "cleanup" }

func (s *CleanupSystem) Update(w *ecs.World, _ time.Duration, _ []ecs.EntityID) {
	destroyed := w.FlushDestroyQueue()
	for _, id := range destroyed {
		event.Emit(s.bus, event.EntityDestroyed{Entity: id})
	}
	s.destroyed += len(destroyed)
}

// Destroyed returns the total number of entities destroyed so far.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }
