package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
	"go.uber.org/zap"
)

// maxHierarchyDepth bounds parent chains; deeper links are treated as roots.
const maxHierarchyDepth = 64

// TransformSystem writes Transform.World for every entity with a Transform.
// World = parent's World × local matrix; parents are resolved first even
// when they subscribed later. A Parent pointing at a destroyed entity or one
// without a Transform is ignored.
type TransformSystem struct {
	log  *zap.Logger
	done map[ecs.EntityID]mgl32.Mat4
}

func NewTransformSystem(log *zap.Logger) *TransformSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &TransformSystem{log: log, done: make(map[ecs.EntityID]mgl32.Mat4, 256)}
}

func (s *TransformSystem) SystemName() string { return "transform" }

func (s *TransformSystem) Mandatory() bool { return true }

func (s *TransformSystem) RequiredComponents() []ecs.ComponentKey {
	return []ecs.ComponentKey{ecs.ComponentOf[component.Transform]()}
}

func (s *TransformSystem) Update(w *ecs.World, _ time.Duration, entities []ecs.EntityID) {
	clear(s.done)
	for _, id := range entities {
		s.resolve(w, id, 0)
	}
}

func (s *TransformSystem) resolve(w *ecs.World, id ecs.EntityID, depth int) mgl32.Mat4 {
	if m, ok := s.done[id]; ok {
		return m
	}
	t := ecs.GetComponent[component.Transform](w, id)
	if t == nil {
		return mgl32.Ident4()
	}
	world := t.LocalMatrix()
	if ecs.HasComponent[component.Parent](w, id) {
		p := ecs.GetComponent[component.Parent](w, id).Entity
		switch {
		case depth >= maxHierarchyDepth:
			s.log.Warn("SYSTEM::WARNING transform hierarchy too deep, treating as root",
				zap.Uint32("entity", uint32(id)))
		case p != id && ecs.HasComponent[component.Transform](w, p):
			world = s.resolve(w, p, depth+1).Mul4(world)
		}
	}
	t.World = world
	s.done[id] = world
	return world
}
