package system

import (
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
	"github.com/prism3d/engine/internal/render"
	"go.uber.org/zap"
)

type batchKey struct {
	mesh     component.MeshID
	material component.MaterialID
}

// RenderSystem groups visible subscribers into (mesh, material) batches and
// submits one frame per update using the main camera. Renderables are
// walked in entity order so slots inside a batch are deterministic.
type RenderSystem struct {
	backend render.Backend
	buffers *BufferUpdateSystem
	log     *zap.Logger
	members map[ecs.EntityID]struct{}
	batches map[batchKey]int
	frame   render.Frame
	noCam   bool
}

func NewRenderSystem(backend render.Backend, buffers *BufferUpdateSystem, log *zap.Logger) *RenderSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &RenderSystem{
		backend: backend,
		buffers: buffers,
		log:     log,
		members: make(map[ecs.EntityID]struct{}, 256),
		batches: make(map[batchKey]int, 16),
	}
}

func (s *RenderSystem) SystemName() string { return "render" }

func (s *RenderSystem) RequiredComponents() []ecs.ComponentKey {
	return []ecs.ComponentKey{
		ecs.ComponentOf[component.Transform](),
		ecs.ComponentOf[component.Renderable](),
	}
}

func (s *RenderSystem) SystemDependencies() []ecs.SystemKey {
	return []ecs.SystemKey{ecs.SystemOf[*BufferUpdateSystem]()}
}

func (s *RenderSystem) OnEntitySubscribed(_ *ecs.World, id ecs.EntityID) {
	s.members[id] = struct{}{}
}

func (s *RenderSystem) OnEntityUnsubscribed(_ *ecs.World, id ecs.EntityID) {
	delete(s.members, id)
}

func (s *RenderSystem) Update(w *ecs.World, _ time.Duration, _ []ecs.EntityID) {
	clear(s.batches)
	frame := render.Frame{View: mgl32.Ident4(), Projection: mgl32.Ident4()}

	ecs.Each(w, func(id ecs.EntityID, r *component.Renderable) {
		if _, ok := s.members[id]; !ok || r.Hidden {
			return
		}
		slot, ok := s.buffers.Slot(id)
		if !ok {
			return
		}
		k := batchKey{mesh: r.Mesh, material: r.Material}
		i, ok := s.batches[k]
		if !ok {
			i = len(frame.Batches)
			s.batches[k] = i
			frame.Batches = append(frame.Batches, render.Batch{Mesh: r.Mesh, Material: r.Material})
		}
		frame.Batches[i].Slots = append(frame.Batches[i].Slots, slot)
	})
	sort.Slice(frame.Batches, func(i, j int) bool {
		a, b := frame.Batches[i], frame.Batches[j]
		if a.Mesh != b.Mesh {
			return a.Mesh < b.Mesh
		}
		return a.Material < b.Material
	})

	if cam := ecs.GetContextComponent[component.MainCameraContext, component.Camera](w); cam != nil {
		frame.View, frame.Projection = cam.View, cam.Projection
		s.noCam = false
	} else if !s.noCam {
		s.noCam = true
		s.log.Warn("RENDER::WARNING no main camera, drawing with identity matrices")
	}

	s.backend.Submit(frame)
	s.frame = frame
}

// LastFrame returns the frame submitted by the last update.
func (s *RenderSystem) LastFrame() render.Frame { return s.frame }
