package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
)

const defaultAspect = float32(16.0 / 9.0)

// CameraSystem derives view and projection matrices. The aspect ratio comes
// from the main window; without one it falls back to 16:9.
type CameraSystem struct{}

func NewCameraSystem() *CameraSystem { return &CameraSystem{} }

func (s *CameraSystem) SystemName() string { return "camera" }

func (s *CameraSystem) RequiredComponents() []ecs.ComponentKey {
	return []ecs.ComponentKey{
		ecs.ComponentOf[component.Transform](),
		ecs.ComponentOf[component.Camera](),
	}
}

func (s *CameraSystem) ProcessEntity(w *ecs.World, _ time.Duration, id ecs.EntityID) {
	t := ecs.GetComponent[component.Transform](w, id)
	c := ecs.GetComponent[component.Camera](w, id)
	if t == nil || c == nil {
		return
	}
	aspect := defaultAspect
	if win := ecs.GetContextComponent[component.MainWindowContext, component.WindowState](w); win != nil && win.Height > 0 {
		aspect = float32(win.Width) / float32(win.Height)
	}
	c.View = t.World.Inv()
	c.Projection = mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}
