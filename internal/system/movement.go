package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/component"
	"github.com/prism3d/engine/internal/core/ecs"
)

// MovementSystem integrates Velocity into Transform.
type MovementSystem struct{}

func NewMovementSystem() *MovementSystem { return &MovementSystem{} }

func (s *MovementSystem) SystemName() string { return "movement" }

func (s *MovementSystem) RequiredComponents() []ecs.ComponentKey {
	return []ecs.ComponentKey{
		ecs.ComponentOf[component.Transform](),
		ecs.ComponentOf[component.Velocity](),
	}
}

func (s *MovementSystem) ProcessEntity(w *ecs.World, dt time.Duration, id ecs.EntityID) {
	t := ecs.GetComponent[component.Transform](w, id)
	v := ecs.GetComponent[component.Velocity](w, id)
	if t == nil || v == nil {
		return
	}
	sec := float32(dt.Seconds())
	t.Position = t.Position.Add(v.Linear.Mul(sec))
	if v.Angular != (mgl32.Vec3{}) {
		a := v.Angular.Mul(sec)
		delta := mgl32.AnglesToQuat(a.Z(), a.Y(), a.X(), mgl32.ZYX)
		t.Rotation = t.Rotation.Mul(delta).Normalize()
	}
}
