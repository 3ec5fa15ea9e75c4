package component

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/prism3d/engine/internal/core/ecs"
)

// Transform is an entity's placement relative to its parent (or the world
// when it has no Parent). World is written by TransformSystem each frame.
// Pure data; systems do the mutating.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	World    mgl32.Mat4
}

// NewTransform returns an identity transform placed at pos.
func NewTransform(pos mgl32.Vec3) Transform {
	return Transform{
		Position: pos,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		World:    mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()),
	}
}

// Parent links an entity into the scene graph.
type Parent struct {
	Entity ecs.EntityID
}
