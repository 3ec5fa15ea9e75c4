package component

import "github.com/go-gl/mathgl/mgl32"

// Velocity moves a Transform. Linear is units per second, Angular is
// radians per second around each local axis.
type Velocity struct {
	Linear  mgl32.Vec3
	Angular mgl32.Vec3
}
