package component

import "github.com/go-gl/mathgl/mgl32"

// Camera is a perspective camera. View and Projection are derived by
// CameraSystem from the entity's Transform and the main window's aspect.
type Camera struct {
	FovY       float32 // radians
	Near       float32
	Far        float32
	View       mgl32.Mat4
	Projection mgl32.Mat4
}
