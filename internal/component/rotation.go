package component

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// EulerDegToQuat converts roll (X), pitch (Y) and yaw (Z) in degrees to a
// quaternion, yaw applied first.
func EulerDegToQuat(deg mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(
		mgl32.DegToRad(deg.Z()),
		mgl32.DegToRad(deg.Y()),
		mgl32.DegToRad(deg.X()),
		mgl32.ZYX,
	)
}

// QuatToEulerDeg is the inverse of EulerDegToQuat. Pitch is clamped at the
// poles.
func QuatToEulerDeg(q mgl32.Quat) mgl32.Vec3 {
	q = q.Normalize()
	w, x, y, z := float64(q.W), float64(q.V.X()), float64(q.V.Y()), float64(q.V.Z())

	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	sinp := 2 * (w*y - z*x)
	sinp = math.Max(-1, math.Min(1, sinp))
	pitch := math.Asin(sinp)
	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return mgl32.Vec3{
		mgl32.RadToDeg(float32(roll)),
		mgl32.RadToDeg(float32(pitch)),
		mgl32.RadToDeg(float32(yaw)),
	}
}

// LocalMatrix composes translation, rotation and scale.
func (t *Transform) LocalMatrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	m = m.Mul4(t.Rotation.Normalize().Mat4())
	return m.Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
