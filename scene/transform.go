package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Transform2D struct {
	Translation mgl32.Vec2
	Scale       mgl32.Vec2
	// Rotation in radians, counterclockwise.
	Rotation float32
}

// Mat2 is rotation applied after scale.
func (t Transform2D) Mat2() mgl32.Mat2 {
	rotation := mgl32.Rotate2D(t.Rotation)
	scale := mgl32.Mat2{t.Scale.X(), 0, 0, t.Scale.Y()}
	return rotation.Mul2(scale)
}

type Transform struct {
	Translation mgl32.Vec3
	Scale       mgl32.Vec3
	// Rotation holds Tait-Bryan angles in radians, applied in Y, X, Z order.
	Rotation mgl32.Vec3
}

// Mat4 is translate * Ry * Rx * Rz * scale.
func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(mgl32.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DX(t.Rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z())).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}
