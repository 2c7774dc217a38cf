package scene

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera projections map into Vulkan clip space: depth in [0, 1] and y
// pointing down.
type Camera struct {
	projection mgl32.Mat4
	view       mgl32.Mat4
}

func NewCamera() *Camera {
	return &Camera{
		projection: mgl32.Ident4(),
		view:       mgl32.Ident4(),
	}
}

func (c *Camera) Projection() mgl32.Mat4 {
	return c.projection
}

func (c *Camera) View() mgl32.Mat4 {
	return c.view
}

// ProjectionView is projection * view.
func (c *Camera) ProjectionView() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}

func (c *Camera) SetOrthographicProjection(left, right, top, bottom, near, far float32) {
	projection := mgl32.Ident4()
	projection.Set(0, 0, 2/(right-left))
	projection.Set(1, 1, 2/(bottom-top))
	projection.Set(2, 2, 1/(far-near))
	projection.Set(0, 3, -(right+left)/(right-left))
	projection.Set(1, 3, -(bottom+top)/(bottom-top))
	projection.Set(2, 3, -near/(far-near))
	c.projection = projection
}

func (c *Camera) SetPerspectiveProjection(fovy, aspect, near, far float32) error {
	if math.Abs(float64(aspect)) < 1e-6 {
		return errors.Newf("invalid aspect ratio %f", aspect)
	}

	tanHalfFovy := float32(math.Tan(float64(fovy) / 2))
	var projection mgl32.Mat4
	projection.Set(0, 0, 1/(aspect*tanHalfFovy))
	projection.Set(1, 1, 1/tanHalfFovy)
	projection.Set(2, 2, far/(far-near))
	projection.Set(3, 2, 1)
	projection.Set(2, 3, -(far*near)/(far-near))
	c.projection = projection
	return nil
}

// SetViewDirection points the camera from position along direction.
func (c *Camera) SetViewDirection(position, direction, up mgl32.Vec3) error {
	if direction.Len() < 1e-6 {
		return errors.New("view direction must not be zero")
	}

	w := direction.Normalize()
	u := w.Cross(up)
	if u.Len() < 1e-6 {
		return errors.New("view direction is parallel to up")
	}
	u = u.Normalize()
	v := w.Cross(u)

	c.setView(u, v, w, position)
	return nil
}

func (c *Camera) SetViewTarget(position, target, up mgl32.Vec3) error {
	return c.SetViewDirection(position, target.Sub(position), up)
}

// SetViewYXZ orients the camera with Tait-Bryan angles applied in Y, X, Z
// order.
func (c *Camera) SetViewYXZ(position, rotation mgl32.Vec3) {
	c3 := float32(math.Cos(float64(rotation.Z())))
	s3 := float32(math.Sin(float64(rotation.Z())))
	c2 := float32(math.Cos(float64(rotation.X())))
	s2 := float32(math.Sin(float64(rotation.X())))
	c1 := float32(math.Cos(float64(rotation.Y())))
	s1 := float32(math.Sin(float64(rotation.Y())))

	u := mgl32.Vec3{c1*c3 + s1*s2*s3, c2 * s3, c1*s2*s3 - c3*s1}
	v := mgl32.Vec3{c3*s1*s2 - c1*s3, c2 * c3, c1*c3*s2 + s1*s3}
	w := mgl32.Vec3{c2 * s1, -s2, c1 * c2}

	c.setView(u, v, w, position)
}

func (c *Camera) setView(u, v, w, position mgl32.Vec3) {
	view := mgl32.Ident4()
	view.Set(0, 0, u.X())
	view.Set(0, 1, u.Y())
	view.Set(0, 2, u.Z())
	view.Set(1, 0, v.X())
	view.Set(1, 1, v.Y())
	view.Set(1, 2, v.Z())
	view.Set(2, 0, w.X())
	view.Set(2, 1, w.Y())
	view.Set(2, 2, w.Z())
	view.Set(0, 3, -u.Dot(position))
	view.Set(1, 3, -v.Dot(position))
	view.Set(2, 3, -w.Dot(position))
	c.view = view
}
