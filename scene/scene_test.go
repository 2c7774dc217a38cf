package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func requireVec4(t *testing.T, want, got mgl32.Vec4) {
	t.Helper()
	require.Truef(t, want.ApproxEqualThreshold(got, 1e-5), "want %v, got %v", want, got)
}

func TestRegistry_SequentialIDs(t *testing.T) {
	registry := NewRegistry()

	first := registry.Create()
	second := registry.Create()
	third := registry.Create()

	require.Equal(t, ID(0), first.ID())
	require.Equal(t, ID(1), second.ID())
	require.Equal(t, ID(2), third.ID())
	require.Equal(t, 3, registry.Len())
	require.Equal(t, []*Object{first, second, third}, registry.Objects())

	found, ok := registry.Get(1)
	require.True(t, ok)
	require.Same(t, second, found)

	_, ok = registry.Get(3)
	require.False(t, ok)
}

func TestRegistry_SeparateArenas(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	a.Create()

	require.Equal(t, ID(0), b.Create().ID())
}

func TestObject_DefaultTransformIsIdentity(t *testing.T) {
	object := NewRegistry().Create()

	require.True(t, object.Transform.Mat4().ApproxEqual(mgl32.Ident4()))
	require.True(t, object.Transform2D.Mat2().ApproxEqual(mgl32.Ident2()))
}

func TestTransform2D_ScaleThenRotate(t *testing.T) {
	transform := Transform2D{Scale: mgl32.Vec2{2, 1}, Rotation: math.Pi / 2}

	got := transform.Mat2().Mul2x1(mgl32.Vec2{1, 0})
	require.True(t, got.ApproxEqualThreshold(mgl32.Vec2{0, 2}, 1e-5), "got %v", got)
}

func TestTransform_TranslateScale(t *testing.T) {
	transform := Transform{
		Translation: mgl32.Vec3{1, 2, 3},
		Scale:       mgl32.Vec3{2, 2, 2},
	}

	requireVec4(t, mgl32.Vec4{3, 4, 5, 1}, transform.Mat4().Mul4x1(mgl32.Vec4{1, 1, 1, 1}))
}

func TestTransform_RotationOrder(t *testing.T) {
	transform := Transform{
		Scale:    mgl32.Vec3{1, 1, 1},
		Rotation: mgl32.Vec3{math.Pi / 2, math.Pi / 2, 0},
	}

	// X rotation first takes +Y to +Z, then Y rotation takes +Z to +X.
	requireVec4(t, mgl32.Vec4{1, 0, 0, 0}, transform.Mat4().Mul4x1(mgl32.Vec4{0, 1, 0, 0}))
}

func TestCamera_Orthographic(t *testing.T) {
	camera := NewCamera()
	camera.SetOrthographicProjection(-2, 2, -1, 1, 0, 10)

	requireVec4(t, mgl32.Vec4{-1, -1, 0, 1}, camera.Projection().Mul4x1(mgl32.Vec4{-2, -1, 0, 1}))
	requireVec4(t, mgl32.Vec4{1, 1, 1, 1}, camera.Projection().Mul4x1(mgl32.Vec4{2, 1, 10, 1}))
}

func TestCamera_PerspectiveDepthRange(t *testing.T) {
	camera := NewCamera()
	require.NoError(t, camera.SetPerspectiveProjection(mgl32.DegToRad(50), 4.0/3.0, 0.1, 10))

	near := camera.Projection().Mul4x1(mgl32.Vec4{0, 0, 0.1, 1})
	far := camera.Projection().Mul4x1(mgl32.Vec4{0, 0, 10, 1})

	require.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	require.InDelta(t, 1, far.Z()/far.W(), 1e-5)
}

func TestCamera_PerspectiveRejectsZeroAspect(t *testing.T) {
	camera := NewCamera()
	require.Error(t, camera.SetPerspectiveProjection(1, 0, 0.1, 10))
	require.True(t, camera.Projection().ApproxEqual(mgl32.Ident4()))
}

func TestCamera_ViewDirection(t *testing.T) {
	camera := NewCamera()
	position := mgl32.Vec3{1, -2, 3}
	require.NoError(t, camera.SetViewDirection(position, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}))

	requireVec4(t, mgl32.Vec4{0, 0, 0, 1}, camera.View().Mul4x1(position.Vec4(1)))
	requireVec4(t, mgl32.Vec4{0, 0, 1, 1}, camera.View().Mul4x1(position.Add(mgl32.Vec3{0, 0, 1}).Vec4(1)))
}

func TestCamera_ViewDirectionDegenerate(t *testing.T) {
	camera := NewCamera()
	require.Error(t, camera.SetViewDirection(mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{0, -1, 0}))
	require.Error(t, camera.SetViewDirection(mgl32.Vec3{}, mgl32.Vec3{0, 2, 0}, mgl32.Vec3{0, -1, 0}))
}

func TestCamera_ViewTarget(t *testing.T) {
	camera := NewCamera()
	require.NoError(t, camera.SetViewTarget(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, -1, 0}))

	requireVec4(t, mgl32.Vec4{0, 0, 5, 1}, camera.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1}))
}

func TestCamera_ViewYXZMatchesDirection(t *testing.T) {
	yaw := float32(0.3)
	position := mgl32.Vec3{0.5, 0, -2}

	byAngles := NewCamera()
	byAngles.SetViewYXZ(position, mgl32.Vec3{0, yaw, 0})

	byDirection := NewCamera()
	direction := mgl32.Vec3{float32(math.Sin(float64(yaw))), 0, float32(math.Cos(float64(yaw)))}
	require.NoError(t, byDirection.SetViewDirection(position, direction, mgl32.Vec3{0, -1, 0}))

	require.True(t, byAngles.View().ApproxEqualThreshold(byDirection.View(), 1e-5))
}

func TestCamera_ProjectionView(t *testing.T) {
	camera := NewCamera()
	camera.SetOrthographicProjection(-1, 1, -1, 1, 0, 1)
	camera.SetViewYXZ(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{})

	require.True(t, camera.ProjectionView().ApproxEqual(camera.Projection().Mul4(camera.View())))
}
