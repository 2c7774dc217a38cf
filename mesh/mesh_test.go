package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

func TestSierpinski(t *testing.T) {
	left := mgl32.Vec2{-0.5, 0.5}
	right := mgl32.Vec2{0.5, 0.5}
	top := mgl32.Vec2{0, -0.5}

	require.Len(t, Sierpinski(0, left, right, top), 3)
	require.Len(t, Sierpinski(1, left, right, top), 9)
	require.Len(t, Sierpinski(4, left, right, top), 3*81)

	for _, vertex := range Sierpinski(3, left, right, top) {
		require.GreaterOrEqual(t, vertex.Position.X(), float32(-0.5))
		require.LessOrEqual(t, vertex.Position.X(), float32(0.5))
		require.Zero(t, vertex.Position.Z())
	}
}

func TestCube(t *testing.T) {
	cube := Cube(mgl32.Vec3{1, 2, 3})

	require.Len(t, cube.Vertices, 24)
	require.Len(t, cube.Indices, 36)
	require.True(t, cube.Indexed())

	for _, index := range cube.Indices {
		require.Less(t, int(index), len(cube.Vertices))
	}
	for _, vertex := range cube.Vertices {
		require.InDelta(t, 1, vertex.Position.X(), 0.5+1e-6)
		require.InDelta(t, 2, vertex.Position.Y(), 0.5+1e-6)
		require.InDelta(t, 3, vertex.Position.Z(), 0.5+1e-6)
	}
}

func TestBuilder_AddUnique(t *testing.T) {
	b := &Builder{}
	calls := 0
	makeVertex := func(x float32) func() Vertex {
		return func() Vertex {
			calls++
			return Vertex{Position: mgl32.Vec3{x, 0, 0}}
		}
	}

	b.AddUnique(7, makeVertex(1))
	b.AddUnique(9, makeVertex(2))
	b.AddUnique(7, makeVertex(3))

	require.Equal(t, 2, calls)
	require.Len(t, b.Vertices, 2)
	require.Equal(t, []uint32{0, 1, 0}, b.Indices)
	require.True(t, b.Indexed())
}

func TestBuilder_Add(t *testing.T) {
	b := &Builder{}
	for _, vertex := range Sierpinski(0, mgl32.Vec2{}, mgl32.Vec2{1, 0}, mgl32.Vec2{0, 1}) {
		b.Add(vertex)
	}

	require.Equal(t, []uint32{0, 1, 2}, b.Indices)
	require.False(t, b.Indexed())
}
