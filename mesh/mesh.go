// Package mesh builds vertex and index data on the CPU, ready to be uploaded
// by the model package.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Builder accumulates vertices and triangle indices. Vertices added through
// AddUnique are deduplicated by key.
type Builder struct {
	Vertices []Vertex
	Indices  []uint32

	unique map[int]uint32
}

func (b *Builder) Add(vertex Vertex) {
	b.Indices = append(b.Indices, uint32(len(b.Vertices)))
	b.Vertices = append(b.Vertices, vertex)
}

// AddUnique appends an index for key, creating the vertex with makeVertex
// the first time key is seen.
func (b *Builder) AddUnique(key int, makeVertex func() Vertex) {
	if b.unique == nil {
		b.unique = make(map[int]uint32)
	}

	index, exists := b.unique[key]
	if !exists {
		index = uint32(len(b.Vertices))
		b.Vertices = append(b.Vertices, makeVertex())
		b.unique[key] = index
	}

	b.Indices = append(b.Indices, index)
}

// Indexed reports whether the mesh should be drawn with an index buffer.
func (b *Builder) Indexed() bool {
	return len(b.Indices) > 0 && len(b.Indices) != len(b.Vertices)
}

// Sierpinski returns the triangles of a Sierpinski gasket of the given depth
// inside the triangle (top, left, right).
func Sierpinski(depth int, left, right, top mgl32.Vec2) []Vertex {
	var vertices []Vertex
	sierpinski(&vertices, depth, left, right, top)
	return vertices
}

func sierpinski(vertices *[]Vertex, depth int, left, right, top mgl32.Vec2) {
	if depth <= 0 {
		*vertices = append(*vertices,
			Vertex{Position: top.Vec3(0), Color: mgl32.Vec3{1, 0, 0}},
			Vertex{Position: right.Vec3(0), Color: mgl32.Vec3{0, 1, 0}},
			Vertex{Position: left.Vec3(0), Color: mgl32.Vec3{0, 0, 1}},
		)
		return
	}

	leftTop := left.Add(top).Mul(0.5)
	rightTop := right.Add(top).Mul(0.5)
	leftRight := left.Add(right).Mul(0.5)
	sierpinski(vertices, depth-1, left, leftRight, leftTop)
	sierpinski(vertices, depth-1, leftRight, right, rightTop)
	sierpinski(vertices, depth-1, leftTop, rightTop, top)
}

var cubeFaces = []struct {
	color   mgl32.Vec3
	corners [4]mgl32.Vec3
}{
	// left
	{mgl32.Vec3{.9, .9, .9}, [4]mgl32.Vec3{{-.5, -.5, -.5}, {-.5, .5, .5}, {-.5, -.5, .5}, {-.5, .5, -.5}}},
	// right
	{mgl32.Vec3{.8, .8, .1}, [4]mgl32.Vec3{{.5, -.5, -.5}, {.5, .5, .5}, {.5, -.5, .5}, {.5, .5, -.5}}},
	// top
	{mgl32.Vec3{.9, .6, .1}, [4]mgl32.Vec3{{-.5, -.5, -.5}, {.5, -.5, .5}, {-.5, -.5, .5}, {.5, -.5, -.5}}},
	// bottom
	{mgl32.Vec3{.8, .1, .1}, [4]mgl32.Vec3{{-.5, .5, -.5}, {.5, .5, .5}, {-.5, .5, .5}, {.5, .5, -.5}}},
	// nose
	{mgl32.Vec3{.1, .1, .8}, [4]mgl32.Vec3{{-.5, -.5, .5}, {.5, .5, .5}, {-.5, .5, .5}, {.5, -.5, .5}}},
	// tail
	{mgl32.Vec3{.1, .8, .1}, [4]mgl32.Vec3{{-.5, -.5, -.5}, {.5, .5, -.5}, {-.5, .5, -.5}, {.5, -.5, -.5}}},
}

// Cube returns a unit cube centered on offset with one color per face, as
// four vertices and two triangles per face.
func Cube(offset mgl32.Vec3) *Builder {
	b := &Builder{}
	for _, face := range cubeFaces {
		base := uint32(len(b.Vertices))
		for _, corner := range face.corners {
			b.Vertices = append(b.Vertices, Vertex{Position: corner.Add(offset), Color: face.color})
		}
		b.Indices = append(b.Indices, base, base+1, base+2, base, base+3, base+1)
	}
	return b
}
