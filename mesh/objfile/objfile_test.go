package objfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

const quad = `o quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const triangle = `o triangle
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_TriangulatesFaces(t *testing.T) {
	path := writeFile(t, t.TempDir(), "quad.obj", quad)

	builder, err := Load(path)
	require.NoError(t, err)

	require.Len(t, builder.Vertices, 4)
	require.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, builder.Indices)
	require.Equal(t, mgl32.Vec3{-1, -1, 0}, builder.Vertices[0].Position)
	require.Equal(t, mgl32.Vec3{0, 0, 1}, builder.Vertices[0].Normal)
	require.Equal(t, mgl32.Vec2{1, 0}, builder.Vertices[2].UV)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.obj"))
	require.Error(t, err)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "quad.obj", quad),
		writeFile(t, dir, "triangle.obj", triangle),
	}

	builders, err := LoadAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, builders, 2)
	require.Len(t, builders[0].Indices, 6)
	require.Len(t, builders[1].Indices, 3)
}

func TestLoadAll_Failure(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "quad.obj", quad),
		filepath.Join(dir, "missing.obj"),
	}

	_, err := LoadAll(context.Background(), paths)
	require.Error(t, err)
}
