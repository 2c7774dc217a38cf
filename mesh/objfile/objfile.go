// Package objfile loads Wavefront OBJ meshes into mesh builders.
package objfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/vkngwrapper/svke/mesh"
	"golang.org/x/sync/errgroup"
)

// Load decodes an OBJ file. A material library with the same base name is
// read when present; faces are triangulated as fans and vertices are
// deduplicated by position index.
func Load(path string) (*mesh.Builder, error) {
	meshFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open mesh %s", path)
	}
	defer meshFile.Close()

	decoder, err := decode(meshFile, strings.TrimSuffix(path, filepath.Ext(path))+".mtl")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode mesh %s", path)
	}

	return build(decoder), nil
}

func decode(meshFile *os.File, materialPath string) (*obj.Decoder, error) {
	matFile, err := os.Open(materialPath)
	if errors.Is(err, os.ErrNotExist) {
		return obj.DecodeReader(meshFile, strings.NewReader(""))
	} else if err != nil {
		return nil, err
	}
	defer matFile.Close()

	return obj.DecodeReader(meshFile, matFile)
}

func build(decoder *obj.Decoder) *mesh.Builder {
	builder := &mesh.Builder{}

	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				addVertex(builder, decoder, face, 0)
				addVertex(builder, decoder, face, i-1)
				addVertex(builder, decoder, face, i)
			}
		}
	}

	return builder
}

func addVertex(builder *mesh.Builder, decoder *obj.Decoder, face obj.Face, faceIndex int) {
	vertInd := face.Vertices[faceIndex]

	builder.AddUnique(vertInd, func() mesh.Vertex {
		vert := mesh.Vertex{
			Position: mgl32.Vec3{
				decoder.Vertices[vertInd*3],
				decoder.Vertices[vertInd*3+1],
				decoder.Vertices[vertInd*3+2],
			},
			Color: mgl32.Vec3{1, 1, 1},
		}

		if faceIndex < len(face.Normals) && face.Normals[faceIndex] >= 0 {
			normInd := face.Normals[faceIndex]
			vert.Normal = mgl32.Vec3{
				decoder.Normals[normInd*3],
				decoder.Normals[normInd*3+1],
				decoder.Normals[normInd*3+2],
			}
		}

		if faceIndex < len(face.Uvs) && face.Uvs[faceIndex] >= 0 {
			uvInd := face.Uvs[faceIndex]
			vert.UV = mgl32.Vec2{
				decoder.Uvs[uvInd*2],
				1.0 - decoder.Uvs[uvInd*2+1],
			}
		}

		return vert
	})
}

// LoadAll decodes several OBJ files concurrently. Results are in the order
// of paths; the first failure cancels the remaining loads.
func LoadAll(ctx context.Context, paths []string) ([]*mesh.Builder, error) {
	builders := make([]*mesh.Builder, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			builder, err := Load(path)
			if err != nil {
				return err
			}
			builders[i] = builder
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return builders, nil
}
