package utils

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

var meshColor = mgl32.Vec3{1, 1, 1}

// LoadMesh decodes a Wavefront OBJ stream into a triangle list. Polygons are split into
// fans around their first vertex.
func LoadMesh(objReader io.Reader) ([]Vertex, error) {
	// Materials are not drawn, an empty library keeps the decoder from looking for one
	decoder, err := obj.DecodeReader(objReader, strings.NewReader(""))
	if err != nil {
		return nil, errors.Wrap(err, "decode obj")
	}

	var vertices []Vertex
	for _, decodedObj := range decoder.Objects {
		for _, face := range decodedObj.Faces {
			for i := 2; i < len(face.Vertices); i++ {
				for _, corner := range []int{0, i - 1, i} {
					vertInd := face.Vertices[corner]
					if vertInd < 0 || vertInd*3+2 >= len(decoder.Vertices) {
						return nil, errors.Newf("face references missing vertex %d", vertInd)
					}

					vertices = append(vertices, Vertex{
						Position: mgl32.Vec3{
							decoder.Vertices[vertInd*3],
							decoder.Vertices[vertInd*3+1],
							decoder.Vertices[vertInd*3+2],
						},
						Color: meshColor,
					})
				}
			}
		}
	}

	if len(vertices) == 0 {
		return nil, errors.New("mesh contains no triangles")
	}

	return vertices, nil
}

func LoadMeshFile(path string) ([]Vertex, error) {
	meshFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open mesh %s", path)
	}
	defer meshFile.Close()

	vertices, err := LoadMesh(meshFile)
	if err != nil {
		return nil, errors.Wrapf(err, "load mesh %s", path)
	}

	return vertices, nil
}
