package utils

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const quadObj = `# unit quad
o quad
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 1.0 1.0 0.0
v 0.0 1.0 0.0
f 1 2 3 4
`

func TestLoadMeshTriangulatesFaces(t *testing.T) {
	vertices, err := LoadMesh(strings.NewReader(quadObj))
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
	if len(vertices) != 6 {
		t.Fatalf("expected two triangles, got %d vertices", len(vertices))
	}

	expected := []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0},
		{0, 0, 0}, {1, 1, 0}, {0, 1, 0},
	}
	for i, vertex := range vertices {
		if !vertex.Position.ApproxEqual(expected[i]) {
			t.Errorf("vertex %d: expected %v, got %v", i, expected[i], vertex.Position)
		}
		if vertex.Color != meshColor {
			t.Errorf("vertex %d: expected the mesh color, got %v", i, vertex.Color)
		}
	}
}

func TestLoadMeshWithoutFaces(t *testing.T) {
	_, err := LoadMesh(strings.NewReader("o points\nv 0 0 0\nv 1 0 0\n"))
	if err == nil {
		t.Error("expected an error for a mesh without triangles")
	}
}

func TestLoadMeshFileMissing(t *testing.T) {
	_, err := LoadMeshFile("testdata/does-not-exist.obj")
	if err == nil {
		t.Error("expected an error for a missing mesh file")
	}
}
