package geom

import (
	"math"
	"testing"
)

func TestVec3CrossRightHanded(t *testing.T) {
	x := Vec3{X: 1}
	y := Vec3{Y: 1}
	z := x.Cross(y)
	if z.Z != 1 || z.X != 0 || z.Y != 0 {
		t.Fatalf("x cross y = %+v, want +z", z)
	}
}

func TestNormalizedZeroVector(t *testing.T) {
	v := Vec3{}.Normalized()
	if v != (Vec3{}) {
		t.Fatalf("normalising zero vector produced %+v", v)
	}
}

func TestPlaneProjectRoundTrip(t *testing.T) {
	pl := NewPlane(Vec3{X: 1, Y: 2, Z: 3}, Vec3{Z: 1}, Vec3{Y: 1})
	p := Vec3{X: 4, Y: 7, Z: 3}
	uv := pl.Project(p)
	// right = up × normal = (1,0,0) for a z-normal, y-up plane
	if math.Abs(uv.X-3) > 1e-12 || math.Abs(uv.Y-5) > 1e-12 {
		t.Fatalf("projected to %+v, want (3, 5)", uv)
	}
}

// tetra builds the minimal closed mesh.
func tetra() *TriMesh {
	m := &TriMesh{
		Vertices: []Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		},
	}
	m.AddTriangle(0, 2, 1)
	m.AddTriangle(0, 1, 3)
	m.AddTriangle(1, 2, 3)
	m.AddTriangle(2, 0, 3)
	return m
}

func TestTetraIsClosed(t *testing.T) {
	m := tetra()
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if !m.IsClosed() {
		t.Fatal("tetrahedron should be watertight")
	}
	if n := m.BoundaryEdgeCount(); n != 0 {
		t.Fatalf("boundary edges = %d, want 0", n)
	}
}

func TestOpenStripIsNotClosed(t *testing.T) {
	m := &TriMesh{Vertices: []Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}
	m.AddTriangle(0, 1, 2)
	if m.IsClosed() {
		t.Fatal("single triangle reported watertight")
	}
}

func TestRecomputeNormalsUnitLength(t *testing.T) {
	m := tetra()
	m.RecomputeNormals()
	if len(m.Normals) != len(m.Vertices) {
		t.Fatalf("normals %d, vertices %d", len(m.Normals), len(m.Vertices))
	}
	for i, n := range m.Normals {
		if math.Abs(n.Length()-1) > 1e-12 {
			t.Fatalf("normal %d has length %g", i, n.Length())
		}
	}
}

func TestValidateRejectsDegenerateTriangle(t *testing.T) {
	m := &TriMesh{Vertices: []Vec3{{0, 0, 0}, {1, 0, 0}}}
	m.Indices = []uint32{0, 0, 1}
	if err := m.Validate(); err == nil {
		t.Fatal("expected error for repeated vertex index")
	}
}
