package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadhy/cadhy/internal/geom"
)

// boxMesh builds a closed axis-aligned box with one corner at the
// origin and outward winding.
func boxMesh(dx, dy, dz float64) *geom.TriMesh {
	m := &geom.TriMesh{Vertices: []geom.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: dx, Y: 0, Z: 0}, {X: dx, Y: dy, Z: 0}, {X: 0, Y: dy, Z: 0},
		{X: 0, Y: 0, Z: dz}, {X: dx, Y: 0, Z: dz}, {X: dx, Y: dy, Z: dz}, {X: 0, Y: dy, Z: dz},
	}}
	for _, tri := range [][3]uint32{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4}, // front
		{2, 3, 7}, {2, 7, 6}, // back
		{0, 4, 7}, {0, 7, 3}, // left
		{1, 2, 6}, {1, 6, 5}, // right
	} {
		m.AddTriangle(tri[0], tri[1], tri[2])
	}
	return m
}

func TestBuildFromMeshBounds(t *testing.T) {
	k := Default()
	s, err := k.BuildFromMesh(boxMesh(10, 20, 30))
	require.NoError(t, err)
	assert.Equal(t, 12, s.TriangleCount())
	assert.Equal(t, geom.Vec3{X: 10, Y: 20, Z: 30}, s.BoundingBox().Max)
}

func TestBuildFromMeshRejectsInvalid(t *testing.T) {
	bad := &geom.TriMesh{Vertices: []geom.Vec3{{X: 0, Y: 0, Z: 0}}, Indices: []uint32{0, 0, 5}}
	_, err := Default().BuildFromMesh(bad)
	assert.Error(t, err)
}

// Top view of a 10×20×30 box: the top rectangle is visible, the bottom
// rectangle hidden, vertical edges vanish, and the coplanar face
// diagonals are not drawn.
func TestHLRBoxTopView(t *testing.T) {
	k := Default()
	s, err := k.BuildFromMesh(boxMesh(10, 20, 30))
	require.NoError(t, err)

	top := geom.NewPlane(geom.Vec3{}, geom.Vec3{Z: 1}, geom.Vec3{Y: 1})
	edges, err := k.HLR(s, top)
	require.NoError(t, err)

	visible, hidden := 0, 0
	for _, e := range edges {
		assert.Equal(t, EdgeSharp, e.Class)
		if e.Hidden {
			hidden++
		} else {
			visible++
		}
		// Every drawn edge is axis-aligned in this view.
		assert.True(t, math.Abs(e.A.X-e.B.X) < 1e-9 || math.Abs(e.A.Y-e.B.Y) < 1e-9)
	}
	assert.Equal(t, 4, visible, "top rectangle")
	assert.Equal(t, 4, hidden, "bottom rectangle")
}

func TestHLRDeterministic(t *testing.T) {
	k := Default()
	s, err := k.BuildFromMesh(boxMesh(10, 20, 30))
	require.NoError(t, err)
	view := geom.NewPlane(geom.Vec3{}, geom.Vec3{Z: 1}, geom.Vec3{Y: 1})
	e1, err := k.HLR(s, view)
	require.NoError(t, err)
	e2, err := k.HLR(s, view)
	require.NoError(t, err)
	assert.Equal(t, e1, e2)
}

func signedArea(loop []geom.Vec2) float64 {
	a := 0.0
	for i := range loop {
		j := (i + 1) % len(loop)
		a += loop[i].Cross(loop[j])
	}
	return a / 2
}

func TestSectionPlaneBox(t *testing.T) {
	k := Default()
	s, err := k.BuildFromMesh(boxMesh(10, 20, 30))
	require.NoError(t, err)

	cut := geom.NewPlane(geom.Vec3{Z: 15}, geom.Vec3{Z: 1}, geom.Vec3{Y: 1})
	loops, err := k.SectionPlane(s, cut)
	require.NoError(t, err)
	require.Len(t, loops, 1, "one closed boundary")
	assert.InDelta(t, 200.0, math.Abs(signedArea(loops[0])), 1e-9)
}

func TestSectionPlaneMiss(t *testing.T) {
	k := Default()
	s, err := k.BuildFromMesh(boxMesh(10, 20, 30))
	require.NoError(t, err)

	cut := geom.NewPlane(geom.Vec3{Z: 100}, geom.Vec3{Z: 1}, geom.Vec3{Y: 1})
	loops, err := k.SectionPlane(s, cut)
	require.NoError(t, err)
	assert.Empty(t, loops)
}

func TestSerializeRoundTrip(t *testing.T) {
	k := Default()
	s, err := k.BuildFromMesh(boxMesh(10, 20, 30))
	require.NoError(t, err)

	data, err := k.Serialize(s)
	require.NoError(t, err)
	got, err := k.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, s.TriangleCount(), got.TriangleCount())
	assert.Equal(t, s.BoundingBox(), got.BoundingBox())
}

type foreignSolid struct{}

func (foreignSolid) BoundingBox() geom.Box { return geom.EmptyBox() }
func (foreignSolid) TriangleCount() int    { return 0 }

func TestForeignSolidRejected(t *testing.T) {
	k := Default()
	_, err := k.Serialize(foreignSolid{})
	assert.Error(t, err)
	_, err = k.HLR(foreignSolid{}, geom.NewPlane(geom.Vec3{}, geom.Vec3{Z: 1}, geom.Vec3{Y: 1}))
	assert.Error(t, err)
}
