package corridor

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadhy/cadhy/internal/alignment"
	"github.com/cadhy/cadhy/internal/geom"
	"github.com/cadhy/cadhy/internal/section"
	"github.com/cadhy/cadhy/internal/transition"
)

func straightAlignment(t *testing.T, length, startElev, slope float64) *alignment.Alignment {
	t.Helper()
	a, err := alignment.New([]alignment.PI{
		{Position: geom.Vec3{}},
		{Position: geom.Vec3{X: length}},
	}, startElev, slope, nil)
	require.NoError(t, err)
	return a
}

func rectCorridor(t *testing.T, length float64) *Corridor {
	t.Helper()
	a := straightAlignment(t, length, 100, 0.001)
	c, err := New(a, []StationSection{
		{Station: 0, Shape: section.Rectangular{Width: 2, Depth: 1.5}, ManningN: 0.015},
	}, nil, 0.2, 0.25)
	require.NoError(t, err)
	return c
}

func TestNewValidation(t *testing.T) {
	a := straightAlignment(t, 100, 0, 0.001)

	_, err := New(a, nil, nil, 0.2, 0.2)
	assert.ErrorIs(t, err, ErrNoSections)

	_, err = New(nil, []StationSection{{Shape: section.Rectangular{Width: 1, Depth: 1}, ManningN: 0.015}}, nil, 0.2, 0.2)
	assert.ErrorIs(t, err, ErrNoAlignment)

	_, err = New(a, []StationSection{
		{Station: 200, Shape: section.Rectangular{Width: 1, Depth: 1}, ManningN: 0.015},
	}, nil, 0.2, 0.2)
	assert.Error(t, err, "section beyond alignment end must be rejected")

	_, err = New(a, []StationSection{
		{Station: 0, Shape: section.Rectangular{Width: -1, Depth: 1}, ManningN: 0.015},
	}, nil, 0.2, 0.2)
	assert.Error(t, err, "invalid shape must be rejected")

	tr1, _ := transition.New(10, 30, transition.CurveLinear)
	tr2, _ := transition.New(20, 40, transition.CurveLinear)
	_, err = New(a, []StationSection{
		{Station: 0, Shape: section.Rectangular{Width: 1, Depth: 1}, ManningN: 0.015},
	}, []*transition.Transition{tr1, tr2}, 0.2, 0.2)
	assert.Error(t, err, "overlapping transitions must be rejected")
}

func TestThicknessInterpolation(t *testing.T) {
	a := straightAlignment(t, 100, 0, 0.001)
	c, err := New(a, []StationSection{
		{Station: 0, Shape: section.Rectangular{Width: 2, Depth: 1.5}, WallThickness: 0.2, FloorThickness: 0.2, ManningN: 0.015},
		{Station: 100, Shape: section.Rectangular{Width: 2, Depth: 1.5}, WallThickness: 0.4, FloorThickness: 0.3, ManningN: 0.015},
	}, nil, 0.2, 0.2)
	require.NoError(t, err)

	w, f := c.ThicknessAt(50)
	assert.InDelta(t, 0.3, w, 1e-12, "wall thickness must vary linearly, not step")
	assert.InDelta(t, 0.25, f, 1e-12)
}

func TestBedElevationWithTransitionDrop(t *testing.T) {
	a := straightAlignment(t, 100, 50, 0)
	tr, _ := transition.New(40, 50, transition.CurveLinear)
	tr.Drop = 2
	c, err := New(a, []StationSection{
		{Station: 0, Shape: section.Rectangular{Width: 2, Depth: 1.5}, ManningN: 0.015},
	}, []*transition.Transition{tr}, 0.2, 0.2)
	require.NoError(t, err)

	assert.InDelta(t, 50.0, c.BedElevationAt(40), 1e-12)
	assert.InDelta(t, 49.0, c.BedElevationAt(45), 1e-12, "mid-transition invert follows the curve")
	assert.InDelta(t, 48.0, c.BedElevationAt(80), 1e-12, "drop persists downstream")
}

// A slope break falling inside a drop transition: the chute ramp
// superposes on the alignment profile, so the invert stays continuous
// through the break and the full drop carries past the interval.
func TestBedElevationDropSuperposesOnSlopeBreak(t *testing.T) {
	a, err := alignment.New([]alignment.PI{
		{Position: geom.Vec3{}},
		{Position: geom.Vec3{X: 100}},
	}, 50, 0.001, []alignment.SlopeBreak{{Station: 45, Slope: 0.005}})
	require.NoError(t, err)
	tr, err := transition.New(40, 50, transition.CurveLinear)
	require.NoError(t, err)
	tr.Drop = 2
	c, err := New(a, []StationSection{
		{Station: 0, Shape: section.Rectangular{Width: 2, Depth: 1.5}, ManningN: 0.015},
	}, []*transition.Transition{tr}, 0.2, 0.2)
	require.NoError(t, err)

	// Inside the interval the ramp adds to the alignment elevation.
	assert.InDelta(t, a.ElevationAt(47)+tr.ElevationAt(47), c.BedElevationAt(47), 1e-12)
	// Downstream the alignment profile carries the full drop.
	assert.InDelta(t, a.ElevationAt(80)-2, c.BedElevationAt(80), 1e-12)
	// No step where the interval ends.
	assert.InDelta(t, c.BedElevationAt(50), c.BedElevationAt(50.001), 0.001)
}

func TestBuildMeshUniformRectangular(t *testing.T) {
	c := rectCorridor(t, 100)
	mesh, err := BuildMesh(context.Background(), c, MeshOptions{Resolution: 2})
	require.NoError(t, err)
	require.NoError(t, mesh.Validate())
	assert.True(t, mesh.IsClosed(), "uniform corridor mesh must be watertight")

	// Station tags are non-decreasing in vertex emission order and span
	// the whole corridor.
	last := -1.0
	for _, s := range mesh.Stations {
		assert.GreaterOrEqual(t, s, last)
		last = s
	}
	assert.Equal(t, 0.0, mesh.Stations[0])
	assert.Equal(t, 100.0, last)

	// Outer floor vertices sit exactly floor_thickness below the bed.
	// For the 4-point rectangular ring the outer floor vertices are ring
	// indices 5 and 6 (inner 0-3, outer 4-7).
	for k := 0; k*8 < len(mesh.Vertices); k++ {
		s := mesh.Stations[k*8]
		bed := c.BedElevationAt(s)
		for _, idx := range []int{k*8 + 5, k*8 + 6} {
			assert.InDelta(t, bed-0.25, mesh.Vertices[idx].Z, 1e-9,
				"outer floor at station %.1f", s)
		}
	}
}

func TestBuildMeshDeterministic(t *testing.T) {
	c := rectCorridor(t, 50)
	opts := MeshOptions{Resolution: 1.5, Workers: 4}
	m1, err := BuildMesh(context.Background(), c, opts)
	require.NoError(t, err)
	m2, err := BuildMesh(context.Background(), c, opts)
	require.NoError(t, err)
	assert.Equal(t, m1.Vertices, m2.Vertices)
	assert.Equal(t, m1.Indices, m2.Indices)
	assert.Equal(t, m1.Normals, m2.Normals)
	assert.Equal(t, m1.Stations, m2.Stations)
}

// Trapezoidal inlet morphing to a triangular outlet: rings collapse from
// 4 to 3 vertices through the transition and the loft must keep the
// solid closed.
func TestBuildMeshTrapToTriTransition(t *testing.T) {
	a := straightAlignment(t, 10, 0, 0.001)
	tr, err := transition.New(2, 8, transition.CurveLinear)
	require.NoError(t, err)
	c, err := New(a, []StationSection{
		{Station: 0, Shape: section.Trapezoidal{BottomWidth: 2, Depth: 1.5, SlopeLeft: 1, SlopeRight: 1}, ManningN: 0.015},
		{Station: 8, Shape: section.Triangular{Depth: 1.5, SlopeLeft: 1, SlopeRight: 1}, ManningN: 0.015},
	}, []*transition.Transition{tr}, 0.2, 0.25)
	require.NoError(t, err)

	mesh, err := BuildMesh(context.Background(), c, MeshOptions{Resolution: 1})
	require.NoError(t, err)
	require.NoError(t, mesh.Validate())
	assert.True(t, mesh.IsClosed(), "loft across the cardinality change must stay watertight")

	countAt := func(station float64) int {
		n := 0
		for _, s := range mesh.Stations {
			if s == station {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 8, countAt(0), "inlet ring: 4 inner + 4 outer vertices")
	assert.Equal(t, 6, countAt(10), "outlet ring: 3 inner + 3 outer vertices")
}

func TestBuildMeshCancellation(t *testing.T) {
	c := rectCorridor(t, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := BuildMesh(ctx, c, MeshOptions{Resolution: 0.5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildMeshCurvedAlignmentWatertight(t *testing.T) {
	a, err := alignment.New([]alignment.PI{
		{Position: geom.Vec3{}},
		{Position: geom.Vec3{X: 100}, Radius: 50},
		{Position: geom.Vec3{X: 100, Y: 100}},
	}, 10, 0.002, nil)
	require.NoError(t, err)
	c, err := New(a, []StationSection{
		{Station: 0, Shape: section.UShape{Width: 2, Depth: 1.5, InvertRadius: 0.5}, ManningN: 0.014},
	}, nil, 0.2, 0.25)
	require.NoError(t, err)

	mesh, err := BuildMesh(context.Background(), c, MeshOptions{Resolution: 2, RingPoints: 12})
	require.NoError(t, err)
	assert.True(t, mesh.IsClosed())

	// Triangle count stays within the 6·N·R bound.
	nRings := int(math.Ceil(a.Length()/2)) + 1
	ringPts := len((section.UShape{Width: 2, Depth: 1.5, InvertRadius: 0.5}).ProfilePoints(12))
	assert.LessOrEqual(t, mesh.TriangleCount(), 6*nRings*ringPts)
}
