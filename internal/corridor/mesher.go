package corridor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cadhy/cadhy/internal/geom"
)

// MeshOptions controls corridor mesh generation.
type MeshOptions struct {
	// Resolution is the station sampling interval Δ (m). Default 1.0.
	Resolution float64
	// RingPoints is the tessellation count for curved sections. Default 16.
	RingPoints int
	// Workers bounds the parallel strip builders. Default NumCPU. The
	// output is identical for any worker count: workers fill disjoint
	// strip buffers that are merged in station order.
	Workers int
}

func (o *MeshOptions) fill() {
	if o.Resolution <= 0 {
		o.Resolution = 1.0
	}
	if o.RingPoints <= 0 {
		o.RingPoints = 16
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
}

// ring is one sampled cross-section placed in 3-D. Vertices are stored
// in the shared buffer: inner points at [base, base+n), outer points at
// [base+n, base+2n).
type ring struct {
	base    uint32
	n       int
	station float64
}

func (r ring) inner(i int) uint32 { return r.base + uint32(i) }
func (r ring) outer(i int) uint32 { return r.base + uint32(r.n) + uint32(i) }

// BuildMesh sweeps the corridor sections along the alignment and
// stitches the rings into a watertight solid: inner (water-facing)
// surface, outer (ground-facing) surface, wall-top edge bands and end
// caps. Adjacent rings of different cardinality are joined by a
// parametrically re-sampled loft. Normals are recomputed from the final
// triangle set; per-vertex station tags are attached.
//
// The build is deterministic for a given corridor and options, and is
// aborted at the next ring or strip when ctx is cancelled; no partial
// mesh is ever returned.
func BuildMesh(ctx context.Context, c *Corridor, opts MeshOptions) (*geom.TriMesh, error) {
	opts.fill()
	if len(c.Sections) == 0 {
		return nil, ErrNoSections
	}
	length := c.Length()
	if length <= 0 {
		return nil, ErrNoAlignment
	}

	nRings := int(math.Ceil(length/opts.Resolution)) + 1
	slog.Debug("corridor mesh build", "length", length, "resolution", opts.Resolution, "rings", nRings)

	mesh := &geom.TriMesh{}
	rings := make([]ring, 0, nRings)
	for k := 0; k < nRings; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s := math.Min(float64(k)*opts.Resolution, length)
		r, err := c.buildRing(mesh, s, opts.RingPoints)
		if err != nil {
			return nil, err
		}
		rings = append(rings, r)
	}

	// Strip triangles per adjacent ring pair, built in parallel into
	// disjoint buffers and merged in station order.
	strips := make([][]uint32, len(rings)-1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for k := 0; k < len(rings)-1; k++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			strips[k] = stitchPair(rings[k], rings[k+1])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, s := range strips {
		mesh.Indices = append(mesh.Indices, s...)
	}

	emitCap(mesh, rings[0], false)
	emitCap(mesh, rings[len(rings)-1], true)

	mesh.RecomputeNormals()
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("corridor: mesh failed post-build validation: %w", err)
	}
	if !mesh.IsClosed() {
		return nil, fmt.Errorf("corridor: mesh surface is not closed (%d open edges)", mesh.BoundaryEdgeCount())
	}
	return mesh, nil
}

// buildRing samples the corridor at station s and appends the inner and
// outer ring vertices to the mesh buffer.
func (c *Corridor) buildRing(mesh *geom.TriMesh, s float64, ringPoints int) (ring, error) {
	shape := c.ShapeAt(s)
	wall, floor := c.ThicknessAt(s)

	inner := shape.ProfilePoints(ringPoints)
	outer := shape.OuterProfilePoints(ringPoints, wall, floor)
	if len(inner) < 3 {
		return ring{}, fmt.Errorf("corridor: ring at station %.3f collapsed to %d vertices", s, len(inner))
	}
	if len(outer) != len(inner) {
		return ring{}, fmt.Errorf("corridor: ring at station %.3f has mismatched inner/outer counts %d/%d",
			s, len(inner), len(outer))
	}

	forward := c.Alignment.TangentAt(s)
	up := geom.Vec3{Z: 1}
	right := forward.Cross(up).Normalized()
	origin := c.Alignment.PositionAt(s)
	origin.Z = c.BedElevationAt(s)

	place := func(p geom.Vec2) geom.Vec3 {
		return origin.Add(right.Scale(p.X)).Add(up.Scale(p.Y))
	}

	r := ring{base: uint32(len(mesh.Vertices)), n: len(inner), station: s}
	for _, p := range inner {
		mesh.Vertices = append(mesh.Vertices, place(p))
		mesh.Stations = append(mesh.Stations, s)
	}
	for _, p := range outer {
		mesh.Vertices = append(mesh.Vertices, place(p))
		mesh.Stations = append(mesh.Stations, s)
	}
	return r, nil
}

// liftIndex maps loft step j in [0, steps] to a vertex index of a ring
// with n points.
func liftIndex(j, steps, n int) int {
	if steps == 0 {
		return 0
	}
	return int(math.Round(float64(j) / float64(steps) * float64(n-1)))
}

// stitchPair emits all triangles joining ring a to ring b: the inner
// surface band, the outer surface band (reversed winding) and the two
// wall-top edge bands. Equal-cardinality rings produce the regular
// quad-per-edge bands; unequal rings produce the parametric loft, with
// quads collapsing to triangles where an index repeats.
func stitchPair(a, b ring) []uint32 {
	var out []uint32
	quad := func(p, q, r, s uint32) {
		out = append(out, p, q, r, p, r, s)
	}
	tri := func(p, q, r uint32) {
		out = append(out, p, q, r)
	}

	steps := a.n - 1
	if b.n > a.n {
		steps = b.n - 1
	}

	for j := 0; j < steps; j++ {
		ia0, ia1 := liftIndex(j, steps, a.n), liftIndex(j+1, steps, a.n)
		ib0, ib1 := liftIndex(j, steps, b.n), liftIndex(j+1, steps, b.n)

		// Inner surface: normals point into the channel.
		switch {
		case ia0 == ia1 && ib0 == ib1:
			// nothing to emit
		case ia0 == ia1:
			tri(a.inner(ia0), b.inner(ib1), b.inner(ib0))
		case ib0 == ib1:
			tri(a.inner(ia0), a.inner(ia1), b.inner(ib0))
		default:
			quad(a.inner(ia0), a.inner(ia1), b.inner(ib1), b.inner(ib0))
		}

		// Outer surface: reversed winding, normals away from the channel.
		switch {
		case ia0 == ia1 && ib0 == ib1:
		case ia0 == ia1:
			tri(a.outer(ia0), b.outer(ib0), b.outer(ib1))
		case ib0 == ib1:
			tri(a.outer(ia0), b.outer(ib0), a.outer(ia1))
		default:
			quad(a.outer(ia0), b.outer(ib0), b.outer(ib1), a.outer(ia1))
		}
	}

	// Wall-top edge bands close the solid between the inner and outer
	// rims on each side.
	quad(a.inner(0), b.inner(0), b.outer(0), a.outer(0))
	quad(a.inner(a.n-1), a.outer(a.n-1), b.outer(b.n-1), b.inner(b.n-1))
	return out
}

// emitCap closes one corridor end with the annular band between the
// inner and outer ring polylines. The downstream cap winds the other
// way so both faces point out of the solid.
func emitCap(mesh *geom.TriMesh, r ring, downstream bool) {
	for i := 0; i < r.n-1; i++ {
		if downstream {
			mesh.AddQuad(r.inner(i), r.inner(i+1), r.outer(i+1), r.outer(i))
		} else {
			mesh.AddQuad(r.inner(i), r.outer(i), r.outer(i+1), r.inner(i+1))
		}
	}
}
