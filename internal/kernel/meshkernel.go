package kernel

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/cadhy/cadhy/internal/geom"
	"github.com/cadhy/cadhy/internal/meshio"
)

// Compile-time interface checks.
var (
	_ Kernel = (*meshKernel)(nil)
	_ Solid  = (*meshSolid)(nil)
)

// creaseCos is the dihedral threshold separating sharp creases from
// smooth shading edges (30 degrees).
var creaseCos = math.Cos(30 * math.Pi / 180)

const kernelEps = 1e-9

// meshSolid backs a Solid with an owned triangle mesh.
type meshSolid struct {
	mesh *geom.TriMesh
	bbox geom.Box
}

func (s *meshSolid) BoundingBox() geom.Box { return s.bbox }
func (s *meshSolid) TriangleCount() int    { return s.mesh.TriangleCount() }

// meshKernel is the pure-Go geometry backend. It trades analytic edges
// for robustness: every HLR output is a line segment, and occlusion is
// decided per edge by midpoint depth testing.
type meshKernel struct{}

func (k *meshKernel) BuildFromMesh(m *geom.TriMesh) (Solid, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("kernel: rejecting mesh: %w", err)
	}
	cp := &geom.TriMesh{
		Vertices: append([]geom.Vec3(nil), m.Vertices...),
		Indices:  append([]uint32(nil), m.Indices...),
	}
	bbox := geom.EmptyBox()
	for _, v := range cp.Vertices {
		bbox.Extend(v)
	}
	return &meshSolid{mesh: cp, bbox: bbox}, nil
}

func (k *meshKernel) Serialize(s Solid) ([]byte, error) {
	ms, err := ownSolid(s)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := meshio.WriteMesh(&buf, ms.mesh); err != nil {
		return nil, fmt.Errorf("kernel: serialize: %w", err)
	}
	return buf.Bytes(), nil
}

func (k *meshKernel) Deserialize(data []byte) (Solid, error) {
	m, err := meshio.ReadMesh(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("kernel: deserialize: %w", err)
	}
	return k.BuildFromMesh(m)
}

func ownSolid(s Solid) (*meshSolid, error) {
	ms, ok := s.(*meshSolid)
	if !ok {
		return nil, fmt.Errorf("kernel: solid %T belongs to a different kernel", s)
	}
	return ms, nil
}

type edgeKey struct{ lo, hi uint32 }

func keyOf(a, b uint32) edgeKey {
	if a < b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

// HLR classifies the mesh edges against the view plane. Boundary edges
// and creases sharper than 30 degrees are drawn as sharp; smooth edges
// are drawn only where the surface silhouettes against the viewer.
// Visibility is decided by depth-testing each edge midpoint against
// every non-incident triangle, quadratic in the mesh size but exact
// for the mesh resolutions the mesher emits.
func (k *meshKernel) HLR(s Solid, view geom.Plane) ([]Edge, error) {
	ms, err := ownSolid(s)
	if err != nil {
		return nil, err
	}
	m := ms.mesh
	nv := len(m.Vertices)
	nt := m.TriangleCount()

	proj := make([]geom.Vec2, nv)
	depth := make([]float64, nv)
	for i, v := range m.Vertices {
		proj[i] = view.Project(v)
		depth[i] = view.SignedDistance(v)
	}

	faceNormal := make([]geom.Vec3, nt)
	faceDegenerate := make([]bool, nt)
	for t := 0; t < nt; t++ {
		a, b, c := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
		n := m.Vertices[b].Sub(m.Vertices[a]).Cross(m.Vertices[c].Sub(m.Vertices[a]))
		faceNormal[t] = n.Normalized()
		// Triangles edge-on to the viewer have no projected interior and
		// never occlude anything.
		ab, ac := proj[b].Sub(proj[a]), proj[c].Sub(proj[a])
		faceDegenerate[t] = math.Abs(ab.Cross(ac)) < kernelEps
	}

	edges := make(map[edgeKey][]int, nt*3/2)
	for t := 0; t < nt; t++ {
		a, b, c := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
		edges[keyOf(a, b)] = append(edges[keyOf(a, b)], t)
		edges[keyOf(b, c)] = append(edges[keyOf(b, c)], t)
		edges[keyOf(c, a)] = append(edges[keyOf(c, a)], t)
	}

	// Deterministic output order.
	keys := make([]edgeKey, 0, len(edges))
	for key := range edges {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].lo != keys[j].lo {
			return keys[i].lo < keys[j].lo
		}
		return keys[i].hi < keys[j].hi
	})

	var out []Edge
	for _, key := range keys {
		faces := edges[key]
		if proj[key.lo].Sub(proj[key.hi]).Length() < kernelEps {
			continue // projects to a point
		}
		var class EdgeClass
		switch len(faces) {
		case 1:
			class = EdgeSharp
		case 2:
			d0 := faceNormal[faces[0]].Dot(view.Normal)
			d1 := faceNormal[faces[1]].Dot(view.Normal)
			cos := faceNormal[faces[0]].Dot(faceNormal[faces[1]])
			switch {
			case d0*d1 < 0:
				class = EdgeOutline
			case cos < creaseCos:
				class = EdgeSharp
			default:
				continue // interior smooth edge, not drawn
			}
		default:
			slog.Warn("non-manifold edge in HLR input", "faces", len(faces))
			class = EdgeSharp
		}

		mid := m.Vertices[key.lo].Add(m.Vertices[key.hi]).Scale(0.5)
		hidden := occluded(m, proj, depth, faceDegenerate, key, view.Project(mid), view.SignedDistance(mid))
		out = append(out, Edge{A: proj[key.lo], B: proj[key.hi], Class: class, Hidden: hidden})
	}
	return out, nil
}

// occluded reports whether any triangle not touching the edge covers
// the projected point p at a depth nearer to the viewer.
func occluded(m *geom.TriMesh, proj []geom.Vec2, depth []float64, degenerate []bool, key edgeKey, p geom.Vec2, d float64) bool {
	nt := m.TriangleCount()
	for t := 0; t < nt; t++ {
		if degenerate[t] {
			continue
		}
		a, b, c := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
		if a == key.lo || a == key.hi || b == key.lo || b == key.hi || c == key.lo || c == key.hi {
			continue
		}
		w0, w1, w2, ok := barycentric(proj[a], proj[b], proj[c], p)
		if !ok {
			continue
		}
		td := w0*depth[a] + w1*depth[b] + w2*depth[c]
		if td > d+kernelEps {
			return true
		}
	}
	return false
}

// barycentric returns the weights of p in triangle (a, b, c), reporting
// containment inclusively on the boundary.
func barycentric(a, b, c, p geom.Vec2) (w0, w1, w2 float64, inside bool) {
	area := b.Sub(a).Cross(c.Sub(a))
	if math.Abs(area) < kernelEps {
		return 0, 0, 0, false
	}
	w0 = b.Sub(p).Cross(c.Sub(p)) / area
	w1 = c.Sub(p).Cross(a.Sub(p)) / area
	w2 = 1 - w0 - w1
	const tol = 1e-9
	inside = w0 >= -tol && w1 >= -tol && w2 >= -tol
	return w0, w1, w2, inside
}

// SectionPlane intersects every triangle with the plane and chains the
// resulting segments into closed loops. Open chains indicate the plane
// grazing the mesh boundary and are dropped with a warning.
func (k *meshKernel) SectionPlane(s Solid, plane geom.Plane) ([][]geom.Vec2, error) {
	ms, err := ownSolid(s)
	if err != nil {
		return nil, err
	}
	m := ms.mesh

	dist := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		dist[i] = plane.SignedDistance(v)
	}

	type seg struct{ a, b geom.Vec2 }
	var segs []seg
	nt := m.TriangleCount()
	for t := 0; t < nt; t++ {
		idx := [3]uint32{m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]}
		var pts []geom.Vec2
		for e := 0; e < 3; e++ {
			i, j := idx[e], idx[(e+1)%3]
			di, dj := dist[i], dist[j]
			if (di > 0) == (dj > 0) {
				continue
			}
			f := di / (di - dj)
			p3 := m.Vertices[i].Add(m.Vertices[j].Sub(m.Vertices[i]).Scale(f))
			pts = append(pts, plane.Project(p3))
		}
		if len(pts) == 2 && pts[0].Sub(pts[1]).Length() > kernelEps {
			segs = append(segs, seg{pts[0], pts[1]})
		}
	}
	if len(segs) == 0 {
		return nil, nil
	}

	// Chain segments into loops through quantised endpoint buckets.
	type qp struct{ x, y int64 }
	quant := func(p geom.Vec2) qp {
		const q = 1e7
		return qp{int64(math.Round(p.X * q)), int64(math.Round(p.Y * q))}
	}
	adj := make(map[qp][]int, len(segs)*2)
	for i, sg := range segs {
		adj[quant(sg.a)] = append(adj[quant(sg.a)], i)
		adj[quant(sg.b)] = append(adj[quant(sg.b)], i)
	}

	used := make([]bool, len(segs))
	var loops [][]geom.Vec2
	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		loop := []geom.Vec2{segs[start].a, segs[start].b}
		cur := quant(segs[start].b)
		home := quant(segs[start].a)
		closed := false
		for cur != home {
			next := -1
			for _, cand := range adj[cur] {
				if !used[cand] {
					next = cand
					break
				}
			}
			if next < 0 {
				break
			}
			used[next] = true
			sg := segs[next]
			if quant(sg.a) == cur {
				loop = append(loop, sg.b)
				cur = quant(sg.b)
			} else {
				loop = append(loop, sg.a)
				cur = quant(sg.a)
			}
		}
		if cur == home {
			closed = true
			loop = loop[:len(loop)-1] // drop the repeated closing point
		}
		if !closed {
			slog.Warn("open section chain dropped", "points", len(loop))
			continue
		}
		if len(loop) >= 3 {
			loops = append(loops, loop)
		}
	}
	return loops, nil
}
