package geom

import (
	"fmt"
)

// TriMesh is an indexed triangle mesh. Indices come in groups of three,
// counter-clockwise when seen from outside the solid. Stations carries
// the chainage at which each vertex was sampled; it is parallel to
// Vertices and may be nil for meshes that did not come from a corridor
// sweep.
type TriMesh struct {
	Vertices []Vec3
	Indices  []uint32
	Normals  []Vec3
	Stations []float64
}

// TriangleCount returns the number of triangles in the mesh.
func (m *TriMesh) TriangleCount() int { return len(m.Indices) / 3 }

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *TriMesh) Bounds() Box {
	b := EmptyBox()
	for _, v := range m.Vertices {
		b.Extend(v)
	}
	return b
}

// AddTriangle appends one triangle given three vertex indices.
func (m *TriMesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// AddQuad appends a quad split into two triangles (a,b,c) and (a,c,d).
func (m *TriMesh) AddQuad(a, b, c, d uint32) {
	m.Indices = append(m.Indices, a, b, c, a, c, d)
}

// RecomputeNormals discards any existing normals and rebuilds them by
// accumulating the area-weighted face normal of every triangle onto its
// three vertices, then normalising. Area weighting falls out of the
// unnormalised cross product.
func (m *TriMesh) RecomputeNormals() {
	m.Normals = make([]Vec3, len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		va, vb, vc := m.Vertices[a], m.Vertices[b], m.Vertices[c]
		n := vb.Sub(va).Cross(vc.Sub(va))
		m.Normals[a] = m.Normals[a].Add(n)
		m.Normals[b] = m.Normals[b].Add(n)
		m.Normals[c] = m.Normals[c].Add(n)
	}
	for i := range m.Normals {
		m.Normals[i] = m.Normals[i].Normalized()
	}
}

// Validate checks the structural invariants of the mesh: index count a
// multiple of three, all indices in range, and no triangle referencing
// the same vertex twice.
func (m *TriMesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh: index count %d is not a multiple of 3", len(m.Indices))
	}
	n := uint32(len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a >= n || b >= n || c >= n {
			return fmt.Errorf("mesh: triangle %d references vertex out of range [%d %d %d]", i/3, a, b, c)
		}
		if a == b || b == c || a == c {
			return fmt.Errorf("mesh: triangle %d is degenerate [%d %d %d]", i/3, a, b, c)
		}
	}
	if m.Stations != nil && len(m.Stations) != len(m.Vertices) {
		return fmt.Errorf("mesh: %d station tags for %d vertices", len(m.Stations), len(m.Vertices))
	}
	if m.Normals != nil && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("mesh: %d normals for %d vertices", len(m.Normals), len(m.Vertices))
	}
	return nil
}

type edgeKey struct{ lo, hi uint32 }

// IsClosed reports whether every undirected edge is shared by exactly
// two triangles, i.e. the surface is watertight.
func (m *TriMesh) IsClosed() bool {
	counts := make(map[edgeKey]int, len(m.Indices))
	add := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		counts[edgeKey{a, b}]++
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		add(m.Indices[i], m.Indices[i+1])
		add(m.Indices[i+1], m.Indices[i+2])
		add(m.Indices[i+2], m.Indices[i])
	}
	for _, c := range counts {
		if c != 2 {
			return false
		}
	}
	return len(counts) > 0
}

// BoundaryEdgeCount returns the number of undirected edges not shared
// by exactly two triangles. Zero means watertight.
func (m *TriMesh) BoundaryEdgeCount() int {
	counts := make(map[edgeKey]int, len(m.Indices))
	add := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		counts[edgeKey{a, b}]++
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		add(m.Indices[i], m.Indices[i+1])
		add(m.Indices[i+1], m.Indices[i+2])
		add(m.Indices[i+2], m.Indices[i])
	}
	open := 0
	for _, c := range counts {
		if c != 2 {
			open++
		}
	}
	return open
}
