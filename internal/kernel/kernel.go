// Package kernel defines the narrow geometry-kernel capability surface
// consumed by the projection engine: build a solid from a triangle
// mesh, hidden-line removal, planar sections, and byte-buffer
// persistence. Solids are opaque handles; callers never see kernel
// internals.
//
// Kernels are not safe for concurrent use. The process-wide default is
// intended for single-threaded use from the drawing path.
package kernel

import "github.com/cadhy/cadhy/internal/geom"

// EdgeClass labels an HLR output edge by its geometric origin.
type EdgeClass int

const (
	// EdgeSharp marks a boundary edge or a crease above the smoothness
	// threshold.
	EdgeSharp EdgeClass = iota
	// EdgeSmooth marks a drawn edge on a smooth surface region.
	EdgeSmooth
	// EdgeOutline marks a silhouette: the surface folds away from the
	// viewer across the edge.
	EdgeOutline
)

// String returns the drawing label of the class.
func (c EdgeClass) String() string {
	switch c {
	case EdgeSharp:
		return "sharp"
	case EdgeSmooth:
		return "smooth"
	case EdgeOutline:
		return "outline"
	}
	return "unknown"
}

// Edge is one hidden-line-removal output segment in view-plane
// coordinates.
type Edge struct {
	A, B   geom.Vec2
	Class  EdgeClass
	Hidden bool
}

// Solid is an opaque handle to kernel-owned geometry.
type Solid interface {
	BoundingBox() geom.Box
	TriangleCount() int
}

// Kernel is the capability set the drawing pipeline needs from a
// geometry backend. An implementation may wrap a native BREP kernel;
// the default is the pure-Go mesh backend in this package.
type Kernel interface {
	// BuildFromMesh ingests a validated triangle mesh.
	BuildFromMesh(m *geom.TriMesh) (Solid, error)
	// HLR projects the solid onto the view plane and classifies its
	// edges into visible and hidden curves. The plane normal points
	// toward the viewer.
	HLR(s Solid, view geom.Plane) ([]Edge, error)
	// SectionPlane intersects the solid with a plane and returns the
	// closed region boundaries in plane coordinates.
	SectionPlane(s Solid, plane geom.Plane) ([][]geom.Vec2, error)
	// Serialize encodes a solid into an opaque byte buffer for caching.
	Serialize(s Solid) ([]byte, error)
	// Deserialize decodes a buffer produced by Serialize.
	Deserialize(data []byte) (Solid, error)
}

var defaultKernel Kernel = &meshKernel{}

// Default returns the process-wide kernel singleton.
func Default() Kernel { return defaultKernel }
