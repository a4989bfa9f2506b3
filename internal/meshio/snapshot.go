// Package meshio persists corridor meshes and solver state in compact
// little-endian binary snapshots. The formats are caching artifacts of
// this tool, not published interchange formats.
package meshio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cadhy/cadhy/internal/geom"
)

// Mesh snapshot layout:
//
//	u32 magic "CDHM" | u16 version | u16 flags
//	u32 vertex count | u32 index count
//	f64 vertex stream (x y z per vertex)
//	u32 index stream
//	f32 normal stream (if flagNormals)
//	f64 station stream (if flagStations)
const (
	meshMagic   = 0x4d484443 // "CDHM" little-endian
	meshVersion = 1

	flagNormals  = 1 << 0
	flagStations = 1 << 1
)

// maxSnapshotElems bounds the element counts a snapshot header may
// declare, so a corrupt header cannot trigger multi-gigabyte
// allocations before the first stream read fails.
const maxSnapshotElems = 1 << 27

type meshHeader struct {
	Magic       uint32
	Version     uint16
	Flags       uint16
	VertexCount uint32
	IndexCount  uint32
}

// WriteMesh serialises a mesh snapshot.
func WriteMesh(w io.Writer, m *geom.TriMesh) error {
	h := meshHeader{
		Magic:       meshMagic,
		Version:     meshVersion,
		VertexCount: uint32(len(m.Vertices)),
		IndexCount:  uint32(len(m.Indices)),
	}
	if m.Normals != nil {
		h.Flags |= flagNormals
	}
	if m.Stations != nil {
		h.Flags |= flagStations
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("meshio: write header: %w", err)
	}

	verts := make([]float64, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		verts = append(verts, v.X, v.Y, v.Z)
	}
	if err := binary.Write(w, binary.LittleEndian, verts); err != nil {
		return fmt.Errorf("meshio: write vertices: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, m.Indices); err != nil {
		return fmt.Errorf("meshio: write indices: %w", err)
	}
	if m.Normals != nil {
		ns := make([]float32, 0, len(m.Normals)*3)
		for _, n := range m.Normals {
			ns = append(ns, float32(n.X), float32(n.Y), float32(n.Z))
		}
		if err := binary.Write(w, binary.LittleEndian, ns); err != nil {
			return fmt.Errorf("meshio: write normals: %w", err)
		}
	}
	if m.Stations != nil {
		if err := binary.Write(w, binary.LittleEndian, m.Stations); err != nil {
			return fmt.Errorf("meshio: write stations: %w", err)
		}
	}
	return nil
}

// ReadMesh deserialises a mesh snapshot and validates its indices.
func ReadMesh(r io.Reader) (*geom.TriMesh, error) {
	var h meshHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("meshio: read header: %w", err)
	}
	if h.Magic != meshMagic {
		return nil, fmt.Errorf("meshio: bad magic %#x", h.Magic)
	}
	if h.Version != meshVersion {
		return nil, fmt.Errorf("meshio: unsupported mesh snapshot version %d", h.Version)
	}
	if h.VertexCount > maxSnapshotElems || h.IndexCount > maxSnapshotElems {
		return nil, fmt.Errorf("meshio: implausible snapshot counts: %d vertices, %d indices", h.VertexCount, h.IndexCount)
	}

	verts := make([]float64, int(h.VertexCount)*3)
	if err := binary.Read(r, binary.LittleEndian, verts); err != nil {
		return nil, fmt.Errorf("meshio: read vertices: %w", err)
	}
	m := &geom.TriMesh{
		Vertices: make([]geom.Vec3, h.VertexCount),
		Indices:  make([]uint32, h.IndexCount),
	}
	for i := range m.Vertices {
		m.Vertices[i] = geom.Vec3{X: verts[i*3], Y: verts[i*3+1], Z: verts[i*3+2]}
	}
	if err := binary.Read(r, binary.LittleEndian, m.Indices); err != nil {
		return nil, fmt.Errorf("meshio: read indices: %w", err)
	}
	if h.Flags&flagNormals != 0 {
		ns := make([]float32, int(h.VertexCount)*3)
		if err := binary.Read(r, binary.LittleEndian, ns); err != nil {
			return nil, fmt.Errorf("meshio: read normals: %w", err)
		}
		m.Normals = make([]geom.Vec3, h.VertexCount)
		for i := range m.Normals {
			m.Normals[i] = geom.Vec3{X: float64(ns[i*3]), Y: float64(ns[i*3+1]), Z: float64(ns[i*3+2])}
		}
	}
	if h.Flags&flagStations != 0 {
		m.Stations = make([]float64, h.VertexCount)
		if err := binary.Read(r, binary.LittleEndian, m.Stations); err != nil {
			return nil, fmt.Errorf("meshio: read stations: %w", err)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("meshio: snapshot failed validation: %w", err)
	}
	return m, nil
}
