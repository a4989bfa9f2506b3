package meshio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadhy/cadhy/internal/geom"
)

func TestMeshSnapshotRoundTrip(t *testing.T) {
	m := &geom.TriMesh{
		Vertices: []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}},
		Stations: []float64{0, 0, 1, 1},
	}
	m.AddTriangle(0, 2, 1)
	m.AddTriangle(0, 1, 3)
	m.AddTriangle(1, 2, 3)
	m.AddTriangle(2, 0, 3)
	m.RecomputeNormals()

	var buf bytes.Buffer
	require.NoError(t, WriteMesh(&buf, m))

	got, err := ReadMesh(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Vertices, got.Vertices)
	assert.Equal(t, m.Indices, got.Indices)
	assert.Equal(t, m.Stations, got.Stations)
	require.Len(t, got.Normals, len(m.Normals))
	for i := range m.Normals {
		// Normals are stored as f32.
		assert.InDelta(t, m.Normals[i].X, got.Normals[i].X, 1e-6)
		assert.InDelta(t, m.Normals[i].Z, got.Normals[i].Z, 1e-6)
	}
}

func TestReadMeshRejectsBadMagic(t *testing.T) {
	_, err := ReadMesh(bytes.NewReader(make([]byte, 64)))
	require.Error(t, err)
}

// A corrupt header declaring billions of elements must fail at the
// header check, before any stream allocation.
func TestReadMeshRejectsImplausibleCounts(t *testing.T) {
	var buf bytes.Buffer
	h := meshHeader{
		Magic:       meshMagic,
		Version:     meshVersion,
		VertexCount: math.MaxUint32,
		IndexCount:  3,
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, h))

	_, err := ReadMesh(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "implausible")
}

func TestCheckpointRoundTrip(t *testing.T) {
	c := &Checkpoint{
		Time:     1800.5,
		Stations: []float64{0, 10, 20},
		Area:     []float64{2.0, 2.1, 2.2},
		Flow:     []float64{3.0, 3.0, 3.0},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCheckpoint(&buf, c))

	got, err := ReadCheckpoint(&buf)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestReadCheckpointRejectsImplausibleCellCount(t *testing.T) {
	var buf bytes.Buffer
	h := checkpointHeader{
		Magic:   checkpointMagic,
		Version: checkpointVersion,
		Cells:   math.MaxUint32,
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, h))

	_, err := ReadCheckpoint(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "implausible")
}

func TestCheckpointRejectsRaggedArrays(t *testing.T) {
	c := &Checkpoint{Stations: []float64{0, 1}, Area: []float64{1}, Flow: []float64{1, 1}}
	var buf bytes.Buffer
	require.Error(t, WriteCheckpoint(&buf, c))
}
