package meshio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Checkpoint is a resumable snapshot of the unsteady solver: the station
// grid and the conserved (A, Q) state at one simulation time.
type Checkpoint struct {
	Time     float64   // s
	Stations []float64 // m
	Area     []float64 // m²
	Flow     []float64 // m³/s
}

// Checkpoint layout:
//
//	u32 magic "CDHC" | u16 version | u16 reserved
//	u32 cell count | f64 simulation time
//	f64 station stream | f64 area stream | f64 discharge stream
const (
	checkpointMagic   = 0x43484443 // "CDHC" little-endian
	checkpointVersion = 1
)

type checkpointHeader struct {
	Magic    uint32
	Version  uint16
	Reserved uint16
	Cells    uint32
	Time     float64
}

// WriteCheckpoint serialises a solver checkpoint.
func WriteCheckpoint(w io.Writer, c *Checkpoint) error {
	if len(c.Area) != len(c.Stations) || len(c.Flow) != len(c.Stations) {
		return fmt.Errorf("meshio: checkpoint arrays disagree: %d stations, %d areas, %d flows",
			len(c.Stations), len(c.Area), len(c.Flow))
	}
	h := checkpointHeader{
		Magic:   checkpointMagic,
		Version: checkpointVersion,
		Cells:   uint32(len(c.Stations)),
		Time:    c.Time,
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("meshio: write checkpoint header: %w", err)
	}
	for _, arr := range [][]float64{c.Stations, c.Area, c.Flow} {
		if err := binary.Write(w, binary.LittleEndian, arr); err != nil {
			return fmt.Errorf("meshio: write checkpoint stream: %w", err)
		}
	}
	return nil
}

// ReadCheckpoint deserialises a solver checkpoint.
func ReadCheckpoint(r io.Reader) (*Checkpoint, error) {
	var h checkpointHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("meshio: read checkpoint header: %w", err)
	}
	if h.Magic != checkpointMagic {
		return nil, fmt.Errorf("meshio: bad checkpoint magic %#x", h.Magic)
	}
	if h.Version != checkpointVersion {
		return nil, fmt.Errorf("meshio: unsupported checkpoint version %d", h.Version)
	}
	if h.Cells > maxSnapshotElems {
		return nil, fmt.Errorf("meshio: implausible checkpoint cell count %d", h.Cells)
	}
	c := &Checkpoint{
		Time:     h.Time,
		Stations: make([]float64, h.Cells),
		Area:     make([]float64, h.Cells),
		Flow:     make([]float64, h.Cells),
	}
	for _, arr := range [][]float64{c.Stations, c.Area, c.Flow} {
		if err := binary.Read(r, binary.LittleEndian, arr); err != nil {
			return nil, fmt.Errorf("meshio: read checkpoint stream: %w", err)
		}
	}
	return c, nil
}
