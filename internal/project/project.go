// Package project loads corridor project files: a YAML description of
// the alignment, station sections, transitions and design parameters
// that every CLI command consumes.
package project

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cadhy/cadhy/internal/alignment"
	"github.com/cadhy/cadhy/internal/corridor"
	"github.com/cadhy/cadhy/internal/geom"
	"github.com/cadhy/cadhy/internal/section"
	"github.com/cadhy/cadhy/internal/transition"
)

// File is the root of a corridor project document.
type File struct {
	Name      string        `yaml:"name"`
	Alignment AlignmentSpec `yaml:"alignment"`
	Sections  []SectionSpec `yaml:"sections"`

	Transitions []TransitionSpec `yaml:"transitions,omitempty"`
	Defaults    DefaultsSpec     `yaml:"defaults,omitempty"`
	Design      DesignSpec       `yaml:"design,omitempty"`
}

// AlignmentSpec describes the 3-D centerline.
type AlignmentSpec struct {
	StartElevation float64          `yaml:"start_elevation"`
	InitialSlope   float64          `yaml:"initial_slope"`
	PIs            []PISpec         `yaml:"pis"`
	SlopeBreaks    []SlopeBreakSpec `yaml:"slope_breaks,omitempty"`
}

// PISpec is one point of intersection.
type PISpec struct {
	X              float64 `yaml:"x"`
	Y              float64 `yaml:"y"`
	Z              float64 `yaml:"z,omitempty"`
	Radius         float64 `yaml:"radius,omitempty"`
	Superelevation float64 `yaml:"superelevation,omitempty"`
}

// SlopeBreakSpec changes the longitudinal slope at a station.
type SlopeBreakSpec struct {
	Station float64 `yaml:"station"`
	Slope   float64 `yaml:"slope"`
}

// SectionSpec keys a shape to a station.
type SectionSpec struct {
	Station        float64   `yaml:"station"`
	Shape          ShapeSpec `yaml:"shape"`
	WallThickness  float64   `yaml:"wall_thickness,omitempty"`
	FloorThickness float64   `yaml:"floor_thickness,omitempty"`
	ManningN       float64   `yaml:"manning_n"`
	Material       string    `yaml:"material,omitempty"`
}

// ShapeSpec is the union of shape parameters; Type selects the variant.
type ShapeSpec struct {
	Type string `yaml:"type"`

	Width        float64 `yaml:"width,omitempty"`
	Depth        float64 `yaml:"depth,omitempty"`
	BottomWidth  float64 `yaml:"bottom_width,omitempty"`
	SlopeLeft    float64 `yaml:"slope_left,omitempty"`
	SlopeRight   float64 `yaml:"slope_right,omitempty"`
	Diameter     float64 `yaml:"diameter,omitempty"`
	TopWidth     float64 `yaml:"top_width,omitempty"`
	InvertRadius float64 `yaml:"invert_radius,omitempty"`

	Berms []BermSpec `yaml:"berms,omitempty"`
}

// BermSpec is one overbank bench of a compound section.
type BermSpec struct {
	Side      string  `yaml:"side"`
	Width     float64 `yaml:"width"`
	Elevation float64 `yaml:"elevation"`
	Slope     float64 `yaml:"slope"`
	ManningN  float64 `yaml:"manning_n"`
}

// TransitionSpec is one geometric transition interval.
type TransitionSpec struct {
	Start           float64 `yaml:"start"`
	End             float64 `yaml:"end"`
	Curve           string  `yaml:"curve,omitempty"`
	LossCoefficient float64 `yaml:"loss_coefficient,omitempty"`
	Drop            float64 `yaml:"drop,omitempty"`
	ChannelWidth    float64 `yaml:"channel_width,omitempty"`
	BaffleRows      int     `yaml:"baffle_rows,omitempty"`
}

// DefaultsSpec holds fallback lining thicknesses.
type DefaultsSpec struct {
	WallThickness  float64 `yaml:"wall_thickness,omitempty"`
	FloorThickness float64 `yaml:"floor_thickness,omitempty"`
}

// DesignSpec holds the hydraulic design parameters used by the check
// commands.
type DesignSpec struct {
	Discharge    float64 `yaml:"discharge,omitempty"`     // m³/s
	MinFreeboard float64 `yaml:"min_freeboard,omitempty"` // m
	GrainSize    float64 `yaml:"grain_size,omitempty"`    // d₅₀, m
}

// Load reads and validates a project file from disk.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	defer f.Close()
	pf, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("project: %s: %w", path, err)
	}
	return pf, nil
}

// Read decodes and validates a project document. Unknown fields are
// rejected so typos fail loudly.
func Read(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the parts of the document the constructors downstream
// do not: variant selection and enum spellings. Numeric ranges are left
// to the section, alignment and corridor constructors.
func (f *File) Validate() error {
	if len(f.Alignment.PIs) < 2 {
		return fmt.Errorf("alignment needs at least 2 pis, got %d", len(f.Alignment.PIs))
	}
	if len(f.Sections) == 0 {
		return fmt.Errorf("at least one section required")
	}
	for i, s := range f.Sections {
		if _, err := s.Shape.Build(); err != nil {
			return fmt.Errorf("section %d (station %.3f): %w", i, s.Station, err)
		}
		if s.ManningN <= 0 {
			return fmt.Errorf("section %d (station %.3f): manning_n must be positive", i, s.Station)
		}
	}
	for i, tr := range f.Transitions {
		if _, err := transition.ParseCurveType(tr.Curve); err != nil {
			return fmt.Errorf("transition %d: %w", i, err)
		}
	}
	return nil
}

// Build assembles the runtime corridor from the document.
func (f *File) Build() (*corridor.Corridor, error) {
	pis := make([]alignment.PI, len(f.Alignment.PIs))
	for i, p := range f.Alignment.PIs {
		pis[i] = alignment.PI{
			Position:       geom.Vec3{X: p.X, Y: p.Y, Z: p.Z},
			Radius:         p.Radius,
			Superelevation: p.Superelevation,
		}
	}
	breaks := make([]alignment.SlopeBreak, len(f.Alignment.SlopeBreaks))
	for i, b := range f.Alignment.SlopeBreaks {
		breaks[i] = alignment.SlopeBreak{Station: b.Station, Slope: b.Slope}
	}
	a, err := alignment.New(pis, f.Alignment.StartElevation, f.Alignment.InitialSlope, breaks)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	sections := make([]corridor.StationSection, len(f.Sections))
	for i, s := range f.Sections {
		shape, err := s.Shape.Build()
		if err != nil {
			return nil, fmt.Errorf("project: section at %.3f: %w", s.Station, err)
		}
		sections[i] = corridor.StationSection{
			Station:        s.Station,
			Shape:          shape,
			WallThickness:  s.WallThickness,
			FloorThickness: s.FloorThickness,
			ManningN:       s.ManningN,
			Material:       s.Material,
		}
	}

	transitions := make([]*transition.Transition, len(f.Transitions))
	for i, ts := range f.Transitions {
		curve, err := transition.ParseCurveType(ts.Curve)
		if err != nil {
			return nil, fmt.Errorf("project: transition %d: %w", i, err)
		}
		tr, err := transition.New(ts.Start, ts.End, curve)
		if err != nil {
			return nil, fmt.Errorf("project: transition %d: %w", i, err)
		}
		tr.LossCoefficient = ts.LossCoefficient
		tr.Drop = ts.Drop
		tr.ChannelWidth = ts.ChannelWidth
		tr.BaffleRows = ts.BaffleRows
		transitions[i] = tr
	}

	wall, floor := f.Defaults.WallThickness, f.Defaults.FloorThickness
	if wall <= 0 {
		wall = 0.2
	}
	if floor <= 0 {
		floor = 0.25
	}
	c, err := corridor.New(a, sections, transitions, wall, floor)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	return c, nil
}

// Build maps the shape parameters onto a section variant.
func (s ShapeSpec) Build() (section.Shape, error) {
	switch s.Type {
	case "rectangular":
		return section.Rectangular{Width: s.Width, Depth: s.Depth}, nil
	case "trapezoidal":
		return section.Trapezoidal{
			BottomWidth: s.BottomWidth, Depth: s.Depth,
			SlopeLeft: s.SlopeLeft, SlopeRight: s.SlopeRight,
		}, nil
	case "triangular":
		return section.Triangular{Depth: s.Depth, SlopeLeft: s.SlopeLeft, SlopeRight: s.SlopeRight}, nil
	case "circular":
		return section.Circular{Diameter: s.Diameter}, nil
	case "parabolic":
		return section.Parabolic{TopWidth: s.TopWidth, Depth: s.Depth}, nil
	case "ushape":
		return section.UShape{Width: s.Width, Depth: s.Depth, InvertRadius: s.InvertRadius}, nil
	case "compound":
		berms := make([]section.Berm, len(s.Berms))
		for i, b := range s.Berms {
			side := section.BermLeft
			switch b.Side {
			case "left":
			case "right":
				side = section.BermRight
			default:
				return nil, fmt.Errorf("berm %d: side must be left or right, got %q", i, b.Side)
			}
			berms[i] = section.Berm{
				Side: side, Width: b.Width, Elevation: b.Elevation,
				Slope: b.Slope, ManningN: b.ManningN,
			}
		}
		return section.Compound{
			Main: section.Trapezoidal{
				BottomWidth: s.BottomWidth, Depth: s.Depth,
				SlopeLeft: s.SlopeLeft, SlopeRight: s.SlopeRight,
			},
			Berms: berms,
		}, nil
	case "":
		return nil, fmt.Errorf("shape type missing")
	}
	return nil, fmt.Errorf("unknown shape type %q", s.Type)
}
