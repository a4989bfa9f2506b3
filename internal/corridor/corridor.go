// Package corridor implements the root aggregate of the hydraulic
// pipeline, an alignment with station-keyed sections and transitions,
// and the mesher that sweeps it into a watertight solid.
package corridor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cadhy/cadhy/internal/alignment"
	"github.com/cadhy/cadhy/internal/section"
	"github.com/cadhy/cadhy/internal/transition"
)

var (
	// ErrNoSections is returned when a corridor has no station sections.
	ErrNoSections = errors.New("corridor: at least one station section required")
	// ErrNoAlignment is returned when a corridor is built without geometry.
	ErrNoAlignment = errors.New("corridor: alignment required")
)

// StationSection keys a cross-section template to a station. The section
// stays active until the next keyed station.
type StationSection struct {
	Station        float64       `json:"station" yaml:"station"`
	Shape          section.Shape `json:"-" yaml:"-"`
	WallThickness  float64       `json:"wall_thickness" yaml:"wall_thickness"`   // m
	FloorThickness float64       `json:"floor_thickness" yaml:"floor_thickness"` // m
	ManningN       float64       `json:"manning_n" yaml:"manning_n"`
	Material       string        `json:"material,omitempty" yaml:"material,omitempty"`
}

// Corridor owns its alignment, sections and transitions as values; the
// mesher and the solvers read it without mutating.
type Corridor struct {
	Alignment   *alignment.Alignment
	Sections    []StationSection // sorted by station, unique
	Transitions []*transition.Transition

	DefaultWallThickness  float64
	DefaultFloorThickness float64
}

// New validates and assembles a corridor. Sections are sorted by
// station; zero thicknesses inherit the defaults.
func New(a *alignment.Alignment, sections []StationSection, transitions []*transition.Transition, defaultWall, defaultFloor float64) (*Corridor, error) {
	if a == nil {
		return nil, ErrNoAlignment
	}
	if len(sections) == 0 {
		return nil, ErrNoSections
	}
	c := &Corridor{
		Alignment:             a,
		Sections:              append([]StationSection(nil), sections...),
		Transitions:           append([]*transition.Transition(nil), transitions...),
		DefaultWallThickness:  defaultWall,
		DefaultFloorThickness: defaultFloor,
	}
	sort.SliceStable(c.Sections, func(i, j int) bool { return c.Sections[i].Station < c.Sections[j].Station })

	total := a.Length()
	for i := range c.Sections {
		ss := &c.Sections[i]
		if ss.Station < 0 || ss.Station > total {
			return nil, fmt.Errorf("corridor: section station %.3f outside [0, %.3f]", ss.Station, total)
		}
		if i > 0 && ss.Station == c.Sections[i-1].Station {
			return nil, fmt.Errorf("corridor: duplicate section station %.3f", ss.Station)
		}
		if ss.Shape == nil {
			return nil, fmt.Errorf("corridor: section at %.3f has no shape", ss.Station)
		}
		if err := ss.Shape.Validate(); err != nil {
			return nil, fmt.Errorf("corridor: section at %.3f: %w", ss.Station, err)
		}
		if ss.WallThickness == 0 {
			ss.WallThickness = c.DefaultWallThickness
		}
		if ss.FloorThickness == 0 {
			ss.FloorThickness = c.DefaultFloorThickness
		}
		if ss.WallThickness <= 0 || ss.FloorThickness <= 0 {
			return nil, fmt.Errorf("corridor: section at %.3f has non-positive thickness", ss.Station)
		}
		if ss.ManningN <= 0 {
			return nil, fmt.Errorf("corridor: section at %.3f has non-positive Manning n", ss.Station)
		}
	}

	sort.SliceStable(c.Transitions, func(i, j int) bool {
		return c.Transitions[i].StartStation < c.Transitions[j].StartStation
	})
	for i, tr := range c.Transitions {
		if tr.EndStation <= tr.StartStation {
			return nil, fmt.Errorf("corridor: transition %d has inverted interval", i)
		}
		if tr.StartStation < 0 || tr.EndStation > total {
			return nil, fmt.Errorf("corridor: transition %d outside [0, %.3f]", i, total)
		}
		if i > 0 && tr.StartStation < c.Transitions[i-1].EndStation {
			return nil, fmt.Errorf("corridor: transitions %d and %d overlap", i-1, i)
		}
	}
	return c, nil
}

// Length returns the alignment length (m).
func (c *Corridor) Length() float64 { return c.Alignment.Length() }

// sectionIndexAt returns the index of the active section at station s:
// the last section with station ≤ s, clamped to the first.
func (c *Corridor) sectionIndexAt(s float64) int {
	idx := sort.Search(len(c.Sections), func(i int) bool { return c.Sections[i].Station > s })
	if idx == 0 {
		return 0
	}
	return idx - 1
}

// SectionAt returns the active StationSection at station s.
func (c *Corridor) SectionAt(s float64) *StationSection {
	return &c.Sections[c.sectionIndexAt(s)]
}

// TransitionAt returns the transition containing station s, or nil.
func (c *Corridor) TransitionAt(s float64) *transition.Transition {
	for _, tr := range c.Transitions {
		if tr.ContainsStation(s) {
			return tr
		}
	}
	return nil
}

// ShapeAt returns the effective cross-section shape at station s. Inside
// a transition the shapes active at the transition ends are blended by
// the transition's curve factor; blends with no geometric interpolation
// (incompatible shape pairs) step at the section boundary and are lofted
// by the mesher instead.
func (c *Corridor) ShapeAt(s float64) section.Shape {
	if tr := c.TransitionAt(s); tr != nil {
		a := c.SectionAt(tr.StartStation).Shape
		b := c.SectionAt(tr.EndStation).Shape
		if blend, err := section.Interpolate(a, b, tr.Factor(s)); err == nil {
			return blend
		}
	}
	return c.SectionAt(s).Shape
}

// ThicknessAt returns the wall and floor thicknesses at station s,
// varying linearly between the bracketing station sections. Inside a
// transition the blend follows the transition's curve factor so the
// outer surface morphs with the shape.
func (c *Corridor) ThicknessAt(s float64) (wall, floor float64) {
	i := c.sectionIndexAt(s)
	a := &c.Sections[i]
	if tr := c.TransitionAt(s); tr != nil {
		sa := c.SectionAt(tr.StartStation)
		sb := c.SectionAt(tr.EndStation)
		f := tr.Factor(s)
		return sa.WallThickness + (sb.WallThickness-sa.WallThickness)*f,
			sa.FloorThickness + (sb.FloorThickness-sa.FloorThickness)*f
	}
	if i+1 >= len(c.Sections) || s <= a.Station {
		return a.WallThickness, a.FloorThickness
	}
	b := &c.Sections[i+1]
	t := (s - a.Station) / (b.Station - a.Station)
	return a.WallThickness + (b.WallThickness-a.WallThickness)*t,
		a.FloorThickness + (b.FloorThickness-a.FloorThickness)*t
}

// ManningAt returns the Manning roughness of the active section.
func (c *Corridor) ManningAt(s float64) float64 {
	return c.SectionAt(s).ManningN
}

// BedElevationAt returns the invert elevation at station s. Transition
// drops superpose on the alignment profile: inside the interval the
// chute ramp −Drop·f(t) adds to the alignment elevation, and the full
// drop carries downstream. The bed therefore stays continuous even when
// an alignment slope break falls inside the interval.
func (c *Corridor) BedElevationAt(s float64) float64 {
	z := c.Alignment.ElevationAt(s)
	for _, tr := range c.Transitions {
		switch {
		case s >= tr.EndStation:
			z -= tr.Drop
		case tr.ContainsStation(s):
			z += tr.ElevationAt(s)
		}
	}
	return z
}

// BedSlopeAt returns the local bed slope at station s (m/m, positive
// descending), accounting for transition chutes.
func (c *Corridor) BedSlopeAt(s float64) float64 {
	if tr := c.TransitionAt(s); tr != nil && tr.Drop != 0 {
		return c.Alignment.SlopeAt(s) + tr.Slope()
	}
	return c.Alignment.SlopeAt(s)
}
