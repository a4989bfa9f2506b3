// Package section implements the parametric cross-section library of the
// corridor pipeline: a closed set of channel shapes with hydraulic
// property queries, inner/outer profile generation and shape
// interpolation for transitions.
//
// Profiles live in the section's local XZ plane: x transverse (positive
// to the right when looking downstream), z vertical with the invert at
// z = 0. All dimensions are in metres.
package section

import (
	"fmt"

	"github.com/cadhy/cadhy/internal/geom"
)

// Kind identifies a section shape variant.
type Kind int

const (
	KindRectangular Kind = iota
	KindTrapezoidal
	KindTriangular
	KindCircular
	KindParabolic
	KindUShape
	KindCompound
)

// String returns the lowercase shape name used in project files.
func (k Kind) String() string {
	switch k {
	case KindRectangular:
		return "rectangular"
	case KindTrapezoidal:
		return "trapezoidal"
	case KindTriangular:
		return "triangular"
	case KindCircular:
		return "circular"
	case KindParabolic:
		return "parabolic"
	case KindUShape:
		return "ushape"
	case KindCompound:
		return "compound"
	}
	return "unknown"
}

// HydraulicProperties holds the wetted geometry of a section at a given
// flow depth.
type HydraulicProperties struct {
	Area            float64 // A (m²)
	WettedPerimeter float64 // P (m)
	HydraulicRadius float64 // R = A/P (m)
	TopWidth        float64 // T (m)
	HydraulicDepth  float64 // D_h = A/T (m)
}

// Shape is the closed variant of channel cross-sections. Adding a shape
// means implementing these operations and registering a Kind.
type Shape interface {
	Kind() Kind

	// Properties returns the wetted geometry at flow depth y. Depths are
	// clamped to [0, MaxDepth].
	Properties(y float64) HydraulicProperties

	// ProfilePoints returns the water-facing polyline, ordered from the
	// top of the left wall, down and across the invert, to the top of
	// the right wall. n controls tessellation of curved shapes and is
	// ignored by polygonal ones.
	ProfilePoints(n int) []geom.Vec2

	// OuterProfilePoints returns the ground-facing polyline with the
	// same point count as ProfilePoints(n), offset perpendicular to the
	// walls by twall and below the floor by tfloor.
	OuterProfilePoints(n int, twall, tfloor float64) []geom.Vec2

	// MaxDepth returns the section's full depth (m).
	MaxDepth() float64

	// InvertWidth returns the flat invert width (m); zero for triangular
	// and curved inverts.
	InvertWidth() float64

	// Validate rejects non-positive dimensions and negative slopes.
	Validate() error
}

// Rectangular is a vertical-walled flume.
type Rectangular struct {
	Width float64 `json:"width" yaml:"width"`
	Depth float64 `json:"depth" yaml:"depth"`
}

// Trapezoidal has a flat invert with independently sloped banks.
// SlopeLeft and SlopeRight are horizontal run per unit rise.
type Trapezoidal struct {
	BottomWidth float64 `json:"bottom_width" yaml:"bottom_width"`
	Depth       float64 `json:"depth" yaml:"depth"`
	SlopeLeft   float64 `json:"slope_left" yaml:"slope_left"`
	SlopeRight  float64 `json:"slope_right" yaml:"slope_right"`
}

// Triangular is a V-shaped ditch.
type Triangular struct {
	Depth      float64 `json:"depth" yaml:"depth"`
	SlopeLeft  float64 `json:"slope_left" yaml:"slope_left"`
	SlopeRight float64 `json:"slope_right" yaml:"slope_right"`
}

// Circular is a circular conduit of diameter D; depth is measured from
// the invert.
type Circular struct {
	Diameter float64 `json:"diameter" yaml:"diameter"`
}

// Parabolic approximates a naturally regime-shaped channel:
// z = Depth * (2x/TopWidth)².
type Parabolic struct {
	TopWidth float64 `json:"top_width" yaml:"top_width"`
	Depth    float64 `json:"depth" yaml:"depth"`
}

// UShape is a rectangular channel whose invert corners are filleted with
// radius InvertRadius (classic precast U-flume). InvertRadius must not
// exceed half the width nor the depth.
type UShape struct {
	Width        float64 `json:"width" yaml:"width"`
	Depth        float64 `json:"depth" yaml:"depth"`
	InvertRadius float64 `json:"invert_radius" yaml:"invert_radius"`
}

// BermSide places a berm on the left or right bank.
type BermSide int

const (
	BermLeft BermSide = iota
	BermRight
)

// Berm is one overbank bench of a compound section: a horizontal bench
// of the given width at Elevation above the main invert, backed by an
// outer bank of the given transverse slope, with its own roughness.
type Berm struct {
	Side      BermSide `json:"side" yaml:"side"`
	Width     float64  `json:"width" yaml:"width"`
	Elevation float64  `json:"elevation" yaml:"elevation"` // above main invert, < main depth
	Slope     float64  `json:"slope" yaml:"slope"`         // outer bank, run per rise
	ManningN  float64  `json:"manning_n" yaml:"manning_n"`
}

// Compound is a main trapezoidal channel with overbank berms, analysed
// with the Divided-Channel Method.
type Compound struct {
	Main  Trapezoidal `json:"main" yaml:"main"`
	Berms []Berm      `json:"berms" yaml:"berms"`
}

// ValidationError reports an invalid section parameter.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Validate checks the rectangular dimensions.
func (s Rectangular) Validate() error {
	if s.Width <= 0 {
		return invalid("rectangular: width must be positive, got %g", s.Width)
	}
	if s.Depth <= 0 {
		return invalid("rectangular: depth must be positive, got %g", s.Depth)
	}
	return nil
}

// Validate checks the trapezoidal dimensions.
func (s Trapezoidal) Validate() error {
	if s.BottomWidth <= 0 {
		return invalid("trapezoidal: bottom width must be positive, got %g", s.BottomWidth)
	}
	if s.Depth <= 0 {
		return invalid("trapezoidal: depth must be positive, got %g", s.Depth)
	}
	if s.SlopeLeft < 0 || s.SlopeRight < 0 {
		return invalid("trapezoidal: side slopes must be non-negative, got %g/%g", s.SlopeLeft, s.SlopeRight)
	}
	return nil
}

// Validate checks the triangular dimensions.
func (s Triangular) Validate() error {
	if s.Depth <= 0 {
		return invalid("triangular: depth must be positive, got %g", s.Depth)
	}
	if s.SlopeLeft < 0 || s.SlopeRight < 0 {
		return invalid("triangular: side slopes must be non-negative, got %g/%g", s.SlopeLeft, s.SlopeRight)
	}
	if s.SlopeLeft == 0 && s.SlopeRight == 0 {
		return invalid("triangular: at least one side slope must be positive")
	}
	return nil
}

// Validate checks the conduit diameter.
func (s Circular) Validate() error {
	if s.Diameter <= 0 {
		return invalid("circular: diameter must be positive, got %g", s.Diameter)
	}
	return nil
}

// Validate checks the parabolic dimensions.
func (s Parabolic) Validate() error {
	if s.TopWidth <= 0 {
		return invalid("parabolic: top width must be positive, got %g", s.TopWidth)
	}
	if s.Depth <= 0 {
		return invalid("parabolic: depth must be positive, got %g", s.Depth)
	}
	return nil
}

// Validate checks the U-shape dimensions.
func (s UShape) Validate() error {
	if s.Width <= 0 {
		return invalid("ushape: width must be positive, got %g", s.Width)
	}
	if s.Depth <= 0 {
		return invalid("ushape: depth must be positive, got %g", s.Depth)
	}
	if s.InvertRadius <= 0 {
		return invalid("ushape: invert radius must be positive, got %g", s.InvertRadius)
	}
	if s.InvertRadius > s.Width/2 {
		return invalid("ushape: invert radius %g exceeds half width %g", s.InvertRadius, s.Width/2)
	}
	if s.InvertRadius > s.Depth {
		return invalid("ushape: invert radius %g exceeds depth %g", s.InvertRadius, s.Depth)
	}
	return nil
}

// Validate checks the main channel and every berm.
func (s Compound) Validate() error {
	if err := s.Main.Validate(); err != nil {
		return err
	}
	for i, b := range s.Berms {
		if b.Width <= 0 {
			return invalid("compound: berm %d width must be positive, got %g", i, b.Width)
		}
		if b.Elevation < 0 || b.Elevation >= s.Main.Depth {
			return invalid("compound: berm %d elevation %g outside [0, %g)", i, b.Elevation, s.Main.Depth)
		}
		if b.Slope < 0 {
			return invalid("compound: berm %d outer slope must be non-negative, got %g", i, b.Slope)
		}
		if b.ManningN <= 0 {
			return invalid("compound: berm %d Manning n must be positive, got %g", i, b.ManningN)
		}
	}
	return nil
}

func (Rectangular) Kind() Kind { return KindRectangular }
func (Trapezoidal) Kind() Kind { return KindTrapezoidal }
func (Triangular) Kind() Kind  { return KindTriangular }
func (Circular) Kind() Kind    { return KindCircular }
func (Parabolic) Kind() Kind   { return KindParabolic }
func (UShape) Kind() Kind      { return KindUShape }
func (Compound) Kind() Kind    { return KindCompound }

func (s Rectangular) MaxDepth() float64 { return s.Depth }
func (s Trapezoidal) MaxDepth() float64 { return s.Depth }
func (s Triangular) MaxDepth() float64  { return s.Depth }
func (s Circular) MaxDepth() float64    { return s.Diameter }
func (s Parabolic) MaxDepth() float64   { return s.Depth }
func (s UShape) MaxDepth() float64      { return s.Depth }
func (s Compound) MaxDepth() float64    { return s.Main.Depth }

func (s Rectangular) InvertWidth() float64 { return s.Width }
func (s Trapezoidal) InvertWidth() float64 { return s.BottomWidth }
func (s Triangular) InvertWidth() float64  { return 0 }
func (s Circular) InvertWidth() float64    { return 0 }
func (s Parabolic) InvertWidth() float64   { return 0 }
func (s UShape) InvertWidth() float64      { return s.Width - 2*s.InvertRadius }
func (s Compound) InvertWidth() float64    { return s.Main.BottomWidth }
