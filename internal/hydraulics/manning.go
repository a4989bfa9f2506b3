// Package hydraulics implements the flow computations of the corridor
// pipeline: Manning steady primitives, normal and critical depth
// solvers, a standard-step gradually-varied-flow profile, a Preissmann
// four-point implicit Saint-Venant solver with hydraulic jump capture,
// and design capacity checks.
//
// SI units throughout: metres, seconds, cubic metres per second.
package hydraulics

import (
	"fmt"
	"math"

	"github.com/cadhy/cadhy/internal/section"
)

// Gravity is the standard acceleration of free fall (m/s²).
const Gravity = 9.80665

// Regime classifies flow by Froude number with a ±0.05 critical band.
type Regime int

const (
	RegimeSubcritical Regime = iota
	RegimeCritical
	RegimeSupercritical
)

// String returns the report label of the regime.
func (r Regime) String() string {
	switch r {
	case RegimeSubcritical:
		return "subcritical"
	case RegimeCritical:
		return "critical"
	case RegimeSupercritical:
		return "supercritical"
	}
	return "unknown"
}

// ClassifyFroude maps a Froude number to its regime tag: subcritical
// below 0.95, critical within ±0.05 of unity, supercritical above 1.05.
func ClassifyFroude(fr float64) Regime {
	switch {
	case fr < 0.95:
		return RegimeSubcritical
	case fr <= 1.05:
		return RegimeCritical
	default:
		return RegimeSupercritical
	}
}

// FlowResult holds the Manning uniform-flow state of one section at one
// depth.
type FlowResult struct {
	Depth          float64 // y (m)
	Area           float64 // A (m²)
	Velocity       float64 // V (m/s)
	Discharge      float64 // Q (m³/s)
	Froude         float64
	SpecificEnergy float64 // E = y + V²/2g (m)
	Regime         Regime
}

// ManningFlow evaluates uniform flow in a section at depth y with
// roughness n and longitudinal slope s: V = (1/n)·R^(2/3)·√s.
func ManningFlow(shape section.Shape, n, s, y float64) (*FlowResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("hydraulics: Manning n must be positive, got %g", n)
	}
	if s <= 0 {
		return nil, fmt.Errorf("hydraulics: slope must be positive for uniform flow, got %g", s)
	}
	if y <= 0 {
		return nil, fmt.Errorf("hydraulics: depth must be positive, got %g", y)
	}
	p := shape.Properties(y)
	if p.Area <= 0 {
		return nil, fmt.Errorf("hydraulics: zero flow area at depth %g", y)
	}
	v := math.Pow(p.HydraulicRadius, 2.0/3.0) * math.Sqrt(s) / n
	r := &FlowResult{
		Depth:          y,
		Area:           p.Area,
		Velocity:       v,
		Discharge:      v * p.Area,
		SpecificEnergy: y + v*v/(2*Gravity),
	}
	if p.HydraulicDepth > 0 {
		r.Froude = v / math.Sqrt(Gravity*p.HydraulicDepth)
	}
	r.Regime = ClassifyFroude(r.Froude)
	return r, nil
}

// Froude returns the Froude number of discharge Q at depth y.
func Froude(shape section.Shape, q, y float64) float64 {
	p := shape.Properties(y)
	if p.Area <= 0 || p.HydraulicDepth <= 0 {
		return 0
	}
	v := q / p.Area
	return math.Abs(v) / math.Sqrt(Gravity*p.HydraulicDepth)
}

// SpecificEnergy returns E = y + Q²/(2gA²) at depth y.
func SpecificEnergy(shape section.Shape, q, y float64) float64 {
	p := shape.Properties(y)
	if p.Area <= 0 {
		return y
	}
	return y + q*q/(2*Gravity*p.Area*p.Area)
}

// centroidDepth returns the depth of the area centroid below the free
// surface, h̄ = (1/A)∫₀ʸ A(z)dz, by Simpson integration. Closed forms
// exist per shape but the quadrature serves every variant identically.
func centroidDepth(shape section.Shape, y float64) float64 {
	p := shape.Properties(y)
	if p.Area <= 0 {
		return 0
	}
	const steps = 64 // even
	h := y / steps
	sum := 0.0
	for i := 0; i <= steps; i++ {
		a := shape.Properties(float64(i) * h).Area
		switch {
		case i == 0 || i == steps:
			sum += a
		case i%2 == 1:
			sum += 4 * a
		default:
			sum += 2 * a
		}
	}
	return sum * h / 3 / p.Area
}

// SpecificForce returns M = Q²/(gA) + A·h̄, the momentum function used
// for conjugate depth computation.
func SpecificForce(shape section.Shape, q, y float64) float64 {
	p := shape.Properties(y)
	if p.Area <= 0 {
		return 0
	}
	return q*q/(Gravity*p.Area) + p.Area*centroidDepth(shape, y)
}

// FrictionSlope returns S_f = n²·V·|V| / R^(4/3) at the given area and
// discharge.
func FrictionSlope(shape section.Shape, n, q, y float64) float64 {
	p := shape.Properties(y)
	if p.Area <= 0 || p.HydraulicRadius <= 0 {
		return 0
	}
	v := q / p.Area
	return n * n * v * math.Abs(v) / math.Pow(p.HydraulicRadius, 4.0/3.0)
}
