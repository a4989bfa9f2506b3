package hydraulics

import (
	"fmt"

	"github.com/cadhy/cadhy/internal/section"
)

// Design velocity band for lined channels (m/s): below the floor the
// channel silts, above the ceiling it scours the lining.
const (
	MinDesignVelocity = 0.3
	MaxDesignVelocity = 3.0
)

// CapacityReport is the outcome of a design capacity check of one
// section against a design discharge.
type CapacityReport struct {
	DesignDischarge float64 // m³/s
	NormalDepth     float64 // m
	CriticalDepth   float64 // m
	Velocity        float64 // m/s at normal depth
	Froude          float64
	Regime          Regime

	Freeboard         float64 // m, section depth minus normal depth
	RequiredFreeboard float64 // m

	FreeboardOK bool
	VelocityOK  bool
	Pass        bool
}

// CheckCapacity sizes the design discharge against a section: normal
// and critical depth, the velocity band, and the freeboard margin. The
// report carries the individual verdicts so callers can print which
// criterion failed.
func CheckCapacity(shape section.Shape, n, slope, q, requiredFreeboard float64) (*CapacityReport, error) {
	yn, err := NormalDepth(shape, n, slope, q)
	if err != nil {
		return nil, fmt.Errorf("hydraulics: capacity check: %w", err)
	}
	yc, err := CriticalDepth(shape, q)
	if err != nil {
		return nil, fmt.Errorf("hydraulics: capacity check: %w", err)
	}
	flow, err := ManningFlow(shape, n, slope, yn)
	if err != nil {
		return nil, err
	}
	rep := &CapacityReport{
		DesignDischarge:   q,
		NormalDepth:       yn,
		CriticalDepth:     yc,
		Velocity:          flow.Velocity,
		Froude:            flow.Froude,
		Regime:            flow.Regime,
		Freeboard:         shape.MaxDepth() - yn,
		RequiredFreeboard: requiredFreeboard,
	}
	rep.FreeboardOK = rep.Freeboard >= requiredFreeboard
	rep.VelocityOK = flow.Velocity >= MinDesignVelocity && flow.Velocity <= MaxDesignVelocity
	rep.Pass = rep.FreeboardOK && rep.VelocityOK
	return rep, nil
}

// RatingPoint is one depth-discharge pair of a rating curve.
type RatingPoint struct {
	Depth     float64 // m
	Discharge float64 // m³/s
	Velocity  float64 // m/s
}

// RatingCurve tabulates the uniform-flow rating of a section from zero
// to full depth in the given number of steps.
func RatingCurve(shape section.Shape, n, slope float64, steps int) ([]RatingPoint, error) {
	if steps < 2 {
		return nil, fmt.Errorf("hydraulics: rating curve needs at least 2 steps, got %d", steps)
	}
	yMax := shape.MaxDepth()
	pts := make([]RatingPoint, 0, steps)
	for i := 1; i <= steps; i++ {
		y := yMax * float64(i) / float64(steps)
		flow, err := ManningFlow(shape, n, slope, y)
		if err != nil {
			return nil, err
		}
		pts = append(pts, RatingPoint{Depth: y, Discharge: flow.Discharge, Velocity: flow.Velocity})
	}
	return pts, nil
}

// Shields sediment stability. Water at 1000 kg/m³, quartz grains at
// 2650 kg/m³, and a flat critical Shields parameter of 0.047 for the
// fully turbulent range.
const (
	waterDensity    = 1000.0 // kg/m³
	sedimentDensity = 2650.0 // kg/m³
	criticalShields = 0.047
)

// ShieldsReport is the bed stability verdict of a Shields check.
type ShieldsReport struct {
	BedShear         float64 // Pa, τ = ρ·g·R·S
	ShieldsParameter float64 // τ* = τ / ((ρs − ρ)·g·d₅₀)
	CriticalShields  float64
	Stable           bool
}

// CheckShields evaluates bed material stability at depth y for grain
// size d50 (m). The check is advisory: it runs after the hydraulic
// solve and never alters the flow solution.
func CheckShields(shape section.Shape, slope, y, d50 float64) (*ShieldsReport, error) {
	if d50 <= 0 {
		return nil, fmt.Errorf("hydraulics: grain size must be positive, got %g", d50)
	}
	if slope < 0 {
		return nil, fmt.Errorf("hydraulics: Shields check needs a non-negative slope, got %g", slope)
	}
	p := shape.Properties(y)
	tau := waterDensity * Gravity * p.HydraulicRadius * slope
	theta := tau / ((sedimentDensity - waterDensity) * Gravity * d50)
	return &ShieldsReport{
		BedShear:         tau,
		ShieldsParameter: theta,
		CriticalShields:  criticalShields,
		Stable:           theta < criticalShields,
	}, nil
}
