package hydraulics

import (
	"log/slog"
	"math"

	"github.com/cadhy/cadhy/internal/corridor"
	"github.com/cadhy/cadhy/internal/section"
)

// JumpClass labels a hydraulic jump by its incoming Froude number,
// following the USBR classification.
type JumpClass int

const (
	JumpUndular     JumpClass = iota // Fr₁ < 1.7
	JumpWeak                         // 1.7 ≤ Fr₁ < 2.5
	JumpOscillating                  // 2.5 ≤ Fr₁ < 4.5
	JumpSteady                       // 4.5 ≤ Fr₁ < 9
	JumpStrong                       // Fr₁ ≥ 9
)

// String returns the USBR label of the class.
func (jc JumpClass) String() string {
	switch jc {
	case JumpUndular:
		return "undular"
	case JumpWeak:
		return "weak"
	case JumpOscillating:
		return "oscillating"
	case JumpSteady:
		return "steady"
	case JumpStrong:
		return "strong"
	}
	return "unknown"
}

// ClassifyJump maps an incoming Froude number to its jump class.
func ClassifyJump(fr1 float64) JumpClass {
	switch {
	case fr1 < 1.7:
		return JumpUndular
	case fr1 < 2.5:
		return JumpWeak
	case fr1 < 4.5:
		return JumpOscillating
	case fr1 < 9:
		return JumpSteady
	default:
		return JumpStrong
	}
}

// Jump records a captured hydraulic jump: the interpolated station of
// the supercritical-to-subcritical crossing, the incoming depth, its
// conjugate, and the energy dissipated across the roller.
type Jump struct {
	Station        float64 // m
	UpstreamDepth  float64 // y₁ (m)
	ConjugateDepth float64 // y₂ (m)
	UpstreamFroude float64
	EnergyLoss     float64 // m of head
	Class          JumpClass
}

// DetectJumps scans a steady profile for supercritical-to-subcritical
// regime changes in the flow direction and resolves each into a jump:
// the station is interpolated on the (Fr − 1) zero crossing and the
// sequent depth from specific-force equality.
func DetectJumps(c *corridor.Corridor, q float64, points []ProfilePoint) []Jump {
	return scanJumps(points,
		func(int) float64 { return q },
		func(i int) section.Shape { return c.ShapeAt(points[i].Station) })
}

// scanJumps resolves supercritical-to-subcritical Froude crossings into
// jumps. flowAt and shapeAt supply the discharge and section at point
// index i; the upstream side of each crossing provides both, which lets
// unsteady states with per-cell discharge reuse the scan.
func scanJumps(points []ProfilePoint, flowAt func(i int) float64, shapeAt func(i int) section.Shape) []Jump {
	var jumps []Jump
	for i := 0; i+1 < len(points); i++ {
		a, b := &points[i], &points[i+1]
		if a.Froude <= 1 || b.Froude >= 1 {
			continue
		}
		// Interpolate the crossing on Fr − 1.
		t := (a.Froude - 1) / (a.Froude - b.Froude)
		s := a.Station + t*(b.Station-a.Station)

		q := flowAt(i)
		shape := shapeAt(i)
		y1 := a.Depth
		fr1 := a.Froude
		y2, err := ConjugateDepth(shape, q, y1)
		if err != nil {
			slog.Warn("conjugate depth solve failed, using downstream profile depth",
				"station", s, "err", err)
			y2 = b.Depth
		}
		e1 := SpecificEnergy(shape, q, y1)
		e2 := SpecificEnergy(shape, q, y2)
		jumps = append(jumps, Jump{
			Station:        s,
			UpstreamDepth:  y1,
			ConjugateDepth: y2,
			UpstreamFroude: fr1,
			EnergyLoss:     math.Max(e1-e2, 0),
			Class:          ClassifyJump(fr1),
		})
	}
	return jumps
}
