package hydraulics

import (
	"fmt"
	"math"

	"github.com/cadhy/cadhy/internal/section"
)

// ConvergenceError reports an iterative solve that failed to reach its
// tolerance, with enough context to locate the failure.
type ConvergenceError struct {
	Op         string
	Station    float64
	Iterations int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("hydraulics: %s did not converge at station %.3f after %d iterations (residual %.3e)",
		e.Op, e.Station, e.Iterations, e.Residual)
}

const (
	depthIterMax = 200
	depthTol     = 1e-10 // on the bracket width (m)
)

// NormalDepth solves Manning's equation for the uniform-flow depth that
// carries discharge q on slope s. Bisection on the monotone conveyance
// curve; the convergence criterion is on discharge, not depth.
func NormalDepth(shape section.Shape, n, s, q float64) (float64, error) {
	if q <= 0 {
		return 0, fmt.Errorf("hydraulics: discharge must be positive, got %g", q)
	}
	if s <= 0 {
		return 0, fmt.Errorf("hydraulics: normal depth undefined on non-positive slope %g", s)
	}
	qAt := func(y float64) float64 {
		p := shape.Properties(y)
		if p.Area <= 0 {
			return 0
		}
		return p.Area * math.Pow(p.HydraulicRadius, 2.0/3.0) * math.Sqrt(s) / n
	}
	lo, hi := 0.0, shape.MaxDepth()
	if qAt(hi) < q {
		return 0, fmt.Errorf("hydraulics: discharge %.3f m³/s exceeds full-section capacity %.3f m³/s", q, qAt(hi))
	}
	for i := 0; i < depthIterMax; i++ {
		mid := (lo + hi) / 2
		if qAt(mid) < q {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < depthTol {
			break
		}
	}
	y := (lo + hi) / 2
	if res := math.Abs(qAt(y) - q); res > 1e-6*q {
		return 0, &ConvergenceError{Op: "normal depth", Iterations: depthIterMax, Residual: res}
	}
	return y, nil
}

// CriticalDepth solves A³/T = Q²/g, the depth at which the Froude
// number is unity. A³/T grows monotonically with depth for the
// supported shapes, so bisection applies.
func CriticalDepth(shape section.Shape, q float64) (float64, error) {
	if q <= 0 {
		return 0, fmt.Errorf("hydraulics: discharge must be positive, got %g", q)
	}
	target := q * q / Gravity
	fAt := func(y float64) float64 {
		p := shape.Properties(y)
		if p.TopWidth <= 0 {
			return 0
		}
		return p.Area * p.Area * p.Area / p.TopWidth
	}
	lo, hi := 0.0, shape.MaxDepth()
	if fAt(hi) < target {
		if shape.Kind() == section.KindCircular {
			// Near the crown T shrinks toward zero and A³/T diverges, so
			// a circular section always brackets the root below full (at
			// the crown itself T = 0 and fAt degenerates to zero).
			hi *= 0.999999
		}
		if fAt(hi) < target {
			return 0, fmt.Errorf("hydraulics: critical depth for %.3f m³/s exceeds the section depth", q)
		}
	}
	for i := 0; i < depthIterMax; i++ {
		mid := (lo + hi) / 2
		if fAt(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < depthTol {
			break
		}
	}
	return (lo + hi) / 2, nil
}

// DepthFromArea inverts the monotone A(y) relation of a section.
func DepthFromArea(shape section.Shape, area float64) float64 {
	if area <= 0 {
		return 0
	}
	lo, hi := 0.0, shape.MaxDepth()
	if shape.Properties(hi).Area <= area {
		return hi // section full; clamp at the top
	}
	for i := 0; i < depthIterMax; i++ {
		mid := (lo + hi) / 2
		if shape.Properties(mid).Area < area {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < depthTol {
			break
		}
	}
	return (lo + hi) / 2
}

// ConjugateDepth returns the depth on the far side of a hydraulic jump,
// found from equality of specific force M(y₂) = M(y₁). For a
// supercritical y₁ the root is sought above critical depth.
func ConjugateDepth(shape section.Shape, q, y1 float64) (float64, error) {
	yc, err := CriticalDepth(shape, q)
	if err != nil {
		return 0, err
	}
	m1 := SpecificForce(shape, q, y1)
	var lo, hi float64
	if y1 < yc {
		// Sequent depth is subcritical. M decreases with y above
		// critical until the pressure term dominates, then increases;
		// bracket upward from critical.
		lo, hi = yc, yc
		for SpecificForce(shape, q, hi) < m1 {
			hi *= 2
			if hi > 1e4 {
				return 0, &ConvergenceError{Op: "conjugate depth", Residual: m1 - SpecificForce(shape, q, hi)}
			}
		}
		for i := 0; i < depthIterMax; i++ {
			mid := (lo + hi) / 2
			if SpecificForce(shape, q, mid) < m1 {
				lo = mid
			} else {
				hi = mid
			}
			if hi-lo < depthTol {
				break
			}
		}
		return (lo + hi) / 2, nil
	}
	// Supercritical sequent of a subcritical depth: search below critical
	// where M decreases toward critical as depth rises.
	lo, hi = yc*1e-6, yc
	for SpecificForce(shape, q, lo) < m1 {
		lo /= 2
		if lo < 1e-12 {
			return 0, &ConvergenceError{Op: "conjugate depth", Residual: m1 - SpecificForce(shape, q, lo)}
		}
	}
	for i := 0; i < depthIterMax; i++ {
		mid := (lo + hi) / 2
		if SpecificForce(shape, q, mid) > m1 {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < depthTol {
			break
		}
	}
	return (lo + hi) / 2, nil
}
