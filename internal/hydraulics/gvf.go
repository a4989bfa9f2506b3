package hydraulics

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cadhy/cadhy/internal/corridor"
)

// ProfilePoint is the steady water surface state at one station.
type ProfilePoint struct {
	Station      float64 // m
	BedElevation float64 // m
	Depth        float64 // m
	WaterSurface float64 // m, bed + depth
	Velocity     float64 // m/s
	Froude       float64
	Energy       float64 // m, E = y + V²/2g
	Regime       Regime
}

// Profile is a steady gradually-varied-flow solution over a corridor.
type Profile struct {
	Discharge float64 // m³/s
	Points    []ProfilePoint
	Jumps     []Jump
}

// ProfileOptions configure the standard-step march.
type ProfileOptions struct {
	// Resolution is the station step (m). Zero selects 1 m.
	Resolution float64
	// ControlDepth pins the boundary depth at the control section. Zero
	// selects normal depth there, falling back to critical on flat or
	// adverse reaches.
	ControlDepth float64
}

func (o *ProfileOptions) fill() {
	if o.Resolution <= 0 {
		o.Resolution = 1
	}
}

// SteadyProfile computes the gradually-varied water surface for a fixed
// discharge by the standard-step energy method. The march direction
// follows the regime at the control: subcritical profiles are integrated
// upstream from the downstream boundary, supercritical profiles
// downstream from the upstream boundary. Depths are kept on the control
// side of critical; where the far-side regime takes over a hydraulic
// jump is captured and reported on the profile. A steep entry under
// downstream control is re-marched on the supercritical branch so the
// captured jump carries the physical incoming depth and Froude number
// rather than a critical-depth clamp.
func SteadyProfile(ctx context.Context, c *corridor.Corridor, q float64, opts ProfileOptions) (*Profile, error) {
	if q <= 0 {
		return nil, fmt.Errorf("hydraulics: discharge must be positive, got %g", q)
	}
	opts.fill()

	length := c.Length()
	n := int(math.Ceil(length/opts.Resolution)) + 1
	stations := make([]float64, n)
	for i := range stations {
		s := float64(i) * opts.Resolution
		if s > length {
			s = length
		}
		stations[i] = s
	}
	stations[n-1] = length

	// Regime at the control decides the direction of the march.
	subcritical, yCtl, err := controlDepth(c, q, opts.ControlDepth)
	if err != nil {
		return nil, err
	}

	points := make([]ProfilePoint, n)
	if subcritical {
		points[n-1] = pointAt(c, q, stations[n-1], yCtl)
		for i := n - 2; i >= 0; i-- {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			y, err := stepEnergy(c, q, stations[i], &points[i+1], true)
			if err != nil {
				return nil, err
			}
			points[i] = pointAt(c, q, stations[i], y)
		}
	} else {
		points[0] = pointAt(c, q, stations[0], yCtl)
		for i := 1; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			y, err := stepEnergy(c, q, stations[i], &points[i-1], false)
			if err != nil {
				return nil, err
			}
			points[i] = pointAt(c, q, stations[i], y)
		}
	}

	if subcritical {
		if err := overlaySupercritical(ctx, c, q, stations, points); err != nil {
			return nil, err
		}
	}

	p := &Profile{Discharge: q, Points: points}
	p.Jumps = DetectJumps(c, q, points)
	return p, nil
}

// overlaySupercritical re-marches the supercritical branch from a steep
// upstream entry over a subcritical profile. The upstream march clamps
// at critical depth on a steep sub-reach, which would report a jump
// with y₁ = y_c and Fr₁ ≈ 1 regardless of the incoming stream; the
// overlay replaces the head of the profile with the physical
// supercritical depths for as long as the supercritical stream carries
// more specific force than the backwater, which is exactly up to the
// jump.
func overlaySupercritical(ctx context.Context, c *corridor.Corridor, q float64, stations []float64, points []ProfilePoint) error {
	s0 := stations[0]
	shape0 := c.ShapeAt(s0)
	slope0 := c.BedSlopeAt(s0)
	if slope0 <= 0 {
		return nil
	}
	yc0, err := CriticalDepth(shape0, q)
	if err != nil {
		return err
	}
	yn0, err := NormalDepth(shape0, c.ManningAt(s0), slope0, q)
	if err != nil {
		// The entry section cannot pass q uniformly; no supercritical
		// inflow to trace.
		return nil
	}
	if yn0 >= yc0 {
		// Mild entry, the subcritical march is already physical.
		return nil
	}

	// A backwater already exceeding the incoming specific force drowns
	// the jump at the inlet; the subcritical profile stands.
	if SpecificForce(shape0, q, yn0) <= SpecificForce(shape0, q, points[0].Depth) {
		return nil
	}

	prev := pointAt(c, q, s0, yn0)
	points[0] = prev
	for i := 1; i < len(points); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		y, err := stepEnergy(c, q, stations[i], &prev, false)
		if err != nil {
			return err
		}
		shape := c.ShapeAt(stations[i])
		yc, err := CriticalDepth(shape, q)
		if err != nil {
			return err
		}
		if y >= yc*(1-1e-9) {
			// The supercritical branch died at critical depth.
			return nil
		}
		if SpecificForce(shape, q, y) <= SpecificForce(shape, q, points[i].Depth) {
			// The backwater wins the momentum balance from here on: the
			// jump sits in this interval and the scan will resolve it.
			return nil
		}
		prev = pointAt(c, q, stations[i], y)
		points[i] = prev
	}
	return nil
}

// controlDepth picks the boundary condition for the march. The slope at
// the downstream end classifies the reach: yn > yc means a mild reach
// under downstream control.
func controlDepth(c *corridor.Corridor, q, pinned float64) (subcritical bool, y float64, err error) {
	sEnd := c.Length()
	shape := c.ShapeAt(sEnd)
	yc, err := CriticalDepth(shape, q)
	if err != nil {
		return false, 0, err
	}
	slope := c.BedSlopeAt(sEnd)
	if slope <= 0 {
		// Flat or adverse: no normal depth, downstream control at
		// critical unless pinned.
		if pinned > 0 {
			return true, pinned, nil
		}
		return true, yc, nil
	}
	yn, err := NormalDepth(shape, c.ManningAt(sEnd), slope, q)
	if err != nil {
		return false, 0, err
	}
	subcritical = yn > yc
	y = yn
	if pinned > 0 {
		y = pinned
		// A pinned depth on the wrong side of critical flips the control.
		subcritical = pinned > yc
	}
	return subcritical, y, nil
}

func pointAt(c *corridor.Corridor, q, s, y float64) ProfilePoint {
	shape := c.ShapeAt(s)
	prop := shape.Properties(y)
	v := 0.0
	if prop.Area > 0 {
		v = q / prop.Area
	}
	fr := Froude(shape, q, y)
	bed := c.BedElevationAt(s)
	return ProfilePoint{
		Station:      s,
		BedElevation: bed,
		Depth:        y,
		WaterSurface: bed + y,
		Velocity:     v,
		Froude:       fr,
		Energy:       SpecificEnergy(shape, q, y),
		Regime:       ClassifyFroude(fr),
	}
}

// stepEnergy solves the standard-step energy balance for the depth at
// station s given the known adjacent point. For an upstream march the
// known point is downstream; the balance reads
//
//	z_u + E_u = z_d + E_d + h_f + h_t
//
// with h_f the friction loss from the averaged friction slopes and h_t
// the transition loss K·|V_u² − V_d²|/2g when a transition descriptor
// spans the interval. The root stays on the known point's side of
// critical; a vanishing bracket means the profile has reached the
// critical depth (choking) and the depth is clamped there.
func stepEnergy(c *corridor.Corridor, q, s float64, known *ProfilePoint, upstream bool) (float64, error) {
	shape := c.ShapeAt(s)
	nHere := c.ManningAt(s)
	dx := math.Abs(s - known.Station)
	zHere := c.BedElevationAt(s)

	lossK := 0.0
	if tr := c.TransitionAt((s + known.Station) / 2); tr != nil {
		lossK = tr.LossCoefficient
	}

	sfKnown := FrictionSlope(c.ShapeAt(known.Station), c.ManningAt(known.Station), q, known.Depth)
	residual := func(y float64) float64 {
		e := SpecificEnergy(shape, q, y)
		sf := FrictionSlope(shape, nHere, q, y)
		hf := dx * (sf + sfKnown) / 2
		ht := 0.0
		if lossK > 0 {
			p := shape.Properties(y)
			if p.Area > 0 {
				v := q / p.Area
				ht = lossK * math.Abs(v*v-known.Velocity*known.Velocity) / (2 * Gravity)
			}
		}
		if upstream {
			// Unknown is upstream: energy there balances the known
			// downstream head plus losses.
			return zHere + e - (known.BedElevation + known.Energy + hf + ht)
		}
		return known.BedElevation + known.Energy - (zHere + e + hf + ht)
	}

	yc, err := CriticalDepth(shape, q)
	if err != nil {
		return 0, err
	}

	// Bracket on the regime branch of the known point. On the
	// subcritical branch energy grows with depth, so the residual is
	// monotone over the bracket; likewise inverted on the supercritical
	// branch.
	var lo, hi float64
	if known.Regime != RegimeSupercritical {
		lo, hi = yc, math.Max(known.Depth*4, yc*4)
		for residual(hi) < 0 {
			hi *= 2
			if hi > 1e4 {
				return 0, &ConvergenceError{Op: "standard step", Station: s, Residual: residual(hi)}
			}
		}
		if residual(lo) > 0 {
			slog.Debug("profile reached critical depth", "station", s)
			return yc, nil
		}
	} else {
		// On the supercritical branch energy falls as depth rises, so the
		// residual increases with depth. A negative residual at critical
		// means the available head cannot sustain the branch.
		lo, hi = yc*1e-3, yc
		if residual(hi) < 0 {
			slog.Debug("profile reached critical depth", "station", s)
			return yc, nil
		}
		for residual(lo) > 0 {
			lo /= 2
			if lo < 1e-9 {
				return 0, &ConvergenceError{Op: "standard step", Station: s, Residual: residual(lo)}
			}
		}
	}

	rLo := residual(lo) < 0
	for i := 0; i < depthIterMax; i++ {
		mid := (lo + hi) / 2
		if (residual(mid) < 0) == rLo {
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
