package section

import "math"

func finishProps(p *HydraulicProperties) HydraulicProperties {
	if p.WettedPerimeter > 0 {
		p.HydraulicRadius = p.Area / p.WettedPerimeter
	}
	if p.TopWidth > 0 {
		p.HydraulicDepth = p.Area / p.TopWidth
	}
	return *p
}

func clampDepth(y, max float64) float64 {
	return math.Max(0, math.Min(y, max))
}

// Properties of a rectangular section: A = w·y, P = w + 2y, T = w.
func (s Rectangular) Properties(y float64) HydraulicProperties {
	y = clampDepth(y, s.Depth)
	p := HydraulicProperties{
		Area:            s.Width * y,
		WettedPerimeter: s.Width + 2*y,
		TopWidth:        s.Width,
	}
	return finishProps(&p)
}

// Properties of a trapezoidal section:
// A = (b + y(s_l+s_r)/2)·y, P = b + y(√(1+s_l²)+√(1+s_r²)).
func (s Trapezoidal) Properties(y float64) HydraulicProperties {
	y = clampDepth(y, s.Depth)
	p := HydraulicProperties{
		Area:            (s.BottomWidth + y*(s.SlopeLeft+s.SlopeRight)/2) * y,
		WettedPerimeter: s.BottomWidth + y*(math.Sqrt(1+s.SlopeLeft*s.SlopeLeft)+math.Sqrt(1+s.SlopeRight*s.SlopeRight)),
		TopWidth:        s.BottomWidth + y*(s.SlopeLeft+s.SlopeRight),
	}
	return finishProps(&p)
}

// Properties of a triangular section: the trapezoidal formulas with a
// zero bottom width.
func (s Triangular) Properties(y float64) HydraulicProperties {
	y = clampDepth(y, s.Depth)
	p := HydraulicProperties{
		Area:            y * y * (s.SlopeLeft + s.SlopeRight) / 2,
		WettedPerimeter: y * (math.Sqrt(1+s.SlopeLeft*s.SlopeLeft) + math.Sqrt(1+s.SlopeRight*s.SlopeRight)),
		TopWidth:        y * (s.SlopeLeft + s.SlopeRight),
	}
	return finishProps(&p)
}

// circularSegment returns area, arc length and chord width of a circle
// of radius r filled to depth y from the bottom:
// θ = 2·arccos((r−y)/r), A = r²(θ−sin θ)/2, P = rθ, T = 2√(r²−(r−y)²).
func circularSegment(r, y float64) (area, arc, chord float64) {
	if r <= 0 || y <= 0 {
		return 0, 0, 0
	}
	y = math.Min(y, 2*r)
	cosHalf := math.Max(-1, math.Min(1, (r-y)/r))
	theta := 2 * math.Acos(cosHalf)
	area = r * r * (theta - math.Sin(theta)) / 2
	arc = r * theta
	chord = 2 * math.Sqrt(math.Max(0, r*r-(r-y)*(r-y)))
	return area, arc, chord
}

// Properties of a partially filled circular conduit.
func (s Circular) Properties(y float64) HydraulicProperties {
	y = clampDepth(y, s.Diameter)
	r := s.Diameter / 2
	area, arc, chord := circularSegment(r, y)
	p := HydraulicProperties{
		Area:            area,
		WettedPerimeter: arc,
		TopWidth:        chord,
	}
	return finishProps(&p)
}

// Properties of a parabolic section: T(y) = T_top·√(y/d),
// A = (2/3)·T(y)·y, P ≈ T + 8y²/(3T) (series approximation, valid for
// the wide shallow channels the shape models).
func (s Parabolic) Properties(y float64) HydraulicProperties {
	y = clampDepth(y, s.Depth)
	if y == 0 {
		return HydraulicProperties{}
	}
	t := s.TopWidth * math.Sqrt(y/s.Depth)
	p := HydraulicProperties{
		Area:            2.0 / 3.0 * t * y,
		WettedPerimeter: t + 8*y*y/(3*t),
		TopWidth:        t,
	}
	return finishProps(&p)
}

// Properties of a U-shape section, piecewise: below the fillet radius the
// wetted geometry is a flat invert plus two partial fillet arcs; above it
// the walls are vertical.
func (s UShape) Properties(y float64) HydraulicProperties {
	y = clampDepth(y, s.Depth)
	r := s.InvertRadius
	flat := s.Width - 2*r
	var p HydraulicProperties
	if y <= r {
		segA, segArc, segT := circularSegment(r, y)
		p = HydraulicProperties{
			Area:            flat*y + segA,
			WettedPerimeter: flat + segArc,
			TopWidth:        flat + segT,
		}
	} else {
		// Full fillets (quarter arcs each side) plus vertical walls.
		p = HydraulicProperties{
			Area:            flat*r + math.Pi*r*r/2 + s.Width*(y-r),
			WettedPerimeter: flat + math.Pi*r + 2*(y-r),
			TopWidth:        s.Width,
		}
	}
	return finishProps(&p)
}

// Properties of a compound section: the aggregate over the main channel
// and every active berm zone. Conveyance partitioning lives in Flow.
func (s Compound) Properties(y float64) HydraulicProperties {
	y = clampDepth(y, s.Main.Depth)
	var p HydraulicProperties
	for _, z := range s.zones(y) {
		p.Area += z.Area
		p.WettedPerimeter += z.WettedPerimeter
		p.TopWidth += z.TopWidth
	}
	return finishProps(&p)
}
