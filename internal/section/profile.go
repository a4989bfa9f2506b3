package section

import (
	"math"
	"sort"

	"github.com/cadhy/cadhy/internal/geom"
)

// Profiles are ordered from the top of the left wall, down and across
// the invert, to the top of the right wall. Outward normals are
// therefore clockwise rotations of the edge directions.

// ProfilePoints of a rectangular flume: the four wall/invert corners.
func (s Rectangular) ProfilePoints(int) []geom.Vec2 {
	w, d := s.Width/2, s.Depth
	return []geom.Vec2{{X: -w, Y: d}, {X: -w, Y: 0}, {X: w, Y: 0}, {X: w, Y: d}}
}

// OuterProfilePoints of a rectangular flume: walls shifted out by twall,
// floor dropped by tfloor, wall tops kept level with the inner rim.
func (s Rectangular) OuterProfilePoints(_ int, twall, tfloor float64) []geom.Vec2 {
	w, d := s.Width/2, s.Depth
	return []geom.Vec2{
		{X: -w - twall, Y: d},
		{X: -w - twall, Y: -tfloor},
		{X: w + twall, Y: -tfloor},
		{X: w + twall, Y: d},
	}
}

// ProfilePoints of a trapezoidal channel.
func (s Trapezoidal) ProfilePoints(int) []geom.Vec2 {
	b, d := s.BottomWidth/2, s.Depth
	return []geom.Vec2{
		{X: -b - s.SlopeLeft*d, Y: d},
		{X: -b, Y: 0},
		{X: b, Y: 0},
		{X: b + s.SlopeRight*d, Y: d},
	}
}

// OuterProfilePoints of a trapezoidal channel. Walls are offset
// perpendicular to their slope (outward normal (∓1, −s)/√(1+s²)), the
// floor line drops by tfloor, and the offset wall and floor lines are
// intersected for crisp bottom corners. The wall tops stay level at the
// inner rim elevation, so the horizontal top offset is twall·√(1+s²).
func (s Trapezoidal) OuterProfilePoints(_ int, twall, tfloor float64) []geom.Vec2 {
	b, d := s.BottomWidth/2, s.Depth
	ql := math.Sqrt(1 + s.SlopeLeft*s.SlopeLeft)
	qr := math.Sqrt(1 + s.SlopeRight*s.SlopeRight)
	return []geom.Vec2{
		{X: -b - s.SlopeLeft*d - twall*ql, Y: d},
		{X: -b - twall*ql + s.SlopeLeft*tfloor, Y: -tfloor},
		{X: b + twall*qr - s.SlopeRight*tfloor, Y: -tfloor},
		{X: b + s.SlopeRight*d + twall*qr, Y: d},
	}
}

// ProfilePoints of a triangular ditch: two wall tops and the apex.
func (s Triangular) ProfilePoints(int) []geom.Vec2 {
	d := s.Depth
	return []geom.Vec2{
		{X: -s.SlopeLeft * d, Y: d},
		{X: 0, Y: 0},
		{X: s.SlopeRight * d, Y: d},
	}
}

// OuterProfilePoints of a triangular ditch: each wall offset
// perpendicular by twall, the outer apex at the intersection of the two
// offset wall lines, lowered by tfloor.
func (s Triangular) OuterProfilePoints(_ int, twall, tfloor float64) []geom.Vec2 {
	d := s.Depth
	ql := math.Sqrt(1 + s.SlopeLeft*s.SlopeLeft)
	qr := math.Sqrt(1 + s.SlopeRight*s.SlopeRight)
	// Offset wall lines: x = -s_l·z - twall·ql and x = s_r·z + twall·qr.
	// Their intersection sits below the inner apex; tfloor lowers it
	// further so a floor slab thickness survives at the point.
	zInt := -(twall*ql + twall*qr) / (s.SlopeLeft + s.SlopeRight)
	xInt := s.SlopeRight*zInt + twall*qr
	return []geom.Vec2{
		{X: -s.SlopeLeft*d - twall*ql, Y: d},
		{X: xInt, Y: zInt - tfloor},
		{X: s.SlopeRight*d + twall*qr, Y: d},
	}
}

// ProfilePoints of a circular conduit: n points around the circle,
// leaving a one-step construction gap at the crown so rings stay open
// polylines like every other shape. The first point is just left of the
// crown, the last just right of it.
func (s Circular) ProfilePoints(n int) []geom.Vec2 {
	if n < 8 {
		n = 8
	}
	r := s.Diameter / 2
	pts := make([]geom.Vec2, n)
	for i := 0; i < n; i++ {
		// θ = 0 at the invert, ±π at the crown.
		theta := -math.Pi + (float64(i)+0.5)*2*math.Pi/float64(n)
		pts[i] = geom.Vec2{X: r * math.Sin(theta), Y: r - r*math.Cos(theta)}
	}
	return pts
}

// OuterProfilePoints of a circular conduit: radial offset with the
// thickness blending from tfloor at the invert to twall at the crown.
func (s Circular) OuterProfilePoints(n int, twall, tfloor float64) []geom.Vec2 {
	if n < 8 {
		n = 8
	}
	r := s.Diameter / 2
	pts := make([]geom.Vec2, n)
	for i := 0; i < n; i++ {
		theta := -math.Pi + (float64(i)+0.5)*2*math.Pi/float64(n)
		t := tfloor + (twall-tfloor)*math.Abs(theta)/math.Pi
		pts[i] = geom.Vec2{X: (r + t) * math.Sin(theta), Y: r - (r+t)*math.Cos(theta)}
	}
	return pts
}

// ProfilePoints of a parabolic channel: z = Depth·(2x/TopWidth)²
// sampled at n equal x stations.
func (s Parabolic) ProfilePoints(n int) []geom.Vec2 {
	if n < 5 {
		n = 5
	}
	if n%2 == 0 {
		n++ // keep a vertex exactly at the invert
	}
	pts := make([]geom.Vec2, n)
	for i := 0; i < n; i++ {
		x := -s.TopWidth/2 + s.TopWidth*float64(i)/float64(n-1)
		u := 2 * x / s.TopWidth
		pts[i] = geom.Vec2{X: x, Y: s.Depth * u * u}
	}
	return pts
}

// OuterProfilePoints of a parabolic channel: per-vertex normal offset
// with depth-blended thickness.
func (s Parabolic) OuterProfilePoints(n int, twall, tfloor float64) []geom.Vec2 {
	inner := s.ProfilePoints(n)
	return offsetMiter(inner, func(p geom.Vec2) float64 {
		return tfloor + (twall-tfloor)*math.Min(1, p.Y/s.Depth)
	})
}

// ProfilePoints of a U-shape channel: vertical walls joined to a flat
// invert by quarter-circle fillets. n controls fillet tessellation.
func (s UShape) ProfilePoints(n int) []geom.Vec2 {
	arcSegs := n / 4
	if arcSegs < 3 {
		arcSegs = 3
	}
	w, d, r := s.Width/2, s.Depth, s.InvertRadius
	var pts []geom.Vec2
	pts = append(pts, geom.Vec2{X: -w, Y: d})
	if d > r {
		pts = append(pts, geom.Vec2{X: -w, Y: r})
	}
	// Left fillet: centre (-(w-r), r), from 180° to 270°.
	cl := geom.Vec2{X: -(w - r), Y: r}
	for i := 1; i <= arcSegs; i++ {
		a := math.Pi + math.Pi/2*float64(i)/float64(arcSegs)
		pts = append(pts, geom.Vec2{X: cl.X + r*math.Cos(a), Y: cl.Y + r*math.Sin(a)})
	}
	// Right fillet: centre (w-r, r), from 270° to 360°.
	cr := geom.Vec2{X: w - r, Y: r}
	for i := 1; i <= arcSegs; i++ {
		a := 3*math.Pi/2 + math.Pi/2*float64(i)/float64(arcSegs)
		pts = append(pts, geom.Vec2{X: cr.X + r*math.Cos(a), Y: cr.Y + r*math.Sin(a)})
	}
	if d > r {
		pts = append(pts, geom.Vec2{X: w, Y: d})
	}
	return pts
}

// OuterProfilePoints of a U-shape channel: miter offset with
// depth-blended thickness.
func (s UShape) OuterProfilePoints(n int, twall, tfloor float64) []geom.Vec2 {
	inner := s.ProfilePoints(n)
	return offsetMiter(inner, func(p geom.Vec2) float64 {
		return tfloor + (twall-tfloor)*math.Min(1, math.Max(0, p.Y/s.Depth))
	})
}

// ProfilePoints of a compound section: the main trapezoid with berm
// benches spliced into the banks, built by walking each side from the
// rim down to the invert.
func (s Compound) ProfilePoints(int) []geom.Vec2 {
	d := s.Main.Depth
	b := s.Main.BottomWidth / 2

	side := func(sideSel BermSide, slope float64) []geom.Vec2 {
		var berms []Berm
		for _, bm := range s.Berms {
			if bm.Side == sideSel {
				berms = append(berms, bm)
			}
		}
		// Walk from the invert up: main bank to the lowest berm, bench,
		// next bank segment, and so on up to the rim.
		sort.Slice(berms, func(i, j int) bool { return berms[i].Elevation < berms[j].Elevation })

		// Points generated bottom-up for the left side, in channel-local
		// left coordinates (positive x outward); mirrored by the caller.
		var pts []geom.Vec2
		x := b // invert edge
		z := 0.0
		pts = append(pts, geom.Vec2{X: x, Y: z})
		for _, bm := range berms {
			x += slope * (bm.Elevation - z)
			z = bm.Elevation
			pts = append(pts, geom.Vec2{X: x, Y: z}) // bench inner edge
			x += bm.Width
			pts = append(pts, geom.Vec2{X: x, Y: z}) // bench outer edge
			slope = bm.Slope                         // outer bank continues at the berm slope
		}
		x += slope * (d - z)
		pts = append(pts, geom.Vec2{X: x, Y: d})
		return pts
	}

	left := side(BermLeft, s.Main.SlopeLeft)
	right := side(BermRight, s.Main.SlopeRight)

	out := make([]geom.Vec2, 0, len(left)+len(right))
	for i := len(left) - 1; i >= 0; i-- {
		out = append(out, geom.Vec2{X: -left[i].X, Y: left[i].Y})
	}
	out = append(out, right...)
	return out
}

// OuterProfilePoints of a compound section: miter offset, tfloor at the
// invert blending to twall at the rim.
func (s Compound) OuterProfilePoints(n int, twall, tfloor float64) []geom.Vec2 {
	inner := s.ProfilePoints(n)
	d := s.Main.Depth
	return offsetMiter(inner, func(p geom.Vec2) float64 {
		return tfloor + (twall-tfloor)*math.Min(1, math.Max(0, p.Y/d))
	})
}

// offsetMiter offsets an open polyline outward (away from the channel
// interior) with mitre joins. thickness is evaluated per vertex. The
// mitre scale is capped to avoid spikes at sharp bench corners.
func offsetMiter(pts []geom.Vec2, thickness func(geom.Vec2) float64) []geom.Vec2 {
	n := len(pts)
	out := make([]geom.Vec2, n)
	// Outward normal of an edge is its direction rotated -90°: (dz, -dx).
	edgeNormal := func(i int) geom.Vec2 {
		d := pts[i+1].Sub(pts[i]).Normalized()
		return geom.Vec2{X: d.Y, Y: -d.X}
	}
	for i := 0; i < n; i++ {
		var nrm geom.Vec2
		switch {
		case i == 0:
			nrm = edgeNormal(0)
		case i == n-1:
			nrm = edgeNormal(n - 2)
		default:
			n1, n2 := edgeNormal(i-1), edgeNormal(i)
			nrm = n1.Add(n2).Normalized()
			// Mitre length correction, capped at 4x.
			if c := nrm.Dot(n1); c > 0.25 {
				nrm = nrm.Scale(1 / c)
			} else {
				nrm = nrm.Scale(4)
			}
		}
		out[i] = pts[i].Add(nrm.Scale(thickness(pts[i])))
	}
	return out
}
