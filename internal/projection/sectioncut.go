package projection

import (
	"fmt"
	"math"
	"sort"

	"github.com/cadhy/cadhy/internal/geom"
	"github.com/cadhy/cadhy/internal/kernel"
)

// HatchConfig tunes section-cut hatching.
type HatchConfig struct {
	// Angle of the hatch lines in radians. Zero selects 45 degrees.
	Angle float64
	// Spacing between hatch lines in drawing units. Zero selects 0.5.
	Spacing float64
}

func (h *HatchConfig) fill() {
	if h.Angle == 0 {
		h.Angle = math.Pi / 4
	}
	if h.Spacing <= 0 {
		h.Spacing = 0.5
	}
}

// Region is one oriented cut region: a counter-clockwise outer boundary
// with clockwise holes.
type Region struct {
	Outer []geom.Vec2
	Holes [][]geom.Vec2
}

// SectionResult is a hatched planar cut through a solid.
type SectionResult struct {
	Regions []Region
	Curves  []Curve // closed boundary polylines, section-cut style
	Hatch   []Curve // hatch line segments
	Bounds  geom.Box2
}

// SectionView cuts the solid with the plane, orients the resulting
// boundaries by signed area (CCW outer, CW holes), and fills each
// region with angle/spacing scan-line hatching clipped to the
// boundaries including holes.
func SectionView(k kernel.Kernel, s kernel.Solid, plane geom.Plane, hatch HatchConfig) (*SectionResult, error) {
	hatch.fill()
	loops, err := k.SectionPlane(s, plane)
	if err != nil {
		return nil, fmt.Errorf("projection: section view: %w", err)
	}

	res := &SectionResult{Bounds: geom.EmptyBox2()}
	if len(loops) == 0 {
		return res, nil
	}

	// A loop enclosed by an odd number of others bounds a hole; its
	// container is the smallest enclosing outer loop.
	type loopInfo struct {
		pts   []geom.Vec2
		area  float64
		depth int
	}
	infos := make([]loopInfo, len(loops))
	for i, lp := range loops {
		infos[i] = loopInfo{pts: lp, area: math.Abs(signedArea(lp))}
	}
	for i := range infos {
		for j := range infos {
			if i != j && pointInPolygon(infos[i].pts[0], infos[j].pts) {
				infos[i].depth++
			}
		}
	}

	for i := range infos {
		if infos[i].depth%2 != 0 {
			continue
		}
		outer := orient(infos[i].pts, true)
		region := Region{Outer: outer}
		for j := range infos {
			if j == i || infos[j].depth != infos[i].depth+1 {
				continue
			}
			if pointInPolygon(infos[j].pts[0], infos[i].pts) {
				region.Holes = append(region.Holes, orient(infos[j].pts, false))
			}
		}
		res.Regions = append(res.Regions, region)
	}

	for _, region := range res.Regions {
		res.Curves = append(res.Curves, closedPolyline(region.Outer))
		for _, h := range region.Holes {
			res.Curves = append(res.Curves, closedPolyline(h))
		}
		res.Hatch = append(res.Hatch, hatchRegion(region, hatch)...)
	}
	for _, c := range res.Curves {
		for _, p := range c.Points {
			res.Bounds.Extend(p)
		}
	}
	return res, nil
}

func closedPolyline(loop []geom.Vec2) Curve {
	pts := append(append([]geom.Vec2(nil), loop...), loop[0])
	return Curve{Kind: KindSpline, Type: LineSectionCut, Points: pts}
}

func signedArea(loop []geom.Vec2) float64 {
	a := 0.0
	for i := range loop {
		j := (i + 1) % len(loop)
		a += loop[i].Cross(loop[j])
	}
	return a / 2
}

// orient returns the loop with the requested winding (ccw true means
// positive signed area).
func orient(loop []geom.Vec2, ccw bool) []geom.Vec2 {
	if (signedArea(loop) > 0) == ccw {
		return loop
	}
	rev := make([]geom.Vec2, len(loop))
	for i, p := range loop {
		rev[len(loop)-1-i] = p
	}
	return rev
}

// pointInPolygon is an even-odd ray cast along +x.
func pointInPolygon(p geom.Vec2, loop []geom.Vec2) bool {
	inside := false
	for i := range loop {
		a, b := loop[i], loop[(i+1)%len(loop)]
		if (a.Y > p.Y) == (b.Y > p.Y) {
			continue
		}
		x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
		if x > p.X {
			inside = !inside
		}
	}
	return inside
}

// hatchRegion fills one region with parallel scan lines. The region is
// rotated so the hatch direction is horizontal, crossings against every
// boundary edge are paired even-odd, and the clipped segments rotate
// back. Scan lines are offset by half a spacing so they avoid loop
// vertices in the common axis-aligned cases.
func hatchRegion(region Region, cfg HatchConfig) []Curve {
	cos, sin := math.Cos(-cfg.Angle), math.Sin(-cfg.Angle)
	rot := func(p geom.Vec2) geom.Vec2 {
		return geom.Vec2{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
	}
	unrot := func(p geom.Vec2) geom.Vec2 {
		return geom.Vec2{X: p.X*cos + p.Y*sin, Y: -p.X*sin + p.Y*cos}
	}

	var edges [][2]geom.Vec2
	addLoop := func(loop []geom.Vec2) {
		for i := range loop {
			edges = append(edges, [2]geom.Vec2{rot(loop[i]), rot(loop[(i+1)%len(loop)])})
		}
	}
	addLoop(region.Outer)
	for _, h := range region.Holes {
		addLoop(h)
	}

	bounds := geom.EmptyBox2()
	for _, e := range edges {
		bounds.Extend(e[0])
		bounds.Extend(e[1])
	}

	var out []Curve
	for y := bounds.Min.Y + cfg.Spacing/2; y < bounds.Max.Y; y += cfg.Spacing {
		var xs []float64
		for _, e := range edges {
			a, b := e[0], e[1]
			if (a.Y > y) == (b.Y > y) {
				continue
			}
			xs = append(xs, a.X+(y-a.Y)/(b.Y-a.Y)*(b.X-a.X))
		}
		if len(xs) < 2 {
			continue
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			if xs[i+1]-xs[i] < 1e-9 {
				continue
			}
			c := Line(unrot(geom.Vec2{X: xs[i], Y: y}), unrot(geom.Vec2{X: xs[i+1], Y: y}), LineSectionCut)
			out = append(out, c)
		}
	}
	return out
}
