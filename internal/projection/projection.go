// Package projection turns kernel solids into classified 2-D curves
// for technical drawings: hidden-line views, the ten standard views,
// and hatched section cuts. Output coordinates are in drawing units
// (model metres times the view scale); stroke widths are in
// millimetres for the sheet writers.
package projection

import (
	"math"

	"github.com/cadhy/cadhy/internal/geom"
)

// LineType classifies a drawing curve for styling.
type LineType int

const (
	LineVisibleSharp LineType = iota
	LineHiddenSharp
	LineVisibleSmooth
	LineHiddenSmooth
	LineVisibleOutline
	LineHiddenOutline
	LineCenter
	LineSectionCut
)

// String returns the style-sheet name of the line type.
func (lt LineType) String() string {
	switch lt {
	case LineVisibleSharp:
		return "visible-sharp"
	case LineHiddenSharp:
		return "hidden-sharp"
	case LineVisibleSmooth:
		return "visible-smooth"
	case LineHiddenSmooth:
		return "hidden-smooth"
	case LineVisibleOutline:
		return "visible-outline"
	case LineHiddenOutline:
		return "hidden-outline"
	case LineCenter:
		return "centerline"
	case LineSectionCut:
		return "section-cut"
	}
	return "unknown"
}

// Style is the recommended stroke for a line type.
type Style struct {
	Width float64 // mm
	Dash  string  // SVG dash pattern, empty for solid
}

// StyleOf returns the drawing convention stroke for a line type:
// outlines 0.7 mm, visible and section-cut edges 0.5 mm, hidden edges
// 0.25 mm dashed "4,2", centerlines 0.18 mm dashed "6,2,1,2".
func StyleOf(lt LineType) Style {
	switch lt {
	case LineVisibleOutline, LineHiddenOutline:
		return Style{Width: 0.7}
	case LineVisibleSharp, LineVisibleSmooth, LineSectionCut:
		return Style{Width: 0.5}
	case LineHiddenSharp, LineHiddenSmooth:
		return Style{Width: 0.25, Dash: "4,2"}
	case LineCenter:
		return Style{Width: 0.18, Dash: "6,2,1,2"}
	}
	return Style{Width: 0.5}
}

// CurveKind is the geometric type of a drawing curve.
type CurveKind int

const (
	KindLine CurveKind = iota
	KindArc
	KindCircle
	KindEllipse
	KindSpline
)

// String returns the histogram label of the kind.
func (k CurveKind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindArc:
		return "arc"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	case KindSpline:
		return "spline"
	}
	return "unknown"
}

// Curve is one classified 2-D drawing curve. Lines carry A and B; arcs,
// circles and ellipses keep their exact parametric form; splines are
// pre-tessellated polylines.
type Curve struct {
	Kind CurveKind
	Type LineType

	A, B geom.Vec2 // KindLine

	Center     geom.Vec2 // KindArc, KindCircle, KindEllipse
	Radius     float64   // KindArc, KindCircle; ellipse semi-major
	RadiusY    float64   // KindEllipse semi-minor
	StartAngle float64   // rad, KindArc
	EndAngle   float64   // rad, KindArc
	CCW        bool      // KindArc sweep direction

	Points []geom.Vec2 // KindSpline polyline
}

// Line builds a straight curve.
func Line(a, b geom.Vec2, lt LineType) Curve {
	return Curve{Kind: KindLine, Type: lt, A: a, B: b}
}

// Tessellate flattens the curve into a polyline with chord error at
// most deflection. Lines and splines return their defining points.
func (c Curve) Tessellate(deflection float64) []geom.Vec2 {
	switch c.Kind {
	case KindLine:
		return []geom.Vec2{c.A, c.B}
	case KindSpline:
		return c.Points
	case KindCircle:
		arc := c
		arc.Kind = KindArc
		arc.StartAngle, arc.EndAngle, arc.CCW = 0, 2*math.Pi, true
		return arc.Tessellate(deflection)
	case KindEllipse:
		return tessellateEllipse(c, deflection)
	}
	// Arc: chord error e = r(1 − cos(dθ/2)) bounds the step.
	sweep := c.EndAngle - c.StartAngle
	if !c.CCW && sweep > 0 {
		sweep -= 2 * math.Pi
	}
	if c.CCW && sweep < 0 {
		sweep += 2 * math.Pi
	}
	step := math.Pi / 8
	if deflection > 0 && deflection < c.Radius {
		step = 2 * math.Acos(1-deflection/c.Radius)
	}
	n := int(math.Ceil(math.Abs(sweep)/step)) + 1
	if n < 2 {
		n = 2
	}
	pts := make([]geom.Vec2, n)
	for i := range pts {
		a := c.StartAngle + sweep*float64(i)/float64(n-1)
		pts[i] = geom.Vec2{X: c.Center.X + c.Radius*math.Cos(a), Y: c.Center.Y + c.Radius*math.Sin(a)}
	}
	return pts
}

func tessellateEllipse(c Curve, deflection float64) []geom.Vec2 {
	r := math.Max(c.Radius, c.RadiusY)
	step := math.Pi / 8
	if deflection > 0 && deflection < r {
		step = 2 * math.Acos(1-deflection/r)
	}
	n := int(math.Ceil(2*math.Pi/step)) + 1
	pts := make([]geom.Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n-1)
		pts[i] = geom.Vec2{X: c.Center.X + c.Radius*math.Cos(a), Y: c.Center.Y + c.RadiusY*math.Sin(a)}
	}
	return pts
}

// Result is a projected view: classified curves, their bounding box and
// a per-kind histogram.
type Result struct {
	Name      string
	Curves    []Curve
	Bounds    geom.Box2
	Histogram map[CurveKind]int
}

func (r *Result) add(c Curve) {
	r.Curves = append(r.Curves, c)
	r.Histogram[c.Kind]++
	for _, p := range c.Tessellate(0) {
		r.Bounds.Extend(p)
	}
}
