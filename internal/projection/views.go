package projection

import (
	"fmt"
	"math"

	"github.com/cadhy/cadhy/internal/geom"
	"github.com/cadhy/cadhy/internal/kernel"
)

// View names a projection direction. Direction points from the viewer
// into the scene; Up is orthonormalised against it.
type View struct {
	Name      string
	Direction geom.Vec3
	Up        geom.Vec3
}

// Config tunes a projection.
type Config struct {
	// Scale multiplies model coordinates into drawing units. Zero
	// selects 1:1.
	Scale float64
	// Deflection is the chord error bound for tessellated curves (m).
	// Zero selects 0.01.
	Deflection float64
}

func (c *Config) fill() {
	if c.Scale <= 0 {
		c.Scale = 1
	}
	if c.Deflection <= 0 {
		c.Deflection = 0.01
	}
}

// StandardViews returns the six orthographic views and the four
// isometric corner views. Isometric up vectors are the projection of
// +ẑ orthonormalised against the view direction.
func StandardViews() []View {
	inv := 1 / math.Sqrt(3)
	return []View{
		{Name: "top", Direction: geom.Vec3{Z: -1}, Up: geom.Vec3{Y: 1}},
		{Name: "bottom", Direction: geom.Vec3{Z: 1}, Up: geom.Vec3{Y: 1}},
		{Name: "front", Direction: geom.Vec3{Y: 1}, Up: geom.Vec3{Z: 1}},
		{Name: "back", Direction: geom.Vec3{Y: -1}, Up: geom.Vec3{Z: 1}},
		{Name: "left", Direction: geom.Vec3{X: 1}, Up: geom.Vec3{Z: 1}},
		{Name: "right", Direction: geom.Vec3{X: -1}, Up: geom.Vec3{Z: 1}},
		{Name: "iso-sw", Direction: geom.Vec3{X: -inv, Y: -inv, Z: -inv}, Up: geom.Vec3{Z: 1}},
		{Name: "iso-se", Direction: geom.Vec3{X: inv, Y: -inv, Z: -inv}, Up: geom.Vec3{Z: 1}},
		{Name: "iso-ne", Direction: geom.Vec3{X: inv, Y: inv, Z: -inv}, Up: geom.Vec3{Z: 1}},
		{Name: "iso-nw", Direction: geom.Vec3{X: -inv, Y: inv, Z: -inv}, Up: geom.Vec3{Z: 1}},
	}
}

// lineTypeOf maps an HLR edge classification to a drawing line type.
func lineTypeOf(e kernel.Edge) LineType {
	switch e.Class {
	case kernel.EdgeOutline:
		if e.Hidden {
			return LineHiddenOutline
		}
		return LineVisibleOutline
	case kernel.EdgeSmooth:
		if e.Hidden {
			return LineHiddenSmooth
		}
		return LineVisibleSmooth
	default:
		if e.Hidden {
			return LineHiddenSharp
		}
		return LineVisibleSharp
	}
}

// Project runs hidden-line removal on the solid for one view and
// assembles the classified, scaled 2-D curves. The view plane sits at
// the solid's bounding-box centre so drawings are centred on the part.
func Project(k kernel.Kernel, s kernel.Solid, view View, cfg Config) (*Result, error) {
	cfg.fill()
	if view.Direction.Length() == 0 {
		return nil, fmt.Errorf("projection: view %q has a zero direction", view.Name)
	}
	plane := geom.NewPlane(s.BoundingBox().Center(), view.Direction.Scale(-1), view.Up)
	edges, err := k.HLR(s, plane)
	if err != nil {
		return nil, fmt.Errorf("projection: view %q: %w", view.Name, err)
	}

	res := &Result{
		Name:      view.Name,
		Bounds:    geom.EmptyBox2(),
		Histogram: make(map[CurveKind]int),
	}
	for _, e := range edges {
		res.add(Line(e.A.Scale(cfg.Scale), e.B.Scale(cfg.Scale), lineTypeOf(e)))
	}
	return res, nil
}

// ProjectStandard projects every standard view of the solid.
func ProjectStandard(k kernel.Kernel, s kernel.Solid, cfg Config) ([]*Result, error) {
	views := StandardViews()
	out := make([]*Result, 0, len(views))
	for _, v := range views {
		r, err := Project(k, s, v, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
