package section

import "fmt"

// widthCollapse is the bottom width (m) below which a blended section is
// promoted to triangular: thinner inverts produce sliver floor strips
// the mesher cannot stitch robustly.
const widthCollapse = 0.02

// slopeZero is the side slope below which a blended trapezoid is treated
// as rectangular.
const slopeZero = 1e-9

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// asTrapezoid folds the three polygonal variants into common trapezoid
// parameters. ok is false for curved shapes.
func asTrapezoid(s Shape) (Trapezoidal, bool) {
	switch v := s.(type) {
	case Rectangular:
		return Trapezoidal{BottomWidth: v.Width, Depth: v.Depth}, true
	case Trapezoidal:
		return v, true
	case Triangular:
		return Trapezoidal{Depth: v.Depth, SlopeLeft: v.SlopeLeft, SlopeRight: v.SlopeRight}, true
	}
	return Trapezoidal{}, false
}

// classifyTrapezoid demotes a blended trapezoid to the simplest variant
// that represents it: rectangular when the slopes vanish, triangular
// when the invert collapses below widthCollapse.
func classifyTrapezoid(tr Trapezoidal) Shape {
	if tr.BottomWidth < widthCollapse && tr.SlopeLeft+tr.SlopeRight > slopeZero {
		return Triangular{Depth: tr.Depth, SlopeLeft: tr.SlopeLeft, SlopeRight: tr.SlopeRight}
	}
	if tr.SlopeLeft < slopeZero && tr.SlopeRight < slopeZero {
		return Rectangular{Width: tr.BottomWidth, Depth: tr.Depth}
	}
	return tr
}

// Interpolate blends two sections at parameter t in [0, 1]. Like shapes
// blend their parameters linearly; the polygonal shapes (rectangular,
// trapezoidal, triangular) blend through common trapezoid parameters so
// a transition can fade side slopes in or collapse the invert to a V.
// Pairs with no geometric blend (e.g. circular to trapezoidal) return an
// error; the corridor mesher lofts those instead.
func Interpolate(a, b Shape, t float64) (Shape, error) {
	if t <= 0 {
		return a, nil
	}
	if t >= 1 {
		return b, nil
	}

	if ta, aok := asTrapezoid(a); aok {
		if tb, bok := asTrapezoid(b); bok {
			return classifyTrapezoid(Trapezoidal{
				BottomWidth: lerp(ta.BottomWidth, tb.BottomWidth, t),
				Depth:       lerp(ta.Depth, tb.Depth, t),
				SlopeLeft:   lerp(ta.SlopeLeft, tb.SlopeLeft, t),
				SlopeRight:  lerp(ta.SlopeRight, tb.SlopeRight, t),
			}), nil
		}
	}

	switch va := a.(type) {
	case Circular:
		if vb, ok := b.(Circular); ok {
			return Circular{Diameter: lerp(va.Diameter, vb.Diameter, t)}, nil
		}
	case Parabolic:
		if vb, ok := b.(Parabolic); ok {
			return Parabolic{
				TopWidth: lerp(va.TopWidth, vb.TopWidth, t),
				Depth:    lerp(va.Depth, vb.Depth, t),
			}, nil
		}
	case UShape:
		if vb, ok := b.(UShape); ok {
			return UShape{
				Width:        lerp(va.Width, vb.Width, t),
				Depth:        lerp(va.Depth, vb.Depth, t),
				InvertRadius: lerp(va.InvertRadius, vb.InvertRadius, t),
			}, nil
		}
	case Compound:
		if vb, ok := b.(Compound); ok && len(va.Berms) == len(vb.Berms) {
			out := Compound{Main: Trapezoidal{
				BottomWidth: lerp(va.Main.BottomWidth, vb.Main.BottomWidth, t),
				Depth:       lerp(va.Main.Depth, vb.Main.Depth, t),
				SlopeLeft:   lerp(va.Main.SlopeLeft, vb.Main.SlopeLeft, t),
				SlopeRight:  lerp(va.Main.SlopeRight, vb.Main.SlopeRight, t),
			}}
			for i := range va.Berms {
				ba, bb := va.Berms[i], vb.Berms[i]
				if ba.Side != bb.Side {
					return nil, fmt.Errorf("section: cannot interpolate berm %d across sides", i)
				}
				out.Berms = append(out.Berms, Berm{
					Side:      ba.Side,
					Width:     lerp(ba.Width, bb.Width, t),
					Elevation: lerp(ba.Elevation, bb.Elevation, t),
					Slope:     lerp(ba.Slope, bb.Slope, t),
					ManningN:  lerp(ba.ManningN, bb.ManningN, t),
				})
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("section: no interpolation between %s and %s", a.Kind(), b.Kind())
}
