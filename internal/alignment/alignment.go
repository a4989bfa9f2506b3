// Package alignment implements the horizontal and vertical geometry of a
// channel centerline: a polyline of points of intersection (PIs) with
// optional circular curves, plus a piecewise-linear longitudinal profile.
//
// Stations are chainages in metres measured along the horizontal geometry
// from the first PI.
package alignment

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/cadhy/cadhy/internal/geom"
)

// ErrTooFewPIs is returned when an alignment is built from fewer than two PIs.
var ErrTooFewPIs = errors.New("alignment: at least 2 PIs required")

// minDeflection below which a curve degenerates to a tangent (rad)
const minDeflection = 1e-3

// PI is a point of intersection between two adjacent tangents. A positive
// Radius inserts a circular curve at the PI; zero means a sharp corner.
type PI struct {
	Position       geom.Vec3 `json:"position" yaml:"position"`
	Radius         float64   `json:"radius,omitempty" yaml:"radius,omitempty"`          // m, 0 = no curve
	Superelevation float64   `json:"superelevation,omitempty" yaml:"superelevation,omitempty"` // m/m cross slope through the curve
}

// SlopeBreak changes the longitudinal bed slope at a station. Slope is
// positive for a bed descending in the direction of increasing station.
type SlopeBreak struct {
	Station float64 `json:"station" yaml:"station"` // m
	Slope   float64 `json:"slope" yaml:"slope"`     // m/m
}

// SegmentKind distinguishes tangents from circular arcs.
type SegmentKind int

const (
	SegmentTangent SegmentKind = iota
	SegmentArc
)

// Segment is one element of the computed horizontal geometry. Segments are
// a derived cache: they are rebuilt from the PIs and never persisted.
type Segment struct {
	Kind         SegmentKind
	StartStation float64
	EndStation   float64
	Start        geom.Vec3 // horizontal (z = 0)
	End          geom.Vec3

	// Arc only
	Center     geom.Vec3
	Radius     float64
	Deflection float64 // signed sweep, rad; positive = left turn
}

// Length returns the segment length along the centerline.
func (s *Segment) Length() float64 { return s.EndStation - s.StartStation }

// Alignment is the 3-D centerline: horizontal PI geometry plus the
// longitudinal profile. Construct with New; the segment cache is not
// safe to mutate directly.
type Alignment struct {
	pis            []PI
	startElevation float64
	baseSlope      float64
	slopeBreaks    []SlopeBreak

	segments []Segment
	length   float64
}

// New builds an alignment from at least two PIs. Curve radii that do not
// fit between their neighbouring PIs are dropped with a warning rather
// than failing the whole construction.
func New(pis []PI, startElevation, baseSlope float64, slopeBreaks []SlopeBreak) (*Alignment, error) {
	if len(pis) < 2 {
		return nil, ErrTooFewPIs
	}
	for i := 1; i < len(slopeBreaks); i++ {
		if slopeBreaks[i].Station <= slopeBreaks[i-1].Station {
			return nil, fmt.Errorf("alignment: slope break stations must increase (%.3f after %.3f)",
				slopeBreaks[i].Station, slopeBreaks[i-1].Station)
		}
	}
	a := &Alignment{
		pis:            pis,
		startElevation: startElevation,
		baseSlope:      baseSlope,
		slopeBreaks:    slopeBreaks,
	}
	a.rebuild()
	if a.length <= 0 {
		return nil, errors.New("alignment: zero-length geometry")
	}
	return a, nil
}

// horizontal strips the z component.
func horizontal(p geom.Vec3) geom.Vec3 { return geom.Vec3{X: p.X, Y: p.Y} }

// rebuild recomputes the segment cache from the PI list. Called on
// construction and after any PI mutation.
func (a *Alignment) rebuild() {
	a.segments = a.segments[:0]
	a.length = 0

	cursor := horizontal(a.pis[0].Position)
	station := 0.0

	for i := 1; i < len(a.pis); i++ {
		pi := horizontal(a.pis[i].Position)

		if i == len(a.pis)-1 || a.pis[i].Radius <= 0 {
			// No curve at this PI (or it is the terminal point):
			// emit the tangent into it and continue.
			station = a.emitTangent(cursor, pi, station)
			cursor = pi
			continue
		}

		next := horizontal(a.pis[i+1].Position)
		v1 := pi.Sub(cursor).Normalized()
		v2 := next.Sub(pi).Normalized()
		cosD := math.Max(-1, math.Min(1, v1.Dot(v2)))
		delta := math.Acos(cosD)

		if delta < minDeflection {
			// Nearly collinear; a curve here is numerically useless.
			station = a.emitTangent(cursor, pi, station)
			cursor = pi
			continue
		}

		r := a.pis[i].Radius
		tlen := r * math.Tan(delta/2)
		if tlen > pi.Sub(cursor).Length() || tlen > next.Sub(pi).Length() {
			slog.Warn("alignment: curve radius does not fit between neighbouring PIs, dropping curve",
				"pi", i, "radius", r, "tangent_length", tlen)
			station = a.emitTangent(cursor, pi, station)
			cursor = pi
			continue
		}

		pc := pi.Sub(v1.Scale(tlen)) // point of curvature
		pt := pi.Add(v2.Scale(tlen)) // point of tangency

		if pc.Sub(cursor).Length() > 1e-12 {
			station = a.emitTangent(cursor, pc, station)
		}

		// Turn direction from the z component of v1 × v2:
		// positive = left turn, centre on the left of v1.
		turn := v1.Cross(v2).Z
		side := 1.0
		if turn < 0 {
			side = -1
		}
		// Left normal of v1 is ẑ × v1.
		normal := geom.Vec3{X: -v1.Y, Y: v1.X}
		center := pc.Add(normal.Scale(r * side))

		arcLen := r * delta
		a.segments = append(a.segments, Segment{
			Kind:         SegmentArc,
			StartStation: station,
			EndStation:   station + arcLen,
			Start:        pc,
			End:          pt,
			Center:       center,
			Radius:       r,
			Deflection:   delta * side,
		})
		station += arcLen
		cursor = pt
	}
	a.length = station
}

func (a *Alignment) emitTangent(from, to geom.Vec3, station float64) float64 {
	l := to.Sub(from).Length()
	if l <= 0 {
		return station
	}
	a.segments = append(a.segments, Segment{
		Kind:         SegmentTangent,
		StartStation: station,
		EndStation:   station + l,
		Start:        from,
		End:          to,
	})
	return station + l
}

// Length returns the total centerline length (m).
func (a *Alignment) Length() float64 { return a.length }

// Segments returns the derived segment list. The slice is shared; treat
// it as read-only.
func (a *Alignment) Segments() []Segment { return a.segments }

// PIs returns the alignment's PI list (read-only).
func (a *Alignment) PIs() []PI { return a.pis }

// SetPI replaces the PI at index i and rebuilds the segment cache.
func (a *Alignment) SetPI(i int, pi PI) error {
	if i < 0 || i >= len(a.pis) {
		return fmt.Errorf("alignment: PI index %d out of range", i)
	}
	a.pis[i] = pi
	a.rebuild()
	return nil
}

// segmentAt locates the segment containing station s, clamping to the
// first/last segment outside [0, L].
func (a *Alignment) segmentAt(s float64) *Segment {
	if s <= a.segments[0].EndStation {
		return &a.segments[0]
	}
	for i := 1; i < len(a.segments); i++ {
		if s <= a.segments[i].EndStation {
			return &a.segments[i]
		}
	}
	return &a.segments[len(a.segments)-1]
}

// PositionAt returns the horizontal centerline position at station s
// (z = 0). Stations outside [0, L] extrapolate along the end tangents.
func (a *Alignment) PositionAt(s float64) geom.Vec3 {
	seg := a.segmentAt(s)
	t := s - seg.StartStation
	switch seg.Kind {
	case SegmentArc:
		if s < seg.StartStation || s > seg.EndStation {
			// Extrapolate along the tangent at the nearer arc end.
			if s < seg.StartStation {
				return seg.Start.Add(a.tangentOf(seg, seg.StartStation).Scale(t))
			}
			return seg.End.Add(a.tangentOf(seg, seg.EndStation).Scale(s - seg.EndStation))
		}
		ang0 := math.Atan2(seg.Start.Y-seg.Center.Y, seg.Start.X-seg.Center.X)
		ang := ang0 + seg.Deflection*(t/seg.Length())
		return geom.Vec3{
			X: seg.Center.X + seg.Radius*math.Cos(ang),
			Y: seg.Center.Y + seg.Radius*math.Sin(ang),
		}
	default:
		dir := seg.End.Sub(seg.Start).Normalized()
		return seg.Start.Add(dir.Scale(t))
	}
}

func (a *Alignment) tangentOf(seg *Segment, s float64) geom.Vec3 {
	switch seg.Kind {
	case SegmentArc:
		frac := (s - seg.StartStation) / seg.Length()
		frac = math.Max(0, math.Min(1, frac))
		ang0 := math.Atan2(seg.Start.Y-seg.Center.Y, seg.Start.X-seg.Center.X)
		ang := ang0 + seg.Deflection*frac
		// Derivative of the polar parametrisation, oriented by turn sign.
		sign := 1.0
		if seg.Deflection < 0 {
			sign = -1
		}
		return geom.Vec3{X: -math.Sin(ang) * sign, Y: math.Cos(ang) * sign}
	default:
		return seg.End.Sub(seg.Start).Normalized()
	}
}

// TangentAt returns the unit horizontal tangent at station s.
func (a *Alignment) TangentAt(s float64) geom.Vec3 {
	return a.tangentOf(a.segmentAt(s), s)
}

// ElevationAt returns the bed elevation at station s by walking the
// slope-break list. Out-of-range stations extrapolate on the end grades.
func (a *Alignment) ElevationAt(s float64) float64 {
	elev := a.startElevation
	slope := a.baseSlope
	prev := 0.0
	for _, br := range a.slopeBreaks {
		if s <= br.Station {
			break
		}
		elev -= slope * (br.Station - prev)
		prev = br.Station
		slope = br.Slope
	}
	return elev - slope*(s-prev)
}

// SlopeAt returns the longitudinal bed slope in effect at station s.
func (a *Alignment) SlopeAt(s float64) float64 {
	slope := a.baseSlope
	for _, br := range a.slopeBreaks {
		if s <= br.Station {
			break
		}
		slope = br.Slope
	}
	return slope
}

// Position3DAt returns the centerline point at station s with the bed
// elevation applied.
func (a *Alignment) Position3DAt(s float64) geom.Vec3 {
	p := a.PositionAt(s)
	p.Z = a.ElevationAt(s)
	return p
}

// Polyline samples the 3-D centerline every step metres, always
// including the final station.
func (a *Alignment) Polyline(step float64) []geom.Vec3 {
	if step <= 0 {
		step = a.length
	}
	n := int(math.Ceil(a.length/step)) + 1
	pts := make([]geom.Vec3, 0, n)
	for i := 0; i < n; i++ {
		s := math.Min(float64(i)*step, a.length)
		pts = append(pts, a.Position3DAt(s))
	}
	return pts
}
