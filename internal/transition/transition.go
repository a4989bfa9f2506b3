// Package transition describes the geometric interpolation between two
// channel sections over a station interval, with optional drop
// structures: baffle rows and a stilling basin. The descriptor holds
// geometry only; the corridor mesher and the hydraulics solver consume
// it.
package transition

import (
	"fmt"
	"math"
)

// CurveType selects the interpolation factor family f(t), t in [0, 1].
type CurveType int

const (
	// CurveLinear: f = t
	CurveLinear CurveType = iota
	// CurveWarped: f = 3t² − 2t³ (smoothstep, zero end slopes)
	CurveWarped
	// CurveCylindrical: f = √(1 − (1−t)²) (quarter ellipse)
	CurveCylindrical
	// CurveInlet: f = t² (parabolic acceleration)
	CurveInlet
	// CurveOutlet: f = t² (parabolic, mirrored use downstream)
	CurveOutlet
)

// String returns the lowercase curve name used in project files.
func (c CurveType) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveWarped:
		return "warped"
	case CurveCylindrical:
		return "cylindrical"
	case CurveInlet:
		return "inlet"
	case CurveOutlet:
		return "outlet"
	}
	return "unknown"
}

// ParseCurveType maps a project-file name to a CurveType.
func ParseCurveType(s string) (CurveType, error) {
	switch s {
	case "", "linear":
		return CurveLinear, nil
	case "warped":
		return CurveWarped, nil
	case "cylindrical":
		return CurveCylindrical, nil
	case "inlet":
		return CurveInlet, nil
	case "outlet":
		return CurveOutlet, nil
	}
	return CurveLinear, fmt.Errorf("transition: unknown curve type %q", s)
}

// BaffleBlock is one energy-dissipator block on the transition floor.
// Dimensions follow the USBR basin proportions: width and thickness
// 0.75·y₁, height y₁, where y₁ is the incoming supercritical depth.
type BaffleBlock struct {
	Station   float64 // m along the corridor
	OffsetX   float64 // m transverse from the centerline
	Width     float64 // m
	Height    float64 // m
	Thickness float64 // m (along flow)
}

// StillingBasin holds the dimensions of a USBR-style stilling basin
// appended at the transition outlet.
type StillingBasin struct {
	Length     float64 `json:"length" yaml:"length"`           // m
	Depth      float64 `json:"depth" yaml:"depth"`             // m below the outlet invert
	EndSillH   float64 `json:"end_sill_h" yaml:"end_sill_h"`   // m
	ChuteSlope float64 `json:"chute_slope" yaml:"chute_slope"` // m/m
}

// Transition interpolates the channel geometry between its start and end
// stations, optionally dropping the invert and carrying dissipator
// attachments. Overlap with other transitions is checked by the owning
// corridor.
type Transition struct {
	StartStation float64   `json:"start_station" yaml:"start_station"`
	EndStation   float64   `json:"end_station" yaml:"end_station"`
	Curve        CurveType `json:"-" yaml:"-"`

	LossCoefficient float64 `json:"loss_coefficient" yaml:"loss_coefficient"` // K in hL = K|V₂²−V₁²|/2g
	Drop            float64 `json:"drop" yaml:"drop"`                         // m, positive lowers the invert downstream
	ChannelWidth    float64 `json:"channel_width" yaml:"channel_width"`       // m, reference width for dissipators

	BaffleRows int            `json:"baffle_rows,omitempty" yaml:"baffle_rows,omitempty"`
	Basin      *StillingBasin `json:"basin,omitempty" yaml:"basin,omitempty"`
}

// minBaffleSlope is the chute slope under which baffle rows are not
// generated (USBR heuristic: mild chutes dissipate without blocks).
const minBaffleSlope = 0.05

// New validates the interval and returns the descriptor.
func New(start, end float64, curve CurveType) (*Transition, error) {
	if end <= start {
		return nil, fmt.Errorf("transition: end station %.3f must exceed start %.3f", end, start)
	}
	return &Transition{StartStation: start, EndStation: end, Curve: curve}, nil
}

// Length returns the transition interval length (m).
func (tr *Transition) Length() float64 { return tr.EndStation - tr.StartStation }

// ContainsStation reports whether s lies inside the transition interval.
func (tr *Transition) ContainsStation(s float64) bool {
	return s >= tr.StartStation && s <= tr.EndStation
}

// Factor returns the interpolation factor f at station s, clamped to
// [0, 1] outside the interval.
func (tr *Transition) Factor(s float64) float64 {
	t := (s - tr.StartStation) / tr.Length()
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	switch tr.Curve {
	case CurveWarped:
		return t * t * (3 - 2*t)
	case CurveCylindrical:
		return math.Sqrt(1 - (1-t)*(1-t))
	case CurveInlet, CurveOutlet:
		return t * t
	default:
		return t
	}
}

// ElevationAt returns the invert elevation change at station s relative
// to the transition start: −Drop·f(t).
func (tr *Transition) ElevationAt(s float64) float64 {
	return -tr.Drop * tr.Factor(s)
}

// Slope returns the mean invert slope through the transition (m/m,
// positive descending).
func (tr *Transition) Slope() float64 {
	return tr.Drop / tr.Length()
}

// NeedsBasin reports whether the drop is steep enough that the
// transition should carry a stilling basin (slope above 0.1 with a
// lowered invert).
func (tr *Transition) NeedsBasin() bool {
	return tr.Drop > 0 && tr.Slope() > 0.1
}

// BaffleLayout distributes BaffleRows rows of blocks uniformly between
// 0.2L and 0.8L, with alternate rows staggered by half a block. y1 is
// the incoming supercritical depth that scales the USBR block
// dimensions. Returns nil when the chute is too mild or no rows are
// requested.
func (tr *Transition) BaffleLayout(y1 float64) []BaffleBlock {
	if tr.BaffleRows <= 0 || y1 <= 0 || tr.Slope() <= minBaffleSlope {
		return nil
	}
	w := tr.ChannelWidth
	if w <= 0 {
		return nil
	}
	bw := 0.75 * y1
	var blocks []BaffleBlock

	l := tr.Length()
	for row := 0; row < tr.BaffleRows; row++ {
		frac := 0.2
		if tr.BaffleRows > 1 {
			frac = 0.2 + 0.6*float64(row)/float64(tr.BaffleRows-1)
		}
		s := tr.StartStation + frac*l

		// Blocks on a pitch of 2·bw; odd rows staggered by half a pitch.
		offset := 0.0
		if row%2 == 1 {
			offset = bw
		}
		nAcross := int(w / (2 * bw))
		if nAcross < 1 {
			nAcross = 1
		}
		span := float64(nAcross-1) * 2 * bw
		for i := 0; i < nAcross; i++ {
			x := -span/2 + float64(i)*2*bw + offset
			if x-bw/2 < -w/2 || x+bw/2 > w/2 {
				continue
			}
			blocks = append(blocks, BaffleBlock{
				Station:   s,
				OffsetX:   x,
				Width:     bw,
				Height:    y1,
				Thickness: bw,
			})
		}
	}
	return blocks
}
