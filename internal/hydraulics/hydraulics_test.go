package hydraulics

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadhy/cadhy/internal/alignment"
	"github.com/cadhy/cadhy/internal/corridor"
	"github.com/cadhy/cadhy/internal/geom"
	"github.com/cadhy/cadhy/internal/section"
)

var benchRect = section.Rectangular{Width: 2, Depth: 1.5}

// Textbook uniform flow: 2 m wide rectangle, S = 0.001, n = 0.015,
// y = 1 m gives V ≈ 1.33 m/s, Q ≈ 2.66 m³/s, Fr ≈ 0.42.
func TestManningFlowRectangular(t *testing.T) {
	flow, err := ManningFlow(benchRect, 0.015, 0.001, 1.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.328, flow.Velocity, 0.005)
	assert.InDelta(t, 2.656, flow.Discharge, 0.01)
	assert.InDelta(t, 0.424, flow.Froude, 0.005)
	assert.Equal(t, RegimeSubcritical, flow.Regime)
	assert.InDelta(t, 1.0+flow.Velocity*flow.Velocity/(2*Gravity), flow.SpecificEnergy, 1e-12)
}

func TestManningFlowRejectsBadInput(t *testing.T) {
	_, err := ManningFlow(benchRect, 0, 0.001, 1)
	assert.Error(t, err)
	_, err = ManningFlow(benchRect, 0.015, -0.001, 1)
	assert.Error(t, err)
	_, err = ManningFlow(benchRect, 0.015, 0.001, 0)
	assert.Error(t, err)
}

func TestNormalDepthRoundTrip(t *testing.T) {
	for _, shape := range []section.Shape{
		benchRect,
		section.Trapezoidal{BottomWidth: 1.5, Depth: 2, SlopeLeft: 1.5, SlopeRight: 1.5},
		section.Circular{Diameter: 1.2},
	} {
		flow, err := ManningFlow(shape, 0.014, 0.002, 0.6)
		require.NoError(t, err)
		yn, err := NormalDepth(shape, 0.014, 0.002, flow.Discharge)
		require.NoError(t, err)
		assert.InDelta(t, 0.6, yn, 1e-6, "shape %s", shape.Kind())
	}
}

func TestNormalDepthRejectsOverfullPipe(t *testing.T) {
	pipe := section.Circular{Diameter: 0.5}
	_, err := NormalDepth(pipe, 0.013, 0.001, 50)
	assert.Error(t, err, "discharge beyond full-pipe capacity has no open-channel normal depth")
}

func TestCriticalDepthFroudeUnity(t *testing.T) {
	for _, shape := range []section.Shape{
		benchRect,
		section.Trapezoidal{BottomWidth: 1.5, Depth: 2, SlopeLeft: 1.5, SlopeRight: 1.5},
		section.Parabolic{TopWidth: 3, Depth: 1.5},
	} {
		yc, err := CriticalDepth(shape, 3.0)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, Froude(shape, 3.0, yc), 1e-3, "shape %s", shape.Kind())
	}
}

// Rectangular critical depth has the closed form yc = (q²/g)^(1/3).
func TestCriticalDepthRectangularClosedForm(t *testing.T) {
	q := 3.0
	yc, err := CriticalDepth(benchRect, q)
	require.NoError(t, err)
	unit := q / benchRect.Width
	assert.InDelta(t, math.Cbrt(unit*unit/Gravity), yc, 1e-6)
}

// Mild slope puts normal depth above critical, steep slope below.
func TestSlopeClassification(t *testing.T) {
	q := 3.0
	yc, err := CriticalDepth(benchRect, q)
	require.NoError(t, err)

	ynMild, err := NormalDepth(benchRect, 0.015, 0.0005, q)
	require.NoError(t, err)
	assert.Greater(t, ynMild, yc, "S=0.0005 is a mild reach")
	assert.Less(t, Froude(benchRect, q, ynMild), 1.0)

	ynSteep, err := NormalDepth(benchRect, 0.015, 0.01, q)
	require.NoError(t, err)
	assert.Less(t, ynSteep, yc, "S=0.01 is a steep reach")
	assert.Greater(t, Froude(benchRect, q, ynSteep), 1.0)
}

func TestClassifyFroudeBands(t *testing.T) {
	assert.Equal(t, RegimeSubcritical, ClassifyFroude(0.94))
	assert.Equal(t, RegimeCritical, ClassifyFroude(0.95))
	assert.Equal(t, RegimeCritical, ClassifyFroude(1.05))
	assert.Equal(t, RegimeSupercritical, ClassifyFroude(1.06))
}

func TestSpecificForceRectangular(t *testing.T) {
	// M = Q²/(gA) + A·y/2 for a rectangle.
	q, y := 2.5, 1.0
	a := benchRect.Width * y
	want := q*q/(Gravity*a) + a*y/2
	assert.InDelta(t, want, SpecificForce(benchRect, q, y), 1e-4)
}

// Rectangular conjugate depths obey y₂/y₁ = (√(1+8Fr₁²) − 1)/2.
func TestConjugateDepthRectangular(t *testing.T) {
	q, y1 := 3.0, 0.25
	fr1 := Froude(benchRect, q, y1)
	require.Greater(t, fr1, 1.0)

	y2, err := ConjugateDepth(benchRect, q, y1)
	require.NoError(t, err)
	want := y1 / 2 * (math.Sqrt(1+8*fr1*fr1) - 1)
	assert.InDelta(t, want, y2, 0.01*want)
}

func TestClassifyJumpBands(t *testing.T) {
	assert.Equal(t, JumpUndular, ClassifyJump(1.3))
	assert.Equal(t, JumpWeak, ClassifyJump(2.0))
	assert.Equal(t, JumpOscillating, ClassifyJump(3.0))
	assert.Equal(t, JumpSteady, ClassifyJump(6.0))
	assert.Equal(t, JumpStrong, ClassifyJump(10.0))
}

func rectChannel(t *testing.T, length, slope float64) *corridor.Corridor {
	t.Helper()
	a, err := alignment.New([]alignment.PI{
		{Position: geom.Vec3{}},
		{Position: geom.Vec3{X: length}},
	}, 100, slope, nil)
	require.NoError(t, err)
	c, err := corridor.New(a, []corridor.StationSection{
		{Station: 0, Shape: benchRect, ManningN: 0.015},
	}, nil, 0.2, 0.25)
	require.NoError(t, err)
	return c
}

// A prismatic mild reach under its own normal-depth control must hold a
// flat profile at yn over the full 500 m.
func TestSteadyProfileUniformFlow(t *testing.T) {
	c := rectChannel(t, 500, 0.001)
	q := 2.656
	yn, err := NormalDepth(benchRect, 0.015, 0.001, q)
	require.NoError(t, err)

	p, err := SteadyProfile(context.Background(), c, q, ProfileOptions{Resolution: 5})
	require.NoError(t, err)
	require.Len(t, p.Points, 101)
	for _, pt := range p.Points {
		assert.InDelta(t, yn, pt.Depth, 0.01, "station %.0f", pt.Station)
		assert.Equal(t, RegimeSubcritical, pt.Regime)
	}
	assert.Empty(t, p.Jumps)
}

// An M1 backwater from a raised downstream stage decays toward normal
// depth going upstream.
func TestSteadyProfileBackwaterDecays(t *testing.T) {
	c := rectChannel(t, 1000, 0.001)
	q := 2.0
	yn, err := NormalDepth(benchRect, 0.015, 0.001, q)
	require.NoError(t, err)

	p, err := SteadyProfile(context.Background(), c, q, ProfileOptions{Resolution: 5, ControlDepth: yn + 0.4})
	require.NoError(t, err)

	last := p.Points[len(p.Points)-1]
	assert.InDelta(t, yn+0.4, last.Depth, 1e-9, "downstream boundary pinned")
	first := p.Points[0]
	assert.Less(t, first.Depth, last.Depth, "backwater must decay upstream")
	assert.InDelta(t, yn, first.Depth, 0.05, "1 km is enough to approach normal depth")

	// Water surface monotone along the backwater curve.
	for i := 1; i < len(p.Points); i++ {
		assert.GreaterOrEqual(t, p.Points[i].Depth+1e-9, p.Points[i-1].Depth)
	}
}

// steepToMildChannel drops at 2% for the first 100 m and at 0.05%
// beyond, a classic jump-forming reach. With benchRect and n = 0.013,
// Q = 3 m³/s runs at yn = 0.343 m (Fr = 2.39) on the steep leg and
// yn = 1.28 m on the mild leg.
func steepToMildChannel(t *testing.T, length float64) *corridor.Corridor {
	t.Helper()
	a, err := alignment.New([]alignment.PI{
		{Position: geom.Vec3{}},
		{Position: geom.Vec3{X: length}},
	}, 100, 0.02, []alignment.SlopeBreak{{Station: 100, Slope: 0.0005}})
	require.NoError(t, err)
	c, err := corridor.New(a, []corridor.StationSection{
		{Station: 0, Shape: benchRect, ManningN: 0.013},
	}, nil, 0.2, 0.25)
	require.NoError(t, err)
	return c
}

// A steep reach discharging onto a mild reach forms a jump where the
// specific-force curves of the two branches cross. The reported
// upstream state must be the physical supercritical stream, not a
// critical-depth clamp.
func TestSteadyProfileSteepToMildJump(t *testing.T) {
	c := steepToMildChannel(t, 200)
	prof, err := SteadyProfile(context.Background(), c, 3.0, ProfileOptions{})
	require.NoError(t, err)
	require.Len(t, prof.Jumps, 1)

	j := prof.Jumps[0]
	assert.InDelta(t, 0.343, j.UpstreamDepth, 0.01)
	assert.InDelta(t, 2.39, j.UpstreamFroude, 0.06)
	assert.Equal(t, JumpWeak, j.Class)
	// Belanger for Fr₁ = 2.39: y₂ = y₁/2·(√(1+8Fr₁²) − 1) ≈ 1.00 m.
	assert.InDelta(t, 1.00, j.ConjugateDepth, 0.05)
	assert.Greater(t, j.EnergyLoss, 0.15)
	assert.Greater(t, j.Station, 75.0)
	assert.Less(t, j.Station, 100.0)

	// Upstream of the jump the profile carries the supercritical stream
	// at its normal depth.
	assert.Equal(t, RegimeSupercritical, prof.Points[0].Regime)
	assert.InDelta(t, 0.343, prof.Points[50].Depth, 0.01)
	// Downstream of the jump the backwater rides toward the mild-reach
	// normal depth.
	assert.Equal(t, RegimeSubcritical, prof.Points[len(prof.Points)-1].Regime)
	assert.InDelta(t, 1.28, prof.Points[len(prof.Points)-1].Depth, 0.02)
}

func TestSteadyProfileCancellation(t *testing.T) {
	c := rectChannel(t, 500, 0.001)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SteadyProfile(ctx, c, 2.0, ProfileOptions{Resolution: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckCapacity(t *testing.T) {
	rep, err := CheckCapacity(benchRect, 0.015, 0.001, 2.0, 0.3)
	require.NoError(t, err)
	assert.True(t, rep.Pass)
	assert.True(t, rep.FreeboardOK)
	assert.True(t, rep.VelocityOK)
	assert.InDelta(t, 0.81, rep.NormalDepth, 0.02)
	assert.Greater(t, rep.Freeboard, 0.6)
	assert.Equal(t, RegimeSubcritical, rep.Regime)

	// A near-full discharge swallows the freeboard margin.
	rep, err = CheckCapacity(benchRect, 0.015, 0.001, 4.2, 0.3)
	require.NoError(t, err)
	assert.False(t, rep.FreeboardOK)
	assert.False(t, rep.Pass)

	// Beyond full-section capacity there is no normal depth at all.
	_, err = CheckCapacity(benchRect, 0.015, 0.001, 6.0, 0.3)
	assert.Error(t, err)
}

func TestRatingCurveMonotone(t *testing.T) {
	pts, err := RatingCurve(benchRect, 0.015, 0.001, 20)
	require.NoError(t, err)
	require.Len(t, pts, 20)
	for i := 1; i < len(pts); i++ {
		assert.Greater(t, pts[i].Discharge, pts[i-1].Discharge)
		assert.Greater(t, pts[i].Depth, pts[i-1].Depth)
	}
	assert.InDelta(t, 1.5, pts[19].Depth, 1e-12)
}

func TestCheckShields(t *testing.T) {
	// Coarse gravel on a mild slope holds; fine sand washes out.
	rep, err := CheckShields(benchRect, 0.001, 1.0, 0.05)
	require.NoError(t, err)
	assert.True(t, rep.Stable)
	assert.InDelta(t, 4.90, rep.BedShear, 0.01)

	rep, err = CheckShields(benchRect, 0.001, 1.0, 0.0002)
	require.NoError(t, err)
	assert.False(t, rep.Stable)
}

func TestSimulateUnsteadyRejectsBadBoundaries(t *testing.T) {
	c := rectChannel(t, 200, 0.001)
	ctx := context.Background()

	_, err := SimulateUnsteady(ctx, c, UpstreamBC{}, DownstreamBC{Kind: DownstreamNormal}, 100, UnsteadyOptions{})
	assert.Error(t, err, "missing upstream closure")

	both := UpstreamBC{Discharge: ConstantHydrograph(2), Stage: ConstantHydrograph(1)}
	_, err = SimulateUnsteady(ctx, c, both, DownstreamBC{Kind: DownstreamNormal}, 100, UnsteadyOptions{})
	assert.Error(t, err, "over-specified upstream boundary")

	up := UpstreamBC{Discharge: ConstantHydrograph(2)}
	_, err = SimulateUnsteady(ctx, c, up, DownstreamBC{Kind: DownstreamStage}, 100, UnsteadyOptions{})
	assert.Error(t, err, "stage closure without a hydrograph")

	_, err = SimulateUnsteady(ctx, c, up, DownstreamBC{Kind: DownstreamNormal, Stage: ConstantHydrograph(1)}, 100, UnsteadyOptions{})
	assert.Error(t, err, "stray stage hydrograph on a normal-depth closure")
}

// Constant inflow on a prismatic reach seeded at normal depth must hold
// the steady state: discharge uniform and depths at yn everywhere.
func TestSimulateUnsteadyHoldsSteadyState(t *testing.T) {
	c := rectChannel(t, 200, 0.001)
	q := 2.5
	yn, err := NormalDepth(benchRect, 0.015, 0.001, q)
	require.NoError(t, err)

	res, err := SimulateUnsteady(context.Background(), c,
		UpstreamBC{Discharge: ConstantHydrograph(q)},
		DownstreamBC{Kind: DownstreamNormal},
		300, UnsteadyOptions{TimeStep: 30, Resolution: 20})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(res.Checkpoints), 2)

	final := res.Checkpoints[len(res.Checkpoints)-1]
	assert.InDelta(t, 300.0, final.Time, 1e-9)
	for i := range final.Stations {
		assert.InDelta(t, q, final.Flow[i], 0.01, "station %.0f", final.Stations[i])
		y := DepthFromArea(benchRect, final.Area[i])
		assert.InDelta(t, yn, y, 0.01, "station %.0f", final.Stations[i])
	}

	states := FlowStates(c, final)
	require.Len(t, states, len(final.Stations))
	assert.Equal(t, RegimeSubcritical, states[0].Regime)
}

func TestSimulateUnsteadySnapshotCadence(t *testing.T) {
	c := rectChannel(t, 200, 0.001)
	res, err := SimulateUnsteady(context.Background(), c,
		UpstreamBC{Discharge: ConstantHydrograph(2)},
		DownstreamBC{Kind: DownstreamNormal},
		300, UnsteadyOptions{TimeStep: 30, Resolution: 20, SnapshotEvery: 100})
	require.NoError(t, err)
	// Snapshots land on the first step boundary at or after each cadence
	// mark: t = 0, 120, 210, and the final state at 300.
	require.GreaterOrEqual(t, len(res.Checkpoints), 4)
	assert.Equal(t, 0.0, res.Checkpoints[0].Time)
	last := res.Checkpoints[len(res.Checkpoints)-1]
	assert.InDelta(t, 300.0, last.Time, 1e-9)
	for i := 1; i < len(res.Checkpoints); i++ {
		assert.Greater(t, res.Checkpoints[i].Time, res.Checkpoints[i-1].Time)
	}
}

// A steep reach breaking to mild under a normal-depth outlet holds a
// standing front. The solver must stay nonsingular through the
// transcritical cells and report the front on the result.
func TestSimulateUnsteadyTranscriticalJumpCapture(t *testing.T) {
	c := steepToMildChannel(t, 200)

	res, err := SimulateUnsteady(context.Background(), c,
		UpstreamBC{Discharge: ConstantHydrograph(3.0)},
		DownstreamBC{Kind: DownstreamNormal},
		600, UnsteadyOptions{TimeStep: 10, Resolution: 5})
	require.NoError(t, err)
	require.NotEmpty(t, res.Jumps)

	j := res.Jumps[0]
	assert.Greater(t, j.Station, 50.0)
	assert.Less(t, j.Station, 150.0)
	assert.Greater(t, j.UpstreamFroude, 1.5)
	assert.Greater(t, j.ConjugateDepth, j.UpstreamDepth)

	final := res.Checkpoints[len(res.Checkpoints)-1]
	states := FlowStates(c, final)
	require.GreaterOrEqual(t, len(states), 4)
	assert.Equal(t, RegimeSupercritical, states[2].Regime)
	assert.Equal(t, RegimeSubcritical, states[len(states)-2].Regime)
}

func TestSimulateUnsteadyCancellation(t *testing.T) {
	c := rectChannel(t, 200, 0.001)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := SimulateUnsteady(ctx, c,
		UpstreamBC{Discharge: ConstantHydrograph(2)},
		DownstreamBC{Kind: DownstreamNormal},
		300, UnsteadyOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
