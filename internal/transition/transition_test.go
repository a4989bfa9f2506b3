package transition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvertedInterval(t *testing.T) {
	_, err := New(10, 10, CurveLinear)
	require.Error(t, err)
	_, err = New(10, 5, CurveLinear)
	require.Error(t, err)
}

func TestFactorFamilies(t *testing.T) {
	cases := []struct {
		curve CurveType
		t     float64
		want  float64
	}{
		{CurveLinear, 0.25, 0.25},
		{CurveWarped, 0.5, 0.5},
		{CurveWarped, 0.25, 3*0.0625 - 2*0.015625},
		{CurveCylindrical, 0.5, math.Sqrt(0.75)},
		{CurveInlet, 0.5, 0.25},
		{CurveOutlet, 0.3, 0.09},
	}
	for _, c := range cases {
		tr, err := New(0, 1, c.curve)
		require.NoError(t, err)
		assert.InDelta(t, c.want, tr.Factor(c.t), 1e-12, "curve %s at t=%g", c.curve, c.t)
	}
}

func TestFactorClampsOutsideInterval(t *testing.T) {
	tr, _ := New(10, 20, CurveWarped)
	assert.Equal(t, 0.0, tr.Factor(5))
	assert.Equal(t, 1.0, tr.Factor(25))
	assert.True(t, tr.ContainsStation(15))
	assert.False(t, tr.ContainsStation(20.1))
}

func TestElevationFollowsDrop(t *testing.T) {
	tr, _ := New(0, 10, CurveLinear)
	tr.Drop = 2
	assert.InDelta(t, -1.0, tr.ElevationAt(5), 1e-12)
	assert.InDelta(t, -2.0, tr.ElevationAt(10), 1e-12)
	assert.InDelta(t, 0.2, tr.Slope(), 1e-12)
	assert.True(t, tr.NeedsBasin())
}

func TestBaffleLayoutDistribution(t *testing.T) {
	tr, _ := New(0, 10, CurveLinear)
	tr.Drop = 1 // slope 0.1 > 0.05
	tr.ChannelWidth = 3
	tr.BaffleRows = 3

	blocks := tr.BaffleLayout(0.4)
	require.NotEmpty(t, blocks)

	// Rows sit between 0.2L and 0.8L.
	for _, b := range blocks {
		assert.GreaterOrEqual(t, b.Station, 2.0-1e-12)
		assert.LessOrEqual(t, b.Station, 8.0+1e-12)
		assert.InDelta(t, 0.3, b.Width, 1e-12)
		assert.InDelta(t, 0.4, b.Height, 1e-12)
		assert.InDelta(t, 0.3, b.Thickness, 1e-12)
		// Blocks stay inside the channel width.
		assert.GreaterOrEqual(t, b.OffsetX-b.Width/2, -1.5-1e-12)
		assert.LessOrEqual(t, b.OffsetX+b.Width/2, 1.5+1e-12)
	}

	// First and last rows at 0.2L and 0.8L exactly.
	assert.InDelta(t, 2.0, blocks[0].Station, 1e-12)
	assert.InDelta(t, 8.0, blocks[len(blocks)-1].Station, 1e-12)
}

func TestBaffleLayoutSkipsMildChute(t *testing.T) {
	tr, _ := New(0, 100, CurveLinear)
	tr.Drop = 1 // slope 0.01 < 0.05
	tr.ChannelWidth = 3
	tr.BaffleRows = 2
	assert.Nil(t, tr.BaffleLayout(0.4))
}
