package project

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadhy/cadhy/internal/section"
)

const sampleDoc = `
name: diversion canal
alignment:
  start_elevation: 100.0
  initial_slope: 0.001
  pis:
    - {x: 0, y: 0}
    - {x: 200, y: 0, radius: 50}
    - {x: 200, y: 200}
  slope_breaks:
    - {station: 150, slope: 0.004}
sections:
  - station: 0
    manning_n: 0.013
    material: concrete
    shape: {type: rectangular, width: 2.0, depth: 1.5}
  - station: 120
    manning_n: 0.014
    shape: {type: trapezoidal, bottom_width: 1.5, depth: 1.8, slope_left: 1.5, slope_right: 1.5}
transitions:
  - start: 100
    end: 120
    curve: warped
    loss_coefficient: 0.3
defaults:
  wall_thickness: 0.25
  floor_thickness: 0.3
design:
  discharge: 4.5
  min_freeboard: 0.3
  grain_size: 0.02
`

func TestReadSampleDocument(t *testing.T) {
	f, err := Read(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "diversion canal", f.Name)
	assert.Len(t, f.Alignment.PIs, 3)
	assert.Equal(t, 50.0, f.Alignment.PIs[1].Radius)
	require.Len(t, f.Sections, 2)
	assert.Equal(t, "rectangular", f.Sections[0].Shape.Type)
	require.Len(t, f.Transitions, 1)
	assert.Equal(t, 0.3, f.Transitions[0].LossCoefficient)
	assert.Equal(t, 4.5, f.Design.Discharge)
}

func TestBuildCorridor(t *testing.T) {
	f, err := Read(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	c, err := f.Build()
	require.NoError(t, err)

	assert.Greater(t, c.Length(), 300.0)
	require.Len(t, c.Sections, 2)
	assert.Equal(t, section.KindRectangular, c.Sections[0].Shape.Kind())
	assert.Equal(t, section.KindTrapezoidal, c.Sections[1].Shape.Kind())
	// Zero per-section thicknesses inherit the document defaults.
	assert.Equal(t, 0.25, c.Sections[0].WallThickness)
	assert.Equal(t, 0.3, c.Sections[0].FloorThickness)
	require.Len(t, c.Transitions, 1)
	assert.Equal(t, 0.3, c.Transitions[0].LossCoefficient)
}

func TestReadRejectsUnknownField(t *testing.T) {
	doc := strings.Replace(sampleDoc, "manning_n: 0.013", "mannning: 0.013", 1)
	_, err := Read(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestReadRejectsBadShapeType(t *testing.T) {
	doc := strings.Replace(sampleDoc, "type: rectangular", "type: oval", 1)
	_, err := Read(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown shape type")
}

func TestReadRejectsBadCurve(t *testing.T) {
	doc := strings.Replace(sampleDoc, "curve: warped", "curve: spiral", 1)
	_, err := Read(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown curve type")
}

func TestReadRejectsTooFewPIs(t *testing.T) {
	doc := `
name: stub
alignment:
  start_elevation: 10
  initial_slope: 0.001
  pis:
    - {x: 0, y: 0}
sections:
  - station: 0
    manning_n: 0.013
    shape: {type: rectangular, width: 1, depth: 1}
`
	_, err := Read(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 pis")
}

func TestShapeSpecVariants(t *testing.T) {
	cases := []struct {
		spec ShapeSpec
		kind section.Kind
	}{
		{ShapeSpec{Type: "rectangular", Width: 2, Depth: 1.5}, section.KindRectangular},
		{ShapeSpec{Type: "trapezoidal", BottomWidth: 1.5, Depth: 1.8, SlopeLeft: 1.5, SlopeRight: 1.5}, section.KindTrapezoidal},
		{ShapeSpec{Type: "triangular", Depth: 1, SlopeLeft: 2, SlopeRight: 2}, section.KindTriangular},
		{ShapeSpec{Type: "circular", Diameter: 1.2}, section.KindCircular},
		{ShapeSpec{Type: "parabolic", TopWidth: 3, Depth: 1}, section.KindParabolic},
		{ShapeSpec{Type: "ushape", Width: 2, Depth: 1.5, InvertRadius: 0.5}, section.KindUShape},
	}
	for _, tc := range cases {
		shape, err := tc.spec.Build()
		require.NoError(t, err, tc.spec.Type)
		assert.Equal(t, tc.kind, shape.Kind())
		assert.NoError(t, shape.Validate(), tc.spec.Type)
	}
}

func TestShapeSpecCompound(t *testing.T) {
	spec := ShapeSpec{
		Type: "compound", BottomWidth: 2, Depth: 2, SlopeLeft: 1, SlopeRight: 1,
		Berms: []BermSpec{
			{Side: "left", Width: 3, Elevation: 1.2, Slope: 2, ManningN: 0.03},
			{Side: "right", Width: 2, Elevation: 1.2, Slope: 2, ManningN: 0.035},
		},
	}
	shape, err := spec.Build()
	require.NoError(t, err)
	comp, ok := shape.(section.Compound)
	require.True(t, ok)
	require.Len(t, comp.Berms, 2)
	assert.Equal(t, section.BermLeft, comp.Berms[0].Side)
	assert.Equal(t, section.BermRight, comp.Berms[1].Side)
}

func TestShapeSpecRejectsBadBermSide(t *testing.T) {
	spec := ShapeSpec{
		Type: "compound", BottomWidth: 2, Depth: 2,
		Berms: []BermSpec{{Side: "centre", Width: 3, Elevation: 1, Slope: 2, ManningN: 0.03}},
	}
	_, err := spec.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "side must be left or right")
}
