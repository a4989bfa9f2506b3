package drawing

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadhy/cadhy/internal/geom"
	"github.com/cadhy/cadhy/internal/hydraulics"
	"github.com/cadhy/cadhy/internal/projection"
)

func sampleProfile() *hydraulics.Profile {
	p := &hydraulics.Profile{Discharge: 2.5}
	for i := 0; i <= 20; i++ {
		s := float64(i) * 25
		bed := 100 - 0.001*s
		p.Points = append(p.Points, hydraulics.ProfilePoint{
			Station:      s,
			BedElevation: bed,
			Depth:        1.0,
			WaterSurface: bed + 1.0,
			Velocity:     1.25,
			Froude:       0.4,
			Energy:       1.08,
			Regime:       hydraulics.RegimeSubcritical,
		})
	}
	return p
}

func sampleView() *projection.Result {
	bounds := geom.EmptyBox2()
	curves := []projection.Curve{
		projection.Line(geom.Vec2{X: -5, Y: -10}, geom.Vec2{X: 5, Y: -10}, projection.LineVisibleSharp),
		projection.Line(geom.Vec2{X: 5, Y: -10}, geom.Vec2{X: 5, Y: 10}, projection.LineVisibleSharp),
		projection.Line(geom.Vec2{X: -5, Y: 10}, geom.Vec2{X: 5, Y: 10}, projection.LineHiddenSharp),
	}
	hist := map[projection.CurveKind]int{}
	for _, c := range curves {
		bounds.Extend(c.A)
		bounds.Extend(c.B)
		hist[c.Kind]++
	}
	return &projection.Result{Name: "top", Curves: curves, Bounds: bounds, Histogram: hist}
}

func TestProfileASCII(t *testing.T) {
	out := ProfileASCII(sampleProfile(), 60, 10)
	assert.Contains(t, out, "water surface")
	assert.Greater(t, strings.Count(out, "\n"), 10)
}

func TestProfileASCIIListsJumps(t *testing.T) {
	p := sampleProfile()
	p.Jumps = []hydraulics.Jump{{
		Station: 120, UpstreamDepth: 0.3, ConjugateDepth: 0.9,
		UpstreamFroude: 2.1, Class: hydraulics.JumpWeak,
	}}
	out := ProfileASCII(p, 60, 10)
	assert.Contains(t, out, "hydraulic jump (weak) at station 120.0")
}

func TestRatingASCII(t *testing.T) {
	pts := []hydraulics.RatingPoint{
		{Depth: 0.5, Discharge: 0.8}, {Depth: 1.0, Discharge: 2.1}, {Depth: 1.5, Discharge: 3.9},
	}
	out := RatingASCII(pts, 40, 8)
	assert.Contains(t, out, "rating curve")
}

func TestSummaryBoxAligned(t *testing.T) {
	out := SummaryBox("CAPACITY CHECK", []string{"Q = 2.00 m³/s", "PASS"})
	assert.Contains(t, out, "CAPACITY CHECK")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), "box rows align: %q", l)
	}
}

func TestWriteViewSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteViewSVG(&buf, sampleView(), SheetOptions{}))
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "</svg>")
	assert.Contains(t, out, `stroke-dasharray="4,2"`, "hidden edges are dashed")
	assert.Contains(t, out, `stroke-width="0.50"`)
}

func TestWriteViewSVGEmpty(t *testing.T) {
	empty := &projection.Result{Name: "top", Bounds: geom.EmptyBox2()}
	var buf bytes.Buffer
	assert.Error(t, WriteViewSVG(&buf, empty, SheetOptions{}))
}

func TestWriteViewsPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteViewsPDF(&buf, []*projection.Result{sampleView()}, SheetOptions{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestExportProfilePlot(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "profile.png")
	require.NoError(t, ExportProfilePlot(sampleProfile(), name))
	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportRatingPlot(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "rating.svg")
	pts := []hydraulics.RatingPoint{
		{Depth: 0.5, Discharge: 0.8}, {Depth: 1.0, Discharge: 2.1}, {Depth: 1.5, Discharge: 3.9},
	}
	require.NoError(t, ExportRatingPlot(pts, name))
	_, err := os.Stat(name)
	require.NoError(t, err)
}
