package drawing

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cadhy/cadhy/internal/hydraulics"
)

// ExportProfilePlot writes the longitudinal profile (bed, water
// surface, energy line) to an image file. The format follows the file
// extension; png, svg and pdf are supported by the plot backends.
func ExportProfilePlot(prof *hydraulics.Profile, filename string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Water Surface Profile, Q = %.2f m³/s", prof.Discharge)
	p.X.Label.Text = "Station (m)"
	p.Y.Label.Text = "Elevation (m)"

	bed := make(plotter.XYs, len(prof.Points))
	surface := make(plotter.XYs, len(prof.Points))
	energy := make(plotter.XYs, len(prof.Points))
	for i, pt := range prof.Points {
		bed[i] = plotter.XY{X: pt.Station, Y: pt.BedElevation}
		surface[i] = plotter.XY{X: pt.Station, Y: pt.WaterSurface}
		energy[i] = plotter.XY{X: pt.Station, Y: pt.BedElevation + pt.Energy}
	}

	bedLine, err := plotter.NewLine(bed)
	if err != nil {
		return err
	}
	bedLine.LineStyle.Width = vg.Points(2)
	bedLine.LineStyle.Color = color.Black

	surfaceLine, err := plotter.NewLine(surface)
	if err != nil {
		return err
	}
	surfaceLine.LineStyle.Width = vg.Points(1.5)
	surfaceLine.LineStyle.Color = color.RGBA{R: 30, G: 100, B: 220, A: 255}

	energyLine, err := plotter.NewLine(energy)
	if err != nil {
		return err
	}
	energyLine.LineStyle.Width = vg.Points(1)
	energyLine.LineStyle.Color = color.RGBA{R: 0, G: 140, B: 60, A: 255}
	energyLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(bedLine, surfaceLine, energyLine)
	p.Legend.Add("bed", bedLine)
	p.Legend.Add("water surface", surfaceLine)
	p.Legend.Add("energy line", energyLine)
	p.Legend.Top = true

	// Mark captured jumps on the surface.
	if len(prof.Jumps) > 0 {
		marks := make(plotter.XYs, 0, len(prof.Jumps))
		for _, j := range prof.Jumps {
			marks = append(marks, plotter.XY{X: j.Station, Y: jumpSurface(prof, j.Station)})
		}
		scatter, err := plotter.NewScatter(marks)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 220, G: 30, B: 30, A: 255}
		scatter.GlyphStyle.Radius = vg.Points(4)
		p.Add(scatter)
		p.Legend.Add("hydraulic jump", scatter)
	}

	return savePlot(p, 10*vg.Inch, 5*vg.Inch, filename)
}

func jumpSurface(prof *hydraulics.Profile, station float64) float64 {
	for i := range prof.Points {
		if prof.Points[i].Station >= station {
			return prof.Points[i].WaterSurface
		}
	}
	return prof.Points[len(prof.Points)-1].WaterSurface
}

// ExportRatingPlot writes a stage-discharge rating curve to an image
// file.
func ExportRatingPlot(pts []hydraulics.RatingPoint, filename string) error {
	p := plot.New()
	p.Title.Text = "Rating Curve"
	p.X.Label.Text = "Discharge (m³/s)"
	p.Y.Label.Text = "Depth (m)"

	xy := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xy[i] = plotter.XY{X: pt.Discharge, Y: pt.Depth}
	}
	line, err := plotter.NewLine(xy)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = color.RGBA{R: 30, G: 100, B: 220, A: 255}
	p.Add(line)

	return savePlot(p, 6*vg.Inch, 6*vg.Inch, filename)
}

func savePlot(p *plot.Plot, w, h vg.Length, filename string) error {
	if dir := filepath.Dir(filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return p.Save(w, h, filename)
	default:
		return p.Save(w, h, filename+".png")
	}
}
