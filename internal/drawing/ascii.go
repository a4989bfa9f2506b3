// Package drawing renders pipeline results for people: terminal
// profiles, plot exports, and SVG/PDF drawing sheets for projected
// views and section cuts.
package drawing

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/cadhy/cadhy/internal/hydraulics"
)

// ProfileASCII renders the longitudinal water surface profile as a
// terminal graph: bed and water surface elevation over station.
func ProfileASCII(p *hydraulics.Profile, width, height int) string {
	if len(p.Points) == 0 {
		return ""
	}
	if width <= 0 {
		width = 72
	}
	if height <= 0 {
		height = 14
	}
	bed := make([]float64, len(p.Points))
	surface := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		bed[i] = pt.BedElevation
		surface[i] = pt.WaterSurface
	}
	caption := fmt.Sprintf("water surface / bed elevation (m), Q = %.2f m³/s, station 0 – %.0f m",
		p.Discharge, p.Points[len(p.Points)-1].Station)
	graph := asciigraph.PlotMany([][]float64{bed, surface},
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(graph)
	sb.WriteString("\n")
	for _, j := range p.Jumps {
		sb.WriteString(fmt.Sprintf("\n  hydraulic jump (%s) at station %.1f m: y₁ = %.3f m → y₂ = %.3f m, Fr₁ = %.2f\n",
			j.Class, j.Station, j.UpstreamDepth, j.ConjugateDepth, j.UpstreamFroude))
	}
	return sb.String()
}

// RatingASCII renders a stage-discharge rating curve as a terminal
// graph, discharge over the depth sweep.
func RatingASCII(pts []hydraulics.RatingPoint, width, height int) string {
	if len(pts) == 0 {
		return ""
	}
	if width <= 0 {
		width = 60
	}
	if height <= 0 {
		height = 12
	}
	q := make([]float64, len(pts))
	for i, pt := range pts {
		q[i] = pt.Discharge
	}
	caption := fmt.Sprintf("rating curve: Q (m³/s) for depths up to %.2f m", pts[len(pts)-1].Depth)
	return asciigraph.Plot(q,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)
}

// SummaryBox frames a titled list of result lines in a box for the CLI
// reports.
func SummaryBox(title string, lines []string) string {
	maxLen := len(title)
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}
	maxLen += 4

	var sb strings.Builder
	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-4, title))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-4, line))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))
	return sb.String()
}
