package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cadhy/cadhy/internal/drawing"
	"github.com/cadhy/cadhy/internal/hydraulics"
	"github.com/cadhy/cadhy/internal/project"
)

var (
	capFile        string
	capStation     float64
	capDischarge   float64
	capFreeboard   float64
	capGrainSize   float64
	capRatingSteps int
	capShowDiagram bool
	capExportFile  string
)

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Check design capacity, freeboard and bed stability",
	Long: `Check the section active at a station against the design discharge:
normal and critical depth, the design velocity band, the freeboard
margin, and (when a grain size is given) Shields bed stability.

Examples:
  cadhy capacity --file canal.yaml
  cadhy capacity -f canal.yaml --station 150 --discharge 4.5
  cadhy capacity -f canal.yaml --rating 20 --diagram`,
	Run: runCapacity,
}

func init() {
	rootCmd.AddCommand(capacityCmd)

	capacityCmd.Flags().StringVarP(&capFile, "file", "f", "", "Path to project YAML file [required]")
	capacityCmd.MarkFlagRequired("file")
	capacityCmd.Flags().Float64Var(&capStation, "station", 0, "Station to check in m")
	capacityCmd.Flags().Float64VarP(&capDischarge, "discharge", "q", 0, "Design discharge in m³/s (default: project design discharge)")
	capacityCmd.Flags().Float64Var(&capFreeboard, "freeboard", 0, "Required freeboard in m (default: project design value)")
	capacityCmd.Flags().Float64Var(&capGrainSize, "grain-size", 0, "Bed material d₅₀ in m (default: project design value)")

	capacityCmd.Flags().IntVar(&capRatingSteps, "rating", 0, "Tabulate a rating curve with this many steps")
	capacityCmd.Flags().BoolVar(&capShowDiagram, "diagram", false, "Show ASCII rating diagram (with --rating)")
	capacityCmd.Flags().StringVarP(&capExportFile, "output", "o", "", "Export rating plot to file (png, svg, pdf)")
}

func runCapacity(cmd *cobra.Command, args []string) {
	pf, err := project.Load(capFile)
	if err != nil {
		fmt.Printf("Error loading project: %v\n", err)
		return
	}
	c, err := pf.Build()
	if err != nil {
		fmt.Printf("Error building corridor: %v\n", err)
		return
	}

	q := capDischarge
	if q <= 0 {
		q = pf.Design.Discharge
	}
	if q <= 0 {
		fmt.Println("Error: no discharge given and the project carries no design discharge")
		return
	}
	freeboard := capFreeboard
	if freeboard <= 0 {
		freeboard = pf.Design.MinFreeboard
	}
	d50 := capGrainSize
	if d50 <= 0 {
		d50 = pf.Design.GrainSize
	}

	shape := c.ShapeAt(capStation)
	n := c.ManningAt(capStation)
	slope := c.BedSlopeAt(capStation)

	rep, err := hydraulics.CheckCapacity(shape, n, slope, q, freeboard)
	if err != nil {
		fmt.Printf("Error checking capacity: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     CHANNEL CAPACITY CHECK")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println("SECTION:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Station:\t%.1f m\n", capStation)
	fmt.Fprintf(w, "  Shape:\t%s\n", shape.Kind())
	fmt.Fprintf(w, "  Manning n:\t%.4f\n", n)
	fmt.Fprintf(w, "  Bed slope:\t%.5f\n", slope)
	w.Flush()
	fmt.Println()

	fmt.Println("HYDRAULICS:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Design discharge:\t%.3f m³/s\n", rep.DesignDischarge)
	fmt.Fprintf(w, "  Normal depth:\t%.3f m\n", rep.NormalDepth)
	fmt.Fprintf(w, "  Critical depth:\t%.3f m\n", rep.CriticalDepth)
	fmt.Fprintf(w, "  Velocity:\t%.3f m/s\n", rep.Velocity)
	fmt.Fprintf(w, "  Froude number:\t%.3f (%s)\n", rep.Froude, rep.Regime)
	fmt.Fprintf(w, "  Freeboard:\t%.3f m (required %.3f m)\n", rep.Freeboard, rep.RequiredFreeboard)
	w.Flush()
	fmt.Println()

	verdict := func(ok bool) string {
		if ok {
			return "OK"
		}
		return "FAIL"
	}
	lines := []string{
		fmt.Sprintf("Velocity band [%.1f, %.1f] m/s: %s", hydraulics.MinDesignVelocity, hydraulics.MaxDesignVelocity, verdict(rep.VelocityOK)),
		fmt.Sprintf("Freeboard margin: %s", verdict(rep.FreeboardOK)),
	}

	if d50 > 0 {
		sh, err := hydraulics.CheckShields(shape, slope, rep.NormalDepth, d50)
		if err != nil {
			fmt.Printf("Error checking bed stability: %v\n", err)
			return
		}
		fmt.Println("BED STABILITY (SHIELDS):")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Grain size d₅₀:\t%.4f m\n", d50)
		fmt.Fprintf(w, "  Bed shear τ:\t%.3f Pa\n", sh.BedShear)
		fmt.Fprintf(w, "  Shields parameter τ*:\t%.4f (critical %.3f)\n", sh.ShieldsParameter, sh.CriticalShields)
		w.Flush()
		fmt.Println()
		lines = append(lines, fmt.Sprintf("Bed stability: %s", verdict(sh.Stable)))
	}

	status := "PASS"
	if !rep.Pass {
		status = "FAIL"
	}
	lines = append(lines, fmt.Sprintf("Overall: %s", status))
	fmt.Println(drawing.SummaryBox("CAPACITY CHECK", lines))

	if capRatingSteps > 0 {
		pts, err := hydraulics.RatingCurve(shape, n, slope, capRatingSteps)
		if err != nil {
			fmt.Printf("Error tabulating rating curve: %v\n", err)
			return
		}
		fmt.Println()
		fmt.Println("RATING CURVE:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Depth (m)\tQ (m³/s)\tV (m/s)\n")
		fmt.Fprintf(w, "  ─────────\t────────\t───────\n")
		for _, p := range pts {
			fmt.Fprintf(w, "  %.3f\t%.3f\t%.3f\n", p.Depth, p.Discharge, p.Velocity)
		}
		w.Flush()
		fmt.Println()
		if capShowDiagram {
			fmt.Println(drawing.RatingASCII(pts, 60, 15))
			fmt.Println()
		}
		if capExportFile != "" {
			if err := drawing.ExportRatingPlot(pts, capExportFile); err != nil {
				fmt.Printf("Error exporting plot: %v\n", err)
				return
			}
			fmt.Printf("  Plot written to %s\n", capExportFile)
			fmt.Println()
		}
	}
}
