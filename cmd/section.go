package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cadhy/cadhy/internal/hydraulics"
	"github.com/cadhy/cadhy/internal/project"
)

var (
	secFile    string
	secStation float64
	secDepth   float64
)

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Report the section properties at a station",
	Long: `Report the cross-section active at a station: wetted geometry at the
given flow depth and the uniform-flow state on the local bed slope.

Inside a transition the shape is the interpolated blend at that
station.

Examples:
  cadhy section --file canal.yaml --station 110
  cadhy section -f canal.yaml --station 110 --depth 0.8`,
	Run: runSection,
}

func init() {
	rootCmd.AddCommand(sectionCmd)

	sectionCmd.Flags().StringVarP(&secFile, "file", "f", "", "Path to project YAML file [required]")
	sectionCmd.MarkFlagRequired("file")
	sectionCmd.Flags().Float64Var(&secStation, "station", 0, "Station in m")
	sectionCmd.Flags().Float64Var(&secDepth, "depth", 0, "Flow depth in m (default: full depth)")
}

func runSection(cmd *cobra.Command, args []string) {
	pf, err := project.Load(secFile)
	if err != nil {
		fmt.Printf("Error loading project: %v\n", err)
		return
	}
	c, err := pf.Build()
	if err != nil {
		fmt.Printf("Error building corridor: %v\n", err)
		return
	}

	shape := c.ShapeAt(secStation)
	n := c.ManningAt(secStation)
	slope := c.BedSlopeAt(secStation)
	y := secDepth
	if y <= 0 {
		y = shape.MaxDepth()
	}
	props := shape.Properties(y)

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     SECTION PROPERTIES")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Println("SECTION:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Station:\t%.1f m\n", secStation)
	fmt.Fprintf(w, "  Shape:\t%s\n", shape.Kind())
	fmt.Fprintf(w, "  Full depth:\t%.3f m\n", shape.MaxDepth())
	fmt.Fprintf(w, "  Invert width:\t%.3f m\n", shape.InvertWidth())
	fmt.Fprintf(w, "  Bed elevation:\t%.3f m\n", c.BedElevationAt(secStation))
	fmt.Fprintf(w, "  Bed slope:\t%.5f\n", slope)
	fmt.Fprintf(w, "  Manning n:\t%.4f\n", n)
	w.Flush()
	fmt.Println()

	fmt.Printf("WETTED GEOMETRY AT y = %.3f m:\n", y)
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Area:\t%.4f m²\n", props.Area)
	fmt.Fprintf(w, "  Wetted perimeter:\t%.4f m\n", props.WettedPerimeter)
	fmt.Fprintf(w, "  Hydraulic radius:\t%.4f m\n", props.HydraulicRadius)
	fmt.Fprintf(w, "  Top width:\t%.4f m\n", props.TopWidth)
	fmt.Fprintf(w, "  Hydraulic depth:\t%.4f m\n", props.HydraulicDepth)
	w.Flush()
	fmt.Println()

	flow, err := hydraulics.ManningFlow(shape, n, slope, y)
	if err != nil {
		fmt.Printf("Error computing uniform flow: %v\n", err)
		return
	}
	fmt.Println("UNIFORM FLOW:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Velocity:\t%.3f m/s\n", flow.Velocity)
	fmt.Fprintf(w, "  Discharge:\t%.3f m³/s\n", flow.Discharge)
	fmt.Fprintf(w, "  Froude number:\t%.3f (%s)\n", flow.Froude, flow.Regime)
	w.Flush()
	fmt.Println()
}
