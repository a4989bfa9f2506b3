package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cadhy/cadhy/internal/drawing"
	"github.com/cadhy/cadhy/internal/hydraulics"
	"github.com/cadhy/cadhy/internal/project"
)

var (
	profileFile         string
	profileDischarge    float64
	profileResolution   float64
	profileControlDepth float64
	profileShowDiagram  bool
	profileExportFile   string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Compute the steady water-surface profile",
	Long: `Compute the gradually-varied water surface along the corridor for a
fixed discharge using the standard-step energy method.

Hydraulic jumps are detected where the regime switches and reported
with their conjugate depths and USBR classification.

Examples:
  cadhy profile --file canal.yaml --discharge 4.5
  cadhy profile -f canal.yaml -q 4.5 --diagram
  cadhy profile -f canal.yaml -q 4.5 --output profile.png`,
	Run: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().StringVarP(&profileFile, "file", "f", "", "Path to project YAML file [required]")
	profileCmd.MarkFlagRequired("file")
	profileCmd.Flags().Float64VarP(&profileDischarge, "discharge", "q", 0, "Design discharge in m³/s (default: project design discharge)")

	profileCmd.Flags().Float64Var(&profileResolution, "resolution", 0, "Station step in m (default 1.0)")
	profileCmd.Flags().Float64Var(&profileControlDepth, "control-depth", 0, "Pinned depth at the control section in m (default: normal depth)")

	// Diagram options
	profileCmd.Flags().BoolVar(&profileShowDiagram, "diagram", false, "Show ASCII water-surface diagram")
	profileCmd.Flags().StringVarP(&profileExportFile, "output", "o", "", "Export profile plot to file (png, svg, pdf)")
}

func runProfile(cmd *cobra.Command, args []string) {
	pf, err := project.Load(profileFile)
	if err != nil {
		fmt.Printf("Error loading project: %v\n", err)
		return
	}
	c, err := pf.Build()
	if err != nil {
		fmt.Printf("Error building corridor: %v\n", err)
		return
	}

	q := profileDischarge
	if q <= 0 {
		q = pf.Design.Discharge
	}
	if q <= 0 {
		fmt.Println("Error: no discharge given and the project carries no design discharge")
		return
	}

	prof, err := hydraulics.SteadyProfile(context.Background(), c, q, hydraulics.ProfileOptions{
		Resolution:   profileResolution,
		ControlDepth: profileControlDepth,
	})
	if err != nil {
		fmt.Printf("Error computing profile: %v\n", err)
		return
	}

	first, last := prof.Points[0], prof.Points[len(prof.Points)-1]
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     STEADY WATER-SURFACE PROFILE")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Discharge:\t%.3f m³/s\n", prof.Discharge)
	fmt.Fprintf(w, "  Stations:\t%.1f – %.1f m (%d points)\n", first.Station, last.Station, len(prof.Points))
	fmt.Fprintf(w, "  Upstream depth:\t%.3f m (%s)\n", first.Depth, first.Regime)
	fmt.Fprintf(w, "  Downstream depth:\t%.3f m (%s)\n", last.Depth, last.Regime)
	fmt.Fprintf(w, "  Hydraulic jumps:\t%d\n", len(prof.Jumps))
	w.Flush()
	fmt.Println()

	if len(prof.Jumps) > 0 {
		fmt.Println("HYDRAULIC JUMPS:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Station (m)\ty₁ (m)\ty₂ (m)\tFr₁\tΔE (m)\tClass\n")
		fmt.Fprintf(w, "  ───────────\t──────\t──────\t───\t──────\t─────\n")
		for _, j := range prof.Jumps {
			fmt.Fprintf(w, "  %.1f\t%.3f\t%.3f\t%.2f\t%.3f\t%s\n",
				j.Station, j.UpstreamDepth, j.ConjugateDepth, j.UpstreamFroude, j.EnergyLoss, j.Class)
		}
		w.Flush()
		fmt.Println()
	}

	if profileShowDiagram {
		fmt.Println(drawing.ProfileASCII(prof, 80, 20))
		fmt.Println()
	}
	if profileExportFile != "" {
		if err := drawing.ExportProfilePlot(prof, profileExportFile); err != nil {
			fmt.Printf("Error exporting plot: %v\n", err)
			return
		}
		fmt.Printf("  Plot written to %s\n", profileExportFile)
		fmt.Println()
	}
}
