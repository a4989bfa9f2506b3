package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cadhy/cadhy/internal/drawing"
	"github.com/cadhy/cadhy/internal/geom"
	"github.com/cadhy/cadhy/internal/kernel"
	"github.com/cadhy/cadhy/internal/meshio"
	"github.com/cadhy/cadhy/internal/projection"
)

var (
	drawMesh       string
	drawOutput     string
	drawFormat     string
	drawViews      []string
	drawScale      float64
	drawDeflection float64
	drawCutAxis    string
	drawCutAt      float64
	drawHatchSpace float64
)

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Extract drafting views from a corridor mesh",
	Long: `Project a mesh snapshot onto the standard drafting views with hidden
line removal and write the sheets as SVG files or a multi-page PDF.

With --cut-at, a hatched section cut through the solid is produced
instead of the projected views.

Examples:
  cadhy draw --mesh canal.mesh --output drawings/
  cadhy draw -m canal.mesh -o drawings/ --views top,front,iso-sw
  cadhy draw -m canal.mesh -o canal.pdf --format pdf
  cadhy draw -m canal.mesh -o cut.svg --cut-axis x --cut-at 25`,
	Run: runDraw,
}

func init() {
	rootCmd.AddCommand(drawCmd)

	drawCmd.Flags().StringVarP(&drawMesh, "mesh", "m", "", "Path to mesh snapshot [required]")
	drawCmd.MarkFlagRequired("mesh")
	drawCmd.Flags().StringVarP(&drawOutput, "output", "o", "", "Output directory (svg) or file (pdf, cut) [required]")
	drawCmd.MarkFlagRequired("output")

	drawCmd.Flags().StringVar(&drawFormat, "format", "svg", "Sheet format: svg or pdf")
	drawCmd.Flags().StringSliceVar(&drawViews, "views", nil, "Views to draw (default: all standard views)")
	drawCmd.Flags().Float64Var(&drawScale, "scale", 0, "Drawing scale (default 1)")
	drawCmd.Flags().Float64Var(&drawDeflection, "deflection", 0, "Chord error for curve flattening in m (default 0.01)")

	drawCmd.Flags().StringVar(&drawCutAxis, "cut-axis", "x", "Section cut axis: x, y or z")
	drawCmd.Flags().Float64Var(&drawCutAt, "cut-at", 0, "Section cut position along the axis in m")
	drawCmd.Flags().Float64Var(&drawHatchSpace, "hatch-spacing", 0, "Hatch line spacing in drawing units (default 0.5)")
}

func runDraw(cmd *cobra.Command, args []string) {
	in, err := os.Open(drawMesh)
	if err != nil {
		fmt.Printf("Error opening mesh: %v\n", err)
		return
	}
	mesh, err := meshio.ReadMesh(in)
	in.Close()
	if err != nil {
		fmt.Printf("Error reading mesh: %v\n", err)
		return
	}

	k := kernel.Default()
	solid, err := k.BuildFromMesh(mesh)
	if err != nil {
		fmt.Printf("Error building solid: %v\n", err)
		return
	}

	if cmd.Flags().Changed("cut-at") {
		runDrawCut(k, solid)
		return
	}

	cfg := projection.Config{Scale: drawScale, Deflection: drawDeflection}
	views := projection.StandardViews()
	if len(drawViews) > 0 {
		views = filterViews(views, drawViews)
		if len(views) == 0 {
			fmt.Printf("Error: no standard view matches %v\n", drawViews)
			return
		}
	}

	results := make([]*projection.Result, 0, len(views))
	for _, v := range views {
		res, err := projection.Project(k, solid, v, cfg)
		if err != nil {
			fmt.Printf("Error projecting view %s: %v\n", v.Name, err)
			return
		}
		results = append(results, res)
	}

	switch drawFormat {
	case "svg":
		if err := os.MkdirAll(drawOutput, 0o755); err != nil {
			fmt.Printf("Error creating output directory: %v\n", err)
			return
		}
		for _, res := range results {
			name := filepath.Join(drawOutput, res.Name+".svg")
			if err := writeSheet(name, func(f *os.File) error {
				return drawing.WriteViewSVG(f, res, drawing.SheetOptions{})
			}); err != nil {
				fmt.Printf("Error writing %s: %v\n", name, err)
				return
			}
		}
	case "pdf":
		if err := writeSheet(drawOutput, func(f *os.File) error {
			return drawing.WriteViewsPDF(f, results, drawing.SheetOptions{})
		}); err != nil {
			fmt.Printf("Error writing %s: %v\n", drawOutput, err)
			return
		}
	default:
		fmt.Printf("Error: unknown format %q\n", drawFormat)
		return
	}

	fmt.Println()
	fmt.Println("DRAFTING VIEWS:")
	fmt.Println("───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  View\tCurves\tExtent\n")
	fmt.Fprintf(w, "  ────\t──────\t──────\n")
	for _, res := range results {
		size := res.Bounds.Size()
		fmt.Fprintf(w, "  %s\t%d\t%.2f × %.2f\n", res.Name, len(res.Curves), size.X, size.Y)
	}
	w.Flush()
	fmt.Printf("\n  Sheets written to %s\n\n", drawOutput)
}

func runDrawCut(k kernel.Kernel, solid kernel.Solid) {
	var normal, up geom.Vec3
	switch strings.ToLower(drawCutAxis) {
	case "x":
		normal, up = geom.Vec3{X: 1}, geom.Vec3{Z: 1}
	case "y":
		normal, up = geom.Vec3{Y: 1}, geom.Vec3{Z: 1}
	case "z":
		normal, up = geom.Vec3{Z: 1}, geom.Vec3{Y: 1}
	default:
		fmt.Printf("Error: unknown cut axis %q\n", drawCutAxis)
		return
	}
	origin := normal.Scale(drawCutAt)
	plane := geom.NewPlane(origin, normal, up)

	sec, err := projection.SectionView(k, solid, plane, projection.HatchConfig{Spacing: drawHatchSpace})
	if err != nil {
		fmt.Printf("Error cutting section: %v\n", err)
		return
	}
	if len(sec.Regions) == 0 {
		fmt.Printf("Error: the cut plane %s = %.3f misses the solid\n", drawCutAxis, drawCutAt)
		return
	}

	write := func(f *os.File) error { return drawing.WriteSectionSVG(f, sec, drawing.SheetOptions{}) }
	if drawFormat == "pdf" {
		write = func(f *os.File) error { return drawing.WriteSectionPDF(f, sec, drawing.SheetOptions{}) }
	}
	if err := writeSheet(drawOutput, write); err != nil {
		fmt.Printf("Error writing %s: %v\n", drawOutput, err)
		return
	}
	fmt.Printf("\n  Section cut at %s = %.3f m: %d region(s), %d hatch lines\n",
		drawCutAxis, drawCutAt, len(sec.Regions), len(sec.Hatch))
	fmt.Printf("  Sheet written to %s\n\n", drawOutput)
}

func filterViews(all []projection.View, names []string) []projection.View {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}
	var out []projection.View
	for _, v := range all {
		if want[v.Name] {
			out = append(out, v)
		}
	}
	return out
}

func writeSheet(name string, write func(*os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
