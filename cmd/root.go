package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/cadhy/cadhy/internal/version"
	"github.com/spf13/cobra"
)

var rootVerbose bool

var rootCmd = &cobra.Command{
	Use:   "cadhy",
	Short: "Hydraulic channel corridor design tool",
	Long: `cadhy - Computer-Aided Design for HYdraulic corridors

A CLI tool for the design of open-channel corridors: a 3-D alignment
swept with parametric cross-sections, checked hydraulically and
exported as meshes and drafting sheets.

This tool helps hydraulic engineers perform:
  - Corridor modelling (alignment, sections, transitions)
  - Uniform flow, capacity and freeboard checks
  - Gradually-varied steady profiles with jump detection
  - Unsteady Saint-Venant routing (Preissmann scheme)
  - Mesh generation and drawing extraction (SVG, PDF, plots)

All hydraulics use Manning's equation in SI units.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if rootVerbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   cadhy v%-49s║\n", version.Version)
		fmt.Println("  ║   Computer-Aided Design for HYdraulic corridors           ║")
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  A CLI tool for the design of open-channel corridors:")
		fmt.Println("  alignment, sections, hydraulics, meshes and drawings.")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Capacity, freeboard and bed stability checks")
		fmt.Println("    • Steady water-surface profiles and hydraulic jumps")
		fmt.Println("    • Unsteady routing with resumable checkpoints")
		fmt.Println("    • Watertight corridor meshes with binary snapshots")
		fmt.Println("    • Standard drafting views and hatched section cuts")
		fmt.Println()
		fmt.Println("  Use 'cadhy --help' to see available commands.")
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
}
