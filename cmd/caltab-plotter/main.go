// Caltab Plotter - renders diagnostic bandpass plots from calibration
// container files written by Caltab Archiver.
package main

import (
	"fmt"
	"os"

	"caltab-archiver/internal/plotter"
	"caltab-archiver/internal/version"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
	pol         int
	outputPath  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "caltab-plotter [file.calb]",
	Short: "Render diagnostic bandpass plots from calibration containers",
	Long: `Caltab Plotter reads the gain array from a calibration container and
renders amplitude and phase vs channel curves per antenna, ordered by mean
gain magnitude.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Handle version flag
		if showVersion {
			fmt.Println(version.GetVersionInfo("Caltab Plotter"))
			return
		}

		// Require filename if not showing version
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Error: filename required\n")
			cmd.Usage()
			os.Exit(1)
		}

		if err := plotter.RenderBandpass(args[0], outputPath, pol); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Plot written: %s\n", outputPath)
	},
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().IntVarP(&pol, "pol", "p", 0, "polarization index to plot")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "bandpass_calibration_plot.html", "output plot file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
