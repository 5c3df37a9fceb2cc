// Caltab Reader - utility to display contents of calibration container files
// This program reads and displays the stored groups, datasets and gain data
// from .calb files written by Caltab Archiver.
package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"

	"caltab-archiver/internal/calfile"
	"caltab-archiver/internal/version"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	showVersion bool
	showCoords  bool
	showGains   int
	gainPol     int
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "caltab-reader [file.calb]",
	Short: "Display contents of calibration container files",
	Long: `Caltab Reader displays the group hierarchy, datasets and gain data
stored in calibration container files. Useful for verifying archived
bandpass solutions.

Display modes:
  --coords     Show coordinate arrays (antennas, channels, times, fields)
  --gains N    Show the first N gain values per antenna for one polarization`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Handle version flag
		if showVersion {
			fmt.Println(version.GetVersionInfo("Caltab Reader"))
			return
		}

		// Require filename if not showing version
		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "Error: filename required\n")
			cmd.Usage()
			os.Exit(1)
		}

		if err := displayFile(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")
	rootCmd.Flags().BoolVar(&showCoords, "coords", false, "display coordinate arrays")
	rootCmd.Flags().IntVarP(&showGains, "gains", "g", 0, "display the first N gain values per antenna")
	rootCmd.Flags().IntVarP(&gainPol, "pol", "p", 0, "polarization index for --gains")
}

var sectionHeader = color.New(color.FgCyan, color.Bold)

// displayFile reads and displays the contents of a calibration container
func displayFile(filename string) error {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filename)
	}

	f, err := calfile.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read container: %w", err)
	}

	fmt.Printf("CALTAB CONTAINER READER %s\n\n", version.GetFullVersion())

	// Display file info
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return err
	}

	sectionHeader.Println("📁 File Information:")
	fmt.Printf("Name: %s\n", filepath.Base(filename))
	fmt.Printf("Size: %d bytes\n", fileInfo.Size())
	fmt.Printf("Format version: %d\n", f.Version)
	fmt.Printf("Modified: %s\n\n", fileInfo.ModTime().Format("2006-01-02 15:04:05"))

	// Display group hierarchy
	sectionHeader.Println("🗂  Groups:")
	for _, group := range f.Groups() {
		fmt.Printf(" - %s\n", group)
	}
	fmt.Printf("\n")

	sectionHeader.Printf("📊 Datasets in %s:\n", calfile.GroupBandpass)
	displayDatasets(f)
	fmt.Printf("\n")

	if showCoords {
		if err := displayCoordinates(f); err != nil {
			return err
		}
	}

	if showGains > 0 {
		if err := displayGains(f, showGains, gainPol); err != nil {
			return err
		}
	}

	return nil
}

// displayDatasets renders the stored datasets as a table
func displayDatasets(f *calfile.File) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"DATASET", "TYPE", "SHAPE", "ELEMENTS"})

	for _, entry := range f.Entries {
		tbl.AppendRow(table.Row{entry.Path, entry.Type.String(), entry.ShapeString(), entry.Len()})
	}

	tbl.Render()
}

// displayCoordinates prints the coordinate arrays stored alongside the gains
func displayCoordinates(f *calfile.File) error {
	coords := []struct {
		label string
		path  string
	}{
		{"Antennas", calfile.PathAntenna},
		{"Polarizations", calfile.PathPolarization},
		{"Times", calfile.PathTime},
		{"Fields", calfile.PathField},
	}

	sectionHeader.Println("🧭 Coordinates:")
	for _, c := range coords {
		entry, ok := f.Dataset(c.path)
		if !ok {
			return fmt.Errorf("container has no dataset %s", c.path)
		}
		fmt.Printf("%s: %v\n", c.label, entry.Strings)
	}

	channels, ok := f.Dataset(calfile.PathChannel)
	if !ok {
		return fmt.Errorf("container has no dataset %s", calfile.PathChannel)
	}
	fmt.Printf("Channels: %v\n\n", channels.Ints)
	return nil
}

// displayGains prints the first count gain values per antenna for one polarization
func displayGains(f *calfile.File, count, pol int) error {
	gain, ok := f.Dataset(calfile.PathGain)
	if !ok {
		return fmt.Errorf("container has no dataset %s", calfile.PathGain)
	}
	antennas, ok := f.Dataset(calfile.PathAntenna)
	if !ok {
		return fmt.Errorf("container has no dataset %s", calfile.PathAntenna)
	}
	if len(gain.Dims) != 3 {
		return fmt.Errorf("gain dataset has rank %d, expected 3", len(gain.Dims))
	}

	nants := int(gain.Dims[0])
	nchans := int(gain.Dims[1])
	npol := int(gain.Dims[2])
	if pol < 0 || pol >= npol {
		return fmt.Errorf("polarization index %d out of range (container has %d)", pol, npol)
	}
	if count > nchans {
		count = nchans
	}

	sectionHeader.Printf("📈 Gains (pol %d, first %d channels):\n", pol, count)
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)

	header := table.Row{"ANTENNA"}
	for c := 0; c < count; c++ {
		header = append(header, fmt.Sprintf("CH %d", c))
	}
	tbl.AppendHeader(header)

	for a := 0; a < nants; a++ {
		row := table.Row{antennas.Strings[a]}
		for c := 0; c < count; c++ {
			g := gain.Complex[(a*nchans+c)*npol+pol]
			row = append(row, fmt.Sprintf("%.3f∠%.1f°", cmplx.Abs(g), cmplx.Phase(g)*180/math.Pi))
		}
		tbl.AppendRow(row)
	}

	tbl.Render()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
