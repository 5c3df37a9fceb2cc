// Caltab Archiver - bandpass calibration table parser and archiver
// This program converts the text report produced by a bandpass-calibration
// listing routine into a structured calibration container and renders a
// diagnostic bandpass plot.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"caltab-archiver/internal/config"
	"caltab-archiver/internal/pipeline"
	"caltab-archiver/internal/plotter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Command line flag variables
var (
	cfgFile    string // Configuration file path
	reportPath string // Calibration report text file
	outputDir  string // Output directory for container and plots
	outputFile string // Output container filename
	npol       int    // Polarization count per antenna
	renderPlot bool   // Render diagnostic plot after saving
	verbose    bool   // Enable verbose logging
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "caltab-archiver",
	Short: "Bandpass calibration table parser and archiver",
	Long: `Caltab Archiver parses the paginated text report of a bandpass
calibration listing into a complex gain dataset indexed by
(antenna, channel, polarization) and stores it in a calibration container.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runArchiver(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// init initializes the CLI flags and configuration
func init() {
	// Initialize configuration when cobra starts
	cobra.OnInitialize(initConfig)

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "./config.yaml", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Command-specific flags
	rootCmd.Flags().StringVarP(&reportPath, "report", "r", "", "bandpass calibration report text file")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "./data", "output directory")
	rootCmd.Flags().StringVar(&outputFile, "out-file", "caltable_bandpass.calb", "output container filename")
	rootCmd.Flags().IntVar(&npol, "npol", 2, "polarization count per antenna")
	rootCmd.Flags().BoolVar(&renderPlot, "plot", true, "render diagnostic bandpass plot (true|false)")

	// Bind command line flags to viper configuration keys
	viper.BindPFlag("report.path", rootCmd.Flags().Lookup("report"))
	viper.BindPFlag("output.dir", rootCmd.Flags().Lookup("output"))
	viper.BindPFlag("output.file", rootCmd.Flags().Lookup("out-file"))
	viper.BindPFlag("output.plot", rootCmd.Flags().Lookup("plot"))
	viper.BindPFlag("parser.polarizations", rootCmd.Flags().Lookup("npol"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config.yaml in current directory
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	// Read in environment variables that match
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// runArchiver is the main application logic
func runArchiver() error {
	// Load default configuration
	cfg := config.DefaultConfig()

	// Override with values from config file and command line flags
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if cfg.Report.Path == "" {
		return fmt.Errorf("no report specified: set report.path in config file or use --report")
	}
	if _, err := os.Stat(cfg.Report.Path); err != nil {
		return fmt.Errorf("report not readable: %w", err)
	}
	if cfg.Parser.Polarizations < 1 {
		return fmt.Errorf("invalid polarization count: %d (must be at least 1)", cfg.Parser.Polarizations)
	}
	if cfg.Output.File == "" {
		return fmt.Errorf("output filename not specified")
	}

	// Display startup information
	fmt.Printf("Caltab Archiver starting...\n")
	fmt.Printf("Report: %s\n", cfg.Report.Path)
	fmt.Printf("Polarizations: %d\n", cfg.Parser.Polarizations)
	fmt.Printf("Output: %s\n", filepath.Join(cfg.Output.Dir, cfg.Output.File))

	// Run the parsing and archiving pipeline
	p := pipeline.NewPipeline(cfg)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if result.Diagnostics.SolutionCount > 1 {
		fmt.Printf("%d solutions found, processing first solution only\n", result.Diagnostics.SolutionCount)
	}
	for _, warning := range result.Diagnostics.Warnings {
		fmt.Printf("Warning: %s\n", warning)
	}

	nants, nchans, npols := result.Dataset.Shape()
	fmt.Printf("Parsed %d antennas, %d channels, %d polarizations\n", nants, nchans, npols)
	fmt.Printf("Saved: %s\n", result.OutputPath)

	// Render diagnostic plot from the stored container
	if cfg.Output.Plot {
		plotPath := filepath.Join(cfg.Output.Dir, "bandpass_calibration_plot.html")
		if err := plotter.RenderBandpass(result.OutputPath, plotPath, 0); err != nil {
			return fmt.Errorf("failed to render plot: %w", err)
		}
		fmt.Printf("Plot written: %s\n", plotPath)
	}

	fmt.Printf("Archiving completed successfully.\n")
	return nil
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
