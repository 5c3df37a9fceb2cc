// Package config provides configuration structures and defaults for Caltab Archiver
package config

// Config represents the complete application configuration
type Config struct {
	Report  ReportConfig  `yaml:"report"`  // Calibration report input settings
	Parser  ParserConfig  `yaml:"parser"`  // Table parsing settings
	Output  OutputConfig  `yaml:"output"`  // Container output settings
	Logging LoggingConfig `yaml:"logging"` // Logging configuration
}

// ReportConfig contains calibration report input parameters
type ReportConfig struct {
	Path string `yaml:"path"` // Path to the bandpass calibration text report
}

// ParserConfig contains table parsing parameters
type ParserConfig struct {
	Polarizations int `yaml:"polarizations"` // Number of polarizations per antenna (2 for standard VLA data)
}

// OutputConfig contains container output parameters
type OutputConfig struct {
	Dir  string `yaml:"dir"`  // Output directory for the calibration container and plots
	File string `yaml:"file"` // Output container filename
	Plot bool   `yaml:"plot"` // Render the diagnostic bandpass plot after saving
}

// LoggingConfig contains logging configuration parameters
type LoggingConfig struct {
	Level string `yaml:"level"` // Log level (debug, info, warn, error)
	File  string `yaml:"file"`  // Log file path
}

// DefaultConfig returns a configuration with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			Path: "", // No default report; must be supplied via config or flag
		},
		Parser: ParserConfig{
			Polarizations: 2, // Dual-polarization receivers
		},
		Output: OutputConfig{
			Dir:  "./data",                 // Current directory data folder
			File: "caltable_bandpass.calb", // Default container filename
			Plot: true,                     // Render diagnostic plot by default
		},
		Logging: LoggingConfig{
			Level: "info",       // Info level logging
			File:  "caltab.log", // Log to caltab.log file
		},
	}
}
