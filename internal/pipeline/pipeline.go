// Package pipeline runs the calibration report processing chain: read the
// report text, undo its pagination, parse the joined table into a dataset,
// and persist the dataset as a calibration container.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"caltab-archiver/internal/calfile"
	"caltab-archiver/internal/caltable"
	"caltab-archiver/internal/config"
	"caltab-archiver/internal/report"
)

// ReportSource abstracts the external calibration orchestration that
// produces a report for a dataset identifier. The pipeline only consumes
// the resulting report path; how the report was generated is out of scope.
type ReportSource interface {
	ReportPath(dataset string) (string, error)
}

// Diagnostics carries non-fatal observations from a pipeline run so that
// callers and tests can inspect them instead of scraping console output.
type Diagnostics struct {
	// SolutionCount is the number of solution blocks found in the report.
	// Only the first block is processed.
	SolutionCount int

	// Warnings lists data-quality issues from parsing (multiple timestamps
	// or fields, duplicate channels).
	Warnings []string
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	Dataset     *caltable.Dataset
	OutputPath  string
	Diagnostics Diagnostics
}

type Pipeline struct {
	config *config.Config
	writer *calfile.Writer
}

func NewPipeline(cfg *config.Config) *Pipeline {
	return &Pipeline{
		config: cfg,
		writer: calfile.NewWriter(),
	}
}

// Run processes the configured report and writes the calibration
// container. The container is only written after parsing fully succeeds,
// so a failed run never leaves a partial file behind.
func (p *Pipeline) Run() (*Result, error) {
	data, err := os.ReadFile(p.config.Report.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	dataset, diag, err := p.parse(string(data))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(p.config.Output.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(p.config.Output.Dir, p.config.Output.File)
	if err := p.writer.WriteFile(outputPath, dataset); err != nil {
		return nil, fmt.Errorf("failed to write container: %w", err)
	}

	return &Result{
		Dataset:     dataset,
		OutputPath:  outputPath,
		Diagnostics: diag,
	}, nil
}

// RunFrom resolves the report path through a source, then runs.
func (p *Pipeline) RunFrom(src ReportSource, dataset string) (*Result, error) {
	path, err := src.ReportPath(dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report for %s: %w", dataset, err)
	}
	p.config.Report.Path = path
	return p.Run()
}

// parse runs the text stages over the raw report content.
func (p *Pipeline) parse(text string) (*caltable.Dataset, Diagnostics, error) {
	var diag Diagnostics

	solutions, err := report.ExtractSolutions(splitLines(text))
	if err != nil {
		return nil, diag, fmt.Errorf("failed to segment report: %w", err)
	}
	diag.SolutionCount = len(solutions)

	// Only the first solution block is processed.
	sol := report.DedupHeaders(solutions[0])
	// Removing one duplicate can expose a second-order duplicate.
	sol = report.DedupHeaders(sol)

	sections, err := report.SplitSections(sol)
	if err != nil {
		return nil, diag, fmt.Errorf("failed to split sections: %w", err)
	}

	table, err := report.JoinSections(sections)
	if err != nil {
		return nil, diag, fmt.Errorf("failed to join sections: %w", err)
	}

	dataset, warnings, err := caltable.Parse(table, p.config.Parser.Polarizations)
	if err != nil {
		return nil, diag, fmt.Errorf("failed to parse table: %w", err)
	}
	diag.Warnings = warnings

	return dataset, diag, nil
}

// splitLines splits report text into lines without trailing line endings.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
