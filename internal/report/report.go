// Package report segments CASA bandpass calibration listings into a single
// joined table. The listing routine paginates a wide table horizontally:
// each solution re-emits antenna header lines for every page, and vertical
// pagination can repeat the same header mid-page. The functions here undo
// that pagination so the record parser sees one header and one row per
// channel.
package report

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// solutionMarker appears on the first header line of every calibration
	// solution in the listing.
	solutionMarker = "SpwID"

	// timeMarker identifies the column-title line that opens the data region
	// of a table page. The antenna header line sits immediately above it.
	timeMarker = "Time"

	// noDataSentinel is the leading token of a row that carries no data for
	// the antennas of its page. Such rows are dropped while joining pages.
	noDataSentinel = "-nbsdfbkj"
)

// ErrMalformedReport is returned when a listing contains no solution
// markers, so no block boundary can be established.
var ErrMalformedReport = errors.New("no solution markers found in report")

// ErrNoSections is returned when a solution block contains no data region
// markers, so no table section can be located.
var ErrNoSections = errors.New("no table sections found in solution block")

// AlignmentError reports a row-count mismatch between two table pages being
// joined. Pages of one solution must describe the same rows in the same
// order; a mismatch means the listing was mis-segmented upstream.
type AlignmentError struct {
	Section   int // index of the mismatched page within the solution block
	LeftRows  int
	RightRows int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("section %d row count mismatch: joined table has %d rows, section has %d",
		e.Section, e.LeftRows, e.RightRows)
}

var antennaPattern = regexp.MustCompile(`Ant = ([a-zA-Z0-9]+)`)

// AntennaNames extracts the ordered antenna names from a header line.
// Header lines enumerate antennas as "Ant = <name>" tokens.
func AntennaNames(headerLine string) []string {
	matches := antennaPattern.FindAllStringSubmatch(headerLine, -1)
	if len(matches) == 0 {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m[1]
	}
	return names
}

// ExtractSolutions splits the report lines into solution blocks, one per
// occurrence of the solution marker. Block i spans from marker i up to (but
// not including) marker i+1; the final block runs to the end of the report.
func ExtractSolutions(lines []string) ([][]string, error) {
	var boundaries []int
	for i, line := range lines {
		if strings.Contains(line, solutionMarker) {
			boundaries = append(boundaries, i)
		}
	}
	if len(boundaries) == 0 {
		return nil, ErrMalformedReport
	}

	solutions := make([][]string, 0, len(boundaries))
	for i, start := range boundaries {
		end := len(lines)
		if i+1 < len(boundaries) {
			end = boundaries[i+1]
		}
		solutions = append(solutions, lines[start:end])
	}
	return solutions, nil
}

// DedupHeaders removes repeated antenna header regions from a solution
// block. Vertical pagination re-emits the header line, the column-title
// line, and the rule line below it; when the antenna names match the
// previously seen header the whole three-line region is excised and the
// scan restarts. Each excision strictly shortens the block, so the loop
// terminates. Applying DedupHeaders to an already clean block is a no-op.
func DedupHeaders(block []string) []string {
	out := make([]string, len(block))
	copy(out, block)

	for {
		removed := false
		var lastHeader []string
		haveHeader := false

		for i, line := range out {
			if i == 0 || !strings.Contains(line, timeMarker) {
				continue
			}
			current := AntennaNames(out[i-1])
			if haveHeader && len(current) > 0 && equalNames(current, lastHeader) {
				// Drop header line, column-title line and rule line.
				cut := i + 2
				if cut > len(out) {
					cut = len(out)
				}
				out = append(out[:i-1], out[cut:]...)
				removed = true
				break
			}
			lastHeader = current
			haveHeader = true
		}

		if !removed {
			return out
		}
	}
}

// SplitSections splits a deduplicated solution block into its horizontal
// table pages. Every column-title line opens a section one line earlier, at
// its antenna header line; each section runs to the next section start or
// the end of the block.
func SplitSections(block []string) ([][]string, error) {
	var starts []int
	for i, line := range block {
		if i > 0 && strings.Contains(line, timeMarker) {
			starts = append(starts, i-1)
		}
	}
	if len(starts) == 0 {
		return nil, ErrNoSections
	}

	sections := make([][]string, 0, len(starts))
	for i, start := range starts {
		end := len(block)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sections = append(sections, block[start:end])
	}
	return sections, nil
}

// JoinSections concatenates the table pages column-wise into one wide
// table. Rows whose page carries the no-data sentinel are dropped entirely.
// The final table keeps the header and column-title lines and drops the
// rule-line artifact at index 2.
func JoinSections(sections [][]string) ([]string, error) {
	if len(sections) == 0 {
		return nil, ErrNoSections
	}

	joined := make([]string, len(sections[0]))
	copy(joined, sections[0])

	for s, section := range sections[1:] {
		if len(section) != len(joined) {
			return nil, &AlignmentError{Section: s + 1, LeftRows: len(joined), RightRows: len(section)}
		}

		merged := make([]string, 0, len(joined))
		for i, left := range joined {
			right := section[i]
			if leadingToken(right) == noDataSentinel {
				continue
			}
			cut := strings.Index(right, "|")
			if cut < 0 {
				return nil, fmt.Errorf("section %d row %d has no column separator: %q", s+1, i, right)
			}
			merged = append(merged, left+right[cut+1:])
		}
		joined = merged
	}

	if len(joined) > 2 {
		table := make([]string, 0, len(joined)-1)
		table = append(table, joined[:2]...)
		table = append(table, joined[3:]...)
		return table, nil
	}
	return joined, nil
}

// leadingToken returns the first whitespace-delimited token of a line, or
// an empty string for a blank line.
func leadingToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
