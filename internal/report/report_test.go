package report

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// pagedBlock builds one solution block split horizontally into two pages:
// antennas A0/A1 on the first page, A2/A3 on the second. Every line keeps
// the listing shape <label area>|<antenna columns>.
func pagedBlock() []string {
	return []string{
		"SpwID = 0, 2 channels",
		"         | Ant = A0        Ant = A1",
		" Time     Field    Chan|  Amp    Phs    Amp    Phs",
		"---------|--------|----|--------------------------",
		"10:00:00 FieldX    0|  1.0    0.0    2.0   45.0",
		"10:00:00 FieldX    1|  1.1   10.0    2.1   55.0",
		"         | Ant = A2        Ant = A3",
		" Time     Field    Chan|  Amp    Phs    Amp    Phs",
		"---------|--------|----|--------------------------",
		"10:00:00 FieldX    0|  3.0   90.0    4.0  135.0",
		"10:00:00 FieldX    1|  3.1  100.0    4.1  145.0",
	}
}

func TestExtractSolutionsSplitsAtMarkers(t *testing.T) {
	lines := []string{
		"Listing CalTable: bandpass.b",
		"SpwID = 0, 2 channels",
		"data line one",
		"data line two",
		"SpwID = 1, 2 channels",
		"data line three",
	}

	solutions, err := ExtractSolutions(lines)
	if err != nil {
		t.Fatalf("ExtractSolutions failed: %v", err)
	}

	if len(solutions) != 2 {
		t.Fatalf("Expected 2 solutions, got %d", len(solutions))
	}
	if len(solutions[0]) != 3 {
		t.Errorf("First solution should span 3 lines, got %d", len(solutions[0]))
	}
	if !strings.Contains(solutions[1][0], "SpwID = 1") {
		t.Errorf("Second solution should start at its marker, got %q", solutions[1][0])
	}
}

func TestExtractSolutionsSingleMarker(t *testing.T) {
	lines := []string{
		"SpwID = 0",
		"line one",
		"line two",
	}

	solutions, err := ExtractSolutions(lines)
	if err != nil {
		t.Fatalf("ExtractSolutions failed: %v", err)
	}

	if len(solutions) != 1 {
		t.Fatalf("Expected 1 solution, got %d", len(solutions))
	}
	if len(solutions[0]) != 3 {
		t.Errorf("Single solution should cover all lines, got %d", len(solutions[0]))
	}
}

func TestExtractSolutionsRejectsMarkerlessReport(t *testing.T) {
	lines := []string{
		"no markers here",
		"still nothing",
	}

	_, err := ExtractSolutions(lines)
	if !errors.Is(err, ErrMalformedReport) {
		t.Fatalf("Expected ErrMalformedReport, got %v", err)
	}
}

func TestAntennaNames(t *testing.T) {
	names := AntennaNames("         | Ant = ea01        Ant = ea02")
	if !reflect.DeepEqual(names, []string{"ea01", "ea02"}) {
		t.Errorf("Unexpected antenna names: %v", names)
	}

	if names := AntennaNames("10:00:00 FieldX 0| 1.0 0.0"); names != nil {
		t.Errorf("Data line should yield no antenna names, got %v", names)
	}
}

func TestDedupHeadersRemovesRepeatedHeader(t *testing.T) {
	// Vertical pagination re-emits the header, column-title and rule lines
	// in the middle of a page.
	block := []string{
		"SpwID = 0, 4 channels",
		"         | Ant = A0        Ant = A1",
		" Time     Field    Chan|  Amp    Phs    Amp    Phs",
		"---------|--------|----|--------------------------",
		"10:00:00 FieldX    0|  1.0    0.0    2.0   45.0",
		"10:00:00 FieldX    1|  1.1   10.0    2.1   55.0",
		"         | Ant = A0        Ant = A1",
		" Time     Field    Chan|  Amp    Phs    Amp    Phs",
		"---------|--------|----|--------------------------",
		"10:00:00 FieldX    2|  1.2   20.0    2.2   65.0",
		"10:00:00 FieldX    3|  1.3   30.0    2.3   75.0",
	}

	deduped := DedupHeaders(block)
	if len(deduped) != 8 {
		t.Fatalf("Expected 8 lines after dedup, got %d: %v", len(deduped), deduped)
	}

	headerCount := 0
	for _, line := range deduped {
		if len(AntennaNames(line)) > 0 {
			headerCount++
		}
	}
	if headerCount != 1 {
		t.Errorf("Expected exactly 1 header line after dedup, got %d", headerCount)
	}

	// Data order must be preserved.
	for i, want := range []string{"0|", "1|", "2|", "3|"} {
		if !strings.Contains(deduped[4+i], want) {
			t.Errorf("Data row %d out of order: %q", i, deduped[4+i])
		}
	}
}

func TestDedupHeadersIdempotent(t *testing.T) {
	deduped := DedupHeaders(pagedBlock())
	again := DedupHeaders(deduped)
	if !reflect.DeepEqual(deduped, again) {
		t.Errorf("Dedup of a clean block must be a no-op:\nfirst:  %v\nsecond: %v", deduped, again)
	}
}

func TestDedupHeadersKeepsDistinctHeaders(t *testing.T) {
	// Horizontal pages have distinct antenna sets; nothing may be removed.
	block := pagedBlock()
	deduped := DedupHeaders(block)
	if !reflect.DeepEqual(block, deduped) {
		t.Errorf("Distinct headers must survive dedup:\nbefore: %v\nafter:  %v", block, deduped)
	}
}

func TestSplitSectionsRowCountInvariant(t *testing.T) {
	sections, err := SplitSections(pagedBlock())
	if err != nil {
		t.Fatalf("SplitSections failed: %v", err)
	}

	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
	for i, section := range sections {
		if len(section) != len(sections[0]) {
			t.Errorf("Section %d has %d rows, expected %d", i, len(section), len(sections[0]))
		}
		if len(AntennaNames(section[0])) == 0 {
			t.Errorf("Section %d does not start at a header line: %q", i, section[0])
		}
	}
}

func TestSplitSectionsRejectsSectionlessBlock(t *testing.T) {
	block := []string{
		"SpwID = 0",
		"no data region follows",
	}

	_, err := SplitSections(block)
	if !errors.Is(err, ErrNoSections) {
		t.Fatalf("Expected ErrNoSections, got %v", err)
	}
}

func TestJoinSectionsMergesColumns(t *testing.T) {
	sections, err := SplitSections(pagedBlock())
	if err != nil {
		t.Fatalf("SplitSections failed: %v", err)
	}

	table, err := JoinSections(sections)
	if err != nil {
		t.Fatalf("JoinSections failed: %v", err)
	}

	// Header + column titles + 2 data rows; the rule line is dropped.
	if len(table) != 4 {
		t.Fatalf("Expected 4 joined lines, got %d: %v", len(table), table)
	}

	names := AntennaNames(table[0])
	if !reflect.DeepEqual(names, []string{"A0", "A1", "A2", "A3"}) {
		t.Errorf("Joined header lost antennas: %v", names)
	}

	// Each data row carries both pages' values.
	if !strings.Contains(table[2], "1.0") || !strings.Contains(table[2], "3.0") {
		t.Errorf("Joined data row missing values from one page: %q", table[2])
	}
}

func TestJoinSectionsSkipsSentinelRows(t *testing.T) {
	left := []string{
		"         | Ant = A0",
		" Time     Field    Chan|  Amp    Phs",
		"---------|--------|----|------------",
		"10:00:00 FieldX    0|  1.0    0.0",
		"10:00:00 FieldX    1|  1.1   10.0",
	}
	right := []string{
		"         | Ant = A1",
		" Time     Field    Chan|  Amp    Phs",
		"---------|--------|----|------------",
		"10:00:00 FieldX    0|  2.0   45.0",
		"-nbsdfbkj |",
	}

	table, err := JoinSections([][]string{left, right})
	if err != nil {
		t.Fatalf("JoinSections failed: %v", err)
	}

	// Row 1 of the right page is the no-data sentinel, so the whole row is
	// dropped: header + titles + 1 data row remain after the rule line goes.
	if len(table) != 3 {
		t.Fatalf("Expected 3 lines after sentinel skip, got %d: %v", len(table), table)
	}
	for _, line := range table {
		if strings.Contains(line, "1.1") {
			t.Errorf("Sentinel row should have been dropped entirely: %q", line)
		}
	}
}

func TestJoinSectionsRejectsRowCountMismatch(t *testing.T) {
	sections, err := SplitSections(pagedBlock())
	if err != nil {
		t.Fatalf("SplitSections failed: %v", err)
	}
	// Truncate the second page to break row alignment.
	sections[1] = sections[1][:len(sections[1])-1]

	_, err = JoinSections(sections)
	var alignErr *AlignmentError
	if !errors.As(err, &alignErr) {
		t.Fatalf("Expected AlignmentError, got %v", err)
	}
	if alignErr.LeftRows != 5 || alignErr.RightRows != 4 {
		t.Errorf("Unexpected row counts in error: %+v", alignErr)
	}
}

func TestJoinSectionsSingleSectionDropsRuleLine(t *testing.T) {
	section := []string{
		" Ant = A0        Ant = A1",
		" Time     Field    Chan|  Amp    Phs    Amp    Phs",
		"---------|--------|----|--------------------------",
		"10:00:00 FieldX    0|  1.0    0.0    2.0   45.0",
	}

	table, err := JoinSections([][]string{section})
	if err != nil {
		t.Fatalf("JoinSections failed: %v", err)
	}

	if len(table) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %v", len(table), table)
	}
	if strings.Contains(table[2], "---") {
		t.Errorf("Rule line should be dropped, got %q", table[2])
	}
}
