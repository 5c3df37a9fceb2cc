package caltable

import (
	"fmt"
	"math"
	"math/cmplx"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"caltab-archiver/internal/report"
)

// dataPattern matches one data record:
// <time> <field> <channel>|<whitespace-separated amp/phase values>
var dataPattern = regexp.MustCompile(`^(\S+)\s+(\S+)\s+(\d+)\|(.*)`)

// flagMarker is appended to flagged solution values in the listing. It is
// replaced with a space before tokenizing so a marker wedged between two
// values never fuses them into one token.
const flagMarker = "F"

// record is one parsed data line before reshaping.
type record struct {
	time    string
	field   string
	channel int64
	amp     []float64 // per (antenna, polarization)
	phase   []float64 // degrees, per (antenna, polarization)
}

// Parse converts a joined calibration table into a Dataset. The first line
// must be the antenna header; lines that do not match the record pattern
// are structural and skipped. Returned warnings flag data-quality issues
// (multiple timestamps or fields, duplicate channels) that do not abort
// parsing but may misattribute data downstream.
func Parse(table []string, npol int) (*Dataset, []string, error) {
	if npol < 1 {
		return nil, nil, fmt.Errorf("invalid polarization count: %d", npol)
	}
	if len(table) == 0 {
		return nil, nil, fmt.Errorf("empty calibration table")
	}

	antennas := report.AntennaNames(table[0])
	if len(antennas) == 0 {
		return nil, nil, fmt.Errorf("no antenna names in table header: %q", table[0])
	}
	nants := len(antennas)
	expected := nants * 2 * npol

	var records []record
	for _, line := range table {
		m := dataPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		channel, err := strconv.ParseInt(m[3], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parse channel %q: %w", m[3], err)
		}

		rest := strings.ReplaceAll(m[4], flagMarker, " ")
		tokens := strings.Fields(rest)
		if len(tokens) != expected {
			return nil, nil, &ShapeError{Time: m[1], Channel: channel, Expected: expected, Got: len(tokens)}
		}

		rec := record{
			time:    m[1],
			field:   m[2],
			channel: channel,
			amp:     make([]float64, nants*npol),
			phase:   make([]float64, nants*npol),
		}
		for i := 0; i < nants*npol; i++ {
			amp, err := strconv.ParseFloat(tokens[2*i], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("parse amplitude %q: %w", tokens[2*i], err)
			}
			phase, err := strconv.ParseFloat(tokens[2*i+1], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("parse phase %q: %w", tokens[2*i+1], err)
			}
			rec.amp[i] = amp
			rec.phase[i] = phase
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no data records in calibration table")
	}

	var warnings []string

	times := uniqueSorted(records, func(r record) string { return r.time })
	fields := uniqueSorted(records, func(r record) string { return r.field })
	if len(times)*len(fields) != 1 {
		warnings = append(warnings, fmt.Sprintf(
			"dataset spans %d timestamps and %d fields; a single solution should have exactly one of each",
			len(times), len(fields)))
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].channel < records[j].channel })

	nchans := len(records)
	channels := make([]int64, nchans)
	seen := make(map[int64]bool, nchans)
	duplicate := false
	for i, rec := range records {
		channels[i] = rec.channel
		if seen[rec.channel] {
			duplicate = true
		}
		seen[rec.channel] = true
	}
	if duplicate {
		warnings = append(warnings, "duplicate channel indices present; gain rows may repeat channels")
	}

	// Combine amplitude and phase-in-degrees into complex gains, laid out
	// (antenna, channel, polarization).
	gains := make([]complex128, nants*nchans*npol)
	for c, rec := range records {
		for a := 0; a < nants; a++ {
			for p := 0; p < npol; p++ {
				v := cmplx.Rect(rec.amp[a*npol+p], rec.phase[a*npol+p]*math.Pi/180)
				gains[(a*nchans+c)*npol+p] = v
			}
		}
	}

	pols := make([]string, npol)
	for p := range pols {
		pols[p] = fmt.Sprintf("pol%d", p)
	}

	return &Dataset{
		Antennas:      antennas,
		Channels:      channels,
		Polarizations: pols,
		Times:         times,
		Fields:        fields,
		Gains:         gains,
	}, warnings, nil
}

func uniqueSorted(records []record, key func(record) string) []string {
	set := make(map[string]bool, len(records))
	for _, r := range records {
		set[key(r)] = true
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
